package activitypub

import (
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/models"

	"net/http/httptest"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tonearm.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)

	err = db.AutoMigrate(models.AllTables()...)
	require.NoError(err)
	return db
}

func testEnv(db *gorm.DB, externalURL string) *Env {
	return &Env{
		Env: &models.Env{
			DB:     db,
			Logger: slog.New(slog.NewTextHandler(io.Discard)),
		},
		ExternalURL: externalURL,
	}
}

// testRouter mounts the federation handlers the way serve.go does.
func testRouter(env *Env) chi.Router {
	envFn := func(r *http.Request) *Env { return env }
	c := chi.NewRouter()
	c.Route("/users/{slug}", func(r chi.Router) {
		r.Get("/", httpx.HandlerFunc(envFn, ActorsShow))
		r.Post("/inbox", httpx.HandlerFunc(envFn, InboxCreate))
		r.Get("/followers", httpx.HandlerFunc(envFn, FollowersIndex))
		r.Get("/following", httpx.HandlerFunc(envFn, FollowingIndex))
	})
	c.Post("/inbox", httpx.HandlerFunc(envFn, SharedInboxCreate))
	return c
}

// fakeRemote plays the part of a remote server hosting the actor bob.
type fakeRemote struct {
	*httptest.Server

	mu        sync.Mutex
	inbox     []map[string]any
	sigs      []string
	failInbox bool
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{}
	mux := chi.NewRouter()
	mux.Get("/users/bob", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/activity+json")
		json.MarshalFull(w, map[string]any{
			"id":                f.URL + "/users/bob",
			"type":              "Person",
			"preferredUsername": "bob",
			"inbox":             f.URL + "/users/bob/inbox",
			"endpoints": map[string]any{
				"sharedInbox": f.URL + "/inbox",
			},
		})
	})
	mux.Post("/users/bob/inbox", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failInbox {
			http.Error(w, "out to lunch", http.StatusInternalServerError)
			return
		}
		var body map[string]any
		if err := json.UnmarshalFull(r.Body, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.inbox = append(f.inbox, body)
		f.sigs = append(f.sigs, r.Header.Get("Signature"))
		w.WriteHeader(http.StatusAccepted)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// deliveries returns the activities delivered to bob's inbox so far.
func (f *fakeRemote) deliveries() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.inbox...)
}

func (f *fakeRemote) signatures() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sigs...)
}

func (f *fakeRemote) actorURI() string {
	return f.URL + "/users/bob"
}

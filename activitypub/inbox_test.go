package activitypub

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"github.com/tonearm/tonearm/models"
)

const localBase = "https://local.example"

func postActivity(t *testing.T, env *Env, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()
	testRouter(env).ServeHTTP(w, req)
	return w
}

func followActivity(remote *fakeRemote, object string) string {
	return fmt.Sprintf(`{"id":"%s/activities/1","type":"Follow","actor":"%s","object":"%s"}`,
		remote.URL, remote.actorURI(), object)
}

func undoFollowActivity(remote *fakeRemote, object string) string {
	return fmt.Sprintf(`{"id":"%s/activities/2","type":"Undo","actor":"%s","object":{"type":"Follow","actor":"%s","object":"%s"}}`,
		remote.URL, remote.actorURI(), remote.actorURI(), object)
}

func TestInboxFollow(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
	remote := newFakeRemote(t)

	w := postActivity(t, env, "/users/alice/inbox", followActivity(remote, localBase+"/users/alice"))
	require.Equal(202, w.Code)

	// the relationship is recorded
	followers, err := models.NewFollowers(db).ListByArtist(artist.ID)
	require.NoError(err)
	require.Len(followers, 1)
	require.Equal(remote.actorURI(), followers[0].ActorURI)
	require.Equal(remote.actorURI()+"/inbox", followers[0].InboxURI)
	require.Equal(remote.URL+"/inbox", followers[0].SharedInboxURI)

	// a signed Accept referencing the Follow was delivered to bob's inbox
	deliveries := remote.deliveries()
	require.Len(deliveries, 1)
	require.Equal("Accept", deliveries[0]["type"])
	require.Equal(localBase+"/users/alice", deliveries[0]["actor"])
	object, ok := deliveries[0]["object"].(map[string]any)
	require.True(ok)
	require.Equal("Follow", object["type"])
	require.Equal(remote.actorURI(), object["actor"])
	require.NotEmpty(remote.signatures()[0])
}

func TestInboxFollowIsIdempotent(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
	remote := newFakeRemote(t)

	body := followActivity(remote, localBase+"/users/alice")
	require.Equal(202, postActivity(t, env, "/users/alice/inbox", body).Code)
	require.Equal(202, postActivity(t, env, "/users/alice/inbox", body).Code)

	count, err := models.NewFollowers(db).CountByArtist(artist.ID)
	require.NoError(err)
	require.EqualValues(1, count)
}

func TestInboxFollowWithoutKeysSkipsAccept(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice")
	remote := newFakeRemote(t)

	w := postActivity(t, env, "/users/alice/inbox", followActivity(remote, localBase+"/users/alice"))
	require.Equal(202, w.Code)

	count, err := models.NewFollowers(db).CountByArtist(artist.ID)
	require.NoError(err)
	require.EqualValues(1, count)
	require.Empty(remote.deliveries())
}

func TestInboxFollowDeliveryFailureKeepsRelationship(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
	remote := newFakeRemote(t)
	remote.failInbox = true

	w := postActivity(t, env, "/users/alice/inbox", followActivity(remote, localBase+"/users/alice"))
	require.Equal(202, w.Code)

	count, err := models.NewFollowers(db).CountByArtist(artist.ID)
	require.NoError(err)
	require.EqualValues(1, count)

	// the failed Accept is queued for retry
	var requests []models.DeliveryRequest
	require.NoError(db.Find(&requests).Error)
	require.Len(requests, 1)
	require.Equal(remote.actorURI()+"/inbox", requests[0].InboxURI)
	require.Equal(artist.ID, requests[0].ArtistID)
	require.Equal("Accept", requests[0].Activity["type"])
}

func TestInboxFollowDropsQuietly(t *testing.T) {
	tc := []struct {
		name string
		body func(remote *fakeRemote) string
	}{
		{"missing object", func(remote *fakeRemote) string {
			return fmt.Sprintf(`{"type":"Follow","actor":"%s"}`, remote.actorURI())
		}},
		{"foreign object", func(remote *fakeRemote) string {
			return followActivity(remote, "https://elsewhere.example/users/alice")
		}},
		{"unknown target artist", func(remote *fakeRemote) string {
			return followActivity(remote, localBase+"/users/zardoz")
		}},
		{"unresolvable remote actor", func(remote *fakeRemote) string {
			return fmt.Sprintf(`{"type":"Follow","actor":"%s/users/nobody","object":"%s"}`, remote.URL, localBase+"/users/alice")
		}},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			db := setupTestDB(t)
			env := testEnv(db, localBase)
			artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
			remote := newFakeRemote(t)

			w := postActivity(t, env, "/users/alice/inbox", tt.body(remote))
			require.Equal(202, w.Code)

			count, err := models.NewFollowers(db).CountByArtist(artist.ID)
			require.NoError(err)
			require.EqualValues(0, count)
			require.Empty(remote.deliveries())
		})
	}
}

func TestInboxUndoFollow(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
	remote := newFakeRemote(t)

	require.NoError(models.NewFollowers(db).Add(artist.ID, remote.actorURI(), remote.actorURI()+"/inbox", ""))

	body := undoFollowActivity(remote, localBase+"/users/alice")
	require.Equal(202, postActivity(t, env, "/users/alice/inbox", body).Code)

	count, err := models.NewFollowers(db).CountByArtist(artist.ID)
	require.NoError(err)
	require.EqualValues(0, count)

	// undoing an already removed follow is still a 202
	require.Equal(202, postActivity(t, env, "/users/alice/inbox", body).Code)
}

func TestInboxUndoOfSomethingElseIsIgnored(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))
	remote := newFakeRemote(t)

	require.NoError(models.NewFollowers(db).Add(artist.ID, remote.actorURI(), remote.actorURI()+"/inbox", ""))

	body := fmt.Sprintf(`{"type":"Undo","actor":"%s","object":{"type":"Like","actor":"%s","object":"%s"}}`,
		remote.actorURI(), remote.actorURI(), localBase+"/users/alice")
	require.Equal(202, postActivity(t, env, "/users/alice/inbox", body).Code)

	count, err := models.NewFollowers(db).CountByArtist(artist.ID)
	require.NoError(err)
	require.EqualValues(1, count)
}

func TestInboxUnknownActivityTypeIsAccepted(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	models.MockArtist(t, db, "alice")

	w := postActivity(t, env, "/users/alice/inbox", `{"type":"Create","actor":"https://remote.example/users/bob","object":{}}`)
	require.Equal(202, w.Code)
}

func TestInboxUnknownSlug(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	remote := newFakeRemote(t)

	w := postActivity(t, env, "/users/zardoz/inbox", followActivity(remote, localBase+"/users/zardoz"))
	require.Equal(404, w.Code)
}

func TestInboxMalformedBody(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	models.MockArtist(t, db, "alice")

	w := postActivity(t, env, "/users/alice/inbox", `{"type":`)
	require.Equal(400, w.Code)
}

func TestSharedInboxAlwaysAccepts(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)

	require.Equal(202, postActivity(t, env, "/inbox", `{"type":"Follow","actor":"https://remote.example/users/bob","object":"x"}`).Code)
	require.Equal(202, postActivity(t, env, "/inbox", `not even json`).Code)
}

func TestParseLocalActorURI(t *testing.T) {
	tc := []struct {
		uri  string
		slug string
		ok   bool
	}{
		{"https://local.example/users/alice", "alice", true},
		{"https://local.example/users/alice/inbox", "", false},
		{"https://local.example/users/", "", false},
		{"https://elsewhere.example/users/alice", "", false},
		{"https://local.example/artists/alice", "", false},
		{"", "", false},
	}
	for _, tt := range tc {
		t.Run(tt.uri, func(t *testing.T) {
			require := require.New(t)
			slug, ok := parseLocalActorURI("https://local.example", tt.uri)
			require.Equal(tt.ok, ok)
			require.Equal(tt.slug, slug)
		})
	}
}

func TestParseActivity(t *testing.T) {
	require := require.New(t)
	var body map[string]any
	err := json.Unmarshal([]byte(`{"id":"https://remote.example/1","type":"Follow","actor":"https://remote.example/users/bob","object":"https://local.example/users/alice"}`), &body)
	require.NoError(err)

	act := parseActivity(body)
	require.Equal("https://remote.example/1", act.ID)
	require.Equal("Follow", act.Type)
	require.Equal("https://remote.example/users/bob", act.Actor)
	require.Equal("https://local.example/users/alice", act.Object)
}

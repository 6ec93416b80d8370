package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tonearm/tonearm/activitypub"
	"github.com/tonearm/tonearm/admin"
	"github.com/tonearm/tonearm/internal/group"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/models"
	"github.com/tonearm/tonearm/wellknown"
	"github.com/tonearm/tonearm/workers"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

type ServeCmd struct {
	Addr           string `help:"address to listen" default:"127.0.0.1:9090" env:"TONEARM_ADDR"`
	DSN            string `required:"" help:"data source name" env:"TONEARM_DSN"`
	ExternalURL    string `help:"public base URL of the deployment, eg. https://music.example" env:"TONEARM_EXTERNAL_URL"`
	AdminTokenHash string `help:"bcrypt hash of the admin bearer token; key provisioning is disabled when unset" env:"TONEARM_ADMIN_TOKEN_HASH"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	db, err := gorm.Open(newDialector(s.DSN), &ctx.Config)
	if err != nil {
		return err
	}
	if err := configureDB(db); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr))
	menv := &models.Env{
		DB:     db,
		Logger: logger,
	}
	envFn := func(r *http.Request) *activitypub.Env {
		return &activitypub.Env{
			Env:         menv,
			ExternalURL: s.ExternalURL,
		}
	}

	c := chi.NewRouter()
	c.Use(middleware.RequestID)
	c.Use(middleware.RealIP)
	c.Use(middleware.Logger)
	c.Use(middleware.Recoverer)

	c.Route("/users/{slug}", func(r chi.Router) {
		r.Get("/", httpx.HandlerFunc(envFn, activitypub.ActorsShow))
		r.Post("/inbox", httpx.HandlerFunc(envFn, activitypub.InboxCreate))
		r.Get("/followers", httpx.HandlerFunc(envFn, activitypub.FollowersIndex))
		r.Get("/following", httpx.HandlerFunc(envFn, activitypub.FollowingIndex))
		if s.AdminTokenHash != "" {
			adminFn := func(r *http.Request) *admin.Env {
				return &admin.Env{
					Env:       menv,
					TokenHash: []byte(s.AdminTokenHash),
				}
			}
			r.Post("/keys", httpx.HandlerFunc(adminFn, admin.KeysCreate))
		}
	})

	c.Post("/inbox", httpx.HandlerFunc(envFn, activitypub.SharedInboxCreate))

	c.Route("/.well-known", func(r chi.Router) {
		r.Get("/webfinger", httpx.HandlerFunc(envFn, wellknown.Webfinger))
		r.Get("/host-meta", httpx.HandlerFunc(envFn, wellknown.HostMeta))
		r.Get("/nodeinfo", httpx.HandlerFunc(envFn, wellknown.NodeInfoIndex))
	})
	c.Get("/nodeinfo/{version}", httpx.HandlerFunc(envFn, wellknown.NodeInfoShow))

	svr := &http.Server{
		Addr:         s.Addr,
		Handler:      c,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	g := group.New(context.Background())
	g.AddContext(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			svr.Shutdown(context.Background())
		}()
		return svr.ListenAndServe()
	})
	g.AddContext(workers.NewDeliveryProcessor(db, logger))
	return g.Wait()
}

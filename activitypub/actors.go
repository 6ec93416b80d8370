package activitypub

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tonearm/tonearm/internal/algorithms"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/internal/to"
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

// ActorsShow serves the public actor document for an artist. An artist
// without provisioned keys is still served, with an empty publicKeyPem.
func ActorsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	artist, err := models.NewArtists(env.DB).FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}
	base := env.BaseURL(r)
	uri := ActorURI(base, artist.Slug)
	return to.ActivityJSON(w, map[string]any{
		"@context": []any{
			"https://www.w3.org/ns/activitystreams",
			"https://w3id.org/security/v1",
		},
		"id":                        uri,
		"type":                      "Person",
		"preferredUsername":         artist.Slug,
		"name":                      artist.Name,
		"summary":                   artist.Bio,
		"inbox":                     uri + "/inbox",
		"followers":                 uri + "/followers",
		"following":                 uri + "/following",
		"manuallyApprovesFollowers": false,
		"endpoints": map[string]any{
			"sharedInbox": base + "/inbox",
		},
		"publicKey": map[string]any{
			"id":           uri + "#main-key",
			"owner":        uri,
			"publicKeyPem": string(artist.PublicKey),
		},
	})
}

// FollowersIndex serves the artist's followers collection.
func FollowersIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	artist, err := models.NewArtists(env.DB).FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}
	followers, err := models.NewFollowers(env.DB).ListByArtist(artist.ID)
	if err != nil {
		return err
	}
	return to.ActivityJSON(w, map[string]any{
		"@context":   "https://www.w3.org/ns/activitystreams",
		"id":         ActorURI(env.BaseURL(r), artist.Slug) + "/followers",
		"type":       "OrderedCollection",
		"totalItems": len(followers),
		"orderedItems": algorithms.Map(followers, func(f models.Follower) string {
			return f.ActorURI
		}),
	})
}

// FollowingIndex serves the artist's following collection. Artists don't
// follow anyone, so the collection is always empty.
func FollowingIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	return to.ActivityJSON(w, map[string]any{
		"@context":     "https://www.w3.org/ns/activitystreams",
		"id":           ActorURI(env.BaseURL(r), chi.URLParam(r, "slug")) + "/following",
		"type":         "OrderedCollection",
		"totalItems":   0,
		"orderedItems": []any{},
	})
}

package wellknown

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/tonearm/tonearm/activitypub"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/internal/webfinger"
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

// Webfinger resolves an acct: resource to the artist's actor document
// descriptor. Lookup is by the local part only, so the response doesn't
// leak whether the domain portion matched.
func Webfinger(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Resource string `schema:"resource"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	acct, err := webfinger.Parse(params.Resource)
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}

	artist, err := models.NewArtists(env.DB).FindBySlug(acct.User)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}

	self := activitypub.ActorURI(env.BaseURL(r), artist.Slug)
	w.Header().Set("Content-Type", "application/jrd+json")
	return json.MarshalFull(w, map[string]any{
		"subject": acct.String(),
		"aliases": []string{
			self,
		},
		"links": []map[string]any{
			{
				"rel":  "http://webfinger.net/rel/profile-page",
				"type": "text/html",
				"href": fmt.Sprintf("%s/artists/%s", env.BaseURL(r), artist.Slug),
			},
			{
				"rel":  "self",
				"type": "application/activity+json",
				"href": self,
			},
		},
	})
}

package wellknown

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tonearm/tonearm/activitypub"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/internal/to"
	"github.com/tonearm/tonearm/models"
)

func NodeInfoIndex(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("cache-control", "max-age=259200, public")
	return to.JSON(w, map[string]any{
		"links": []any{
			map[string]any{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				"href": fmt.Sprintf("%s/nodeinfo/2.0", env.BaseURL(r)),
			},
		},
	})
}

func NodeInfoShow(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	switch chi.URLParam(r, "version") {
	case "2.0":
		// https://github.com/jhass/nodeinfo/blob/main/schemas/2.0/schema.json
		var artists int64
		if err := env.DB.Model(&models.Artist{}).Count(&artists).Error; err != nil {
			return err
		}
		w.Header().Set("cache-control", "max-age=259200, public")
		return to.JSON(w, map[string]any{
			"version": "2.0",
			"software": map[string]any{
				"name":    "tonearm",
				"version": "0.0.0-devel",
			},
			"protocols": []string{"activitypub"},
			"services": map[string]any{
				"inbound":  []string{},
				"outbound": []string{},
			},
			"usage": map[string]any{
				"users": map[string]any{
					"total": artists,
				},
			},
			"openRegistrations": false,
			"metadata":          map[string]any{},
		})
	default:
		return httpx.Error(http.StatusNotFound, errors.New("unsupported version: "+chi.URLParam(r, "version")))
	}
}

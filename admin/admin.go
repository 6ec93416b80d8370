// Package admin exposes the operator-facing key provisioning endpoint.
// Artists are otherwise read-only to the federation layer.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Env struct {
	*models.Env

	// TokenHash is the bcrypt hash of the admin bearer token.
	TokenHash []byte
}

func (e *Env) authorize(r *http.Request) error {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return errors.New("missing bearer token")
	}
	return bcrypt.CompareHashAndPassword(e.TokenHash, []byte(token))
}

// KeysCreate generates a fresh RSA keypair for the artist, replacing any
// existing one. This is the key provisioning/rotation step; everything else
// treats artist keys as read-only.
func KeysCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := env.authorize(r); err != nil {
		return httpx.Error(http.StatusUnauthorized, err)
	}
	artists := models.NewArtists(env.DB)
	artist, err := artists.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}
	keypair, err := crypto.GenerateRSAKeypair()
	if err != nil {
		return err
	}
	if err := artists.SetKeypair(artist, keypair.PublicKey, keypair.PrivateKey); err != nil {
		return err
	}
	env.Log().Info("admin: rotated keypair", "slug", artist.Slug)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

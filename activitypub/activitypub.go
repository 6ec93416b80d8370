// Package activitypub implements the federation surface of the catalog:
// actor documents for artists, the inbox state machine that maintains the
// follower set, and signed delivery of Accept replies.
package activitypub

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"
	"time"

	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/models"
)

// fetchTimeout bounds remote actor dereferences and outbound deliveries.
// Neither runs inside a store transaction.
const fetchTimeout = 5 * time.Second

type Env struct {
	*models.Env

	// ExternalURL is the configured public base URL of the deployment.
	// When empty, the base URL is inferred from the inbound request.
	ExternalURL string
}

// BaseURL returns the base URL for URIs emitted in response to r.
// All URIs within one response use the same base.
func (e *Env) BaseURL(r *http.Request) string {
	if e.ExternalURL != "" {
		return strings.TrimSuffix(e.ExternalURL, "/")
	}
	return "https://" + r.Host
}

// ActorURI returns the canonical actor URI for the slug.
func ActorURI(base, slug string) string {
	return base + "/users/" + slug
}

// parseLocalActorURI extracts the slug from a local actor URI.
// It reports false for anything that is not base/users/{slug}, which
// protects the inbox from cross domain confusion.
func parseLocalActorURI(base, uri string) (string, bool) {
	slug, ok := strings.CutPrefix(uri, base+"/users/")
	if !ok || slug == "" || strings.ContainsAny(slug, "/?#") {
		return "", false
	}
	return slug, true
}

// getKey resolves the public key named by an inbound signature's keyId by
// dereferencing the remote actor document it belongs to.
func (e *Env) getKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	actor, err := NewRemoteActorFetcher(AnonymousClient()).Fetch(ctx, trimKeyID(keyID))
	if err != nil {
		return nil, err
	}
	return crypto.ParseRSAPublicKey([]byte(actor.PublicKey.PublicKeyPem))
}

// trimKeyID removes the #main-key suffix from the key id.
func trimKeyID(id string) string {
	if i := strings.Index(id, "#"); i != -1 {
		return id[:i]
	}
	return id
}

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func mapFromAny(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

package models

import (
	"fmt"
	"testing"

	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/internal/snowflake"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Test fixtures shared by the packages that exercise the stores. They live
// outside the _test.go files so other packages' tests can use them.

// WithKeypair provisions a fresh keypair on the artist.
func WithKeypair(t *testing.T) func(*Artist) {
	return func(a *Artist) {
		t.Helper()
		kp, err := crypto.GenerateRSAKeypair()
		require.NoError(t, err)
		a.PublicKey = kp.PublicKey
		a.PrivateKey = kp.PrivateKey
	}
}

// MockArtist creates a new artist in the database.
func MockArtist(t *testing.T, tx *gorm.DB, slug string, opts ...func(*Artist)) *Artist {
	t.Helper()
	require := require.New(t)

	artist := &Artist{
		ID:   snowflake.Now(),
		Slug: slug,
		Name: slug,
		Bio:  "a test artist",
	}
	for _, opt := range opts {
		opt(artist)
	}
	require.NoError(tx.Create(artist).Error)
	return artist
}

// MockFollower records a follower of the artist.
func MockFollower(t *testing.T, tx *gorm.DB, artist *Artist, domain string) *Follower {
	t.Helper()
	require := require.New(t)

	actorURI := fmt.Sprintf("https://%s/users/%d", domain, snowflake.Now())
	require.NoError(NewFollowers(tx).Add(artist.ID, actorURI, actorURI+"/inbox", ""))
	var follower Follower
	require.NoError(tx.Take(&follower, "artist_id = ? AND actor_uri = ?", artist.ID, actorURI).Error)
	return &follower
}

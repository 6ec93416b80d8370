package activitypub

import (
	"crypto/rsa"
	"fmt"

	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/models"
)

// Keypair is an artist's imported signing key material.
type Keypair struct {
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// SigningKeypair imports the artist's stored PEM key material for
// RSASSA-PKCS1-v1_5 signing with a SHA-256 digest.
//
// A nil result without an error means the artist has no provisioned
// keypair; callers skip signing rather than fail. An error means a PEM
// field is present but unparseable, which indicates corrupt stored state
// and is surfaced for operator diagnostics.
func SigningKeypair(artist *models.Artist) (*Keypair, error) {
	if !artist.FederationCapable() {
		return nil, nil
	}
	privateKey, err := crypto.ParseRSAPrivateKey(artist.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("artist %q: private key: %w", artist.Slug, err)
	}
	publicKey, err := crypto.ParseRSAPublicKey(artist.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("artist %q: public key: %w", artist.Slug, err)
	}
	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}, nil
}

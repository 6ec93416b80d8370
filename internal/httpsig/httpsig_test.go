package httpsig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"strings"
	"testing"

	"github.com/go-fed/httpsig"
	"github.com/stretchr/testify/require"
)

func TestSignRequest(t *testing.T) {
	require := require.New(t)
	req, err := http.NewRequest("GET", "https://example.com/users/foo", nil)
	require.NoError(err)
	req.Header.Set("Accept", "application/ld+json")

	const keyID = "https://example.com/users/foo#main-key"
	privatekey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)
	pubKey := &privatekey.PublicKey

	err = Sign(req, keyID, privatekey, nil)
	require.NoError(err)

	verifier, err := httpsig.NewVerifier(req)
	require.NoError(err)
	require.Equal(keyID, verifier.KeyId())
	err = verifier.Verify(pubKey, httpsig.RSA_SHA256)
	require.NoError(err, "req.Signature: %s", req.Header.Get("Signature"))
}

func TestSignAndVerifyPost(t *testing.T) {
	require := require.New(t)
	body := []byte(`{"type":"Follow"}`)
	req, err := http.NewRequest("POST", "https://example.com/users/foo/inbox", strings.NewReader(string(body)))
	require.NoError(err)

	const keyID = "https://remote.example/users/bob#main-key"
	privatekey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)

	err = Sign(req, keyID, privatekey, body)
	require.NoError(err)

	err = Verify(req, func(id string) (crypto.PublicKey, error) {
		require.Equal(keyID, id)
		return &privatekey.PublicKey, nil
	})
	require.NoError(err)
}

func TestVerifyMissingSignature(t *testing.T) {
	require := require.New(t)
	req, err := http.NewRequest("POST", "https://example.com/inbox", nil)
	require.NoError(err)
	err = Verify(req, func(id string) (crypto.PublicKey, error) {
		t.Fatal("keyFn should not be called")
		return nil, nil
	})
	require.Error(err)
}

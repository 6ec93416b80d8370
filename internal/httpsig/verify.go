package httpsig

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Verify verifies the signature of the request. The public key to verify
// against is resolved through keyFn from the keyId named in the header.
func Verify(req *http.Request, keyFn func(keyID string) (crypto.PublicKey, error)) error {
	sigHeader := req.Header.Get("Signature")
	if sigHeader == "" {
		return errors.New("Signature header is missing")
	}

	var (
		pubKey  crypto.PublicKey
		algo    string
		sig     []byte
		headers []string
		err     error
	)
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("malformed signature part: %s", part)
		}
		switch k {
		case "keyId":
			keyID := strings.Trim(v, "\"")
			pubKey, err = keyFn(keyID)
			if err != nil {
				return err
			}
		case "algorithm":
			algo = strings.Trim(v, "\"")
		case "headers":
			headers = strings.Split(strings.Trim(v, "\""), " ")
		case "signature":
			sig, err = base64.StdEncoding.DecodeString(strings.Trim(v, "\""))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown signature part: %s", part)
		}
	}

	input, err := signingString(req, headers)
	if err != nil {
		return err
	}
	digest := sha256.Sum256([]byte(input))

	switch algo {
	case algorithm:
		return rsa.VerifyPKCS1v15(pubKey.(*rsa.PublicKey), crypto.SHA256, digest[:], sig)
	default:
		return fmt.Errorf("unknown algorithm: %s", algo)
	}
}

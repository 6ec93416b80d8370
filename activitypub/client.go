package activitypub

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/go-json-experiment/json"
	"github.com/tonearm/tonearm/internal/httpsig"
)

// Client is an ActivityPub client which can be used to fetch remote
// resources and deliver activities to remote inboxes.
type Client struct {
	keyID      string
	privateKey *rsa.PrivateKey
}

// NewClient returns a client which signs its requests with the given key.
func NewClient(keyID string, privateKey *rsa.PrivateKey) *Client {
	return &Client{
		keyID:      keyID,
		privateKey: privateKey,
	}
}

// AnonymousClient returns a client which does not sign its requests.
// Some servers refuse unsigned fetches; callers must expect failures.
func AnonymousClient() *Client {
	return &Client{}
}

// Fetch fetches the ActivityPub resource at the given URL and decodes it into the given object.
func (c *Client) Fetch(ctx context.Context, uri string, obj interface{}) error {
	return requests.URL(uri).
		Accept(`application/ld+json; profile="https://www.w3.org/ns/activitystreams"`).
		Transport(requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if err := c.sign(req, nil); err != nil {
				return nil, err
			}
			return http.DefaultTransport.RoundTrip(req)
		})).
		CheckContentType(
			"application/ld+json",
			"application/activity+json",
			"application/json",
			"application/octet-stream", // sigh
		).
		CheckStatus(http.StatusOK).
		ToJSON(obj).
		Fetch(ctx)
}

// Post delivers the given activity to the given inbox URL.
func (c *Client) Post(ctx context.Context, url string, activity map[string]any) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return requests.URL(url).
		BodyBytes(body).
		Header("Content-Type", `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`).
		Transport(requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if err := c.sign(req, body); err != nil {
				return nil, err
			}
			return http.DefaultTransport.RoundTrip(req)
		})).
		CheckStatus(http.StatusOK, http.StatusCreated, http.StatusAccepted).
		Fetch(ctx)
}

func (c *Client) sign(req *http.Request, body []byte) error {
	if c.privateKey == nil {
		return nil
	}
	if err := httpsig.Sign(req, c.keyID, c.privateKey, body); err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return nil
}

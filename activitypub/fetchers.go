package activitypub

import (
	"context"
)

// RemoteActor is the subset of a remote actor document the inbox needs to
// maintain a follower relationship.
type RemoteActor struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	PreferredUsername string `json:"preferredUsername"`
	Inbox             string `json:"inbox"`
	Endpoints         struct {
		SharedInbox string `json:"sharedInbox"`
	} `json:"endpoints"`
	PublicKey struct {
		ID           string `json:"id"`
		Owner        string `json:"owner"`
		PublicKeyPem string `json:"publicKeyPem"`
	} `json:"publicKey"`
}

// RemoteActorFetcher dereferences remote actor documents.
type RemoteActorFetcher struct {
	client *Client
}

func NewRemoteActorFetcher(client *Client) *RemoteActorFetcher {
	return &RemoteActorFetcher{
		client: client,
	}
}

func (f *RemoteActorFetcher) Fetch(ctx context.Context, uri string) (*RemoteActor, error) {
	var actor RemoteActor
	if err := f.client.Fetch(ctx, uri, &actor); err != nil {
		return nil, err
	}
	return &actor, nil
}

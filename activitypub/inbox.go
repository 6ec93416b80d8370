package activitypub

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-fed/httpsig"
	"github.com/go-json-experiment/json"
	"github.com/tonearm/tonearm/activitypub/activities"
	"github.com/tonearm/tonearm/internal/httpx"
	"github.com/tonearm/tonearm/models"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// Activity is the transient parsed form of one inbound message. It lives
// for the duration of a single inbox request and is never persisted.
type Activity struct {
	ID     string
	Type   string
	Actor  string
	Object any

	raw map[string]any
}

func parseActivity(body map[string]any) *Activity {
	return &Activity{
		ID:     stringFromAny(body["id"]),
		Type:   stringFromAny(body["type"]),
		Actor:  stringFromAny(body["actor"]),
		Object: body["object"],
		raw:    body,
	}
}

// InboxCreate accepts one activity addressed to an artist's inbox.
//
// Unknown slugs are a 404 and an unparseable body is a 400; everything else
// is acknowledged with a 202, including activity types this server ignores.
// Only a storage fault fails the request after acknowledgeable parsing.
func InboxCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := models.NewArtists(env.DB).FindBySlug(chi.URLParam(r, "slug")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}

	var body map[string]any
	if err := json.UnmarshalFull(r.Body, &body); err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	act := parseActivity(body)

	// Signature validation is advisory; failures are logged, not rejected.
	if r.Header.Get("Signature") != "" {
		if err := env.validateSignature(r); err != nil {
			env.Log().Warn("inbox: signature validation failed", "activity", act.ID, "err", err)
		}
	}

	switch act.Type {
	case activities.FOLLOW:
		if err := processFollow(env, r, act); err != nil {
			return err
		}
	case activities.UNDO:
		if err := processUndo(env, r, act); err != nil {
			return err
		}
	default:
		env.Log().Info("inbox: ignoring activity", "type", act.Type, "actor", act.Actor)
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// SharedInboxCreate accepts delivery of any activity on the instance-wide
// inbox. Per-actor fan-out of shared deliveries is not implemented;
// activities are acknowledged and dropped.
func SharedInboxCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var body map[string]any
	if err := json.UnmarshalFull(r.Body, &body); err == nil {
		act := parseActivity(body)
		env.Log().Info("shared inbox: ignoring activity", "type", act.Type, "actor", act.Actor)
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// processFollow runs the follow flow: resolve the target artist from the
// activity's object, dereference the remote follower, record the
// relationship, and reply with a signed Accept.
//
// Anything unresolvable drops the activity with a log line; the sender
// already has its 202 and retrying won't help. A returned error is a
// storage fault.
func processFollow(env *Env, r *http.Request, act *Activity) error {
	log := env.Log().With("activity", act.ID, "actor", act.Actor)

	object := stringFromAny(act.Object)
	if object == "" {
		log.Warn("follow: missing object")
		return nil
	}
	base := env.BaseURL(r)
	slug, ok := parseLocalActorURI(base, object)
	if !ok {
		log.Warn("follow: object is not a local actor", "object", object)
		return nil
	}
	artist, err := models.NewArtists(env.DB).FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("follow: unknown artist", "slug", slug)
			return nil
		}
		return err
	}

	keypair, err := SigningKeypair(artist)
	if err != nil {
		// corrupt stored keys must not lose the follow
		log.Error("follow: cannot import artist keypair", "err", err)
		keypair = nil
	}

	remote, ok := resolveRemoteActor(env, r, log, act.Actor, artist, keypair)
	if !ok {
		return nil
	}

	if err := models.NewFollowers(env.DB).Add(artist.ID, remote.ID, remote.Inbox, remote.Endpoints.SharedInbox); err != nil {
		return err
	}

	// The relationship is established once recorded; the Accept is best
	// effort from here on.
	if keypair == nil {
		log.Info("follow: artist has no keypair, skipping accept", "slug", artist.Slug)
		return nil
	}
	actorURI := ActorURI(base, artist.Slug)
	keyID := actorURI + "#main-key"
	accept := activities.Accept(actorURI, act.raw)

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()
	if err := NewClient(keyID, keypair.PrivateKey).Post(ctx, remote.Inbox, accept); err != nil {
		log.Error("follow: accept delivery failed, queueing retry", "inbox", remote.Inbox, "err", err)
		return env.DB.Create(&models.DeliveryRequest{
			ArtistID: artist.ID,
			KeyID:    keyID,
			InboxURI: remote.Inbox,
			Activity: accept,
		}).Error
	}
	return nil
}

// processUndo runs the unfollow flow. The Undo's object must itself be a
// Follow; undoing anything else is out of scope and ignored. Removing a
// relationship that doesn't exist is a successful no-op.
func processUndo(env *Env, r *http.Request, act *Activity) error {
	log := env.Log().With("activity", act.ID, "actor", act.Actor)

	follow := mapFromAny(act.Object)
	if stringFromAny(follow["type"]) != activities.FOLLOW {
		return nil
	}
	object := stringFromAny(follow["object"])
	slug, ok := parseLocalActorURI(env.BaseURL(r), object)
	if !ok {
		log.Warn("undo follow: object is not a local actor", "object", object)
		return nil
	}
	artist, err := models.NewArtists(env.DB).FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the followed artist no longer exists, nothing to remove
			return nil
		}
		return err
	}
	actorURI := stringFromAny(follow["actor"])
	if actorURI == "" {
		actorURI = act.Actor
	}
	if actorURI == "" {
		log.Warn("undo follow: missing actor")
		return nil
	}
	return models.NewFollowers(env.DB).Remove(artist.ID, actorURI)
}

// resolveRemoteActor dereferences the follower's actor document and checks
// it carries enough to maintain a relationship.
func resolveRemoteActor(env *Env, r *http.Request, log *slog.Logger, uri string, artist *models.Artist, keypair *Keypair) (*RemoteActor, bool) {
	if uri == "" {
		log.Warn("follow: missing actor")
		return nil, false
	}
	client := AnonymousClient()
	if keypair != nil {
		client = NewClient(ActorURI(env.BaseURL(r), artist.Slug)+"#main-key", keypair.PrivateKey)
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()
	remote, err := NewRemoteActorFetcher(client).Fetch(ctx, uri)
	if err != nil {
		log.Warn("follow: cannot resolve remote actor", "err", err)
		return nil, false
	}
	if remote.ID == "" || remote.Inbox == "" {
		log.Warn("follow: remote actor missing id or inbox")
		return nil, false
	}
	return remote, true
}

// validateSignature checks the inbound request's HTTP signature against the
// public key of the actor named in its keyId.
func (e *Env) validateSignature(r *http.Request) error {
	verifier, err := httpsig.NewVerifier(r)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()
	pubKey, err := e.getKey(ctx, verifier.KeyId())
	if err != nil {
		return err
	}
	return verifier.Verify(pubKey, httpsig.RSA_SHA256)
}

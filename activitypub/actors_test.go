package activitypub

import (
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"github.com/tonearm/tonearm/models"
)

func getJSON(t *testing.T, env *Env, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "application/activity+json")
	w := httptest.NewRecorder()
	testRouter(env).ServeHTTP(w, req)

	var body map[string]any
	if w.Code == 200 {
		require.NoError(t, json.UnmarshalFull(w.Body, &body))
	}
	return w, body
}

func TestActorsShow(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice", models.WithKeypair(t))

	w, body := getJSON(t, env, "/users/alice")
	require.Equal(200, w.Code)
	require.Equal("application/activity+json", w.Header().Get("Content-Type"))
	require.Equal(localBase+"/users/alice", body["id"])
	require.Equal("Person", body["type"])
	require.Equal("alice", body["preferredUsername"])
	require.Equal(localBase+"/users/alice/inbox", body["inbox"])
	require.Equal(localBase+"/users/alice/followers", body["followers"])
	require.Equal(false, body["manuallyApprovesFollowers"])

	endpoints, ok := body["endpoints"].(map[string]any)
	require.True(ok)
	require.Equal(localBase+"/inbox", endpoints["sharedInbox"])

	publicKey, ok := body["publicKey"].(map[string]any)
	require.True(ok)
	require.Equal(localBase+"/users/alice#main-key", publicKey["id"])
	require.Equal(localBase+"/users/alice", publicKey["owner"])
	require.Equal(string(artist.PublicKey), publicKey["publicKeyPem"])
}

func TestActorsShowWithoutKeys(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	models.MockArtist(t, db, "alice")

	w, body := getJSON(t, env, "/users/alice")
	require.Equal(200, w.Code)
	publicKey, ok := body["publicKey"].(map[string]any)
	require.True(ok)
	require.Equal("", publicKey["publicKeyPem"])
}

func TestActorsShowUnknownSlug(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)

	w, _ := getJSON(t, env, "/users/zardoz")
	require.Equal(404, w.Code)
}

func TestFollowersIndex(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	artist := models.MockArtist(t, db, "alice")
	first := models.MockFollower(t, db, artist, "one.example")
	second := models.MockFollower(t, db, artist, "two.example")

	w, body := getJSON(t, env, "/users/alice/followers")
	require.Equal(200, w.Code)
	require.Equal("OrderedCollection", body["type"])
	require.EqualValues(2, body["totalItems"])

	items, ok := body["orderedItems"].([]any)
	require.True(ok)
	require.ElementsMatch([]any{first.ActorURI, second.ActorURI}, items)
}

func TestFollowingIndexIsEmpty(t *testing.T) {
	require := require.New(t)
	db := setupTestDB(t)
	env := testEnv(db, localBase)
	models.MockArtist(t, db, "alice")

	w, body := getJSON(t, env, "/users/alice/following")
	require.Equal(200, w.Code)
	require.Equal("OrderedCollection", body["type"])
	require.EqualValues(0, body["totalItems"])
	require.Empty(body["orderedItems"])
}

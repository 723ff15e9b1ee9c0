package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomy-backend/internal/model"
	"roomy-backend/internal/store"
)

const endpoint = "https://push.example.com/send/abc?x=1"

func TestPutSubscription(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPut, "/api/subscriptions", "tok-ana", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/subscriptions", "", map[string]string{"endpoint": endpoint, "p256dh": "p", "auth": "a"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, "/api/subscriptions", "tok-ana", map[string]string{"endpoint": endpoint, "p256dh": "p", "auth": "a"})
	require.Equal(t, http.StatusCreated, w.Code)

	sub, err := env.store.GetSubscription(context.Background(), endpoint)
	require.NoError(t, err)
	assert.Equal(t, "u-ana", sub.UserID)
	assert.Equal(t, "p", sub.P256DH)

	// Re-registering refreshes the keys.
	w = env.do(http.MethodPut, "/api/subscriptions", "tok-ana", map[string]string{"endpoint": endpoint, "p256dh": "p2", "auth": "a2"})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestPutSubscription_ForeignEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.SaveSubscription(context.Background(), &model.PushSubscription{
		Endpoint: endpoint, P256DH: "p", Auth: "a", UserID: "u-ana",
	}))
	env.identity.sessions["tok-eve"] = &model.User{ID: "u-eve"}

	w := env.do(http.MethodPut, "/api/subscriptions", "tok-eve", map[string]string{"endpoint": endpoint, "p256dh": "evil", "auth": "evil"})
	assert.Equal(t, http.StatusConflict, w.Code)

	sub, err := env.store.GetSubscription(context.Background(), endpoint)
	require.NoError(t, err)
	assert.Equal(t, "u-ana", sub.UserID)
	assert.Equal(t, "p", sub.P256DH)
}

func TestGetSubscription(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.SaveSubscription(context.Background(), &model.PushSubscription{
		Endpoint: endpoint, P256DH: "p", Auth: "a", UserID: "u-ana",
	}))
	env.identity.sessions["tok-eve"] = &model.User{ID: "u-eve"}

	path := "/api/subscriptions?endpoint=" + url.QueryEscape(endpoint)

	w := env.do(http.MethodGet, "/api/subscriptions", "tok-ana", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, path, "tok-ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"endpoint":"`+endpoint+`","subscribed":true}`, w.Body.String())

	w = env.do(http.MethodGet, path, "tok-eve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint=missing", "tok-ana", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSubscription(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.SaveSubscription(context.Background(), &model.PushSubscription{
		Endpoint: endpoint, P256DH: "p", Auth: "a", UserID: "u-ana",
	}))
	env.identity.sessions["tok-eve"] = &model.User{ID: "u-eve"}

	w := env.do(http.MethodDelete, "/api/subscriptions", "tok-eve", map[string]string{"endpoint": endpoint})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/subscriptions", "tok-ana", map[string]string{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := env.store.GetSubscription(context.Background(), endpoint)
	assert.ErrorIs(t, err, store.ErrNotFound)

	w = env.do(http.MethodDelete, "/api/subscriptions", "tok-ana", map[string]string{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

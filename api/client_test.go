package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepanel/auth"
	"tradepanel/storage"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.TokenStore, storage.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	tokens := auth.NewTokenStore(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(srv.URL, tokens, logger, 5*time.Second), tokens, store
}

func seedCredential(t *testing.T, tokens *auth.TokenStore) {
	t.Helper()
	require.NoError(t, tokens.Save(auth.Credential{
		Token:     "valid-token",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
		User:      auth.User{ID: 1, Username: "trader@example.com", RiskLevel: "moderate"},
	}))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(BotStatus{Status: "stopped"})
	}))
	seedCredential(t, tokens)

	_, err := client.GetBotStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer valid-token", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(LoginResponse{AccessToken: "t", ExpiresIn: 3600})
	}))

	_, err := client.Login(context.Background(), "trader@example.com", "password123")
	require.NoError(t, err)
	assert.False(t, hasAuth, "no Authorization header expected, got %q", gotAuth)
}

func TestClient_UnauthorizedClearsCredentialAndNotifies(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client, tokens, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		seedCredential(t, tokens)

		notified := false
		client.SetOnUnauthorized(func() { notified = true })

		_, err := client.GetBotStatus(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized, "status %d", status)
		assert.True(t, notified, "status %d must fire OnUnauthorized", status)

		// All three durable keys must be gone.
		for _, key := range []string{"access_token", "user_data", "token_expires"} {
			_, ok, err := store.Get(key)
			require.NoError(t, err)
			assert.False(t, ok, "key %q must be absent after %d", key, status)
		}
	}
}

func TestClient_ValidationErrorSurfacesDetail(t *testing.T) {
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "MT5 terminal not reachable"})
	}))
	seedCredential(t, tokens)

	err := client.ConnectBroker(context.Background(), BrokerConfig{Server: "Demo", Login: 1})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "MT5 terminal not reachable", apiErr.Error())

	// A validation error must not touch the credential.
	_, ok, err := tokens.Load()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_LoginSendsForm(t *testing.T) {
	var contentType, username, password string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		r.ParseForm()
		username = r.PostFormValue("username")
		password = r.PostFormValue("password")
		json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "fresh-token",
			TokenType:   "bearer",
			ExpiresIn:   1800,
			User:        auth.User{ID: 7, Username: username, RiskLevel: "low"},
		})
	}))

	resp, err := client.Login(context.Background(), "trader@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "trader@example.com", username)
	assert.Equal(t, "password123", password)
	assert.Equal(t, "fresh-token", resp.AccessToken)
	assert.Equal(t, "low", resp.User.RiskLevel)
}

func TestClient_RegisterCreatesAccount(t *testing.T) {
	var gotPath string
	var gotReq RegisterRequest
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(auth.User{
			ID:        9,
			Username:  gotReq.Username,
			Email:     gotReq.Email,
			FullName:  gotReq.FullName,
			RiskLevel: "moderate",
			IsActive:  true,
		})
	}))

	user, err := client.Register(context.Background(), RegisterRequest{
		Username: "newtrader",
		Email:    "new@example.com",
		Password: "password123",
		FullName: "New Trader",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/auth/register", gotPath)
	assert.Equal(t, "newtrader", gotReq.Username)
	assert.Equal(t, "password123", gotReq.Password)
	assert.Equal(t, 9, user.ID)
	assert.Equal(t, "moderate", user.RiskLevel)
	assert.True(t, user.IsActive)
}

func TestNewsClient_SameInterceptionSemantics(t *testing.T) {
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	seedCredential(t, tokens)

	notified := false
	client.SetOnUnauthorized(func() { notified = true })

	news := NewNewsClient(client)
	_, err := news.GetCryptoNews(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, notified)

	_, ok, loadErr := tokens.Load()
	require.NoError(t, loadErr)
	assert.False(t, ok, "news 401 must clear the credential too")
}

func TestClient_TestAPIKeyIsIdempotent(t *testing.T) {
	calls := 0
	client, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(KeyTestResult{
			Valid:   body["api_key"] == "sk-good",
			Message: "checked",
		})
	}))
	seedCredential(t, tokens)

	first, err := client.TestAPIKey(context.Background(), "openai", "sk-good")
	require.NoError(t, err)
	second, err := client.TestAPIKey(context.Background(), "openai", "sk-good")
	require.NoError(t, err)

	assert.Equal(t, first.Valid, second.Valid)
	assert.True(t, first.Valid)
	assert.Equal(t, 2, calls)
}

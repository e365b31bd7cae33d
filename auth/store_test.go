package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepanel/storage"
)

func TestTokenStore_SaveLoadClear(t *testing.T) {
	store := storage.NewMemory()
	tokens := NewTokenStore(store)

	_, ok, err := tokens.Load()
	require.NoError(t, err)
	assert.False(t, ok, "empty store should read as logged out")

	cred := Credential{
		Token:     "bearer-abc",
		ExpiresAt: 1700000000000,
		User: User{
			ID:        1,
			Username:  "trader@example.com",
			RiskLevel: "moderate",
			IsActive:  true,
		},
	}
	require.NoError(t, tokens.Save(cred))

	loaded, ok, err := tokens.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cred, loaded)
	assert.Equal(t, "bearer-abc", tokens.Token())

	require.NoError(t, tokens.Clear())

	_, ok, err = tokens.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tokens.Token())
}

func TestTokenStore_PartialCredentialReadsAsLoggedOut(t *testing.T) {
	store := storage.NewMemory()
	tokens := NewTokenStore(store)

	// Token present but user snapshot and expiry missing.
	require.NoError(t, store.Set("access_token", "lonely-token"))

	_, ok, err := tokens.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// All keys present but the user snapshot is garbage.
	require.NoError(t, store.Set("user_data", "{not json"))
	require.NoError(t, store.Set("token_expires", "1700000000000"))

	_, ok, err = tokens.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// Non-numeric expiry also reads as logged out.
	require.NoError(t, store.Set("user_data", `{"id":1,"username":"u"}`))
	require.NoError(t, store.Set("token_expires", "someday"))

	_, ok, err = tokens.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_ClearRemovesAllThreeKeys(t *testing.T) {
	store := storage.NewMemory()
	tokens := NewTokenStore(store)

	require.NoError(t, tokens.Save(Credential{Token: "t", ExpiresAt: 1, User: User{ID: 1}}))
	require.NoError(t, tokens.Clear())

	for _, key := range []string{"access_token", "user_data", "token_expires"} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q must be absent after clear", key)
	}
}

func TestPrefillCache_RoundTripAndAbsence(t *testing.T) {
	store := storage.NewMemory()
	cache := NewPrefillCache(store)

	type brokerCfg struct {
		Server string `json:"server"`
		Login  int    `json:"login"`
	}

	var out brokerCfg
	assert.False(t, cache.LoadBrokerConfig(&out), "empty cache must read as absent")

	require.NoError(t, cache.SaveBrokerConfig(brokerCfg{Server: "Demo-MT5", Login: 12345}))
	require.True(t, cache.LoadBrokerConfig(&out))
	assert.Equal(t, "Demo-MT5", out.Server)
	assert.Equal(t, 12345, out.Login)

	require.NoError(t, cache.ClearBrokerConfig())
	assert.False(t, cache.LoadBrokerConfig(&out))
}

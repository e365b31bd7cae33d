package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"tradepanel/storage"
)

// Storage keys. The credential is spread over three independent keys; the
// client only treats itself as authenticated when all three are present and
// well-formed, and clearing removes all three atomically.
const (
	keyAccessToken  = "access_token"
	keyUserData     = "user_data"
	keyTokenExpires = "token_expires"
)

// User is the identity snapshot returned by the backend on login. It is
// replaced wholesale on every login and cleared on logout.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	RiskLevel string `json:"risk_level"`
	Theme     string `json:"theme"`
	IsActive  bool   `json:"is_active"`
}

// Credential is a bearer token plus its user snapshot and expiry.
// ExpiresAt is epoch milliseconds and informational only; the backend is
// the authority on token validity, the client never expires tokens itself.
type Credential struct {
	Token     string
	ExpiresAt int64
	User      User
}

// TokenStore persists the credential. It is the single source of truth for
// "is this client authenticated".
type TokenStore struct {
	store storage.Store
}

func NewTokenStore(store storage.Store) *TokenStore {
	return &TokenStore{store: store}
}

// Save writes all three credential keys in one transaction.
func (t *TokenStore) Save(cred Credential) error {
	userData, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("marshal user snapshot: %w", err)
	}

	return t.store.SetMany(map[string]string{
		keyAccessToken:  cred.Token,
		keyUserData:     string(userData),
		keyTokenExpires: strconv.FormatInt(cred.ExpiresAt, 10),
	})
}

// Load returns the stored credential. ok is false unless all three keys
// exist and parse: a non-empty token, a decodable user snapshot and a
// numeric expiry. A partial or corrupt credential reads as logged out.
func (t *TokenStore) Load() (Credential, bool, error) {
	token, ok, err := t.store.Get(keyAccessToken)
	if err != nil {
		return Credential{}, false, err
	}
	if !ok || token == "" {
		return Credential{}, false, nil
	}

	userData, ok, err := t.store.Get(keyUserData)
	if err != nil {
		return Credential{}, false, err
	}
	if !ok {
		return Credential{}, false, nil
	}

	var user User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		return Credential{}, false, nil
	}

	expiresData, ok, err := t.store.Get(keyTokenExpires)
	if err != nil {
		return Credential{}, false, err
	}
	if !ok {
		return Credential{}, false, nil
	}

	expiresAt, err := strconv.ParseInt(expiresData, 10, 64)
	if err != nil {
		return Credential{}, false, nil
	}

	return Credential{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, true, nil
}

// Token returns just the bearer token, or "" when logged out.
func (t *TokenStore) Token() string {
	cred, ok, err := t.Load()
	if err != nil || !ok {
		return ""
	}
	return cred.Token
}

// Clear removes all three credential keys in one transaction. Both explicit
// logout and the gateway's 401/403 interception come through here.
func (t *TokenStore) Clear() error {
	return t.store.DeleteMany(keyAccessToken, keyUserData, keyTokenExpires)
}

package auth

import (
	"encoding/json"

	"tradepanel/storage"
)

// Convenience cache keys. These only pre-fill forms; they are never treated
// as authoritative and readers must tolerate them being absent or stale.
const (
	keyBrokerConfig = "mt5_config"
	keyAIConfig     = "ai_config"
)

// PrefillCache remembers the last broker connection config and the last AI
// config so the forms come up pre-filled after a restart.
type PrefillCache struct {
	store storage.Store
}

func NewPrefillCache(store storage.Store) *PrefillCache {
	return &PrefillCache{store: store}
}

func (c *PrefillCache) SaveBrokerConfig(v any) error {
	return c.save(keyBrokerConfig, v)
}

// LoadBrokerConfig fills out with the cached broker config. ok is false when
// nothing usable is cached.
func (c *PrefillCache) LoadBrokerConfig(out any) bool {
	return c.load(keyBrokerConfig, out)
}

func (c *PrefillCache) ClearBrokerConfig() error {
	return c.store.DeleteMany(keyBrokerConfig)
}

func (c *PrefillCache) SaveAIConfig(v any) error {
	return c.save(keyAIConfig, v)
}

func (c *PrefillCache) LoadAIConfig(out any) bool {
	return c.load(keyAIConfig, out)
}

func (c *PrefillCache) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.Set(key, string(data))
}

func (c *PrefillCache) load(key string, out any) bool {
	data, ok, err := c.store.Get(key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal([]byte(data), out) == nil
}

package memory

import (
	"sync"

	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map and never touches disk. Settings
// tests run against it.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

// Get returns the raw value under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) raw(key string) any {
	v, _ := s.Get(key)
	return v
}

// GetString returns key as a string, or "" when unset or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.raw(key).(string)
	return v
}

// GetInt returns key as an int. Floats are truncated.
func (s *ConfigStore) GetInt(key string) int {
	f, ok := number(s.raw(key))
	if !ok {
		return 0
	}
	return int(f)
}

// GetFloat returns key as a float64. Integers are widened.
func (s *ConfigStore) GetFloat(key string) float64 {
	f, _ := number(s.raw(key))
	return f
}

// GetBool returns key as a bool.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.raw(key).(bool)
	return v
}

// GetStringSlice returns key as a string slice, dropping non-string items.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch v := s.raw(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path reports that the store has no backing file.
func (s *ConfigStore) Path() string { return ":memory:" }

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DirName is the per-user directory holding config.toml and prompts/.
const DirName = ".kyc"

// DefaultDir returns ~/.kyc.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// ConfigStore keeps config.toml as a tree of tables. Dotted keys such as
// "llm.provider" address a value inside that tree.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// NewConfigStore opens config.toml in configDir, creating the directory.
// An empty configDir means ~/.kyc. The file itself is written on first Set.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, "config.toml")}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value at a dotted key. Tables are not values.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.lookup(key)
}

func (s *ConfigStore) raw(key string) any {
	v, _ := s.Get(key)
	return v
}

// GetString returns key as a string, or "" for other types.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.raw(key).(string)
	return v
}

// GetInt returns key as an int. Floats are truncated.
func (s *ConfigStore) GetInt(key string) int {
	return int(numeric(s.raw(key)))
}

// GetFloat returns key as a float64.
func (s *ConfigStore) GetFloat(key string) float64 {
	return numeric(s.raw(key))
}

// GetBool returns key as a bool.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.raw(key).(bool)
	return v
}

// GetStringSlice returns key as strings. Decoded TOML arrays arrive as
// []any and non-string items are skipped.
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

// Set stores value at key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.assign(key, value); err != nil {
		return err
	}
	return s.write()
}

// Save rewrites the file from memory.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces config.toml through a temp file so a crash never leaves a
// half-written config. Caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(map[string]any(s.doc))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load rereads the file. A missing file is an empty config.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = document{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	doc := document{}
	if err := toml.Unmarshal(data, (*map[string]any)(&doc)); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.doc = doc
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.path
}

// document is a decoded TOML file. Nested tables are map[string]any.
type document map[string]any

func (d document) lookup(key string) (any, bool) {
	parts := strings.Split(key, ".")
	table := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			return nil, false
		}
		table = next
	}
	v, ok := table[parts[len(parts)-1]]
	if _, isTable := v.(map[string]any); isTable {
		return nil, false
	}
	return v, ok
}

// assign creates intermediate tables as needed. It refuses to replace a
// scalar with a table or a table with a scalar.
func (d document) assign(key string, value any) error {
	parts := strings.Split(key, ".")
	table := map[string]any(d)
	for i, part := range parts[:len(parts)-1] {
		switch next := table[part].(type) {
		case map[string]any:
			table = next
		case nil:
			child := map[string]any{}
			table[part] = child
			table = child
		default:
			return fmt.Errorf("config key %q: %s is not a table", key, strings.Join(parts[:i+1], "."))
		}
	}
	leaf := parts[len(parts)-1]
	if _, isTable := table[leaf].(map[string]any); isTable {
		return fmt.Errorf("config key %q is a table", key)
	}
	table[leaf] = value
	return nil
}

// numeric widens any TOML or Go number. TOML integers decode as int64.
func numeric(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

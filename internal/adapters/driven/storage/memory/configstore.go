package memory

import (
	"sync"

	"github.com/custodia-labs/medibot/internal/adapters/driven/config"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Keys follow the same rules as the
// TOML store; Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string { return config.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int { return config.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64 { return config.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool { return config.Bool(s.value(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return config.Strings(s.value(key)) }

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := config.CheckKey(key, s.values); err != nil {
		return err
	}
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }

package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/medibot/internal/adapters/driven/config"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// DefaultDirName is the state directory under the user's home.
const DefaultDirName = ".medibot"

// FileName is the settings file inside the state directory.
const FileName = "config.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. Tables are flattened into dot
// keys, so "[ask] top_k = 3" reads back as "ask.top_k", and written back as
// nested tables.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

// NewConfigStore opens <configDir>/config.toml, creating configDir when
// needed. An empty configDir means ~/.medibot. A missing file is an empty
// configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(home, DefaultDirName)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", configDir, err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, FileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
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

// Keys returns every stored key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Set stores value under key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.CheckKey(key, s.data); err != nil {
		return err
	}
	s.data[key] = value
	return s.write()
}

// Save writes the file.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write saves the nested form with owner-only permissions; API keys live
// in this file. Caller holds mu.
func (s *ConfigStore) write() error {
	out, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return os.WriteFile(s.path, out, 0o600)
}

// Load replaces the in-memory settings with the file content.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = map[string]any{}
		return nil
	}
	if err != nil {
		return err
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.data = map[string]any{}
	flatten(tree, "", s.data)
	return nil
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// flatten copies tree into out with dot-joined keys.
func flatten(tree map[string]any, prefix string, out map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(table, k, out)
			continue
		}
		out[k] = v
	}
}

// nest is the inverse of flatten.
func nest(flat map[string]any) map[string]any {
	root := map[string]any{}
	for key, v := range flat {
		parts := strings.Split(key, ".")
		table := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := table[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				table[p] = child
			}
			table = child
		}
		table[parts[len(parts)-1]] = v
	}
	return root
}

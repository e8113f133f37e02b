package file

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts_readme.md
var promptsReadme string

var builtinPrompts = map[string]string{
	driven.PromptMedicalAnswer: driven.DefaultMedicalAnswerPrompt,
}

// PromptStore serves prompt templates from <dir>/<name>.txt. The first Load
// seeds the directory with the built-in templates, never overwriting a file
// the user edited. Unreadable or empty files fall back to the built-in text.
type PromptStore struct {
	dir  string
	seed func() error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a store over dir, ~/.medibot/prompts when empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName, "prompts")
	}
	s := &PromptStore{dir: dir, cache: map[string]string{}}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Load returns the template text verbatim, surrounding newlines included.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, ok := builtinPrompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	if err := s.seed(); err != nil {
		logger.Debug("prompts: %v, using built-in %s", err, name)
		return builtin, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if text, ok := s.cache[name]; ok {
		return text, nil
	}
	text := builtin
	if raw, err := os.ReadFile(s.file(name)); err == nil && len(raw) > 0 {
		text = string(raw)
	}
	s.cache[name] = text
	return text, nil
}

// Reload forgets cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) file(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", s.dir, err)
	}
	files := map[string]string{filepath.Join(s.dir, "README.md"): promptsReadme}
	for name, text := range builtinPrompts {
		files[s.file(name)] = text
	}
	for path, text := range files {
		if err := createOnce(path, text); err != nil {
			return err
		}
	}
	return nil
}

// createOnce writes path unless it already exists.
func createOnce(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = f.WriteString(text)
	return errors.Join(err, f.Close())
}

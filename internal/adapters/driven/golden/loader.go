// Package golden reads evaluation sets of medical questions from YAML.
//
// A golden file looks like:
//
//	name: medlineplus-smoke
//	cases:
//	  - id: heart-attack
//	    question: What are the symptoms of a heart attack?
//	    expect: answer
//	    must_contain: [Overview, Symptoms]
//	  - id: hair-loss-vs-cancer
//	    question: Does hair loss cause cancer?
//	    expect: refuse
package golden

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.GoldenLoader = (*Loader)(nil)

// ErrNoCases is returned for a golden file without cases.
var ErrNoCases = errors.New("golden: file has no cases")

type goldenFile struct {
	Name  string       `yaml:"name"`
	Cases []goldenCase `yaml:"cases"`
}

type goldenCase struct {
	ID          string   `yaml:"id"`
	Question    string   `yaml:"question"`
	Expect      string   `yaml:"expect"`
	MustContain []string `yaml:"must_contain"`
}

// Loader parses golden YAML files.
type Loader struct{}

// NewLoader creates a golden file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and validates the golden set at path. The set name defaults to
// the file name, case IDs default to their 1-based position and expect
// defaults to answer.
func (l *Loader) Load(path string) (*domain.GoldenSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("golden: read %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("golden: %s: %w", path, err)
	}
	if set.Name == "" {
		base := filepath.Base(path)
		set.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return set, nil
}

// Parse decodes a golden set from YAML bytes.
func Parse(data []byte) (*domain.GoldenSet, error) {
	var gf goldenFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(gf.Cases) == 0 {
		return nil, ErrNoCases
	}

	set := &domain.GoldenSet{Name: gf.Name, Cases: make([]domain.GoldenCase, 0, len(gf.Cases))}
	seen := make(map[string]bool, len(gf.Cases))
	for i, c := range gf.Cases {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate case id %q", domain.ErrInvalidInput, id)
		}
		seen[id] = true

		expect := domain.Expectation(strings.ToLower(strings.TrimSpace(c.Expect)))
		switch expect {
		case "":
			expect = domain.ExpectAnswer
		case domain.ExpectAnswer, domain.ExpectRefuse:
		default:
			return nil, fmt.Errorf("%w: case %q: expect must be answer or refuse, got %q",
				domain.ErrInvalidInput, id, c.Expect)
		}

		set.Cases = append(set.Cases, domain.GoldenCase{
			ID:          id,
			Question:    c.Question,
			Expect:      expect,
			MustContain: c.MustContain,
		})
	}
	return set, nil
}

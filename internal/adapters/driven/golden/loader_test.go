package golden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

const sample = `
cases:
  - id: heart-attack
    question: What are the symptoms of a heart attack?
    must_contain: [Overview, Symptoms]
  - question: Does hair loss cause cancer?
    expect: REFUSE
`

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))

	set, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "smoke", set.Name)
	require.Len(t, set.Cases, 2)
	assert.Equal(t, domain.GoldenCase{
		ID:          "heart-attack",
		Question:    "What are the symptoms of a heart attack?",
		Expect:      domain.ExpectAnswer,
		MustContain: []string{"Overview", "Symptoms"},
	}, set.Cases[0])
	assert.Equal(t, "2", set.Cases[1].ID)
	assert.Equal(t, domain.ExpectRefuse, set.Cases[1].Expect)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"no cases", "name: empty\n", ErrNoCases},
		{"bad expect", "cases:\n  - question: q\n    expect: maybe\n", domain.ErrInvalidInput},
		{"duplicate ids", "cases:\n  - id: a\n    question: q\n  - id: a\n    question: r\n", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Parse([]byte("cases: [unclosed"))
	assert.Error(t, err)
}

func TestParse_KeepsName(t *testing.T) {
	set, err := Parse([]byte("name: custom\ncases:\n  - question: q\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom", set.Name)
}

package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

func named(name string) BuilderFunc {
	return func(cfg map[string]any) (driven.PostProcessor, error) {
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &stubStep{name: name}, nil
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())
	assert.False(t, r.Has("beta"))

	r.Register("beta", named("beta"))
	r.Register("alpha", named("alpha"))
	assert.True(t, r.Has("beta"))
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	proc, err := r.Build("beta", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", proc.Name())
}

func TestRegistry_BuildErrors(t *testing.T) {
	broken := errors.New("bad chunk_size")
	r := NewRegistry()
	RegisterDefaults(r)
	r.Register("broken", func(map[string]any) (driven.PostProcessor, error) { return nil, broken })

	_, err := r.Build("unknown", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "broken, chunker, textclean")

	_, err = r.Build("broken", nil)
	require.ErrorIs(t, err, broken)
	assert.Contains(t, err.Error(), "processor broken")
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"chunker", "textclean"}, r.Names())

	for _, name := range r.Names() {
		proc, err := r.Build(name, nil)
		require.NoError(t, err)
		assert.Equal(t, name, proc.Name())
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", map[string]any{
		"chunk_size": int64(60),
		"overlap":    float64(0),
		"separators": []any{";"},
	})
	require.NoError(t, err)

	got, err := proc.Process(context.Background(), &domain.Document{
		ID:      "doc",
		Content: "chest pain or discomfort in the center; pain in the arms or shoulders",
	}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2, "split on ';'")
	assert.Equal(t, " pain in the arms or shoulders", got[1].Content, "no overlap prefix")
}

func TestConfigValues(t *testing.T) {
	ints := []struct {
		name  string
		cfg   map[string]any
		want  int
		found bool
	}{
		{"int", map[string]any{"size": 100}, 100, true},
		{"int64", map[string]any{"size": int64(200)}, 200, true},
		{"float64", map[string]any{"size": float64(300)}, 300, true},
		{"zero is a value", map[string]any{"size": 0}, 0, true},
		{"string", map[string]any{"size": "400"}, 0, false},
		{"missing", map[string]any{"other": 100}, 0, false},
		{"nil config", nil, 0, false},
	}
	for _, tt := range ints {
		t.Run(tt.name, func(t *testing.T) {
			got, found := getIntFromConfig(tt.cfg, "size")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
		})
	}

	assert.Equal(t, []string{"a"}, getStringsFromConfig(map[string]any{"s": []string{"a"}}, "s"))
	assert.Equal(t, []string{"a", "b"}, getStringsFromConfig(map[string]any{"s": []any{"a", 1, "b"}}, "s"))
	assert.Nil(t, getStringsFromConfig(nil, "s"))
}

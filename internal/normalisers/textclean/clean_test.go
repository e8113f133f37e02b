package textclean

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "only short fragments",
			raw:  "Short. Fragments. Only here.",
			want: "",
		},
		{
			name: "collapses whitespace",
			raw:  "Heart   attack\t\tsymptoms include chest pain and shortness of breath",
			want: "Heart attack symptoms include chest pain and shortness of breath",
		},
		{
			name: "newline inside a sentence becomes a space",
			raw: "Diabetes is a chronic disease that affects how your body turns food into energy.\n" +
				"High blood sugar over time can damage the eyes, kidneys and nerves.",
			want: "Diabetes is a chronic disease that affects how your body turns food into energy. " +
				"High blood sugar over time can damage the eyes, kidneys and nerves",
		},
		{
			name: "drops short and copyright fragments",
			raw: "This sentence is long enough to survive the minimum length filter. Short one. " +
				"Copyright 2020 by the American Medical Association Press all rights.",
			want: "This sentence is long enough to survive the minimum length filter",
		},
		{
			name: "markers are case-insensitive",
			raw:  "See FIGURE 3 for a detailed illustration of the heart anatomy and vessels.",
			want: "",
		},
		{
			name: "markers match inside words",
			raw:  "Patients should wear comfortable clothing during exercise sessions.",
			want: "",
		},
		{
			name: "isbn and references dropped",
			raw: "ISBN 978-0-12-345678-9 second edition medical handbook printing. " +
				"References are listed at the end of every chapter of this handbook. " +
				"Hair loss can be caused by genetics, hormonal changes and medical conditions.",
			want: "Hair loss can be caused by genetics, hormonal changes and medical conditions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestClean_LengthBoundary(t *testing.T) {
	exact := strings.Repeat("a", MinFragmentLength)
	short := strings.Repeat("b", MinFragmentLength-1)

	assert.Equal(t, exact, Clean(exact+". "+short))
}

func TestClean_CountsCharactersNotBytes(t *testing.T) {
	// 40 characters, more than 40 bytes.
	fragment := strings.Repeat("é", MinFragmentLength)

	assert.Equal(t, fragment, Clean(fragment))
	assert.Empty(t, Clean(strings.Repeat("é", MinFragmentLength-1)))
}

func TestClean_Idempotent(t *testing.T) {
	raw := "Cancer is a large group of diseases that can start in almost any organ. " +
		"Tiny. Tobacco use, alcohol use and unhealthy diet are risk factors for cancer."

	once := Clean(raw)
	assert.Equal(t, once, Clean(once))
}

func TestProcessor(t *testing.T) {
	p := New()
	assert.Equal(t, "textclean", p.Name())

	doc := &domain.Document{
		ID:      "doc-1",
		Content: "Too short.   Hair loss (alopecia) can affect just your scalp or your entire body.",
	}
	in := []domain.Chunk{{ID: "existing"}}

	out, err := p.Process(context.Background(), doc, in)

	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "Hair loss (alopecia) can affect just your scalp or your entire body", doc.Content)
	assert.Greater(t, doc.Metadata["cleaned_bytes_removed"], 0)
}

func TestProcessor_EverythingDropped(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Content: "Table 1. Figure 2."}

	_, err := New().Process(context.Background(), doc, nil)

	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
}

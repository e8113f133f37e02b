package pdf

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/normalisers"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
	input  []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	// The input file is the argument before "-".
	if len(args) >= 2 {
		m.input, _ = os.ReadFile(args[len(args)-2])
	}
	return m.output, m.err
}

func TestNormaliser_Descriptors(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_WithRunner(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Gale Encyclopedia of Medicine\n\nDiabetes mellitus is a condition.\n\fInsulin therapy is used.\n\f"),
	}
	raw := &domain.RawDocument{
		Provenance: domain.ProvenancePDF,
		URI:        "/data/gale.pdf",
		MIMEType:   "application/pdf",
		Content:    []byte("%PDF-1.4 fake"),
	}

	result, err := NewWithRunner(runner).Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, toolName, runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, raw.Content, runner.input, "runner reads the raw bytes from a temp file")

	doc := result.Document
	assert.Equal(t, normalisers.DocumentID(domain.ProvenancePDF, "/data/gale.pdf"), doc.ID)
	assert.Equal(t, "Gale Encyclopedia of Medicine", doc.Title)
	assert.Equal(t, 2, doc.Metadata["pages"])
	assert.Equal(t, "pdf", doc.Metadata[domain.MetaFormat])
	assert.True(t, strings.HasSuffix(doc.Content, "condition.\n\n\nInsulin therapy is used."))
	assert.NotContains(t, doc.Content, "\f")
}

func TestNormalise_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	raw := &domain.RawDocument{URI: "/data/broken.pdf", MIMEType: "application/pdf"}

	result, err := NewWithRunner(runner).Normalise(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, result)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		uri     string
		want    string
	}{
		{"first line", "Heart Disease\n\nBody", "/a.pdf", "Heart Disease"},
		{"skips blank lines", "\n\n  Cancer  \nBody", "/a.pdf", "Cancer"},
		{"skips long line", strings.Repeat("x", 250) + "\nShort", "/a.pdf", "Short"},
		{"falls back to file name", "", "/data/medical_book.pdf", "medical book"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTitle(tt.content, tt.uri))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

// Package textclean removes noise from extracted medical text before it is
// chunked: whitespace runs, short fragments and publishing boilerplate.
package textclean

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// MinFragmentLength is the shortest fragment, in characters, that survives.
const MinFragmentLength = 40

// Separator joins surviving fragments.
const Separator = ". "

// BoilerplateMarkers drop any fragment containing them (case-insensitive).
var BoilerplateMarkers = []string{"copyright", "isbn", "figure", "table", "references"}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	fragmentBreak = regexp.MustCompile(`\.|\n`)
)

// Clean collapses whitespace, splits on sentence breaks and keeps only
// fragments of at least MinFragmentLength characters that carry no
// boilerplate marker. Returns "" when nothing survives.
func Clean(raw string) string {
	text := whitespaceRun.ReplaceAllString(raw, " ")

	var kept []string
	for _, fragment := range fragmentBreak.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) < MinFragmentLength {
			continue
		}
		if isBoilerplate(fragment) {
			continue
		}
		kept = append(kept, fragment)
	}

	return strings.Join(kept, Separator)
}

func isBoilerplate(fragment string) bool {
	lower := strings.ToLower(fragment)
	for _, marker := range BoilerplateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Processor cleans document content in place.
// It implements the PostProcessor interface and must run before chunking.
type Processor struct{}

var _ driven.PostProcessor = (*Processor)(nil)

// New creates a text cleaning processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "textclean"
}

// Process rewrites doc.Content with Clean and passes chunks through.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	before := len(doc.Content)
	doc.Content = Clean(doc.Content)
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["cleaned_bytes_removed"] = before - len(doc.Content)
	return chunks, nil
}

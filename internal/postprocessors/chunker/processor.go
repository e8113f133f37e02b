// Package chunker provides a recursive, separator-aware chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 400

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultSeparators are tried in order: paragraphs, sentences, clauses.
var DefaultSeparators = []string{"\n\n", ".", ";"}

// chunkNamespace scopes chunk IDs so they are stable across runs.
var chunkNamespace = uuid.MustParse("6f1c1f4e-3b5a-4f0e-9a43-0d7c2a1e5b91")

// Processor splits document content into bounded, overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators sets the separators in priority order.
// Empty separators are ignored.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		var kept []string
		for _, s := range separators {
			if s != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			p.separators = kept
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Chunk IDs derive from the document ID and position, so re-chunking the same
// document yields the same IDs.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.IsEmpty() {
		// Empty content produces no chunks
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Provenance: doc.Provenance,
			Content:    text,
			Position:   i,
			Metadata: map[string]any{
				domain.MetaTitle:    doc.Title,
				domain.MetaURI:      doc.URI,
				domain.MetaPosition: strconv.Itoa(i),
			},
		})
	}

	return chunks, nil
}

// ChunkID returns the stable ID of the chunk at position in document docID.
func ChunkID(docID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", docID, position))).String()
}

// Split breaks text into chunks of at most chunkSize characters.
// A unit that no separator can bring under chunkSize is emitted whole.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	units := p.splitUnits(text, p.separators)
	return p.merge(units)
}

// splitUnits splits text on the first separator it contains, keeping the
// separator at the end of each unit, and recurses with the remaining
// separators into units that are still too long.
func (p *Processor) splitUnits(text string, separators []string) []string {
	if runeLen(text) <= p.chunkSize {
		return []string{text}
	}

	sep, rest := "", []string(nil)
	for i, s := range separators {
		if strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}
	if sep == "" {
		// Atomic: no split point available.
		return []string{text}
	}

	var units []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if runeLen(part) > p.chunkSize {
			units = append(units, p.splitUnits(part, rest)...)
			continue
		}
		units = append(units, part)
	}
	return units
}

// merge packs consecutive units into chunks. Each new chunk starts with the
// trailing overlap characters of the previous one, shortened when the next
// unit would otherwise push the chunk past chunkSize.
func (p *Processor) merge(units []string) []string {
	var (
		chunks  []string
		current strings.Builder
		length  int
		filled  bool
	)

	flush := func() {
		if s := current.String(); strings.TrimSpace(s) != "" {
			chunks = append(chunks, s)
		}
	}

	for _, unit := range units {
		n := runeLen(unit)
		if filled && length+n > p.chunkSize {
			previous := current.String()
			flush()

			keep := min(p.overlap, max(p.chunkSize-n, 0))
			prefix := tail(previous, keep)
			current.Reset()
			current.WriteString(prefix)
			length = runeLen(prefix)
		}
		current.WriteString(unit)
		length += n
		filled = true
	}
	if filled {
		flush()
	}

	return chunks
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	total := runeLen(s)
	if n >= total {
		return s
	}
	skip := total - n
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}

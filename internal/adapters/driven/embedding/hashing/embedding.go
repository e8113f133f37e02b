// Package hashing provides an offline embedding service based on feature
// hashing of word tokens. It needs no model server, so it serves tests,
// air-gapped installs and quick local runs.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashing-512"
	DefaultDimensions = 512
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {}, "for": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "by": {}, "with": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "it": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "from": {}, "what": {},
	"how": {}, "does": {}, "do": {}, "can": {}, "will": {}, "should": {},
}

// EmbeddingService maps each token to a signed bucket and L2-normalises the
// resulting term-frequency vector. Identical text always yields the same vector.
type EmbeddingService struct {
	dims int
}

// NewEmbeddingService creates a hashing embedder. dims below 1 uses DefaultDimensions.
func NewEmbeddingService(dims int) *EmbeddingService {
	if dims < 1 {
		dims = DefaultDimensions
	}
	return &EmbeddingService{dims: dims}
}

// Embed hashes the tokens of text into a vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dims)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[sum%uint64(s.dims)] += sign
	}

	var norm float64
	for i, v := range vec {
		// Sublinear term frequency.
		if v != 0 {
			vec[i] = math.Copysign(1+math.Log(math.Abs(v)), v)
		}
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dims)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims
}

// ModelName returns the model identifier.
func (s *EmbeddingService) ModelName() string {
	if s.dims == DefaultDimensions {
		return DefaultModel
	}
	return "hashing-" + strconv.Itoa(s.dims)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}

package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// Normaliser extracts text from one family of formats. It does not clean
// the text; the post-processor pipeline does.
type Normaliser interface {
	SupportedMIMETypes() []string

	// Priority breaks ties between normalisers of one MIME type, highest
	// first. Format-aware normalisers use 50 and above, catch-alls below 10.
	Priority() int

	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

type NormaliseResult struct {
	Document domain.Document
}

// NormaliserRegistry routes a raw document to its normaliser by MIME type.
// A type nobody handles is domain.ErrUnsupportedType.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(n Normaliser)
	SupportedMIMETypes() []string
}

// Package plaintext is the catch-all normaliser: the bytes are the text.
package plaintext

import (
	"bytes"
	"cmp"
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// priority is below every format-aware normaliser sharing a MIME type.
const priority = 5

var utf8BOM = []byte("\xef\xbb\xbf")

type Normaliser struct{}

func New() *Normaliser { return &Normaliser{} }

func (*Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/markdown", "text/csv", "text/html"}
}

func (*Normaliser) Priority() int { return priority }

// Normalise drops a byte order mark, turns CRLF into LF and replaces
// invalid UTF-8 with U+FFFD so chunk offsets count whole runes.
func (*Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := bytes.TrimPrefix(raw.Content, utf8BOM)
	text = bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
	text = bytes.ToValidUTF8(text, []byte("�"))

	title := cmp.Or(normalisers.MetadataTitle(raw), normalisers.TitleFromURI(raw.URI))
	return &driven.NormaliseResult{
		Document: normalisers.NewDocument(raw, title, string(text), "text"),
	}, nil
}

package normalisers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// documentNamespace scopes document IDs.
var documentNamespace = uuid.MustParse("0b9d8a52-2f57-4c1e-8d2e-5f4b7c3a9e60")

// DocumentID returns the stable ID of the document at uri.
func DocumentID(provenance domain.Provenance, uri string) string {
	return uuid.NewSHA1(documentNamespace, []byte(provenance.String()+"|"+uri)).String()
}

// NewDocument builds a document from raw with the given title and text.
// Raw metadata is copied and annotated with the MIME type and format.
func NewDocument(raw *domain.RawDocument, title, content, format string) domain.Document {
	now := time.Now()
	metadata := CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[domain.MetaMIMEType] = raw.MIMEType
	if format != "" {
		metadata[domain.MetaFormat] = format
	}

	return domain.Document{
		ID:         DocumentID(raw.Provenance, raw.URI),
		Provenance: raw.Provenance,
		URI:        raw.URI,
		Title:      title,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MetadataTitle returns the title a connector set on raw, if any.
func MetadataTitle(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata[domain.MetaTitle].(string); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// TitleFromURI derives a readable title from the last path element of uri.
func TitleFromURI(uri string) string {
	name := filepath.Base(strings.TrimRight(uri, "/"))
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

package domain

import "time"

// Provenance tags where a document came from. It is used for bookkeeping
// only and never influences relevance decisions.
type Provenance string

// Known provenance tags.
const (
	// ProvenancePDF marks text extracted from a paginated file.
	ProvenancePDF Provenance = "pdf"

	// ProvenanceWeb marks text extracted from a trusted web page.
	ProvenanceWeb Provenance = "trusted_web"

	// ProvenanceCSV marks a single tabular record.
	ProvenanceCSV Provenance = "csv"
)

// IsValid returns true if the provenance tag is one of the known kinds.
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenancePDF, ProvenanceWeb, ProvenanceCSV:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Provenance) String() string {
	return string(p)
}

// Description returns a human-readable description of the provenance.
func (p Provenance) Description() string {
	switch p {
	case ProvenancePDF:
		return "Extracted file (PDF)"
	case ProvenanceWeb:
		return "Trusted web page"
	case ProvenanceCSV:
		return "Tabular record (CSV)"
	default:
		return "Unknown"
	}
}

// AllProvenances returns every known provenance tag.
func AllProvenances() []Provenance {
	return []Provenance{ProvenancePDF, ProvenanceWeb, ProvenanceCSV}
}

// Metadata keys shared by documents, chunks and index entries.
const (
	MetaProvenance = "source"
	MetaDocumentID = "document_id"
	MetaURI        = "uri"
	MetaTitle      = "title"
	MetaPosition   = "position"
	MetaMIMEType   = "mime_type"
	MetaFormat     = "format"
)

// Document is the normalised text of one ingested item.
// Content is rewritten once by text cleaning and is read-only afterwards.
type Document struct {
	// ID is the unique identifier for the document.
	// Derived from the URI so re-ingesting the same item replaces it.
	ID string

	// Provenance is the source kind of the document.
	Provenance Provenance

	// URI is the original location (file path, URL, file#row).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last indexed.
	UpdatedAt time.Time
}

// IsEmpty reports whether the document has no text left to chunk.
func (d *Document) IsEmpty() bool {
	return d == nil || d.Content == ""
}

// Chunk is a bounded-length slice of a Document, ready for embedding.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	// Deterministic for a given document ID and position.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Provenance is inherited from the parent Document.
	Provenance Provenance

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation, set by the indexer.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// StringMetadata flattens the chunk's bookkeeping fields and metadata into
// the string map expected by vector stores.
func (c Chunk) StringMetadata() map[string]string {
	out := make(map[string]string, len(c.Metadata)+3)
	for k, v := range c.Metadata {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	out[MetaProvenance] = c.Provenance.String()
	out[MetaDocumentID] = c.DocumentID
	return out
}

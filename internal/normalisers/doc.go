// Package normalisers turns raw bytes fetched by connectors into documents.
//
// Each subpackage handles one family of MIME types (pdf, html, csv,
// plaintext). The Registry in this package picks the highest-priority
// normaliser for a raw document's MIME type. Helpers shared by the
// subpackages give every document a stable ID derived from its provenance
// and URI, so re-ingesting a source replaces rather than duplicates it.
package normalisers

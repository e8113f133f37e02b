// Package csv renders tabular records as "header: value" text.
//
// A raw CSV document holds a header line followed by data lines. Every data
// line becomes one block of "header: value" lines; connectors that want one
// document per record emit a header plus a single record.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoHeader is returned when the CSV has no header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Normaliser handles CSV records.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv", "application/csv"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise renders each record as one "header: value" line per column.
// Records are separated by a blank line. The title is the first non-empty
// value of the first record.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw.Content, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: reading header of %s: %w", raw.URI, err)
	}

	var blocks []string
	title := normalisers.MetadataTitle(raw)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: reading %s: %w", raw.URI, err)
		}
		blocks = append(blocks, FormatRecord(header, record))
		if title == "" {
			title = firstValue(record)
		}
	}
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	doc := normalisers.NewDocument(raw, title, strings.Join(blocks, "\n\n"), "csv")
	return &driven.NormaliseResult{Document: doc}, nil
}

// FormatRecord pairs each value with its header. Extra values get a
// positional header; missing values are rendered empty.
func FormatRecord(header, record []string) string {
	n := len(header)
	if len(record) > n {
		n = len(record)
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			name = strings.TrimSpace(header[i])
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		lines = append(lines, name+": "+value)
	}
	return strings.Join(lines, "\n")
}

func firstValue(record []string) string {
	for _, v := range record {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

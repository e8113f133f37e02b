package filesystem

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

// CSVMIMEType is the MIME type of emitted records.
const CSVMIMEType = "text/csv"

// rowFragment separates the file path from the 1-based row number in a
// record URI.
const rowFragment = "#row="

var _ driven.Connector = (*CSVConnector)(nil)

// CSVConnector emits one document per data row of a CSV file. Each document
// holds the header line and that single row, so the CSV normaliser can pair
// values with column names.
type CSVConnector struct {
	base
	path string

	rowsMu sync.Mutex
	rows   int
}

// NewCSVConnector creates a connector for the CSV file at path.
func NewCSVConnector(path string, opts ...Option) *CSVConnector {
	c := &CSVConnector{path: ResolvePath(path)}
	for _, opt := range opts {
		opt(&c.base)
	}
	return c
}

// RowURI returns the URI of the row-th record (1-based) of the file at path.
func RowURI(path string, row int) string {
	return path + rowFragment + strconv.Itoa(row)
}

// Name identifies the connector in logs and reports.
func (c *CSVConnector) Name() string { return "csv:" + c.path }

// Provenance returns the tag stamped on every document.
func (c *CSVConnector) Provenance() domain.Provenance { return domain.ProvenanceCSV }

// Capabilities reports what the connector supports.
func (c *CSVConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: true}
}

// Validate checks that the CSV file exists and is a regular file.
func (c *CSVConnector) Validate(_ context.Context) error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("csv file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("csv file: %s is a directory", c.path)
	}
	return nil
}

// FullSync emits every row in file order.
func (c *CSVConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		if c.isClosed() {
			sendErr(ctx, errs, domain.ErrConnectorClosed) //nolint:errcheck // returning anyway
			return
		}
		records, err := c.readRecords()
		if err != nil {
			sendErr(ctx, errs, err) //nolint:errcheck // returning anyway
			return
		}
		c.setRows(len(records))

		for _, raw := range records {
			select {
			case docs <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}

// Watch reports row changes whenever the CSV file is written, replaced or
// removed. Every row of a rewritten file is reported as updated; rows past
// the new end of file are reported as deleted.
func (c *CSVConnector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	if c.isClosed() {
		return nil, domain.ErrConnectorClosed
	}
	dir := filepath.Dir(c.path)
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	accept := func(p string) bool { return filepath.Clean(p) == c.path }
	return c.startWatch(ctx, dir, false, accept, c.changes)
}

func (c *CSVConnector) changes(fc fileChange) []domain.RawDocumentChange {
	previous := c.rowCount()

	var records []domain.RawDocument
	if fc.typ != domain.ChangeDeleted {
		var err error
		records, err = c.readRecords()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			records = nil
		case err != nil:
			// A half-written or malformed file keeps the indexed rows until
			// the next write.
			logger.Warn("%s: skipping change: %v", c.Name(), err)
			return nil
		}
	}

	out := make([]domain.RawDocumentChange, 0, len(records)+previous)
	for i, raw := range records {
		typ := domain.ChangeUpdated
		if i >= previous {
			typ = domain.ChangeCreated
		}
		out = append(out, domain.RawDocumentChange{Type: typ, Document: raw})
	}
	for row := len(records) + 1; row <= previous; row++ {
		out = append(out, domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				Provenance: domain.ProvenanceCSV,
				URI:        RowURI(c.path, row),
				MIMEType:   CSVMIMEType,
			},
		})
	}
	c.setRows(len(records))
	return out
}

// readRecords parses the file and renders each data row as a two-line CSV
// document.
func (c *CSVConnector) readRecords() ([]domain.RawDocument, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header %s: %w", c.path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var out []domain.RawDocument
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv %s row %d: %w", c.path, row, err)
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll([][]string{header, record}); err != nil {
			return nil, fmt.Errorf("csv %s row %d: %w", c.path, row, err)
		}

		out = append(out, domain.RawDocument{
			Provenance: domain.ProvenanceCSV,
			URI:        RowURI(c.path, row),
			MIMEType:   CSVMIMEType,
			Content:    buf.Bytes(),
			Metadata:   map[string]any{"row": row, "file": c.path},
		})
	}
	return out, nil
}

func (c *CSVConnector) rowCount() int {
	c.rowsMu.Lock()
	defer c.rowsMu.Unlock()
	return c.rows
}

func (c *CSVConnector) setRows(n int) {
	c.rowsMu.Lock()
	defer c.rowsMu.Unlock()
	c.rows = n
}

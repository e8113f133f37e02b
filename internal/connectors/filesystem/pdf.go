package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// PDFMIMEType is the MIME type of emitted documents.
const PDFMIMEType = "application/pdf"

var _ driven.Connector = (*PDFConnector)(nil)

// PDFConnector emits every *.pdf file below a data directory.
type PDFConnector struct {
	base
	root string
}

// NewPDFConnector creates a connector for the PDFs under dataDir.
func NewPDFConnector(dataDir string, opts ...Option) *PDFConnector {
	c := &PDFConnector{root: ResolvePath(dataDir)}
	for _, opt := range opts {
		opt(&c.base)
	}
	return c
}

// Option configures a filesystem connector.
type Option func(*base)

// WithDebounce sets the quiet period before a file change is reported.
func WithDebounce(d time.Duration) Option {
	return func(b *base) { b.debounce = d }
}

// Name identifies the connector in logs and reports.
func (c *PDFConnector) Name() string { return "pdf:" + c.root }

// Provenance returns the tag stamped on every document.
func (c *PDFConnector) Provenance() domain.Provenance { return domain.ProvenancePDF }

// Capabilities reports what the connector supports.
func (c *PDFConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: true}
}

// Validate checks that the data directory exists.
func (c *PDFConnector) Validate(_ context.Context) error {
	return checkDir(c.root)
}

// FullSync walks the data directory and emits one document per PDF, in
// lexical path order. Unreadable files are reported on the error channel
// and skipped.
func (c *PDFConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		if c.isClosed() {
			sendErr(ctx, errs, domain.ErrConnectorClosed) //nolint:errcheck // returning anyway
			return
		}
		if err := checkDir(c.root); err != nil {
			sendErr(ctx, errs, err) //nolint:errcheck // returning anyway
			return
		}

		walkErr := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return sendErr(ctx, errs, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				if path != c.root && isHidden(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if isHidden(path) || !isPDF(path) {
				return nil
			}

			raw, err := c.read(path)
			if err != nil {
				return sendErr(ctx, errs, err)
			}
			select {
			case docs <- *raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && ctx.Err() == nil {
			sendErr(ctx, errs, walkErr) //nolint:errcheck // best effort
		}
	}()

	return docs, errs
}

// Watch reports created, updated and deleted PDFs under the data directory.
func (c *PDFConnector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	if c.isClosed() {
		return nil, domain.ErrConnectorClosed
	}
	if err := checkDir(c.root); err != nil {
		return nil, err
	}
	return c.startWatch(ctx, c.root, true, isPDF, func(fc fileChange) []domain.RawDocumentChange {
		return []domain.RawDocumentChange{c.change(fc)}
	})
}

// change converts a debounced file change into a document change.
// A file that vanished between the event and the read counts as deleted.
func (c *PDFConnector) change(fc fileChange) domain.RawDocumentChange {
	if fc.typ != domain.ChangeDeleted {
		if raw, err := c.read(fc.path); err == nil {
			return domain.RawDocumentChange{Type: fc.typ, Document: *raw}
		}
	}
	return domain.RawDocumentChange{
		Type: domain.ChangeDeleted,
		Document: domain.RawDocument{
			Provenance: domain.ProvenancePDF,
			URI:        fc.path,
			MIMEType:   PDFMIMEType,
		},
	}
}

func (c *PDFConnector) read(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return &domain.RawDocument{
		Provenance: domain.ProvenancePDF,
		URI:        path,
		MIMEType:   PDFMIMEType,
		Content:    content,
		Metadata: map[string]any{
			"relative_path": rel,
			"size":          info.Size(),
			"modified":      info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// sendErr reports err and lets the walk continue, unless ctx is done.
func sendErr(ctx context.Context, errs chan<- error, err error) error {
	select {
	case errs <- err:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

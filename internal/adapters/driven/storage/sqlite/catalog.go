package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// catalog implements driven.Catalog.
type catalog struct {
	store *Store
}

var _ driven.Catalog = (*catalog)(nil)

// SaveDocument upserts a document and replaces its chunk rows in one
// transaction. A document previously stored under the same URI with a
// different ID is removed first.
func (c *catalog) SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" || doc.URI == "" {
		return domain.ErrInvalidInput
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now()
	created := doc.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := doc.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE uri = ? AND id != ?`, doc.URI, doc.ID); err != nil {
		return fmt.Errorf("replacing document by uri: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, provenance, uri, title, content, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provenance = excluded.provenance,
			uri = excluded.uri,
			title = excluded.title,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Provenance.String(), doc.URI, doc.Title, doc.Content, string(metadata),
		formatTime(created), formatTime(updated))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, position, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.Position, chunk.Content); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document and, by cascade, its chunks.
func (c *catalog) DeleteDocument(ctx context.Context, id string) error {
	res, err := c.store.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByURI removes the document ingested from uri and returns its ID.
func (c *catalog) DeleteByURI(ctx context.Context, uri string) (string, error) {
	var id string
	err := c.store.db.QueryRowContext(ctx, `SELECT id FROM documents WHERE uri = ?`, uri).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up document by uri: %w", err)
	}
	if err := c.DeleteDocument(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// GetDocument retrieves a document by ID.
func (c *catalog) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	var provenance, createdAt, updatedAt string
	var title, metadata sql.NullString

	err := c.store.db.QueryRowContext(ctx, `
		SELECT id, provenance, uri, title, content, metadata, created_at, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &provenance, &doc.URI, &title, &doc.Content, &metadata, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	doc.Provenance = domain.Provenance(provenance)
	doc.Title = title.String
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return &doc, nil
}

// ListDocuments returns summaries sorted by URI. An empty provenance lists all.
func (c *catalog) ListDocuments(ctx context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT d.id, d.provenance, d.uri, d.title, d.updated_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN chunks c ON c.document_id = d.id
		WHERE ? = '' OR d.provenance = ?
		GROUP BY d.id
		ORDER BY d.uri
	`, provenance.String(), provenance.String())
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	out := []domain.DocumentSummary{}
	for rows.Next() {
		var s domain.DocumentSummary
		var prov, updatedAt string
		var title sql.NullString
		if err := rows.Scan(&s.ID, &prov, &s.URI, &title, &updatedAt, &s.Chunks); err != nil {
			return nil, fmt.Errorf("scanning document summary: %w", err)
		}
		s.Provenance = domain.Provenance(prov)
		s.Title = title.String
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}

// SaveRun stores an ingestion report.
func (c *catalog) SaveRun(ctx context.Context, report *domain.IngestReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	documents, err := json.Marshal(report.Documents)
	if err != nil {
		return fmt.Errorf("marshalling run documents: %w", err)
	}
	errs, err := json.Marshal(report.Errors)
	if err != nil {
		return fmt.Errorf("marshalling run errors: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, started_at, ended_at, documents, chunks, skipped, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			documents = excluded.documents,
			chunks = excluded.chunks,
			skipped = excluded.skipped,
			errors = excluded.errors
	`, report.RunID, formatTime(report.StartedAt), formatNullableTime(report.EndedAt),
		string(documents), report.Chunks, report.Skipped, string(errs))
	if err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when none exist.
func (c *catalog) LastRun(ctx context.Context) (*domain.IngestReport, error) {
	var report domain.IngestReport
	var startedAt string
	var endedAt, documents, errs sql.NullString

	err := c.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, documents, chunks, skipped, errors
		FROM ingest_runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&report.RunID, &startedAt, &endedAt, &documents, &report.Chunks, &report.Skipped, &errs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last run: %w", err)
	}

	report.StartedAt = parseTime(startedAt)
	report.EndedAt = parseNullableTime(endedAt)
	report.Documents = make(map[domain.Provenance]int)
	if documents.Valid && documents.String != "" {
		if err := json.Unmarshal([]byte(documents.String), &report.Documents); err != nil {
			return nil, fmt.Errorf("unmarshalling run documents: %w", err)
		}
	}
	if errs.Valid && errs.String != "" && errs.String != "null" {
		if err := json.Unmarshal([]byte(errs.String), &report.Errors); err != nil {
			return nil, fmt.Errorf("unmarshalling run errors: %w", err)
		}
	}
	return &report, nil
}

// Stats returns document counts per provenance, the chunk total and the
// last run.
func (c *catalog) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats := &domain.CatalogStats{Documents: make(map[domain.Provenance]int)}

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT provenance, COUNT(*) FROM documents GROUP BY provenance`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var prov string
		var n int
		if err := rows.Scan(&prov, &n); err != nil {
			return nil, fmt.Errorf("scanning document count: %w", err)
		}
		stats.Documents[domain.Provenance(prov)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document counts: %w", err)
	}

	if err := c.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&stats.Chunks); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	last, err := c.LastRun(ctx)
	if err != nil {
		return nil, err
	}
	stats.LastRun = last
	return stats, nil
}

// Reset removes all documents, chunks and runs.
func (c *catalog) Reset(ctx context.Context) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"chunks", "documents", "ingest_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

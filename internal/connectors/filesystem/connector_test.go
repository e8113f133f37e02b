package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

const testDebounce = 50 * time.Millisecond

// fullSync drains one FullSync call.
func fullSync(t *testing.T, sync func(context.Context) (<-chan domain.RawDocument, <-chan error)) ([]domain.RawDocument, []error) {
	t.Helper()
	docs, errs := sync(context.Background())
	var gotDocs []domain.RawDocument
	var gotErrs []error
	for docs != nil || errs != nil {
		select {
		case d, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			gotDocs = append(gotDocs, d)
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			gotErrs = append(gotErrs, e)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout collecting sync output")
		}
	}
	return gotDocs, gotErrs
}

func waitChange(t *testing.T, ch <-chan domain.RawDocumentChange) domain.RawDocumentChange {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "change channel closed")
		return change
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	return domain.RawDocumentChange{}
}

func TestPDFConnector_FullSync(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF b"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.PDF"), []byte("%PDF a"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cardiology"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cardiology", "heart.pdf"), []byte("%PDF h"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cache", "hidden.pdf"), []byte("%PDF x"), 0600))

	c := NewPDFConnector(dir)
	defer c.Close()
	require.NoError(t, c.Validate(context.Background()))

	docs, errs := fullSync(t, c.FullSync)
	assert.Empty(t, errs)
	require.Len(t, docs, 3)

	uris := []string{docs[0].URI, docs[1].URI, docs[2].URI}
	assert.Equal(t, []string{
		filepath.Join(dir, "A.PDF"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "cardiology", "heart.pdf"),
	}, uris)
	for _, d := range docs {
		assert.Equal(t, domain.ProvenancePDF, d.Provenance)
		assert.Equal(t, PDFMIMEType, d.MIMEType)
		assert.NotEmpty(t, d.Content)
	}
	assert.Equal(t, filepath.Join("cardiology", "heart.pdf"), docs[2].Metadata["relative_path"])
}

func TestPDFConnector_MissingDir(t *testing.T) {
	c := NewPDFConnector(filepath.Join(t.TempDir(), "missing"))

	err := c.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")

	docs, errs := fullSync(t, c.FullSync)
	assert.Empty(t, docs)
	require.Len(t, errs, 1)

	_, err = c.Watch(context.Background())
	assert.Error(t, err)
}

func TestPDFConnector_Closed(t *testing.T) {
	c := NewPDFConnector(t.TempDir())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Watch(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)

	_, errs := fullSync(t, c.FullSync)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrConnectorClosed)
}

func TestPDFConnector_Watch(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("%PDF old"), 0600))

	c := NewPDFConnector(dir, WithDebounce(testDebounce))
	defer c.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := c.Watch(ctx)
	require.NoError(t, err)

	created := filepath.Join(dir, "new.pdf")
	require.NoError(t, os.WriteFile(created, []byte("%PDF new"), 0600))
	change := waitChange(t, changes)
	assert.Equal(t, domain.ChangeCreated, change.Type)
	assert.Equal(t, created, change.Document.URI)
	assert.Equal(t, []byte("%PDF new"), change.Document.Content)

	// Non-PDF files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0600))

	require.NoError(t, os.Remove(existing))
	change = waitChange(t, changes)
	assert.Equal(t, domain.ChangeDeleted, change.Type)
	assert.Equal(t, existing, change.Document.URI)
	assert.Equal(t, domain.ProvenancePDF, change.Document.Provenance)

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestCSVConnector_FullSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disease_symptom.csv")
	writeCSV(t, path, "\ufeffDisease,Symptom_1\nDiabetes,fatigue\n\"Heart attack\",\"chest pain, sweating\"\n")

	c := NewCSVConnector(path)
	defer c.Close()
	require.NoError(t, c.Validate(context.Background()))

	docs, errs := fullSync(t, c.FullSync)
	assert.Empty(t, errs)
	require.Len(t, docs, 2)

	assert.Equal(t, RowURI(path, 1), docs[0].URI)
	assert.Equal(t, "Disease,Symptom_1\nDiabetes,fatigue\n", string(docs[0].Content))
	assert.Equal(t, "Disease,Symptom_1\nHeart attack,\"chest pain, sweating\"\n", string(docs[1].Content))
	assert.Equal(t, domain.ProvenanceCSV, docs[1].Provenance)
	assert.Equal(t, 2, docs[1].Metadata["row"])
}

func TestCSVConnector_Missing(t *testing.T) {
	c := NewCSVConnector(filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorIs(t, c.Validate(context.Background()), os.ErrNotExist)

	_, errs := fullSync(t, c.FullSync)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestCSVConnector_Changes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writeCSV(t, path, "Disease\nFlu\nMigraine\nAsthma\n")

	c := NewCSVConnector(path)
	_, errs := fullSync(t, c.FullSync)
	require.Empty(t, errs)

	writeCSV(t, path, "Disease\nFlu\n")
	changes := c.changes(fileChange{path: path, typ: domain.ChangeUpdated})
	require.Len(t, changes, 3)
	assert.Equal(t, domain.ChangeUpdated, changes[0].Type)
	assert.Equal(t, RowURI(path, 1), changes[0].Document.URI)
	assert.Equal(t, domain.ChangeDeleted, changes[1].Type)
	assert.Equal(t, RowURI(path, 2), changes[1].Document.URI)
	assert.Equal(t, RowURI(path, 3), changes[2].Document.URI)

	writeCSV(t, path, "Disease\nFlu\nGout\n")
	changes = c.changes(fileChange{path: path, typ: domain.ChangeUpdated})
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ChangeCreated, changes[1].Type)

	changes = c.changes(fileChange{path: path, typ: domain.ChangeDeleted})
	require.Len(t, changes, 2)
	for _, ch := range changes {
		assert.Equal(t, domain.ChangeDeleted, ch.Type)
	}
}

func TestCSVConnector_UnreadableRewriteKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writeCSV(t, path, "Disease\nFlu\nMigraine\n")

	c := NewCSVConnector(path)
	_, errs := fullSync(t, c.FullSync)
	require.Empty(t, errs)

	// A bare quote is a parse error.
	writeCSV(t, path, "Disease\nFl\"u\n")
	assert.Empty(t, c.changes(fileChange{path: path, typ: domain.ChangeUpdated}))
	assert.Equal(t, 2, c.rowCount())

	writeCSV(t, path, "Disease\nFlu\nMigraine\n")
	changes := c.changes(fileChange{path: path, typ: domain.ChangeUpdated})
	require.Len(t, changes, 2)
	for _, ch := range changes {
		assert.Equal(t, domain.ChangeUpdated, ch.Type)
	}

	require.NoError(t, os.Remove(path))
	changes = c.changes(fileChange{path: path, typ: domain.ChangeUpdated})
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ChangeDeleted, changes[0].Type)
}

func TestCSVConnector_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	writeCSV(t, path, "Disease\nFlu\n")

	c := NewCSVConnector(path, WithDebounce(testDebounce))
	defer c.Close()
	_, errs := fullSync(t, c.FullSync)
	require.Empty(t, errs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := c.Watch(ctx)
	require.NoError(t, err)

	// Other files in the directory are ignored.
	writeCSV(t, filepath.Join(dir, "other.csv"), "a\nb\n")
	writeCSV(t, path, "Disease\nInfluenza\n")

	change := waitChange(t, changes)
	assert.Equal(t, domain.ChangeUpdated, change.Type)
	assert.Equal(t, RowURI(path, 1), change.Document.URI)
	assert.Contains(t, string(change.Document.Content), "Influenza")
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("/data/.git"))
	assert.True(t, isHidden(".DS_Store"))
	assert.False(t, isHidden("/data/book.pdf"))
	assert.False(t, isHidden("."))
}

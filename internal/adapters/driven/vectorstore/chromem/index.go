// Package chromem provides the persistent vector index backed by chromem-go.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// CollectionName is the chromem collection holding every chunk.
const CollectionName = "medical_chunks"

// collectionMetadata records the distance space of the collection.
var collectionMetadata = map[string]string{"hnsw:space": "cosine"}

// noEmbed refuses to embed: every chunk and query arrives with a vector, so
// chromem must never call out to a model on its own.
func noEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("chromem: embeddings must be supplied by the caller")
}

// Index stores chunks in a chromem persistent DB under one directory.
type Index struct {
	dir string
	db  *chromem.DB

	mu  sync.RWMutex
	col *chromem.Collection
}

// Exists reports whether dir holds a persisted index.
func Exists(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// Open opens or creates the index in dir. Ingestion uses it.
func Open(dir string) (*Index, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", dir, err)
	}
	col, err := db.GetOrCreateCollection(CollectionName, collectionMetadata, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", CollectionName, err)
	}
	logger.Debug("Vector index %s: %d chunks", dir, col.Count())
	return &Index{dir: dir, db: db, col: col}, nil
}

// OpenExisting opens an index that ingestion has already written. It never
// creates anything: a missing directory or collection is ErrIndexNotFound
// and a collection without chunks is ErrIndexEmpty.
func OpenExisting(dir string) (*Index, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, dir)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", dir, err)
	}
	col := db.GetCollection(CollectionName, noEmbed)
	if col == nil {
		return nil, fmt.Errorf("%w: no %s collection in %s", domain.ErrIndexNotFound, CollectionName, dir)
	}
	if col.Count() == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexEmpty, dir)
	}
	logger.Debug("Loaded vector index %s: %d chunks", dir, col.Count())
	return &Index{dir: dir, db: db, col: col}, nil
}

// Add stores chunks with their embeddings in one batch.
func (x *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	vecs := make([][]float32, len(chunks))
	metas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s: %w: missing embedding", c.ID, domain.ErrInvalidInput)
		}
		ids[i] = c.ID
		vecs[i] = c.Embedding
		metas[i] = c.StringMetadata()
		contents[i] = c.Content
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.col.Add(ctx, ids, vecs, metas, contents); err != nil {
		return fmt.Errorf("add %d chunks: %w", len(chunks), err)
	}
	return nil
}

// Search returns at most k passages ordered by descending cosine similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.Passage, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	// chromem rejects a result count above the collection size.
	n := min(k, x.col.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := x.col.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	passages := make([]domain.Passage, len(results))
	for i, r := range results {
		passages[i] = domain.Passage{
			ChunkID:    r.ID,
			Content:    r.Content,
			Provenance: domain.Provenance(r.Metadata[domain.MetaProvenance]),
			Score:      float64(r.Similarity),
			Metadata:   r.Metadata,
		}
	}
	return passages, nil
}

// DeleteDocument removes every chunk whose document_id matches.
func (x *Index) DeleteDocument(ctx context.Context, documentID string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	where := map[string]string{domain.MetaDocumentID: documentID}
	if err := x.col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.col.Count()
}

// Reset drops the collection and creates it again empty.
func (x *Index) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.db.DeleteCollection(CollectionName); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	col, err := x.db.GetOrCreateCollection(CollectionName, collectionMetadata, noEmbed)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	x.col = col
	return nil
}

// Dir returns the index directory.
func (x *Index) Dir() string {
	return x.dir
}

// Close is a no-op: chromem persists every write immediately.
func (x *Index) Close() error {
	return nil
}

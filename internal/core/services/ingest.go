package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded per request.
const DefaultEmbedBatchSize = 32

// IngestService pulls documents from connectors, normalises and chunks
// them, embeds the chunks and records everything in the vector index and
// the catalog.
type IngestService struct {
	connectors []driven.Connector
	registry   driven.NormaliserRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	catalog    driven.Catalog

	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	running bool

	// writeMu serialises full runs with watched changes.
	writeMu sync.Mutex
}

// NewIngestService creates an ingestion service over the given connectors.
func NewIngestService(
	connectors []driven.Connector,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	catalog driven.Catalog,
) *IngestService {
	return &IngestService{
		connectors: connectors,
		registry:   registry,
		pipeline:   pipeline,
		embedder:   embedder,
		index:      index,
		catalog:    catalog,
		batchSize:  DefaultEmbedBatchSize,
		now:        time.Now,
	}
}

// SetBatchSize sets how many chunks are embedded per request.
// Values below one keep the current size.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Ingest runs a full sync of every selected connector. Failures of single
// documents or sources are recorded in the report and do not stop the run;
// the run fails with ErrNothingIndexed when no chunk was indexed.
func (s *IngestService) Ingest(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	if !s.acquire() {
		return nil, domain.ErrIngestInProgress
	}
	defer s.release()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	logger.Section("Ingest")
	defer logger.Timed("Ingest")()

	report := domain.NewIngestReport(uuid.NewString(), s.now())

	if opts.Reset {
		logger.Info("Resetting vector index and catalog")
		if err := s.index.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
		if err := s.catalog.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset catalog: %w", err)
		}
	}

	var errs []error
	for _, conn := range s.connectors {
		if !opts.Includes(conn.Provenance()) {
			continue
		}
		if err := s.syncConnector(ctx, conn, report); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: %v", conn.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", conn.Name(), err))
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", conn.Name(), err))
		}
	}

	report.EndedAt = s.now()
	if err := s.catalog.SaveRun(ctx, report); err != nil {
		logger.Warn("saving ingest run: %v", err)
	}

	logger.Info("Ingested %d documents, %d chunks, %d skipped, %d errors",
		report.TotalDocuments(), report.Chunks, report.Skipped, len(report.Errors))

	if report.Chunks == 0 {
		return report, errors.Join(append([]error{domain.ErrNothingIndexed}, errs...)...)
	}
	return report, nil
}

// syncConnector drains one connector's full sync into the report. Document
// errors are recorded; a returned error means the source itself failed.
func (s *IngestService) syncConnector(ctx context.Context, conn driven.Connector, report *domain.IngestReport) error {
	if err := conn.Validate(ctx); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	logger.Info("Syncing %s", conn.Name())
	docsCh, errsCh := conn.FullSync(ctx)

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("%s: %v", conn.Name(), err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", conn.Name(), err))

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			logger.Debug("Processing: %s", raw.URI)
			n, err := s.processDocument(ctx, &raw)
			switch {
			case err != nil:
				logger.Warn("%s: %v", raw.URI, err)
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", raw.URI, err))
			case n == 0:
				logger.Debug("Skipping %s: no text survived cleaning", raw.URI)
				report.Skipped++
			default:
				report.Documents[conn.Provenance()]++
				report.Chunks += n
			}
		}
	}
	return nil
}

// processDocument normalises, chunks, embeds and stores one document,
// replacing any earlier version. It returns the number of chunks indexed.
func (s *IngestService) processDocument(ctx context.Context, raw *domain.RawDocument) (int, error) {
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("normalise: %w", err)
	}
	doc := &result.Document
	if doc.Provenance == "" {
		doc.Provenance = raw.Provenance
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("post-process: %w", err)
	}

	// Old chunks are removed only once the new ones are embedded.
	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if err := s.index.DeleteDocument(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("remove previous chunks: %w", err)
	}
	if len(chunks) == 0 {
		if _, err := s.catalog.DeleteByURI(ctx, doc.URI); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("remove previous document: %w", err)
		}
		return 0, nil
	}
	if err := s.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}
	if err := s.catalog.SaveDocument(ctx, doc, chunks); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}
	return len(chunks), nil
}

// embedChunks fills in chunk embeddings in batches.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	size := s.batchSize
	if size < 1 {
		size = DefaultEmbedBatchSize
	}

	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// Watch applies file changes from every watch-capable connector until ctx
// is cancelled.
func (s *IngestService) Watch(ctx context.Context) error {
	var channels []<-chan domain.RawDocumentChange
	for _, conn := range s.connectors {
		if !conn.Capabilities().SupportsWatch {
			continue
		}
		ch, err := conn.Watch(ctx)
		if err != nil {
			logger.Warn("%s: watch: %v", conn.Name(), err)
			continue
		}
		logger.Info("Watching %s", conn.Name())
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return fmt.Errorf("watch: %w: no connector can be watched", domain.ErrInvalidInput)
	}

	merged := mergeChanges(ctx, channels)
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-merged:
			if !ok {
				return nil
			}
			s.applyChange(ctx, change)
		}
	}
}

// applyChange handles one watched change.
func (s *IngestService) applyChange(ctx context.Context, change domain.RawDocumentChange) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	uri := change.Document.URI
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		n, err := s.processDocument(ctx, &change.Document)
		if err != nil {
			logger.Warn("%s: %v", uri, err)
			return
		}
		logger.Info("Re-indexed %s (%s, %d chunks)", uri, change.Type, n)

	case domain.ChangeDeleted:
		id, err := s.catalog.DeleteByURI(ctx, uri)
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		if err != nil {
			logger.Warn("%s: remove: %v", uri, err)
			return
		}
		if err := s.index.DeleteDocument(ctx, id); err != nil {
			logger.Warn("%s: remove chunks: %v", uri, err)
			return
		}
		logger.Info("Removed %s", uri)
	}
}

func (s *IngestService) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *IngestService) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// mergeChanges fans several change channels into one. The result closes
// when every input has closed.
func mergeChanges(ctx context.Context, inputs []<-chan domain.RawDocumentChange) <-chan domain.RawDocumentChange {
	out := make(chan domain.RawDocumentChange)
	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(in <-chan domain.RawDocumentChange) {
			defer wg.Done()
			for change := range in {
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}(in)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// --- Ask pipeline mocks ---

// mockEmbedder returns a fixed vector.
type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.vec) }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex returns canned passages.
type mockIndex struct {
	passages []domain.Passage
	err      error
	lastK    int
	searched int
}

func (m *mockIndex) Add(_ context.Context, _ []domain.Chunk) error { return nil }

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.Passage, error) {
	m.searched++
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Passage, len(m.passages))
	copy(out, m.passages)
	return out, nil
}

func (m *mockIndex) DeleteDocument(_ context.Context, _ string) error { return nil }
func (m *mockIndex) Count() int                                       { return len(m.passages) }
func (m *mockIndex) Reset(_ context.Context) error                    { return nil }
func (m *mockIndex) Close() error                                     { return nil }

// mockLLM records prompts and returns a fixed response.
type mockLLM struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore serves one template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.template, nil
}

func (m *mockPromptStore) Reload() {}

// mockAskService returns answers keyed by question.
type mockAskService struct {
	answers map[string]*domain.Answer
	err     error
	asked   []string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.err != nil {
		return nil, m.err
	}
	if a, ok := m.answers[question]; ok {
		return a, nil
	}
	return &domain.Answer{Question: question, Text: domain.RefusalAnswer, Outcome: domain.OutcomeRefused}, nil
}

// --- Ingest mocks ---

// mockConnector emits a fixed set of raw documents and errors.
type mockConnector struct {
	name        string
	provenance  domain.Provenance
	docs        []domain.RawDocument
	errs        []error
	validateErr error
	watch       chan domain.RawDocumentChange
	synced      int
}

func (m *mockConnector) Name() string                  { return m.name }
func (m *mockConnector) Provenance() domain.Provenance { return m.provenance }

func (m *mockConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: m.watch != nil}
}

func (m *mockConnector) Validate(_ context.Context) error { return m.validateErr }

func (m *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	m.synced++
	docs := make(chan domain.RawDocument)
	errs := make(chan error)
	go func() {
		defer close(docs)
		defer close(errs)
		for _, err := range m.errs {
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
		}
		for _, d := range m.docs {
			select {
			case docs <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return docs, errs
}

func (m *mockConnector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	if m.watch == nil {
		return nil, errors.New("watch not supported")
	}
	return m.watch, nil
}

func (m *mockConnector) Close() error { return nil }

// mockRegistry turns raw content into a document keyed by URI.
type mockRegistry struct {
	err error
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.HasPrefix(string(raw.Content), "unsupported") {
		return nil, domain.ErrUnsupportedType
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:         "doc-" + raw.URI,
		Provenance: raw.Provenance,
		URI:        raw.URI,
		Title:      raw.URI,
		Content:    string(raw.Content),
	}}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser) {}
func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockPipeline splits content on "|" into chunks.
type mockPipeline struct{}

func (mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, part := range strings.Split(doc.Content, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         doc.ID + "-" + string(rune('a'+i)),
			DocumentID: doc.ID,
			Provenance: doc.Provenance,
			Content:    part,
			Position:   i,
		})
	}
	return chunks, nil
}

// mockIngestService counts Ingest calls.
type mockIngestService struct {
	mu     sync.Mutex
	calls  int
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ domain.IngestOptions) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.report, m.err
}

func (m *mockIngestService) Watch(_ context.Context) error { return nil }

func (m *mockIngestService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Scheduler and settings mocks ---

// mockSchedulerStore keeps tasks and history in memory. History is
// appended oldest first and returned newest first.
type mockSchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]domain.ScheduledTask
	results map[string][]domain.TaskResult
	getErr  error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   map[string]domain.ScheduledTask{},
		results: map[string][]domain.TaskResult{},
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, id string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *mockSchedulerStore) RecordRun(ctx context.Context, task *domain.ScheduledTask, result domain.TaskResult, keep int) error {
	if err := m.SaveTask(ctx, task); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := append(m.results[task.ID], result)
	if keep > 0 && len(runs) > keep {
		runs = runs[len(runs)-keep:]
	}
	m.results[task.ID] = runs
	return nil
}

func (m *mockSchedulerStore) History(_ context.Context, id string, limit int) ([]domain.TaskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := slices.Clone(m.results[id])
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *mockSchedulerStore) task(id string) *domain.ScheduledTask {
	t, _ := m.GetTask(context.Background(), id)
	return t
}

// mockAIValidator records validations.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

// Ensure mocks implement interfaces.
var (
	_ driven.EmbeddingService      = (*mockEmbedder)(nil)
	_ driven.VectorIndex           = (*mockIndex)(nil)
	_ driven.LLMService            = (*mockLLM)(nil)
	_ driven.PromptStore           = (*mockPromptStore)(nil)
	_ driven.Connector             = (*mockConnector)(nil)
	_ driven.NormaliserRegistry    = (*mockRegistry)(nil)
	_ driven.PostProcessorPipeline = mockPipeline{}
	_ driven.SchedulerStore        = (*mockSchedulerStore)(nil)
	_ driven.AIConfigValidator     = (*mockAIValidator)(nil)
	_ driving.AskService           = (*mockAskService)(nil)
	_ driving.IngestService        = (*mockIngestService)(nil)
)

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// mockAskService records questions and answers with answerFn.
type mockAskService struct {
	questions []string
	answerFn  func(question string) (*domain.Answer, error)
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.answerFn != nil {
		return m.answerFn(question)
	}
	return &domain.Answer{Question: question, Text: domain.RefusalAnswer, Outcome: domain.OutcomeRefused}, nil
}

// mockIngestService returns a fixed report.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
	opts   []domain.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	m.opts = append(m.opts, opts)
	return m.report, m.err
}

func (m *mockIngestService) Watch(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// mockCatalogService returns fixed stats and documents.
type mockCatalogService struct {
	stats      *domain.CatalogStats
	docs       []domain.DocumentSummary
	provenance domain.Provenance
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return m.stats, nil
}

func (m *mockCatalogService) ListDocuments(_ context.Context, provenance domain.Provenance) ([]domain.DocumentSummary, error) {
	m.provenance = provenance
	return m.docs, nil
}

func (m *mockCatalogService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

// mockEvalService returns a fixed report.
type mockEvalService struct {
	report *domain.EvalReport
	set    *domain.GoldenSet
}

func (m *mockEvalService) Run(_ context.Context, set *domain.GoldenSet) (*domain.EvalReport, error) {
	m.set = set
	return m.report, nil
}

// mockGoldenLoader returns a fixed set.
type mockGoldenLoader struct {
	set  *domain.GoldenSet
	path string
}

func (m *mockGoldenLoader) Load(path string) (*domain.GoldenSet, error) {
	m.path = path
	return m.set, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	setErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *mockSettingsService) Validate() error                { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error       { return nil }

var _ driving.SettingsService = (*mockSettingsService)(nil)

// fakeOpener hands out svc and records requests.
type fakeOpener struct {
	svc      *Services
	err      error
	requests []Request
	closed   int
}

func (f *fakeOpener) open(_ context.Context, req Request) (*Services, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	f.svc.Close = func() error {
		f.closed++
		return nil
	}
	return f.svc, nil
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, o *fakeOpener, stdin string, args ...string) (string, error) {
	t.Helper()

	oldOpener := opener
	if o != nil {
		opener = o.open
	} else {
		opener = nil
	}
	askJSON, evalJSON, statusJSON, statusDocuments = false, false, false, false
	ingestReset, ingestWatch = false, false
	ingestSchedule, statusSource, evalGolden, configDir = "", "", "", ""
	ingestSources = nil
	servePort, mcpPort, mcpHost = 0, 0, "127.0.0.1"
	versionShort = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		opener = oldOpener
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

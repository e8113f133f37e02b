// Package app assembles adapters and services into a Runtime.
//
// A Runtime is built once per process, shared read-only by every request
// and closed at shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/medibot/internal/adapters/driven/ai"
	"github.com/custodia-labs/medibot/internal/adapters/driven/config/env"
	"github.com/custodia-labs/medibot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/medibot/internal/adapters/driven/golden"
	"github.com/custodia-labs/medibot/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/medibot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/medibot/internal/adapters/driven/vectorstore/chromem"
	"github.com/custodia-labs/medibot/internal/connectors/filesystem"
	"github.com/custodia-labs/medibot/internal/connectors/web"
	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/services"
	"github.com/custodia-labs/medibot/internal/logger"
	"github.com/custodia-labs/medibot/internal/normalisers"
	csvnorm "github.com/custodia-labs/medibot/internal/normalisers/csv"
	"github.com/custodia-labs/medibot/internal/normalisers/html"
	"github.com/custodia-labs/medibot/internal/normalisers/pdf"
	"github.com/custodia-labs/medibot/internal/normalisers/plaintext"
	"github.com/custodia-labs/medibot/internal/postprocessors"
)

// VectorStoreDir is the index directory inside the home directory.
const VectorStoreDir = "vectorstore"

// Purpose selects which parts of the runtime are opened.
type Purpose int

const (
	// PurposeInspect opens settings and the catalog. The index is opened
	// only when it already exists and no model is contacted.
	PurposeInspect Purpose = iota

	// PurposeIngest opens everything ingestion needs and creates the index
	// when it is missing.
	PurposeIngest

	// PurposeAsk opens an existing index together with both models.
	PurposeAsk

	// PurposeSettings opens the configuration only.
	PurposeSettings
)

// Options configures Open.
type Options struct {
	// Home is the state directory. Empty means ~/.medibot.
	Home string

	Purpose Purpose
}

// Runtime holds every long-lived component of one process.
type Runtime struct {
	Home     string
	Settings *domain.AppSettings

	SettingsService *services.SettingsService
	Catalog         *services.CatalogService
	Ingest          *services.IngestService
	Ask             *services.AskService
	Eval            *services.EvalService
	Golden          *golden.Loader

	Store    *sqlite.Store
	Index    driven.VectorIndex
	Embedder driven.EmbeddingService
	LLM      driven.LLMService

	closers []func() error
}

// ResolveHome returns dir, or ~/.medibot when dir is empty.
func ResolveHome(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, file.DefaultDirName), nil
}

// Open builds a Runtime for the given purpose. On error everything opened
// so far is closed again.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	home, err := ResolveHome(opts.Home)
	if err != nil {
		return nil, err
	}

	r := &Runtime{Home: home, Golden: golden.NewLoader()}
	if err := r.open(ctx, opts.Purpose); err != nil {
		if cerr := r.Close(); cerr != nil {
			logger.Debug("Closing partial runtime: %v", cerr)
		}
		return nil, err
	}
	return r, nil
}

func (rt *Runtime) open(ctx context.Context, purpose Purpose) error {
	if err := rt.openSettings(); err != nil {
		return err
	}
	if purpose == PurposeSettings {
		return nil
	}

	store, err := sqlite.NewStore(rt.Home)
	if err != nil {
		return err
	}
	rt.Store = store
	rt.closers = append(rt.closers, store.Close)

	switch purpose {
	case PurposeAsk:
		err = rt.openForAsk(ctx)
	case PurposeIngest:
		err = rt.openForIngest(ctx)
	default:
		err = rt.openForInspect()
	}
	if err != nil {
		return err
	}

	rt.Catalog = services.NewCatalogService(store.Catalog(), rt.Index).WithSchedulerStore(store.SchedulerStore())
	return nil
}

func (rt *Runtime) openSettings() error {
	configStore, err := file.NewConfigStore(rt.Home)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	rt.SettingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := rt.SettingsService.Get()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := env.LoadAndApply(settings); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	rt.Settings = settings
	logger.Debug("Home %s, embedding %s/%s, llm %s/%s", rt.Home,
		settings.Embedding.Provider, settings.Embedding.Model, settings.LLM.Provider, settings.LLM.Model)
	return nil
}

// IndexDir returns the vector index directory.
func (rt *Runtime) IndexDir() string {
	return filepath.Join(rt.Home, VectorStoreDir)
}

func (rt *Runtime) openForInspect() error {
	if !chromem.Exists(rt.IndexDir()) {
		return nil
	}
	index, err := chromem.Open(rt.IndexDir())
	if err != nil {
		return err
	}
	rt.setIndex(index)
	return nil
}

func (rt *Runtime) openForAsk(ctx context.Context) error {
	if err := services.ValidateSettings(rt.Settings, rt.SettingsService.GetPipelineConfig()); err != nil {
		return err
	}

	// The index is checked first so a missing index fails without
	// contacting any model.
	index, err := chromem.OpenExisting(rt.IndexDir())
	if err != nil {
		return err
	}
	rt.setIndex(index)

	if err := rt.openEmbedder(ctx); err != nil {
		return err
	}
	llm, err := ai.CreateAndValidateLLMService(ctx, &rt.Settings.LLM)
	if err != nil {
		return err
	}
	rt.LLM = llm
	rt.closers = append(rt.closers, llm.Close)

	prompts, err := file.NewPromptStore(filepath.Join(rt.Home, "prompts"))
	if err != nil {
		return err
	}

	rt.Ask = services.NewAskService(rt.Embedder, rt.Index, llm, prompts, rt.Settings.Ask)
	rt.Eval = services.NewEvalService(rt.Ask)
	return nil
}

func (rt *Runtime) openForIngest(ctx context.Context) error {
	if !rt.Settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider not configured", domain.ErrEmbeddingUnavailable)
	}
	pipelineCfg := rt.SettingsService.GetPipelineConfig()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, pipelineCfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	logger.Debug("Chunk pipeline: %s", strings.Join(pipeline.Names(), " -> "))

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("PDF files cannot be read: %v\n%s", err, pdf.InstallInstructions())
	}
	norms := normalisers.NewRegistry(pdf.New(), html.New(), csvnorm.New(), plaintext.New())

	pages, err := bolt.Open(rt.Home)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, pages.Close)

	index, err := chromem.Open(rt.IndexDir())
	if err != nil {
		return err
	}
	rt.setIndex(index)

	if err := rt.openEmbedder(ctx); err != nil {
		return err
	}

	connectors := Connectors(rt.Settings.Ingest, pages)
	for _, c := range connectors {
		rt.closers = append(rt.closers, c.Close)
	}

	rt.Ingest = services.NewIngestService(connectors, norms, pipeline, rt.Embedder, rt.Index, rt.Store.Catalog())
	rt.Ingest.SetBatchSize(rt.Settings.Ingest.BatchSize)
	return nil
}

func (rt *Runtime) openEmbedder(ctx context.Context) error {
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &rt.Settings.Embedding)
	if err != nil {
		return err
	}
	rt.Embedder = embedder
	rt.closers = append(rt.closers, embedder.Close)
	return nil
}

func (rt *Runtime) setIndex(index driven.VectorIndex) {
	rt.Index = index
	rt.closers = append(rt.closers, index.Close)
}

// Connectors returns the ingestion sources for the given settings: the PDF
// directory, the trusted URLs and, when the file exists, the CSV table.
func Connectors(settings domain.IngestSettings, pages driven.PageCache) []driven.Connector {
	connectors := []driven.Connector{
		filesystem.NewPDFConnector(settings.DataDir),
		web.New(web.Config{URLs: settings.URLs, RatePerSec: settings.RateLimit}, pages),
	}
	if settings.CSVFile == "" {
		return connectors
	}
	if _, err := os.Stat(settings.CSVFile); err != nil {
		logger.Debug("No CSV source at %s", settings.CSVFile)
		return connectors
	}
	return append(connectors, filesystem.NewCSVConnector(settings.CSVFile))
}

// NewScheduler returns a scheduler that refreshes the knowledge base on
// the given cron expression. It requires an ingest runtime.
func (rt *Runtime) NewScheduler(schedule string) (*services.Scheduler, error) {
	if rt.Ingest == nil {
		return nil, errors.New("app: scheduler requires an ingest runtime")
	}
	return services.NewScheduler(schedule, rt.Store.SchedulerStore(), rt.Ingest)
}

// Close releases everything in reverse opening order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

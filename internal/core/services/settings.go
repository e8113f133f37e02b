package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyAskTopK           = "ask.top_k"
	keyAskMinMatches     = "ask.min_matches"
	keyAskMaxContext     = "ask.max_context_chars"
	keyAskMaxTokens      = "ask.max_tokens"
	keyAskTemperature    = "ask.temperature"
	keyAskTimeout        = "ask.timeout"
	keyIngestDataDir     = "ingest.data_dir"
	keyIngestCSVFile     = "ingest.csv_file"
	keyIngestURLs        = "ingest.urls"
	keyIngestRateLimit   = "ingest.rate_limit"
	keyIngestSchedule    = "ingest.schedule"
	keyIngestBatchSize   = "ingest.batch_size"
	keyServerPort        = "server.port"
	keyPipelineProcessor = "pipeline.processors"
)

// defaultOllamaURL is filled in for local providers without a base URL.
const defaultOllamaURL = "http://localhost:11434"

// settingKind decides how Set parses a value.
type settingKind int

const (
	kindString settingKind = iota
	kindProvider
	kindPositiveInt
	kindFloat
	kindDuration
	kindList
	kindSchedule
)

// settableKeys lists every key accepted by Set.
var settableKeys = map[string]settingKind{
	keyEmbedProvider:              kindProvider,
	keyEmbedModel:                 kindString,
	keyEmbedBaseURL:               kindString,
	keyEmbedAPIKey:                kindString,
	keyLLMProvider:                kindProvider,
	keyLLMModel:                   kindString,
	keyLLMBaseURL:                 kindString,
	keyLLMAPIKey:                  kindString,
	keyAskTopK:                    kindPositiveInt,
	keyAskMinMatches:              kindPositiveInt,
	keyAskMaxContext:              kindPositiveInt,
	keyAskMaxTokens:               kindPositiveInt,
	keyAskTemperature:             kindFloat,
	keyAskTimeout:                 kindDuration,
	keyIngestDataDir:              kindString,
	keyIngestCSVFile:              kindString,
	keyIngestURLs:                 kindList,
	keyIngestRateLimit:            kindFloat,
	keyIngestSchedule:             kindSchedule,
	keyIngestBatchSize:            kindPositiveInt,
	keyServerPort:                 kindPositiveInt,
	keyPipelineProcessor:          kindList,
	"pipeline.chunker.chunk_size": kindPositiveInt,
	"pipeline.chunker.overlap":    kindPositiveInt,
}

// SettableKeys returns the keys accepted by Set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, falling back to defaults for
// every key that is not stored.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Ask: domain.AskSettings{
			TopK:            s.getInt(keyAskTopK, d.Ask.TopK),
			MinMatches:      s.getInt(keyAskMinMatches, d.Ask.MinMatches),
			MaxContextChars: s.getInt(keyAskMaxContext, d.Ask.MaxContextChars),
			MaxTokens:       s.getInt(keyAskMaxTokens, d.Ask.MaxTokens),
			Temperature:     s.getFloat(keyAskTemperature, d.Ask.Temperature),
			Timeout:         s.getDuration(keyAskTimeout, d.Ask.Timeout),
		},
		Ingest: domain.IngestSettings{
			DataDir:   s.getString(keyIngestDataDir, d.Ingest.DataDir),
			CSVFile:   s.getString(keyIngestCSVFile, d.Ingest.CSVFile),
			URLs:      s.getStringSlice(keyIngestURLs, d.Ingest.URLs),
			RateLimit: s.getFloat(keyIngestRateLimit, d.Ingest.RateLimit),
			Schedule:  s.configStore.GetString(keyIngestSchedule),
			BatchSize: s.getInt(keyIngestBatchSize, d.Ingest.BatchSize),
		},
		Server: domain.ServerSettings{
			Port: s.getInt(keyServerPort, d.Server.Port),
		},
	}

	// Fill in the per-provider default model when the provider was changed
	// by hand without a model.
	if _, ok := s.configStore.Get(keyEmbedModel); !ok {
		if m, ok := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]; ok {
			settings.Embedding.Model = m
		}
	}
	if _, ok := s.configStore.Get(keyLLMModel); !ok {
		if m, ok := domain.DefaultLLMModels()[settings.LLM.Provider]; ok {
			settings.LLM.Model = m
		}
	}

	return settings, nil
}

// Set validates value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		parsed = value

	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
		if key == keyLLMProvider && !p.SupportsGeneration() {
			return fmt.Errorf("%w: provider %s does not support generation", domain.ErrInvalidInput, p)
		}
		parsed = p.String()

	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (n == 0 && key != "pipeline.chunker.overlap") {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n

	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f

	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration like 30s", domain.ErrInvalidInput, key)
		}
		parsed = d.String()

	case kindList:
		parsed = splitList(value)

	case kindSchedule:
		if value != "" {
			if err := ValidateSchedule(value); err != nil {
				return err
			}
		}
		parsed = value
	}

	return s.configStore.Set(key, parsed)
}

// save persists the provider parts of settings.
func (s *SettingsService) save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !provider.SupportsGeneration() {
		return fmt.Errorf("provider %s does not support generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.save(settings)
}

// Validate checks that the current settings can run the pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings, s.GetPipelineConfig())
}

// ValidateSettings checks settings that may also carry environment
// overrides applied after Get.
func ValidateSettings(settings *domain.AppSettings, pipeline domain.PipelineConfig) error {
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Ask.TopK < 1 || settings.Ask.MinMatches < 1 {
		return fmt.Errorf("%w: ask.top_k and ask.min_matches must be at least 1", domain.ErrInvalidInput)
	}
	if settings.Ask.MinMatches > settings.Ask.TopK {
		return fmt.Errorf("%w: ask.min_matches (%d) exceeds ask.top_k (%d), every question would be refused",
			domain.ErrInvalidInput, settings.Ask.MinMatches, settings.Ask.TopK)
	}
	if settings.Ingest.Schedule != "" {
		if err := ValidateSchedule(settings.Ingest.Schedule); err != nil {
			return err
		}
	}
	if cfg := pipeline.GetProcessorConfig("chunker"); cfg != nil {
		size, sizeOK := cfg["chunk_size"].(int)
		overlap, overlapOK := cfg["overlap"].(int)
		if sizeOK && overlapOK && overlap >= size {
			return fmt.Errorf("%w: chunker overlap %d must be smaller than chunk_size %d", domain.ErrInvalidInput, overlap, size)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessor); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig("pipeline." + name + ".")
		if len(overrides) == 0 {
			continue
		}
		if cfg.ProcessorConfigs == nil {
			cfg.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range overrides {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads known processor keys under prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap"} {
		if _, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = s.configStore.GetInt(prefix + key)
		}
	}
	if seps := s.configStore.GetStringSlice(prefix + "separators"); len(seps) > 0 {
		cfg["separators"] = seps
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a custom URL for Ollama and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	switch {
	case provider == domain.AIProviderOllama && current == "":
		return defaultOllamaURL
	case provider == domain.AIProviderOllama:
		return current
	default:
		return ""
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

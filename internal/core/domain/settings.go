package domain

import (
	"cmp"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider names a model service.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderGemini    AIProvider = "gemini"

	// AIProviderHashing is the offline feature-hashing embedder. It needs
	// no model server and cannot generate text.
	AIProviderHashing AIProvider = "hashing"
)

// providerInfo is what medibot knows about one provider. An empty model
// means the provider lacks that capability.
type providerInfo struct {
	description    string
	cloud          bool
	embeddingModel string
	llmModel       string
}

// providerOrder is the order providers are offered in.
var providerOrder = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderHashing}

var providers = map[AIProvider]providerInfo{
	AIProviderOllama:    {description: "Ollama (local)", embeddingModel: "all-minilm", llmModel: "llama3.2"},
	AIProviderOpenAI:    {description: "OpenAI (cloud)", cloud: true, embeddingModel: "text-embedding-3-small", llmModel: "gpt-4o-mini"},
	AIProviderAnthropic: {description: "Anthropic (cloud)", cloud: true, llmModel: "claude-3-5-haiku-latest"},
	AIProviderGemini:    {description: "Google Gemini (cloud)", cloud: true, embeddingModel: "text-embedding-004", llmModel: "gemini-2.5-flash"},
	AIProviderHashing:   {description: "Feature hashing (offline, embeddings only)", embeddingModel: "hashing-512"},
}

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey reports whether the provider is a cloud API.
func (p AIProvider) RequiresAPIKey() bool { return providers[p].cloud }
func (p AIProvider) SupportsEmbeddings() bool { return providers[p].embeddingModel != "" }
func (p AIProvider) SupportsGeneration() bool { return providers[p].llmModel != "" }
func (p AIProvider) IsLocal() bool { return p.IsValid() && !p.RequiresAPIKey() }
func (p AIProvider) String() string { return string(p) }
func (p AIProvider) Description() string { return cmp.Or(providers[p].description, unknownDescription) }

// EmbeddingSettings selects the model that embeds documents and questions.
// BaseURL overrides the endpoint of Ollama and OpenAI-compatible servers.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.SupportsEmbeddings() && hasKey(e.Provider, e.APIKey)
}

// LLMSettings selects the model that writes answers.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func (l LLMSettings) IsConfigured() bool {
	return l.Provider.SupportsGeneration() && hasKey(l.Provider, l.APIKey)
}

func hasKey(p AIProvider, key string) bool {
	return !p.RequiresAPIKey() || key != ""
}

// AskSettings tunes the answer pipeline.
type AskSettings struct {
	TopK int

	// MinMatches is how many retrieved passages must share a keyword with
	// the question before the LLM is asked at all.
	MinMatches int

	MaxContextChars int
	MaxTokens       int
	Temperature     float64

	// Timeout bounds one request in the server front ends. Zero disables it.
	Timeout time.Duration
}

// IngestSettings says where documents come from.
type IngestSettings struct {
	DataDir string // PDF directory
	CSVFile string // optional, one record per row
	URLs    []string

	// RateLimit is web requests per second.
	RateLimit float64

	// Schedule is an optional cron expression for the refresh daemon.
	Schedule string

	// BatchSize is chunks per embedding call.
	BatchSize int
}

type ServerSettings struct {
	Port int
}

// AppSettings is the whole configuration.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Ask       AskSettings
	Ingest    IngestSettings
	Server    ServerSettings
}

// DefaultTrustedURLs are the web pages ingested when none are configured.
func DefaultTrustedURLs() []string {
	return []string{
		"https://medlineplus.gov/heartattack.html",
		"https://medlineplus.gov/diabetes.html",
		"https://medlineplus.gov/hairloss.html",
		"https://www.who.int/news-room/fact-sheets/detail/cancer",
	}
}

// DefaultAskSettings returns the answer pipeline defaults.
func DefaultAskSettings() AskSettings {
	return AskSettings{
		TopK:            3,
		MinMatches:      2,
		MaxContextChars: 1800,
		MaxTokens:       300,
		Temperature:     0.2,
		Timeout:         60 * time.Second,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Both model providers default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Ask: DefaultAskSettings(),
		Ingest: IngestSettings{
			DataDir:   "data",
			CSVFile:   "data/disease_symptom.csv",
			URLs:      DefaultTrustedURLs(),
			RateLimit: 1,
			BatchSize: 32,
		},
		Server: ServerSettings{
			Port: 5000,
		},
	}
}

// AllEmbeddingProviders lists providers that can embed, in menu order.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if p.SupportsEmbeddings() {
			out = append(out, p)
		}
	}
	return out
}

// AllLLMProviders lists providers that can generate, in menu order.
func AllLLMProviders() []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if p.SupportsGeneration() {
			out = append(out, p)
		}
	}
	return out
}

// DefaultEmbeddingModels maps each embedding provider to its default model.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := map[AIProvider]string{}
	for _, p := range AllEmbeddingProviders() {
		out[p] = providers[p].embeddingModel
	}
	return out
}

// DefaultLLMModels maps each LLM provider to its default model.
func DefaultLLMModels() map[AIProvider]string {
	out := map[AIProvider]string{}
	for _, p := range AllLLMProviders() {
		out[p] = providers[p].llmModel
	}
	return out
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Gemini models
		"text-embedding-004": 768,
		// Offline
		"hashing-512": 512,
	}
}

// PipelineConfig names the processors that turn a normalised document
// into chunks, in order, with free-form options per processor.
type PipelineConfig struct {
	Processors       []string
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns the options of one processor, nil if none.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline: clean the text in
// place, then split it into 400 character chunks with 50 characters overlap.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"textclean", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 400,
				"overlap":    50,
				"separators": []string{"\n\n", ".", ";"},
			},
		},
	}
}

// Package env reads configuration overrides from the process environment
// and an optional .env file.
package env

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Overrides holds every setting that can come from the environment.
// Unset variables leave the file settings untouched.
type Overrides struct {
	EmbeddingProvider string `env:"MEDIBOT_EMBEDDING_PROVIDER"`
	EmbeddingModel    string `env:"MEDIBOT_EMBEDDING_MODEL"`
	EmbeddingBaseURL  string `env:"MEDIBOT_EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string `env:"MEDIBOT_EMBEDDING_API_KEY"`

	LLMProvider string `env:"MEDIBOT_LLM_PROVIDER"`
	LLMModel    string `env:"MEDIBOT_LLM_MODEL"`
	LLMBaseURL  string `env:"MEDIBOT_LLM_BASE_URL"`
	LLMAPIKey   string `env:"MEDIBOT_LLM_API_KEY"`

	// Provider-conventional keys, used when the MEDIBOT_ keys are unset.
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	TopK        *int           `env:"MEDIBOT_TOP_K"`
	MinMatches  *int           `env:"MEDIBOT_MIN_MATCHES"`
	Temperature *float64       `env:"MEDIBOT_TEMPERATURE"`
	Timeout     *time.Duration `env:"MEDIBOT_ASK_TIMEOUT"`

	DataDir  string   `env:"MEDIBOT_DATA_DIR"`
	CSVFile  string   `env:"MEDIBOT_CSV_FILE"`
	URLs     []string `env:"MEDIBOT_URLS" envSeparator:","`
	Schedule string   `env:"MEDIBOT_SCHEDULE"`

	Port *int `env:"MEDIBOT_PORT"`
}

// LoadDotEnv loads KEY=value pairs from the given files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Parse reads Overrides from the environment.
func Parse() (Overrides, error) {
	return env.ParseAs[Overrides]()
}

// ParseFrom reads Overrides from the given variables instead of the process
// environment.
func ParseFrom(vars map[string]string) (Overrides, error) {
	var o Overrides
	err := env.ParseWithOptions(&o, env.Options{Environment: vars})
	return o, err
}

// Apply copies every set override onto settings.
func (o Overrides) Apply(settings *domain.AppSettings) {
	setString(&settings.Embedding.Provider, domain.AIProvider(o.EmbeddingProvider))
	setString(&settings.Embedding.Model, o.EmbeddingModel)
	setString(&settings.Embedding.BaseURL, o.EmbeddingBaseURL)
	setString(&settings.LLM.Provider, domain.AIProvider(o.LLMProvider))
	setString(&settings.LLM.Model, o.LLMModel)
	setString(&settings.LLM.BaseURL, o.LLMBaseURL)

	if settings.Embedding.APIKey == "" || o.EmbeddingAPIKey != "" {
		setString(&settings.Embedding.APIKey, first(o.EmbeddingAPIKey, o.providerKey(settings.Embedding.Provider)))
	}
	if settings.LLM.APIKey == "" || o.LLMAPIKey != "" {
		setString(&settings.LLM.APIKey, first(o.LLMAPIKey, o.providerKey(settings.LLM.Provider)))
	}

	setPtr(&settings.Ask.TopK, o.TopK)
	setPtr(&settings.Ask.MinMatches, o.MinMatches)
	setPtr(&settings.Ask.Temperature, o.Temperature)
	setPtr(&settings.Ask.Timeout, o.Timeout)

	setString(&settings.Ingest.DataDir, o.DataDir)
	setString(&settings.Ingest.CSVFile, o.CSVFile)
	setString(&settings.Ingest.Schedule, o.Schedule)
	if len(o.URLs) > 0 {
		settings.Ingest.URLs = o.URLs
	}

	setPtr(&settings.Server.Port, o.Port)
}

// LoadAndApply loads .env, parses the environment and applies the result.
func LoadAndApply(settings *domain.AppSettings) error {
	if err := LoadDotEnv(); err != nil {
		logger.Warn("Reading .env: %v", err)
	}
	o, err := Parse()
	if err != nil {
		return err
	}
	o.Apply(settings)
	return nil
}

func (o Overrides) providerKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderGemini:
		return o.GeminiAPIKey
	case domain.AIProviderOpenAI:
		return o.OpenAIAPIKey
	case domain.AIProviderAnthropic:
		return o.AnthropicAPIKey
	default:
		return ""
	}
}

func setString[T ~string](dst *T, v T) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

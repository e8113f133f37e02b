// Package anthropic generates answers with the Anthropic messages API.
package anthropic

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/medibot/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 300

	anthropicVersion = "2023-06-01"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("anthropic: API key is required")

// Config configures the service. APIKey is required; other zero fields
// take the defaults above.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /v1/messages with the prompt as one user turn.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// NewLLMService creates the service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	api := apiclient.New("anthropic", cmp.Or(cfg.BaseURL, DefaultBaseURL),
		cmp.Or(cfg.Timeout, DefaultTimeout), domain.ErrLLMUnavailable)
	api.Header.Set("x-api-key", cfg.APIKey)
	api.Header.Set("anthropic-version", anthropicVersion)

	return &LLMService{api: api, model: cmp.Or(cfg.Model, DefaultModel)}, nil
}

// Generate returns the concatenated text blocks of the reply. The API
// requires max_tokens, so DefaultMaxTokens stands in when opts has none.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var out messagesResponse
	err := s.api.PostJSON(ctx, "/v1/messages", messagesRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
		StopSeqs:    opts.StopWords,
	}, &out)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 && out.StopReason == "refusal" {
		return "", fmt.Errorf("%w: anthropic: model declined to answer", domain.ErrLLMUnavailable)
	}
	return b.String(), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the API key without generating.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/v1/models")
}

func (s *LLMService) Close() error { return nil }

package cli

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Long: `Show or change the model providers, the answer pipeline and the
ingestion sources. Without a subcommand the current settings are shown.`,
	RunE: withSettings(showSettings),
}

func init() {
	settingsCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			RunE:  withSettings(showSettings),
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set one setting",
			Long: `Set one setting and save it.

Examples:
  medibot settings set ask.min_matches 3
  medibot settings set ingest.urls https://medlineplus.gov/asthma.html,https://medlineplus.gov/flu.html
  medibot settings set ingest.schedule "0 3 * * *"`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettings(func(cmd *cobra.Command, s driving.SettingsService) error {
					if err := s.Set(args[0], args[1]); err != nil {
						return fmt.Errorf("failed to set %s: %w", args[0], err)
					}
					cmd.Printf("Set %s\n", args[0])
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "wizard",
			Short: "Configure both model providers interactively",
			RunE:  withSettings(runWizard),
		},
		&cobra.Command{
			Use:   "embedding",
			Short: "Configure the embedding provider",
			RunE: withSettings(func(cmd *cobra.Command, s driving.SettingsService) error {
				return embeddingStep(s).run(cmd, bufio.NewReader(cmd.InOrStdin()))
			}),
		},
		&cobra.Command{
			Use:   "llm",
			Short: "Configure the LLM provider",
			RunE: withSettings(func(cmd *cobra.Command, s driving.SettingsService) error {
				return llmStep(s).run(cmd, bufio.NewReader(cmd.InOrStdin()))
			}),
		},
	)
	rootCmd.AddCommand(settingsCmd)
}

// withSettings opens a settings-only runtime around fn.
func withSettings(fn func(*cobra.Command, driving.SettingsService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, err := open(cmd, PurposeSettings)
		if err != nil {
			return err
		}
		defer closeServices(svc)

		if svc.SettingsService == nil {
			return errors.New("settings service not configured")
		}
		return fn(cmd, svc.SettingsService)
	}
}

func showSettings(cmd *cobra.Command, s driving.SettingsService) error {
	settings, err := s.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	e, l := settings.Embedding, settings.LLM
	printModel(cmd, "Embedding", e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())
	printModel(cmd, "LLM", l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured())

	a := settings.Ask
	cmd.Println("[Ask]")
	cmd.Printf("  Top K: %d\n  Min matches: %d\n  Max context chars: %d\n", a.TopK, a.MinMatches, a.MaxContextChars)
	cmd.Printf("  Max tokens: %d\n  Temperature: %g\n  Timeout: %s\n\n", a.MaxTokens, a.Temperature, a.Timeout)

	in := settings.Ingest
	cmd.Println("[Ingest]")
	cmd.Printf("  Data dir: %s\n  CSV file: %s\n", in.DataDir, in.CSVFile)
	cmd.Printf("  Rate limit: %g req/s\n  Batch size: %d\n", in.RateLimit, in.BatchSize)
	cmd.Printf("  Schedule: %s\n", cmp.Or(in.Schedule, "(none)"))
	cmd.Println("  URLs:")
	for _, u := range in.URLs {
		cmd.Printf("    - %s\n", u)
	}
	cmd.Printf("\n[Server]\n  Port: %d\n\n", settings.Server.Port)

	if err := s.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'medibot settings wizard' to fix it.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func printModel(cmd *cobra.Command, title string, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n  Model: %s\n", p.Description(), model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeAPIKey(apiKey))
	}
	cmd.Printf("  Status: %s\n\n", configuredStatus(configured))
}

func runWizard(cmd *cobra.Command, s driving.SettingsService) error {
	in := bufio.NewReader(cmd.InOrStdin())
	cmd.Println("medibot setup")
	cmd.Println()

	steps := []providerStep{embeddingStep(s), llmStep(s)}
	for i, step := range steps {
		cmd.Printf("Step %d of %d: %s provider\n", i+1, len(steps), step.kind)
		if err := step.run(cmd, in); err != nil {
			return err
		}
	}

	if err := s.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("All settings are valid and saved.")
	return nil
}

// providerStep prompts for one model provider, saves it and pings it.
type providerStep struct {
	kind     string
	choices  []domain.AIProvider
	defaults map[domain.AIProvider]string
	save     func(p domain.AIProvider, model, apiKey string) error
	ping     func() error
	after    string
}

func embeddingStep(s driving.SettingsService) providerStep {
	return providerStep{
		kind:     "Embedding",
		choices:  domain.AllEmbeddingProviders(),
		defaults: domain.DefaultEmbeddingModels(),
		save:     s.SetEmbeddingProvider,
		ping:     s.ValidateEmbeddingConfig,
		after:    "Changing the embedding model requires 'medibot ingest --reset'.",
	}
}

func llmStep(s driving.SettingsService) providerStep {
	return providerStep{
		kind:     "LLM",
		choices:  domain.AllLLMProviders(),
		defaults: domain.DefaultLLMModels(),
		save:     s.SetLLMProvider,
		ping:     s.ValidateLLMConfig,
	}
}

func (st providerStep) run(cmd *cobra.Command, in *bufio.Reader) error {
	for i, p := range st.choices {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("Choice [1]: ")
	provider := st.choices[parseChoice(readLine(in), len(st.choices), 1)-1]

	cmd.Printf("Model [%s]: ", st.defaults[provider])
	model := cmp.Or(readLine(in), st.defaults[provider])

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readPassword(cmd, in)
		cmd.Println()
		if apiKey == "" {
			return fmt.Errorf("%s requires an API key", provider.Description())
		}
	}

	if err := st.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("saving %s provider: %w", st.kind, err)
	}

	cmd.Print("Checking connection... ")
	if err := st.ping(); err != nil {
		cmd.Println("failed")
		return fmt.Errorf("%s provider check: %w", st.kind, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n", st.kind, provider.Description(), model)
	if st.after != "" {
		cmd.Println(st.after)
	}
	cmd.Println()
	return nil
}

func readLine(in *bufio.Reader) string {
	line, _ := in.ReadString('\n') //nolint:errcheck // EOF means an empty answer
	return strings.TrimSpace(line)
}

// parseChoice turns a 1-based menu answer into a choice, falling back to
// def for empty or out of range input.
func parseChoice(input string, n, def int) int {
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return def
	}
	return v
}

// readPassword reads without echo from a terminal and falls back to in.
func readPassword(cmd *cobra.Command, in *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if b, err := term.ReadPassword(int(f.Fd())); err == nil {
			return string(b)
		}
	}
	return readLine(in)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func describeAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// Package cli provides the medibot command line.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Purpose tells the opener which services a command needs.
type Purpose int

// Command purposes.
const (
	// PurposeInspect needs the catalog only. No model is contacted.
	PurposeInspect Purpose = iota

	// PurposeIngest needs the ingestion pipeline and the embedder.
	PurposeIngest

	// PurposeAsk needs an existing index and both models.
	PurposeAsk

	// PurposeSettings needs the configuration only.
	PurposeSettings
)

// Request describes what a command wants opened.
type Request struct {
	// ConfigDir is the state directory. Empty means the default.
	ConfigDir string

	Purpose Purpose
}

// IndexCounter reports the number of indexed chunks.
type IndexCounter interface {
	Count() int
}

// Services is everything a command may drive. Fields a purpose does not
// open are nil.
type Services struct {
	Home     string
	Settings *domain.AppSettings

	SettingsService driving.SettingsService
	Ask             driving.AskService
	Ingest          driving.IngestService
	Catalog         driving.CatalogService
	Eval            driving.EvalService
	Golden          driven.GoldenLoader
	Index           IndexCounter

	// NewScheduler builds a refresh scheduler. Set for PurposeIngest.
	NewScheduler func(schedule string) (driving.Scheduler, error)

	// Close releases everything. Required.
	Close func() error
}

// Opener builds Services for a command.
type Opener func(ctx context.Context, req Request) (*Services, error)

var (
	version   = "dev"
	verbose   bool
	configDir string
	opener    Opener
)

var rootCmd = &cobra.Command{
	Use:   "medibot",
	Short: "Answer medical questions from a curated knowledge base",
	Long: `medibot answers medical questions from documents you ingest: PDF files,
a symptom table and a list of trusted web pages.

Questions that the knowledge base does not cover are refused instead of
being answered from the model's own memory.

Get started:
  medibot ingest          Build the knowledge base
  medibot ask             Ask questions in the terminal
  medibot serve           Start the web front end`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "state directory (default ~/.medibot)")
}

// SetVersion sets the version reported by `medibot version`.
func SetVersion(v string) {
	version = v
}

// SetOpener sets the function commands use to open their services.
func SetOpener(o Opener) {
	opener = o
}

// Execute runs the root command with ctx. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// open builds services for cmd.
func open(cmd *cobra.Command, purpose Purpose) (*Services, error) {
	if opener == nil {
		return nil, ErrNotConfigured
	}
	return opener(cmd.Context(), Request{ConfigDir: configDir, Purpose: purpose})
}

// closeServices closes svc and logs failures.
func closeServices(svc *Services) {
	if svc == nil || svc.Close == nil {
		return
	}
	if err := svc.Close(); err != nil {
		logger.Warn("close: %v", err)
	}
}

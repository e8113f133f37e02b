package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

var (
	ingestReset    bool
	ingestWatch    bool
	ingestSchedule string
	ingestSources  []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build or refresh the knowledge base",
	Long: `Read the configured PDF directory, symptom table and trusted web pages,
split them into chunks and index them.

Documents that did not change since the last run are skipped. Use --reset
to rebuild the knowledge base from scratch.

With --watch the PDF directory and the symptom table are watched for
changes. With --schedule the whole knowledge base is refreshed on a cron
schedule. Both keep running until interrupted.

Examples:
  medibot ingest
  medibot ingest --reset
  medibot ingest --source pdf --source csv
  medibot ingest --schedule "0 3 * * *"`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear the knowledge base first")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch local sources for changes")
	ingestCmd.Flags().StringVar(&ingestSchedule, "schedule", "", "cron expression for periodic refresh")
	ingestCmd.Flags().StringSliceVar(&ingestSources, "source", nil, "limit to sources (pdf, trusted_web, csv)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	opts := domain.IngestOptions{Reset: ingestReset}
	for _, s := range ingestSources {
		p := domain.Provenance(s)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, s)
		}
		opts.Provenances = append(opts.Provenances, p)
	}

	svc, err := open(cmd, PurposeIngest)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	schedule := ingestSchedule
	if schedule == "" && svc.Settings != nil {
		schedule = svc.Settings.Ingest.Schedule
	}

	cmd.Println("Ingesting...")
	report, err := svc.Ingest.Ingest(cmd.Context(), opts)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil && !errors.Is(err, domain.ErrNothingIndexed) {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if err != nil && !ingestWatch && schedule == "" {
		return err
	}

	if !ingestWatch && schedule == "" {
		return nil
	}
	return runBackground(cmd, svc, schedule)
}

// runBackground keeps the watcher and the scheduler running until the
// command context ends.
func runBackground(cmd *cobra.Command, svc *Services, schedule string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errc := make(chan error, 2)
	running := 0

	if ingestWatch {
		running++
		go func() { errc <- svc.Ingest.Watch(ctx) }()
		cmd.Println("Watching local sources for changes.")
	}
	if schedule != "" {
		if svc.NewScheduler == nil {
			return errors.New("scheduler not available")
		}
		sched, err := svc.NewScheduler(schedule)
		if err != nil {
			return err
		}
		running++
		go func() { errc <- sched.Start(ctx) }()
		defer func() {
			if err := sched.Stop(); err != nil {
				cmd.PrintErrf("scheduler stop error: %v\n", err)
			}
		}()
		cmd.Printf("Refreshing on schedule %q.\n", schedule)
	}
	cmd.Println("Press Ctrl+C to stop.")

	var firstErr error
	for ; running > 0; running-- {
		err := <-errc
		if err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
		}
		// One stopped worker stops the other.
		cancel()
	}
	return firstErr
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration().Round(time.Millisecond))

	provenances := make([]domain.Provenance, 0, len(report.Documents))
	for p := range report.Documents {
		provenances = append(provenances, p)
	}
	sort.Slice(provenances, func(i, j int) bool { return provenances[i] < provenances[j] })
	for _, p := range provenances {
		cmd.Printf("  %-20s %d documents\n", p.Description(), report.Documents[p])
	}

	cmd.Printf("  Chunks indexed: %d\n", report.Chunks)
	if report.Skipped > 0 {
		cmd.Printf("  Skipped (empty): %d\n", report.Skipped)
	}
	if len(report.Errors) > 0 {
		cmd.Printf("  Errors: %d\n", len(report.Errors))
		for _, e := range report.Errors {
			cmd.Printf("    - %s\n", e)
		}
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

var (
	statusJSON      bool
	statusDocuments bool
	statusSource    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the knowledge base contains",
	Long: `Show the number of documents per source, the index size and the last
ingestion run. Use --documents to list the ingested documents.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print as JSON")
	statusCmd.Flags().BoolVar(&statusDocuments, "documents", false, "list ingested documents")
	statusCmd.Flags().StringVar(&statusSource, "source", "", "with --documents, limit to one source")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := open(cmd, PurposeInspect)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	if statusDocuments {
		return runStatusDocuments(cmd, svc)
	}

	stats, err := svc.Catalog.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if statusJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Home: %s\n\n", svc.Home)
	cmd.Println("[Documents]")
	total := 0
	for _, p := range domain.AllProvenances() {
		cmd.Printf("  %-20s %d\n", p.Description()+":", stats.Documents[p])
		total += stats.Documents[p]
	}
	cmd.Printf("  %-20s %d\n", "Total:", total)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Catalogued chunks: %d\n", stats.Chunks)
	cmd.Printf("  Indexed chunks:    %d\n", stats.IndexedChunks)
	if stats.IndexedChunks == 0 {
		cmd.Println("  The knowledge base is empty. Run 'medibot ingest' to build it.")
	}
	cmd.Println()

	cmd.Println("[Last run]")
	if run := stats.LastRun; run == nil {
		cmd.Println("  never")
	} else {
		cmd.Printf("  Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
		cmd.Printf("  Duration: %s\n", run.Duration().Round(time.Millisecond))
		cmd.Printf("  Documents: %d, chunks: %d, errors: %d\n", run.TotalDocuments(), run.Chunks, len(run.Errors))
	}

	if stats.Refresh != nil {
		cmd.Println()
		printRefresh(cmd, stats.Refresh)
	}
	return nil
}

func printRefresh(cmd *cobra.Command, r *domain.RefreshStatus) {
	cmd.Println("[Scheduled refresh]")
	cmd.Printf("  Schedule: %s\n", r.Task.Schedule)
	switch {
	case !r.Task.Enabled:
		cmd.Println("  Next run: disabled")
	case !r.Task.NextRun.IsZero():
		cmd.Printf("  Next run: %s\n", r.Task.NextRun.Local().Format(time.DateTime))
	}
	if r.Task.LastError != "" {
		cmd.Printf("  Last error: %s\n", r.Task.LastError)
	}
	for _, run := range r.Recent {
		outcome := "ok"
		if !run.Success {
			outcome = "failed"
		}
		cmd.Printf("  %s  %-6s %4d documents  %s\n",
			run.StartedAt.Local().Format(time.DateTime), outcome, run.ItemsProcessed, run.Duration().Round(time.Second))
	}
}

func runStatusDocuments(cmd *cobra.Command, svc *Services) error {
	docs, err := svc.Catalog.ListDocuments(cmd.Context(), domain.Provenance(statusSource))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if statusJSON {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tCHUNKS\tTITLE\tURI")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", d.Provenance, d.Chunks, d.Title, d.URI)
	}
	_ = w.Flush() //nolint:errcheck // output is best effort

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

var (
	evalGolden string
	evalJSON   bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run a golden question set",
	Long: `Ask every question of a golden set and check the outcome.

A case passes when it is answered or refused as expected and, for answered
cases, the answer contains every required phrase. The command exits with
an error when any case fails.

The golden set is a YAML file:

  name: smoke
  cases:
    - id: diabetes
      question: What are the symptoms of diabetes?
      expect: answer
      must_contain: [thirst]
    - id: weather
      question: Will it rain tomorrow?
      expect: refuse`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalGolden, "golden", "", "path to the golden set")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "print the report as JSON")
	_ = evalCmd.MarkFlagRequired("golden") //nolint:errcheck // flag is defined above
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	// Checked before opening, which contacts both models.
	if _, err := os.Stat(evalGolden); err != nil {
		return fmt.Errorf("failed to load golden set: %w", err)
	}

	svc, err := open(cmd, PurposeAsk)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	set, err := svc.Golden.Load(evalGolden)
	if err != nil {
		return fmt.Errorf("failed to load golden set: %w", err)
	}

	report, err := svc.Eval.Run(cmd.Context(), set)
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}

	if evalJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printEvalReport(cmd, report)
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d cases failed", ErrEvalFailed, report.Failed(), len(report.Results))
	}
	return nil
}

func printEvalReport(cmd *cobra.Command, report *domain.EvalReport) {
	if report.Name != "" {
		cmd.Printf("Golden set: %s\n\n", report.Name)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tEXPECT\tOUTCOME\tRESULT\tREASON")
	for _, r := range report.Results {
		result := "PASS"
		if !r.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Case.ID, r.Case.Expect, r.Outcome, result, r.Reason)
	}
	_ = w.Flush() //nolint:errcheck // output is best effort

	cmd.Printf("\n%d/%d passed\n", report.Passed(), len(report.Results))
}

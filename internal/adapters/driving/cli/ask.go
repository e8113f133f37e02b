package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

// askPrompt is shown before every interactive question.
const askPrompt = "Ask a medical question: "

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a medical question",
	Long: `Ask a question against the knowledge base.

With a question argument the answer is printed once. Without one, medibot
reads questions interactively, or one per line when input is piped.
Questions the knowledge base does not cover are refused.

Examples:
  medibot ask "What are the symptoms of diabetes?"
  medibot ask
  cat questions.txt | medibot ask --json`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print answers as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := open(cmd, PurposeAsk)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	if len(args) > 0 {
		return askOnce(cmd, svc.Ask, strings.Join(args, " "))
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return askInteractive(cmd, svc.Ask, filepath.Join(svc.Home, "history"))
	}
	return askLines(cmd, svc.Ask, in)
}

func askOnce(cmd *cobra.Command, ask driving.AskService, question string) error {
	answer, err := ask.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	return printAnswer(cmd, answer)
}

// askLines answers every line of in.
func askLines(cmd *cobra.Command, ask driving.AskService, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := askOnce(cmd, ask, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func askInteractive(cmd *cobra.Command, ask driving.AskService, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          askPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("start prompt: %w", err)
	}
	defer rl.Close()

	cmd.Println("Type your question, or 'exit' to quit.")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		}

		answer, err := ask.Ask(cmd.Context(), line)
		if err != nil {
			// A failed question does not end the session.
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		if err := printAnswer(cmd, answer); err != nil {
			return err
		}
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) error {
	if askJSON {
		data, err := json.Marshal(answer)
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.PlainText())
	if answer.Outcome == domain.OutcomeAnswered && len(answer.Passages) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, p := range answer.Passages {
			label := p.Title()
			if label == "" {
				label = p.URI()
			}
			cmd.Printf("  [%d] %s (%s)\n", i+1, label, p.Provenance.Description())
		}
	}
	cmd.Println()
	return nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

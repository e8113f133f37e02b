package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/adapters/driving/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	Long: `Start an HTTP server with a chat page and a JSON API.

Endpoints:
  GET  /        Chat page
  POST /ask     {"question": "..."} returns the answer as JSON
  GET  /health  Index size and configured models

The port defaults to server.port from the settings.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := open(cmd, PurposeAsk)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	cfg := httpapi.Config{Ask: svc.Ask}
	if svc.Index != nil {
		cfg.Index = svc.Index
	}
	port := servePort
	if svc.Settings != nil {
		cfg.EmbeddingModel = svc.Settings.Embedding.Model
		cfg.LLMModel = svc.Settings.LLM.Model
		cfg.Timeout = svc.Settings.Ask.Timeout
		if port == 0 {
			port = svc.Settings.Server.Port
		}
	}

	server, err := httpapi.NewServer(cfg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", port)
	cmd.Printf("medibot listening on http://localhost%s\n", addr)
	return server.Run(cmd.Context(), addr)
}

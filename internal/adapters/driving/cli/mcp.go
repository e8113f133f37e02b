package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medibot/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask tool and the ingested sources to MCP clients",
	Long: `Serve medibot to MCP clients such as desktop assistants. Clients get an
"ask" tool that goes through the same relevance gate as 'medibot ask', and
one resource per ingested document.

The server speaks JSON-RPC on stdio unless --port is given, in which case
it serves the streamable HTTP transport, e.g. for the MCP Inspector.

Client configuration for stdio:
  {
    "mcpServers": {
      "medibot": {"command": "/path/to/medibot", "args": ["mcp", "serve"]}
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "with --port, the interface to listen on")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	svc, err := open(cmd, PurposeAsk)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	server, err := mcp.NewServer(&mcp.Ports{Ask: svc.Ask, Catalog: svc.Catalog})
	if err != nil {
		return err
	}
	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	if err := server.RunHTTP(cmd.Context(), addr); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

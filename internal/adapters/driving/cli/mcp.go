package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/glaximini/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can inspect
and export animation documents.

By default the server talks JSON-RPC over stdio. Use --port (or [mcp] listen
in the config file) to serve streamable HTTP instead.

Examples:
  # Stdio mode
  glaximini mcp serve

  # HTTP mode
  glaximini mcp serve --port 8090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use [mcp] listen, or stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	exports, release, err := exportsFor(settings)
	if err != nil {
		return err
	}
	defer release()

	server, err := mcp.NewServer(&mcp.Ports{Export: exports})
	if err != nil {
		return err
	}

	addr := settings.MCP.Listen
	if port > 0 {
		addr = fmt.Sprintf(":%d", port)
	}
	if addr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

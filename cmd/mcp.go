package cmd

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	Long: `Expose the classifier, redactor and scanner as MCP tools (classify_log,
redact_log, scan_log) over stdio, so an assistant can sanitize terminal
output before reading it.

Examples:
  logshare mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	srv := mcp.NewLogServer(version, classifier, nil)
	return server.NewStdioServer(srv.MCPServer()).Listen(commandContext(cmd), os.Stdin, os.Stdout)
}

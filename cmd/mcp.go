package cmd

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/oseda-dev/oseda/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets coding agents validate projects and read the catalogs and the
check/deploy history. Configure with:

  {
    "mcpServers": {
      "oseda": { "command": "oseda", "args": ["mcp"] }
    }
  }

Available tools: oseda_validate, oseda_catalog, oseda_history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	// stdout carries the protocol; diagnostics go to stderr.
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	s, err := getStore()
	if err != nil {
		log.Warn("history unavailable", "error", err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(), shutdownSignals()...)
	defer stop()

	log.Debug("starting MCP server", "version", buildVersion)
	return mcp.NewServer(s, validateOptions(false), buildVersion, log).ServeStdio(ctx)
}

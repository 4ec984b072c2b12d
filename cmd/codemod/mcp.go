package main

import (
	"log/slog"
	"os"

	"codemod/internal/journal"
	"codemod/internal/mcp"
	"codemod/internal/paths"
	"codemod/internal/slogutil"
	"codemod/internal/version"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server.

The server speaks JSON-RPC 2.0 over stdio and exposes the staging engine,
the analyzers, and the journal as MCP tools. Logs go to stderr (or a file
under .codemod/logs/) so stdout stays clean for protocol frames.

Example usage:
  codemod mcp --stdio

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

var (
	mcpStdio   bool
	mcpLogFile bool
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpStdio, "stdio", true, "Use stdio for communication (default)")
	mcpCmd.Flags().BoolVar(&mcpLogFile, "log-file", false,
		"Write logs to .codemod/logs/mcp.log instead of stderr")
}

func runMCP(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	cfg := loadWorkspaceConfig(root, newCLILogger())
	level := slogutil.LevelFromString(cfg.Logging.Level)

	// Logs must never touch stdout here; that stream carries protocol frames.
	var logger *slog.Logger
	if mcpLogFile {
		if _, err := paths.EnsureLogsDir(root); err != nil {
			return err
		}
		fileLogger, f, err := slogutil.NewFileLogger(paths.GetMCPLogPath(root), level)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = fileLogger
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	logger.Info("starting mcp server", "version", version.Version, "workspace", root)

	var store *journal.Store
	if cfg.Journal.Enabled {
		opened, err := journal.OpenStore(journalDBPath(root, cfg), logger)
		if err != nil {
			logger.Warn("journal unavailable, continuing without it", "error", err)
		} else {
			store = opened
			defer store.Close()
		}
	}

	server := mcp.NewServer(version.Version, root, cfg, store, logger)
	if err := server.Start(); err != nil {
		logger.Error("mcp server error", "error", err)
		return err
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"codemod/internal/journal"
	"codemod/internal/paths"

	"github.com/spf13/cobra"
)

var (
	logLimit  int
	logOffset int
	logFile   string
	logChange string
	logAction string
	logFormat string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the change journal",
	Long: `List journal events, newest first.

Examples:
  codemod log
  codemod log -n 50 --file main.go
  codemod log --action reverted --format json`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum events to show")
	logCmd.Flags().IntVar(&logOffset, "offset", 0, "Events to skip before the first shown")
	logCmd.Flags().StringVar(&logFile, "file", "", "Only events touching this file")
	logCmd.Flags().StringVar(&logChange, "change", "", "Only events for this change ID")
	logCmd.Flags().StringVar(&logAction, "action", "", "Only staged, applied, or reverted events")
	logCmd.Flags().StringVar(&logFormat, "format", "human", "Output format: json or human")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	logger := newCLILogger()
	cfg := loadWorkspaceConfig(root, logger)

	if !cfg.Journal.Enabled {
		fmt.Println("Journaling is disabled for this workspace.")
		return nil
	}

	switch logAction {
	case "", string(journal.ActionStaged), string(journal.ActionApplied), string(journal.ActionReverted):
	default:
		return fmt.Errorf("unknown action %q: must be staged, applied, or reverted", logAction)
	}

	dbPath := journalDBPath(root, cfg)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("No journal found. Apply a change first, or run the MCP server.")
		return nil
	}

	store, err := journal.OpenStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	resp, err := store.List(journal.ListOptions{
		File:     journalFileFilter(root, logFile),
		ChangeID: logChange,
		Action:   journal.Action(logAction),
		Limit:    logLimit,
		Offset:   logOffset,
	})
	if err != nil {
		return err
	}

	output, err := FormatResponse(resp, OutputFormat(logFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// journalFileFilter reduces a caller-supplied path to the workspace-relative
// form events are stored under.
func journalFileFilter(root, raw string) string {
	if raw == "" {
		return ""
	}
	if filepath.IsAbs(raw) {
		return displayPath(root, filepath.Clean(raw))
	}
	return paths.NormalizePath(raw)
}

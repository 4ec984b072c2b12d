package main

import (
	"fmt"
	"os"

	"codemod/internal/export"
	"codemod/internal/journal"

	"github.com/spf13/cobra"
)

var (
	exportFile   string
	exportLimit  int
	exportGzip   bool
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <out-path>",
	Short: "Write a journal snapshot to disk",
	Long: `Export journal events as an indented JSON snapshot.

A relative out-path lands inside the workspace. A ".gz" suffix (or --gzip)
compresses the snapshot.

Examples:
  codemod export changes.json
  codemod export changes.json.gz --file main.go
  codemod export /tmp/audit.json --limit 100`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Only events touching this file")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Keep only the most recent N events (0 = all)")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "Compress the snapshot")
	exportCmd.Flags().StringVar(&exportFormat, "format", "human", "Output format: json or human")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	logger := newCLILogger()
	cfg := loadWorkspaceConfig(root, logger)

	if !cfg.Journal.Enabled {
		return fmt.Errorf("journaling is disabled for this workspace; nothing to export")
	}
	dbPath := journalDBPath(root, cfg)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no journal found at %s", dbPath)
	}

	store, err := journal.OpenStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	exporter := export.NewExporter(root, store, logger)
	result, err := exporter.Export(newContext(), export.Options{
		OutPath: args[0],
		File:    journalFileFilter(root, exportFile),
		Limit:   exportLimit,
		Gzip:    exportGzip,
	})
	if err != nil {
		return err
	}

	output, err := FormatResponse(result, OutputFormat(exportFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

package main

import (
	"fmt"

	"codemod/internal/analyzer"

	"github.com/spf13/cobra"
)

var (
	analyzeMaxDepth int
	analyzeFormat   string
	techFormat      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Summarize directory structure",
	Long: `Walk the workspace below a path and report directories, files, and
per-extension totals. The scan policy under .codemod/ controls what gets
visited.

Examples:
  codemod analyze
  codemod analyze internal/ --max-depth 2
  codemod analyze --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var techCmd = &cobra.Command{
	Use:   "tech [path]",
	Short: "Detect languages and frameworks",
	Long: `Detect what a workspace is built with. Manifests (go.mod, package.json,
pyproject.toml, Gemfile, Cargo.toml) are definitive; file extensions fill in
the rest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTech,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", analyzer.DefaultMaxDepth,
		"How many directory levels to descend")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format: json or human")
	techCmd.Flags().StringVar(&techFormat, "format", "human", "Output format: json or human")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(techCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	logger := newCLILogger()
	cfg := loadWorkspaceConfig(root, logger)
	an := analyzer.New(root, loadPolicy(root, cfg, logger), logger)

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	report, err := an.Structure(newContext(), path, analyzeMaxDepth)
	if err != nil {
		return err
	}

	output, err := FormatResponse(report, OutputFormat(analyzeFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

func runTech(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	logger := newCLILogger()
	cfg := loadWorkspaceConfig(root, logger)
	an := analyzer.New(root, loadPolicy(root, cfg, logger), logger)

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	report, err := an.DetectTechnologies(newContext(), path)
	if err != nil {
		return err
	}

	output, err := FormatResponse(report, OutputFormat(techFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

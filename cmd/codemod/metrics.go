package main

import (
	"fmt"

	"codemod/internal/analyzer"

	"github.com/spf13/cobra"
)

var metricsFormat string

var metricsCmd = &cobra.Command{
	Use:   "metrics <file>",
	Short: "Count lines, characters, and bytes for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := mustGetWorkspaceRoot()
		logger := newCLILogger()
		cfg := loadWorkspaceConfig(root, logger)
		an := analyzer.New(root, loadPolicy(root, cfg, logger), logger)

		report, err := an.FileMetrics(args[0])
		if err != nil {
			return err
		}

		output, err := FormatResponse(report, OutputFormat(metricsFormat))
		if err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFormat, "format", "human", "Output format: json or human")
	rootCmd.AddCommand(metricsCmd)
}

package main

import (
	"fmt"
	"os"

	"codemod/internal/patterns"

	"github.com/spf13/cobra"
)

var (
	searchKinds         []string
	searchPath          string
	searchLimit         int
	searchCaseSensitive bool
	searchFormat        string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find occurrences and declarations across the workspace",
	Long: `Search policy-visible files for a pattern.

Without --kind every literal occurrence is reported. With --kind function or
--kind class, matches are narrowed to declarations; files with a syntax-tree
grammar resolve them structurally, everything else falls back to line scans.

Examples:
  codemod search handleRequest
  codemod search process --kind function --path internal/
  codemod search TODO --limit 100 --format json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newCLILogger()
		cfg := loadWorkspaceConfig(root, logger)
		searcher := patterns.NewSearcher(root, loadPolicy(root, cfg, logger), logger)

		result, err := searcher.Search(newContext(), patterns.Options{
			Query:         args[0],
			Kinds:         searchKinds,
			Path:          searchPath,
			MaxResults:    searchLimit,
			CaseSensitive: searchCaseSensitive,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		output, err := FormatResponse(result, OutputFormat(searchFormat))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(output)

		logger.Debug("search completed",
			"query", args[0],
			"matches", len(result.Matches),
			"filesScanned", result.FilesScanned)
	},
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchKinds, "kind", nil,
		"Declaration kind to match: function or class (repeatable)")
	searchCmd.Flags().StringVar(&searchPath, "path", "", "Restrict the search to a subdirectory")
	searchCmd.Flags().IntVar(&searchLimit, "limit", patterns.DefaultMaxResults, "Maximum matches to return")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "Match case exactly")
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format: json or human")
	rootCmd.AddCommand(searchCmd)
}

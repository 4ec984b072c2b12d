package main

import (
	"codemod/internal/version"

	"github.com/spf13/cobra"
)

var (
	// workspaceFlag is the CLI --workspace flag value
	workspaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "codemod",
	Short: "Codemod - staged text changes for whole workspaces",
	Long: `Codemod stages, validates, and applies character-precise text changes.
A change targets a half-open [start,end) section of a file. Staged changes are
checked for overlap before anything is written, committed in a single write per
file, and can be reverted from their stored originals. Every transition is
recorded in a journal under .codemod/.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("codemod version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "",
		"Workspace root (default: current directory)")
}

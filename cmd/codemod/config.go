package main

import (
	"fmt"
	"os"

	"codemod/internal/config"
	"codemod/internal/paths"

	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize workspace configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize codemod configuration",
	Long: `Create a .codemod/ directory with default configuration in the workspace
root. An existing journal and backups are never touched; --force only rewrites
config.json.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"Overwrite an existing config.json")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	configPath := paths.GetConfigPath(root)

	if _, statErr := os.Stat(configPath); statErr == nil && !configInitForce {
		// Idempotent: already initialized is success (CI-friendly)
		fmt.Println("Workspace already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'codemod config init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Println("Workspace initialized.")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'codemod tools' to see what the MCP server exposes")
	fmt.Println("  2. Run 'codemod mcp' to serve it")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root := mustGetWorkspaceRoot()
	cfg := loadWorkspaceConfig(root, newCLILogger())

	output, err := formatJSON(cfg)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

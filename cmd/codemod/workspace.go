package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"codemod/internal/analyzer"
	"codemod/internal/changes"
	"codemod/internal/config"
	"codemod/internal/paths"
	"codemod/internal/slogutil"
)

var (
	engineOnce    sync.Once
	sharedStager  *changes.Stager
	sharedApplier *changes.Applier
)

// getEngine returns the shared stager/applier pair.
// The pair is lazily initialized on first use.
func getEngine(cfg *config.Config, logger *slog.Logger) (*changes.Stager, *changes.Applier) {
	engineOnce.Do(func() {
		sharedStager = changes.NewStager(changes.StagerOptions{
			BackupsEnabled: cfg.Backup.Enabled,
			BackupDir:      cfg.Backup.Dir,
		}, logger)
		sharedApplier = changes.NewApplier(sharedStager, logger)
	})
	return sharedStager, sharedApplier
}

// getWorkspaceRoot resolves the workspace root from the --workspace flag or
// the working directory.
func getWorkspaceRoot() (string, error) {
	if workspaceFlag != "" {
		return filepath.Abs(workspaceFlag)
	}
	return os.Getwd()
}

// mustGetWorkspaceRoot returns the workspace root or exits on error.
func mustGetWorkspaceRoot() string {
	root, err := getWorkspaceRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// loadWorkspaceConfig reads config.json from the workspace. A missing or
// broken file falls back to the defaults.
func loadWorkspaceConfig(root string, logger *slog.Logger) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		return config.DefaultConfig()
	}
	return cfg
}

// loadPolicy reads the workspace scan policy. A broken policy file is
// reported and replaced by the defaults, and the configured size cap applies
// when no policy file exists. Mirrors what the MCP server does at startup.
func loadPolicy(root string, cfg *config.Config, logger *slog.Logger) *analyzer.Policy {
	policyPath := cfg.Scan.PolicyPath
	if policyPath != "" && !filepath.IsAbs(policyPath) {
		policyPath = paths.JoinWorkspacePath(root, policyPath)
	}

	policy, err := analyzer.LoadPolicy(policyPath)
	if err != nil {
		logger.Warn("scan policy rejected, falling back to defaults",
			"path", policyPath, "error", err)
		policy = analyzer.DefaultPolicy()
	}
	if _, statErr := os.Stat(policyPath); statErr != nil && cfg.Scan.MaxFileSizeBytes > 0 {
		policy.MaxFileSizeBytes = int64(cfg.Scan.MaxFileSizeBytes)
	}
	return policy
}

// journalDBPath resolves the configured journal location against the
// workspace root.
func journalDBPath(root string, cfg *config.Config) string {
	p := cfg.Journal.Path
	if p == "" {
		return paths.GetJournalPath(root)
	}
	if !filepath.IsAbs(p) {
		return paths.JoinWorkspacePath(root, p)
	}
	return p
}

// resolveTargetFile makes a caller-supplied path absolute against the
// workspace root. The staging engine keys records by absolute path.
func resolveTargetFile(root, raw string) string {
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return paths.JoinWorkspacePath(root, paths.NormalizePath(raw))
}

// displayPath maps an absolute engine path back to its workspace-relative
// form for output.
func displayPath(root, abs string) string {
	if rel, err := paths.CanonicalizePath(abs, root); err == nil {
		return rel
	}
	return paths.NormalizePath(abs)
}

// newContext creates a context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newCLILogger creates a stderr logger for interactive commands. Warn keeps
// result output on stdout clean.
func newCLILogger() *slog.Logger {
	return slogutil.NewLogger(os.Stderr, slog.LevelWarn)
}

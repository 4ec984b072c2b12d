// Package paths centralizes filesystem layout for codemod workspaces.
//
// All codemod state lives under <workspaceRoot>/.codemod/:
//
//	.codemod/config.json   workspace configuration
//	.codemod/journal.db    append-only change journal
//	.codemod/logs/         server and CLI log files
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// CodemodDirName is the per-workspace state directory.
	CodemodDirName = ".codemod"
	// ConfigFileName is the workspace configuration file inside CodemodDirName.
	ConfigFileName = "config.json"
	// JournalFileName is the change journal database inside CodemodDirName.
	JournalFileName = "journal.db"
	// LogsSubdir holds log files inside CodemodDirName.
	LogsSubdir = "logs"
	// MCPLogFile is the MCP server log file inside LogsSubdir.
	MCPLogFile = "mcp.log"
)

// WorkspaceInfo bundles the resolved paths for a workspace.
type WorkspaceInfo struct {
	Root        string
	CodemodDir  string
	ConfigPath  string
	JournalPath string
	LogsDir     string
}

// GetWorkspaceInfo resolves all codemod paths for a workspace root.
// The root is made absolute; nothing is created on disk.
func GetWorkspaceInfo(workspaceRoot string) (*WorkspaceInfo, error) {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, err
	}
	dir := GetCodemodDir(root)
	return &WorkspaceInfo{
		Root:        root,
		CodemodDir:  dir,
		ConfigPath:  filepath.Join(dir, ConfigFileName),
		JournalPath: filepath.Join(dir, JournalFileName),
		LogsDir:     filepath.Join(dir, LogsSubdir),
	}, nil
}

// GetCodemodDir returns the .codemod directory for a workspace.
func GetCodemodDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, CodemodDirName)
}

// EnsureCodemodDir creates the .codemod directory if needed and returns it.
func EnsureCodemodDir(workspaceRoot string) (string, error) {
	dir := GetCodemodDir(workspaceRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetConfigPath returns the workspace configuration file path.
func GetConfigPath(workspaceRoot string) string {
	return filepath.Join(GetCodemodDir(workspaceRoot), ConfigFileName)
}

// GetJournalPath returns the change journal database path.
func GetJournalPath(workspaceRoot string) string {
	return filepath.Join(GetCodemodDir(workspaceRoot), JournalFileName)
}

// GetLogsDir returns the logs directory for a workspace.
func GetLogsDir(workspaceRoot string) string {
	return filepath.Join(GetCodemodDir(workspaceRoot), LogsSubdir)
}

// EnsureLogsDir creates the logs directory if needed and returns it.
func EnsureLogsDir(workspaceRoot string) (string, error) {
	dir := GetLogsDir(workspaceRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetMCPLogPath returns the MCP server log file path.
func GetMCPLogPath(workspaceRoot string) string {
	return filepath.Join(GetLogsDir(workspaceRoot), MCPLogFile)
}

// CanonicalizePath converts an absolute path to a workspace-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the workspace root
// - Converts backslashes to forward slashes
// - Returns workspace-relative path with forward slashes
func CanonicalizePath(absolutePath string, workspaceRoot string) (string, error) {
	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(workspaceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = workspaceRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	// Convert to forward slashes (platform independent)
	return filepath.ToSlash(relativePath), nil
}

// IsWithinWorkspace checks if a path is within the workspace root
func IsWithinWorkspace(path string, workspaceRoot string) bool {
	canonical, err := CanonicalizePath(path, workspaceRoot)
	if err != nil {
		return false
	}

	// Path is outside the workspace if it starts with ..
	return !strings.HasPrefix(canonical, "..")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
// This is useful for paths that are already relative but need normalization
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinWorkspacePath joins a workspace root with a canonical path
func JoinWorkspacePath(workspaceRoot string, canonicalPath string) string {
	// Ensure we use forward slashes in the canonical path
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	// Convert to OS-specific path separator for joining
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{workspaceRoot}, parts...)...)
}

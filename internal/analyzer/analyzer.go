// Package analyzer inspects workspace structure, technologies, and file
// metrics. All directory walks honor the scan Policy so state directories
// and build output never pollute results.
package analyzer

import (
	"log/slog"
	"path/filepath"

	"codemod/internal/paths"
)

// Analyzer answers read-only questions about a workspace.
type Analyzer struct {
	root   string
	policy *Policy
	logger *slog.Logger
}

// New creates an analyzer rooted at the workspace directory. A nil policy
// falls back to the default scan policy.
func New(root string, policy *Policy, logger *slog.Logger) *Analyzer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		root:   root,
		policy: policy,
		logger: logger,
	}
}

// Root returns the workspace root the analyzer operates on.
func (a *Analyzer) Root() string {
	return a.root
}

// resolve maps a workspace-relative path onto the filesystem. Absolute
// paths pass through untouched.
func (a *Analyzer) resolve(rel string) string {
	if rel == "" || rel == "." {
		return a.root
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return paths.JoinWorkspacePath(a.root, rel)
}

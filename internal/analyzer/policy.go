package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Policy controls which parts of the workspace scans may enter and how
// large a file may be before scans skip it.
type Policy struct {
	ExcludedDirs     []string `toml:"excluded_dirs"`
	ExcludedSuffixes []string `toml:"excluded_suffixes"`
	MaxFileSizeBytes int64    `toml:"max_file_size_bytes"`
}

// DefaultPolicy returns the built-in scan exclusions.
func DefaultPolicy() *Policy {
	return &Policy{
		ExcludedDirs: []string{
			"node_modules",
			"dist",
			"build",
			".git",
			".next",
			"__pycache__",
			"venv",
			".venv",
			"coverage",
			"tmp",
			".idea",
			".vscode",
			"vendor",
			"target",
			".codemod",
		},
		ExcludedSuffixes: []string{
			".pyc",
			".pyo",
			".pyd",
			".so",
			".dll",
			".dylib",
			".log",
			".DS_Store",
		},
		MaxFileSizeBytes: 1000000,
	}
}

// LoadPolicy loads a scan policy from a TOML file. The file contents are
// decoded over the defaults, so a partial file only overrides what it
// names. A missing file yields the defaults unchanged.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scan policy: %w", err)
	}

	policy := DefaultPolicy()
	if _, err := toml.Decode(string(data), policy); err != nil {
		return nil, fmt.Errorf("parse scan policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan policy: %w", err)
	}

	return policy, nil
}

// Validate checks that the policy is usable.
func (p *Policy) Validate() error {
	for i, dir := range p.ExcludedDirs {
		if dir == "" {
			return fmt.Errorf("excluded_dirs[%d]: empty entry", i)
		}
		if strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("excluded_dirs[%d]: %q must be a bare directory name", i, dir)
		}
	}
	for i, suffix := range p.ExcludedSuffixes {
		if suffix == "" {
			return fmt.Errorf("excluded_suffixes[%d]: empty entry", i)
		}
	}
	if p.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max_file_size_bytes must not be negative")
	}
	return nil
}

// SkipDir reports whether a directory name is excluded from scans.
func (p *Policy) SkipDir(name string) bool {
	for _, excluded := range p.ExcludedDirs {
		if name == excluded {
			return true
		}
	}
	return false
}

// SkipFile reports whether a file name carries an excluded suffix.
func (p *Policy) SkipFile(name string) bool {
	for _, suffix := range p.ExcludedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// TooLarge reports whether a file exceeds the scan size cap. A cap of
// zero disables the check.
func (p *Policy) TooLarge(size int64) bool {
	return p.MaxFileSizeBytes > 0 && size > p.MaxFileSizeBytes
}

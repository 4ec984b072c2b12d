// Package export writes journal snapshots to disk for archival and sharing.
// Snapshots are indented JSON, optionally gzip-compressed.
package export

import "codemod/internal/journal"

// Options configures one export.
type Options struct {
	// OutPath is the destination file. Relative paths are resolved against
	// the workspace root. A ".gz" suffix enables compression.
	OutPath string `json:"outPath"`
	// File restricts the snapshot to events touching one workspace file.
	File string `json:"file,omitempty"`
	// Limit keeps only the most recent N events. Zero exports everything.
	Limit int `json:"limit,omitempty"`
	// Gzip forces compression regardless of the OutPath suffix.
	Gzip bool `json:"gzip,omitempty"`
}

// Snapshot is the on-disk export structure.
type Snapshot struct {
	Metadata Metadata        `json:"metadata"`
	Events   []journal.Event `json:"events"`
}

// Metadata describes when and where a snapshot was taken.
type Metadata struct {
	Workspace  string `json:"workspace"`
	Generated  string `json:"generated"` // RFC 3339
	EventCount int    `json:"eventCount"`
}

// Result reports what an export wrote.
type Result struct {
	Path       string `json:"path"`
	Events     int    `json:"events"`
	Bytes      int64  `json:"bytes"`
	Compressed bool   `json:"compressed"`
}

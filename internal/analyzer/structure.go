package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codemod/internal/errors"
)

const (
	// DefaultMaxDepth bounds structure walks when the caller gives none.
	DefaultMaxDepth = 6

	// maxStructureEntries caps how many entries a single report may carry.
	maxStructureEntries = 5000
)

var errWalkLimit = fmt.Errorf("walk entry limit reached")

// DirSummary describes one directory in a structure report.
type DirSummary struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// FileSummary describes one file in a structure report.
type FileSummary struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
}

// StructureTotals aggregates a structure walk.
type StructureTotals struct {
	TotalFiles int            `json:"totalFiles"`
	TotalDirs  int            `json:"totalDirs"`
	TotalBytes int64          `json:"totalBytes"`
	FileTypes  map[string]int `json:"fileTypes"`
}

// StructureReport describes the workspace tree below a starting path.
type StructureReport struct {
	Root        string          `json:"root"`
	Directories []DirSummary    `json:"directories"`
	Files       []FileSummary   `json:"files"`
	Summary     StructureTotals `json:"summary"`
	Truncated   bool            `json:"truncated"`
}

// Structure walks the workspace below relPath, honoring the scan policy,
// and reports directories, files, and per-extension totals. maxDepth bounds
// how many directory levels the walk descends; zero or negative selects
// DefaultMaxDepth. Walks stop early once maxStructureEntries entries have
// been collected and mark the report truncated.
func (a *Analyzer) Structure(ctx context.Context, relPath string, maxDepth int) (*StructureReport, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	start := a.resolve(relPath)
	info, err := os.Stat(start)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("path", relPath)
		}
		return nil, errors.NewIOFailureError("stat path", err)
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidInputError("path", "structure analysis needs a directory").
			WithDetails(map[string]interface{}{"path": relPath})
	}

	report := &StructureReport{
		Root:        relPath,
		Directories: []DirSummary{},
		Files:       []FileSummary{},
		Summary:     StructureTotals{FileTypes: map[string]int{}},
	}
	if report.Root == "" {
		report.Root = "."
	}

	entries := 0
	walkErr := filepath.Walk(start, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == start {
			return nil
		}

		rel, relErr := filepath.Rel(start, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if info.IsDir() {
			if a.policy.SkipDir(info.Name()) {
				return filepath.SkipDir
			}
			if entries >= maxStructureEntries {
				return errWalkLimit
			}
			entries++
			report.Directories = append(report.Directories, DirSummary{
				Path: rel,
				Name: info.Name(),
			})
			if depth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if a.policy.SkipFile(info.Name()) {
			return nil
		}
		if entries >= maxStructureEntries {
			return errWalkLimit
		}
		entries++

		ext := strings.ToLower(filepath.Ext(info.Name()))
		report.Files = append(report.Files, FileSummary{
			Path:      rel,
			Name:      info.Name(),
			Extension: ext,
			Size:      info.Size(),
		})
		report.Summary.TotalFiles++
		report.Summary.TotalBytes += info.Size()
		report.Summary.FileTypes[ext]++
		return nil
	})

	switch walkErr {
	case nil:
	case errWalkLimit:
		report.Truncated = true
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewIOFailureError("walk workspace", walkErr)
	}

	report.Summary.TotalDirs = len(report.Directories)
	a.logger.Debug("analyzed structure",
		"root", report.Root,
		"files", report.Summary.TotalFiles,
		"dirs", report.Summary.TotalDirs,
		"truncated", report.Truncated)

	return report, nil
}

package analyzer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"codemod/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAnalyzer(t *testing.T, root string) *Analyzer {
	t.Helper()
	return New(root, DefaultPolicy(), testLogger())
}

// writeTree creates files under root; map keys are slash-separated
// relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestStructure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":           "package main\n",
		"README.md":         "# demo\n",
		"debug.log":         "noise\n",
		"node_modules/x.js": "module.exports = {}\n",
		"src/app.py":        "print('hi')\n",
		"src/deep/lib.rs":   "fn main() {}\n",
	})

	a := newTestAnalyzer(t, root)

	t.Run("full walk", func(t *testing.T) {
		report, err := a.Structure(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("Structure() error = %v", err)
		}

		if report.Root != "." {
			t.Errorf("Root = %q, want %q", report.Root, ".")
		}
		if report.Summary.TotalFiles != 4 {
			t.Errorf("TotalFiles = %d, want 4", report.Summary.TotalFiles)
		}
		if report.Summary.TotalDirs != 2 {
			t.Errorf("TotalDirs = %d, want 2 (src, src/deep)", report.Summary.TotalDirs)
		}
		if report.Truncated {
			t.Error("Truncated = true, want false")
		}

		for ext, want := range map[string]int{".go": 1, ".md": 1, ".py": 1, ".rs": 1} {
			if got := report.Summary.FileTypes[ext]; got != want {
				t.Errorf("FileTypes[%q] = %d, want %d", ext, got, want)
			}
		}
		if _, ok := report.Summary.FileTypes[".log"]; ok {
			t.Error("excluded .log file was counted")
		}
		if _, ok := report.Summary.FileTypes[".js"]; ok {
			t.Error("file inside excluded node_modules was counted")
		}

		for _, dir := range report.Directories {
			if dir.Name == "node_modules" {
				t.Error("excluded directory listed in report")
			}
		}
	})

	t.Run("depth bound", func(t *testing.T) {
		report, err := a.Structure(context.Background(), "", 1)
		if err != nil {
			t.Fatalf("Structure() error = %v", err)
		}
		if report.Summary.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2 at depth 1", report.Summary.TotalFiles)
		}
		if report.Summary.TotalDirs != 1 {
			t.Errorf("TotalDirs = %d, want 1 at depth 1", report.Summary.TotalDirs)
		}
	})

	t.Run("subdirectory start", func(t *testing.T) {
		report, err := a.Structure(context.Background(), "src", 0)
		if err != nil {
			t.Fatalf("Structure() error = %v", err)
		}
		if report.Root != "src" {
			t.Errorf("Root = %q, want %q", report.Root, "src")
		}
		if report.Summary.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", report.Summary.TotalFiles)
		}
		if len(report.Directories) != 1 || report.Directories[0].Name != "deep" {
			t.Errorf("Directories = %v, want only deep", report.Directories)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := a.Structure(context.Background(), "no/such/dir", 0)
		if errors.CodeOf(err) != errors.NotFound {
			t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.NotFound)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		_, err := a.Structure(context.Background(), "main.go", 0)
		if errors.CodeOf(err) != errors.InvalidInput {
			t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.InvalidInput)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := a.Structure(ctx, "", 0); err == nil {
			t.Error("Structure() with canceled context should fail")
		}
	})
}

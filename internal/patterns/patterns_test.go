package patterns

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

func newTestSearcher(t *testing.T, root string) *Searcher {
	t.Helper()
	return NewSearcher(root, nil, testLogger())
}

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

func TestScanOccurrences(t *testing.T) {
	content := "alpha beta\ngamma\nBeta alpha\n"

	t.Run("case insensitive", func(t *testing.T) {
		matches := scanOccurrences("a.txt", content, Options{Query: "beta"}, 10)
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2", len(matches))
		}
		if matches[0].Line != 1 || matches[0].Column != 7 {
			t.Errorf("match 0 at %d:%d, want 1:7", matches[0].Line, matches[0].Column)
		}
		if matches[1].Line != 3 || matches[1].Column != 1 {
			t.Errorf("match 1 at %d:%d, want 3:1", matches[1].Line, matches[1].Column)
		}
		if matches[0].Kind != KindOccurrence || matches[0].MatchedBy != MatchedByScan {
			t.Errorf("match 0 tagged %s/%s, want occurrence/scan", matches[0].Kind, matches[0].MatchedBy)
		}
	})

	t.Run("case sensitive", func(t *testing.T) {
		matches := scanOccurrences("a.txt", content, Options{Query: "Beta", CaseSensitive: true}, 10)
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Line != 3 {
			t.Errorf("match at line %d, want 3", matches[0].Line)
		}
	})

	t.Run("unicode column", func(t *testing.T) {
		matches := scanOccurrences("a.txt", "héllo beta\n", Options{Query: "beta"}, 10)
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		// é is one character; the column counts characters, not bytes.
		if matches[0].Column != 7 {
			t.Errorf("Column = %d, want 7", matches[0].Column)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		matches := scanOccurrences("a.txt", "x\nx\nx\n", Options{Query: "x"}, 2)
		if len(matches) != 2 {
			t.Errorf("got %d matches, want 2", len(matches))
		}
	})
}

func TestScanDeclarationsGo(t *testing.T) {
	content := `package demo

func Apply(x int) int { return x }

func (s *Stager) Apply() error { return nil }

type Apply struct{}

// Apply is mentioned in a comment.
var apply = 1
`

	t.Run("functions", func(t *testing.T) {
		matches := scanDeclarations("demo.go", content, "go", []string{KindFunction}, Options{Query: "Apply"}, 10)
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2 (func + method)", len(matches))
		}
		if matches[0].Line != 3 || matches[1].Line != 5 {
			t.Errorf("matches at lines %d,%d, want 3,5", matches[0].Line, matches[1].Line)
		}
		for _, m := range matches {
			if m.Kind != KindFunction || m.MatchedBy != MatchedByScan {
				t.Errorf("match tagged %s/%s, want function/scan", m.Kind, m.MatchedBy)
			}
		}
	})

	t.Run("types", func(t *testing.T) {
		matches := scanDeclarations("demo.go", content, "go", []string{KindClass}, Options{Query: "Apply"}, 10)
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Line != 7 || matches[0].Kind != KindClass {
			t.Errorf("match = line %d kind %s, want line 7 kind class", matches[0].Line, matches[0].Kind)
		}
	})

	t.Run("exact name only", func(t *testing.T) {
		matches := scanDeclarations("demo.go", content, "go", []string{KindFunction}, Options{Query: "Appl"}, 10)
		if len(matches) != 0 {
			t.Errorf("got %d matches for partial name, want 0", len(matches))
		}
	})
}

func TestScanDeclarationsPython(t *testing.T) {
	content := `class Stager:
    def stage(self, section):
        return section

async def stage(section):
    pass

# def stage in a comment
`

	matches := scanDeclarations("tool.py", content, "python", []string{KindFunction}, Options{Query: "stage"}, 10)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (method + async def)", len(matches))
	}
	if matches[0].Line != 2 || matches[1].Line != 5 {
		t.Errorf("matches at lines %d,%d, want 2,5", matches[0].Line, matches[1].Line)
	}

	classes := scanDeclarations("tool.py", content, "python", []string{KindClass}, Options{Query: "Stager"}, 10)
	if len(classes) != 1 || classes[0].Line != 1 {
		t.Fatalf("classes = %v, want one at line 1", classes)
	}
}

func TestScanDeclarationsJavaScript(t *testing.T) {
	content := `export function render(props) {}
export class Renderer {}
const render = () => {}
`

	funcs := scanDeclarations("ui.js", content, "javascript", []string{KindFunction}, Options{Query: "render"}, 10)
	if len(funcs) != 1 || funcs[0].Line != 1 {
		t.Fatalf("funcs = %v, want one at line 1", funcs)
	}

	classes := scanDeclarations("ui.js", content, "javascript", []string{KindClass}, Options{Query: "Renderer"}, 10)
	if len(classes) != 1 || classes[0].Line != 2 {
		t.Fatalf("classes = %v, want one at line 2", classes)
	}
}

func TestScanDeclarationsRust(t *testing.T) {
	content := `pub fn merge(a: u32) -> u32 { a }
struct Merge;
pub(crate) fn merge_all() {}
trait Mergeable {}
`

	funcs := scanDeclarations("lib.rs", content, "rust", []string{KindFunction}, Options{Query: "merge"}, 10)
	if len(funcs) != 1 || funcs[0].Line != 1 {
		t.Fatalf("funcs = %v, want only exact-name match at line 1", funcs)
	}

	classes := scanDeclarations("lib.rs", content, "rust", []string{KindClass}, Options{Query: "Mergeable"}, 10)
	if len(classes) != 1 || classes[0].Line != 4 {
		t.Fatalf("classes = %v, want one at line 4", classes)
	}
}

func TestSearch(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.rb":            "def process\nend\n\nclass Processor\nend\n",
		"lib/util.rb":       "def process\nend\n",
		"node_modules/x.js": "process()\n",
		"notes.md":          "process is documented here\n",
	})

	s := newTestSearcher(t, root)

	t.Run("occurrences across files", func(t *testing.T) {
		result, err := s.Search(context.Background(), Options{Query: "process"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		// app.rb has two lines mentioning process, lib/util.rb one;
		// node_modules and non-source .md are skipped.
		if len(result.Matches) != 3 {
			t.Fatalf("got %d matches, want 3: %v", len(result.Matches), result.Matches)
		}
		for _, m := range result.Matches {
			if m.File == "node_modules/x.js" || m.File == "notes.md" {
				t.Errorf("matched skipped file %s", m.File)
			}
		}
		if result.FilesScanned != 2 {
			t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
		}
	})

	t.Run("declaration search falls back to scan", func(t *testing.T) {
		result, err := s.Search(context.Background(), Options{Query: "process", Kinds: []string{"function"}})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(result.Matches) != 2 {
			t.Fatalf("got %d matches, want 2", len(result.Matches))
		}
		for _, m := range result.Matches {
			if m.MatchedBy != MatchedByScan || m.Kind != KindFunction {
				t.Errorf("match tagged %s/%s, want function/scan", m.Kind, m.MatchedBy)
			}
		}
	})

	t.Run("kind filter excludes classes", func(t *testing.T) {
		result, err := s.Search(context.Background(), Options{Query: "Processor", Kinds: []string{"function"}})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(result.Matches) != 0 {
			t.Errorf("got %d matches, want 0", len(result.Matches))
		}
	})

	t.Run("truncates at limit", func(t *testing.T) {
		result, err := s.Search(context.Background(), Options{Query: "process", MaxResults: 1})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(result.Matches) != 1 || !result.Truncated {
			t.Errorf("matches = %d truncated = %v, want 1 and true", len(result.Matches), result.Truncated)
		}
	})

	t.Run("single file search", func(t *testing.T) {
		result, err := s.Search(context.Background(), Options{Query: "process", Path: "app.rb"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(result.Matches) != 2 {
			t.Errorf("got %d matches, want 2", len(result.Matches))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := s.Search(context.Background(), Options{})
		if errors.CodeOf(err) != errors.InvalidInput {
			t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.InvalidInput)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := s.Search(context.Background(), Options{Query: "x", Kinds: []string{"macro"}})
		if errors.CodeOf(err) != errors.InvalidInput {
			t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.InvalidInput)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := s.Search(context.Background(), Options{Query: "x", Path: "ghost"})
		if errors.CodeOf(err) != errors.NotFound {
			t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.NotFound)
		}
	})
}

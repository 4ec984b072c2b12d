// Package patterns searches workspace sources for names and declarations.
// Two engines cooperate: a line scanner that works everywhere, and a
// tree-sitter matcher (CGO builds only) that resolves declarations by AST
// node when the language grammar is available.
package patterns

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codemod/internal/analyzer"
	"codemod/internal/errors"
	"codemod/internal/paths"
)

// Match kinds.
const (
	KindOccurrence = "occurrence"
	KindFunction   = "function"
	KindClass      = "class"
)

// Match engines.
const (
	MatchedByScan = "scan"
	MatchedByAST  = "ast"
)

const (
	// DefaultMaxResults is used when the caller gives no limit.
	DefaultMaxResults = 50
	// maxResultsCap bounds any single search.
	maxResultsCap = 500
	// maxSnippetLength bounds reported line snippets.
	maxSnippetLength = 200
)

var errSearchLimit = fmt.Errorf("search result limit reached")

// sourceExtensions lists the file types searches look inside.
var sourceExtensions = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
	".py": true, ".pyw": true, ".rs": true, ".java": true,
	".kt": true, ".kts": true, ".rb": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".hpp": true,
}

// Options select what a search looks for and where.
type Options struct {
	Query         string   `json:"query"`
	Kinds         []string `json:"kinds,omitempty"`
	Path          string   `json:"path,omitempty"`
	MaxResults    int      `json:"maxResults,omitempty"`
	CaseSensitive bool     `json:"caseSensitive,omitempty"`
}

// Match is one hit in one file.
type Match struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Kind      string `json:"kind"`
	MatchedBy string `json:"matchedBy"`
	Snippet   string `json:"snippet"`
}

// Result carries the matches of one search.
type Result struct {
	Query        string  `json:"query"`
	Matches      []Match `json:"matches"`
	FilesScanned int     `json:"filesScanned"`
	Truncated    bool    `json:"truncated"`
}

// Searcher walks policy-filtered source files looking for patterns.
type Searcher struct {
	root    string
	policy  *analyzer.Policy
	logger  *slog.Logger
	matcher *astMatcher
}

// NewSearcher creates a searcher rooted at the workspace directory.
func NewSearcher(root string, policy *analyzer.Policy, logger *slog.Logger) *Searcher {
	if policy == nil {
		policy = analyzer.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		root:    root,
		policy:  policy,
		logger:  logger,
		matcher: newASTMatcher(),
	}
}

// Search looks for the query below opts.Path. Without kinds it reports
// every line containing the query. With kinds ("function", "class") it
// reports declarations whose name equals the query, resolved by AST where
// the grammar is compiled in and by line heuristics otherwise.
func (s *Searcher) Search(ctx context.Context, opts Options) (*Result, error) {
	if opts.Query == "" {
		return nil, errors.NewInvalidInputError("query", "must not be empty")
	}
	kinds, err := normalizeKinds(opts.Kinds)
	if err != nil {
		return nil, err
	}

	max := opts.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	if max > maxResultsCap {
		max = maxResultsCap
	}

	start := s.resolve(opts.Path)
	info, err := os.Stat(start)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("path", opts.Path)
		}
		return nil, errors.NewIOFailureError("stat path", err)
	}

	result := &Result{Query: opts.Query, Matches: []Match{}}

	if !info.IsDir() {
		if err := s.searchFile(ctx, start, info.Size(), kinds, opts, max, result); err != nil && err != errSearchLimit {
			return nil, err
		}
		s.logResult(result)
		return result, nil
	}

	walkErr := filepath.Walk(start, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if path != start && s.policy.SkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		return s.searchFile(ctx, path, info.Size(), kinds, opts, max, result)
	})
	if walkErr != nil && walkErr != errSearchLimit {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewIOFailureError("walk workspace", walkErr)
	}

	s.logResult(result)
	return result, nil
}

// searchFile appends matches from one file to the result. It returns
// errSearchLimit once the result holds max matches.
func (s *Searcher) searchFile(ctx context.Context, path string, size int64, kinds []string, opts Options, max int, result *Result) error {
	name := filepath.Base(path)
	if s.policy.SkipFile(name) || s.policy.TooLarge(size) {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !sourceExtensions[ext] {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil || looksBinary(data) {
		return nil
	}
	result.FilesScanned++

	rel := s.relPath(path)
	lang := analyzer.LanguageForFile(path)
	remaining := max - len(result.Matches)

	var matches []Match
	if len(kinds) > 0 {
		matches = s.findDeclarations(ctx, data, rel, lang, kinds, opts, remaining)
	} else {
		matches = scanOccurrences(rel, string(data), opts, remaining)
	}

	result.Matches = append(result.Matches, matches...)
	if len(result.Matches) >= max {
		result.Truncated = true
		return errSearchLimit
	}
	return nil
}

// findDeclarations prefers the AST matcher and falls back to the line
// scanner when the grammar is missing or the parse fails.
func (s *Searcher) findDeclarations(ctx context.Context, data []byte, rel, lang string, kinds []string, opts Options, remaining int) []Match {
	if IsAvailable() && astSupports(lang) {
		matches, err := s.matcher.findDeclarations(ctx, data, rel, lang, kinds, opts, remaining)
		if err == nil {
			return matches
		}
		s.logger.Debug("ast match failed, falling back to scan", "file", rel, "error", err)
	}
	return scanDeclarations(rel, string(data), lang, kinds, opts, remaining)
}

func (s *Searcher) resolve(rel string) string {
	if rel == "" || rel == "." {
		return s.root
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return paths.JoinWorkspacePath(s.root, rel)
}

func (s *Searcher) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *Searcher) logResult(result *Result) {
	s.logger.Debug("pattern search finished",
		"query", result.Query,
		"matches", len(result.Matches),
		"filesScanned", result.FilesScanned,
		"truncated", result.Truncated)
}

func normalizeKinds(kinds []string) ([]string, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(kinds))
	normalized := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		k := strings.ToLower(strings.TrimSpace(kind))
		switch k {
		case KindFunction, KindClass:
		default:
			return nil, errors.NewInvalidInputError("kinds", fmt.Sprintf("unknown kind %q", kind)).
				WithDetails(map[string]interface{}{"allowed": []string{KindFunction, KindClass}})
		}
		if !seen[k] {
			seen[k] = true
			normalized = append(normalized, k)
		}
	}
	return normalized, nil
}

// looksBinary reports whether data starts with bytes that cannot be text.
func looksBinary(data []byte) bool {
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

func trimSnippet(line string) string {
	snippet := strings.TrimSpace(line)
	if len(snippet) <= maxSnippetLength {
		return snippet
	}
	runes := []rune(snippet)
	if len(runes) > maxSnippetLength {
		runes = runes[:maxSnippetLength]
	}
	return string(runes)
}

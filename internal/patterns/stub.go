//go:build !cgo

package patterns

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when structural matching is unavailable because the
// binary was built without CGO (tree-sitter).
var ErrNoCGO = errors.New("structural matching requires CGO (tree-sitter)")

// IsAvailable reports whether structural matching is compiled in.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}

// astMatcher is a stub for non-CGO builds.
type astMatcher struct{}

// newASTMatcher returns nil when CGO is disabled; the searcher falls back
// to the line scanner.
func newASTMatcher() *astMatcher {
	return nil
}

func astSupports(lang string) bool {
	return false
}

func (m *astMatcher) findDeclarations(ctx context.Context, source []byte, file, lang string, kinds []string, opts Options, max int) ([]Match, error) {
	return nil, ErrNoCGO
}

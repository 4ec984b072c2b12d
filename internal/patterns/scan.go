package patterns

import (
	"strings"
	"unicode/utf8"
)

// scanOccurrences reports every line containing the query as a substring.
func scanOccurrences(file, content string, opts Options, max int) []Match {
	if max <= 0 {
		return nil
	}

	needle := opts.Query
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var matches []Match
	for lineNum, line := range strings.Split(content, "\n") {
		hay := line
		if !opts.CaseSensitive {
			hay = strings.ToLower(line)
		}
		idx := strings.Index(hay, needle)
		if idx < 0 {
			continue
		}

		matches = append(matches, Match{
			File:      file,
			Line:      lineNum + 1,
			Column:    utf8.RuneCountInString(hay[:idx]) + 1,
			Kind:      KindOccurrence,
			MatchedBy: MatchedByScan,
			Snippet:   trimSnippet(line),
		})
		if len(matches) >= max {
			break
		}
	}
	return matches
}

// scanDeclarations finds function and class declarations whose name equals
// the query, using per-language line heuristics. Languages without
// heuristics yield no matches; the AST matcher covers them when available.
func scanDeclarations(file, content, lang string, kinds []string, opts Options, max int) []Match {
	if max <= 0 {
		return nil
	}

	wantFunc := hasKind(kinds, KindFunction)
	wantClass := hasKind(kinds, KindClass)

	var matches []Match
	for lineNum, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		name, kind := declarationOnLine(line, lang)
		if name == "" {
			continue
		}
		if kind == KindFunction && !wantFunc {
			continue
		}
		if kind == KindClass && !wantClass {
			continue
		}
		if !nameMatches(name, opts.Query, opts.CaseSensitive) {
			continue
		}

		matches = append(matches, Match{
			File:      file,
			Line:      lineNum + 1,
			Column:    declarationColumn(raw, name),
			Kind:      kind,
			MatchedBy: MatchedByScan,
			Snippet:   trimSnippet(raw),
		})
		if len(matches) >= max {
			break
		}
	}
	return matches
}

// declarationOnLine extracts a declared name and its kind from one trimmed
// source line.
func declarationOnLine(line, lang string) (string, string) {
	switch lang {
	case "go":
		if strings.HasPrefix(line, "func ") {
			return extractGoFuncName(line), KindFunction
		}
		if strings.HasPrefix(line, "type ") {
			name, _ := extractGoTypeName(line)
			return name, KindClass
		}

	case "javascript", "typescript", "tsx":
		if strings.Contains(line, "function ") {
			return extractJSFuncName(line), KindFunction
		}
		if strings.HasPrefix(line, "class ") || strings.Contains(line, " class ") {
			return extractJSClassName(line), KindClass
		}

	case "python":
		stripped := strings.TrimPrefix(line, "async ")
		if strings.HasPrefix(stripped, "def ") {
			return extractPyFuncName(stripped), KindFunction
		}
		if strings.HasPrefix(line, "class ") {
			return extractPyClassName(line), KindClass
		}

	case "rust":
		if name := extractRustItemName(line, "fn "); name != "" {
			return name, KindFunction
		}
		for _, keyword := range []string{"struct ", "enum ", "trait "} {
			if name := extractRustItemName(line, keyword); name != "" {
				return name, KindClass
			}
		}

	case "ruby":
		if strings.HasPrefix(line, "def ") {
			return extractPyFuncName(line), KindFunction
		}
		if strings.HasPrefix(line, "class ") {
			return extractRubyClassName(line), KindClass
		}
	}

	return "", ""
}

// declarationColumn locates the declared name within the original line,
// 1-based in characters.
func declarationColumn(raw, name string) int {
	idx := strings.Index(raw, name)
	if idx < 0 {
		return 1
	}
	return utf8.RuneCountInString(raw[:idx]) + 1
}

func hasKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func nameMatches(name, query string, caseSensitive bool) bool {
	if name == "" {
		return false
	}
	if caseSensitive {
		return name == query
	}
	return strings.EqualFold(name, query)
}

func extractGoFuncName(line string) string {
	// func Name(...) or func (r *Receiver) Name(...)
	line = strings.TrimPrefix(line, "func ")

	if strings.HasPrefix(line, "(") {
		idx := strings.Index(line, ")")
		if idx < 0 {
			return ""
		}
		line = strings.TrimSpace(line[idx+1:])
	}

	idx := strings.IndexAny(line, "([")
	if idx <= 0 {
		return ""
	}
	return strings.TrimSpace(line[:idx])
}

func extractGoTypeName(line string) (name string, isInterface bool) {
	// type Name struct { or type Name interface {
	line = strings.TrimPrefix(line, "type ")
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return "", false
	}
	return parts[0], parts[1] == "interface"
}

func extractJSFuncName(line string) string {
	idx := strings.Index(line, "function ")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("function "):]
	end := strings.Index(rest, "(")
	if end <= 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func extractJSClassName(line string) string {
	idx := strings.Index(line, "class ")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("class "):]
	for i, c := range rest {
		if c == ' ' || c == '{' {
			return strings.TrimSpace(rest[:i])
		}
	}
	return strings.TrimSpace(rest)
}

func extractPyFuncName(line string) string {
	line = strings.TrimPrefix(line, "def ")
	if idx := strings.Index(line, "("); idx > 0 {
		return strings.TrimSpace(line[:idx])
	}
	return strings.TrimSpace(line)
}

func extractPyClassName(line string) string {
	line = strings.TrimPrefix(line, "class ")
	for i, c := range line {
		if c == '(' || c == ':' {
			return strings.TrimSpace(line[:i])
		}
	}
	return strings.TrimSpace(line)
}

func extractRubyClassName(line string) string {
	line = strings.TrimPrefix(line, "class ")
	if idx := strings.IndexAny(line, " <"); idx > 0 {
		return line[:idx]
	}
	return strings.TrimSpace(line)
}

// extractRustItemName pulls the name after a Rust item keyword, allowing a
// pub-visibility prefix and stopping at generics or the signature.
func extractRustItemName(line, keyword string) string {
	idx := strings.Index(line, keyword)
	if idx < 0 {
		return ""
	}
	prefix := strings.TrimSpace(line[:idx])
	if prefix != "" && prefix != "pub" && !strings.HasPrefix(prefix, "pub(") {
		return ""
	}

	rest := line[idx+len(keyword):]
	end := strings.IndexAny(rest, "(<{ :;")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	if end == 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

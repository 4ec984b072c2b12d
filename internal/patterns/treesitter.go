//go:build cgo

package patterns

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// IsAvailable reports whether structural matching is compiled in.
func IsAvailable() bool {
	return true
}

// astMatcher resolves declarations by tree-sitter AST node.
type astMatcher struct {
	parser *sitter.Parser
}

func newASTMatcher() *astMatcher {
	return &astMatcher{parser: sitter.NewParser()}
}

// astSupports reports whether a grammar is compiled in for the language.
func astSupports(lang string) bool {
	_, err := grammarFor(lang)
	return err == nil
}

func grammarFor(lang string) (*sitter.Language, error) {
	switch lang {
	case "go":
		return golang.GetLanguage(), nil
	case "javascript":
		return javascript.GetLanguage(), nil
	case "typescript":
		return typescript.GetLanguage(), nil
	case "tsx":
		return tsx.GetLanguage(), nil
	case "python":
		return python.GetLanguage(), nil
	case "rust":
		return rust.GetLanguage(), nil
	case "java":
		return java.GetLanguage(), nil
	case "kotlin":
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// findDeclarations parses the source and reports declarations of the
// requested kinds whose name equals the query.
func (m *astMatcher) findDeclarations(ctx context.Context, source []byte, file, lang string, kinds []string, opts Options, max int) ([]Match, error) {
	if max <= 0 {
		return nil, nil
	}

	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	m.parser.SetLanguage(grammar)
	tree, err := m.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	root := tree.RootNode()

	var matches []Match
	for _, kind := range kinds {
		for _, node := range findNodes(root, declarationNodeTypes(lang, kind)) {
			name, nameNode := declarationName(node, source, lang)
			if nameNode == nil || !nameMatches(name, opts.Query, opts.CaseSensitive) {
				continue
			}

			matches = append(matches, Match{
				File:      file,
				Line:      int(nameNode.StartPoint().Row) + 1,
				Column:    int(nameNode.StartPoint().Column) + 1,
				Kind:      kind,
				MatchedBy: MatchedByAST,
				Snippet:   lineAround(source, nameNode.StartByte()),
			})
			if len(matches) >= max {
				break
			}
		}
		if len(matches) >= max {
			break
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		return matches[i].Column < matches[j].Column
	})
	return matches, nil
}

// declarationNodeTypes returns the AST node types holding declarations of
// one kind for one language.
func declarationNodeTypes(lang, kind string) []string {
	switch kind {
	case KindFunction:
		switch lang {
		case "go":
			return []string{"function_declaration", "method_declaration"}
		case "javascript", "typescript", "tsx":
			return []string{"function_declaration", "generator_function_declaration", "method_definition"}
		case "python":
			return []string{"function_definition"}
		case "rust":
			return []string{"function_item"}
		case "java":
			return []string{"method_declaration", "constructor_declaration"}
		case "kotlin":
			return []string{"function_declaration"}
		}
	case KindClass:
		switch lang {
		case "go":
			return []string{"type_declaration"}
		case "javascript", "typescript", "tsx":
			return []string{"class_declaration", "interface_declaration"}
		case "python":
			return []string{"class_definition"}
		case "rust":
			return []string{"struct_item", "enum_item", "trait_item"}
		case "java":
			return []string{"class_declaration", "interface_declaration", "enum_declaration"}
		case "kotlin":
			return []string{"class_declaration", "object_declaration"}
		}
	}
	return nil
}

// declarationName finds the identifier node naming a declaration.
func declarationName(node *sitter.Node, source []byte, lang string) (string, *sitter.Node) {
	var nameNode *sitter.Node

	if node.Type() == "type_declaration" {
		// Go: the name lives on the type_spec child.
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			if child != nil && child.Type() == "type_spec" {
				nameNode = child.ChildByFieldName("name")
				break
			}
		}
	} else {
		nameNode = node.ChildByFieldName("name")
		if nameNode == nil {
			for i := uint32(0); i < node.ChildCount(); i++ {
				child := node.Child(int(i))
				if child == nil {
					continue
				}
				switch child.Type() {
				case "identifier", "simple_identifier", "type_identifier":
					nameNode = child
				}
				if nameNode != nil {
					break
				}
			}
		}
	}

	if nameNode == nil {
		return "", nil
	}
	return string(source[nameNode.StartByte():nameNode.EndByte()]), nameNode
}

// findNodes collects all nodes of the given types in the AST.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	if len(types) == 0 {
		return nil
	}

	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if hasKind(types, node.Type()) {
			result = append(result, node)
		}
		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}

	walk(root)
	return result
}

// lineAround extracts the source line containing the byte offset.
func lineAround(source []byte, pos uint32) string {
	start := int(pos)
	if start > len(source) {
		start = len(source)
	}
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	lineEnd := bytes.IndexByte(source[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += start
	}
	return trimSnippet(string(source[lineStart:lineEnd]))
}

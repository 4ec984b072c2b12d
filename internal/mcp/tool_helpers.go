package mcp

import (
	"path/filepath"

	"codemod/internal/changes"
	cmerrors "codemod/internal/errors"
	"codemod/internal/paths"
)

// Tool arguments arrive as the generic JSON types produced by
// encoding/json: numbers are float64, arrays are []interface{}. The
// helpers below narrow them; schema violations surface as INVALID_INPUT
// so they land in error envelopes with the field named.

func stringParam(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

func requiredString(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", cmerrors.NewInvalidInputError(key, "required string parameter")
	}
	return v, nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func requiredInt(params map[string]interface{}, key string) (int, error) {
	v, ok := params[key].(float64)
	if !ok {
		return 0, cmerrors.NewInvalidInputError(key, "required number parameter")
	}
	return int(v), nil
}

func boolParam(params map[string]interface{}, key string) bool {
	v, _ := params[key].(bool)
	return v
}

func stringSliceParam(params map[string]interface{}, key string) []string {
	raw, ok := params[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sectionParam(params map[string]interface{}, key string) (changes.Section, error) {
	raw, ok := params[key].(map[string]interface{})
	if !ok {
		return changes.Section{}, cmerrors.NewInvalidInputError(key, "required object with start and end")
	}
	start, ok := raw["start"].(float64)
	if !ok {
		return changes.Section{}, cmerrors.NewInvalidInputError(key+".start", "required number")
	}
	end, ok := raw["end"].(float64)
	if !ok {
		return changes.Section{}, cmerrors.NewInvalidInputError(key+".end", "required number")
	}
	return changes.Section{Start: int(start), End: int(end)}, nil
}

func metaParam(params map[string]interface{}) changes.Meta {
	return changes.Meta{
		Description: stringParam(params, "description"),
		Author:      stringParam(params, "author"),
	}
}

// resolveFile turns a caller-supplied path into the absolute form the
// engine is keyed by and the workspace-relative form every report and
// journal entry carries.
func (s *Server) resolveFile(raw string) (abs, rel string) {
	if filepath.IsAbs(raw) {
		abs = filepath.Clean(raw)
	} else {
		abs = paths.JoinWorkspacePath(s.workspace, raw)
	}
	rel, err := paths.CanonicalizePath(abs, s.workspace)
	if err != nil {
		rel = paths.NormalizePath(raw)
	}
	return abs, rel
}

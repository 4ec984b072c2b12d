package mcp

import "codemod/internal/envelope"

// Tool describes an MCP tool for tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler executes a tool call and returns the response envelope.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

// RegisterTools wires every tool name to its handler. Must mirror
// GetToolDefinitions.
func (s *Server) RegisterTools() {
	s.tools["stageModify"] = s.toolStageModify
	s.tools["stageInsert"] = s.toolStageInsert
	s.tools["stageDelete"] = s.toolStageDelete
	s.tools["previewChanges"] = s.toolPreviewChanges
	s.tools["validateChanges"] = s.toolValidateChanges
	s.tools["applyChanges"] = s.toolApplyChanges
	s.tools["revertChanges"] = s.toolRevertChanges
	s.tools["getChangeStatus"] = s.toolGetChangeStatus
	s.tools["getChangeHistory"] = s.toolGetChangeHistory
	s.tools["getStatus"] = s.toolGetStatus
	s.tools["getJournal"] = s.toolGetJournal
	s.tools["analyzeStructure"] = s.toolAnalyzeStructure
	s.tools["detectTechnologies"] = s.toolDetectTechnologies
	s.tools["getFileMetrics"] = s.toolGetFileMetrics
	s.tools["findPatterns"] = s.toolFindPatterns
}

// GetToolDefinitions returns the full tool catalog.
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "stageModify",
			Description: "Stage a replacement of a character section of a file. Nothing is written until applyChanges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to change, relative to the workspace root",
					},
					"section": map[string]interface{}{
						"type":        "object",
						"description": "Half-open character range [start, end) to replace",
						"properties": map[string]interface{}{
							"start": map[string]interface{}{"type": "number"},
							"end":   map[string]interface{}{"type": "number"},
						},
						"required": []string{"start", "end"},
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Replacement text",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What this change is for",
					},
					"author": map[string]interface{}{
						"type":        "string",
						"description": "Who staged this change",
					},
				},
				"required": []string{"filePath", "section", "content"},
			},
		},
		{
			Name:        "stageInsert",
			Description: "Stage an insertion of text at a character position. Nothing is written until applyChanges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to change, relative to the workspace root",
					},
					"position": map[string]interface{}{
						"type":        "number",
						"description": "Character offset the text is inserted at",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Text to insert",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What this change is for",
					},
					"author": map[string]interface{}{
						"type":        "string",
						"description": "Who staged this change",
					},
				},
				"required": []string{"filePath", "position", "content"},
			},
		},
		{
			Name:        "stageDelete",
			Description: "Stage a deletion of a character section of a file. Nothing is written until applyChanges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to change, relative to the workspace root",
					},
					"section": map[string]interface{}{
						"type":        "object",
						"description": "Half-open character range [start, end) to delete",
						"properties": map[string]interface{}{
							"start": map[string]interface{}{"type": "number"},
							"end":   map[string]interface{}{"type": "number"},
						},
						"required": []string{"start", "end"},
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What this change is for",
					},
					"author": map[string]interface{}{
						"type":        "string",
						"description": "Who staged this change",
					},
				},
				"required": []string{"filePath", "section"},
			},
		},
		{
			Name:        "previewChanges",
			Description: "Show the staged changes for a file with before/after excerpts, without touching the file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File whose pending changes to preview",
					},
					"changeId": map[string]interface{}{
						"type":        "string",
						"description": "Preview only this change",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "validateChanges",
			Description: "Check every pending change for a file against its current content and report stale offsets and overlapping sections.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File whose pending changes to validate",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "applyChanges",
			Description: "Write pending changes to the file in one atomic batch. Either every selected change applies or none do.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File whose pending changes to apply",
					},
					"changeIds": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Changes to apply; omit to apply every pending change for the file",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "revertChanges",
			Description: "Undo applied changes by restoring the original text of each section.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File whose applied changes to revert",
					},
					"changeIds": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Changes to revert; omit to revert every applied change for the file",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "getChangeStatus",
			Description: "List the pending and applied changes for a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to report on",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "getChangeHistory",
			Description: "Show the applied-change history for a file, newest first, with size impact totals.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to report on",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum entries to return",
						"default":     10,
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "getStatus",
			Description: "Summarize the server: workspace, version, pending and applied counts, and journal totals.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "getJournal",
			Description: "Read the persistent change journal, newest events first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "Only events for this file",
					},
					"action": map[string]interface{}{
						"type":        "string",
						"description": "Only events with this action",
						"enum":        []string{"staged", "applied", "reverted"},
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum events to return",
						"default":     20,
					},
				},
			},
		},
		{
			Name:        "analyzeStructure",
			Description: "Walk the workspace tree and report directories, files, and per-extension totals.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Directory to start from, relative to the workspace root",
					},
					"maxDepth": map[string]interface{}{
						"type":        "number",
						"description": "How many directory levels to descend",
						"default":     6,
					},
				},
			},
		},
		{
			Name:        "detectTechnologies",
			Description: "Detect the languages, frameworks, and tools a workspace is built with.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Directory to inspect, relative to the workspace root",
					},
				},
			},
		},
		{
			Name:        "getFileMetrics",
			Description: "Report line, character, and byte counts for one file, split into code, comment, and blank lines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filePath": map[string]interface{}{
						"type":        "string",
						"description": "File to measure, relative to the workspace root",
					},
				},
				"required": []string{"filePath"},
			},
		},
		{
			Name:        "findPatterns",
			Description: "Search workspace sources for text occurrences or for function and class declarations by name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Text to find, or the exact declaration name when kinds are given",
					},
					"kinds": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string", "enum": []string{"function", "class"}},
						"description": "Restrict matches to declarations of these kinds",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "File or directory to search, relative to the workspace root",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum matches to return",
						"default":     50,
					},
					"caseSensitive": map[string]interface{}{
						"type":        "boolean",
						"description": "Match case exactly",
						"default":     false,
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// Package envelope provides a standardized response wrapper for all MCP tool
// responses. Every tool response is wrapped in a consistent envelope that
// includes metadata about confidence, provenance, truncation, warnings, and
// suggested next calls.
package envelope

// ConfidenceTier represents the quality tier of results.
type ConfidenceTier string

const (
	// TierHigh indicates deterministic results: engine operations and
	// AST-backed matches.
	TierHigh ConfidenceTier = "high"
	// TierMedium indicates heuristic results, such as line-scan matches.
	TierMedium ConfidenceTier = "medium"
	// TierLow indicates partial results, e.g. an analysis that skipped
	// unreadable inputs.
	TierLow ConfidenceTier = "low"
)

// Confidence describes result quality.
type Confidence struct {
	Score   float64        `json:"score"`             // 0.0 - 1.0
	Tier    ConfidenceTier `json:"tier"`              // high, medium, low
	Reasons []string       `json:"reasons,omitempty"` // why this tier
}

// Provenance describes which component produced the result.
type Provenance struct {
	Source     string `json:"source"`               // e.g., "changes", "analyzer", "patterns"
	DurationMS int64  `json:"durationMs,omitempty"` // wall time spent producing the result
}

// Truncation describes result trimming.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`  // items returned
	Total       int    `json:"total,omitempty"`  // total available
	Reason      string `json:"reason,omitempty"` // "max-results", "limit", etc.
}

// Meta holds response metadata.
type Meta struct {
	Confidence *Confidence `json:"confidence,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
	Truncation *Truncation `json:"truncation,omitempty"`
}

// SuggestedCall represents a recommended follow-up tool call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`             // tool name
	Params map[string]interface{} `json:"params,omitempty"` // pre-filled parameters
	Reason string                 `json:"reason,omitempty"` // why this is suggested
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"` // machine-readable code
	Message string `json:"message"`        // human-readable message
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	Error              *string         `json:"error,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

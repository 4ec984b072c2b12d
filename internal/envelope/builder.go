package envelope

import "time"

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// WithConfidence sets the confidence score; the tier is derived from it.
func (b *Builder) WithConfidence(score float64, reasons ...string) *Builder {
	b.meta().Confidence = &Confidence{
		Score:   score,
		Tier:    ScoreToTier(score),
		Reasons: reasons,
	}
	return b
}

// WithProvenance records the component that produced the result and how long
// it took.
func (b *Builder) WithProvenance(source string, elapsed time.Duration) *Builder {
	b.meta().Provenance = &Provenance{
		Source:     source,
		DurationMS: elapsed.Milliseconds(),
	}
	return b
}

// WithTruncation adds truncation metadata.
func (b *Builder) WithTruncation(truncated bool, shown, total int, reason string) *Builder {
	if !truncated {
		return b
	}
	b.meta().Truncation = &Truncation{
		IsTruncated: true,
		Shown:       shown,
		Total:       total,
		Reason:      reason,
	}
	return b
}

// Suggest appends a recommended follow-up tool call.
func (b *Builder) Suggest(tool string, params map[string]interface{}, reason string) *Builder {
	b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: reason,
	})
	return b
}

// Warning adds a warning message.
func (b *Builder) Warning(msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Message: msg})
	return b
}

// WarningWithCode adds a warning with a code.
func (b *Builder) WarningWithCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Error sets the error field.
func (b *Builder) Error(err error) *Builder {
	if err != nil {
		msg := err.Error()
		b.resp.Error = &msg
	}
	return b
}

// Build returns the completed response envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// Operational creates a simple envelope for operational tools.
// These always have high confidence and no truncation concerns.
func Operational(data interface{}) *Response {
	return &Response{
		SchemaVersion: CurrentSchemaVersion,
		Data:          data,
		Meta: &Meta{
			Confidence: &Confidence{
				Score: 1.0,
				Tier:  TierHigh,
			},
		},
	}
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates a missing or out-of-range section, position, or argument
	InvalidInput ErrorCode = "INVALID_INPUT"
	// NotFound indicates an unknown change identifier or a missing file
	NotFound ErrorCode = "NOT_FOUND"
	// Conflict indicates overlapping pending sections surfaced by validation
	Conflict ErrorCode = "CONFLICT"
	// IOFailure indicates a read, write, or backup failure
	IOFailure ErrorCode = "IO_FAILURE"
	// Internal indicates an unexpected error
	Internal ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// CodemodError represents a codemod error with code, message, and suggestions
type CodemodError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new CodemodError
func New(code ErrorCode, message string, cause error) *CodemodError {
	return &CodemodError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *CodemodError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CodemodError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CodemodError) WithDetails(details interface{}) *CodemodError {
	e.Details = details
	return e
}

// NewInvalidInputError creates an INVALID_INPUT error for a named field
func NewInvalidInputError(field, reason string) *CodemodError {
	msg := fmt.Sprintf("invalid %s", field)
	if reason != "" {
		msg = fmt.Sprintf("invalid %s: %s", field, reason)
	}
	return New(InvalidInput, msg, nil)
}

// NewNotFoundError creates a NOT_FOUND error for a resource ("file", "change") and its identifier
func NewNotFoundError(resource, id string) *CodemodError {
	return New(NotFound, fmt.Sprintf("%s not found: %s", resource, id), nil)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message string) *CodemodError {
	return New(Conflict, message, nil)
}

// NewIOFailureError creates an IO_FAILURE error wrapping the underlying fault
func NewIOFailureError(op string, cause error) *CodemodError {
	return New(IOFailure, op+" failed", cause)
}

// NewInternalError creates an INTERNAL_ERROR wrapping an unexpected fault
func NewInternalError(op string, cause error) *CodemodError {
	return New(Internal, op+" failed unexpectedly", cause)
}

// From converts any error into a CodemodError. Errors that already are
// (or wrap) a CodemodError pass through; everything else is classified
// as INTERNAL_ERROR so no raw fault escapes an operation boundary.
func From(err error) *CodemodError {
	if err == nil {
		return nil
	}
	var ce *CodemodError
	if errors.As(err, &ce) {
		return ce
	}
	return New(Internal, "unexpected error", err)
}

// CodeOf returns the error code for an error, or INTERNAL_ERROR for
// errors that carry no code.
func CodeOf(err error) ErrorCode {
	var ce *CodemodError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return Internal
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	Conflict: {
		{
			Type:        RunCommand,
			Command:     "codemod edit --help",
			Safe:        true,
			Description: "Preview the pending changes and restage with non-overlapping sections",
		},
	},
	NotFound: {
		{
			Type:        RunCommand,
			Command:     "codemod log --limit 20",
			Safe:        true,
			Description: "Inspect the change journal for known identifiers",
		},
	},
	IOFailure: {
		{
			Type:        RunCommand,
			Command:     "codemod config show",
			Safe:        true,
			Description: "Check workspace root and backup settings",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// Package journal persists an append-only audit trail of change-engine
// activity in a SQLite database under the workspace state directory. The
// in-memory engine remains authoritative; the journal only observes.
package journal

import "time"

// Action tags what happened to a change.
type Action string

const (
	ActionStaged   Action = "staged"
	ActionApplied  Action = "applied"
	ActionReverted Action = "reverted"
)

// Event is one audit entry. ID and RecordedAt are assigned by the store.
type Event struct {
	ID            int64     `json:"id"`
	ChangeID      string    `json:"changeId"`
	File          string    `json:"file"`
	Kind          string    `json:"kind"`
	Action        Action    `json:"action"`
	Start         int       `json:"start"`
	End           int       `json:"end"`
	OriginalChars int       `json:"originalChars"`
	NewChars      int       `json:"newChars"`
	Description   string    `json:"description,omitempty"`
	Author        string    `json:"author,omitempty"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// ListOptions filter and page the event list.
type ListOptions struct {
	File     string `json:"file,omitempty"`
	ChangeID string `json:"changeId,omitempty"`
	Action   Action `json:"action,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ListResponse carries a page of events, newest first.
type ListResponse struct {
	Events     []Event `json:"events"`
	TotalCount int     `json:"totalCount"`
}

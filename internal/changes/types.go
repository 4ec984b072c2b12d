// Package changes implements the change-tracking and text-mutation engine:
// staging, previewing, validating, applying, and reverting textual edits
// addressed by half-open character-offset sections. The Stager owns pending
// records, the Applier owns applied records and the per-file undo stack; a
// record crosses from one to the other exactly once, when a batch commits.
//
// Offsets count Unicode code points of the decoded file text, not bytes.
package changes

import (
	"time"
)

// Kind identifies the mutation a record performs.
type Kind string

const (
	KindModify Kind = "modify"
	KindInsert Kind = "insert"
	KindDelete Kind = "delete"
)

// Status tracks a record through its lifecycle.
// There is no transition from applied back to pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApplied  Status = "applied"
	StatusReverted Status = "reverted"
)

// DefaultHistoryLimit caps History output when the caller gives no limit.
const DefaultHistoryLimit = 10

// Section is a half-open character-offset range [Start,End) into a file's
// decoded text. For inserts Start == End (a pure position, no span consumed).
type Section struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Length returns the number of characters the section spans.
func (s Section) Length() int {
	return s.End - s.Start
}

// Meta carries the caller-supplied annotation for a staged change.
type Meta struct {
	Description string
	Author      string
}

// Record is the unit of mutation. OriginalContent is the exact substring
// occupying Section at staging time (empty for insert); NewContent is the
// replacement text (empty for delete). The ID is minted once at creation and
// never recomputed.
type Record struct {
	ID              string     `json:"id"`
	FilePath        string     `json:"filePath"`
	Kind            Kind       `json:"kind"`
	Section         Section    `json:"section"`
	OriginalContent string     `json:"originalContent"`
	NewContent      string     `json:"newContent"`
	Status          Status     `json:"status"`
	Description     string     `json:"description,omitempty"`
	Author          string     `json:"author,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	AppliedAt       *time.Time `json:"appliedAt,omitempty"`
	BackupPath      string     `json:"backupPath,omitempty"`
}

// OriginalChars returns the character length of the staged-away text.
func (r *Record) OriginalChars() int {
	return len([]rune(r.OriginalContent))
}

// NewChars returns the character length of the replacement text.
func (r *Record) NewChars() int {
	return len([]rune(r.NewContent))
}

// Summary is the metadata view of a record used by status and history
// reporting. It omits the record's text payloads.
type Summary struct {
	ChangeID      string     `json:"changeId"`
	Kind          Kind       `json:"kind"`
	Section       Section    `json:"section"`
	Status        Status     `json:"status"`
	Description   string     `json:"description,omitempty"`
	Author        string     `json:"author,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	AppliedAt     *time.Time `json:"appliedAt,omitempty"`
	OriginalChars int        `json:"originalChars"`
	NewChars      int        `json:"newChars"`
}

// ToSummary converts a record to its metadata view.
func (r *Record) ToSummary() Summary {
	return Summary{
		ChangeID:      r.ID,
		Kind:          r.Kind,
		Section:       r.Section,
		Status:        r.Status,
		Description:   r.Description,
		Author:        r.Author,
		CreatedAt:     r.CreatedAt,
		AppliedAt:     r.AppliedAt,
		OriginalChars: r.OriginalChars(),
		NewChars:      r.NewChars(),
	}
}

// StageResult reports a successful stage operation.
type StageResult struct {
	ChangeID      string    `json:"changeId"`
	File          string    `json:"file"`
	Kind          Kind      `json:"kind"`
	Section       Section   `json:"section"`
	BackupPath    string    `json:"backupPath,omitempty"`
	OriginalChars int       `json:"originalChars"`
	NewChars      int       `json:"newChars"`
	Delta         int       `json:"delta"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PreviewEntry shows one pending record with its before/after text.
type PreviewEntry struct {
	ChangeID    string    `json:"changeId"`
	File        string    `json:"file"`
	Kind        Kind      `json:"kind"`
	Section     Section   `json:"section"`
	Original    string    `json:"original"`
	Modified    string    `json:"modified"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PreviewResult lists pending records for a file without mutating state.
type PreviewResult struct {
	File         string         `json:"file"`
	TotalChanges int            `json:"totalChanges"`
	Changes      []PreviewEntry `json:"changes"`
}

// CheckLevel grades a per-record validation finding.
type CheckLevel string

const (
	CheckOK      CheckLevel = "ok"
	CheckWarning CheckLevel = "warning"
	CheckError   CheckLevel = "error"
)

// CheckResult is one per-record structural finding from Validate.
type CheckResult struct {
	ChangeID string     `json:"changeId"`
	Level    CheckLevel `json:"level"`
	Message  string     `json:"message,omitempty"`
}

// ConflictPair names two pending records whose sections overlap.
type ConflictPair struct {
	FirstID       string  `json:"firstId"`
	SecondID      string  `json:"secondId"`
	FirstSection  Section `json:"firstSection"`
	SecondSection Section `json:"secondSection"`
}

// ValidationReport is the outcome of Validate for one file. Valid means no
// overlapping sections were found; warnings do not affect it.
type ValidationReport struct {
	File         string         `json:"file"`
	Valid        bool           `json:"valid"`
	TotalChecked int            `json:"totalChecked"`
	Results      []CheckResult  `json:"results"`
	Conflicts    []ConflictPair `json:"conflicts"`
}

// ApplyResult reports a committed batch.
type ApplyResult struct {
	File           string   `json:"file"`
	AppliedChanges int      `json:"appliedChanges"`
	ChangeIDs      []string `json:"changeIds"`
	CharsWritten   int      `json:"charsWritten"`
}

// RevertResult reports an undone batch.
type RevertResult struct {
	File            string   `json:"file"`
	RevertedChanges int      `json:"revertedChanges"`
	ChangeIDs       []string `json:"changeIds"`
}

// StatusReport describes the pending and applied sets for one file.
type StatusReport struct {
	File         string    `json:"file"`
	PendingCount int       `json:"pendingCount"`
	AppliedCount int       `json:"appliedCount"`
	Pending      []Summary `json:"pending"`
	Applied      []Summary `json:"applied"`
}

// SizeImpact aggregates character volume across applied records.
type SizeImpact struct {
	OriginalChars int `json:"originalChars"`
	ModifiedChars int `json:"modifiedChars"`
	Difference    int `json:"difference"`
}

// HistoryStats aggregates over all applied records of a file.
type HistoryStats struct {
	CountsByKind  map[Kind]int `json:"countsByKind"`
	SizeImpact    SizeImpact   `json:"sizeImpact"`
	FirstChangeAt *time.Time   `json:"firstChangeAt,omitempty"`
	LastChangeAt  *time.Time   `json:"lastChangeAt,omitempty"`
}

// HistoryReport lists the most recent applied entries for a file,
// most recent first. TotalChanges is the applied-set size for the file,
// independent of the limit.
type HistoryReport struct {
	File         string       `json:"file"`
	TotalChanges int          `json:"totalChanges"`
	Entries      []Summary    `json:"entries"`
	Stats        HistoryStats `json:"stats"`
}

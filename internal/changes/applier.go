package changes

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"codemod/internal/errors"
)

// Applier commits staged edits to disk as single-write batches and keeps the
// applied set plus the per-file change stack for undo. It reaches into the
// Stager only to resolve and remove pending records during the handoff, and
// shares the Stager's file-lock table so operations on one file serialize.
type Applier struct {
	mu      sync.RWMutex
	applied map[string]*Record
	stack   map[string][]string // fileKey -> applied IDs, most-recent-last

	stager *Stager
	locks  *fileLocks
	logger *slog.Logger
}

// NewApplier creates an Applier bound to the Stager it takes records from.
func NewApplier(stager *Stager, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		applied: make(map[string]*Record),
		stack:   make(map[string][]string),
		stager:  stager,
		locks:   stager.locks,
		logger:  logger,
	}
}

// Apply commits a batch of pending records to one file. With an empty id list
// every pending record for the file is selected. Every given id must resolve
// to a pending record for that file or the whole call fails before any
// mutation. The batch is spliced into memory highest offset first, so
// processing one record never shifts the stored offsets of the records still
// waiting, and the file is written exactly once.
//
// Overlap between sections is not re-checked here; Validate is the caller's
// obligation. Overlapping records will both be applied, corrupting output.
func (a *Applier) Apply(file string, changeIDs []string) (*ApplyResult, error) {
	unlock := a.locks.lock(file)
	defer unlock()

	recs, err := a.selectPending(file, changeIDs)
	if err != nil {
		return nil, err
	}

	_, runes, err := readRunes(file)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.Section.End > len(runes) {
			return nil, staleOffsets(rec, len(runes))
		}
	}

	ordered := make([]*Record, len(recs))
	copy(ordered, recs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Section.Start != ordered[j].Section.Start {
			return ordered[i].Section.Start > ordered[j].Section.Start
		}
		return ordered[i].Section.End > ordered[j].Section.End
	})
	for _, rec := range ordered {
		switch rec.Kind {
		case KindModify:
			runes = splice(runes, rec.Section.Start, rec.Section.End, []rune(rec.NewContent))
		case KindInsert:
			runes = splice(runes, rec.Section.Start, rec.Section.Start, []rune(rec.NewContent))
		case KindDelete:
			runes = splice(runes, rec.Section.Start, rec.Section.End, nil)
		}
	}

	if err := os.WriteFile(file, []byte(string(runes)), 0644); err != nil {
		return nil, errors.NewIOFailureError("write "+file, err)
	}

	ids := make([]string, len(recs))
	now := time.Now().UTC()
	key := fileKey(file)
	a.mu.Lock()
	for i, rec := range recs {
		at := now
		rec.Status = StatusApplied
		rec.AppliedAt = &at
		a.applied[rec.ID] = rec
		a.stack[key] = append(a.stack[key], rec.ID)
		ids[i] = rec.ID
	}
	a.mu.Unlock()
	a.stager.removePending(ids)

	a.logger.Info("applied changes", "file", file, "count", len(ids))
	return &ApplyResult{
		File:           file,
		AppliedChanges: len(ids),
		ChangeIDs:      ids,
		CharsWritten:   len(runes),
	}, nil
}

// Revert undoes previously applied records on one file by re-inserting each
// record's original text at its original coordinates, lowest offset first,
// with a single write at the end. With an empty id list the file's whole
// applied set is reverted in stack order.
//
// The inverse is exact only when a batch is reverted in full and nothing else
// shifted offsets since apply time; partial reverts of interleaved batches
// can desynchronize offsets, surfaced as an invalid-input failure when the
// arithmetic runs past the current content.
func (a *Applier) Revert(file string, changeIDs []string) (*RevertResult, error) {
	unlock := a.locks.lock(file)
	defer unlock()

	recs, err := a.selectApplied(file, changeIDs)
	if err != nil {
		return nil, err
	}

	_, runes, err := readRunes(file)
	if err != nil {
		return nil, err
	}

	ordered := make([]*Record, len(recs))
	copy(ordered, recs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Section.Start != ordered[j].Section.Start {
			return ordered[i].Section.Start < ordered[j].Section.Start
		}
		return ordered[i].Section.End < ordered[j].Section.End
	})
	for _, rec := range ordered {
		start := rec.Section.Start
		switch rec.Kind {
		case KindModify:
			cut := start + rec.NewChars()
			if cut > len(runes) {
				return nil, driftedOffsets(rec, len(runes))
			}
			runes = splice(runes, start, cut, []rune(rec.OriginalContent))
		case KindInsert:
			cut := start + rec.NewChars()
			if cut > len(runes) {
				return nil, driftedOffsets(rec, len(runes))
			}
			runes = splice(runes, start, cut, nil)
		case KindDelete:
			if start > len(runes) {
				return nil, driftedOffsets(rec, len(runes))
			}
			runes = splice(runes, start, start, []rune(rec.OriginalContent))
		}
	}

	if err := os.WriteFile(file, []byte(string(runes)), 0644); err != nil {
		return nil, errors.NewIOFailureError("write "+file, err)
	}

	ids := make([]string, len(recs))
	key := fileKey(file)
	a.mu.Lock()
	reverted := make(map[string]bool, len(recs))
	for i, rec := range recs {
		rec.Status = StatusReverted
		delete(a.applied, rec.ID)
		reverted[rec.ID] = true
		ids[i] = rec.ID
	}
	kept := a.stack[key][:0]
	for _, id := range a.stack[key] {
		if !reverted[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(a.stack, key)
	} else {
		a.stack[key] = kept
	}
	a.mu.Unlock()

	a.logger.Info("reverted changes", "file", file, "count", len(ids))
	return &RevertResult{
		File:            file,
		RevertedChanges: len(ids),
		ChangeIDs:       ids,
	}, nil
}

// Status reports the pending and applied sets for one file. Pure read.
func (a *Applier) Status(file string) *StatusReport {
	unlock := a.locks.lock(file)
	defer unlock()

	pending := a.stager.pendingForFile(file)
	applied := a.appliedForFile(file)

	report := &StatusReport{
		File:         file,
		PendingCount: len(pending),
		AppliedCount: len(applied),
		Pending:      make([]Summary, 0, len(pending)),
		Applied:      make([]Summary, 0, len(applied)),
	}
	for _, rec := range pending {
		report.Pending = append(report.Pending, rec.ToSummary())
	}
	for _, rec := range applied {
		report.Applied = append(report.Applied, rec.ToSummary())
	}
	return report
}

// History returns the most recent applied entries for a file, newest first,
// capped at limit (DefaultHistoryLimit when limit <= 0), plus aggregate
// statistics over the file's whole applied set.
func (a *Applier) History(file string, limit int) *HistoryReport {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	unlock := a.locks.lock(file)
	defer unlock()

	a.mu.RLock()
	defer a.mu.RUnlock()

	stack := a.stack[fileKey(file)]
	entries := make([]Summary, 0, limit)
	for i := len(stack) - 1; i >= 0 && len(entries) < limit; i-- {
		if rec, ok := a.applied[stack[i]]; ok {
			entries = append(entries, rec.ToSummary())
		}
	}

	stats := HistoryStats{CountsByKind: make(map[Kind]int)}
	for _, id := range stack {
		rec, ok := a.applied[id]
		if !ok {
			continue
		}
		stats.CountsByKind[rec.Kind]++
		stats.SizeImpact.OriginalChars += rec.OriginalChars()
		stats.SizeImpact.ModifiedChars += rec.NewChars()
		if stats.FirstChangeAt == nil || rec.CreatedAt.Before(*stats.FirstChangeAt) {
			t := rec.CreatedAt
			stats.FirstChangeAt = &t
		}
		if stats.LastChangeAt == nil || rec.CreatedAt.After(*stats.LastChangeAt) {
			t := rec.CreatedAt
			stats.LastChangeAt = &t
		}
	}
	stats.SizeImpact.Difference = stats.SizeImpact.ModifiedChars - stats.SizeImpact.OriginalChars

	return &HistoryReport{
		File:         file,
		TotalChanges: len(stack),
		Entries:      entries,
		Stats:        stats,
	}
}

// AppliedCount returns the number of applied records across all files.
func (a *Applier) AppliedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.applied)
}

// selectPending resolves the apply batch: the given ids, or every pending
// record of the file when none are given. All-or-nothing; no state changes.
func (a *Applier) selectPending(file string, changeIDs []string) ([]*Record, error) {
	if len(changeIDs) == 0 {
		recs := a.stager.pendingForFile(file)
		if len(recs) == 0 {
			return nil, errors.NewNotFoundError("pending changes", file)
		}
		return recs, nil
	}
	recs, missing := a.stager.lookupPending(changeIDs)
	if len(missing) > 0 {
		return nil, errors.NewNotFoundError("change", missing[0]).
			WithDetails(map[string]interface{}{"missingIds": missing})
	}
	for _, rec := range recs {
		if !sameFile(rec.FilePath, file) {
			return nil, errors.NewInvalidInputError("changeIds",
				fmt.Sprintf("change %s targets %s, not %s", rec.ID, rec.FilePath, file))
		}
	}
	return recs, nil
}

// selectApplied resolves the revert batch from the applied set, in stack
// order when no ids are given. All-or-nothing; no state changes.
func (a *Applier) selectApplied(file string, changeIDs []string) ([]*Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(changeIDs) == 0 {
		stack := a.stack[fileKey(file)]
		if len(stack) == 0 {
			return nil, errors.NewNotFoundError("applied changes", file)
		}
		recs := make([]*Record, 0, len(stack))
		for _, id := range stack {
			if rec, ok := a.applied[id]; ok {
				recs = append(recs, rec)
			}
		}
		return recs, nil
	}

	recs := make([]*Record, 0, len(changeIDs))
	var missing []string
	for _, id := range changeIDs {
		rec, ok := a.applied[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		recs = append(recs, rec)
	}
	if len(missing) > 0 {
		return nil, errors.NewNotFoundError("applied change", missing[0]).
			WithDetails(map[string]interface{}{"missingIds": missing})
	}
	for _, rec := range recs {
		if !sameFile(rec.FilePath, file) {
			return nil, errors.NewInvalidInputError("changeIds",
				fmt.Sprintf("change %s targets %s, not %s", rec.ID, rec.FilePath, file))
		}
	}
	return recs, nil
}

// appliedForFile returns the file's applied records in stack (apply) order.
func (a *Applier) appliedForFile(file string) []*Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	stack := a.stack[fileKey(file)]
	recs := make([]*Record, 0, len(stack))
	for _, id := range stack {
		if rec, ok := a.applied[id]; ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

// splice returns a new rune slice with content[start:end] replaced by repl.
func splice(content []rune, start, end int, repl []rune) []rune {
	out := make([]rune, 0, len(content)-(end-start)+len(repl))
	out = append(out, content[:start]...)
	out = append(out, repl...)
	out = append(out, content[end:]...)
	return out
}

func staleOffsets(rec *Record, length int) error {
	return errors.NewInvalidInputError("section",
		fmt.Sprintf("change %s ends at %d, beyond file length %d", rec.ID, rec.Section.End, length)).
		WithDetails(map[string]interface{}{
			"changeId":      rec.ID,
			"section":       rec.Section,
			"contentLength": length,
		})
}

func driftedOffsets(rec *Record, length int) error {
	return errors.NewInvalidInputError("section",
		fmt.Sprintf("change %s no longer fits content of length %d; offsets drifted since apply", rec.ID, length)).
		WithDetails(map[string]interface{}{
			"changeId":      rec.ID,
			"section":       rec.Section,
			"contentLength": length,
		})
}

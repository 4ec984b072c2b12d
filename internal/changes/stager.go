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

// StagerOptions configure backup behavior for staged edits.
type StagerOptions struct {
	// BackupsEnabled controls whether staging writes a timestamped copy of
	// the target file before a record is stored.
	BackupsEnabled bool
	// BackupDir overrides the backup location. Empty means alongside the
	// source file.
	BackupDir string
}

// Stager creates, previews, and validates pending edits against a file's
// current on-disk content. It exclusively owns the pending set; applied
// state lives in the Applier.
type Stager struct {
	mu      sync.RWMutex
	pending map[string]*Record

	locks   *fileLocks
	logger  *slog.Logger
	backups bool
	bakDir  string
}

// NewStager creates a Stager with its own pending set and file-lock table.
func NewStager(opts StagerOptions, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{
		pending: make(map[string]*Record),
		locks:   newFileLocks(),
		logger:  logger,
		backups: opts.BackupsEnabled,
		bakDir:  opts.BackupDir,
	}
}

// StageModify stages a replacement of the text in section with content.
func (s *Stager) StageModify(file string, section Section, content string, meta Meta) (*StageResult, error) {
	if err := checkSection(section); err != nil {
		return nil, err
	}
	return s.stage(file, KindModify, section, content, meta)
}

// StageInsert stages an insertion of content at position. The section of an
// insert spans nothing: [position, position).
func (s *Stager) StageInsert(file string, position int, content string, meta Meta) (*StageResult, error) {
	if position < 0 {
		return nil, errors.NewInvalidInputError("position", "must be non-negative")
	}
	return s.stage(file, KindInsert, Section{Start: position, End: position}, content, meta)
}

// StageDelete stages a removal of the text in section.
func (s *Stager) StageDelete(file string, section Section, meta Meta) (*StageResult, error) {
	if err := checkSection(section); err != nil {
		return nil, err
	}
	return s.stage(file, KindDelete, section, "", meta)
}

// checkSection rejects malformed sections before any file access. Negative
// offsets are an error, never clamped.
func checkSection(section Section) error {
	if section.Start < 0 || section.End < 0 {
		return errors.NewInvalidInputError("section", "offsets must be non-negative")
	}
	if section.Start > section.End {
		return errors.NewInvalidInputError("section",
			fmt.Sprintf("start %d is beyond end %d", section.Start, section.End))
	}
	return nil
}

// stage reads the target file, extracts the original text, writes the backup,
// mints the record identifier, and stores the record as pending. Either the
// record and its backup both exist afterwards, or neither does.
func (s *Stager) stage(file string, kind Kind, section Section, content string, meta Meta) (*StageResult, error) {
	unlock := s.locks.lock(file)
	defer unlock()

	raw, runes, err := readRunes(file)
	if err != nil {
		return nil, err
	}
	if section.End > len(runes) {
		return nil, errors.NewInvalidInputError("section",
			fmt.Sprintf("end %d is beyond file length %d", section.End, len(runes))).
			WithDetails(map[string]interface{}{
				"file":          file,
				"section":       section,
				"contentLength": len(runes),
			})
	}

	original := ""
	if kind != KindInsert {
		original = string(runes[section.Start:section.End])
	}

	backupPath := ""
	if s.backups {
		backupPath, err = writeBackup(file, s.bakDir, raw, time.Now())
		if err != nil {
			return nil, errors.NewIOFailureError("backup "+file, err)
		}
	}

	rec := &Record{
		ID:              mintID(file, kind, section),
		FilePath:        file,
		Kind:            kind,
		Section:         section,
		OriginalContent: original,
		NewContent:      content,
		Status:          StatusPending,
		Description:     meta.Description,
		Author:          meta.Author,
		CreatedAt:       time.Now().UTC(),
		BackupPath:      backupPath,
	}

	s.mu.Lock()
	s.pending[rec.ID] = rec
	s.mu.Unlock()

	s.logger.Debug("staged change",
		"changeId", rec.ID,
		"file", file,
		"kind", kind,
		"start", section.Start,
		"end", section.End)

	return &StageResult{
		ChangeID:      rec.ID,
		File:          file,
		Kind:          kind,
		Section:       section,
		BackupPath:    backupPath,
		OriginalChars: rec.OriginalChars(),
		NewChars:      rec.NewChars(),
		Delta:         rec.NewChars() - rec.OriginalChars(),
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// Preview returns the pending record(s) for a file with their before/after
// text. With a changeID only that record is returned; an unknown or
// wrong-file identifier is a not-found condition. No state is mutated.
func (s *Stager) Preview(file string, changeID string) (*PreviewResult, error) {
	unlock := s.locks.lock(file)
	defer unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []*Record
	if changeID != "" {
		rec, ok := s.pending[changeID]
		if !ok || !sameFile(rec.FilePath, file) {
			return nil, errors.NewNotFoundError("change", changeID)
		}
		recs = []*Record{rec}
	} else {
		recs = s.pendingForFileLocked(file)
	}

	entries := make([]PreviewEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, PreviewEntry{
			ChangeID:    rec.ID,
			File:        rec.FilePath,
			Kind:        rec.Kind,
			Section:     rec.Section,
			Original:    rec.OriginalContent,
			Modified:    rec.NewContent,
			Description: rec.Description,
			Author:      rec.Author,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return &PreviewResult{
		File:         file,
		TotalChanges: len(entries),
		Changes:      entries,
	}, nil
}

// Validate checks all pending records of one file for overlap. Sections are
// sorted by start and adjacent pairs compared; ranges that merely touch at a
// boundary do not conflict. The file's current content is not consulted, so
// edits made outside the engine are not detected here.
func (s *Stager) Validate(file string) *ValidationReport {
	unlock := s.locks.lock(file)
	defer unlock()
	s.mu.RLock()
	recs := s.pendingForFileLocked(file)
	s.mu.RUnlock()

	report := &ValidationReport{
		File:         file,
		TotalChecked: len(recs),
		Results:      make([]CheckResult, 0, len(recs)),
		Conflicts:    []ConflictPair{},
	}

	for _, rec := range recs {
		check := CheckResult{ChangeID: rec.ID, Level: CheckOK}
		switch {
		case rec.Section.Start < 0:
			check.Level = CheckError
			check.Message = "negative section start"
		case rec.Kind == KindModify && rec.NewContent == "":
			check.Level = CheckWarning
			check.Message = "empty replacement on modify; stage a delete to remove text"
		}
		report.Results = append(report.Results, check)
	}

	for i := 0; i+1 < len(recs); i++ {
		cur, next := recs[i], recs[i+1]
		if cur.Section.End > next.Section.Start {
			report.Conflicts = append(report.Conflicts, ConflictPair{
				FirstID:       cur.ID,
				SecondID:      next.ID,
				FirstSection:  cur.Section,
				SecondSection: next.Section,
			})
		}
	}

	report.Valid = len(report.Conflicts) == 0
	return report
}

// PendingCount returns the number of pending records across all files.
func (s *Stager) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// PendingFiles returns the distinct files that have pending records.
func (s *Stager) PendingFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var files []string
	for _, rec := range s.pending {
		key := fileKey(rec.FilePath)
		if !seen[key] {
			seen[key] = true
			files = append(files, rec.FilePath)
		}
	}
	sort.Strings(files)
	return files
}

// pendingForFile returns the pending records for a file sorted by section
// start ascending (ties by end).
func (s *Stager) pendingForFile(file string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingForFileLocked(file)
}

func (s *Stager) pendingForFileLocked(file string) []*Record {
	var recs []*Record
	for _, rec := range s.pending {
		if sameFile(rec.FilePath, file) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Section.Start != recs[j].Section.Start {
			return recs[i].Section.Start < recs[j].Section.Start
		}
		return recs[i].Section.End < recs[j].Section.End
	})
	return recs
}

// lookupPending resolves identifiers against the pending set, preserving the
// input order. Missing identifiers are collected rather than failing fast so
// callers can report the whole set.
func (s *Stager) lookupPending(ids []string) ([]*Record, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]*Record, 0, len(ids))
	var missing []string
	for _, id := range ids {
		rec, ok := s.pending[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, missing
}

// removePending deletes records from the pending set as part of the
// pending-to-applied handoff.
func (s *Stager) removePending(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.pending, id)
	}
}

// readRunes loads a file's raw bytes and decoded text. Every offset in the
// engine addresses the rune slice, never the raw bytes.
func readRunes(file string) ([]byte, []rune, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NewNotFoundError("file", file)
		}
		return nil, nil, errors.NewIOFailureError("read "+file, err)
	}
	return raw, []rune(string(raw)), nil
}

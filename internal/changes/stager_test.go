package changes

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"codemod/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStager(t *testing.T) *Stager {
	t.Helper()
	return NewStager(StagerOptions{BackupsEnabled: true}, testLogger())
}

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read test file: %v", err)
	}
	return string(data)
}

func TestStageModify(t *testing.T) {
	t.Run("extracts original and mints id", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 1, End: 3}, "XY", Meta{Description: "swap", Author: "dev"})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if len(res.ChangeID) != idLength {
			t.Errorf("ChangeID length = %d, want %d", len(res.ChangeID), idLength)
		}
		if res.Kind != KindModify {
			t.Errorf("Kind = %v, want %v", res.Kind, KindModify)
		}
		if res.OriginalChars != 2 || res.NewChars != 2 || res.Delta != 0 {
			t.Errorf("sizes = %d/%d/%d, want 2/2/0", res.OriginalChars, res.NewChars, res.Delta)
		}
		if res.BackupPath == "" {
			t.Fatal("BackupPath should be set when backups are enabled")
		}
		if got := readTestFile(t, res.BackupPath); got != "abcdef" {
			t.Errorf("backup content = %q, want %q", got, "abcdef")
		}
		if got := readTestFile(t, file); got != "abcdef" {
			t.Errorf("staging must not touch the file, got %q", got)
		}
	})

	t.Run("stage then preview returns the source substring", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 1, End: 3}, "XY", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		preview, err := s.Preview(file, res.ChangeID)
		if err != nil {
			t.Fatalf("Preview() error = %v", err)
		}
		if len(preview.Changes) != 1 {
			t.Fatalf("Changes = %d entries, want 1", len(preview.Changes))
		}
		entry := preview.Changes[0]
		if entry.Original != "bc" {
			t.Errorf("Original = %q, want %q", entry.Original, "bc")
		}
		if entry.Modified != "XY" {
			t.Errorf("Modified = %q, want %q", entry.Modified, "XY")
		}
	})

	t.Run("offsets count characters not bytes", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "héllo wörld")

		res, err := s.StageModify(file, Section{Start: 1, End: 2}, "E", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		preview, err := s.Preview(file, res.ChangeID)
		if err != nil {
			t.Fatalf("Preview() error = %v", err)
		}
		if got := preview.Changes[0].Original; got != "é" {
			t.Errorf("Original = %q, want %q", got, "é")
		}
	})

	t.Run("rejects bad sections", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		tests := []struct {
			name    string
			section Section
		}{
			{"negative start", Section{Start: -1, End: 3}},
			{"negative end", Section{Start: 0, End: -2}},
			{"start beyond end", Section{Start: 3, End: 1}},
			{"end beyond length", Section{Start: 0, End: 100}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.StageModify(file, tt.section, "x", Meta{})
				if err == nil {
					t.Fatal("StageModify() should fail")
				}
				if code := errors.CodeOf(err); code != errors.InvalidInput {
					t.Errorf("code = %v, want %v", code, errors.InvalidInput)
				}
			})
		}
	})

	t.Run("missing file is not found", func(t *testing.T) {
		s := newTestStager(t)
		missing := filepath.Join(t.TempDir(), "missing.txt")

		_, err := s.StageModify(missing, Section{Start: 0, End: 1}, "x", Meta{})
		if err == nil {
			t.Fatal("StageModify() should fail")
		}
		if code := errors.CodeOf(err); code != errors.NotFound {
			t.Errorf("code = %v, want %v", code, errors.NotFound)
		}
	})

	t.Run("failed stage leaves no record", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		if _, err := s.StageModify(file, Section{Start: 0, End: 100}, "x", Meta{}); err == nil {
			t.Fatal("StageModify() should fail")
		}
		if got := s.PendingCount(); got != 0 {
			t.Errorf("PendingCount() = %d, want 0", got)
		}
	})
}

func TestStageInsert(t *testing.T) {
	s := newTestStager(t)
	file := writeTestFile(t, "abcdef")

	t.Run("position becomes an empty section", func(t *testing.T) {
		res, err := s.StageInsert(file, 3, "!!", Meta{})
		if err != nil {
			t.Fatalf("StageInsert() error = %v", err)
		}
		if res.Section.Start != 3 || res.Section.End != 3 {
			t.Errorf("Section = %+v, want [3,3)", res.Section)
		}
		if res.OriginalChars != 0 {
			t.Errorf("OriginalChars = %d, want 0", res.OriginalChars)
		}
		if res.Delta != 2 {
			t.Errorf("Delta = %d, want 2", res.Delta)
		}
	})

	t.Run("position at end of file appends", func(t *testing.T) {
		if _, err := s.StageInsert(file, 6, "tail", Meta{}); err != nil {
			t.Errorf("StageInsert() at length error = %v", err)
		}
	})

	t.Run("position beyond length rejected", func(t *testing.T) {
		_, err := s.StageInsert(file, 7, "x", Meta{})
		if code := errors.CodeOf(err); code != errors.InvalidInput {
			t.Errorf("code = %v, want %v", code, errors.InvalidInput)
		}
	})

	t.Run("negative position rejected", func(t *testing.T) {
		_, err := s.StageInsert(file, -1, "x", Meta{})
		if code := errors.CodeOf(err); code != errors.InvalidInput {
			t.Errorf("code = %v, want %v", code, errors.InvalidInput)
		}
	})
}

func TestStageDelete(t *testing.T) {
	s := newTestStager(t)
	file := writeTestFile(t, "abcdef")

	res, err := s.StageDelete(file, Section{Start: 2, End: 4}, Meta{})
	if err != nil {
		t.Fatalf("StageDelete() error = %v", err)
	}
	if res.OriginalChars != 2 || res.NewChars != 0 || res.Delta != -2 {
		t.Errorf("sizes = %d/%d/%d, want 2/0/-2", res.OriginalChars, res.NewChars, res.Delta)
	}

	preview, err := s.Preview(file, res.ChangeID)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if got := preview.Changes[0].Original; got != "cd" {
		t.Errorf("Original = %q, want %q", got, "cd")
	}
	if got := preview.Changes[0].Modified; got != "" {
		t.Errorf("Modified = %q, want empty", got)
	}
}

func TestStageBackups(t *testing.T) {
	t.Run("disabled leaves no backup", func(t *testing.T) {
		s := NewStager(StagerOptions{}, testLogger())
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 0, End: 1}, "x", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if res.BackupPath != "" {
			t.Errorf("BackupPath = %q, want empty", res.BackupPath)
		}
	})

	t.Run("backup lands next to the source", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 0, End: 1}, "x", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if got := filepath.Dir(res.BackupPath); got != filepath.Dir(file) {
			t.Errorf("backup dir = %q, want %q", got, filepath.Dir(file))
		}
	})

	t.Run("backup dir override", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "backups")
		s := NewStager(StagerOptions{BackupsEnabled: true, BackupDir: dir}, testLogger())
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 0, End: 1}, "x", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if got := filepath.Dir(res.BackupPath); got != dir {
			t.Errorf("backup dir = %q, want %q", got, dir)
		}
	})

	t.Run("repeated stages never share a backup", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		first, err := s.StageModify(file, Section{Start: 0, End: 1}, "x", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		second, err := s.StageModify(file, Section{Start: 1, End: 2}, "y", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if first.BackupPath == second.BackupPath {
			t.Errorf("backup paths collide: %q", first.BackupPath)
		}
		if _, err := os.Stat(first.BackupPath); err != nil {
			t.Errorf("first backup missing: %v", err)
		}
		if _, err := os.Stat(second.BackupPath); err != nil {
			t.Errorf("second backup missing: %v", err)
		}
	})
}

func TestPreview(t *testing.T) {
	t.Run("lists pending sorted by start", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		if _, err := s.StageModify(file, Section{Start: 4, End: 5}, "Y", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if _, err := s.StageModify(file, Section{Start: 0, End: 1}, "X", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		preview, err := s.Preview(file, "")
		if err != nil {
			t.Fatalf("Preview() error = %v", err)
		}
		if preview.TotalChanges != 2 {
			t.Fatalf("TotalChanges = %d, want 2", preview.TotalChanges)
		}
		if preview.Changes[0].Section.Start != 0 || preview.Changes[1].Section.Start != 4 {
			t.Errorf("entries not sorted by start: %+v", preview.Changes)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		_, err := s.Preview(file, "deadbeef0000")
		if code := errors.CodeOf(err); code != errors.NotFound {
			t.Errorf("code = %v, want %v", code, errors.NotFound)
		}
	})

	t.Run("id for another file is not found", func(t *testing.T) {
		s := newTestStager(t)
		fileA := writeTestFile(t, "abcdef")
		fileB := writeTestFile(t, "ghijkl")

		res, err := s.StageModify(fileA, Section{Start: 0, End: 1}, "x", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		_, err = s.Preview(fileB, res.ChangeID)
		if code := errors.CodeOf(err); code != errors.NotFound {
			t.Errorf("code = %v, want %v", code, errors.NotFound)
		}
	})

	t.Run("only the requested file is listed", func(t *testing.T) {
		s := newTestStager(t)
		fileA := writeTestFile(t, "abcdef")
		fileB := writeTestFile(t, "ghijkl")

		if _, err := s.StageModify(fileA, Section{Start: 0, End: 1}, "x", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		preview, err := s.Preview(fileB, "")
		if err != nil {
			t.Fatalf("Preview() error = %v", err)
		}
		if preview.TotalChanges != 0 {
			t.Errorf("TotalChanges = %d, want 0", preview.TotalChanges)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("overlapping sections conflict", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		first, err := s.StageModify(file, Section{Start: 0, End: 2}, "AA", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		second, err := s.StageModify(file, Section{Start: 1, End: 3}, "BB", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		report := s.Validate(file)
		if report.Valid {
			t.Error("Valid = true, want false")
		}
		if len(report.Conflicts) != 1 {
			t.Fatalf("Conflicts = %d, want 1", len(report.Conflicts))
		}
		pair := report.Conflicts[0]
		if pair.FirstID != first.ChangeID || pair.SecondID != second.ChangeID {
			t.Errorf("conflict pair = %s/%s, want %s/%s",
				pair.FirstID, pair.SecondID, first.ChangeID, second.ChangeID)
		}
	})

	t.Run("touching boundaries do not conflict", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		if _, err := s.StageModify(file, Section{Start: 0, End: 2}, "AA", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if _, err := s.StageModify(file, Section{Start: 2, End: 4}, "BB", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		report := s.Validate(file)
		if !report.Valid {
			t.Errorf("Valid = false, want true; conflicts: %+v", report.Conflicts)
		}
	})

	t.Run("insert at a modify boundary does not conflict", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		if _, err := s.StageInsert(file, 1, "++", Meta{}); err != nil {
			t.Fatalf("StageInsert() error = %v", err)
		}
		if _, err := s.StageModify(file, Section{Start: 1, End: 3}, "BB", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		report := s.Validate(file)
		if !report.Valid {
			t.Errorf("Valid = false, want true; conflicts: %+v", report.Conflicts)
		}
	})

	t.Run("adjacent pairs only", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "0123456789")

		if _, err := s.StageModify(file, Section{Start: 0, End: 5}, "AAAAA", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if _, err := s.StageModify(file, Section{Start: 2, End: 3}, "B", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}
		if _, err := s.StageModify(file, Section{Start: 4, End: 8}, "CCCC", Meta{}); err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		report := s.Validate(file)
		if report.Valid {
			t.Error("Valid = true, want false")
		}
		// The walk compares sorted neighbors, so [0,5) vs [4,8) is shadowed
		// by the pair in between; validity is still exact.
		if len(report.Conflicts) != 1 {
			t.Errorf("Conflicts = %d, want 1", len(report.Conflicts))
		}
	})

	t.Run("empty modify content warns but stays valid", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		res, err := s.StageModify(file, Section{Start: 0, End: 2}, "", Meta{})
		if err != nil {
			t.Fatalf("StageModify() error = %v", err)
		}

		report := s.Validate(file)
		if !report.Valid {
			t.Error("Valid = false, want true")
		}
		var warned bool
		for _, check := range report.Results {
			if check.ChangeID == res.ChangeID && check.Level == CheckWarning {
				warned = true
			}
		}
		if !warned {
			t.Errorf("no warning for empty modify content: %+v", report.Results)
		}
	})

	t.Run("no pending records is valid", func(t *testing.T) {
		s := newTestStager(t)
		file := writeTestFile(t, "abcdef")

		report := s.Validate(file)
		if !report.Valid || report.TotalChecked != 0 {
			t.Errorf("report = %+v, want valid with 0 checked", report)
		}
	})
}

func TestPendingFiles(t *testing.T) {
	s := newTestStager(t)
	fileA := writeTestFile(t, "abcdef")
	fileB := writeTestFile(t, "ghijkl")

	if _, err := s.StageModify(fileA, Section{Start: 0, End: 1}, "x", Meta{}); err != nil {
		t.Fatalf("StageModify() error = %v", err)
	}
	if _, err := s.StageModify(fileA, Section{Start: 2, End: 3}, "y", Meta{}); err != nil {
		t.Fatalf("StageModify() error = %v", err)
	}
	if _, err := s.StageDelete(fileB, Section{Start: 0, End: 2}, Meta{}); err != nil {
		t.Fatalf("StageDelete() error = %v", err)
	}

	files := s.PendingFiles()
	if len(files) != 2 {
		t.Errorf("PendingFiles() = %v, want 2 entries", files)
	}
	if got := s.PendingCount(); got != 3 {
		t.Errorf("PendingCount() = %d, want 3", got)
	}
}

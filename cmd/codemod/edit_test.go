package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"codemod/internal/changes"
	"codemod/internal/config"
	"codemod/internal/journal"
	"codemod/internal/slogutil"
)

// editWorkspace points the edit globals at a fresh workspace and restores
// them afterwards.
func editWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	oldWorkspace, oldFormat := workspaceFlag, editFormat
	oldDesc, oldAuthor := editDescription, editAuthor
	workspaceFlag = root
	editFormat = "json"
	editDescription = ""
	editAuthor = ""
	t.Cleanup(func() {
		workspaceFlag = oldWorkspace
		editFormat = oldFormat
		editDescription = oldDesc
		editAuthor = oldAuthor
	})
	return root
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	return string(data), runErr
}

func writeEditFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunEditModify(t *testing.T) {
	root := editWorkspace(t)
	path := writeEditFile(t, root, "main.txt", "hello world")

	output, err := captureStdout(t, func() error {
		return runEdit("main.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageModify(file, changes.Section{Start: 0, End: 5}, "goodbye", meta)
		})
	})
	if err != nil {
		t.Fatalf("runEdit() error = %v", err)
	}

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read file: %v", readErr)
	}
	if string(content) != "goodbye world" {
		t.Errorf("file content = %q, want %q", content, "goodbye world")
	}

	var report EditReport
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if report.File != "main.txt" {
		t.Errorf("report file = %q, want %q", report.File, "main.txt")
	}
	if report.Stage == nil || report.Stage.ChangeID == "" {
		t.Fatal("report should carry the staged change")
	}
	if report.Apply == nil || report.Apply.AppliedChanges != 1 {
		t.Errorf("report should record one applied change: %+v", report.Apply)
	}
}

func TestRunEditInsertAndDelete(t *testing.T) {
	root := editWorkspace(t)
	path := writeEditFile(t, root, "notes.txt", "abc")

	_, err := captureStdout(t, func() error {
		return runEdit("notes.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageInsert(file, 1, "XY", meta)
		})
	})
	if err != nil {
		t.Fatalf("insert error = %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "aXYbc" {
		t.Errorf("after insert: %q, want %q", content, "aXYbc")
	}

	_, err = captureStdout(t, func() error {
		return runEdit("notes.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageDelete(file, changes.Section{Start: 0, End: 3}, meta)
		})
	})
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	content, _ = os.ReadFile(path)
	if string(content) != "bc" {
		t.Errorf("after delete: %q, want %q", content, "bc")
	}
}

func TestRunEditJournalsTheChange(t *testing.T) {
	root := editWorkspace(t)
	writeEditFile(t, root, "main.txt", "hello world")

	editAuthor = "dev"
	editDescription = "greeting swap"

	_, err := captureStdout(t, func() error {
		return runEdit("main.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageModify(file, changes.Section{Start: 0, End: 5}, "goodbye", meta)
		})
	})
	if err != nil {
		t.Fatalf("runEdit() error = %v", err)
	}

	store, err := journal.OpenStore(journalDBPath(root, config.DefaultConfig()), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	resp, err := store.List(journal.ListOptions{})
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", resp.TotalCount)
	}
	if resp.Events[0].Action != journal.ActionApplied || resp.Events[1].Action != journal.ActionStaged {
		t.Errorf("actions = [%s, %s], want [applied, staged]",
			resp.Events[0].Action, resp.Events[1].Action)
	}
	for _, ev := range resp.Events {
		if ev.File != "main.txt" {
			t.Errorf("event file = %q, want %q", ev.File, "main.txt")
		}
		if ev.Author != "dev" || ev.Description != "greeting swap" {
			t.Errorf("attribution lost: %+v", ev)
		}
	}
}

func TestRunEditRejectsBadSection(t *testing.T) {
	root := editWorkspace(t)
	path := writeEditFile(t, root, "main.txt", "hello world")

	_, err := captureStdout(t, func() error {
		return runEdit("main.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageModify(file, changes.Section{Start: 8, End: 4}, "x", meta)
		})
	})
	if err == nil {
		t.Fatal("expected error for inverted section")
	}

	content, _ := os.ReadFile(path)
	if string(content) != "hello world" {
		t.Errorf("file must be untouched, got %q", content)
	}
}

func TestRunEditMissingFile(t *testing.T) {
	editWorkspace(t)

	_, err := captureStdout(t, func() error {
		return runEdit("absent.txt", func(st *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return st.StageModify(file, changes.Section{Start: 0, End: 1}, "x", meta)
		})
	})
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

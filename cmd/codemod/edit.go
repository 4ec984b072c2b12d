package main

import (
	"fmt"
	"log/slog"

	"codemod/internal/changes"
	"codemod/internal/config"
	"codemod/internal/journal"

	"github.com/spf13/cobra"
)

var (
	editStart       int
	editEnd         int
	editPosition    int
	editContent     string
	editDescription string
	editAuthor      string
	editFormat      string
)

// EditReport is the printed outcome of one edit invocation.
type EditReport struct {
	File       string                    `json:"file"`
	Stage      *changes.StageResult      `json:"stage"`
	Validation *changes.ValidationReport `json:"validation"`
	Apply      *changes.ApplyResult      `json:"apply,omitempty"`
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Stage and apply one change in a single shot",
	Long: `Stage one change, validate it, and apply it immediately.

Sections are half-open [start,end) character offsets; insert takes a single
position. Validation failures refuse the edit and leave the file untouched.
The applied change lands in the journal when journaling is enabled.

Examples:
  codemod edit modify main.go --start 10 --end 25 --content "newName"
  codemod edit insert main.go --position 0 --content "// header"
  codemod edit delete main.go --start 100 --end 140`,
}

var editModifyCmd = &cobra.Command{
	Use:   "modify <file>",
	Short: "Replace the text in a [start,end) section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(stager *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return stager.StageModify(file, changes.Section{Start: editStart, End: editEnd}, editContent, meta)
		})
	},
}

var editInsertCmd = &cobra.Command{
	Use:   "insert <file>",
	Short: "Insert text at a character position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(stager *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return stager.StageInsert(file, editPosition, editContent, meta)
		})
	},
}

var editDeleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Remove the text in a [start,end) section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(stager *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error) {
			return stager.StageDelete(file, changes.Section{Start: editStart, End: editEnd}, meta)
		})
	},
}

func init() {
	editModifyCmd.Flags().IntVar(&editStart, "start", 0, "Section start offset (inclusive)")
	editModifyCmd.Flags().IntVar(&editEnd, "end", 0, "Section end offset (exclusive)")
	editModifyCmd.Flags().StringVar(&editContent, "content", "", "Replacement text")
	editModifyCmd.MarkFlagRequired("start")
	editModifyCmd.MarkFlagRequired("end")
	editModifyCmd.MarkFlagRequired("content")

	editInsertCmd.Flags().IntVar(&editPosition, "position", 0, "Insertion offset")
	editInsertCmd.Flags().StringVar(&editContent, "content", "", "Text to insert")
	editInsertCmd.MarkFlagRequired("position")
	editInsertCmd.MarkFlagRequired("content")

	editDeleteCmd.Flags().IntVar(&editStart, "start", 0, "Section start offset (inclusive)")
	editDeleteCmd.Flags().IntVar(&editEnd, "end", 0, "Section end offset (exclusive)")
	editDeleteCmd.MarkFlagRequired("start")
	editDeleteCmd.MarkFlagRequired("end")

	for _, sub := range []*cobra.Command{editModifyCmd, editInsertCmd, editDeleteCmd} {
		sub.Flags().StringVar(&editDescription, "description", "", "What the change does")
		sub.Flags().StringVar(&editAuthor, "author", "", "Who is making the change")
		sub.Flags().StringVar(&editFormat, "format", "human", "Output format: json or human")
		editCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(editCmd)
}

type stageFunc func(stager *changes.Stager, file string, meta changes.Meta) (*changes.StageResult, error)

func runEdit(rawFile string, stage stageFunc) error {
	root := mustGetWorkspaceRoot()
	logger := newCLILogger()
	cfg := loadWorkspaceConfig(root, logger)
	stager, applier := getEngine(cfg, logger)

	abs := resolveTargetFile(root, rawFile)
	rel := displayPath(root, abs)
	meta := changes.Meta{Description: editDescription, Author: editAuthor}

	staged, err := stage(stager, abs, meta)
	if err != nil {
		return err
	}
	staged.File = rel
	report := &EditReport{File: rel, Stage: staged}

	validation := stager.Validate(abs)
	validation.File = rel
	report.Validation = validation
	if !validation.Valid {
		if output, ferr := FormatResponse(report, OutputFormat(editFormat)); ferr == nil {
			fmt.Println(output)
		}
		return fmt.Errorf("change %s failed validation; nothing applied", staged.ChangeID)
	}

	applied, err := applier.Apply(abs, []string{staged.ChangeID})
	if err != nil {
		return err
	}
	applied.File = rel
	report.Apply = applied

	recordEditJournal(root, cfg, logger, rel, staged, meta)

	output, err := FormatResponse(report, OutputFormat(editFormat))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// recordEditJournal writes the staged and applied events for a one-shot edit.
// Journal faults are logged, never surfaced: the file write already happened.
func recordEditJournal(root string, cfg *config.Config, logger *slog.Logger, rel string, staged *changes.StageResult, meta changes.Meta) {
	if !cfg.Journal.Enabled {
		return
	}
	store, err := journal.OpenStore(journalDBPath(root, cfg), logger)
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		return
	}
	defer store.Close()

	ev := journal.Event{
		ChangeID:      staged.ChangeID,
		File:          rel,
		Kind:          string(staged.Kind),
		Start:         staged.Section.Start,
		End:           staged.Section.End,
		OriginalChars: staged.OriginalChars,
		NewChars:      staged.NewChars,
		Description:   meta.Description,
		Author:        meta.Author,
	}
	if err := store.RecordStaged(ev); err != nil {
		logger.Warn("journal write failed", "changeId", staged.ChangeID, "error", err)
	}
	if err := store.RecordApplied(ev); err != nil {
		logger.Warn("journal write failed", "changeId", staged.ChangeID, "error", err)
	}
}

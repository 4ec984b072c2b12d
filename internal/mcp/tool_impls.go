package mcp

import (
	"codemod/internal/changes"
	"codemod/internal/envelope"
	cmerrors "codemod/internal/errors"
	"codemod/internal/journal"
	"codemod/internal/paths"
)

// The engine is keyed by absolute paths; every report that leaves a tool
// is rewritten to the workspace-relative path the caller speaks in, and
// journal entries record the same form.

func (s *Server) toolStageModify(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	section, err := sectionParam(params, "section")
	if err != nil {
		return nil, err
	}
	content, ok := params["content"].(string)
	if !ok {
		return nil, cmerrors.NewInvalidInputError("content", "required string parameter")
	}

	abs, rel := s.resolveFile(file)
	meta := metaParam(params)
	result, err := s.stager.StageModify(abs, section, content, meta)
	if err != nil {
		return nil, err
	}
	result.File = rel
	s.journalStaged(rel, result, meta)
	return s.stageEnvelope(result), nil
}

func (s *Server) toolStageInsert(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	position, err := requiredInt(params, "position")
	if err != nil {
		return nil, err
	}
	content, ok := params["content"].(string)
	if !ok {
		return nil, cmerrors.NewInvalidInputError("content", "required string parameter")
	}

	abs, rel := s.resolveFile(file)
	meta := metaParam(params)
	result, err := s.stager.StageInsert(abs, position, content, meta)
	if err != nil {
		return nil, err
	}
	result.File = rel
	s.journalStaged(rel, result, meta)
	return s.stageEnvelope(result), nil
}

func (s *Server) toolStageDelete(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	section, err := sectionParam(params, "section")
	if err != nil {
		return nil, err
	}

	abs, rel := s.resolveFile(file)
	meta := metaParam(params)
	result, err := s.stager.StageDelete(abs, section, meta)
	if err != nil {
		return nil, err
	}
	result.File = rel
	s.journalStaged(rel, result, meta)
	return s.stageEnvelope(result), nil
}

// stageEnvelope wraps a stage result and points the caller at the
// validate/apply pair that completes the workflow.
func (s *Server) stageEnvelope(result *changes.StageResult) *envelope.Response {
	fileParams := map[string]interface{}{"filePath": result.File}
	return envelope.New().
		Data(result).
		WithConfidence(1.0).
		Suggest("validateChanges", fileParams, "check the staged change for conflicts before applying").
		Suggest("applyChanges", fileParams, "write the staged changes to the file").
		Build()
}

func (s *Server) toolPreviewChanges(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	result, err := s.stager.Preview(abs, stringParam(params, "changeId"))
	if err != nil {
		return nil, err
	}
	result.File = rel
	return envelope.Operational(result), nil
}

func (s *Server) toolValidateChanges(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	report := s.stager.Validate(abs)
	report.File = rel

	builder := envelope.New().Data(report).WithConfidence(1.0)
	if len(report.Conflicts) > 0 {
		builder.Suggest("previewChanges",
			map[string]interface{}{"filePath": rel},
			"inspect the overlapping sections before choosing which change to apply")
	}
	return builder.Build(), nil
}

func (s *Server) toolApplyChanges(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	result, err := s.applier.Apply(abs, stringSliceParam(params, "changeIds"))
	if err != nil {
		return nil, err
	}
	result.File = rel
	s.journalBatch(journal.ActionApplied, rel, result.ChangeIDs, s.appliedSummaries(abs))
	return envelope.Operational(result), nil
}

func (s *Server) toolRevertChanges(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	// Revert drops the records, so their summaries are captured first.
	summaries := s.appliedSummaries(abs)
	result, err := s.applier.Revert(abs, stringSliceParam(params, "changeIds"))
	if err != nil {
		return nil, err
	}
	result.File = rel
	s.journalBatch(journal.ActionReverted, rel, result.ChangeIDs, summaries)
	return envelope.Operational(result), nil
}

func (s *Server) toolGetChangeStatus(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	report := s.applier.Status(abs)
	report.File = rel
	return envelope.Operational(report), nil
}

func (s *Server) toolGetChangeHistory(params map[string]interface{}) (*envelope.Response, error) {
	file, err := requiredString(params, "filePath")
	if err != nil {
		return nil, err
	}
	abs, rel := s.resolveFile(file)

	report := s.applier.History(abs, intParam(params, "limit", s.cfg.History.DefaultLimit))
	report.File = rel
	return envelope.New().
		Data(report).
		WithConfidence(1.0).
		WithTruncation(len(report.Entries) < report.TotalChanges,
			len(report.Entries), report.TotalChanges,
			"entry limit reached; raise limit for older entries").
		Build(), nil
}

func (s *Server) toolGetStatus(params map[string]interface{}) (*envelope.Response, error) {
	return envelope.Operational(s.statusSnapshot()), nil
}

func (s *Server) toolGetJournal(params map[string]interface{}) (*envelope.Response, error) {
	if s.journal == nil {
		return nil, cmerrors.NewInvalidInputError("journal", "journaling is disabled for this workspace")
	}
	action := stringParam(params, "action")
	switch action {
	case "", string(journal.ActionStaged), string(journal.ActionApplied), string(journal.ActionReverted):
	default:
		return nil, cmerrors.NewInvalidInputError("action", "must be staged, applied, or reverted")
	}

	opts := journal.ListOptions{
		Action: journal.Action(action),
		Limit:  intParam(params, "limit", 0),
	}
	if file := stringParam(params, "filePath"); file != "" {
		_, opts.File = s.resolveFile(file)
	}

	resp, err := s.journal.List(opts)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(resp).
		WithConfidence(1.0).
		WithTruncation(len(resp.Events) < resp.TotalCount,
			len(resp.Events), resp.TotalCount,
			"page limit reached; raise limit or filter by filePath").
		Build(), nil
}

// serverStatus is the getStatus payload, also served as codemod://status.
type serverStatus struct {
	Workspace      string         `json:"workspace"`
	Version        string         `json:"version"`
	PendingCount   int            `json:"pendingCount"`
	AppliedCount   int            `json:"appliedCount"`
	PendingFiles   []string       `json:"pendingFiles"`
	BackupsEnabled bool           `json:"backupsEnabled"`
	Journal        *journalStatus `json:"journal,omitempty"`
}

type journalStatus struct {
	Path           string                 `json:"path"`
	EventsByAction map[journal.Action]int `json:"eventsByAction,omitempty"`
}

func (s *Server) statusSnapshot() *serverStatus {
	files := s.stager.PendingFiles()
	relFiles := make([]string, 0, len(files))
	for _, f := range files {
		relFiles = append(relFiles, s.displayPath(f))
	}

	status := &serverStatus{
		Workspace:      s.workspace,
		Version:        s.version,
		PendingCount:   s.stager.PendingCount(),
		AppliedCount:   s.applier.AppliedCount(),
		PendingFiles:   relFiles,
		BackupsEnabled: s.cfg.Backup.Enabled,
	}
	if s.journal != nil {
		js := &journalStatus{Path: s.journal.Path()}
		counts, err := s.journal.CountByAction()
		if err != nil {
			s.logger.Warn("journal count failed", "error", err)
		} else {
			js.EventsByAction = counts
		}
		status.Journal = js
	}
	return status
}

// displayPath converts an engine file key back to workspace-relative form.
func (s *Server) displayPath(abs string) string {
	rel, err := paths.CanonicalizePath(abs, s.workspace)
	if err != nil {
		return paths.NormalizePath(abs)
	}
	return rel
}

// journalStaged records a stage event. Journal faults are logged, never
// surfaced: the in-memory engine stays authoritative.
func (s *Server) journalStaged(rel string, result *changes.StageResult, meta changes.Meta) {
	if s.journal == nil {
		return
	}
	err := s.journal.RecordStaged(journal.Event{
		ChangeID:      result.ChangeID,
		File:          rel,
		Kind:          string(result.Kind),
		Start:         result.Section.Start,
		End:           result.Section.End,
		OriginalChars: result.OriginalChars,
		NewChars:      result.NewChars,
		Description:   meta.Description,
		Author:        meta.Author,
	})
	if err != nil {
		s.logger.Warn("journal write failed",
			"action", journal.ActionStaged,
			"changeId", result.ChangeID,
			"error", err)
	}
}

// journalBatch records one apply or revert event per change id, drawing
// section and size details from the captured status summaries.
func (s *Server) journalBatch(action journal.Action, rel string, ids []string, summaries map[string]changes.Summary) {
	if s.journal == nil {
		return
	}
	for _, id := range ids {
		sum, ok := summaries[id]
		if !ok {
			continue
		}
		ev := journal.Event{
			ChangeID:      id,
			File:          rel,
			Kind:          string(sum.Kind),
			Start:         sum.Section.Start,
			End:           sum.Section.End,
			OriginalChars: sum.OriginalChars,
			NewChars:      sum.NewChars,
			Description:   sum.Description,
			Author:        sum.Author,
		}
		var err error
		if action == journal.ActionApplied {
			err = s.journal.RecordApplied(ev)
		} else {
			err = s.journal.RecordReverted(ev)
		}
		if err != nil {
			s.logger.Warn("journal write failed",
				"action", action,
				"changeId", id,
				"error", err)
		}
	}
}

// appliedSummaries indexes a file's applied changes by id.
func (s *Server) appliedSummaries(abs string) map[string]changes.Summary {
	report := s.applier.Status(abs)
	out := make(map[string]changes.Summary, len(report.Applied))
	for _, sum := range report.Applied {
		out[sum.ChangeID] = sum
	}
	return out
}

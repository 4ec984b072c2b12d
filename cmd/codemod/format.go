package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"codemod/internal/analyzer"
	"codemod/internal/export"
	"codemod/internal/journal"
	"codemod/internal/patterns"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a command result according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the result as indented JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman renders known result types as text and falls back to JSON for
// everything else.
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *EditReport:
		return formatEditHuman(v), nil
	case *patterns.Result:
		return formatSearchHuman(v), nil
	case *analyzer.StructureReport:
		return formatStructureHuman(v), nil
	case *analyzer.TechnologyReport:
		return formatTechnologiesHuman(v), nil
	case *analyzer.FileMetricsReport:
		return formatMetricsHuman(v), nil
	case *journal.ListResponse:
		return formatJournalHuman(v), nil
	case *export.Result:
		return formatExportHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatEditHuman(r *EditReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s\n", r.Stage.Kind, r.File))
	b.WriteString(fmt.Sprintf("  change:  %s\n", r.Stage.ChangeID))
	b.WriteString(fmt.Sprintf("  section: [%d,%d)\n", r.Stage.Section.Start, r.Stage.Section.End))
	b.WriteString(fmt.Sprintf("  chars:   %d -> %d (delta %+d)\n",
		r.Stage.OriginalChars, r.Stage.NewChars, r.Stage.Delta))
	if r.Stage.BackupPath != "" {
		b.WriteString(fmt.Sprintf("  backup:  %s\n", r.Stage.BackupPath))
	}

	if r.Validation != nil && !r.Validation.Valid {
		b.WriteString(fmt.Sprintf("\nConflicts (%d):\n", len(r.Validation.Conflicts)))
		for _, c := range r.Validation.Conflicts {
			b.WriteString(fmt.Sprintf("  %s [%d,%d) overlaps %s [%d,%d)\n",
				c.FirstID, c.FirstSection.Start, c.FirstSection.End,
				c.SecondID, c.SecondSection.Start, c.SecondSection.End))
		}
		b.WriteString("\nNothing applied.\n")
		return b.String()
	}

	if r.Apply != nil {
		b.WriteString(fmt.Sprintf("\nApplied. %d chars written.\n", r.Apply.CharsWritten))
	}
	return b.String()
}

func formatSearchHuman(r *patterns.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Found %d match(es) for %q in %d file(s)\n",
		len(r.Matches), r.Query, r.FilesScanned))

	if len(r.Matches) > 0 {
		b.WriteString("\n")
	}
	for _, m := range r.Matches {
		b.WriteString(fmt.Sprintf("  %s:%d:%d  [%s/%s]  %s\n",
			m.File, m.Line, m.Column, m.Kind, m.MatchedBy, m.Snippet))
	}

	if r.Truncated {
		b.WriteString("\nResults truncated. Narrow the path or raise --limit.\n")
	}
	return b.String()
}

func formatStructureHuman(r *analyzer.StructureReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Structure of %s\n", r.Root))
	b.WriteString(fmt.Sprintf("  %d dir(s), %d file(s), %s\n",
		r.Summary.TotalDirs, r.Summary.TotalFiles, formatBytes(r.Summary.TotalBytes)))

	if len(r.Summary.FileTypes) > 0 {
		exts := make([]string, 0, len(r.Summary.FileTypes))
		for ext := range r.Summary.FileTypes {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		b.WriteString("  types: ")
		parts := make([]string, 0, len(exts))
		for _, ext := range exts {
			parts = append(parts, fmt.Sprintf("%s (%d)", ext, r.Summary.FileTypes[ext]))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}

	if len(r.Directories) > 0 {
		b.WriteString("\nDirectories:\n")
		for _, d := range r.Directories {
			b.WriteString(fmt.Sprintf("  %s/\n", d.Path))
		}
	}
	if len(r.Files) > 0 {
		b.WriteString("\nFiles:\n")
		for _, f := range r.Files {
			b.WriteString(fmt.Sprintf("  %-40s %10s\n", f.Path, formatBytes(f.Size)))
		}
	}

	if r.Truncated {
		b.WriteString("\nListing truncated. Narrow the path or lower --max-depth.\n")
	}
	return b.String()
}

func formatTechnologiesHuman(r *analyzer.TechnologyReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Technologies in %s\n", r.Root))
	if len(r.Technologies) == 0 {
		b.WriteString("  none detected\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, t := range r.Technologies {
		b.WriteString(fmt.Sprintf("  %-16s %-12s %s\n", t.Name, t.Category, t.Evidence))
		if t.Detail != "" {
			b.WriteString(fmt.Sprintf("  %-16s %-12s %s\n", "", "", t.Detail))
		}
	}
	return b.String()
}

func formatMetricsHuman(r *analyzer.FileMetricsReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s (%s)\n", r.File, r.Language))
	b.WriteString(fmt.Sprintf("  lines: %d total, %d code, %d comment, %d blank\n",
		r.Lines.Total, r.Lines.Code, r.Lines.Comment, r.Lines.Blank))
	b.WriteString(fmt.Sprintf("  chars: %d, bytes: %s\n", r.Characters, formatBytes(r.Bytes)))
	return b.String()
}

func formatJournalHuman(r *journal.ListResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d event(s), showing %d\n", r.TotalCount, len(r.Events)))
	if len(r.Events) > 0 {
		b.WriteString("\n")
	}
	for _, ev := range r.Events {
		b.WriteString(fmt.Sprintf("  [%s]  %s  %s  %s [%d,%d)  %s\n",
			ev.Action, ev.ChangeID, ev.File, ev.Kind, ev.Start, ev.End,
			ev.RecordedAt.Format("2006-01-02 15:04:05")))
		if ev.Description != "" || ev.Author != "" {
			b.WriteString(fmt.Sprintf("      %s", ev.Description))
			if ev.Author != "" {
				b.WriteString(fmt.Sprintf(" (%s)", ev.Author))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatExportHuman(r *export.Result) string {
	suffix := ""
	if r.Compressed {
		suffix = ", gzip"
	}
	return fmt.Sprintf("Exported %d event(s) to %s (%s%s)\n",
		r.Events, r.Path, formatBytes(r.Bytes), suffix)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

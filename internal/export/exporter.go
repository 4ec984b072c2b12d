package export

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"codemod/internal/errors"
	"codemod/internal/journal"
	"codemod/internal/paths"
)

// listPageSize matches the journal store's maximum page size.
const listPageSize = 100

// Exporter snapshots the change journal to a file.
type Exporter struct {
	workspace string
	store     *journal.Store
	logger    *slog.Logger
}

// NewExporter creates an exporter for one workspace and its journal.
func NewExporter(workspace string, store *journal.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		workspace: workspace,
		store:     store,
		logger:    logger,
	}
}

// Export writes a snapshot of journal events to opts.OutPath. Events are
// written oldest first; opts.Limit keeps the most recent ones. The output is
// gzip-compressed when opts.Gzip is set or OutPath ends in ".gz".
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	if opts.OutPath == "" {
		return nil, errors.NewInvalidInputError("outPath", "must not be empty")
	}
	if opts.Limit < 0 {
		return nil, errors.NewInvalidInputError("limit", "must not be negative")
	}

	events, err := e.collectEvents(ctx, opts)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Metadata: Metadata{
			Workspace:  filepath.Base(e.workspace),
			Generated:  time.Now().UTC().Format(time.RFC3339),
			EventCount: len(events),
		},
		Events: events,
	}

	outPath := opts.OutPath
	if !filepath.IsAbs(outPath) {
		outPath = paths.JoinWorkspacePath(e.workspace, outPath)
	}
	compressed := opts.Gzip || strings.HasSuffix(outPath, ".gz")

	size, err := e.writeSnapshot(outPath, snapshot, compressed)
	if err != nil {
		return nil, err
	}

	e.logger.Info("exported journal snapshot",
		"path", outPath,
		"events", len(events),
		"bytes", size,
		"compressed", compressed)

	return &Result{
		Path:       outPath,
		Events:     len(events),
		Bytes:      size,
		Compressed: compressed,
	}, nil
}

// collectEvents pages through the journal. The store returns newest first;
// the collected slice is reversed so the snapshot reads chronologically.
func (e *Exporter) collectEvents(ctx context.Context, opts Options) ([]journal.Event, error) {
	events := []journal.Event{}
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		limit := listPageSize
		if opts.Limit > 0 {
			remaining := opts.Limit - len(events)
			if remaining <= 0 {
				break
			}
			if remaining < limit {
				limit = remaining
			}
		}

		resp, err := e.store.List(journal.ListOptions{
			File:   opts.File,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}

		events = append(events, resp.Events...)
		offset += len(resp.Events)
		if len(resp.Events) < limit || offset >= resp.TotalCount {
			break
		}
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func (e *Exporter) writeSnapshot(outPath string, snapshot *Snapshot, compressed bool) (int64, error) {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, errors.NewIOFailureError("create export directory", err)
		}
	}

	file, err := os.Create(outPath)
	if err != nil {
		return 0, errors.NewIOFailureError("create export file", err)
	}

	var w io.Writer = file
	var gz *gzip.Writer
	if compressed {
		gz = gzip.NewWriter(file)
		w = gz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		file.Close()
		os.Remove(outPath)
		return 0, errors.NewIOFailureError("write export", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			file.Close()
			os.Remove(outPath)
			return 0, errors.NewIOFailureError("flush export", err)
		}
	}
	if err := file.Close(); err != nil {
		os.Remove(outPath)
		return 0, errors.NewIOFailureError("close export file", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, errors.NewIOFailureError("stat export file", err)
	}
	return info.Size(), nil
}

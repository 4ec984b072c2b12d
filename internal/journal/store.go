package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Store wraps the SQLite connection holding the event journal.
type Store struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// OpenStore opens (or creates) the journal database at dbPath and prepares
// the schema on first use.
func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	_, statErr := os.Stat(dbPath)
	freshDB := os.IsNotExist(statErr)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	store := &Store{
		conn:   conn,
		path:   dbPath,
		logger: logger,
	}

	if freshDB {
		if err := store.initializeSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
		}
		logger.Debug("created journal database", "path", dbPath)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		change_id TEXT NOT NULL,
		file TEXT NOT NULL,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		original_chars INTEGER NOT NULL DEFAULT 0,
		new_chars INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		author TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_change_id ON events(change_id);
	CREATE INDEX IF NOT EXISTS idx_events_file ON events(file);
	CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
	CREATE INDEX IF NOT EXISTS idx_events_recorded_at ON events(recorded_at);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordStaged appends a staged event for ev's change.
func (s *Store) RecordStaged(ev Event) error {
	ev.Action = ActionStaged
	return s.record(ev)
}

// RecordApplied appends an applied event for ev's change.
func (s *Store) RecordApplied(ev Event) error {
	ev.Action = ActionApplied
	return s.record(ev)
}

// RecordReverted appends a reverted event for ev's change.
func (s *Store) RecordReverted(ev Event) error {
	ev.Action = ActionReverted
	return s.record(ev)
}

func (s *Store) record(ev Event) error {
	if ev.ChangeID == "" {
		return fmt.Errorf("event change id is required")
	}
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO events (
		change_id, file, kind, action, start_offset, end_offset,
		original_chars, new_chars, description, author, recorded_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn.Exec(query,
		ev.ChangeID,
		ev.File,
		ev.Kind,
		string(ev.Action),
		ev.Start,
		ev.End,
		ev.OriginalChars,
		ev.NewChars,
		nullString(ev.Description),
		nullString(ev.Author),
		ev.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	s.logger.Debug("recorded journal event",
		"changeId", ev.ChangeID,
		"action", ev.Action,
		"file", ev.File)

	return nil
}

// List returns events newest first, filtered by opts.
func (s *Store) List(opts ListOptions) (*ListResponse, error) {
	var conditions []string
	var args []interface{}

	if opts.File != "" {
		conditions = append(conditions, "file = ?")
		args = append(args, opts.File)
	}
	if opts.ChangeID != "" {
		conditions = append(conditions, "change_id = ?")
		args = append(args, opts.ChangeID)
	}
	if opts.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(opts.Action))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events %s", whereClause)
	var totalCount int
	if err := s.conn.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
	SELECT id, change_id, file, kind, action, start_offset, end_offset,
	       original_chars, new_chars, description, author, recorded_at
	FROM events
	%s
	ORDER BY id DESC
	LIMIT ? OFFSET ?
	`, whereClause)

	args = append(args, limit, offset)
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return &ListResponse{Events: events, TotalCount: totalCount}, nil
}

// CountByAction returns how many events exist per action.
func (s *Store) CountByAction() (map[Action]int, error) {
	rows, err := s.conn.Query("SELECT action, COUNT(*) FROM events GROUP BY action")
	if err != nil {
		return nil, fmt.Errorf("failed to count events by action: %w", err)
	}
	defer rows.Close()

	counts := make(map[Action]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		counts[Action(action)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action counts: %w", err)
	}

	return counts, nil
}

// Cleanup deletes events older than the retention window and returns how
// many rows were removed.
func (s *Store) Cleanup(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)

	result, err := s.conn.Exec("DELETE FROM events WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up events: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed events: %w", err)
	}

	if removed > 0 {
		s.logger.Info("cleaned up journal events", "removed", removed, "cutoff", cutoff)
	}

	return removed, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var ev Event
	var action, recordedAt string
	var description, author sql.NullString

	err := rows.Scan(
		&ev.ID,
		&ev.ChangeID,
		&ev.File,
		&ev.Kind,
		&action,
		&ev.Start,
		&ev.End,
		&ev.OriginalChars,
		&ev.NewChars,
		&description,
		&author,
		&recordedAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("failed to scan event: %w", err)
	}

	ev.Action = Action(action)
	if description.Valid {
		ev.Description = description.String
	}
	if author.Valid {
		ev.Author = author.String
	}
	if ts, err := time.Parse(time.RFC3339, recordedAt); err == nil {
		ev.RecordedAt = ts
	}

	return ev, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

/*
Package sqlite provides the SQLite-backed attendance ledger.

PURPOSE:
  Implements attendance.Store using SQLite. One table, unique on
  (user_id, date); no other files or external state.

UPSERT ENFORCEMENT:
  The uniqueness invariant lives in the PRIMARY KEY (user_id, date).
  Upsert uses INSERT ... ON CONFLICT DO UPDATE, so concurrent answers
  for the same user and day serialize at the constraint and the last
  writer wins. No duplicate row is ever possible.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time,
  better crash recovery.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of the driver. Recorder
  calls for different users at overlapping times are safe; same-key
  races resolve last-write-wins at the constraint.

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.

SEE ALSO:
  - attendance/store.go: The interface this implements
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/weekiatscis/GymBot/attendance"
)

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Attendance ledger: one fact per (user_id, date)
	CREATE TABLE IF NOT EXISTS attendance_facts (
		user_id     INTEGER NOT NULL,
		user_name   TEXT    NOT NULL,
		date        TEXT    NOT NULL,
		attended    INTEGER NOT NULL,
		recorded_at TEXT    NOT NULL,
		PRIMARY KEY (user_id, date)
	);

	-- Range scans for reports
	CREATE INDEX IF NOT EXISTS idx_facts_date
		ON attendance_facts(date);

	-- Recent-activity discovery for the known-users heuristic
	CREATE INDEX IF NOT EXISTS idx_facts_recorded_at
		ON attendance_facts(recorded_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE (attendance.Store interface)
// =============================================================================

// Upsert writes a fact, replacing any existing fact for the same
// (user_id, date). Atomic at the primary key.
func (s *Store) Upsert(ctx context.Context, fact attendance.AttendanceFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attendance_facts (user_id, user_name, date, attended, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			user_name   = excluded.user_name,
			attended    = excluded.attended,
			recorded_at = excluded.recorded_at
	`

	_, err := s.db.ExecContext(ctx, query,
		fact.UserID,
		fact.UserName,
		fact.Date.String(),
		boolToInt(fact.Attended),
		fact.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &attendance.StorageError{Op: "upsert", Err: err}
	}
	return nil
}

// QueryRange returns facts with date in [from, to] inclusive, ordered
// by (date, user_name).
func (s *Store) QueryRange(ctx context.Context, from, to attendance.CivilDate, onlyAttended bool) ([]attendance.AttendanceFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT user_id, user_name, date, attended, recorded_at
		FROM attendance_facts
		WHERE date >= ? AND date <= ?
	`
	args := []any{from.String(), to.String()}
	if onlyAttended {
		query += " AND attended = 1"
	}
	query += " ORDER BY date ASC, user_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &attendance.StorageError{Op: "query range", Err: err}
	}
	defer rows.Close()

	var facts []attendance.AttendanceFact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, &attendance.StorageError{Op: "query range", Err: err}
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, &attendance.StorageError{Op: "query range", Err: err}
	}
	return facts, nil
}

// RecentUserNames returns distinct names among the limit most-recently
// recorded facts, most-recent-first before deduplication.
func (s *Store) RecentUserNames(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// rowid breaks same-second recorded_at ties: later inserts win.
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_name
		FROM attendance_facts
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, &attendance.StorageError{Op: "recent user names", Err: err}
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &attendance.StorageError{Op: "recent user names", Err: err}
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &attendance.StorageError{Op: "recent user names", Err: err}
	}
	return names, nil
}

// TodayAttendees returns names with any fact for the exact date.
func (s *Store) TodayAttendees(ctx context.Context, date attendance.CivilDate) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_name
		FROM attendance_facts
		WHERE date = ?
		ORDER BY user_name ASC
	`, date.String())
	if err != nil {
		return nil, &attendance.StorageError{Op: "today attendees", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &attendance.StorageError{Op: "today attendees", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &attendance.StorageError{Op: "today attendees", Err: err}
	}
	return names, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanFact(rows *sql.Rows) (attendance.AttendanceFact, error) {
	var (
		fact       attendance.AttendanceFact
		dateStr    string
		attended   int
		recordedAt string
	)

	if err := rows.Scan(&fact.UserID, &fact.UserName, &dateStr, &attended, &recordedAt); err != nil {
		return fact, fmt.Errorf("failed to scan fact: %w", err)
	}

	date, err := attendance.ParseDate(dateStr)
	if err != nil {
		return fact, fmt.Errorf("corrupt date column: %w", err)
	}
	fact.Date = date
	fact.Attended = attended != 0

	t, err := time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return fact, fmt.Errorf("corrupt recorded_at column: %w", err)
	}
	fact.RecordedAt = t

	return fact, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

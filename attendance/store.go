/*
store.go - Persistence interface for the attendance ledger

PURPOSE:
  Defines the interface between the domain logic and the database.
  The Store holds exactly zero or one fact per (user_id, date) pair;
  Upsert is the serialization point that enforces it.

UPSERT CONTRACT:
  Upsert replaces any existing fact for the same (user_id, date)
  atomically. Concurrent upserts for the same key must never produce
  two rows; the last writer wins. This is what makes transport
  redelivery and same-day answer corrections safe.

QUERIES:
  All reporting derives from an inclusive date-range scan plus the
  distinct-recent-names recency heuristic. No secondary indexes beyond
  the uniqueness constraint are required at this scale.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - attendance/store: In-memory store for testing

SEE ALSO:
  - report.go: Consumes QueryRange/RecentUserNames/TodayAttendees
  - recorder.go: The only writer
*/
package attendance

import "context"

// Store handles persistence of attendance facts.
type Store interface {
	// Upsert writes a fact, replacing any existing fact for the same
	// (user_id, date). This is the ONLY write operation.
	Upsert(ctx context.Context, fact AttendanceFact) error

	// QueryRange returns facts with date in [from, to] inclusive,
	// ordered by (date ASC, user_name ASC). When onlyAttended is true,
	// facts with Attended=false are excluded. The read is stable and
	// restartable; no iterator state outlives the call.
	QueryRange(ctx context.Context, from, to CivilDate, onlyAttended bool) ([]AttendanceFact, error)

	// RecentUserNames returns the distinct user names among the limit
	// most-recently-recorded facts across all dates, most-recent-first
	// before deduplication.
	RecentUserNames(ctx context.Context, limit int) ([]string, error)

	// TodayAttendees returns the user names with any fact (attended or
	// not) recorded for the exact date, sorted ascending.
	TodayAttendees(ctx context.Context, date CivilDate) ([]string, error)
}

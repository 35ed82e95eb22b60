/*
types.go - Core data model for the attendance ledger

PURPOSE:
  Defines the AttendanceFact (the one stored record type), the
  AnswerEvent delivered by the message transport, and the Notifier
  interface through which all outbound messages leave the core.

DATA MODEL:
  One AttendanceFact per (user_id, date). A later answer for the same
  user and day overwrites the earlier one; no correction history is
  kept. RecordedAt is used only for recent-activity discovery, never
  for attendance logic.

SEE ALSO:
  - store.go: Persistence contract for facts
  - recorder.go: Turns AnswerEvents into facts
  - report.go: Read-only aggregations over facts
*/
package attendance

import (
	"context"
	"time"
)

// AttendanceFact is one stored record of whether a specific user attended
// on a specific civil date.
type AttendanceFact struct {
	UserID     int64     // stable transport identity, primary correlation key
	UserName   string    // display name at answer time; latest write wins
	Date       CivilDate // civil day the answer belongs to
	Attended   bool
	RecordedAt time.Time // UTC write instant; recency discovery only
}

// AnswerEvent is one poll answer as delivered by the transport.
// The transport does not deduplicate; the ledger upsert makes
// redelivery safe.
type AnswerEvent struct {
	EventID       string // transport correlation id, used in logs only
	UserID        int64
	UserName      string
	ChosenOptions []int // indices of the chosen poll options
}

// Notifier delivers outbound messages to the group's broadcast
// destination. The core never reads poll state back except through the
// AnswerEvent stream.
type Notifier interface {
	// IssuePoll sends a non-anonymous poll. The first option represents
	// affirmative attendance.
	IssuePoll(ctx context.Context, question string, options []string) error

	// SendText sends a plain text message.
	SendText(ctx context.Context, text string) error
}

/*
recorder.go - Normalizes answer events into ledger facts

PURPOSE:
  The Recorder is the only component that writes to the ledger. It
  validates the incoming AnswerEvent, maps the chosen option to the
  attended flag, stamps the civil day and the UTC write instant, and
  upserts the fact.

OPTION MAPPING:
  The poll has exactly two mutually exclusive options. Choosing the
  first (index 0) means attended; the second means not attended. An
  event with zero or multiple chosen options, or missing identity, is
  a transport contract violation and is rejected with
  MalformedEventError before any write.

OVERWRITE SEMANTICS:
  A second answer for the same user and day silently replaces the
  first. Last write wins; no audit trail.

SEE ALSO:
  - store.go: Upsert contract
  - telegram/bot.go: Feeds events in and routes the acknowledgement
*/
package attendance

import (
	"context"
	"fmt"
	"time"
)

// Recorder turns answer events into ledger facts.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder writing through the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record normalizes one answer event into an AttendanceFact and writes
// it through the store. day is the civil date computed by the caller
// under the deployment timezone; nowUTC is the write instant.
func (r *Recorder) Record(ctx context.Context, ev AnswerEvent, nowUTC time.Time, day CivilDate) (AttendanceFact, error) {
	if ev.UserID == 0 || ev.UserName == "" {
		return AttendanceFact{}, &MalformedEventError{EventID: ev.EventID, Reason: "missing user identity"}
	}
	if len(ev.ChosenOptions) != 1 {
		return AttendanceFact{}, &MalformedEventError{
			EventID: ev.EventID,
			Reason:  fmt.Sprintf("expected exactly one chosen option, got %d", len(ev.ChosenOptions)),
		}
	}

	fact := AttendanceFact{
		UserID:     ev.UserID,
		UserName:   ev.UserName,
		Date:       day,
		Attended:   ev.ChosenOptions[0] == 0,
		RecordedAt: nowUTC.UTC(),
	}

	if err := r.store.Upsert(ctx, fact); err != nil {
		return AttendanceFact{}, err
	}
	return fact, nil
}

// Ack composes the acknowledgement broadcast after a recorded answer.
// Delivery through the Notifier is the caller's job.
func Ack(fact AttendanceFact) string {
	if fact.Attended {
		return fmt.Sprintf("%s: Nice work! 💪", fact.UserName)
	}
	return fmt.Sprintf("%s: Get after it tomorrow! 😤", fact.UserName)
}

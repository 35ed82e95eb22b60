package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MissingToday returns the known users who have not answered today,
// sorted ascending. "Answered" means any fact for today, attended or
// not; the nudge triggers on silence, never on skipping the gym.
// "Known" is the bounded recency heuristic of RecentUserNames: a user
// who has never answered is never nudged, and a long-silent user
// eventually drops out as others answer.
func MissingToday(ctx context.Context, store Store, today CivilDate) ([]string, error) {
	answered, err := store.TodayAttendees(ctx, today)
	if err != nil {
		return nil, err
	}
	known, err := store.RecentUserNames(ctx, KnownUserWindow)
	if err != nil {
		return nil, err
	}

	answeredSet := make(map[string]bool, len(answered))
	for _, name := range answered {
		answeredSet[name] = true
	}

	var missing []string
	for _, name := range known {
		if !answeredSet[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// NudgeMessage renders the reminder for the missing names. An empty
// input means there is nothing to send, which is a valid silent
// outcome, not an error.
func NudgeMessage(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Oi %s, did you go to the gym today? 👀 Answer the poll!",
		strings.Join(names, ", "))
}

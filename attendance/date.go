package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// CIVIL DATE - Calendar day in the deployment timezone (no time-of-day)
// =============================================================================

// CivilDate is a calendar day with no time-of-day or zone attached.
// Facts are keyed on the civil day the answer belongs to, computed at
// answer time in the deployment timezone, never on a UTC timestamp.
type CivilDate struct {
	t time.Time // normalized to midnight UTC
}

// Date constructs a CivilDate from year/month/day.
func Date(year int, month time.Month, day int) CivilDate {
	return CivilDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil day an instant falls on in the given location.
func DateOf(instant time.Time, loc *time.Location) CivilDate {
	local := instant.In(loc)
	return Date(local.Year(), local.Month(), local.Day())
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid civil date %q: %w", s, err)
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d CivilDate) Before(other CivilDate) bool { return d.t.Before(other.t) }
func (d CivilDate) After(other CivilDate) bool  { return d.t.After(other.t) }
func (d CivilDate) Equal(other CivilDate) bool  { return d.t.Equal(other.t) }

// Arithmetic
func (d CivilDate) AddDays(n int) CivilDate { return CivilDate{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d CivilDate) Year() int             { return d.t.Year() }
func (d CivilDate) Month() time.Month     { return d.t.Month() }
func (d CivilDate) Day() int              { return d.t.Day() }
func (d CivilDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d CivilDate) IsZero() bool          { return d.t.IsZero() }

// StartOfWeek returns the Monday of the week containing d.
func (d CivilDate) StartOfWeek() CivilDate {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// String renders the ISO form used as the storage key, e.g. "2026-03-10".
func (d CivilDate) String() string { return d.t.Format("2006-01-02") }

// WeekdayLabel is the three-letter weekday abbreviation, e.g. "Mon".
func (d CivilDate) WeekdayLabel() string { return d.t.Format("Mon") }

// HeaderLabel renders "Mon 2 Jun", the weekly summary's span form.
func (d CivilDate) HeaderLabel() string { return d.t.Format("Mon 2 Jan") }

// RowLabel renders "2 Jun Mon", the history grid's date column form.
func (d CivilDate) RowLabel() string { return d.t.Format("2 Jan Mon") }

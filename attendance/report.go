/*
report.go - Read-only reporting over the attendance ledger

PURPOSE:
  The three reporting queries plus the attendance-rate breakdown, all
  deterministic given the same ledger contents and "now":

  WeeklySummary:   per-user attended days for the Monday-Sunday week
  HistoryGrid:     fixed-width N-day presence grid
  AttendanceRates: per-user attended/window percentage
  (MissingToday lives in nudge.go)

WINDOW RULES:
  The weekly window is the civil Monday..Sunday containing "now" in
  the deployment timezone. History and rates use the N consecutive
  calendar days ending at "now", N clamped to [1, 60] with a default
  of 14. Only users with at least one fact inside the window appear
  in the output; a user with zero facts is entirely absent, not shown
  as all-missing.

RENDERING:
  Grid cells are three-way: attended, not attended, no fact. Column
  widths are padded by rune count so the emoji markers line up.

SEE ALSO:
  - store.go: QueryRange contract these functions rely on
  - nudge.go: The missing-today set
*/
package attendance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// History window bounds. Interactive arguments outside the bounds are
// clamped; unparseable arguments degrade to the default.
const (
	DefaultHistoryDays = 14
	MinHistoryDays     = 1
	MaxHistoryDays     = 60
)

// KnownUserWindow bounds the recency heuristic that stands in for a
// membership roster: a user is "known" while their name appears among
// the last 20 recorded facts.
const KnownUserWindow = 20

// Grid markers.
const (
	markAttended = "✅"
	markSkipped  = "❌"
	markNoData   = "–"
)

const (
	dateColWidth = 12
	userColWidth = 10
)

// ClampDays bounds a history length to [MinHistoryDays, MaxHistoryDays].
func ClampDays(n int) int {
	if n < MinHistoryDays {
		return MinHistoryDays
	}
	if n > MaxHistoryDays {
		return MaxHistoryDays
	}
	return n
}

// ParseDays resolves an interactive history-length argument. An empty
// or unparseable argument degrades to the default; numeric values are
// clamped.
func ParseDays(arg string) int {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return DefaultHistoryDays
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return DefaultHistoryDays
	}
	return ClampDays(n)
}

// =============================================================================
// WEEKLY SUMMARY
// =============================================================================

// WeeklySummary renders per-user attended days for the Monday-Sunday
// week containing now. Every user with at least one attended fact in
// the window appears exactly once, weekday labels in chronological
// order. An empty week still gets the header plus a fixed line.
func WeeklySummary(ctx context.Context, store Store, now CivilDate) (string, error) {
	monday := now.StartOfWeek()
	sunday := monday.AddDays(6)

	header := fmt.Sprintf("📊 This Week's Gym Stats (%s – %s)",
		monday.HeaderLabel(), sunday.HeaderLabel())

	facts, err := store.QueryRange(ctx, monday, sunday, true)
	if err != nil {
		return "", err
	}

	// QueryRange is date-ascending, so appending preserves Mon->Sun order.
	userDays := make(map[string][]string)
	for _, f := range facts {
		userDays[f.UserName] = append(userDays[f.UserName], f.Date.WeekdayLabel())
	}

	if len(userDays) == 0 {
		return header + "\nNo gym sessions logged this week yet.", nil
	}

	lines := []string{header}
	for _, name := range sortedKeys(userDays) {
		days := userDays[name]
		lines = append(lines, fmt.Sprintf("%s: %d/7 days ✅ [%s]",
			name, len(days), strings.Join(days, ", ")))
	}
	return strings.Join(lines, "\n"), nil
}

// =============================================================================
// HISTORY GRID
// =============================================================================

// HistoryGrid renders a fixed-width presence grid for the days
// consecutive calendar days ending at now, oldest first. Cells are
// three-way: attended, not attended, or no fact for that day.
func HistoryGrid(ctx context.Context, store Store, now CivilDate, days int) (string, error) {
	days = ClampDays(days)
	oldest := now.AddDays(-(days - 1))

	facts, err := store.QueryRange(ctx, oldest, now, false)
	if err != nil {
		return "", err
	}

	type cellKey struct {
		name string
		date string
	}
	cells := make(map[cellKey]bool, len(facts))
	seen := make(map[string]bool)
	for _, f := range facts {
		cells[cellKey{f.UserName, f.Date.String()}] = f.Attended
		seen[f.UserName] = true
	}

	if len(seen) == 0 {
		return fmt.Sprintf("No data for the last %d days.", days), nil
	}
	users := sortedKeys(seen)

	header := pad("Date", dateColWidth)
	for _, u := range users {
		header += pad(u, userColWidth)
	}

	lines := []string{
		fmt.Sprintf("📅 Last %d Days", days),
		header,
		strings.Repeat("─", dateColWidth+userColWidth*len(users)),
	}

	for d := oldest; !d.After(now); d = d.AddDays(1) {
		row := pad(d.RowLabel(), dateColWidth)
		for _, u := range users {
			attended, ok := cells[cellKey{u, d.String()}]
			switch {
			case !ok:
				row += pad(markNoData, userColWidth)
			case attended:
				row += pad(markAttended, userColWidth)
			default:
				row += pad(markSkipped, userColWidth)
			}
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n"), nil
}

// =============================================================================
// ATTENDANCE RATES
// =============================================================================

// AttendanceRates renders per-user attended-days percentages over the
// same window as HistoryGrid. Percentages are exact decimal arithmetic
// rounded to one place, never floating point.
func AttendanceRates(ctx context.Context, store Store, now CivilDate, days int) (string, error) {
	days = ClampDays(days)
	oldest := now.AddDays(-(days - 1))

	facts, err := store.QueryRange(ctx, oldest, now, false)
	if err != nil {
		return "", err
	}

	attended := make(map[string]int)
	for _, f := range facts {
		if _, ok := attended[f.UserName]; !ok {
			attended[f.UserName] = 0
		}
		if f.Attended {
			attended[f.UserName]++
		}
	}

	if len(attended) == 0 {
		return fmt.Sprintf("No data for the last %d days.", days), nil
	}

	window := decimal.NewFromInt(int64(days))
	hundred := decimal.NewFromInt(100)

	lines := []string{fmt.Sprintf("🏆 Attendance Rates (last %d days)", days)}
	for _, name := range sortedKeys(attended) {
		count := attended[name]
		rate := decimal.NewFromInt(int64(count)).Div(window).Mul(hundred).Round(1)
		lines = append(lines, fmt.Sprintf("%s: %s%% (%d/%d)", name, rate.String(), count, days))
	}
	return strings.Join(lines, "\n"), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// pad right-pads by rune count so multibyte markers keep columns aligned.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

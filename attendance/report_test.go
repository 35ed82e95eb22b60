package attendance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekiatscis/GymBot/attendance"
	"github.com/weekiatscis/GymBot/attendance/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// seed writes a fact directly, bypassing the Recorder.
func seed(t *testing.T, ledger attendance.Store, userID int64, name string, date attendance.CivilDate, attended bool) {
	t.Helper()
	err := ledger.Upsert(context.Background(), attendance.AttendanceFact{
		UserID:     userID,
		UserName:   name,
		Date:       date,
		Attended:   attended,
		RecordedAt: time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

// Week under test: Mon 10 Mar 2025 .. Sun 16 Mar 2025.
var (
	monday = attendance.Date(2025, time.March, 10)
	sunday = attendance.Date(2025, time.March, 16)
)

// =============================================================================
// WEEKLY SUMMARY
// =============================================================================

func TestWeeklySummary_GroupsAttendedDaysPerUser(t *testing.T) {
	// GIVEN: Alex attended Mon and Wed, Bo attended Tue
	// WHEN: The weekly summary is built at the end of that week
	// THEN: One line per user, sorted by name, chronological day labels

	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday, true)
	seed(t, ledger, 1, "Alex", monday.AddDays(2), true)
	seed(t, ledger, 2, "Bo", monday.AddDays(1), true)

	text, err := attendance.WeeklySummary(context.Background(), ledger, sunday)
	require.NoError(t, err)

	want := "📊 This Week's Gym Stats (Mon 10 Mar – Sun 16 Mar)\n" +
		"Alex: 2/7 days ✅ [Mon, Wed]\n" +
		"Bo: 1/7 days ✅ [Tue]"
	assert.Equal(t, want, text)
}

func TestWeeklySummary_DayLabelsChronological_NotAlphabetical(t *testing.T) {
	// Fri, Tue, Wed attended; alphabetical order would be Fri, Tue, Wed.
	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday.AddDays(4), true) // Fri
	seed(t, ledger, 1, "Alex", monday.AddDays(1), true) // Tue
	seed(t, ledger, 1, "Alex", monday.AddDays(2), true) // Wed

	text, err := attendance.WeeklySummary(context.Background(), ledger, sunday)
	require.NoError(t, err)

	assert.Contains(t, text, "Alex: 3/7 days ✅ [Tue, Wed, Fri]")
}

func TestWeeklySummary_ExcludesNotAttendedAndOtherWeeks(t *testing.T) {
	// GIVEN: A "no" answer inside the week and a "yes" just outside it
	// WHEN: The weekly summary is built
	// THEN: Neither leaks into the body

	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday.AddDays(1), false)  // answered no
	seed(t, ledger, 2, "Bo", monday.AddDays(-1), true)    // previous Sunday
	seed(t, ledger, 3, "Cam", sunday.AddDays(1), true)    // next Monday

	text, err := attendance.WeeklySummary(context.Background(), ledger, sunday)
	require.NoError(t, err)

	assert.Contains(t, text, "No gym sessions logged this week yet.")
	assert.NotContains(t, text, "Alex")
	assert.NotContains(t, text, "Bo")
	assert.NotContains(t, text, "Cam")
}

func TestWeeklySummary_EmptyWeek_HeaderPlusFixedLine(t *testing.T) {
	text, err := attendance.WeeklySummary(context.Background(), store.NewMemory(), sunday)
	require.NoError(t, err)

	want := "📊 This Week's Gym Stats (Mon 10 Mar – Sun 16 Mar)\n" +
		"No gym sessions logged this week yet."
	assert.Equal(t, want, text)
}

// =============================================================================
// HISTORY GRID
// =============================================================================

func TestHistoryGrid_ThreeWayCells(t *testing.T) {
	// GIVEN: Alex answered yes Monday, no Tuesday, nothing Wednesday
	// WHEN: The 7-day grid ending Sunday is rendered
	// THEN: Mon ✅, Tue ❌, Wed "no data"

	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday, true)
	seed(t, ledger, 1, "Alex", monday.AddDays(1), false)

	text, err := attendance.HistoryGrid(context.Background(), ledger, sunday, 7)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3+7, "title, header, separator, one row per day")

	assert.Equal(t, "📅 Last 7 Days", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Date"))
	assert.Contains(t, lines[1], "Alex")

	monRow, tueRow, wedRow := lines[3], lines[4], lines[5]
	assert.True(t, strings.HasPrefix(monRow, "10 Mar Mon"))
	assert.Contains(t, monRow, "✅")
	assert.Contains(t, tueRow, "❌")
	assert.Contains(t, wedRow, "–")
	assert.NotContains(t, wedRow, "✅")
	assert.NotContains(t, wedRow, "❌")
}

func TestHistoryGrid_UserAxis_OnlyUsersWithFactsInWindow(t *testing.T) {
	// GIVEN: Bo's only fact is outside the window
	// WHEN: The grid is rendered
	// THEN: Bo has no column at all; Alex's single fact yields exactly
	//       one non-"no data" cell

	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday.AddDays(2), true)
	seed(t, ledger, 2, "Bo", monday.AddDays(-10), true)

	text, err := attendance.HistoryGrid(context.Background(), ledger, sunday, 7)
	require.NoError(t, err)

	assert.NotContains(t, text, "Bo")
	assert.Equal(t, 1, strings.Count(text, "✅"))
}

func TestHistoryGrid_ColumnsSortedAndRuneAligned(t *testing.T) {
	ledger := store.NewMemory()
	seed(t, ledger, 2, "Zoe", monday, true)
	seed(t, ledger, 1, "Alex", monday, false)

	text, err := attendance.HistoryGrid(context.Background(), ledger, sunday, 7)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	header := lines[1]
	assert.Less(t, strings.Index(header, "Alex"), strings.Index(header, "Zoe"))

	// 12-char date column plus two 10-char user columns.
	sep := lines[2]
	assert.Equal(t, 32, len([]rune(sep)))
}

func TestHistoryGrid_EmptyWindow_SingleLine(t *testing.T) {
	text, err := attendance.HistoryGrid(context.Background(), store.NewMemory(), sunday, 14)
	require.NoError(t, err)

	assert.Equal(t, "No data for the last 14 days.", text)
}

// =============================================================================
// CLAMPING
// =============================================================================

func TestClampDays_Bounds(t *testing.T) {
	assert.Equal(t, 1, attendance.ClampDays(0))
	assert.Equal(t, 1, attendance.ClampDays(-5))
	assert.Equal(t, 60, attendance.ClampDays(200))
	assert.Equal(t, 14, attendance.ClampDays(14))
	assert.Equal(t, 1, attendance.ClampDays(1))
	assert.Equal(t, 60, attendance.ClampDays(60))
}

func TestParseDays_DegradesToDefault(t *testing.T) {
	assert.Equal(t, 14, attendance.ParseDays(""))
	assert.Equal(t, 14, attendance.ParseDays("abc"))
	assert.Equal(t, 1, attendance.ParseDays("0"))
	assert.Equal(t, 1, attendance.ParseDays("-5"))
	assert.Equal(t, 60, attendance.ParseDays("200"))
	assert.Equal(t, 7, attendance.ParseDays(" 7 "))
}

// =============================================================================
// ATTENDANCE RATES
// =============================================================================

func TestAttendanceRates_ExactPercentages(t *testing.T) {
	// GIVEN: Alex attended 1 of the 7 window days, Bo answered but never went
	// WHEN: Rates are computed
	// THEN: 1/7 renders as 14.3%, zero renders as 0%

	ledger := store.NewMemory()
	seed(t, ledger, 1, "Alex", monday, true)
	seed(t, ledger, 2, "Bo", monday, false)

	text, err := attendance.AttendanceRates(context.Background(), ledger, sunday, 7)
	require.NoError(t, err)

	want := "🏆 Attendance Rates (last 7 days)\n" +
		"Alex: 14.3% (1/7)\n" +
		"Bo: 0% (0/7)"
	assert.Equal(t, want, text)
}

func TestAttendanceRates_EmptyWindow(t *testing.T) {
	text, err := attendance.AttendanceRates(context.Background(), store.NewMemory(), sunday, 14)
	require.NoError(t, err)

	assert.Equal(t, "No data for the last 14 days.", text)
}

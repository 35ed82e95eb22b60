package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekiatscis/GymBot/attendance"
	"github.com/weekiatscis/GymBot/config"
	"github.com/weekiatscis/GymBot/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// writeConfigFile drops a config.yaml into a fresh directory and
// returns the directory path.
func writeConfigFile(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	return dir
}

// setCredentials satisfies the mandatory fields through the legacy
// environment names.
func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("CHAT_ID", "-100200300")
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoad_DefaultsFromEnvOnly(t *testing.T) {
	setCredentials(t)

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(-100200300), cfg.Telegram.ChatID)
	assert.Equal(t, "Asia/Singapore", cfg.Schedule.Timezone)
	assert.Equal(t, "20:00", cfg.Schedule.PollTime)
	assert.Equal(t, "21:00", cfg.Schedule.SummaryTime)
	assert.Equal(t, "Sunday", cfg.Schedule.SummaryDay)
	assert.Equal(t, "23:00", cfg.Schedule.NudgeTime)
	assert.Equal(t, "./gym_log.db", cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	setCredentials(t)
	dir := writeConfigFile(t, `
schedule:
  timezone: Europe/Berlin
  poll_time: "19:30"
storage:
  path: /var/lib/gymbot/facts.db
`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Timezone)
	assert.Equal(t, "19:30", cfg.Schedule.PollTime)
	assert.Equal(t, "/var/lib/gymbot/facts.db", cfg.Storage.Path)
	// Untouched fields keep their defaults.
	assert.Equal(t, "Sunday", cfg.Schedule.SummaryDay)
}

func TestLoad_LegacyEnvOverridesFile(t *testing.T) {
	setCredentials(t)
	t.Setenv("DB_PATH", "/tmp/override.db")
	dir := writeConfigFile(t, `
storage:
  path: /var/lib/gymbot/facts.db
`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("CHAT_ID", "")

	_, err := config.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, attendance.ErrInvalidConfig))

	t.Setenv("TOKEN", "123:abc")
	_, err = config.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, attendance.ErrInvalidConfig))
}

func TestLoad_RejectsBadScheduleFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown timezone", "schedule:\n  timezone: Mars/Olympus\n"},
		{"bad poll time", "schedule:\n  poll_time: \"8pm\"\n"},
		{"hour out of range", "schedule:\n  nudge_time: \"25:00\"\n"},
		{"unknown weekday", "schedule:\n  summary_day: Caturday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t)
			dir := writeConfigFile(t, tt.yaml)

			_, err := config.Load(dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, attendance.ErrInvalidConfig))
		})
	}
}

// =============================================================================
// COORDINATOR CONFIG
// =============================================================================

func TestCoordinatorConfig(t *testing.T) {
	setCredentials(t)
	dir := writeConfigFile(t, `
schedule:
  timezone: UTC
  poll_time: "18:05"
  summary_time: "21:00"
  summary_day: friday
  nudge_time: "22:30"
`)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	sched, err := cfg.CoordinatorConfig()
	require.NoError(t, err)

	assert.Equal(t, time.UTC, sched.Location)
	assert.Equal(t, schedule.TimeOfDay{Hour: 18, Minute: 5}, sched.PollAt)
	assert.Equal(t, schedule.TimeOfDay{Hour: 21, Minute: 0}, sched.SummaryAt)
	assert.Equal(t, time.Friday, sched.SummaryDay)
	assert.Equal(t, schedule.TimeOfDay{Hour: 22, Minute: 30}, sched.NudgeAt)
	assert.Equal(t, "🏋️ Did you go to the gym today?", sched.PollQuestion)
	assert.Equal(t, [2]string{"✅ Yes!", "❌ No"}, sched.PollOptions)
}

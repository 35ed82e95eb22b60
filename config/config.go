/*
config.go - Static process configuration

PURPOSE:
  Loads and validates the deployment configuration: bot credentials,
  target chat, timezone, schedule times, storage path, HTTP listen
  address. Configuration is read once at startup into an immutable
  struct; there are no ambient global lookups.

SOURCES:
  1. config.yaml in the given directory (optional)
  2. Environment variables. The original deployment's names are kept:
     TOKEN, CHAT_ID, DB_PATH. Everything else uses the GYMBOT_ prefix.

VALIDATION:
  Invalid timezone, times, or weekday fail Load with a ConfigError;
  startup is the only place configuration errors are fatal.
*/
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/weekiatscis/GymBot/attendance"
	"github.com/weekiatscis/GymBot/schedule"
)

// Config is the full static configuration.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type ScheduleConfig struct {
	Timezone    string `mapstructure:"timezone"`
	PollTime    string `mapstructure:"poll_time"`
	SummaryTime string `mapstructure:"summary_time"`
	SummaryDay  string `mapstructure:"summary_day"`
	NudgeTime   string `mapstructure:"nudge_time"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from path/config.yaml and the environment.
// A missing config file is fine; missing credentials are not.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Defaults match the original deployment.
	v.SetDefault("schedule.timezone", "Asia/Singapore")
	v.SetDefault("schedule.poll_time", "20:00")
	v.SetDefault("schedule.summary_time", "21:00")
	v.SetDefault("schedule.summary_day", "Sunday")
	v.SetDefault("schedule.nudge_time", "23:00")
	v.SetDefault("storage.path", "./gym_log.db")
	v.SetDefault("server.addr", ":8080")

	v.SetEnvPrefix("GYMBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy deployment env names.
	v.BindEnv("telegram.token", "TOKEN")
	v.BindEnv("telegram.chat_id", "CHAT_ID")
	v.BindEnv("storage.path", "DB_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return &attendance.ConfigError{Field: "telegram.token", Reason: "missing bot token"}
	}
	if c.Telegram.ChatID == 0 {
		return &attendance.ConfigError{Field: "telegram.chat_id", Reason: "missing target chat"}
	}
	_, err := c.CoordinatorConfig()
	return err
}

// CoordinatorConfig resolves the schedule fields into the immutable
// coordinator configuration.
func (c *Config) CoordinatorConfig() (schedule.Config, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return schedule.Config{}, &attendance.ConfigError{
			Field:  "schedule.timezone",
			Reason: fmt.Sprintf("unknown timezone %q", c.Schedule.Timezone),
		}
	}

	pollAt, err := parseTimeOfDay("schedule.poll_time", c.Schedule.PollTime)
	if err != nil {
		return schedule.Config{}, err
	}
	summaryAt, err := parseTimeOfDay("schedule.summary_time", c.Schedule.SummaryTime)
	if err != nil {
		return schedule.Config{}, err
	}
	nudgeAt, err := parseTimeOfDay("schedule.nudge_time", c.Schedule.NudgeTime)
	if err != nil {
		return schedule.Config{}, err
	}
	summaryDay, err := parseWeekday("schedule.summary_day", c.Schedule.SummaryDay)
	if err != nil {
		return schedule.Config{}, err
	}

	return schedule.Config{
		Location:     loc,
		PollAt:       pollAt,
		PollQuestion: "🏋️ Did you go to the gym today?",
		PollOptions:  [2]string{"✅ Yes!", "❌ No"},
		SummaryAt:    summaryAt,
		SummaryDay:   summaryDay,
		NudgeAt:      nudgeAt,
	}, nil
}

func parseTimeOfDay(field, s string) (schedule.TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return schedule.TimeOfDay{}, &attendance.ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("want HH:MM, got %q", s),
		}
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return schedule.TimeOfDay{}, &attendance.ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("want HH:MM, got %q", s),
		}
	}
	return schedule.TimeOfDay{Hour: hour, Minute: minute}, nil
}

func parseWeekday(field, s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, &attendance.ConfigError{
		Field:  field,
		Reason: fmt.Sprintf("unknown weekday %q", s),
	}
}

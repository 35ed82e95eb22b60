/*
coordinator.go - Wall-clock trigger coordination for polls, summaries, nudges

PURPOSE:
  Maps configured wall-clock trigger points to actions against the
  Notifier: the daily attendance poll, the weekly summary, and the
  daily missing-today nudge.

DESIGN:
  - Runs a background goroutine with a short check interval
  - A trigger fires once per civil day, when its local time has passed
  - Re-firing after a process restart near the boundary is harmless:
    polls are re-issued, reports recomputed from current ledger state;
    the ledger itself is never written by a trigger
  - Action errors abandon that trigger's cycle, never crash the process

CONFIGURATION:
  Immutable Config passed at construction; no ambient globals. All
  times are interpreted in Config.Location.

USAGE:
  c := schedule.NewCoordinator(cfg, store, notifier, logger)
  c.Start()
  // ... later
  c.Stop()

SEE ALSO:
  - attendance/report.go: WeeklySummary
  - attendance/nudge.go: MissingToday
*/
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weekiatscis/GymBot/attendance"
)

// TimeOfDay is a wall-clock trigger point in the configured timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Config is the immutable schedule configuration.
type Config struct {
	Location *time.Location

	PollAt       TimeOfDay
	PollQuestion string
	PollOptions  [2]string // first option = affirmative attendance

	SummaryAt  TimeOfDay
	SummaryDay time.Weekday

	NudgeAt TimeOfDay
}

// Trigger names, used as lastFired keys and in logs.
const (
	triggerPoll    = "poll"
	triggerSummary = "summary"
	triggerNudge   = "nudge"
)

const actionTimeout = 30 * time.Second

// Coordinator fires the configured triggers against the Notifier.
type Coordinator struct {
	cfg      Config
	store    attendance.Store
	notifier attendance.Notifier
	log      *zap.Logger

	interval time.Duration
	now      func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastFired map[string]string // trigger name -> civil date it last fired
}

// NewCoordinator creates a coordinator. It does not start ticking
// until Start is called.
func NewCoordinator(cfg Config, store attendance.Store, notifier attendance.Notifier, log *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		store:     store,
		notifier:  notifier,
		log:       log,
		interval:  30 * time.Second,
		now:       time.Now,
		stop:      make(chan struct{}),
		lastFired: make(map[string]string),
	}
}

// Start begins the background trigger loop.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ticker = time.NewTicker(c.interval)
	c.wg.Add(1)
	go c.run()

	c.log.Info("schedule coordinator started",
		zap.String("poll_at", c.cfg.PollAt.String()),
		zap.String("summary_at", fmt.Sprintf("%s %s", c.cfg.SummaryDay, c.cfg.SummaryAt)),
		zap.String("nudge_at", c.cfg.NudgeAt.String()),
		zap.String("timezone", c.cfg.Location.String()))
}

// Stop stops the trigger loop and waits for an in-flight cycle.
// The mutex is released before waiting: an in-flight cycle still needs
// it in due/fire, so holding it across the wait would deadlock.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	ticker := c.ticker
	c.ticker = nil
	c.mu.Unlock()

	if ticker == nil {
		return
	}

	ticker.Stop()
	close(c.stop)
	c.wg.Wait()
	c.log.Info("schedule coordinator stopped")
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ticker.C:
			c.RunAt(c.now())
		case <-c.stop:
			return
		}
	}
}

// RunAt fires every trigger that is due at the given instant and has
// not yet fired on that instant's civil day. Exported for tests and
// admin catch-up.
func (c *Coordinator) RunAt(instant time.Time) {
	local := instant.In(c.cfg.Location)
	today := attendance.DateOf(instant, c.cfg.Location)

	if c.due(triggerPoll, local, today, c.cfg.PollAt) {
		c.fire(triggerPoll, today, c.firePoll)
	}
	if local.Weekday() == c.cfg.SummaryDay && c.due(triggerSummary, local, today, c.cfg.SummaryAt) {
		c.fire(triggerSummary, today, c.fireSummary)
	}
	if c.due(triggerNudge, local, today, c.cfg.NudgeAt) {
		c.fire(triggerNudge, today, c.fireNudge)
	}
}

// due reports whether the trigger's wall-clock point has been reached
// today and it has not fired for this civil day yet. Marking happens
// in fire, so a failed action is still not retried until tomorrow:
// each trigger gets one shot per cycle.
func (c *Coordinator) due(name string, local time.Time, today attendance.CivilDate, at TimeOfDay) bool {
	if local.Hour() < at.Hour {
		return false
	}
	if local.Hour() == at.Hour && local.Minute() < at.Minute {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFired[name] != today.String()
}

func (c *Coordinator) fire(name string, today attendance.CivilDate, action func(ctx context.Context, today attendance.CivilDate) error) {
	c.mu.Lock()
	c.lastFired[name] = today.String()
	c.mu.Unlock()

	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	c.log.Info("trigger fired",
		zap.String("trigger", name),
		zap.String("run_id", runID),
		zap.String("date", today.String()))

	if err := action(ctx, today); err != nil {
		// Abandon this cycle; the ledger is untouched by triggers.
		c.log.Error("trigger action failed",
			zap.String("trigger", name),
			zap.String("run_id", runID),
			zap.Error(err))
	}
}

func (c *Coordinator) firePoll(ctx context.Context, _ attendance.CivilDate) error {
	return c.notifier.IssuePoll(ctx, c.cfg.PollQuestion, c.cfg.PollOptions[:])
}

func (c *Coordinator) fireSummary(ctx context.Context, today attendance.CivilDate) error {
	text, err := attendance.WeeklySummary(ctx, c.store, today)
	if err != nil {
		return err
	}
	return c.notifier.SendText(ctx, text)
}

func (c *Coordinator) fireNudge(ctx context.Context, today attendance.CivilDate) error {
	missing, err := attendance.MissingToday(ctx, c.store, today)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		// Everyone known has answered; nothing to send is success.
		c.log.Debug("nudge skipped, no missing users")
		return nil
	}
	return c.notifier.SendText(ctx, attendance.NudgeMessage(missing))
}

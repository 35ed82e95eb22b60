/*
bot.go - Update loop and command dispatch

PURPOSE:
  Consumes the getUpdates stream and routes each update:
  - poll answers -> Recorder, then acknowledgement back to the chat
  - /stats, /history, /rates commands -> reporting engine replies

EVENT HANDLING:
  The transport does not deduplicate answers; the ledger upsert makes
  redelivery safe. Malformed answers (a retracted vote arrives with no
  chosen options) are logged and dropped without touching the ledger.

SEE ALSO:
  - client.go: The HTTP binding this loop runs on
  - attendance/recorder.go: Where answers become facts
*/
package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weekiatscis/GymBot/attendance"
)

const (
	longPollTimeout = 30 * time.Second
	retryBackoff    = 3 * time.Second
)

// Bot runs the inbound update loop.
type Bot struct {
	client   *Client
	recorder *attendance.Recorder
	store    attendance.Store
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

// NewBot creates the update loop around a client and the core.
func NewBot(client *Client, recorder *attendance.Recorder, store attendance.Store, loc *time.Location, log *zap.Logger) *Bot {
	return &Bot{
		client:   client,
		recorder: recorder,
		store:    store,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.client.GetUpdates(ctx, offset, longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("get updates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u Update) {
	switch {
	case u.PollAnswer != nil:
		b.handlePollAnswer(ctx, *u.PollAnswer)
	case u.Message != nil && strings.HasPrefix(u.Message.Text, "/"):
		b.handleCommand(ctx, *u.Message)
	}
}

func (b *Bot) handlePollAnswer(ctx context.Context, ans PollAnswer) {
	now := b.now()
	ev := attendance.AnswerEvent{
		EventID:       uuid.NewString(),
		UserID:        ans.User.ID,
		UserName:      ans.User.FirstName,
		ChosenOptions: ans.OptionIDs,
	}

	fact, err := b.recorder.Record(ctx, ev, now, attendance.DateOf(now, b.loc))
	if err != nil {
		if attendance.IsMalformedEvent(err) {
			b.log.Warn("dropping malformed answer",
				zap.String("event_id", ev.EventID),
				zap.Error(err))
			return
		}
		b.log.Error("record answer failed",
			zap.String("event_id", ev.EventID),
			zap.Error(err))
		return
	}

	b.log.Info("answer recorded",
		zap.String("event_id", ev.EventID),
		zap.String("user", fact.UserName),
		zap.String("date", fact.Date.String()),
		zap.Bool("attended", fact.Attended))

	if err := b.client.SendText(ctx, attendance.Ack(fact)); err != nil {
		b.log.Warn("acknowledgement failed", zap.Error(err))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg Message) {
	fields := strings.Fields(msg.Text)
	// "/history@SomeBot 7" -> command "/history", arg "7"
	cmd := strings.SplitN(fields[0], "@", 2)[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	today := attendance.DateOf(b.now(), b.loc)

	var (
		text      string
		parseMode string
		err       error
	)
	switch cmd {
	case "/stats":
		text, err = attendance.WeeklySummary(ctx, b.store, today)
	case "/history":
		text, err = attendance.HistoryGrid(ctx, b.store, today, attendance.ParseDays(arg))
		if err == nil {
			text = "```\n" + text + "\n```"
			parseMode = "Markdown"
		}
	case "/rates":
		text, err = attendance.AttendanceRates(ctx, b.store, today, attendance.ParseDays(arg))
	default:
		return
	}

	if err != nil {
		b.log.Error("command failed", zap.String("command", cmd), zap.Error(err))
		if sendErr := b.client.SendMessageTo(ctx, msg.Chat.ID, "Couldn't build that report, try again later.", ""); sendErr != nil {
			b.log.Warn("error reply failed", zap.Error(sendErr))
		}
		return
	}

	// Reply in the chat the command arrived from.
	if err := b.client.SendMessageTo(ctx, msg.Chat.ID, text, parseMode); err != nil {
		b.log.Warn("command reply failed", zap.String("command", cmd), zap.Error(err))
	}
}

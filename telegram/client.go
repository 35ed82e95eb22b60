/*
client.go - Minimal Telegram Bot API client

PURPOSE:
  The thin HTTP binding to the Telegram Bot API: sendMessage, sendPoll,
  and getUpdates long polling. Implements attendance.Notifier for the
  single configured group chat.

API SHAPE:
  Every method is a POST of a JSON body to
  https://api.telegram.org/bot<token>/<method>, answered by
  {"ok": bool, "result": ..., "description": ...}.

SEE ALSO:
  - bot.go: Update loop and command dispatch on top of this client
*/
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client bound to one chat.
type Client struct {
	token  string
	chatID int64
	base   string
	http   *http.Client
	log    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given bot token and chat.
func NewClient(token string, chatID int64, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		token:  token,
		chatID: chatID,
		base:   defaultBaseURL,
		// Long enough for getUpdates long polling plus slack.
		http: &http.Client{Timeout: 70 * time.Second},
		log:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: encode payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: %s", method, api.Description)
	}
	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// =============================================================================
// OUTBOUND (attendance.Notifier)
// =============================================================================

// SendMessage sends a text message to the configured chat. parseMode
// may be empty or a Telegram parse mode such as "Markdown".
func (c *Client) SendMessage(ctx context.Context, text, parseMode string) error {
	return c.SendMessageTo(ctx, c.chatID, text, parseMode)
}

// SendMessageTo sends a text message to an arbitrary chat, so command
// replies land where the command came from.
func (c *Client) SendMessageTo(ctx context.Context, chatID int64, text, parseMode string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// SendPoll issues a non-anonymous poll so answers carry user identity.
func (c *Client) SendPoll(ctx context.Context, question string, options []string) error {
	payload := map[string]any{
		"chat_id":      c.chatID,
		"question":     question,
		"options":      options,
		"is_anonymous": false,
	}
	return c.call(ctx, "sendPoll", payload, nil)
}

// IssuePoll implements attendance.Notifier.
func (c *Client) IssuePoll(ctx context.Context, question string, options []string) error {
	return c.SendPoll(ctx, question, options)
}

// SendText implements attendance.Notifier.
func (c *Client) SendText(ctx context.Context, text string) error {
	return c.SendMessage(ctx, text, "")
}

// =============================================================================
// INBOUND
// =============================================================================

// Update is one item from the getUpdates stream.
type Update struct {
	UpdateID   int64       `json:"update_id"`
	Message    *Message    `json:"message,omitempty"`
	PollAnswer *PollAnswer `json:"poll_answer,omitempty"`
}

type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
	From *User  `json:"from,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type PollAnswer struct {
	User      User  `json:"user"`
	OptionIDs []int `json:"option_ids"`
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "poll_answer"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

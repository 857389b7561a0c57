package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mboehm/chorequest/internal/gamification"
)

const defaultTimeout = 5 * time.Second

// Client delivers completion events to a Home Assistant webhook. Delivery
// is best-effort and fire-and-forget: failures are logged and swallowed,
// never retried, and never surfaced to the completion pipeline.
type Client struct {
	baseURL    string
	webhookID  string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(baseURL, webhookID string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		webhookID:  webhookID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if a webhook target is set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.webhookID != ""
}

// TaskCompleted implements gamification.Notifier.
func (c *Client) TaskCompleted(ev gamification.TaskCompletedEvent) {
	c.deliver("task_completed", ev)
}

// AchievementUnlocked implements gamification.Notifier.
func (c *Client) AchievementUnlocked(ev gamification.AchievementUnlockedEvent) {
	c.deliver("achievement_unlocked", ev)
}

func (c *Client) deliver(eventType string, data any) {
	if !c.Configured() {
		return
	}
	go func() {
		if err := c.send(eventType, data); err != nil {
			c.logger.Warn("webhook delivery failed", "event", eventType, "error", err)
		}
	}()
}

func (c *Client) send(eventType string, data any) error {
	payload := map[string]any{"event_type": eventType}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("merge event: %w", err)
	}
	payload["event_type"] = eventType

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/webhook/%s", c.baseURL, c.webhookID)
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook target returned status %d", resp.StatusCode)
	}

	c.logger.Debug("webhook delivered", "event", eventType, "status", resp.StatusCode)
	return nil
}

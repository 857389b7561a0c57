package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = `You are the assistant of ChoreQuest, a gamified household chore tracker.
Write a motivating weekly summary from the statistics you are given.

Respond ONLY with valid JSON in the following format:
{
  "summary_text": "Your motivating summary as flowing text. Use paragraphs (separated by \n\n) for readability. Mention highlights and streaks and encourage the users."
}

Rules:
- Be motivating and positive, but honest
- Name concrete numbers and achievements
- Output valid JSON only, no markdown, no explanations`

const (
	defaultAPIURL  = "https://api.anthropic.com/v1/messages"
	apiVersion     = "2023-06-01"
	maxTokens      = 1500
	requestTimeout = 60 * time.Second
)

// Client calls a messages-style text generation API to produce the weekly
// summary prose. A client without an API key reports unconfigured and the
// caller falls back to deterministic text.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIURL overrides the API endpoint, mainly for tests.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

func NewClient(apiKey, model string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		apiURL:     defaultAPIURL,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate produces summary prose for the given week statistics. It returns
// the text and the token count the request consumed.
func (c *Client) Generate(ctx context.Context, stats *WeekStats) (string, int, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", 0, fmt.Errorf("marshal stats: %w", err)
	}

	payload, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		System:      systemPrompt,
		Messages:    []message{{Role: "user", Content: string(statsJSON)}},
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("generation API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var mr messagesResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if len(mr.Content) == 0 {
		return "", 0, fmt.Errorf("generation API returned empty content")
	}

	tokens := mr.Usage.InputTokens + mr.Usage.OutputTokens
	text := extractSummaryText(mr.Content[0].Text, c.logger)
	return text, tokens, nil
}

// extractSummaryText parses the model output as JSON after stripping any
// markdown code fences. Unparseable output is returned verbatim.
func extractSummaryText(raw string, logger *slog.Logger) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || parsed.SummaryText == "" {
		logger.Warn("summary response was not the expected JSON", "preview", truncate(raw, 200))
		return raw
	}
	return parsed.SummaryText
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

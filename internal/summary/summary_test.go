package summary

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mboehm/chorequest/internal/database"
)

func setupGenerator(t *testing.T, client *Client) *Generator {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewGenerator(db, client, slog.Default())
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "monday stays",
			in:   time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC),
			want: "2026-08-31",
		},
		{
			name: "sunday goes back",
			in:   time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC),
			want: "2026-08-31",
		},
		{
			name: "wednesday goes back",
			in:   time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
			want: "2026-08-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mondayOf(tt.in)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("mondayOf(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("expected midnight, got %s", got)
			}
		})
	}
}

func TestGenerateFallback(t *testing.T) {
	client := NewClient("", "test-model", slog.Default())
	gen := setupGenerator(t, client)

	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	sum, err := gen.Generate(context.Background(), weekStart)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(sum.SummaryText, "0 of 0 chores") {
		t.Errorf("fallback text should mention completion counts, got %q", sum.SummaryText)
	}
	if sum.WeekStart.Format("2006-01-02") != "2026-08-31" {
		t.Errorf("week start = %s, want 2026-08-31", sum.WeekStart.Format("2006-01-02"))
	}
	if sum.WeekEnd.Format("2006-01-02") != "2026-09-06" {
		t.Errorf("week end = %s, want 2026-09-06", sum.WeekEnd.Format("2006-01-02"))
	}
}

func TestGenerateReplacesExisting(t *testing.T) {
	client := NewClient("", "test-model", slog.Default())
	gen := setupGenerator(t, client)

	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if _, err := gen.Generate(context.Background(), weekStart); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if _, err := gen.Generate(context.Background(), weekStart); err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	summaries, err := gen.summaries.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("expected regeneration to replace the stored row, got %d rows", len(summaries))
	}
}

func TestGenerateWithAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}

		resp := map[string]any{
			"content": []map[string]string{
				{"text": "```json\n{\"summary_text\": \"Great week everyone!\"}\n```"},
			},
			"usage": map[string]int{"input_tokens": 100, "output_tokens": 50},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-model", slog.Default(), WithAPIURL(srv.URL))
	gen := setupGenerator(t, client)

	sum, err := gen.Generate(context.Background(), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sum.SummaryText != "Great week everyone!" {
		t.Errorf("summary text = %q, want parsed API text", sum.SummaryText)
	}
}

func TestGenerateAPIFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-model", slog.Default(), WithAPIURL(srv.URL))
	gen := setupGenerator(t, client)

	sum, err := gen.Generate(context.Background(), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Generate should not fail on API errors: %v", err)
	}
	if !strings.Contains(sum.SummaryText, "unavailable") {
		t.Errorf("expected fallback note, got %q", sum.SummaryText)
	}
}

func TestExtractSummaryText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain json",
			raw:  `{"summary_text": "Well done"}`,
			want: "Well done",
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"summary_text\": \"Well done\"}\n```",
			want: "Well done",
		},
		{
			name: "fence without language",
			raw:  "```\n{\"summary_text\": \"Well done\"}\n```",
			want: "Well done",
		},
		{
			name: "not json returns verbatim",
			raw:  "Just some prose.",
			want: "Just some prose.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSummaryText(tt.raw, slog.Default()); got != tt.want {
				t.Errorf("extractSummaryText = %q, want %q", got, tt.want)
			}
		})
	}
}

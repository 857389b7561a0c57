// Package summary builds the weekly activity report: it aggregates the
// week's completions, asks a text generation API for motivating prose, and
// stores the result. Without an API key it stores a plain statistical
// summary instead.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
)

// Generator produces and persists weekly summaries.
type Generator struct {
	stats        *store.StatsStore
	achievements *store.AchievementStore
	summaries    *store.SummaryStore
	client       *Client
	logger       *slog.Logger
	now          func() time.Time
}

func NewGenerator(db store.DBTX, client *Client, logger *slog.Logger) *Generator {
	return &Generator{
		stats:        store.NewStatsStore(db),
		achievements: store.NewAchievementStore(db),
		summaries:    store.NewSummaryStore(db),
		client:       client,
		logger:       logger.With("component", "summary"),
		now:          time.Now,
	}
}

// Generate builds the summary for the week containing weekStart and stores
// it, replacing any earlier generation for the same week. A zero weekStart
// means the current week. Any weekday is accepted; it is normalized to the
// week's Monday.
func (g *Generator) Generate(ctx context.Context, weekStart time.Time) (*model.WeeklySummary, error) {
	if weekStart.IsZero() {
		weekStart = g.now().UTC()
	}
	weekStart = mondayOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)

	stats, err := GatherStats(g.stats, g.achievements, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	var text string
	switch {
	case !g.client.Configured():
		g.logger.Info("no generation API key configured, using fallback text")
		text = fallbackText(stats, weekStart, "")
	default:
		generated, tokens, err := g.client.Generate(ctx, stats)
		if err != nil {
			g.logger.Error("summary generation failed", "error", err)
			text = fallbackText(stats, weekStart, "The generated summary was unavailable this week.")
		} else {
			g.logger.Info("weekly summary generated", "week_start", stats.WeekStart, "tokens", tokens)
			text = generated
		}
	}

	sum, err := g.summaries.Replace(weekStart, weekEnd, text, g.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	return sum, nil
}

// mondayOf returns midnight UTC of the Monday of t's week.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// fallbackText builds a deterministic summary from the raw statistics.
func fallbackText(stats *WeekStats, weekStart time.Time, note string) string {
	_, week := weekStart.ISOWeek()
	text := fmt.Sprintf(
		"Weekly summary, week %d\n\nThis week %d of %d chores were completed (%.1f%%).",
		week, stats.CompletedTasks, stats.TotalTasks, stats.CompletionRate,
	)
	if len(stats.AchievementsUnlocked) > 0 {
		text += fmt.Sprintf("\n\n%d achievements were unlocked.", len(stats.AchievementsUnlocked))
	}
	if note != "" {
		text += "\n\n" + note
	}
	return text
}

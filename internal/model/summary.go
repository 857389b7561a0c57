package model

import "time"

// WeeklySummary stores one generated activity summary per week. The summary
// text is always well-formed: when the text-generation collaborator is
// unavailable a deterministic fallback is stored instead.
type WeeklySummary struct {
	ID          int64     `json:"id"`
	WeekStart   time.Time `json:"week_start"`
	WeekEnd     time.Time `json:"week_end"`
	SummaryText string    `json:"summary_text"`
	GeneratedAt time.Time `json:"generated_at"`
}

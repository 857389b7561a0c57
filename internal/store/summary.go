package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mboehm/chorequest/internal/model"
)

type SummaryStore struct {
	db DBTX
}

func NewSummaryStore(db DBTX) *SummaryStore {
	return &SummaryStore{db: db}
}

const summaryCols = `id, week_start, week_end, summary_text, generated_at`

func scanSummary(scanner interface{ Scan(...any) error }) (*model.WeeklySummary, error) {
	var s model.WeeklySummary
	err := scanner.Scan(&s.ID, &s.WeekStart, &s.WeekEnd, &s.SummaryText, &s.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Replace stores the summary for a week, overwriting any earlier generation
// for the same week_start.
func (s *SummaryStore) Replace(weekStart, weekEnd time.Time, text string, generatedAt time.Time) (*model.WeeklySummary, error) {
	start := weekStart.Format(dayFormat)
	if _, err := s.db.Exec(`DELETE FROM weekly_summaries WHERE week_start = ?`, start); err != nil {
		return nil, fmt.Errorf("delete summary: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO weekly_summaries (week_start, week_end, summary_text, generated_at) VALUES (?, ?, ?, ?)`,
		start, weekEnd.Format(dayFormat), text, generatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SummaryStore) GetByID(id int64) (*model.WeeklySummary, error) {
	row := s.db.QueryRow(`SELECT `+summaryCols+` FROM weekly_summaries WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return sum, nil
}

func (s *SummaryStore) List(limit int) ([]model.WeeklySummary, error) {
	rows, err := s.db.Query(
		`SELECT `+summaryCols+` FROM weekly_summaries ORDER BY week_start DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.WeeklySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, *sum)
	}
	return summaries, rows.Err()
}

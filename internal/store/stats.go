package store

import (
	"fmt"
	"time"
)

// StatsStore answers the aggregate questions the weekly summary needs.
type StatsStore struct {
	db DBTX
}

func NewStatsStore(db DBTX) *StatsStore {
	return &StatsStore{db: db}
}

// UserWeekStats is one user's activity in a reporting window.
type UserWeekStats struct {
	Name          string `json:"name"`
	Completions   int    `json:"completions"`
	PointsEarned  int    `json:"points_earned"`
	CurrentStreak int    `json:"current_streak"`
	WeeklyPoints  int    `json:"weekly_points"`
}

// RoomWeekStats is one room's instance outcomes in a reporting window.
type RoomWeekStats struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Skipped   int    `json:"skipped"`
}

// UserStats aggregates per-user completions and points for days in
// [from, to], inclusive of both calendar days.
func (s *StatsStore) UserStats(from, to time.Time) ([]UserWeekStats, error) {
	rows, err := s.db.Query(
		`SELECT
			CASE WHEN u.display_name != '' THEN u.display_name ELSE u.username END,
			COALESCE(COUNT(co.id), 0),
			COALESCE(SUM(co.points_earned), 0),
			u.current_streak,
			u.weekly_points
		 FROM users u
		 LEFT JOIN completions co ON co.user_id = u.id
			AND date(co.completed_at) >= ? AND date(co.completed_at) <= ?
		 GROUP BY u.id
		 ORDER BY u.username ASC`,
		from.Format(dayFormat), to.Format(dayFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	defer rows.Close()

	var stats []UserWeekStats
	for rows.Next() {
		var st UserWeekStats
		if err := rows.Scan(&st.Name, &st.Completions, &st.PointsEarned, &st.CurrentStreak, &st.WeeklyPoints); err != nil {
			return nil, fmt.Errorf("scan user stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// RoomStats aggregates per-room instance outcomes for due dates in [from, to].
func (s *StatsStore) RoomStats(from, to time.Time) ([]RoomWeekStats, error) {
	rows, err := s.db.Query(
		`SELECT r.name,
			COALESCE(SUM(i.status = 'completed'), 0),
			COALESCE(SUM(i.status = 'pending'), 0),
			COALESCE(SUM(i.status = 'skipped'), 0)
		 FROM rooms r
		 LEFT JOIN chores c ON c.room_id = r.id
		 LEFT JOIN chore_instances i ON i.chore_id = c.id
			AND i.due_date >= ? AND i.due_date <= ?
		 GROUP BY r.id
		 ORDER BY r.sort_order ASC, r.name ASC`,
		from.Format(dayFormat), to.Format(dayFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("room stats: %w", err)
	}
	defer rows.Close()

	var stats []RoomWeekStats
	for rows.Next() {
		var st RoomWeekStats
		if err := rows.Scan(&st.Name, &st.Completed, &st.Pending, &st.Skipped); err != nil {
			return nil, fmt.Errorf("scan room stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// InstanceCounts returns total and completed instance counts with due dates
// in [from, to].
func (s *StatsStore) InstanceCounts(from, to time.Time) (total, completed int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(status = 'completed'), 0)
		 FROM chore_instances WHERE due_date >= ? AND due_date <= ?`,
		from.Format(dayFormat), to.Format(dayFormat),
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("instance counts: %w", err)
	}
	return total, completed, nil
}

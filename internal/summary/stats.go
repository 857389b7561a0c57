package summary

import (
	"fmt"
	"math"
	"time"

	"github.com/mboehm/chorequest/internal/store"
)

// WeekStats is the aggregate picture of one reporting week. It is serialized
// as-is into the generation prompt and exposed on the stats endpoint.
type WeekStats struct {
	WeekStart            string                `json:"week_start"`
	WeekEnd              string                `json:"week_end"`
	Users                []store.UserWeekStats `json:"users"`
	Rooms                []store.RoomWeekStats `json:"rooms"`
	AchievementsUnlocked []store.UnlockRecord  `json:"achievements_unlocked"`
	TotalTasks           int                   `json:"total_tasks"`
	CompletedTasks       int                   `json:"completed_tasks"`
	CompletionRate       float64               `json:"completion_rate_percent"`
}

// GatherStats collects the week's activity for days in [weekStart, weekEnd].
func GatherStats(stats *store.StatsStore, achievements *store.AchievementStore, weekStart, weekEnd time.Time) (*WeekStats, error) {
	users, err := stats.UserStats(weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("gather user stats: %w", err)
	}
	rooms, err := stats.RoomStats(weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("gather room stats: %w", err)
	}
	unlocks, err := achievements.UnlocksBetween(weekStart, weekEnd.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("gather unlocks: %w", err)
	}
	total, completed, err := stats.InstanceCounts(weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("gather instance counts: %w", err)
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*1000) / 10
	}

	return &WeekStats{
		WeekStart:            weekStart.Format("2006-01-02"),
		WeekEnd:              weekEnd.Format("2006-01-02"),
		Users:                users,
		Rooms:                rooms,
		AchievementsUnlocked: unlocks,
		TotalTasks:           total,
		CompletedTasks:       completed,
		CompletionRate:       rate,
	}, nil
}

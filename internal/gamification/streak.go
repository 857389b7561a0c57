package gamification

import "time"

// Streak bonus tiers. A week-long streak earns the big multiplier, three
// days the small one.
const (
	streakTierWeek    = 7
	streakTierShort   = 3
	streakWeekMult    = 1.25
	streakShortMult   = 1.10
	streakDefaultMult = 1.00
)

// StreakUpdate is the outcome of recomputing a user's streak.
type StreakUpdate struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	BonusActive   bool `json:"streak_bonus_active"`
}

// ComputeStreak counts consecutive calendar days with at least one
// completion, walking backward from today. The first missing day stops the
// count, so a set without today yields 0. Dates are compared by calendar
// day; duplicates and order do not matter.
func ComputeStreak(dates []time.Time, today time.Time) int {
	have := make(map[string]bool, len(dates))
	for _, d := range dates {
		have[d.Format("2006-01-02")] = true
	}

	streak := 0
	for day := today; have[day.Format("2006-01-02")]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// StreakMultiplier returns the bonus multiplier for a streak length.
// Pure function of the streak, no side effects.
func StreakMultiplier(streakDays int) float64 {
	switch {
	case streakDays >= streakTierWeek:
		return streakWeekMult
	case streakDays >= streakTierShort:
		return streakShortMult
	default:
		return streakDefaultMult
	}
}

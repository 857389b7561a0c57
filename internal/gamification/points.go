package gamification

import (
	"math"
	"time"
)

const (
	earlyBonusCutoffHour = 12
	earlyBonusRate       = 0.20
	roomCompleteRate     = 0.50
)

// Breakdown itemizes every component that contributed to a point award, so
// clients can show why a completion was worth what it was.
type Breakdown struct {
	BasePoints          int     `json:"base_points"`
	RoomMultiplier      float64 `json:"room_multiplier"`
	EarlyBonus          float64 `json:"early_bonus"`
	StreakBonus         float64 `json:"streak_bonus"`
	RoomCompletionBonus float64 `json:"room_completion_bonus"`
	TotalPoints         int     `json:"total_points"`
	BonusPoints         int     `json:"bonus_points"`
}

// CalculatePoints computes the award for one completion. currentStreak must
// be the streak as of this completion (the streak update runs first);
// passing it explicitly keeps that ordering dependency visible in the
// signature instead of hidden in call order.
//
// total = base * roomMultiplier * (1 + early + streak + roomComplete),
// rounded half-up (round(x) = floor(x + 0.5)); bonus points are clamped at
// zero so a sub-1.0 room multiplier never produces a negative bonus.
func CalculatePoints(basePoints int, roomMultiplier float64, completionTime time.Time, currentStreak int, roomComplete bool) Breakdown {
	earlyBonus := 0.0
	if completionTime.Hour() < earlyBonusCutoffHour {
		earlyBonus = earlyBonusRate
	}

	streakBonus := StreakMultiplier(currentStreak) - 1.0

	roomBonus := 0.0
	if roomComplete {
		roomBonus = roomCompleteRate
	}

	totalMultiplier := roomMultiplier * (1.0 + earlyBonus + streakBonus + roomBonus)
	totalPoints := int(math.Floor(float64(basePoints)*totalMultiplier + 0.5))
	if totalPoints < 0 {
		totalPoints = 0
	}

	bonusPoints := totalPoints - basePoints
	if bonusPoints < 0 {
		bonusPoints = 0
	}

	return Breakdown{
		BasePoints:          basePoints,
		RoomMultiplier:      roomMultiplier,
		EarlyBonus:          earlyBonus,
		StreakBonus:         streakBonus,
		RoomCompletionBonus: roomBonus,
		TotalPoints:         totalPoints,
		BonusPoints:         bonusPoints,
	}
}

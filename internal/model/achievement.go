package model

import "time"

// Achievement is static reference data: a named milestone with a criteria
// rule and a one-time point reward per user. Criteria fields are stored as
// columns rather than a JSON blob so the criteria kind stays a closed set.
type Achievement struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	CriteriaType   string `json:"criteria_type"`
	CriteriaValue  int    `json:"criteria_value"`
	CriteriaRoomID *int64 `json:"criteria_room_id"`
	PointsReward   int    `json:"points_reward"`
}

// UserAchievement records a single unlock. Unique per (user, achievement).
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

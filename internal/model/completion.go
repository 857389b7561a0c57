package model

import "time"

// Completion is the immutable record of a user finishing a chore instance.
// It is created exactly once per completed instance and never updated.
type Completion struct {
	ID           int64     `json:"id"`
	InstanceID   int64     `json:"instance_id"`
	UserID       int64     `json:"user_id"`
	CompletedAt  time.Time `json:"completed_at"`
	PointsEarned int       `json:"points_earned"`
	BonusPoints  int       `json:"bonus_points"`
	Notes        string    `json:"notes,omitempty"`
}

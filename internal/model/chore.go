package model

import "time"

// InstanceStatus is the lifecycle state of a ChoreInstance. Pending is the
// only non-terminal state: an instance moves to completed or skipped exactly
// once and never transitions again.
type InstanceStatus string

const (
	StatusPending   InstanceStatus = "pending"
	StatusCompleted InstanceStatus = "completed"
	StatusSkipped   InstanceStatus = "skipped"
)

// Terminal reports whether the status permits no further transitions.
func (s InstanceStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Chore is the recurring template a scheduled instance is generated from.
type Chore struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	RoomID           int64     `json:"room_id"`
	BasePoints       int       `json:"base_points"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Recurrence       string    `json:"recurrence"`
	RecurrenceDay    *int      `json:"recurrence_day"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChoreInstance is one concrete occurrence of a chore due on a specific date.
type ChoreInstance struct {
	ID             int64          `json:"id"`
	ChoreID        int64          `json:"chore_id"`
	DueDate        time.Time      `json:"due_date"`
	Status         InstanceStatus `json:"status"`
	AssignedUserID *int64         `json:"assigned_user_id"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ChoreInstanceDetail joins an instance with its template and room for listings.
type ChoreInstanceDetail struct {
	ChoreInstance
	Title      string `json:"title"`
	RoomID     int64  `json:"room_id"`
	RoomName   string `json:"room_name"`
	BasePoints int    `json:"base_points"`
}

package gamification

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
)

// TaskCompletedEvent is sent to notifiers after a completion commits.
type TaskCompletedEvent struct {
	InstanceID int64  `json:"instance_id"`
	Title      string `json:"title"`
	UserName   string `json:"user_name"`
	Points     int    `json:"points"`
	RoomName   string `json:"room_name"`
}

// AchievementUnlockedEvent is sent to notifiers for each new unlock.
type AchievementUnlockedEvent struct {
	UserName        string `json:"user_name"`
	AchievementName string `json:"achievement_name"`
	Icon            string `json:"icon"`
	PointsReward    int    `json:"points_reward"`
}

// Notifier receives completion events after the transaction commits.
// Implementations must be best-effort: a failing notifier never fails or
// retries the completion.
type Notifier interface {
	TaskCompleted(TaskCompletedEvent)
	AchievementUnlocked(AchievementUnlockedEvent)
}

// CompletionResult is everything a completion produced, returned to the caller.
type CompletionResult struct {
	Completion *model.Completion     `json:"completion"`
	Breakdown  Breakdown             `json:"bonus_breakdown"`
	Streak     StreakUpdate          `json:"streak"`
	Unlocked   []UnlockedAchievement `json:"unlocked_achievements"`
}

// Service runs the completion pipeline: streak update, point calculation,
// persistence, achievement evaluation, notification. Steps before
// notification share one transaction so a failure anywhere rolls back
// without partial point credit.
type Service struct {
	db        *sql.DB
	notifiers []Notifier
	logger    *slog.Logger

	// now is the time source; all pipeline day math runs in UTC. Tests
	// override this for wall-clock independence.
	now func() time.Time
}

func NewService(db *sql.DB, logger *slog.Logger, notifiers ...Notifier) *Service {
	return &Service{
		db:        db,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

// CompleteInstance marks a pending instance completed on behalf of a user
// and returns the full result. Fails with ErrInstanceNotFound,
// ErrUserNotFound, or ErrAlreadyResolved; any mid-pipeline failure rolls
// the whole completion back.
func (s *Service) CompleteInstance(instanceID, userID int64, notes string) (*CompletionResult, error) {
	now := s.now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	chores := store.NewChoreStore(tx)
	users := store.NewUserStore(tx)
	rooms := store.NewRoomStore(tx)
	completions := store.NewCompletionStore(tx)
	achievements := store.NewAchievementStore(tx)

	instance, err := chores.GetInstance(instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrInstanceNotFound
	}

	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	chore, err := chores.GetByID(instance.ChoreID)
	if err != nil {
		return nil, err
	}
	if chore == nil {
		return nil, fmt.Errorf("chore %d missing for instance %d", instance.ChoreID, instanceID)
	}

	room, err := rooms.GetByID(chore.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %d missing for chore %d", chore.RoomID, chore.ID)
	}

	// The guarded status flip is the concurrency gate: a second concurrent
	// completion of the same instance loses here and fails cleanly.
	resolved, err := chores.ResolveInstance(instanceID, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, ErrAlreadyResolved
	}

	// Streak first, so the points calculation sees the streak including
	// today. The completion row is not inserted yet, so today is added to
	// the date set by hand.
	dates, err := completions.DistinctDates(userID)
	if err != nil {
		return nil, err
	}
	streak := ComputeStreak(append(dates, now), now)
	if err := users.SetStreak(userID, streak); err != nil {
		return nil, err
	}
	user.CurrentStreak = streak
	if streak > user.LongestStreak {
		user.LongestStreak = streak
	}
	streakUpdate := StreakUpdate{
		CurrentStreak: streak,
		LongestStreak: user.LongestStreak,
		BonusActive:   StreakMultiplier(streak) > 1.0,
	}

	// Room completion counts the instance just flipped, since the check
	// runs inside the same transaction.
	total, completedCount, err := chores.RoomDueCounts(room.ID, now)
	if err != nil {
		return nil, err
	}
	roomComplete := total > 0 && completedCount >= total

	breakdown := CalculatePoints(chore.BasePoints, room.PointMultiplier, now, streak, roomComplete)

	completion, err := completions.Create(instanceID, userID, now, breakdown.TotalPoints, breakdown.BonusPoints, notes)
	if err != nil {
		return nil, err
	}
	if err := users.CreditPoints(userID, breakdown.TotalPoints); err != nil {
		return nil, err
	}
	user.TotalPoints += breakdown.TotalPoints
	user.WeeklyPoints += breakdown.TotalPoints

	engine := NewEngine(achievements, completions, users)
	unlocked, err := engine.Evaluate(user, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	for _, n := range s.notifiers {
		n.TaskCompleted(TaskCompletedEvent{
			InstanceID: instanceID,
			Title:      chore.Title,
			UserName:   user.Name(),
			Points:     breakdown.TotalPoints,
			RoomName:   room.Name,
		})
		for _, a := range unlocked {
			n.AchievementUnlocked(AchievementUnlockedEvent{
				UserName:        user.Name(),
				AchievementName: a.Name,
				Icon:            a.Icon,
				PointsReward:    a.PointsReward,
			})
		}
	}

	return &CompletionResult{
		Completion: completion,
		Breakdown:  breakdown,
		Streak:     streakUpdate,
		Unlocked:   unlocked,
	}, nil
}

// SkipInstance marks a pending instance skipped. No points, no streak.
func (s *Service) SkipInstance(instanceID int64) error {
	chores := store.NewChoreStore(s.db)

	instance, err := chores.GetInstance(instanceID)
	if err != nil {
		return err
	}
	if instance == nil {
		return ErrInstanceNotFound
	}

	resolved, err := chores.ResolveInstance(instanceID, model.StatusSkipped)
	if err != nil {
		return err
	}
	if !resolved {
		return ErrAlreadyResolved
	}
	return nil
}

// Progress returns the read-only achievement progress view for a user.
func (s *Service) Progress(userID int64) ([]AchievementProgress, error) {
	users := store.NewUserStore(s.db)
	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	engine := NewEngine(
		store.NewAchievementStore(s.db),
		store.NewCompletionStore(s.db),
		users,
	)
	return engine.Progress(user)
}

// WeeklyReset evaluates achievements for every user (so the weekly winner
// unlocks while the week's points still stand) and then zeroes everyone's
// weekly points, all in one transaction.
func (s *Service) WeeklyReset() error {
	now := s.now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	users := store.NewUserStore(tx)
	engine := NewEngine(
		store.NewAchievementStore(tx),
		store.NewCompletionStore(tx),
		users,
	)

	all, err := users.List()
	if err != nil {
		return err
	}
	for i := range all {
		unlocked, err := engine.Evaluate(&all[i], now)
		if err != nil {
			return fmt.Errorf("evaluate user %d: %w", all[i].ID, err)
		}
		if len(unlocked) > 0 {
			s.logger.Info("weekly evaluation unlocked achievements",
				"user", all[i].Username, "count", len(unlocked))
		}
	}

	if err := users.ResetWeeklyPoints(); err != nil {
		return err
	}

	return tx.Commit()
}

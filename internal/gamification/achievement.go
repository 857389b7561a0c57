package gamification

import (
	"fmt"
	"math"
	"time"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
)

// CriteriaKind is the closed set of achievement criteria. Adding a kind
// means extending currentValue's switch; unknown kinds fail at parse time
// rather than silently never unlocking.
type CriteriaKind string

const (
	CriteriaTotalTasks   CriteriaKind = "total_tasks"
	CriteriaRoomTasks    CriteriaKind = "room_tasks"
	CriteriaStreak       CriteriaKind = "streak"
	CriteriaWeeklyWinner CriteriaKind = "weekly_winner"
)

// Criteria is the typed form of an achievement's unlock rule.
type Criteria struct {
	Kind   CriteriaKind
	Target int
	RoomID *int64
}

// ParseCriteria reads the criteria columns of an achievement into a typed
// Criteria. The target is kept raw: a zero target is satisfied immediately.
// The progress view floors its divisor separately.
func ParseCriteria(a *model.Achievement) (Criteria, error) {
	kind := CriteriaKind(a.CriteriaType)
	switch kind {
	case CriteriaTotalTasks, CriteriaRoomTasks, CriteriaStreak, CriteriaWeeklyWinner:
	default:
		return Criteria{}, fmt.Errorf("unknown criteria type %q for achievement %d", a.CriteriaType, a.ID)
	}
	return Criteria{Kind: kind, Target: a.CriteriaValue, RoomID: a.CriteriaRoomID}, nil
}

// UnlockedAchievement describes one achievement unlocked during a pipeline run.
type UnlockedAchievement struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	PointsReward int    `json:"points_reward"`
}

// AchievementProgress is the read-only progress view for one achievement.
type AchievementProgress struct {
	Achievement     model.Achievement `json:"achievement"`
	Unlocked        bool              `json:"unlocked"`
	UnlockedAt      *time.Time        `json:"unlocked_at,omitempty"`
	CurrentValue    int               `json:"current_value"`
	TargetValue     int               `json:"target_value"`
	ProgressPercent float64           `json:"progress_percent"`
}

// Engine evaluates achievement criteria against a user's aggregate state.
type Engine struct {
	achievements *store.AchievementStore
	completions  *store.CompletionStore
	users        *store.UserStore
}

func NewEngine(achievements *store.AchievementStore, completions *store.CompletionStore, users *store.UserStore) *Engine {
	return &Engine{achievements: achievements, completions: completions, users: users}
}

// currentValue computes how far the user is toward a criteria target.
func (e *Engine) currentValue(user *model.User, c Criteria) (int, error) {
	switch c.Kind {
	case CriteriaTotalTasks:
		return e.completions.CountByUser(user.ID)

	case CriteriaRoomTasks:
		if c.RoomID != nil {
			return e.completions.CountByUserInRoom(user.ID, *c.RoomID)
		}
		// Unscoped: the user's best single room.
		return e.completions.MaxRoomCountByUser(user.ID)

	case CriteriaStreak:
		return user.CurrentStreak, nil

	case CriteriaWeeklyWinner:
		leaderID, ok, err := e.users.WeeklyLeader()
		if err != nil {
			return 0, err
		}
		if ok && leaderID == user.ID {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unhandled criteria kind %q", c.Kind)
}

// Evaluate unlocks every achievement whose criteria the user now satisfies
// and credits its reward to the user's point totals. Criteria are checked
// against state as of the start of the batch, then all rewards are applied,
// so the outcome cannot depend on evaluation order. Already-unlocked
// achievements are skipped; a concurrent duplicate unlock is a silent no-op.
func (e *Engine) Evaluate(user *model.User, now time.Time) ([]UnlockedAchievement, error) {
	unlocked, err := e.achievements.UnlockedIDs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}

	all, err := e.achievements.List()
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	var satisfied []model.Achievement
	for _, a := range all {
		if _, ok := unlocked[a.ID]; ok {
			continue
		}
		c, err := ParseCriteria(&a)
		if err != nil {
			return nil, err
		}
		current, err := e.currentValue(user, c)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", a.Name, err)
		}
		if current >= c.Target {
			satisfied = append(satisfied, a)
		}
	}

	var newly []UnlockedAchievement
	for _, a := range satisfied {
		created, err := e.achievements.CreateUnlock(user.ID, a.ID, now)
		if err != nil {
			return nil, fmt.Errorf("unlock %q: %w", a.Name, err)
		}
		if !created {
			// Raced with another unlock of the same achievement; never
			// credit twice.
			continue
		}
		if err := e.users.CreditPoints(user.ID, a.PointsReward); err != nil {
			return nil, fmt.Errorf("credit reward for %q: %w", a.Name, err)
		}
		user.TotalPoints += a.PointsReward
		user.WeeklyPoints += a.PointsReward
		newly = append(newly, UnlockedAchievement{
			ID:           a.ID,
			Name:         a.Name,
			Description:  a.Description,
			Icon:         a.Icon,
			PointsReward: a.PointsReward,
		})
	}

	return newly, nil
}

// Progress reports per-achievement progress for a user. progress_percent is
// rounded to one decimal and capped at 100.
func (e *Engine) Progress(user *model.User) ([]AchievementProgress, error) {
	unlocked, err := e.achievements.UnlockedIDs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}

	all, err := e.achievements.List()
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	progress := make([]AchievementProgress, 0, len(all))
	for _, a := range all {
		c, err := ParseCriteria(&a)
		if err != nil {
			return nil, err
		}
		current, err := e.currentValue(user, c)
		if err != nil {
			return nil, fmt.Errorf("progress for %q: %w", a.Name, err)
		}

		// The display target is floored at 1 so percent never divides by
		// zero; the unlock check in Evaluate uses the raw target.
		target := c.Target
		if target < 1 {
			target = 1
		}
		percent := math.Round(float64(current)/float64(target)*1000) / 10
		if percent > 100 {
			percent = 100
		}

		p := AchievementProgress{
			Achievement:     a,
			CurrentValue:    current,
			TargetValue:     target,
			ProgressPercent: percent,
		}
		if at, ok := unlocked[a.ID]; ok {
			p.Unlocked = true
			unlockedAt := at
			p.UnlockedAt = &unlockedAt
		}
		progress = append(progress, p)
	}
	return progress, nil
}

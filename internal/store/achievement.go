package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mboehm/chorequest/internal/model"
)

type AchievementStore struct {
	db DBTX
}

func NewAchievementStore(db DBTX) *AchievementStore {
	return &AchievementStore{db: db}
}

const achievementCols = `id, name, description, icon, criteria_type, criteria_value, criteria_room_id, points_reward`

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	var roomID sql.NullInt64
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Description, &a.Icon,
		&a.CriteriaType, &a.CriteriaValue, &roomID, &a.PointsReward,
	)
	if err != nil {
		return nil, err
	}
	if roomID.Valid {
		a.CriteriaRoomID = &roomID.Int64
	}
	return &a, nil
}

func (s *AchievementStore) List() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// UnlockedIDs returns the set of achievement ids the user has unlocked.
func (s *AchievementStore) UnlockedIDs(userID int64) (map[int64]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT achievement_id, unlocked_at FROM user_achievements WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[int64]time.Time)
	for rows.Next() {
		var id int64
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		unlocked[id] = at
	}
	return unlocked, rows.Err()
}

// CreateUnlock records an unlock. The (user_id, achievement_id) unique
// constraint makes this idempotent: created is false when the user already
// holds the achievement, and no row is written.
func (s *AchievementStore) CreateUnlock(userID, achievementID int64, unlockedAt time.Time) (created bool, err error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`,
		userID, achievementID, unlockedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert unlock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *AchievementStore) CountUnlocks(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unlocks: %w", err)
	}
	return n, nil
}

// UserUnlock pairs an unlocked achievement with its unlock time.
type UserUnlock struct {
	Achievement model.Achievement `json:"achievement"`
	UnlockedAt  time.Time         `json:"unlocked_at"`
}

// ListUserUnlocks lists a user's unlocked achievements in unlock order.
func (s *AchievementStore) ListUserUnlocks(userID int64) ([]UserUnlock, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.name, a.description, a.icon, a.criteria_type, a.criteria_value, a.criteria_room_id, a.points_reward, ua.unlocked_at
		 FROM user_achievements ua
		 JOIN achievements a ON a.id = ua.achievement_id
		 WHERE ua.user_id = ?
		 ORDER BY ua.unlocked_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user unlocks: %w", err)
	}
	defer rows.Close()

	var unlocks []UserUnlock
	for rows.Next() {
		var u UserUnlock
		var roomID sql.NullInt64
		err := rows.Scan(
			&u.Achievement.ID, &u.Achievement.Name, &u.Achievement.Description, &u.Achievement.Icon,
			&u.Achievement.CriteriaType, &u.Achievement.CriteriaValue, &roomID, &u.Achievement.PointsReward,
			&u.UnlockedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user unlock: %w", err)
		}
		if roomID.Valid {
			u.Achievement.CriteriaRoomID = &roomID.Int64
		}
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// UnlocksBetween lists achievement and user names for unlocks in [from, to),
// for the weekly summary.
func (s *AchievementStore) UnlocksBetween(from, to time.Time) ([]UnlockRecord, error) {
	rows, err := s.db.Query(
		`SELECT a.name, u.display_name, u.username
		 FROM user_achievements ua
		 JOIN achievements a ON a.id = ua.achievement_id
		 JOIN users u ON u.id = ua.user_id
		 WHERE ua.unlocked_at >= ? AND ua.unlocked_at < ?
		 ORDER BY ua.unlocked_at ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("unlocks between: %w", err)
	}
	defer rows.Close()

	var unlocks []UnlockRecord
	for rows.Next() {
		var rec UnlockRecord
		var displayName string
		if err := rows.Scan(&rec.Achievement, &displayName, &rec.User); err != nil {
			return nil, fmt.Errorf("scan unlock record: %w", err)
		}
		if displayName != "" {
			rec.User = displayName
		}
		unlocks = append(unlocks, rec)
	}
	return unlocks, rows.Err()
}

// UnlockRecord names one unlock for reporting.
type UnlockRecord struct {
	Achievement string `json:"achievement"`
	User        string `json:"user"`
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mboehm/chorequest/internal/model"
)

type CompletionStore struct {
	db DBTX
}

func NewCompletionStore(db DBTX) *CompletionStore {
	return &CompletionStore{db: db}
}

const completionCols = `id, instance_id, user_id, completed_at, points_earned, bonus_points, notes`

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	err := scanner.Scan(
		&c.ID, &c.InstanceID, &c.UserID, &c.CompletedAt,
		&c.PointsEarned, &c.BonusPoints, &c.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CompletionStore) Create(instanceID, userID int64, completedAt time.Time, pointsEarned, bonusPoints int, notes string) (*model.Completion, error) {
	result, err := s.db.Exec(
		`INSERT INTO completions (instance_id, user_id, completed_at, points_earned, bonus_points, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		instanceID, userID, completedAt.UTC(), pointsEarned, bonusPoints, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CompletionStore) GetByID(id int64) (*model.Completion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// DistinctDates returns every calendar day on which the user completed
// anything, newest first. Multiple completions on one day collapse to one
// entry, which is what streak counting needs.
func (s *CompletionStore) DistinctDates(userID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT date(completed_at) FROM completions WHERE user_id = ? ORDER BY 1 DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := time.ParseInLocation(dayFormat, day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", day, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *CompletionStore) CountByUser(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}

func (s *CompletionStore) CountByUserInRoom(userID, roomID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions co
		 JOIN chore_instances i ON i.id = co.instance_id
		 JOIN chores c ON c.id = i.chore_id
		 WHERE co.user_id = ? AND c.room_id = ?`,
		userID, roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count room completions: %w", err)
	}
	return n, nil
}

// MaxRoomCountByUser returns the user's highest completion count across any
// single room, for room-scoped achievements with no room bound.
func (s *CompletionStore) MaxRoomCountByUser(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(cnt), 0) FROM (
			SELECT COUNT(*) AS cnt FROM completions co
			JOIN chore_instances i ON i.id = co.instance_id
			JOIN chores c ON c.id = i.chore_id
			WHERE co.user_id = ?
			GROUP BY c.room_id
		)`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("max room count: %w", err)
	}
	return n, nil
}

// CountByUserSince counts the user's completions on or after the given day.
func (s *CompletionStore) CountByUserSince(userID int64, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions WHERE user_id = ? AND date(completed_at) >= ?`,
		userID, since.Format(dayFormat),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions since: %w", err)
	}
	return n, nil
}

// FavoriteRoom returns the name of the room the user completed the most
// chores in, or "" when the user has no completions.
func (s *CompletionStore) FavoriteRoom(userID int64) (string, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT r.name FROM completions co
		 JOIN chore_instances i ON i.id = co.instance_id
		 JOIN chores c ON c.id = i.chore_id
		 JOIN rooms r ON r.id = c.room_id
		 WHERE co.user_id = ?
		 GROUP BY r.id
		 ORDER BY COUNT(*) DESC
		 LIMIT 1`,
		userID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("favorite room: %w", err)
	}
	return name, nil
}

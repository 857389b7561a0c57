package store

import (
	"database/sql"
	"fmt"

	"github.com/mboehm/chorequest/internal/model"
)

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, username, display_name, avatar_url, total_points, weekly_points, current_streak, longest_streak, ha_user_id, created_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var haUserID sql.NullString
	err := scanner.Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL,
		&u.TotalPoints, &u.WeeklyPoints, &u.CurrentStreak, &u.LongestStreak,
		&haUserID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if haUserID.Valid {
		u.HAUserID = &haUserID.String
	}
	return &u, nil
}

func (s *UserStore) Create(username, displayName string, haUserID *string) (*model.User, error) {
	var haID sql.NullString
	if haUserID != nil {
		haID = sql.NullString{String: *haUserID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO users (username, display_name, ha_user_id) VALUES (?, ?, ?)`,
		username, displayName, haID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByHAUserID(haUserID string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE ha_user_id = ?`, haUserID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by ha id: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Leaderboard lists users ordered by lifetime points, highest first.
func (s *UserStore) Leaderboard() ([]model.User, error) {
	return s.listOrdered(`total_points DESC, username ASC`)
}

// WeeklyLeaderboard lists users ordered by this week's points, highest first.
func (s *UserStore) WeeklyLeaderboard() ([]model.User, error) {
	return s.listOrdered(`weekly_points DESC, username ASC`)
}

func (s *UserStore) listOrdered(orderBy string) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY ` + orderBy)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(id int64, displayName, avatarURL string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET display_name = ?, avatar_url = ? WHERE id = ?`,
		displayName, avatarURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

// CreditPoints adds points to both lifetime and weekly totals.
func (s *UserStore) CreditPoints(id int64, points int) error {
	_, err := s.db.Exec(
		`UPDATE users SET total_points = total_points + ?, weekly_points = weekly_points + ? WHERE id = ?`,
		points, points, id,
	)
	if err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	return nil
}

// SetStreak writes the current streak and raises the longest-streak
// high-water mark. longest_streak never decreases.
func (s *UserStore) SetStreak(id int64, current int) error {
	_, err := s.db.Exec(
		`UPDATE users SET current_streak = ?, longest_streak = MAX(longest_streak, ?) WHERE id = ?`,
		current, current, id,
	)
	if err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	return nil
}

// ResetWeeklyPoints zeroes weekly_points for every user.
func (s *UserStore) ResetWeeklyPoints() error {
	_, err := s.db.Exec(`UPDATE users SET weekly_points = 0`)
	if err != nil {
		return fmt.Errorf("reset weekly points: %w", err)
	}
	return nil
}

// WeeklyLeader returns the id of the user holding the strictly-highest
// nonzero weekly_points. ok is false when nobody leads: no users, a zero
// maximum, or a tie at the top.
func (s *UserStore) WeeklyLeader() (leaderID int64, ok bool, err error) {
	var max int
	err = s.db.QueryRow(`SELECT COALESCE(MAX(weekly_points), 0) FROM users`).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max weekly points: %w", err)
	}
	if max <= 0 {
		return 0, false, nil
	}

	rows, err := s.db.Query(`SELECT id FROM users WHERE weekly_points = ?`, max)
	if err != nil {
		return 0, false, fmt.Errorf("weekly leader: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, false, fmt.Errorf("scan leader: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, false, err
	}
	if len(ids) != 1 {
		// Ties mean no winner.
		return 0, false, nil
	}
	return ids[0], true, nil
}

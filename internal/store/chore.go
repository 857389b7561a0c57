package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mboehm/chorequest/internal/model"
)

type ChoreStore struct {
	db DBTX
}

func NewChoreStore(db DBTX) *ChoreStore {
	return &ChoreStore{db: db}
}

// --- Chore templates ---

const choreCols = `id, title, description, room_id, base_points, estimated_minutes, recurrence, recurrence_day, is_active, created_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var recDay sql.NullInt64
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &c.RoomID, &c.BasePoints,
		&c.EstimatedMinutes, &c.Recurrence, &recDay, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recDay.Valid {
		day := int(recDay.Int64)
		c.RecurrenceDay = &day
	}
	return &c, nil
}

func (s *ChoreStore) Create(title, description string, roomID int64, basePoints, estimatedMinutes int, recurrence string, recurrenceDay *int) (*model.Chore, error) {
	var recDay sql.NullInt64
	if recurrenceDay != nil {
		recDay = sql.NullInt64{Int64: int64(*recurrenceDay), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO chores (title, description, room_id, base_points, estimated_minutes, recurrence, recurrence_day) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, description, roomID, basePoints, estimatedMinutes, recurrence, recDay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) List(roomID *int64, activeOnly bool) ([]model.Chore, error) {
	query := `SELECT ` + choreCols + ` FROM chores`
	var conds []string
	var args []any
	if roomID != nil {
		conds = append(conds, "room_id = ?")
		args = append(args, *roomID)
	}
	if activeOnly {
		conds = append(conds, "is_active = 1")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY title ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(id int64, title, description string, roomID int64, basePoints, estimatedMinutes int, recurrence string, recurrenceDay *int, isActive bool) (*model.Chore, error) {
	var recDay sql.NullInt64
	if recurrenceDay != nil {
		recDay = sql.NullInt64{Int64: int64(*recurrenceDay), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, room_id = ?, base_points = ?, estimated_minutes = ?, recurrence = ?, recurrence_day = ?, is_active = ? WHERE id = ?`,
		title, description, roomID, basePoints, estimatedMinutes, recurrence, recDay, isActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// --- Chore instances ---

const instanceCols = `id, chore_id, due_date, status, assigned_user_id, created_at`

func scanInstance(scanner interface{ Scan(...any) error }) (*model.ChoreInstance, error) {
	var i model.ChoreInstance
	var assigned sql.NullInt64
	err := scanner.Scan(&i.ID, &i.ChoreID, &i.DueDate, &i.Status, &assigned, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		i.AssignedUserID = &assigned.Int64
	}
	return &i, nil
}

// CreateInstance inserts a pending instance for the chore and date. The
// (chore_id, due_date) unique constraint makes generation idempotent:
// created is false when the instance already existed.
func (s *ChoreStore) CreateInstance(choreID int64, dueDate time.Time) (created bool, err error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO chore_instances (chore_id, due_date) VALUES (?, ?)`,
		choreID, dueDate.Format(dayFormat),
	)
	if err != nil {
		return false, fmt.Errorf("insert instance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ChoreStore) GetInstance(id int64) (*model.ChoreInstance, error) {
	row := s.db.QueryRow(`SELECT `+instanceCols+` FROM chore_instances WHERE id = ?`, id)
	i, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return i, nil
}

// InstanceCount returns how many instances exist for a chore, any date.
// Used to decide whether a one-off chore still needs an instance.
func (s *ChoreStore) InstanceCount(choreID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chore_instances WHERE chore_id = ?`, choreID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("instance count: %w", err)
	}
	return n, nil
}

// InstanceFilter narrows ListInstances. Nil fields match everything.
type InstanceFilter struct {
	RoomID  *int64
	UserID  *int64
	Status  *model.InstanceStatus
	DueDate *time.Time
}

const instanceDetailCols = `i.id, i.chore_id, i.due_date, i.status, i.assigned_user_id, i.created_at, c.title, c.room_id, r.name, c.base_points`

func scanInstanceDetail(scanner interface{ Scan(...any) error }) (*model.ChoreInstanceDetail, error) {
	var d model.ChoreInstanceDetail
	var assigned sql.NullInt64
	err := scanner.Scan(
		&d.ID, &d.ChoreID, &d.DueDate, &d.Status, &assigned, &d.CreatedAt,
		&d.Title, &d.RoomID, &d.RoomName, &d.BasePoints,
	)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		d.AssignedUserID = &assigned.Int64
	}
	return &d, nil
}

func (s *ChoreStore) ListInstances(f InstanceFilter) ([]model.ChoreInstanceDetail, error) {
	query := `SELECT ` + instanceDetailCols + `
		FROM chore_instances i
		JOIN chores c ON c.id = i.chore_id
		JOIN rooms r ON r.id = c.room_id`
	var conds []string
	var args []any
	if f.RoomID != nil {
		conds = append(conds, "c.room_id = ?")
		args = append(args, *f.RoomID)
	}
	if f.UserID != nil {
		conds = append(conds, "i.assigned_user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Status != nil {
		conds = append(conds, "i.status = ?")
		args = append(args, string(*f.Status))
	}
	if f.DueDate != nil {
		conds = append(conds, "i.due_date = ?")
		args = append(args, f.DueDate.Format(dayFormat))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.due_date ASC, i.id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var instances []model.ChoreInstanceDetail
	for rows.Next() {
		d, err := scanInstanceDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, *d)
	}
	return instances, rows.Err()
}

func (s *ChoreStore) AssignInstance(instanceID, userID int64) error {
	_, err := s.db.Exec(
		`UPDATE chore_instances SET assigned_user_id = ? WHERE id = ?`,
		userID, instanceID,
	)
	if err != nil {
		return fmt.Errorf("assign instance: %w", err)
	}
	return nil
}

// ResolveInstance flips a pending instance to the given terminal status.
// The WHERE status = 'pending' clause is the optimistic-concurrency guard:
// resolved is false when another caller already resolved the instance.
func (s *ChoreStore) ResolveInstance(instanceID int64, status model.InstanceStatus) (resolved bool, err error) {
	result, err := s.db.Exec(
		`UPDATE chore_instances SET status = ? WHERE id = ? AND status = ?`,
		string(status), instanceID, string(model.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("resolve instance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// RoomDueCounts reports how many instances are due in a room on a date and
// how many of those are completed. A room with zero instances due is never
// considered complete.
func (s *ChoreStore) RoomDueCounts(roomID int64, date time.Time) (total, completed int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(i.status = 'completed'), 0)
		 FROM chore_instances i
		 JOIN chores c ON c.id = i.chore_id
		 WHERE c.room_id = ? AND i.due_date = ?`,
		roomID, date.Format(dayFormat),
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("room due counts: %w", err)
	}
	return total, completed, nil
}

// CountOverdue counts pending instances due strictly before the given date.
func (s *ChoreStore) CountOverdue(before time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chore_instances WHERE status = 'pending' AND due_date < ?`,
		before.Format(dayFormat),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue: %w", err)
	}
	return n, nil
}

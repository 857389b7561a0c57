package store

import (
	"database/sql"
	"fmt"

	"github.com/mboehm/chorequest/internal/model"
)

type RoomStore struct {
	db DBTX
}

func NewRoomStore(db DBTX) *RoomStore {
	return &RoomStore{db: db}
}

const roomCols = `id, name, icon, point_multiplier, sort_order, ha_area_id`

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	var haAreaID sql.NullString
	err := scanner.Scan(&r.ID, &r.Name, &r.Icon, &r.PointMultiplier, &r.SortOrder, &haAreaID)
	if err != nil {
		return nil, err
	}
	if haAreaID.Valid {
		r.HAAreaID = &haAreaID.String
	}
	return &r, nil
}

func (s *RoomStore) Create(name, icon string, pointMultiplier float64, sortOrder int, haAreaID *string) (*model.Room, error) {
	var haID sql.NullString
	if haAreaID != nil {
		haID = sql.NullString{String: *haAreaID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO rooms (name, icon, point_multiplier, sort_order, ha_area_id) VALUES (?, ?, ?, ?, ?)`,
		name, icon, pointMultiplier, sortOrder, haID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoomStore) GetByID(id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) List() ([]model.Room, error) {
	rows, err := s.db.Query(`SELECT ` + roomCols + ` FROM rooms ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func (s *RoomStore) Update(id int64, name, icon string, pointMultiplier float64, sortOrder int) (*model.Room, error) {
	_, err := s.db.Exec(
		`UPDATE rooms SET name = ?, icon = ?, point_multiplier = ?, sort_order = ? WHERE id = ?`,
		name, icon, pointMultiplier, sortOrder, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoomStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

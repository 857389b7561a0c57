package store

import (
	"database/sql"
	"testing"
	"time"
)

func TestDistinctDates(t *testing.T) {
	db := setupDB(t)
	users := NewUserStore(db)
	chores := NewChoreStore(db)

	u, err := users.Create("lukas", "", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := chores.Create("Dishes", "", 1, 10, 15, "daily", nil)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	day1 := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	addCompletion(t, db, c.ID, u.ID, day1)
	addCompletion(t, db, c.ID, u.ID, day2)
	other, err := chores.Create("Mop", "", 1, 10, 15, "daily", nil)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	// A second completion on the same calendar day collapses to one entry.
	addCompletion(t, db, other.ID, u.ID, day2.Add(3*time.Hour))

	dates, err := NewCompletionStore(db).DistinctDates(u.ID)
	if err != nil {
		t.Fatalf("distinct dates: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2: %v", len(dates), dates)
	}
	// Newest first.
	if !dates[0].Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dates[0] = %v", dates[0])
	}
	if !dates[1].Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dates[1] = %v", dates[1])
	}
}

func TestRoomCounts(t *testing.T) {
	db := setupDB(t)
	users := NewUserStore(db)
	chores := NewChoreStore(db)
	completions := NewCompletionStore(db)

	u, err := users.Create("lukas", "", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	kitchen, _ := chores.Create("Dishes", "", 1, 10, 15, "daily", nil)
	bathroom, _ := chores.Create("Shower", "", 2, 10, 15, "daily", nil)

	day := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	addCompletion(t, db, kitchen.ID, u.ID, day)
	addCompletion(t, db, kitchen.ID, u.ID, day.AddDate(0, 0, 1))
	addCompletion(t, db, bathroom.ID, u.ID, day)

	n, err := completions.CountByUser(u.ID)
	if err != nil || n != 3 {
		t.Errorf("CountByUser = %d, %v, want 3", n, err)
	}

	n, err = completions.CountByUserInRoom(u.ID, 1)
	if err != nil || n != 2 {
		t.Errorf("CountByUserInRoom(kitchen) = %d, %v, want 2", n, err)
	}

	n, err = completions.MaxRoomCountByUser(u.ID)
	if err != nil || n != 2 {
		t.Errorf("MaxRoomCountByUser = %d, %v, want 2", n, err)
	}

	name, err := completions.FavoriteRoom(u.ID)
	if err != nil || name != "Kitchen" {
		t.Errorf("FavoriteRoom = %q, %v, want Kitchen", name, err)
	}

	n, err = completions.CountByUserSince(u.ID, day.AddDate(0, 0, 1))
	if err != nil || n != 1 {
		t.Errorf("CountByUserSince = %d, %v, want 1", n, err)
	}
}

func TestFavoriteRoomEmpty(t *testing.T) {
	db := setupDB(t)
	users := NewUserStore(db)

	u, err := users.Create("lukas", "", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	name, err := NewCompletionStore(db).FavoriteRoom(u.ID)
	if err != nil || name != "" {
		t.Errorf("FavoriteRoom = %q, %v, want empty", name, err)
	}
}

func TestCompletedAtParseableBySQLite(t *testing.T) {
	db := setupDB(t)
	users := NewUserStore(db)
	chores := NewChoreStore(db)

	u, err := users.Create("lukas", "", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := chores.Create("Dishes", "", 1, 10, 15, "daily", nil)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	addCompletion(t, db, c.ID, u.ID, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC))

	// Streak and stats queries apply date() to the stored timestamp; a
	// storage format SQLite cannot parse would surface here as NULL.
	var day sql.NullString
	if err := db.QueryRow(`SELECT date(completed_at) FROM completions`).Scan(&day); err != nil {
		t.Fatalf("date(completed_at): %v", err)
	}
	if !day.Valid || day.String != "2026-03-09" {
		t.Fatalf("date(completed_at) = %+v, want 2026-03-09", day)
	}

	var unlocked sql.NullString
	if _, err := NewAchievementStore(db).CreateUnlock(u.ID, 1, time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("create unlock: %v", err)
	}
	if err := db.QueryRow(`SELECT date(unlocked_at) FROM user_achievements`).Scan(&unlocked); err != nil {
		t.Fatalf("date(unlocked_at): %v", err)
	}
	if !unlocked.Valid || unlocked.String != "2026-03-09" {
		t.Fatalf("date(unlocked_at) = %+v, want 2026-03-09", unlocked)
	}
}

package chore

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mboehm/chorequest/internal/database"
	"github.com/mboehm/chorequest/internal/store"
)

func setupDB(t *testing.T) (*sql.DB, *store.ChoreStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, store.NewChoreStore(db)
}

func TestGenerateInstances(t *testing.T) {
	_, chores := setupDB(t)

	// 2026-03-04 is a Wednesday (weekday 2 in Monday numbering).
	wednesday := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	mustCreate := func(title, recurrence string, day *int) {
		t.Helper()
		if _, err := chores.Create(title, "", 1, 10, 15, recurrence, day); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	wedDay := 2
	monDay := 0
	fourth := 4
	mustCreate("Daily", "daily", nil)
	mustCreate("Weekly Wednesday", "weekly", &wedDay)
	mustCreate("Weekly Monday", "weekly", &monDay)
	mustCreate("Monthly 4th", "monthly", &fourth)
	mustCreate("One-off", "once", nil)

	created, err := GenerateInstances(chores, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Daily, weekly Wednesday, monthly 4th, and the one-off.
	if created != 4 {
		t.Errorf("created = %d, want 4", created)
	}

	instances, err := chores.ListInstances(store.InstanceFilter{DueDate: &wednesday})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(instances) != 4 {
		t.Errorf("got %d instances, want 4", len(instances))
	}
	for _, i := range instances {
		if i.Title == "Weekly Monday" {
			t.Error("weekly Monday chore generated on a Wednesday")
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	_, chores := setupDB(t)
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	if _, err := chores.Create("Daily", "", 1, 10, 15, "daily", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	created, err := GenerateInstances(chores, date)
	if err != nil || created != 1 {
		t.Fatalf("first run: created = %d, err = %v", created, err)
	}
	created, err = GenerateInstances(chores, date)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Errorf("second run created %d instances, want 0", created)
	}
}

func TestGenerateOnceOnlyEver(t *testing.T) {
	_, chores := setupDB(t)
	day1 := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	if _, err := chores.Create("One-off", "", 1, 10, 15, "once", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	if created, err := GenerateInstances(chores, day1); err != nil || created != 1 {
		t.Fatalf("day 1: created = %d, err = %v", created, err)
	}
	// The one-off already has its single instance; a later day adds nothing.
	if created, err := GenerateInstances(chores, day2); err != nil || created != 0 {
		t.Errorf("day 2: created = %d, err = %v", created, err)
	}
}

func TestGenerateSkipsInactive(t *testing.T) {
	_, chores := setupDB(t)
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	c, err := chores.Create("Daily", "", 1, 10, 15, "daily", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := chores.Update(c.ID, c.Title, c.Description, c.RoomID, c.BasePoints, c.EstimatedMinutes, c.Recurrence, c.RecurrenceDay, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	created, err := GenerateInstances(chores, date)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 0 {
		t.Errorf("created %d instances for an inactive chore", created)
	}
}

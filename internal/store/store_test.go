package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mboehm/chorequest/internal/database"
	"github.com/mboehm/chorequest/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// addCompletion resolves a fresh instance of the chore on dueDate and
// records a completion for the user.
func addCompletion(t *testing.T, db *sql.DB, choreID, userID int64, completedAt time.Time) {
	t.Helper()
	chores := NewChoreStore(db)
	if _, err := chores.CreateInstance(choreID, completedAt); err != nil {
		t.Fatalf("create instance: %v", err)
	}
	due := completedAt
	instances, err := chores.ListInstances(InstanceFilter{DueDate: &due})
	if err != nil {
		t.Fatalf("list instances: %v", err)
	}
	var instanceID int64
	for _, i := range instances {
		if i.ChoreID == choreID && i.Status == model.StatusPending {
			instanceID = i.ID
			break
		}
	}
	if instanceID == 0 {
		t.Fatal("no pending instance for chore")
	}
	if _, err := chores.ResolveInstance(instanceID, model.StatusCompleted); err != nil {
		t.Fatalf("resolve instance: %v", err)
	}
	if _, err := NewCompletionStore(db).Create(instanceID, userID, completedAt, 10, 0, ""); err != nil {
		t.Fatalf("create completion: %v", err)
	}
}

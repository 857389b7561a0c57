package chore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mboehm/chorequest/internal/recurrence"
	"github.com/mboehm/chorequest/internal/store"
)

// GenerateInstances creates pending instances for every active chore due on
// the given date. Generation is idempotent: an instance that already exists
// for (chore, date) is left alone, and a one-off chore only ever yields a
// single instance. Returns how many instances were created.
func GenerateInstances(chores *store.ChoreStore, date time.Time) (int, error) {
	active, err := chores.List(nil, true)
	if err != nil {
		return 0, fmt.Errorf("list active chores: %w", err)
	}

	created := 0
	for _, c := range active {
		rule, err := recurrence.Parse(c.Recurrence, c.RecurrenceDay)
		if err != nil {
			slog.Warn("skipping chore with invalid recurrence",
				"chore_id", c.ID, "recurrence", c.Recurrence, "error", err)
			continue
		}

		if !rule.IsDueOn(date) {
			continue
		}

		if rule.Kind == recurrence.Once {
			n, err := chores.InstanceCount(c.ID)
			if err != nil {
				return created, fmt.Errorf("instance count for chore %d: %w", c.ID, err)
			}
			if n > 0 {
				continue
			}
		}

		ok, err := chores.CreateInstance(c.ID, date)
		if err != nil {
			return created, fmt.Errorf("create instance for chore %d: %w", c.ID, err)
		}
		if ok {
			created++
		}
	}

	return created, nil
}

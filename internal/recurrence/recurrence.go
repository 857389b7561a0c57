package recurrence

import (
	"fmt"
	"time"
)

// Kind is how often a chore recurs.
type Kind string

const (
	Once    Kind = "once"
	Daily   Kind = "daily"
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
)

// Rule pairs a recurrence kind with its optional day selector. For Weekly
// the day is a weekday with 0 = Monday; for Monthly it is the day of the
// month (1-31). Once and Daily take no selector.
type Rule struct {
	Kind Kind
	Day  *int
}

// Parse validates a kind string and day selector into a Rule.
func Parse(kind string, day *int) (Rule, error) {
	k := Kind(kind)
	switch k {
	case Once, Daily:
		if day != nil {
			return Rule{}, fmt.Errorf("recurrence %q takes no day selector", kind)
		}
	case Weekly:
		if day != nil && (*day < 0 || *day > 6) {
			return Rule{}, fmt.Errorf("weekly day must be 0-6, got %d", *day)
		}
	case Monthly:
		if day != nil && (*day < 1 || *day > 31) {
			return Rule{}, fmt.Errorf("monthly day must be 1-31, got %d", *day)
		}
	default:
		return Rule{}, fmt.Errorf("unknown recurrence: %q", kind)
	}
	return Rule{Kind: k, Day: day}, nil
}

// IsDueOn reports whether the rule produces an occurrence on the given date.
// Once is always due (the generator separately ensures a single instance).
// A weekly rule without a selector falls due on Monday; a monthly rule
// without a selector falls due on the 1st.
func (r Rule) IsDueOn(date time.Time) bool {
	switch r.Kind {
	case Once, Daily:
		return true
	case Weekly:
		day := 0
		if r.Day != nil {
			day = *r.Day
		}
		return mondayWeekday(date) == day
	case Monthly:
		day := 1
		if r.Day != nil {
			day = *r.Day
		}
		return date.Day() == day
	}
	return false
}

// mondayWeekday maps time.Weekday (Sunday = 0) onto the Monday = 0 numbering
// used by recurrence day selectors.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

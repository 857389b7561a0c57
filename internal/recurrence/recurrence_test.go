package recurrence

import (
	"testing"
	"time"
)

func intp(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		day     *int
		wantErr bool
	}{
		{"once", "once", nil, false},
		{"daily", "daily", nil, false},
		{"weekly no day", "weekly", nil, false},
		{"weekly monday", "weekly", intp(0), false},
		{"weekly sunday", "weekly", intp(6), false},
		{"weekly out of range", "weekly", intp(7), true},
		{"monthly first", "monthly", intp(1), false},
		{"monthly 31st", "monthly", intp(31), false},
		{"monthly zero", "monthly", intp(0), true},
		{"daily with day", "daily", intp(2), true},
		{"unknown kind", "fortnightly", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.day)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q, %v) error = %v, wantErr %v", tt.kind, tt.day, err, tt.wantErr)
			}
		})
	}
}

func TestIsDueOn(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	wednesday := monday.AddDate(0, 0, 2)
	sunday := monday.AddDate(0, 0, 6)
	fifteenth := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule Rule
		date time.Time
		want bool
	}{
		{"daily any day", Rule{Kind: Daily}, wednesday, true},
		{"once any day", Rule{Kind: Once}, sunday, true},
		{"weekly default monday", Rule{Kind: Weekly}, monday, true},
		{"weekly default not wednesday", Rule{Kind: Weekly}, wednesday, false},
		{"weekly wednesday", Rule{Kind: Weekly, Day: intp(2)}, wednesday, true},
		{"weekly sunday", Rule{Kind: Weekly, Day: intp(6)}, sunday, true},
		{"weekly sunday on monday", Rule{Kind: Weekly, Day: intp(6)}, monday, false},
		{"monthly 15th", Rule{Kind: Monthly, Day: intp(15)}, fifteenth, true},
		{"monthly 15th on 31st", Rule{Kind: Monthly, Day: intp(15)}, monday, false},
		{"monthly default first", Rule{Kind: Monthly}, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.IsDueOn(tt.date); got != tt.want {
				t.Errorf("IsDueOn(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestMondayWeekday(t *testing.T) {
	// Walk a full week starting at a known Monday.
	start := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := mondayWeekday(start.AddDate(0, 0, i)); got != i {
			t.Errorf("mondayWeekday(+%d days) = %d, want %d", i, got, i)
		}
	}
}

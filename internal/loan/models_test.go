package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysLate(t *testing.T) {
	due := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	l := &Loan{PlannedDueDate: due}

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"before due date", due.AddDate(0, 0, -3), 0},
		{"on the due date", due, 0},
		{"one day late", due.AddDate(0, 0, 1), 1},
		{"ten days late", due.AddDate(0, 0, 10), 10},
		{"time of day is ignored", time.Date(2026, 5, 11, 23, 59, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.DaysLate(tt.at))
		})
	}
}

func TestDateOnly(t *testing.T) {
	got := DateOnly(time.Date(2026, 2, 14, 18, 30, 45, 123, time.FixedZone("X", -3*3600)))
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), got)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"ACTIVE", "RETURNED", "LATE", "BLOCKED"} {
		st, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), st)
	}

	_, err := ParseStatus("OVERDUE")
	assert.Error(t, err)
}

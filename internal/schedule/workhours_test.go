package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"08:00", "08:00", true},
		{"8:00", "08:00", true},
		{"23:59", "23:59", true},
		{"0:05", "00:05", true},
		{"25:00", "", false},
		{"24:00", "", false},
		{"12:60", "", false},
		{"1200", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkHoursSetters(t *testing.T) {
	wh := DefaultWorkHours()
	require.NoError(t, wh.Validate())
	assert.Equal(t, "08:00", wh.StartTime)
	assert.Equal(t, "18:00", wh.EndTime)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, wh.DaysOfWeek)

	t.Run("rejects 25:00 and keeps the hours", func(t *testing.T) {
		got, err := wh.SetStartTime("25:00")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "start_time", verr.Field)
		assert.NotEmpty(t, verr.Message)
		assert.Equal(t, wh, got)
	})

	t.Run("pads single digit hour", func(t *testing.T) {
		got, err := wh.SetStartTime("9:30")
		require.NoError(t, err)
		assert.Equal(t, "09:30", got.StartTime)
		assert.Equal(t, "08:00", wh.StartTime)
	})

	t.Run("end must follow start", func(t *testing.T) {
		got, err := wh.SetEndTime("07:00")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "end_time", verr.Field)
		assert.Equal(t, "18:00", got.EndTime)
	})
}

func TestToggleDay(t *testing.T) {
	wh := DefaultWorkHours()

	withSaturday, err := wh.ToggleDay(6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, withSaturday.DaysOfWeek)
	assert.True(t, withSaturday.ShowsWeekends())

	withSunday, err := withSaturday.ToggleDay(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, withSunday.DaysOfWeek)

	noMonday, err := wh.ToggleDay(1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5}, noMonday.DaysOfWeek)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, wh.DaysOfWeek)

	_, err = wh.ToggleDay(7)
	assert.Error(t, err)
}

func TestWorkHoursNormalize(t *testing.T) {
	got, err := WorkHours{StartTime: "9:00", EndTime: "17:00", DaysOfWeek: []int{5, 1, 1}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, WorkHours{StartTime: "09:00", EndTime: "17:00", DaysOfWeek: []int{1, 5}}, got)

	_, err = WorkHours{StartTime: "18:00", EndTime: "08:00"}.Normalize()
	assert.Error(t, err)
}

func TestWorkHoursCovers(t *testing.T) {
	wh := DefaultWorkHours()
	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	at := func(day time.Time, h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}
	saturday := monday.AddDate(0, 0, 5)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", at(monday, 9, 0), at(monday, 10, 0), true},
		{"last slot", at(monday, 17, 30), at(monday, 18, 0), true},
		{"before opening", at(monday, 7, 0), at(monday, 8, 30), false},
		{"past closing", at(monday, 17, 30), at(monday, 18, 30), false},
		{"hidden weekend", at(saturday, 9, 0), at(saturday, 10, 0), false},
		{"reversed", at(monday, 10, 0), at(monday, 9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wh.Covers(tt.start, tt.end))
		})
	}
}

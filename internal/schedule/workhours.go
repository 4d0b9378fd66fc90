package schedule

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ValidationError carries a message meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WorkHours bounds the slots the calendar shows and lets the user select.
type WorkHours struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	DaysOfWeek []int  `json:"days_of_week"`
}

func DefaultWorkHours() WorkHours {
	return WorkHours{
		StartTime:  "08:00",
		EndTime:    "18:00",
		DaysOfWeek: []int{1, 2, 3, 4, 5},
	}
}

// NormalizeClock validates a 24h HH:MM value and pads the hour to two digits.
func NormalizeClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2], true
}

func invalidClock(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "invalid time format, use 24h HH:MM"}
}

// SetStartTime returns a copy with the new start, or a ValidationError and wh
// unchanged.
func (wh WorkHours) SetStartTime(s string) (WorkHours, error) {
	v, ok := NormalizeClock(s)
	if !ok {
		return wh, invalidClock("start_time")
	}
	next := wh.clone()
	next.StartTime = v
	if err := next.Validate(); err != nil {
		return wh, err
	}
	return next, nil
}

func (wh WorkHours) SetEndTime(s string) (WorkHours, error) {
	v, ok := NormalizeClock(s)
	if !ok {
		return wh, invalidClock("end_time")
	}
	next := wh.clone()
	next.EndTime = v
	if err := next.Validate(); err != nil {
		return wh, err
	}
	return next, nil
}

// ToggleDay adds the weekday (0 = Sunday) when absent and removes it otherwise.
func (wh WorkHours) ToggleDay(day int) (WorkHours, error) {
	if day < 0 || day > 6 {
		return wh, &ValidationError{Field: "days_of_week", Message: "weekday must be between 0 and 6"}
	}
	next := wh.clone()
	if i := slices.Index(next.DaysOfWeek, day); i >= 0 {
		next.DaysOfWeek = slices.Delete(next.DaysOfWeek, i, i+1)
	} else {
		next.DaysOfWeek = append(next.DaysOfWeek, day)
		slices.Sort(next.DaysOfWeek)
	}
	return next, nil
}

// Validate checks both clocks and that the day starts before it ends.
func (wh WorkHours) Validate() error {
	if _, ok := NormalizeClock(wh.StartTime); !ok || len(wh.StartTime) != 5 {
		return invalidClock("start_time")
	}
	if _, ok := NormalizeClock(wh.EndTime); !ok || len(wh.EndTime) != 5 {
		return invalidClock("end_time")
	}
	if wh.StartTime >= wh.EndTime {
		return &ValidationError{Field: "end_time", Message: "end time must be after start time"}
	}
	for _, d := range wh.DaysOfWeek {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "days_of_week", Message: "weekday must be between 0 and 6"}
		}
	}
	return nil
}

// Normalize pads both clocks, sorts and dedupes the days, then validates.
func (wh WorkHours) Normalize() (WorkHours, error) {
	start, ok := NormalizeClock(wh.StartTime)
	if !ok {
		return wh, invalidClock("start_time")
	}
	end, ok := NormalizeClock(wh.EndTime)
	if !ok {
		return wh, invalidClock("end_time")
	}
	next := wh.clone()
	next.StartTime, next.EndTime = start, end
	slices.Sort(next.DaysOfWeek)
	next.DaysOfWeek = slices.Compact(next.DaysOfWeek)
	if err := next.Validate(); err != nil {
		return wh, err
	}
	return next, nil
}

func (wh WorkHours) HasDay(day time.Weekday) bool {
	return slices.Contains(wh.DaysOfWeek, int(day))
}

// ShowsWeekends mirrors the calendar widget: weekend columns are hidden unless
// Saturday or Sunday is a work day.
func (wh WorkHours) ShowsWeekends() bool {
	return wh.HasDay(time.Sunday) || wh.HasDay(time.Saturday)
}

// Covers reports whether [start, end) sits inside the visible slot bounds of
// a single visible day.
func (wh WorkHours) Covers(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	if !wh.ShowsWeekends() {
		if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	from := start.Format("15:04")
	to := end.Format("15:04")
	sameDay := start.YearDay() == end.YearDay() && start.Year() == end.Year()
	if !sameDay {
		// an end at midnight closes the previous day
		midnight := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
		if !end.Equal(midnight) || end.Sub(start) > 24*time.Hour {
			return false
		}
		to = "24:00"
	}
	return from >= wh.StartTime && to <= wh.EndTime
}

func (wh WorkHours) clone() WorkHours {
	wh.DaysOfWeek = slices.Clone(wh.DaysOfWeek)
	return wh
}

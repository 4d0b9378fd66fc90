package schedule

import (
	"errors"
	"time"
)

var ErrOutsideWorkHours = errors.New("selected range is outside work hours")

// Range is a start/end pair reported by the calendar widget.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Intents are the widget callbacks the calendar relays.
type Intents interface {
	OnSelect(r Range) (EditorState, error)
	OnEventClick(id EventID) (EditorState, error)
	OnEventDrop(id EventID, r Range) (Event, error)
	OnEventResize(id EventID, r Range) (Event, error)
}

// WidgetEvent is the event shape the calendar widget consumes.
type WidgetEvent struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	BackgroundColor string        `json:"backgroundColor"`
	BorderColor     string        `json:"borderColor"`
	ClassNames      []string      `json:"classNames"`
	ExtendedProps   WidgetDetails `json:"extendedProps"`
}

type WidgetDetails struct {
	PatientID   string      `json:"patientId"`
	PatientName string      `json:"patientName"`
	Status      Status      `json:"status"`
	Notes       string      `json:"notes"`
	Type        string      `json:"type"`
	HealthPlan  *HealthPlan `json:"healthPlan,omitempty"`
	IsPrivate   bool        `json:"isPrivate"`
	PayerColor  string      `json:"payerColor"`
}

type BusinessHours struct {
	DaysOfWeek []int  `json:"daysOfWeek"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// WidgetOptions are the work-hour driven widget settings.
type WidgetOptions struct {
	SlotMinTime   string          `json:"slotMinTime"`
	SlotMaxTime   string          `json:"slotMaxTime"`
	SlotDuration  string          `json:"slotDuration"`
	Weekends      bool            `json:"weekends"`
	BusinessHours []BusinessHours `json:"businessHours"`
}

// Render maps events to the widget shape.
func Render(events []Event) []WidgetEvent {
	out := make([]WidgetEvent, 0, len(events))
	for _, e := range events {
		color := e.Color
		if color == "" {
			color = DefaultEventColor
		}
		var plan *HealthPlan
		if e.Payer.Plan != nil {
			p := *e.Payer.Plan
			plan = &p
		}
		out = append(out, WidgetEvent{
			ID:              e.ID.String(),
			Title:           e.Title,
			Start:           e.Start,
			End:             e.End,
			BackgroundColor: color,
			BorderColor:     color,
			ClassNames:      []string{"event-" + string(e.Status)},
			ExtendedProps: WidgetDetails{
				PatientID:   e.PatientID,
				PatientName: e.PatientName,
				Status:      e.Status,
				Notes:       e.Notes,
				Type:        e.AppointmentTypeID,
				HealthPlan:  plan,
				IsPrivate:   e.Payer.IsPrivate,
				PayerColor:  e.Payer.Color(),
			},
		})
	}
	return out
}

func Options(wh WorkHours) WidgetOptions {
	return WidgetOptions{
		SlotMinTime:  wh.StartTime,
		SlotMaxTime:  wh.EndTime,
		SlotDuration: "00:30:00",
		Weekends:     wh.ShowsWeekends(),
		BusinessHours: []BusinessHours{{
			DaysOfWeek: append([]int(nil), wh.DaysOfWeek...),
			StartTime:  wh.StartTime,
			EndTime:    wh.EndTime,
		}},
	}
}

// Calendar relays widget intents to a book and its editor.
type Calendar struct {
	book   *Book
	editor *Editor
}

var _ Intents = (*Calendar)(nil)

func NewCalendar(book *Book, editor *Editor) *Calendar {
	return &Calendar{book: book, editor: editor}
}

func (c *Calendar) OnSelect(r Range) (EditorState, error) {
	if !c.book.WorkHours().Covers(r.Start, r.End) {
		return c.editor.State(), ErrOutsideWorkHours
	}
	return c.editor.OpenRange(r.Start, r.End)
}

func (c *Calendar) OnEventClick(id EventID) (EditorState, error) {
	e, ok := c.book.Find(id)
	if !ok {
		return c.editor.State(), ErrEventNotFound
	}
	return c.editor.Open(&e), nil
}

func (c *Calendar) OnEventDrop(id EventID, r Range) (Event, error) {
	return c.book.Move(id, r.Start, r.End)
}

func (c *Calendar) OnEventResize(id EventID, r Range) (Event, error) {
	return c.book.Move(id, r.Start, r.End)
}

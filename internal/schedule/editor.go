package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DurationOptions are the appointment lengths, in minutes, a user can pick.
var DurationOptions = []int{15, 30, 45, 60, 90, 120}

const (
	DefaultDuration = 30
	slotGranularity = 15 * time.Minute
)

var (
	ErrEditorClosed      = errors.New("appointment editor is not open")
	ErrIncompleteDraft   = errors.New("title, start and end are required")
	ErrInvalidDuration   = errors.New("duration is not one of the allowed options")
	ErrMissingStart      = errors.New("start date and time are required")
	ErrUnknownPatient    = errors.New("patient not found")
	ErrUnknownType       = errors.New("appointment type not found")
	ErrUnknownHealthPlan = errors.New("health plan not found")
)

// EditorState is what the appointment dialog renders.
type EditorState struct {
	Open     bool  `json:"open"`
	IsNew    bool  `json:"is_new"`
	Draft    Event `json:"draft"`
	Duration int   `json:"duration"`
}

// Editor edits a single draft event. Every setter works on the draft only;
// nothing reaches the collection before Save.
type Editor struct {
	catalog  Catalog
	now      func() time.Time
	open     bool
	draft    Event
	duration int
}

func NewEditor(catalog Catalog, now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{catalog: catalog, now: now, duration: DefaultDuration}
}

// SetCatalog swaps the reference data selections are resolved against.
func (ed *Editor) SetCatalog(c Catalog) { ed.catalog = c }

func (ed *Editor) Catalog() Catalog { return ed.catalog }

// Open starts editing a copy of existing, or a fresh draft when existing is nil.
func (ed *Editor) Open(existing *Event) EditorState {
	if existing == nil {
		start := nextSlot(ed.now())
		return ed.openDraft(start, start.Add(DefaultDuration*time.Minute))
	}

	ed.draft = existing.clone()
	ed.duration = closestDuration(existing.End.Sub(existing.Start))
	ed.draft.End = ed.draft.Start.Add(time.Duration(ed.duration) * time.Minute)
	ed.open = true
	return ed.State()
}

// OpenRange starts a new draft over a range picked on the calendar.
func (ed *Editor) OpenRange(start, end time.Time) (EditorState, error) {
	if !end.After(start) {
		return ed.State(), ErrInvalidRange
	}
	return ed.openDraft(start, end), nil
}

func (ed *Editor) openDraft(start, end time.Time) EditorState {
	ed.duration = closestDuration(end.Sub(start))
	ed.draft = Event{
		ID:     DraftID(strconv.FormatInt(ed.now().UnixNano(), 10)),
		Start:  start,
		End:    start.Add(time.Duration(ed.duration) * time.Minute),
		Status: StatusPending,
		Color:  DefaultEventColor,
	}
	ed.open = true
	return ed.State()
}

func (ed *Editor) Close() {
	ed.open = false
	ed.draft = Event{}
	ed.duration = DefaultDuration
}

func (ed *Editor) IsOpen() bool { return ed.open }

func (ed *Editor) State() EditorState {
	if !ed.open {
		return EditorState{Duration: ed.duration}
	}
	return EditorState{
		Open:     true,
		IsNew:    ed.draft.ID.IsDraft(),
		Draft:    ed.draft.clone(),
		Duration: ed.duration,
	}
}

// SetDateTime moves the draft start and keeps the chosen duration.
func (ed *Editor) SetDateTime(t time.Time) error {
	if !ed.open {
		return ErrEditorClosed
	}
	if t.IsZero() {
		return ErrMissingStart
	}
	ed.draft.Start = t
	ed.draft.End = t.Add(time.Duration(ed.duration) * time.Minute)
	return nil
}

func (ed *Editor) SetDuration(minutes int) error {
	if !ed.open {
		return ErrEditorClosed
	}
	if !slices.Contains(DurationOptions, minutes) {
		return ErrInvalidDuration
	}
	ed.duration = minutes
	if !ed.draft.Start.IsZero() {
		ed.draft.End = ed.draft.Start.Add(time.Duration(minutes) * time.Minute)
	}
	return nil
}

func (ed *Editor) SelectPatient(id string) error {
	if !ed.open {
		return ErrEditorClosed
	}
	p, ok := ed.catalog.Patient(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPatient, id)
	}
	ed.draft.PatientID = p.ID
	ed.draft.PatientName = p.Name
	ed.draft.Title = "Consulta - " + p.Name
	return nil
}

func (ed *Editor) SelectAppointmentType(id string) error {
	if !ed.open {
		return ErrEditorClosed
	}
	t, ok := ed.catalog.AppointmentType(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	ed.draft.AppointmentTypeID = t.ID
	ed.draft.Color = t.Color
	return nil
}

// SelectPayer takes either PrivatePayerValue or a health plan id.
func (ed *Editor) SelectPayer(value string) error {
	if !ed.open {
		return ErrEditorClosed
	}
	if value == PrivatePayerValue {
		ed.draft.Payer = PrivatePayer()
		return nil
	}
	plan, ok := ed.catalog.HealthPlan(value)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHealthPlan, value)
	}
	ed.draft.Payer = PlanPayer(plan)
	return nil
}

func (ed *Editor) SetStatus(s Status) error {
	if !ed.open {
		return ErrEditorClosed
	}
	if !s.Valid() {
		return ErrInvalidStatus
	}
	ed.draft.Status = s
	return nil
}

func (ed *Editor) SetTitle(title string) error {
	if !ed.open {
		return ErrEditorClosed
	}
	ed.draft.Title = title
	return nil
}

func (ed *Editor) SetNotes(notes string) error {
	if !ed.open {
		return ErrEditorClosed
	}
	ed.draft.Notes = notes
	return nil
}

// Save hands the draft to c and closes the editor. On any error the editor
// stays open with the draft intact.
func (ed *Editor) Save(c Collection) (Event, error) {
	if !ed.open {
		return Event{}, ErrEditorClosed
	}
	if strings.TrimSpace(ed.draft.Title) == "" || ed.draft.Start.IsZero() || ed.draft.End.IsZero() {
		return Event{}, ErrIncompleteDraft
	}
	saved, err := c.Save(ed.draft.clone())
	if err != nil {
		return Event{}, err
	}
	ed.Close()
	return saved, nil
}

// Delete removes the edited event from c and closes the editor.
func (ed *Editor) Delete(c Collection) (bool, error) {
	if !ed.open {
		return false, ErrEditorClosed
	}
	removed := c.Delete(ed.draft.ID)
	ed.Close()
	return removed, nil
}

// nextSlot rounds t up to the next quarter hour; a time already on a boundary
// is kept.
func nextSlot(t time.Time) time.Time {
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	into := t.Sub(hour)
	rounded := hour.Add(into / slotGranularity * slotGranularity)
	if rounded.Before(t) {
		rounded = rounded.Add(slotGranularity)
	}
	return rounded
}

// closestDuration picks the option nearest to d, preferring the shorter one on ties.
func closestDuration(d time.Duration) int {
	minutes := int((d + 30*time.Second) / time.Minute)
	best := DurationOptions[0]
	for _, opt := range DurationOptions[1:] {
		if abs(opt-minutes) < abs(best-minutes) {
			best = opt
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

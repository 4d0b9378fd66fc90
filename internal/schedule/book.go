package schedule

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Collection is what an editor saves into and deletes from.
type Collection interface {
	Save(e Event) (Event, error)
	Delete(id EventID) bool
}

// Book owns the events and work hours of one scheduling session. It is not
// safe for concurrent use.
type Book struct {
	events    []Event
	workHours WorkHours
	newID     func() string
}

type BookOption func(*Book)

// WithIDGenerator replaces the uuid generator used to mint persisted ids.
func WithIDGenerator(fn func() string) BookOption {
	return func(b *Book) { b.newID = fn }
}

func NewBook(events []Event, wh WorkHours, opts ...BookOption) *Book {
	b := &Book{
		workHours: wh.clone(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.events = make([]Event, 0, len(events))
	for _, e := range events {
		b.events = append(b.events, e.clone())
	}
	return b
}

// Events returns a copy of the collection in insertion order.
func (b *Book) Events() []Event {
	out := make([]Event, len(b.events))
	for i, e := range b.events {
		out[i] = e.clone()
	}
	return out
}

func (b *Book) Len() int { return len(b.events) }

func (b *Book) Find(id EventID) (Event, bool) {
	if i := b.index(id); i >= 0 {
		return b.events[i].clone(), true
	}
	return Event{}, false
}

// Save appends a draft under a freshly minted persisted id, or replaces the
// stored event carrying the same persisted id.
func (b *Book) Save(e Event) (Event, error) {
	if e.ID.IsDraft() {
		e.ID = PersistedID(b.newID())
		if err := e.Validate(); err != nil {
			return Event{}, err
		}
		e = e.clone()
		b.events = append(b.events, e)
		return e.clone(), nil
	}

	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	i := b.index(e.ID)
	if i < 0 {
		return Event{}, ErrEventNotFound
	}
	b.events[i] = e.clone()
	return e.clone(), nil
}

// Delete removes the event with id. A missing id leaves the book untouched.
func (b *Book) Delete(id EventID) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.events = append(b.events[:i], b.events[i+1:]...)
	return true
}

// Restore puts e back at index i, clamped to the collection bounds. It undoes
// a Delete whose write-through failed.
func (b *Book) Restore(e Event, i int) {
	i = max(0, min(i, len(b.events)))
	b.events = slices.Insert(b.events, i, e.clone())
}

// Move applies a dragged or resized range as is. Only end > start is checked.
func (b *Book) Move(id EventID, start, end time.Time) (Event, error) {
	if !end.After(start) {
		return Event{}, ErrInvalidRange
	}
	i := b.index(id)
	if i < 0 {
		return Event{}, ErrEventNotFound
	}
	b.events[i].Start = start
	b.events[i].End = end
	return b.events[i].clone(), nil
}

func (b *Book) Stats(now time.Time) Snapshot {
	return Aggregate(b.events, now)
}

func (b *Book) WorkHours() WorkHours {
	return b.workHours.clone()
}

// SetWorkHours replaces the active hours after normalising them.
func (b *Book) SetWorkHours(wh WorkHours) (WorkHours, error) {
	next, err := wh.Normalize()
	if err != nil {
		return b.WorkHours(), err
	}
	b.workHours = next
	return next.clone(), nil
}

func (b *Book) index(id EventID) int {
	for i := range b.events {
		if b.events[i].ID == id {
			return i
		}
	}
	return -1
}

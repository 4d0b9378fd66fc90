package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	plan := sampleEvent("a", at(9, 0), 60)
	private := sampleEvent("b", at(10, 0), 60)
	private.Payer = PrivatePayer()
	private.Status = StatusCancelled
	private.Color = ""

	out := Render([]Event{plan, private})
	require.Len(t, out, 2)

	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "#4CAF50", out[0].BackgroundColor)
	assert.Equal(t, "#4CAF50", out[0].BorderColor)
	assert.Equal(t, []string{"event-confirmed"}, out[0].ClassNames)
	assert.Equal(t, "João Silva", out[0].ExtendedProps.PatientName)
	assert.Equal(t, "1", out[0].ExtendedProps.Type)
	require.NotNil(t, out[0].ExtendedProps.HealthPlan)
	assert.Equal(t, "#00995D", out[0].ExtendedProps.PayerColor)

	assert.Equal(t, DefaultEventColor, out[1].BackgroundColor)
	assert.Equal(t, []string{"event-cancelled"}, out[1].ClassNames)
	assert.True(t, out[1].ExtendedProps.IsPrivate)
	assert.Nil(t, out[1].ExtendedProps.HealthPlan)
	assert.Equal(t, PrivatePayerColor, out[1].ExtendedProps.PayerColor)
}

func TestOptions(t *testing.T) {
	opts := Options(DefaultWorkHours())

	assert.Equal(t, "08:00", opts.SlotMinTime)
	assert.Equal(t, "18:00", opts.SlotMaxTime)
	assert.Equal(t, "00:30:00", opts.SlotDuration)
	assert.False(t, opts.Weekends)
	require.Len(t, opts.BusinessHours, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, opts.BusinessHours[0].DaysOfWeek)

	weekend, err := DefaultWorkHours().ToggleDay(6)
	require.NoError(t, err)
	assert.True(t, Options(weekend).Weekends)
}

func TestCalendarIntents(t *testing.T) {
	newCalendar := func() (*Calendar, *Book, *Editor) {
		book := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours())
		ed := newTestEditor(at(8, 0))
		return NewCalendar(book, ed), book, ed
	}

	t.Run("select opens a draft over the range", func(t *testing.T) {
		cal, _, _ := newCalendar()
		state, err := cal.OnSelect(Range{Start: at(14, 0), End: at(15, 0)})
		require.NoError(t, err)
		assert.True(t, state.IsNew)
		assert.Equal(t, 60, state.Duration)
		assert.Equal(t, at(14, 0), state.Draft.Start)
		assert.Equal(t, at(15, 0), state.Draft.End)
	})

	t.Run("select outside work hours", func(t *testing.T) {
		cal, _, ed := newCalendar()
		_, err := cal.OnSelect(Range{Start: at(19, 0), End: at(20, 0)})
		assert.ErrorIs(t, err, ErrOutsideWorkHours)
		assert.False(t, ed.IsOpen())
	})

	t.Run("click opens the event", func(t *testing.T) {
		cal, _, _ := newCalendar()
		state, err := cal.OnEventClick(PersistedID("a"))
		require.NoError(t, err)
		assert.False(t, state.IsNew)
		assert.Equal(t, PersistedID("a"), state.Draft.ID)

		_, err = cal.OnEventClick(PersistedID("zzz"))
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("drop and resize skip duration options", func(t *testing.T) {
		cal, book, _ := newCalendar()

		dropped, err := cal.OnEventDrop(PersistedID("a"), Range{Start: at(11, 0), End: at(11, 50)})
		require.NoError(t, err)
		assert.Equal(t, at(11, 50), dropped.End)

		resized, err := cal.OnEventResize(PersistedID("a"), Range{Start: at(11, 0), End: at(12, 10)})
		require.NoError(t, err)
		assert.Equal(t, at(12, 10), resized.End)

		_, err = cal.OnEventResize(PersistedID("a"), Range{Start: at(11, 0), End: at(10, 0)})
		assert.ErrorIs(t, err, ErrInvalidRange)

		got, _ := book.Find(PersistedID("a"))
		assert.Equal(t, at(12, 10), got.End)
	})
}

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSave(t *testing.T) {
	t.Run("draft is appended under a new id", func(t *testing.T) {
		b := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours(), WithIDGenerator(sequentialIDs()))

		draft := sampleEvent("", at(11, 0), 30)
		draft.ID = DraftID("123")

		saved, err := b.Save(draft)
		require.NoError(t, err)
		assert.Equal(t, PersistedID("evt-1"), saved.ID)
		assert.False(t, saved.ID.IsDraft())
		assert.Equal(t, 2, b.Len())

		got, ok := b.Find(saved.ID)
		require.True(t, ok)
		assert.Equal(t, at(11, 0), got.Start)
	})

	t.Run("persisted id replaces in place", func(t *testing.T) {
		b := NewBook([]Event{sampleEvent("a", at(9, 0), 60), sampleEvent("b", at(10, 0), 60)}, DefaultWorkHours())

		edited := sampleEvent("a", at(9, 0), 60)
		edited.Title = "Retorno"
		edited.Status = StatusCompleted

		_, err := b.Save(edited)
		require.NoError(t, err)
		assert.Equal(t, 2, b.Len())

		events := b.Events()
		assert.Equal(t, "Retorno", events[0].Title)
		assert.Equal(t, StatusCompleted, events[0].Status)
		assert.Equal(t, PersistedID("b"), events[1].ID)
	})

	t.Run("unknown persisted id is rejected", func(t *testing.T) {
		b := NewBook(nil, DefaultWorkHours())

		_, err := b.Save(sampleEvent("ghost", at(9, 0), 30))
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.Zero(t, b.Len())
	})

	t.Run("invalid range is rejected", func(t *testing.T) {
		b := NewBook(nil, DefaultWorkHours())
		draft := sampleEvent("", at(9, 0), 0)
		draft.ID = DraftID("1")

		_, err := b.Save(draft)
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Zero(t, b.Len())
	})
}

func TestBookRejectsPrivatePlanPayer(t *testing.T) {
	b := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours())

	e := sampleEvent("a", at(9, 0), 60)
	e.Payer.IsPrivate = true
	require.NotNil(t, e.Payer.Plan)

	_, err := b.Save(e)
	assert.ErrorIs(t, err, ErrInvalidPayer)
}

func TestBookRestore(t *testing.T) {
	b := NewBook([]Event{sampleEvent("a", at(9, 0), 60), sampleEvent("b", at(10, 0), 60)}, DefaultWorkHours())

	prev, ok := b.Find(PersistedID("a"))
	require.True(t, ok)
	require.True(t, b.Delete(PersistedID("a")))

	b.Restore(prev, 0)
	events := b.Events()
	require.Len(t, events, 2)
	assert.Equal(t, PersistedID("a"), events[0].ID)
	assert.Equal(t, PersistedID("b"), events[1].ID)

	b.Restore(sampleEvent("c", at(11, 0), 30), 99)
	assert.Equal(t, PersistedID("c"), b.Events()[2].ID)
}

func TestBookDeleteMissingIsNoop(t *testing.T) {
	b := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours())

	assert.False(t, b.Delete(PersistedID("missing")))
	assert.False(t, b.Delete(DraftID("a")))
	assert.Equal(t, 1, b.Len())

	assert.True(t, b.Delete(PersistedID("a")))
	assert.Zero(t, b.Len())
}

func TestBookMove(t *testing.T) {
	b := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours())

	moved, err := b.Move(PersistedID("a"), at(13, 0), at(13, 50))
	require.NoError(t, err)
	assert.Equal(t, at(13, 0), moved.Start)
	assert.Equal(t, at(13, 50), moved.End)

	_, err = b.Move(PersistedID("a"), at(14, 0), at(14, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = b.Move(PersistedID("nope"), at(14, 0), at(15, 0))
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBookEventsAreCopies(t *testing.T) {
	b := NewBook([]Event{sampleEvent("a", at(9, 0), 60)}, DefaultWorkHours())

	events := b.Events()
	events[0].Title = "changed"
	events[0].Payer.Plan.Name = "changed"

	got, _ := b.Find(PersistedID("a"))
	assert.Equal(t, "Consulta - João Silva", got.Title)
	assert.Equal(t, "Unimed", got.Payer.Plan.Name)
}

func TestBookSetWorkHours(t *testing.T) {
	b := NewBook(nil, DefaultWorkHours())

	_, err := b.SetWorkHours(WorkHours{StartTime: "25:00", EndTime: "18:00"})
	assert.Error(t, err)
	assert.Equal(t, DefaultWorkHours(), b.WorkHours())

	got, err := b.SetWorkHours(WorkHours{StartTime: "7:00", EndTime: "12:00", DaysOfWeek: []int{6, 1}})
	require.NoError(t, err)
	assert.Equal(t, "07:00", got.StartTime)
	assert.Equal(t, []int{1, 6}, b.WorkHours().DaysOfWeek)
}

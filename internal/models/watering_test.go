package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klarkent2022/smart-irrigation/internal/models"
)

func ptr[T any](v T) *T { return &v }

func autoFields() models.WateringFields {
	return models.WateringFields{
		IntervalType:  ptr(models.IntervalDays),
		IntervalValue: ptr(2),
		TimeOfDay:     ptr("06:30"),
	}
}

func TestWateringFields_Schedule(t *testing.T) {
	t.Run("complete auto schedule", func(t *testing.T) {
		s, err := autoFields().Schedule(true)
		require.NoError(t, err)
		auto, ok := s.(*models.AutoSchedule)
		require.True(t, ok)
		assert.Equal(t, models.IntervalDays, auto.IntervalType)
		assert.Equal(t, 2, auto.IntervalValue)
		assert.Equal(t, "06:30", auto.TimeOfDay)
	})

	t.Run("complete manual schedule", func(t *testing.T) {
		s, err := models.WateringFields{Duration: ptr(15)}.Schedule(false)
		require.NoError(t, err)
		manual, ok := s.(*models.ManualSchedule)
		require.True(t, ok)
		assert.Equal(t, 15, manual.Duration)
	})

	t.Run("auto missing time_of_day", func(t *testing.T) {
		w := autoFields()
		w.TimeOfDay = nil
		_, err := w.Schedule(true)
		assert.EqualError(t, err, "when auto_mode is true, watering must include 'interval_type', 'interval_value', and 'time_of_day'")
	})

	t.Run("manual missing duration", func(t *testing.T) {
		_, err := models.WateringFields{}.Schedule(false)
		assert.EqualError(t, err, "when auto_mode is false, watering must include 'duration'")
	})

	t.Run("manual fields given in auto mode", func(t *testing.T) {
		_, err := models.WateringFields{Duration: ptr(10)}.Schedule(true)
		assert.Error(t, err)
	})

	t.Run("auto fields mixed into manual", func(t *testing.T) {
		w := autoFields()
		w.Duration = ptr(10)
		_, err := w.Schedule(false)
		assert.Error(t, err)
		_, err = w.Schedule(true)
		assert.Error(t, err)
	})

	t.Run("out of range values", func(t *testing.T) {
		w := autoFields()
		w.IntervalType = ptr(models.IntervalType("hours"))
		_, err := w.Schedule(true)
		assert.Error(t, err)

		w = autoFields()
		w.IntervalValue = ptr(0)
		_, err = w.Schedule(true)
		assert.Error(t, err)

		w = autoFields()
		w.TimeOfDay = ptr("25:00")
		_, err = w.Schedule(true)
		assert.Error(t, err)

		_, err = models.WateringFields{Duration: ptr(-1)}.Schedule(false)
		assert.Error(t, err)
	})

	t.Run("time_of_day is zero padded", func(t *testing.T) {
		w := autoFields()
		w.TimeOfDay = ptr("8:05")
		s, err := w.Schedule(true)
		require.NoError(t, err)
		assert.Equal(t, "08:05", *s.Fields().TimeOfDay)
	})

	t.Run("fields round trip", func(t *testing.T) {
		s, err := autoFields().Schedule(true)
		require.NoError(t, err)
		assert.Equal(t, autoFields(), s.Fields())
	})
}

func TestWateringFields_Merge(t *testing.T) {
	merged := autoFields().Merge(models.WateringFields{TimeOfDay: ptr("18:00")})
	assert.Equal(t, "18:00", *merged.TimeOfDay)
	assert.Equal(t, models.IntervalDays, *merged.IntervalType)
	assert.Equal(t, 2, *merged.IntervalValue)
	assert.Nil(t, merged.Duration)

	assert.True(t, models.WateringFields{}.IsEmpty())
	assert.False(t, merged.IsEmpty())
}

func TestCommand_Status(t *testing.T) {
	st, err := models.CommandStart.Status()
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, st)

	st, err = models.CommandStop.Status()
	require.NoError(t, err)
	assert.Equal(t, models.StatusStopped, st)

	_, err = models.Command("pause").Status()
	assert.EqualError(t, err, "the 'command' field must be either 'start' or 'stop'")
}

func TestPlantChanges(t *testing.T) {
	p := models.Plant{Name: "Basil", Status: models.StatusStopped}
	ch := models.PlantChanges{Name: ptr("Mint"), Status: ptr(models.StatusRunning)}

	got := ch.Apply(p)
	assert.Equal(t, "Mint", got.Name)
	assert.Equal(t, models.StatusRunning, got.Status)
	assert.Equal(t, "Basil", p.Name, "Apply must not modify its argument")

	set := ch.SetDoc()
	assert.Len(t, set, 2)
	assert.Equal(t, "Mint", set["name"])
	assert.NotContains(t, set, "auto_mode")
}

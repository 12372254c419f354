package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGridLayout(t *testing.T) {
	grid := DefaultGrid()

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, grid.Days())
	assert.Equal(t, 44, grid.TotalClassSlots())

	for day := 1; day <= 5; day++ {
		assert.Len(t, grid.ClassSlots(day), 8, "weekday %d", day)
		assert.Equal(t, 4, grid.MorningSlots(day), "weekday %d", day)
	}

	// Saturday is a half day without lunch, so every slot counts as morning.
	assert.Len(t, grid.ClassSlots(6), 4)
	assert.Equal(t, 4, grid.MorningSlots(6))
	assert.Equal(t, 6, grid.ShortestDay())
}

func TestDefaultGridSlotOrdering(t *testing.T) {
	grid := DefaultGrid()

	for _, day := range grid.Days() {
		slots := grid.AllSlots(day)
		require.NotEmpty(t, slots)
		for i := 1; i < len(slots); i++ {
			assert.GreaterOrEqual(t, slots[i].Start, slots[i-1].End,
				"day %d: slot %d overlaps previous", day, i)
		}
	}
}

func TestNewGridWithoutLunch(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "08:00", "09:00", SlotClass},
		{1, "09:00", "10:00", SlotClass},
		{2, "08:00", "09:00", SlotClass},
	})

	assert.Equal(t, []int{1, 2}, grid.Days())
	assert.Equal(t, 3, grid.TotalClassSlots())
	assert.Equal(t, 2, grid.MorningSlots(1))
	assert.Equal(t, 1, grid.MorningSlots(2))
	assert.Equal(t, 2, grid.ShortestDay())
}

func TestShortestDayPrefersEarliestOnTie(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "08:00", "09:00", SlotClass},
		{2, "08:00", "09:00", SlotClass},
	})
	assert.Equal(t, 1, grid.ShortestDay())
}

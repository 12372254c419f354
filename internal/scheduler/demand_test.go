package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
)

func detail(id, course, faculty, batch string, hours, students int) models.CourseAssignmentDetail {
	return models.CourseAssignmentDetail{
		CourseAssignment: models.CourseAssignment{
			ID:           id,
			CourseID:     course,
			FacultyID:    faculty,
			BatchID:      batch,
			HoursPerWeek: hours,
		},
		BatchStudentCount: students,
	}
}

func TestExpandDemandHonoursWeeklyHours(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "09:00", "10:00", SlotClass},
		{1, "10:00", "11:00", SlotClass},
		{1, "11:00", "12:00", SlotClass},
		{2, "09:00", "10:00", SlotClass},
		{2, "10:00", "11:00", SlotClass},
	})
	units := ExpandDemand([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 2, 25),
		detail("a2", "c2", "f2", "b2", 3, 30),
	}, grid)

	require.Len(t, units, 5)
	counts := map[string]int{}
	for _, u := range units {
		require.False(t, u.Filler)
		counts[u.AssignmentID]++
	}
	assert.Equal(t, 2, counts["a1"])
	assert.Equal(t, 3, counts["a2"])
}

func TestExpandDemandDefaultsMissingHours(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "09:00", "10:00", SlotClass},
		{1, "10:00", "11:00", SlotClass},
		{1, "11:00", "12:00", SlotClass},
	})
	units := ExpandDemand([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 0, 25),
	}, grid)

	assert.Len(t, units, DefaultHoursPerWeek)
}

func TestExpandDemandSynthesizesFiller(t *testing.T) {
	grid := DefaultGrid()
	assignments := []models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 3, 25),
		detail("a2", "c2", "f2", "b2", 2, 30),
	}
	units := ExpandDemand(assignments, grid)

	require.Len(t, units, grid.TotalClassSlots())
	filler := 0
	for _, u := range units {
		if u.Filler {
			filler++
			assert.NotEmpty(t, u.CourseID)
			assert.NotEmpty(t, u.FacultyID)
			assert.NotEmpty(t, u.BatchID)
		}
	}
	assert.Equal(t, grid.TotalClassSlots()-5, filler)

	// Required units come first, in assignment order.
	for i := 0; i < 5; i++ {
		assert.False(t, units[i].Filler)
	}
}

func TestExpandDemandNoFillerWhenSaturated(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "09:00", "10:00", SlotClass},
		{1, "10:00", "11:00", SlotClass},
	})
	units := ExpandDemand([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 4, 25),
	}, grid)

	require.Len(t, units, 4)
	for _, u := range units {
		assert.False(t, u.Filler)
	}
}

func TestExpandDemandFillerIsDeterministic(t *testing.T) {
	grid := DefaultGrid()
	var assignments []models.CourseAssignmentDetail
	for i := 0; i < 3; i++ {
		assignments = append(assignments, detail(
			fmt.Sprintf("a%d", i), fmt.Sprintf("c%d", i), fmt.Sprintf("f%d", i), fmt.Sprintf("b%d", i), 2, 20))
	}

	first := ExpandDemand(assignments, grid)
	second := ExpandDemand(assignments, grid)
	assert.Equal(t, first, second)
}

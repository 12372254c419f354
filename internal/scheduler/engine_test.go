package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
)

func testRooms(capacities ...int) []models.Room {
	rooms := make([]models.Room, 0, len(capacities))
	for i, c := range capacities {
		rooms = append(rooms, models.Room{ID: fmt.Sprintf("room-%d", i+1), Capacity: c})
	}
	return rooms
}

func TestEngineSchedulesWeeklyHours(t *testing.T) {
	engine := New(DefaultGrid(), testRooms(60), Config{})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 3, 30),
	})

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 1, result.Stats.FullyScheduled)
	assert.Equal(t, 0, result.Stats.PartiallyScheduled)

	grid := DefaultGrid()
	seen := map[string]bool{}
	required := 0
	for _, p := range result.Placements {
		key := fmt.Sprintf("%d/%s", p.Day, p.Start)
		assert.False(t, seen[key], "duplicate cell %s", key)
		seen[key] = true
		if p.Filler {
			continue
		}
		required++

		// High-scoring cells are all pre-lunch.
		morning := false
		for idx, slot := range grid.ClassSlots(p.Day) {
			if slot.Start == p.Start && idx < grid.MorningSlots(p.Day) {
				morning = true
			}
		}
		assert.True(t, morning, "placement at %s is not a morning slot", key)
	}
	assert.Equal(t, 3, required)
}

func TestEngineNeverDoubleBooks(t *testing.T) {
	assignments := []models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 5, 30),
		detail("a2", "c2", "f1", "b2", 5, 30),
		detail("a3", "c3", "f2", "b1", 5, 30),
		detail("a4", "c1", "f2", "b2", 4, 30),
	}
	engine := New(DefaultGrid(), testRooms(60, 60), Config{})
	result := engine.Run(assignments)

	assert.Empty(t, result.Conflicts)
	required := 0
	for _, p := range result.Placements {
		if !p.Filler {
			required++
		}
	}
	assert.Equal(t, 19, required)

	type cell struct {
		key   string
		day   int
		start string
	}
	claimed := map[cell]string{}
	claim := func(dim, key string, p Placement) {
		c := cell{key: dim + "/" + key, day: p.Day, start: p.Start}
		prev, taken := claimed[c]
		assert.False(t, taken, "%s double-booked at day %d %s (first %s, then %s)",
			c.key, p.Day, p.Start, prev, p.AssignmentID)
		claimed[c] = p.AssignmentID
	}
	for _, p := range result.Placements {
		claim("faculty", p.FacultyID, p)
		claim("batch", p.BatchID, p)
		claim("room", p.RoomID, p)
		claim("course", p.CourseID, p)
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	assignments := []models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 4, 25),
		detail("a2", "c2", "f2", "b1", 3, 25),
		detail("a3", "c3", "f1", "b2", 3, 40),
	}
	rooms := testRooms(50, 80)
	cfg := Config{FillGaps: true}

	first := New(DefaultGrid(), rooms, cfg).Run(assignments)
	second := New(DefaultGrid(), rooms, cfg).Run(assignments)

	assert.Equal(t, first.Placements, second.Placements)
	assert.Equal(t, first.Conflicts, second.Conflicts)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestEngineReportsConflictWhenFacultySaturated(t *testing.T) {
	grid := NewGrid([]Slot{
		{1, "09:00", "10:00", SlotClass},
	})
	engine := New(grid, testRooms(60), Config{})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 1, 30),
		detail("a2", "c2", "f1", "b2", 1, 30),
	})

	require.Len(t, result.Placements, 1)
	assert.Equal(t, "a1", result.Placements[0].AssignmentID)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "a2", result.Conflicts[0].AssignmentID)
	assert.Equal(t, "NoCandidateSlot", result.Conflicts[0].Reason)

	assert.Equal(t, 2, result.Stats.TotalAssignments)
	assert.Equal(t, 1, result.Stats.FullyScheduled)
	assert.Equal(t, 1, result.Stats.PartiallyScheduled)
	assert.Equal(t, 1, result.Stats.Conflicts)
}

func TestEngineAttemptBudgetStopsRetries(t *testing.T) {
	// No rooms means no unit can ever be placed; the budget caps the
	// conflicts recorded per assignment at one full scan plus skips.
	engine := New(DefaultGrid(), nil, Config{MaxAttempts: 1})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 3, 30),
	})

	assert.Empty(t, result.Placements)
	assert.Len(t, result.Conflicts, 3)
	assert.Equal(t, 0, result.Stats.FullyScheduled)
	assert.Equal(t, 1, result.Stats.PartiallyScheduled)
}

func TestEngineFillsEntireGrid(t *testing.T) {
	grid := DefaultGrid()
	engine := New(grid, testRooms(60), Config{FillGaps: true})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 3, 30),
	})

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, grid.TotalClassSlots(), len(result.Placements))
	assert.Equal(t, grid.TotalClassSlots(), result.Stats.TotalSlotsCreated)
	assert.Equal(t, grid.TotalClassSlots()-3, result.Stats.FillerSlots)
	assert.Equal(t, 1, result.Stats.FullyScheduled)

	occupied := map[slotRef]bool{}
	for _, p := range result.Placements {
		ref := slotRef{day: p.Day, start: p.Start}
		assert.False(t, occupied[ref], "cell %v filled twice", ref)
		occupied[ref] = true
	}
}

func TestEngineRespectsRoomCapacity(t *testing.T) {
	rooms := testRooms(30, 120)
	engine := New(DefaultGrid(), rooms, Config{})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 3, 80),
	})

	required := 0
	for _, p := range result.Placements {
		assert.Equal(t, "room-2", p.RoomID)
		if !p.Filler {
			required++
		}
	}
	assert.Equal(t, 3, required)
}

func TestEngineSharesSlotAcrossRooms(t *testing.T) {
	// Two independent assignments can land on the same cell when a second
	// room is free there.
	engine := New(DefaultGrid(), testRooms(60, 60), Config{})
	result := engine.Run([]models.CourseAssignmentDetail{
		detail("a1", "c1", "f1", "b1", 1, 30),
		detail("a2", "c2", "f2", "b2", 1, 30),
	})

	require.Len(t, result.Placements, 2)
	p1, p2 := result.Placements[0], result.Placements[1]
	assert.Equal(t, p1.Day, p2.Day)
	assert.Equal(t, p1.Start, p2.Start)
	assert.NotEqual(t, p1.RoomID, p2.RoomID)
}

func TestResultSummary(t *testing.T) {
	result := &Result{Stats: models.RunStatistics{
		TotalAssignments:   4,
		FullyScheduled:     3,
		PartiallyScheduled: 1,
		TotalSlotsCreated:  14,
		Conflicts:          2,
		FillerSlots:        2,
	}}
	assert.Equal(t,
		"scheduled 14 slots (2 filler) for 4 assignments: 3 fully, 1 partially, 2 conflicts",
		result.Summary())
}

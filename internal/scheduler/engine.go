// Package scheduler implements the deterministic, score-greedy timetable
// placer: demand expansion, four-dimension conflict tracking, slot scoring
// with bounded retries, and a gap-fill pass over the remaining cells.
package scheduler

import (
	"fmt"

	"github.com/acadsync/acadsync-api/internal/models"
)

// Config carries the recognized generation options. Algorithm is
// informational; MaxIterations and PopulationSize are accepted for
// compatibility with the config surface but unused by the greedy path.
type Config struct {
	Algorithm          string `json:"algorithm"`
	MaxAttempts        int    `json:"max_iterations"`
	PopulationSize     int    `json:"population_size"`
	RoomCapacityBuffer int    `json:"room_capacity_buffer"`
	FillGaps           bool   `json:"fill_gaps"`
}

const (
	defaultMaxAttempts        = 100
	defaultRoomCapacityBuffer = 5
)

// Conflict records a demand unit that could not be placed. Non-fatal:
// a run with conflicts still completes.
type Conflict struct {
	AssignmentID string `json:"assignment_id"`
	Reason       string `json:"reason"`
}

// Placement is one committed (day, slot, room) cell for a demand unit.
type Placement struct {
	AssignmentID string
	CourseID     string
	FacultyID    string
	BatchID      string
	RoomID       string
	Day          int
	Start        string
	End          string
	Filler       bool
}

// Result is the outcome of one generation run.
type Result struct {
	Placements []Placement
	Conflicts  []Conflict
	Stats      models.RunStatistics
}

// Engine places demand units into the grid for exactly one run. It holds
// run-scoped mutable state and must not be reused or shared.
type Engine struct {
	grid   *Grid
	rooms  []models.Room
	cfg    Config
	ledger *Ledger

	// facultyHeld[faculty][day] maps class-slot index to occupancy, used
	// by the adjacency penalty. facultyDayLoad spreads load across days.
	facultyHeld    map[string]map[int]map[int]bool
	facultyDayLoad map[string]map[int]int

	roomCursor  int
	shortestDay int
}

// New builds an engine over the given grid and room inventory.
func New(grid *Grid, rooms []models.Room, cfg Config) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RoomCapacityBuffer <= 0 {
		cfg.RoomCapacityBuffer = defaultRoomCapacityBuffer
	}
	return &Engine{
		grid:           grid,
		rooms:          rooms,
		cfg:            cfg,
		ledger:         NewLedger(),
		facultyHeld:    make(map[string]map[int]map[int]bool),
		facultyDayLoad: make(map[string]map[int]int),
		shortestDay:    grid.ShortestDay(),
	}
}

// Run expands the assignments into demand units, places each unit at its
// best-scoring free cell, then fills remaining empty cells. Identical
// inputs always produce identical results: ordering is driven by input
// order and the fixed grid enumeration, never by map iteration.
func (e *Engine) Run(assignments []models.CourseAssignmentDetail) *Result {
	result := &Result{}
	units := ExpandDemand(assignments, e.grid)

	requiredHours := make(map[string]int, len(assignments))
	for _, a := range assignments {
		hours := a.HoursPerWeek
		if hours <= 0 {
			hours = DefaultHoursPerWeek
		}
		requiredHours[a.ID] = hours
	}

	attempts := make(map[string]int, len(assignments))
	scheduled := make(map[string]int, len(assignments))

	for _, u := range units {
		if !u.Filler {
			if _, ok := attempts[u.AssignmentID]; !ok {
				attempts[u.AssignmentID] = e.cfg.MaxAttempts
			}
			if attempts[u.AssignmentID] <= 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					AssignmentID: u.AssignmentID,
					Reason:       "NoCandidateSlot",
				})
				continue
			}
		}

		cand, ok := e.selectSlot(u)
		if !ok {
			if u.Filler {
				continue
			}
			attempts[u.AssignmentID]--
			result.Conflicts = append(result.Conflicts, Conflict{
				AssignmentID: u.AssignmentID,
				Reason:       "NoCandidateSlot",
			})
			continue
		}

		e.place(u, cand, result)
		if !u.Filler {
			scheduled[u.AssignmentID]++
		}
	}

	if e.cfg.FillGaps {
		e.fillGaps(assignments, result)
	}

	result.Stats = e.buildStats(assignments, requiredHours, scheduled, result)
	return result
}

// place reserves all four ledger dimensions and appends the record. The
// run is single-threaded so the four reservations commit atomically
// relative to any later candidate scan.
func (e *Engine) place(u Unit, cand candidate, result *Result) {
	e.ledger.Reserve(DimFaculty, u.FacultyID, cand.day, cand.slot.Start)
	e.ledger.Reserve(DimBatch, u.BatchID, cand.day, cand.slot.Start)
	e.ledger.Reserve(DimCourse, u.CourseID, cand.day, cand.slot.Start)
	e.ledger.Reserve(DimRoom, cand.roomID, cand.day, cand.slot.Start)

	if e.facultyHeld[u.FacultyID] == nil {
		e.facultyHeld[u.FacultyID] = make(map[int]map[int]bool)
	}
	if e.facultyHeld[u.FacultyID][cand.day] == nil {
		e.facultyHeld[u.FacultyID][cand.day] = make(map[int]bool)
	}
	e.facultyHeld[u.FacultyID][cand.day][cand.idx] = true

	if e.facultyDayLoad[u.FacultyID] == nil {
		e.facultyDayLoad[u.FacultyID] = make(map[int]int)
	}
	e.facultyDayLoad[u.FacultyID][cand.day]++

	e.roomCursor++

	result.Placements = append(result.Placements, Placement{
		AssignmentID: u.AssignmentID,
		CourseID:     u.CourseID,
		FacultyID:    u.FacultyID,
		BatchID:      u.BatchID,
		RoomID:       cand.roomID,
		Day:          cand.day,
		Start:        cand.slot.Start,
		End:          cand.slot.End,
		Filler:       u.Filler,
	})
}

func (e *Engine) buildStats(
	assignments []models.CourseAssignmentDetail,
	requiredHours map[string]int,
	scheduled map[string]int,
	result *Result,
) models.RunStatistics {
	stats := models.RunStatistics{
		TotalAssignments:  len(assignments),
		TotalSlotsCreated: len(result.Placements),
		Conflicts:         len(result.Conflicts),
	}
	for _, a := range assignments {
		if scheduled[a.ID] >= requiredHours[a.ID] {
			stats.FullyScheduled++
		}
	}
	stats.PartiallyScheduled = stats.TotalAssignments - stats.FullyScheduled
	for _, p := range result.Placements {
		if p.Filler {
			stats.FillerSlots++
		}
	}
	return stats
}

// Summary renders a one-line generation log for the run record.
func (r *Result) Summary() string {
	return fmt.Sprintf("scheduled %d slots (%d filler) for %d assignments: %d fully, %d partially, %d conflicts",
		r.Stats.TotalSlotsCreated,
		r.Stats.FillerSlots,
		r.Stats.TotalAssignments,
		r.Stats.FullyScheduled,
		r.Stats.PartiallyScheduled,
		r.Stats.Conflicts,
	)
}

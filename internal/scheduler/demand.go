package scheduler

import "github.com/acadsync/acadsync-api/internal/models"

// DefaultHoursPerWeek applies when an assignment does not specify its load.
const DefaultHoursPerWeek = 3

// Unit is one atomic teaching hour to be placed into the grid.
type Unit struct {
	AssignmentID string
	CourseID     string
	FacultyID    string
	BatchID      string
	StudentCount int
	Filler       bool
}

// refLists holds the distinct reference identifiers in first-seen order.
// Deterministic ordering here keeps filler synthesis reproducible.
type refLists struct {
	faculty  []string
	courses  []string
	batches  []string
	students map[string]int
}

func collectRefs(assignments []models.CourseAssignmentDetail) refLists {
	refs := refLists{students: make(map[string]int)}
	seenF := make(map[string]bool)
	seenC := make(map[string]bool)
	seenB := make(map[string]bool)
	for _, a := range assignments {
		if !seenF[a.FacultyID] {
			seenF[a.FacultyID] = true
			refs.faculty = append(refs.faculty, a.FacultyID)
		}
		if !seenC[a.CourseID] {
			seenC[a.CourseID] = true
			refs.courses = append(refs.courses, a.CourseID)
		}
		if !seenB[a.BatchID] {
			seenB[a.BatchID] = true
			refs.batches = append(refs.batches, a.BatchID)
		}
		refs.students[a.BatchID] = a.BatchStudentCount
	}
	return refs
}

func (r refLists) empty() bool {
	return len(r.faculty) == 0 || len(r.courses) == 0 || len(r.batches) == 0
}

// ExpandDemand turns each assignment's weekly hours into that many units,
// then synthesizes filler units round-robin over the distinct faculty,
// course and batch lists until demand approaches grid capacity. Filler
// units are tagged and excluded from required-completion statistics.
func ExpandDemand(assignments []models.CourseAssignmentDetail, grid *Grid) []Unit {
	var units []Unit
	required := 0
	for _, a := range assignments {
		hours := a.HoursPerWeek
		if hours <= 0 {
			hours = DefaultHoursPerWeek
		}
		required += hours
		for i := 0; i < hours; i++ {
			units = append(units, Unit{
				AssignmentID: a.ID,
				CourseID:     a.CourseID,
				FacultyID:    a.FacultyID,
				BatchID:      a.BatchID,
				StudentCount: a.BatchStudentCount,
			})
		}
	}

	available := grid.TotalClassSlots()
	if available <= required {
		return units
	}

	refs := collectRefs(assignments)
	if refs.empty() {
		return units
	}

	for i := 0; i < available-required; i++ {
		batchID := refs.batches[i%len(refs.batches)]
		units = append(units, Unit{
			AssignmentID: assignments[i%len(assignments)].ID,
			CourseID:     refs.courses[i%len(refs.courses)],
			FacultyID:    refs.faculty[i%len(refs.faculty)],
			BatchID:      batchID,
			StudentCount: refs.students[batchID],
			Filler:       true,
		})
	}
	return units
}

package scheduler

import "github.com/acadsync/acadsync-api/internal/models"

// fillGaps synthesizes a filler placement for every class cell left empty
// by the main pass, cycling index-modulo over the distinct faculty, course,
// batch and room lists. Filler cells deliberately skip the faculty, batch
// and course conflict checks: they exist to avoid unexplained free cells,
// and never touch required placements. Skipped entirely when any reference
// list is empty.
func (e *Engine) fillGaps(assignments []models.CourseAssignmentDetail, result *Result) {
	if len(assignments) == 0 || len(e.rooms) == 0 {
		return
	}
	refs := collectRefs(assignments)
	if refs.empty() {
		return
	}

	occupied := make(map[slotRef]bool, len(result.Placements))
	for _, p := range result.Placements {
		occupied[slotRef{day: p.Day, start: p.Start}] = true
	}

	idx := 0
	for _, day := range e.grid.Days() {
		for _, slot := range e.grid.ClassSlots(day) {
			if occupied[slotRef{day: day, start: slot.Start}] {
				continue
			}
			batchID := refs.batches[idx%len(refs.batches)]
			result.Placements = append(result.Placements, Placement{
				AssignmentID: assignments[idx%len(assignments)].ID,
				CourseID:     refs.courses[idx%len(refs.courses)],
				FacultyID:    refs.faculty[idx%len(refs.faculty)],
				BatchID:      batchID,
				RoomID:       e.rooms[idx%len(e.rooms)].ID,
				Day:          day,
				Start:        slot.Start,
				End:          slot.End,
				Filler:       true,
			})
			idx++
		}
	}
}

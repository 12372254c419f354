package scheduler

// Scoring weights for candidate (day, slot) pairs. Higher is better.
const (
	scoreMorning        = 10
	scoreEarlyAfternoon = 8
	scoreLateAfternoon  = 5
	penaltyAdjacent     = 5
	penaltyDayLoad      = 2
	bonusLightDay       = 3
	bonusShortDay       = 5

	// Wednesdays are kept morning-heavy so afternoons stay light.
	preferMorningLightDay = 3

	// Early afternoon covers the first class slots after lunch.
	earlyAfternoonSpan = 3
)

type candidate struct {
	day    int
	idx    int
	slot   Slot
	roomID string
	score  int
}

// selectSlot scans every (day, class slot) pair in fixed day-then-slot
// order, discards conflicting candidates and returns the best-scoring one.
// The first candidate reaching the maximum score wins, so selection is
// fully deterministic.
func (e *Engine) selectSlot(u Unit) (candidate, bool) {
	var best candidate
	found := false
	for _, day := range e.grid.Days() {
		for idx, slot := range e.grid.ClassSlots(day) {
			if !e.ledger.Free(DimFaculty, u.FacultyID, day, slot.Start) {
				continue
			}
			if !e.ledger.Free(DimBatch, u.BatchID, day, slot.Start) {
				continue
			}
			if !e.ledger.Free(DimCourse, u.CourseID, day, slot.Start) {
				continue
			}
			roomID, ok := e.pickRoom(u, day, slot.Start)
			if !ok {
				continue
			}
			score := e.scoreCandidate(u, day, idx)
			if !found || score > best.score {
				best = candidate{day: day, idx: idx, slot: slot, roomID: roomID, score: score}
				found = true
			}
		}
	}
	return best, found
}

func (e *Engine) scoreCandidate(u Unit, day, idx int) int {
	morning := e.grid.MorningSlots(day)

	var score int
	switch {
	case idx < morning:
		score = scoreMorning
	case idx < morning+earlyAfternoonSpan:
		score = scoreEarlyAfternoon
	default:
		score = scoreLateAfternoon
	}

	held := e.facultyHeld[u.FacultyID][day]
	if held[idx-1] {
		score -= penaltyAdjacent
	}
	if held[idx+1] {
		score -= penaltyAdjacent
	}
	score -= penaltyDayLoad * e.facultyDayLoad[u.FacultyID][day]

	if idx < morning {
		if day == preferMorningLightDay {
			score += bonusLightDay
		}
		if day == e.shortestDay {
			score += bonusShortDay
		}
	}
	return score
}

// pickRoom filters rooms by required capacity, then round-robins over the
// eligible ones starting at a cursor that advances with each placement.
func (e *Engine) pickRoom(u Unit, day int, start string) (string, bool) {
	needed := u.StudentCount + e.cfg.RoomCapacityBuffer
	var eligible []string
	for _, r := range e.rooms {
		if r.Capacity >= needed {
			eligible = append(eligible, r.ID)
		}
	}
	if len(eligible) == 0 {
		return "", false
	}
	for i := 0; i < len(eligible); i++ {
		roomID := eligible[(e.roomCursor+i)%len(eligible)]
		if e.ledger.Free(DimRoom, roomID, day, start) {
			return roomID, true
		}
	}
	return "", false
}

package scheduler

// SlotKind tags a grid slot as teachable or a pause.
type SlotKind string

const (
	SlotClass SlotKind = "class"
	SlotBreak SlotKind = "break"
	SlotLunch SlotKind = "lunch"
)

// Slot is one cell of the weekly grid. Days run 1=Monday .. 6=Saturday;
// there is no Sunday slot.
type Slot struct {
	Day   int
	Start string
	End   string
	Kind  SlotKind
}

// Grid holds the static weekly slot layout. Slots within a day are
// non-overlapping and chronologically ordered; days may expose different
// subsets (Saturday is a half day).
type Grid struct {
	days       []int
	slots      map[int][]Slot
	classSlots map[int][]Slot
	// preLunch[day] is the number of class slots before the lunch slot.
	// Days without a lunch slot treat every class slot as morning.
	preLunch map[int]int
}

// NewGrid groups slots by day preserving the given per-day order.
func NewGrid(slots []Slot) *Grid {
	g := &Grid{
		slots:      make(map[int][]Slot),
		classSlots: make(map[int][]Slot),
		preLunch:   make(map[int]int),
	}
	for _, s := range slots {
		if _, seen := g.slots[s.Day]; !seen {
			g.days = append(g.days, s.Day)
		}
		g.slots[s.Day] = append(g.slots[s.Day], s)
		if s.Kind == SlotClass {
			g.classSlots[s.Day] = append(g.classSlots[s.Day], s)
		}
	}
	for _, day := range g.days {
		count := 0
		sawLunch := false
		for _, s := range g.slots[day] {
			switch s.Kind {
			case SlotLunch:
				sawLunch = true
			case SlotClass:
				if !sawLunch {
					count++
				}
			}
		}
		if !sawLunch {
			count = len(g.classSlots[day])
		}
		g.preLunch[day] = count
	}
	return g
}

// DefaultGrid returns the standard teaching week: Monday to Friday with
// eight class hours split around a mid-morning break, lunch and a
// mid-afternoon break; Saturday with four morning class hours only.
func DefaultGrid() *Grid {
	var slots []Slot
	for day := 1; day <= 5; day++ {
		slots = append(slots,
			Slot{day, "09:00", "10:00", SlotClass},
			Slot{day, "10:00", "11:00", SlotClass},
			Slot{day, "11:00", "11:15", SlotBreak},
			Slot{day, "11:15", "12:15", SlotClass},
			Slot{day, "12:15", "13:15", SlotClass},
			Slot{day, "13:15", "14:00", SlotLunch},
			Slot{day, "14:00", "15:00", SlotClass},
			Slot{day, "15:00", "16:00", SlotClass},
			Slot{day, "16:00", "16:15", SlotBreak},
			Slot{day, "16:15", "17:15", SlotClass},
			Slot{day, "17:15", "18:15", SlotClass},
		)
	}
	slots = append(slots,
		Slot{6, "09:00", "10:00", SlotClass},
		Slot{6, "10:00", "11:00", SlotClass},
		Slot{6, "11:00", "11:15", SlotBreak},
		Slot{6, "11:15", "12:15", SlotClass},
		Slot{6, "12:15", "13:15", SlotClass},
	)
	return NewGrid(slots)
}

// Days returns the working days in definition order.
func (g *Grid) Days() []int {
	return g.days
}

// AllSlots returns every slot of a day, breaks and lunch included.
func (g *Grid) AllSlots(day int) []Slot {
	return g.slots[day]
}

// ClassSlots returns the ordered teachable slots of a day.
func (g *Grid) ClassSlots(day int) []Slot {
	return g.classSlots[day]
}

// TotalClassSlots is the week-wide count of teachable cells.
func (g *Grid) TotalClassSlots() int {
	total := 0
	for _, day := range g.days {
		total += len(g.classSlots[day])
	}
	return total
}

// ShortestDay returns the day with the fewest class slots; the earliest
// such day wins ties. Returns 0 for an empty grid.
func (g *Grid) ShortestDay() int {
	shortest := 0
	best := -1
	for _, day := range g.days {
		n := len(g.classSlots[day])
		if best == -1 || n < best {
			best = n
			shortest = day
		}
	}
	return shortest
}

// MorningSlots is the number of class slots before lunch on the given day.
func (g *Grid) MorningSlots(day int) int {
	return g.preLunch[day]
}

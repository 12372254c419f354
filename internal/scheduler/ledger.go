package scheduler

// Dimension identifies one of the four mutual-exclusion axes tracked per run.
type Dimension int

const (
	DimFaculty Dimension = iota
	DimBatch
	DimRoom
	DimCourse
	dimCount
)

type slotRef struct {
	day   int
	start string
}

// Ledger tracks which (key, day, start) tuples are claimed in each
// dimension. It is scoped to a single generation run and is never shared
// across concurrent runs. Callers must check Free before Reserve
// (check-then-act, single-threaded).
type Ledger struct {
	busy [dimCount]map[string]map[slotRef]bool
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	l := &Ledger{}
	for d := range l.busy {
		l.busy[d] = make(map[string]map[slotRef]bool)
	}
	return l
}

// Free reports whether no prior placement claimed the tuple.
func (l *Ledger) Free(dim Dimension, key string, day int, start string) bool {
	claims := l.busy[dim][key]
	if claims == nil {
		return true
	}
	return !claims[slotRef{day: day, start: start}]
}

// Reserve marks the tuple busy.
func (l *Ledger) Reserve(dim Dimension, key string, day int, start string) {
	claims := l.busy[dim][key]
	if claims == nil {
		claims = make(map[slotRef]bool)
		l.busy[dim][key] = claims
	}
	claims[slotRef{day: day, start: start}] = true
}

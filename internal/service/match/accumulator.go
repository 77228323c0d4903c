package match

// Accumulator sums per-unit mention maps into run totals. It replaces a
// process-wide running total with an explicit value threaded through the
// scan, keeping extraction and trend detection independently testable.
type Accumulator struct {
	counts map[string]int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{counts: make(map[string]int)}
}

// Add merges one text unit's mention map into the totals.
func (a *Accumulator) Add(mentions map[string]int) {
	for symbol, n := range mentions {
		a.counts[symbol] += n
	}
}

// Total returns the running total for symbol.
func (a *Accumulator) Total(symbol string) int {
	return a.counts[symbol]
}

// Counts returns a copy of all totals.
func (a *Accumulator) Counts() map[string]int {
	out := make(map[string]int, len(a.counts))
	for s, n := range a.counts {
		out[s] = n
	}
	return out
}

// AtLeast returns the totals with count >= min, the snapshot cut applied at
// the end of a run.
func (a *Accumulator) AtLeast(min int) map[string]int {
	out := make(map[string]int)
	for s, n := range a.counts {
		if n >= min {
			out[s] = n
		}
	}
	return out
}

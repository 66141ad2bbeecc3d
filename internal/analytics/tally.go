package analytics

import "slices"

// tally counts per product and remembers first-seen order for tie-breaks.
type tally struct {
	index  map[ProductID]int
	counts []ProductTally
}

func newTally() *tally {
	return &tally{index: make(map[ProductID]int)}
}

func (t *tally) add(id ProductID, n int) {
	idx, ok := t.index[id]
	if !ok {
		idx = len(t.counts)
		t.index[id] = idx
		t.counts = append(t.counts, ProductTally{ProductID: id})
	}
	t.counts[idx].Count += n
}

// ranked returns counts sorted descending, truncated to limit.
func (t *tally) ranked(limit int) []ProductTally {
	out := make([]ProductTally, len(t.counts))
	copy(out, t.counts)

	slices.SortStableFunc(out, func(a, b ProductTally) int {
		return b.Count - a.Count
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

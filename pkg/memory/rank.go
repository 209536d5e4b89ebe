package memory

import "sort"

// Scored pairs a candidate with its relevance score. The fact, topic, and
// message ranking paths all select winners through the same routine instead
// of carrying their own sort-and-slice blocks.
type Scored[T any] struct {
	Item  T
	Score float64
}

// TopK sorts scored candidates by score descending (stable, so callers
// control tie order by input order) and truncates to k. k <= 0 means no cap.
func TopK[T any](scored []Scored[T], k int) []Scored[T] {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// sortStableByDesc orders a slice by an integer key descending, keeping the
// original order among ties.
func sortStableByDesc[T any](items []T, key func(T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package geo

import (
	"math"
	"sort"
)

const (
	// overlapThreshold is the minimum ratio of intersection area to the
	// smaller rectangle's area that triggers an overlap merge.
	overlapThreshold = 0.1
	// adjacencyGap is the maximum distance in page units between facing
	// edges for two disjoint rectangles to be folded together.
	adjacencyGap = 5.0
)

// Merge collapses overlapping or near-adjacent rectangles into larger
// regions. Input rectangles are sorted by (Y0, X0) so the greedy single
// pass is deterministic; within the pass the first accumulator entry that
// overlaps or abuts an incoming rectangle absorbs it. The pass is not a
// transitive closure: the result is reproducible but not globally minimal.
// Merge is idempotent on its own output.
func Merge(rects []Rect) []Rect {
	if len(rects) == 0 {
		return nil
	}
	sorted := make([]Rect, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	merged := []Rect{sorted[0]}
	for _, cur := range sorted[1:] {
		absorbed := false
		for i, existing := range merged {
			inter := existing.Intersect(cur)
			if inter.IsEmpty() {
				if nearAdjacent(existing, cur) {
					merged[i] = existing.Union(cur)
					absorbed = true
					break
				}
				continue
			}
			minArea := math.Min(existing.Area(), cur.Area())
			if minArea > 0 && inter.Area()/minArea > overlapThreshold {
				merged[i] = existing.Union(cur)
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, cur)
		}
	}
	return merged
}

func nearAdjacent(a, b Rect) bool {
	return math.Abs(a.X1-b.X0) < adjacencyGap ||
		math.Abs(a.X0-b.X1) < adjacencyGap ||
		math.Abs(a.Y1-b.Y0) < adjacencyGap ||
		math.Abs(a.Y0-b.Y1) < adjacencyGap
}

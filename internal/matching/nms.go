package matching

import (
	"sort"

	"github.com/MeKo-Tech/mtm/internal/detection"
)

// ObjectCount bounds how many detections the suppression stage may return.
// It is either an exact positive count or unbounded; no float sentinel is
// involved. The zero value is invalid and rejected by MatchTemplates.
type ObjectCount struct {
	n         int
	unbounded bool
}

// Exactly returns a count capping the result at n detections.
func Exactly(n int) ObjectCount { return ObjectCount{n: n} }

// Unbounded returns a count imposing no cap: suppression runs until no
// non-overlapping candidates remain.
func Unbounded() ObjectCount { return ObjectCount{unbounded: true} }

// Limit returns the cap and whether one applies.
func (c ObjectCount) Limit() (int, bool) {
	if c.unbounded {
		return 0, false
	}
	return c.n, true
}

// IsSingle reports whether exactly one object is expected. The matching layer
// then switches to global-maximum peak detection per template.
func (c ObjectCount) IsSingle() bool { return !c.unbounded && c.n == 1 }

// ComputeIoU returns the intersection-over-union of two detections, or 0 when
// the shapes neither overlap nor contain one another. The explicit
// classification step avoids dividing for pairs whose geometric relationship
// already decides the answer.
func ComputeIoU(d1, d2 detection.Detection) (float64, error) {
	if !(d1.Overlaps(d2) || d1.Contains(d2) || d2.Contains(d1)) {
		return 0, nil
	}
	return d1.IntersectionOverUnion(d2)
}

// RunNMS performs greedy overlap-based Non-Maxima Suppression on a pool of
// candidate detections.
//
// The pool is sorted by score, best first (descending when sortDescending,
// for correlation-style scores; ascending for difference-style scores). The
// sort is stable: candidates with equal scores keep their relative input
// order. The best candidate seeds the accepted list; every further candidate
// is accepted iff its IoU with each already accepted detection stays at or
// below maxOverlap. Iteration stops early once the accepted list reaches the
// count cap.
//
// maxOverlap is expected to be validated by the caller. The input slice is
// left untouched, sorting happens on a copy.
func RunNMS(pool []detection.Detection, maxOverlap float64, count ObjectCount,
	sortDescending bool,
) ([]detection.Detection, error) {
	if len(pool) <= 1 {
		return pool, nil
	}

	sorted := make([]detection.Detection, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortDescending {
			return sorted[i].Score() > sorted[j].Score()
		}
		return sorted[i].Score() < sorted[j].Score()
	})

	accepted := sorted[:1:1]
	limit, bounded := count.Limit()

	for _, candidate := range sorted[1:] {
		if bounded && len(accepted) == limit {
			break
		}

		keep := true
		for _, final := range accepted {
			iou, err := ComputeIoU(candidate, final)
			if err != nil {
				return nil, err
			}
			if iou > maxOverlap {
				keep = false
				break
			}
		}
		if keep {
			accepted = append(accepted, candidate)
		}
	}

	return accepted, nil
}

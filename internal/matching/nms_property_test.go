package matching

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/mtm/internal/detection"
)

// genDetection generates a random detection box.
func genDetection() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 190),
		gen.IntRange(0, 190),
		gen.Float64Range(0.01, 1.0),
	).Map(func(vals []interface{}) detection.Detection {
		x, ok := vals[0].(int)
		if !ok {
			panic("expected int")
		}
		y, ok := vals[1].(int)
		if !ok {
			panic("expected int")
		}
		score, ok := vals[2].(float64)
		if !ok {
			panic("expected float64")
		}
		return detection.NewBoundingBox(x, y, 10, 10, score, 0, "")
	})
}

// genDetectionPool generates a pool of candidate detections.
func genDetectionPool() gopter.Gen {
	return gen.SliceOfN(20, genDetection())
}

// TestRunNMS_SizeBounds verifies the result never exceeds the cap nor the pool size.
func TestRunNMS_SizeBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("result size <= min(pool size, cap)", prop.ForAll(
		func(pool []detection.Detection, maxOverlap float64, cap int) bool {
			out, err := RunNMS(pool, maxOverlap, Exactly(cap), true)
			if err != nil {
				return false
			}
			return len(out) <= len(pool) && len(out) <= cap
		},
		genDetectionPool(),
		gen.Float64Range(0, 1),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

// TestRunNMS_PairwiseOverlap verifies no accepted pair exceeds the overlap threshold.
func TestRunNMS_PairwiseOverlap(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("accepted detections stay under maxOverlap", prop.ForAll(
		func(pool []detection.Detection, maxOverlap float64) bool {
			out, err := RunNMS(pool, maxOverlap, Unbounded(), true)
			if err != nil {
				return false
			}
			for i := range out {
				for j := i + 1; j < len(out); j++ {
					iou, err := ComputeIoU(out[i], out[j])
					if err != nil || iou > maxOverlap {
						return false
					}
				}
			}
			return true
		},
		genDetectionPool(),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

// TestRunNMS_OutputSorted verifies the result is ordered best-first.
func TestRunNMS_OutputSorted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("result is sorted by score descending", prop.ForAll(
		func(pool []detection.Detection) bool {
			out, err := RunNMS(pool, 0.5, Unbounded(), true)
			if err != nil {
				return false
			}
			for i := 1; i < len(out); i++ {
				if out[i].Score() > out[i-1].Score() {
					return false
				}
			}
			return true
		},
		genDetectionPool(),
	))

	properties.TestingRun(t)
}

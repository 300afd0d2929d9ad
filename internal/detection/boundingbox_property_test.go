package detection

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genBoundingBox generates a random non-degenerate box.
func genBoundingBox() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 200),
		gen.IntRange(0, 200),
		gen.IntRange(2, 50),
		gen.IntRange(2, 50),
		gen.Float64Range(0.01, 1.0),
	).Map(func(vals []interface{}) BoundingBox {
		x, ok := vals[0].(int)
		if !ok {
			panic("expected int")
		}
		y, ok := vals[1].(int)
		if !ok {
			panic("expected int")
		}
		w, ok := vals[2].(int)
		if !ok {
			panic("expected int")
		}
		h, ok := vals[3].(int)
		if !ok {
			panic("expected int")
		}
		score, ok := vals[4].(float64)
		if !ok {
			panic("expected float64")
		}
		return NewBoundingBox(x, y, w, h, score, 0, "")
	})
}

// TestIoU_Symmetry verifies IoU(a,b) == IoU(b,a).
func TestIoU_Symmetry(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IoU is symmetric", prop.ForAll(
		func(a, b BoundingBox) bool {
			ab, errAB := a.IntersectionOverUnion(b)
			ba, errBA := b.IntersectionOverUnion(a)
			if errAB != nil || errBA != nil {
				return errAB != nil && errBA != nil
			}
			return math.Abs(ab-ba) < 1e-12
		},
		genBoundingBox(),
		genBoundingBox(),
	))

	properties.TestingRun(t)
}

// TestIoU_SelfMatch verifies IoU(a,a) == 1 for non-degenerate boxes.
func TestIoU_SelfMatch(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IoU with self is 1", prop.ForAll(
		func(a BoundingBox) bool {
			iou, err := a.IntersectionOverUnion(a)
			return err == nil && math.Abs(iou-1.0) < 1e-12
		},
		genBoundingBox(),
	))

	properties.TestingRun(t)
}

// TestIoU_Range verifies IoU lies in [0,1].
func TestIoU_Range(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IoU is within [0,1]", prop.ForAll(
		func(a, b BoundingBox) bool {
			iou, err := a.IntersectionOverUnion(b)
			if err != nil {
				return false
			}
			return iou >= 0 && iou <= 1
		},
		genBoundingBox(),
		genBoundingBox(),
	))

	properties.TestingRun(t)
}

// TestIntersection_BoundedByAreas verifies the intersection never exceeds
// either box's own area.
func TestIntersection_BoundedByAreas(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("intersection <= min(area a, area b)", prop.ForAll(
		func(a, b BoundingBox) bool {
			inter := a.IntersectionArea(b)
			return inter <= a.area()+1e-9 && inter <= b.area()+1e-9
		},
		genBoundingBox(),
		genBoundingBox(),
	))

	properties.TestingRun(t)
}

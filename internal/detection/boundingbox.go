package detection

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/mtm/internal/utils"
)

// BoundingBox is the axis-aligned Detection implementation. The box spans
// pixels x..x+w-1 and y..y+h-1 inclusive; its geometric shape is the closed
// polygon over those corner coordinates, so a box of width w covers a
// continuous extent of w-1. Matching relies on that convention, switching to
// exclusive upper bounds shifts IoU values at the margin.
type BoundingBox struct {
	x, y          int
	width, height int
	score         float64
	templateIndex int
	label         string
}

// NewBoundingBox builds a detection from an (x, y, width, height) extent, a
// confidence score, the index of the producing template and an optional label.
func NewBoundingBox(x, y, width, height int, score float64, templateIndex int, label string) BoundingBox {
	return BoundingBox{
		x:             x,
		y:             y,
		width:         width,
		height:        height,
		score:         score,
		templateIndex: templateIndex,
		label:         label,
	}
}

// Label returns the category tag, "" when unset.
func (b BoundingBox) Label() string { return b.label }

// Score returns the confidence of this detection.
func (b BoundingBox) Score() float64 { return b.score }

// TemplateIndex returns the producing template's position in the input list.
func (b BoundingBox) TemplateIndex() int { return b.templateIndex }

// XYWH returns the top-left corner and the pixel counts of the box.
func (b BoundingBox) XYWH() (x, y, width, height int) {
	return b.x, b.y, b.width, b.height
}

// Corners returns the four polygon summits in drawing order.
func (b BoundingBox) Corners() []utils.Point {
	x0, y0 := float64(b.x), float64(b.y)
	x1, y1 := float64(b.x+b.width-1), float64(b.y+b.height-1)
	return []utils.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// Rescale returns a new box with all four extent values multiplied by factor.
// Score, template index and label are preserved.
func (b BoundingBox) Rescale(factor int) BoundingBox {
	return BoundingBox{
		x:             b.x * factor,
		y:             b.y * factor,
		width:         b.width * factor,
		height:        b.height * factor,
		score:         b.score,
		templateIndex: b.templateIndex,
		label:         b.label,
	}
}

// area returns the continuous area of the polygon spanned by the inclusive
// pixel extent, ie (w-1)*(h-1).
func (b BoundingBox) area() float64 {
	return float64(b.width-1) * float64(b.height-1)
}

// extent returns the continuous corner coordinates of the polygon.
func (b BoundingBox) extent() (minX, minY, maxX, maxY float64) {
	return float64(b.x), float64(b.y), float64(b.x + b.width - 1), float64(b.y + b.height - 1)
}

// otherExtent derives the continuous extent for any Detection via its XYWH.
func otherExtent(d Detection) (minX, minY, maxX, maxY float64) {
	x, y, w, h := d.XYWH()
	return float64(x), float64(y), float64(x + w - 1), float64(y + h - 1)
}

func otherArea(d Detection) float64 {
	_, _, w, h := d.XYWH()
	return float64(w-1) * float64(h-1)
}

// IntersectionArea returns the overlap area with another detection, 0 when disjoint.
func (b BoundingBox) IntersectionArea(other Detection) float64 {
	aMinX, aMinY, aMaxX, aMaxY := b.extent()
	oMinX, oMinY, oMaxX, oMaxY := otherExtent(other)

	w := math.Min(aMaxX, oMaxX) - math.Max(aMinX, oMinX)
	h := math.Min(aMaxY, oMaxY) - math.Max(aMinY, oMinY)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// UnionArea returns area(a) + area(b) - intersection(a, b).
func (b BoundingBox) UnionArea(other Detection) float64 {
	return b.area() + otherArea(other) - b.IntersectionArea(other)
}

// IntersectionOverUnion returns the IoU ratio with another detection.
func (b BoundingBox) IntersectionOverUnion(other Detection) (float64, error) {
	union := b.UnionArea(other)
	if union <= 0 {
		return 0, ErrZeroAreaUnion
	}
	return b.IntersectionArea(other) / union, nil
}

// Overlaps reports whether the interiors of both shapes intersect while
// neither fully contains the other. Shapes touching only along an edge do
// not overlap.
func (b BoundingBox) Overlaps(other Detection) bool {
	aMinX, aMinY, aMaxX, aMaxY := b.extent()
	oMinX, oMinY, oMaxX, oMaxY := otherExtent(other)

	interiorsIntersect := math.Min(aMaxX, oMaxX) > math.Max(aMinX, oMinX) &&
		math.Min(aMaxY, oMaxY) > math.Max(aMinY, oMinY)
	if !interiorsIntersect {
		return false
	}
	return !b.Contains(other) && !containsExtent(oMinX, oMinY, oMaxX, oMaxY, aMinX, aMinY, aMaxX, aMaxY)
}

// Contains reports whether other lies entirely within this box, boundary included.
func (b BoundingBox) Contains(other Detection) bool {
	aMinX, aMinY, aMaxX, aMaxY := b.extent()
	oMinX, oMinY, oMaxX, oMaxY := otherExtent(other)
	return containsExtent(aMinX, aMinY, aMaxX, aMaxY, oMinX, oMinY, oMaxX, oMaxY)
}

func containsExtent(aMinX, aMinY, aMaxX, aMaxY, oMinX, oMinY, oMaxX, oMaxY float64) bool {
	return oMinX >= aMinX && oMinY >= aMinY && oMaxX <= aMaxX && oMaxY <= aMaxY
}

// String renders the box for logs and debugging output.
func (b BoundingBox) String() string {
	s := fmt.Sprintf("(BoundingBox, score:%.2f, xywh:(%d, %d, %d, %d), index:%d",
		b.score, b.x, b.y, b.width, b.height, b.templateIndex)
	if b.label != "" {
		s += ", " + b.label
	}
	return s + ")"
}

// RescaleAll rescales every box in the list by the given factor, returning a
// new list. Used to map detections found on a downscaled image back to the
// original resolution.
func RescaleAll(boxes []BoundingBox, factor int) []BoundingBox {
	out := make([]BoundingBox, len(boxes))
	for i, b := range boxes {
		out[i] = b.Rescale(factor)
	}
	return out
}

package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxAccessors(t *testing.T) {
	b := NewBoundingBox(10, 20, 30, 40, 0.75, 2, "coin")
	x, y, w, h := b.XYWH()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)
	assert.Equal(t, 30, w)
	assert.Equal(t, 40, h)
	assert.InDelta(t, 0.75, b.Score(), 1e-12)
	assert.Equal(t, 2, b.TemplateIndex())
	assert.Equal(t, "coin", b.Label())
}

func TestBoundingBoxCorners(t *testing.T) {
	b := NewBoundingBox(0, 0, 10, 10, 1, 0, "")
	corners := b.Corners()
	require.Len(t, corners, 4)
	// Pixel-inclusive convention: a box of width 10 ends at coordinate 9.
	assert.InDelta(t, 9.0, corners[2].X, 0)
	assert.InDelta(t, 9.0, corners[2].Y, 0)
}

func TestIntersectionArea(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10, 0.9, 0, "")
	b := NewBoundingBox(5, 5, 10, 10, 0.8, 0, "")
	// Extents [0,9] and [5,14]: shared strip is 4x4.
	assert.InDelta(t, 16.0, a.IntersectionArea(b), 1e-9)
	assert.InDelta(t, 16.0, b.IntersectionArea(a), 1e-9)
}

func TestIntersectionAreaDisjoint(t *testing.T) {
	a := NewBoundingBox(0, 0, 5, 5, 0.9, 0, "")
	b := NewBoundingBox(20, 20, 5, 5, 0.8, 0, "")
	assert.InDelta(t, 0.0, a.IntersectionArea(b), 0)
}

func TestUnionArea(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10, 0.9, 0, "")
	b := NewBoundingBox(5, 5, 10, 10, 0.8, 0, "")
	// 81 + 81 - 16
	assert.InDelta(t, 146.0, a.UnionArea(b), 1e-9)
}

func TestIntersectionOverUnion(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10, 0.9, 0, "")
	b := NewBoundingBox(5, 5, 10, 10, 0.8, 0, "")

	iou, err := a.IntersectionOverUnion(b)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/146.0, iou, 1e-9)

	// Symmetry
	iou2, err := b.IntersectionOverUnion(a)
	require.NoError(t, err)
	assert.InDelta(t, iou, iou2, 1e-12)
}

func TestIntersectionOverUnionSelf(t *testing.T) {
	a := NewBoundingBox(3, 7, 12, 9, 0.5, 0, "")
	iou, err := a.IntersectionOverUnion(a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, iou, 1e-12)
}

func TestIntersectionOverUnionZeroAreaUnion(t *testing.T) {
	// 1x1 boxes span a single coordinate and have no continuous area.
	a := NewBoundingBox(4, 4, 1, 1, 0.9, 0, "")
	b := NewBoundingBox(4, 4, 1, 1, 0.8, 0, "")
	_, err := a.IntersectionOverUnion(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroAreaUnion))
}

func TestOverlaps(t *testing.T) {
	a := NewBoundingBox(0, 0, 10, 10, 0.9, 0, "")
	b := NewBoundingBox(5, 5, 10, 10, 0.8, 0, "")
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
}

func TestOverlapsEdgeTouching(t *testing.T) {
	// Extents [0,9] and [9,18] share only the boundary line x=9.
	a := NewBoundingBox(0, 0, 10, 10, 0.9, 0, "")
	b := NewBoundingBox(9, 0, 10, 10, 0.8, 0, "")
	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestOverlapsExcludesContainment(t *testing.T) {
	outer := NewBoundingBox(0, 0, 20, 20, 0.9, 0, "")
	inner := NewBoundingBox(5, 5, 6, 6, 0.8, 0, "")
	assert.False(t, outer.Overlaps(inner))
	assert.False(t, inner.Overlaps(outer))
}

func TestContains(t *testing.T) {
	outer := NewBoundingBox(0, 0, 20, 20, 0.9, 0, "")
	inner := NewBoundingBox(5, 5, 6, 6, 0.8, 0, "")
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))

	// Boundary-inclusive: a box contains itself.
	assert.True(t, outer.Contains(outer))
}

func TestRescale(t *testing.T) {
	b := NewBoundingBox(7, 11, 13, 17, 0.6, 3, "cell")
	scaled := b.Rescale(4)

	x, y, w, h := scaled.XYWH()
	assert.Equal(t, 28, x)
	assert.Equal(t, 44, y)
	assert.Equal(t, 52, w)
	assert.Equal(t, 68, h)
	assert.InDelta(t, 0.6, scaled.Score(), 1e-12)
	assert.Equal(t, 3, scaled.TemplateIndex())
	assert.Equal(t, "cell", scaled.Label())
}

func TestRescaleAll(t *testing.T) {
	boxes := []BoundingBox{
		NewBoundingBox(1, 2, 3, 4, 0.5, 0, ""),
		NewBoundingBox(5, 6, 7, 8, 0.4, 1, ""),
	}
	scaled := RescaleAll(boxes, 2)
	require.Len(t, scaled, 2)
	x, y, w, h := scaled[1].XYWH()
	assert.Equal(t, []int{10, 12, 14, 16}, []int{x, y, w, h})
	// Input untouched.
	x, _, _, _ = boxes[1].XYWH()
	assert.Equal(t, 5, x)
}

func TestStringRendering(t *testing.T) {
	labeled := NewBoundingBox(0, 0, 10, 10, 0.5, 0, "Test")
	assert.Contains(t, labeled.String(), "Test")
	unlabeled := NewBoundingBox(0, 0, 10, 10, 0.5, 0, "")
	assert.NotContains(t, unlabeled.String(), ", )")
}

// Package detection defines the detection model shared by the matching and
// suppression stages: a capability interface for anything that can report a
// score and take part in overlap geometry, and an axis-aligned bounding-box
// implementation of it.
package detection

import (
	"errors"

	"github.com/MeKo-Tech/mtm/internal/utils"
)

// ErrZeroAreaUnion is returned when an intersection-over-union ratio is
// requested for a pair of shapes whose union has no area. Boxes built from
// width/height >= 2 always have positive area, so this only fires on
// malformed input.
var ErrZeroAreaUnion = errors.New("intersection over union undefined: union area is zero")

// Detection describes one candidate or confirmed template match. Scores,
// template indices and labels never participate in geometry; overlap is
// decided purely by shape. Implementations must be immutable after
// construction.
type Detection interface {
	// Label returns the category tag for this detection, or "" when unset.
	Label() string

	// Score returns the confidence of this detection.
	Score() float64

	// TemplateIndex returns the position of the producing template in the
	// original template list.
	TemplateIndex() int

	// XYWH returns the axis-aligned extent as top-left corner plus pixel counts.
	XYWH() (x, y, width, height int)

	// Corners returns the summit coordinates of the detection shape in order,
	// suitable for outline drawing.
	Corners() []utils.Point

	// IntersectionArea returns the area shared with another detection, 0 when
	// the shapes are disjoint.
	IntersectionArea(other Detection) float64

	// UnionArea returns the combined area covered by this detection and another.
	UnionArea(other Detection) float64

	// IntersectionOverUnion returns the IoU ratio with another detection.
	// It fails with ErrZeroAreaUnion when both shapes are degenerate.
	IntersectionOverUnion(other Detection) (float64, error)

	// Overlaps reports whether the two shapes' interiors intersect while
	// neither contains the other.
	Overlaps(other Detection) bool

	// Contains reports whether other lies entirely within this detection,
	// boundary included.
	Contains(other Detection) bool
}

// Package matching implements template-based object localization: sliding
// normalized cross-correlation, peak extraction and greedy Non-Maxima
// Suppression over the resulting candidate detections.
package matching

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/mtm/internal/common"
	"github.com/MeKo-Tech/mtm/internal/detection"
	"github.com/MeKo-Tech/mtm/internal/utils"
)

var (
	// ErrMaxOverlapRange is returned when maxOverlap lies outside [0, 1].
	ErrMaxOverlapRange = errors.New("maximal overlap between bounding boxes must be in range [0, 1]")

	// ErrObjectCountRange is returned for a bounded expected object count below 1.
	ErrObjectCountRange = errors.New("expected object count must be at least 1")

	// ErrDownscalingRange is returned for a downscaling factor below 1.
	ErrDownscalingRange = errors.New("downscaling factor must be >= 1")

	// ErrLabelCountMismatch is returned when a label list is provided whose
	// length differs from the template list.
	ErrLabelCountMismatch = errors.New("there must be one label per template")

	// ErrTemplateTooLarge is returned when a template exceeds the search
	// region along any axis.
	ErrTemplateTooLarge = errors.New("template is larger than the search region")
)

// SearchRegion restricts matching to a rectangular sub-region of the image.
// Detections are still reported in full-image coordinates.
type SearchRegion struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Options configures a matching run.
type Options struct {
	// Labels optionally tags each template with a category; when set it must
	// be parallel to the template list.
	Labels []string

	// ScoreThreshold is the minimal correlation score for a peak to become a
	// candidate detection. Meaningful range for normalized correlation is [0, 1].
	ScoreThreshold float64

	// MaxOverlap is the largest IoU tolerated between two final detections.
	MaxOverlap float64

	// Count is the expected number of objects; Exactly(1) switches peak
	// detection to global-maximum mode per template.
	Count ObjectCount

	// SearchRegion optionally restricts matching to a sub-rectangle.
	SearchRegion *SearchRegion

	// DownscalingFactor >= 1 shrinks image and templates before correlation,
	// trading localization precision for speed. 1 disables downscaling.
	DownscalingFactor int
}

// DefaultOptions mirrors the defaults of the reference tooling.
func DefaultOptions() Options {
	return Options{
		ScoreThreshold:    0.5,
		MaxOverlap:        0.25,
		Count:             Unbounded(),
		DownscalingFactor: 1,
	}
}

// FindMatches searches every template in the image and returns the raw,
// unfiltered pool of candidate detections. Overlapping and duplicate hits are
// intentionally kept, suppression is MatchTemplates' job. Coordinates are
// always reported in full-resolution, full-image space.
func FindMatches(img image.Image, templates []image.Image, opts Options) ([]detection.Detection, error) {
	if opts.DownscalingFactor < 1 {
		return nil, ErrDownscalingRange
	}
	if opts.Labels != nil && len(opts.Labels) != len(templates) {
		return nil, fmt.Errorf("%w: %d templates, %d labels", ErrLabelCountMismatch,
			len(templates), len(opts.Labels))
	}

	xOffset, yOffset := 0, 0
	searchImg := img
	if opts.SearchRegion != nil {
		r := opts.SearchRegion
		xOffset, yOffset = r.X, r.Y
		searchImg = utils.CropImageRect(img, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	}
	searchBounds := searchImg.Bounds()

	for i, tmpl := range templates {
		tb := tmpl.Bounds()
		if tb.Dx() > searchBounds.Dx() || tb.Dy() > searchBounds.Dy() {
			where := "image"
			if opts.SearchRegion != nil {
				where = "search region"
			}
			return nil, fmt.Errorf("%w: template at index %d (%dx%d) does not fit %s (%dx%d)",
				ErrTemplateTooLarge, i, tb.Dx(), tb.Dy(), where, searchBounds.Dx(), searchBounds.Dy())
		}
	}

	factor := opts.DownscalingFactor
	if factor > 1 {
		searchImg = utils.DownscaleImage(searchImg, factor)
	}
	imgPlane := utils.ImagePlane(searchImg)

	single := opts.Count.IsSingle()
	slog.Debug("Finding template matches",
		"templates", len(templates),
		"score_threshold", opts.ScoreThreshold,
		"single_match", single,
		"downscaling_factor", factor)

	timer := common.NewNamedTimer("find_matches")
	var hits []detection.Detection
	for index, tmpl := range templates {
		if factor > 1 {
			tmpl = utils.DownscaleImage(tmpl, factor)
		}
		tmplPlane := utils.ImagePlane(tmpl)

		surface, err := Correlate(imgPlane, tmplPlane)
		if err != nil {
			return nil, fmt.Errorf("correlating template %d: %w", index, err)
		}
		peaks := FindMaxima(surface, opts.ScoreThreshold, single)

		label := ""
		if opts.Labels != nil {
			label = opts.Labels[index]
		}
		// Box size follows the template actually matched: after downscaling
		// the (rounded) downscaled dimensions are scaled back up, which keeps
		// the reported size consistent with the peak locations.
		width := tmplPlane.Width * factor
		height := tmplPlane.Height * factor

		for _, peak := range peaks {
			score := surface.At(peak.Row, peak.Col)
			x := peak.Col*factor + xOffset
			y := peak.Row*factor + yOffset
			hits = append(hits, detection.NewBoundingBox(x, y, width, height, score, index, label))
		}
	}

	slog.Debug("Raw candidate pool assembled", "candidates", len(hits), "duration", timer.Stop())
	return hits, nil
}

// MatchTemplates runs the full pipeline: find all candidate matches, then
// keep the best non-overlapping ones via greedy NMS. The result is ordered
// best-first and holds at most the expected object count.
func MatchTemplates(img image.Image, templates []image.Image, opts Options) ([]detection.Detection, error) {
	if opts.MaxOverlap < 0 || opts.MaxOverlap > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrMaxOverlapRange, opts.MaxOverlap)
	}
	if n, bounded := opts.Count.Limit(); bounded && n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrObjectCountRange, n)
	}

	hits, err := FindMatches(img, templates, opts)
	if err != nil {
		return nil, err
	}
	return RunNMS(hits, opts.MaxOverlap, opts.Count, true)
}

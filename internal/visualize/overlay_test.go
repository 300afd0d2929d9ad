package visualize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/mtm/internal/detection"
)

func TestTemplateColorCyclesPalette(t *testing.T) {
	assert.Equal(t, TemplateColor(0), TemplateColor(len(paletteHex)))
	assert.NotEqual(t, TemplateColor(0), TemplateColor(1))
}

func TestOverlayDrawsOutline(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	det := detection.NewBoundingBox(10, 10, 11, 11, 0.9, 0, "")

	out := Overlay(img, []detection.Detection{det}, Options{Thickness: 1})
	require.NotNil(t, out)

	col := TemplateColor(0)
	// Outline corners at the pixel-inclusive extent.
	assert.Equal(t, col, out.RGBAAt(10, 10))
	assert.Equal(t, col, out.RGBAAt(20, 20))
	// Interior untouched.
	assert.NotEqual(t, col, out.RGBAAt(15, 15))
}

func TestOverlayDoesNotMutateInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	det := detection.NewBoundingBox(5, 5, 10, 10, 0.9, 0, "")
	_ = Overlay(img, []detection.Detection{det}, Options{})
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 5))
}

func TestOverlayLegend(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 80))
	dets := []detection.Detection{
		detection.NewBoundingBox(30, 30, 10, 10, 0.9, 0, "small"),
		detection.NewBoundingBox(50, 50, 10, 10, 0.8, 1, "big"),
	}
	out := Overlay(img, dets, Options{ShowLegend: true})

	// Legend swatch for the first label sits in the top-left corner.
	assert.Equal(t, TemplateColor(0), out.RGBAAt(legendPadding+1, legendPadding+1))
	assert.Equal(t, TemplateColor(1), out.RGBAAt(legendPadding+1, legendPadding+legendRowStep+1))
}

func TestOverlayLegendSkippedWithoutLabels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	det := detection.NewBoundingBox(20, 20, 10, 10, 0.9, 0, "")
	out := Overlay(img, []detection.Detection{det}, Options{ShowLegend: true})
	// No swatch drawn in the corner.
	assert.Equal(t, color.RGBA{}, out.RGBAAt(legendPadding+1, legendPadding+1))
}

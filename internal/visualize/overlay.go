// Package visualize renders matching results on top of the searched image.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/mtm/internal/detection"
	"github.com/MeKo-Tech/mtm/internal/utils"
)

// paletteHex is a fixed categorical palette (the Set3 scheme). Detections
// sharing a template index share a color, cycling modulo the palette size.
var paletteHex = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

var palette = buildPalette()

func buildPalette() []color.RGBA {
	out := make([]color.RGBA, 0, len(paletteHex))
	for _, hex := range paletteHex {
		c, err := colorful.Hex(hex)
		if err != nil {
			// The palette is a compile-time constant; a bad entry is a bug.
			panic(fmt.Sprintf("invalid palette color %q: %v", hex, err))
		}
		r, g, b := c.RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return out
}

// TemplateColor returns the palette color assigned to a template index.
func TemplateColor(templateIndex int) color.RGBA {
	return palette[templateIndex%len(palette)]
}

// Options controls overlay rendering.
type Options struct {
	Thickness  int  // outline thickness in pixels, default 2
	ShowLegend bool // draw a legend panel keyed by distinct non-empty labels
	ShowScore  bool // annotate each detection with its score
}

// Overlay draws each detection's outline onto a copy of the image, colored by
// template index. The input image is left untouched.
func Overlay(img image.Image, dets []detection.Detection, opts Options) *image.RGBA {
	if opts.Thickness < 1 {
		opts.Thickness = 2
	}
	dst := utils.ToRGBA(img)

	labelColors := make(map[string]color.RGBA)
	var labelOrder []string

	for _, d := range dets {
		col := TemplateColor(d.TemplateIndex())
		utils.DrawPolygon(dst, d.Corners(), col, opts.Thickness)

		if opts.ShowScore {
			x, y, w, h := d.XYWH()
			drawText(dst, x+w/3, y+h/3, fmt.Sprintf("%.2f", d.Score()), col)
		}

		if label := d.Label(); opts.ShowLegend && label != "" {
			if _, seen := labelColors[label]; !seen {
				labelColors[label] = col
				labelOrder = append(labelOrder, label)
			}
		}
	}

	if opts.ShowLegend {
		if len(labelOrder) == 0 {
			slog.Warn("No label associated to the templates, skipping legend")
		} else {
			drawLegend(dst, labelOrder, labelColors)
		}
	}

	return dst
}

const (
	legendSwatch  = 12
	legendPadding = 6
	legendRowStep = 18
)

// drawLegend stacks one swatch+label row per distinct label in the top-left
// corner of the overlay.
func drawLegend(dst *image.RGBA, order []string, colors map[string]color.RGBA) {
	y := legendPadding
	for _, label := range order {
		col := colors[label]
		swatch := image.Rect(legendPadding, y, legendPadding+legendSwatch, y+legendSwatch)
		fillRect(dst, swatch, col)
		drawText(dst, legendPadding+legendSwatch+legendPadding, y+legendSwatch-2, label, color.RGBA{255, 255, 255, 255})
		y += legendRowStep
	}
}

func fillRect(dst *image.RGBA, rect image.Rectangle, col color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, y, col)
		}
	}
}

// drawText renders a small annotation with the basic 7x13 face; (x, y) is the
// text baseline.
func drawText(dst *image.RGBA, x, y int, text string, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

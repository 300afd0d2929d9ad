package utils

import "image"

// Plane is a single-channel float64 raster in row-major order.
// Correlation operates on planes rather than image.Image values so that
// window statistics can be computed without repeated color conversions.
type Plane struct {
	Pix    []float64
	Width  int
	Height int
}

// NewPlane allocates a zeroed plane of the given dimensions.
func NewPlane(width, height int) *Plane {
	return &Plane{Pix: make([]float64, width*height), Width: width, Height: height}
}

// At returns the value at (x, y). No bounds checking.
func (p *Plane) At(x, y int) float64 { return p.Pix[y*p.Width+x] }

// Set stores a value at (x, y). No bounds checking.
func (p *Plane) Set(x, y int, v float64) { p.Pix[y*p.Width+x] = v }

// ImagePlane converts an image to a grayscale plane using Rec. 709 luma
// weights, normalized to [0, 1].
func ImagePlane(img image.Image) *Plane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := NewPlane(w, h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			p.Pix[i] = (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(bl)) / 65535.0
			i++
		}
	}
	return p
}

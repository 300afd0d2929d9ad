// Package testutil provides synthetic image fixtures for matching tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	SmallSize  = ImageSize{160, 120}
	MediumSize = ImageSize{320, 240}
)

// Blob describes one solid rectangle planted in a scene.
type Blob struct {
	X, Y          int
	Width, Height int
	Color         color.Color
}

// SceneConfig holds configuration for generating a synthetic search image.
type SceneConfig struct {
	Size       ImageSize
	Background color.Color
	Blobs      []Blob
}

// DefaultSceneConfig returns a scene with two identical bright squares on a
// dark background, the bread-and-butter case for template matching tests.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Size:       SmallSize,
		Background: color.Gray{Y: 20},
		Blobs: []Blob{
			{X: 20, Y: 30, Width: 24, Height: 24, Color: color.Gray{Y: 230}},
			{X: 100, Y: 60, Width: 24, Height: 24, Color: color.Gray{Y: 230}},
		},
	}
}

// GenerateScene renders a synthetic search image from the configuration.
func GenerateScene(config SceneConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)
	for _, b := range config.Blobs {
		rect := image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
		draw.Draw(img, rect, &image.Uniform{b.Color}, image.Point{}, draw.Src)
	}
	return img
}

// CropTemplate cuts a template out of a scene, the way reference workflows
// crop a coin out of the coins image.
func CropTemplate(scene image.Image, x, y, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), scene, image.Pt(x, y), draw.Src)
	return dst
}

// NoisyBlob plants a rectangle whose interior has a simple gradient, so its
// correlation surface has a single unambiguous peak.
func NoisyBlob(x, y, width, height int) []Blob {
	blobs := make([]Blob, 0, height)
	for row := 0; row < height; row++ {
		shade := uint8(120 + (row*100)/height)
		blobs = append(blobs, Blob{
			X: x, Y: y + row, Width: width, Height: 1,
			Color: color.Gray{Y: shade},
		})
	}
	return blobs
}

// Package batch runs template matching across many images at once.
package batch

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/mtm/internal/common"
)

// ProcessBatch matches the templates against every image found under the
// given paths.
func ProcessBatch(imagePaths []string, templates []image.Image, cfg *Config) (*Result, error) {
	files, err := discoverImageFiles(imagePaths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}
	if len(templates) == 0 {
		return nil, errors.New("no templates provided")
	}

	slog.Debug("Starting batch run", "images", len(files), "templates", len(templates))

	timer := common.NewNamedTimer("batch")
	images, err := processImagesParallel(files, templates, cfg)
	duration := timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{
		Images:      images,
		Duration:    duration,
		WorkerCount: effectiveWorkers(cfg.Workers, len(files)),
	}, nil
}

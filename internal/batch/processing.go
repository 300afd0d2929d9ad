package batch

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/MeKo-Tech/mtm/internal/detection"
	"github.com/MeKo-Tech/mtm/internal/matching"
	"github.com/MeKo-Tech/mtm/internal/utils"
	"github.com/MeKo-Tech/mtm/internal/visualize"
)

// processSingleImage matches the templates against one image file.
func processSingleImage(path string, templates []image.Image, cfg *Config) (ImageResult, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return ImageResult{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	dets, err := matching.MatchTemplates(img, templates, cfg.Options)
	if err != nil {
		return ImageResult{}, fmt.Errorf("matching failed for %s: %w", path, err)
	}

	if cfg.OverlayDir != "" {
		saveOverlay(img, dets, path, cfg.OverlayDir)
	}

	b := img.Bounds()
	res := matching.BuildResult(dets, b.Dx(), b.Dy())
	return ImageResult{
		Path:       path,
		Width:      res.Width,
		Height:     res.Height,
		Detections: res.Detections,
	}, nil
}

// saveOverlay renders the detections onto the image and writes a PNG next to
// the other overlays. Overlay failures are logged, not fatal.
func saveOverlay(img image.Image, dets []detection.Detection, path, overlayDir string) {
	ov := visualize.Overlay(img, dets, visualize.Options{Thickness: 2, ShowScore: true})
	if err := os.MkdirAll(overlayDir, 0o750); err != nil {
		slog.Warn("Failed to create overlay directory", "dir", overlayDir, "error", err)
		return
	}
	base := filepath.Base(path)
	outPath := filepath.Join(overlayDir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
	if err := utils.SavePNG(ov, outPath); err != nil {
		slog.Warn("Failed to save overlay", "path", outPath, "error", err)
	}
}

// effectiveWorkers resolves the configured worker count, defaulting to the
// number of CPUs and never exceeding the job count.
func effectiveWorkers(requested, jobs int) int {
	workers := requested
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > jobs {
		workers = jobs
	}
	return workers
}

// processImagesParallel runs matching over the images with a bounded worker
// pool. Results keep the input order; the first error aborts the run.
func processImagesParallel(imagePaths []string, templates []image.Image, cfg *Config) ([]ImageResult, error) {
	results := make([]ImageResult, len(imagePaths))
	errs := make([]error, len(imagePaths))

	workers := effectiveWorkers(cfg.Workers, len(imagePaths))

	idxCh := make(chan int, len(imagePaths))
	for i := range imagePaths {
		idxCh <- i
	}
	close(idxCh)

	var wg sync.WaitGroup
	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				results[i], errs[i] = processSingleImage(imagePaths[i], templates, cfg)
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

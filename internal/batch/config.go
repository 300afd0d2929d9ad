package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/mtm/internal/matching"
)

// Config holds all configuration for a batch matching run.
type Config struct {
	// Matching parameters applied to every image.
	Options matching.Options

	// Output settings
	Format     string
	OutputFile string
	OverlayDir string

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	Quiet     bool
	ShowStats bool
}

// Result holds the outcome of a batch matching run.
type Result struct {
	Images      []ImageResult
	Duration    time.Duration
	WorkerCount int
}

// ImageResult holds the detections for one input image.
type ImageResult struct {
	Path       string
	Width      int
	Height     int
	Detections []DetectionRow
}

// DetectionRow aliases the serializable detection form used across formats.
type DetectionRow = matching.DetectionJSON

// FormatResults renders the run in the requested format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Images, format)
}

// SaveResults writes the formatted results to a file, or to stdout when no
// file is configured.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(os.Stdout, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	total := 0
	for _, img := range r.Images {
		total += len(img.Detections)
	}
	avg := time.Duration(0)
	throughput := 0.0
	if len(r.Images) > 0 && r.Duration > 0 {
		avg = r.Duration / time.Duration(len(r.Images))
		throughput = float64(len(r.Images)) / r.Duration.Seconds()
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total images: %d\n", len(r.Images))
	_, _ = fmt.Fprintf(os.Stdout, "  Total detections: %d\n", total)
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Avg per image: %v\n", avg.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Throughput: %.1f images/sec\n", throughput)
}

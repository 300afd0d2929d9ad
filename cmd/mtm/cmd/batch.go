package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mtm/internal/batch"
	"github.com/MeKo-Tech/mtm/internal/matching"
	"github.com/MeKo-Tech/mtm/internal/utils"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [images/directories...]",
	Short: "Match templates against many images at once",
	Long: `Run template matching over a set of images or directories in parallel and
report the matches per input file.

Examples:
  mtm batch scans/ --template coin.png
  mtm batch scans/ more-scans/ -t coin.png --recursive --workers 8 -f csv -o results.csv
  mtm batch scans/ -t coin.png --overlay-dir out/ --include "scan_*.png"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	// Matching keys are shared with the match command, so flags bind at run
	// time rather than in init to keep the active command's values.
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindMatchingFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		templatePaths, _ := cmd.Flags().GetStringArray("template")
		if len(templatePaths) == 0 {
			return errors.New("no template files provided")
		}
		labels, _ := cmd.Flags().GetStringArray("label")
		recursive, _ := cmd.Flags().GetBool("recursive")
		include, _ := cmd.Flags().GetStringArray("include")
		exclude, _ := cmd.Flags().GetStringArray("exclude")
		workers, _ := cmd.Flags().GetInt("workers")
		overlayDir, _ := cmd.Flags().GetString("overlay-dir")
		quiet, _ := cmd.Flags().GetBool("quiet")
		stats, _ := cmd.Flags().GetBool("stats")

		cfg := GetConfig()
		if err := cfg.Output.Validate(); err != nil {
			return err
		}

		templates, err := utils.LoadImages(templatePaths)
		if err != nil {
			return err
		}

		opts := matching.Options{
			ScoreThreshold:    cfg.Matching.ScoreThreshold,
			MaxOverlap:        cfg.Matching.MaxOverlap,
			DownscalingFactor: cfg.Matching.DownscalingFactor,
			Count:             matching.Unbounded(),
		}
		if cfg.Matching.Objects > 0 {
			opts.Count = matching.Exactly(cfg.Matching.Objects)
		}
		if len(labels) > 0 {
			opts.Labels = labels
		}

		batchCfg := &batch.Config{
			Options:         opts,
			Format:          cfg.Output.Format,
			OutputFile:      cfg.Output.File,
			OverlayDir:      overlayDir,
			Workers:         workers,
			Recursive:       recursive,
			IncludePatterns: include,
			ExcludePatterns: exclude,
			Quiet:           quiet,
			ShowStats:       stats,
		}

		result, err := batch.ProcessBatch(args, templates, batchCfg)
		if err != nil {
			return fmt.Errorf("batch processing failed: %w", err)
		}

		if err := result.SaveResults(batchCfg.Format, batchCfg.OutputFile, quiet); err != nil {
			return err
		}
		if stats {
			result.PrintStats(quiet)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringArrayP("template", "t", nil, "template image file (repeatable)")
	batchCmd.Flags().StringArray("label", nil, "label per template, in template order (repeatable)")
	batchCmd.Flags().Float64("score-threshold", 0.5, "minimal correlation score for a candidate match")
	batchCmd.Flags().Float64("max-overlap", 0.25, "maximal IoU tolerated between two final matches")
	batchCmd.Flags().IntP("objects", "n", 0, "expected number of objects per image (0 = unbounded)")
	batchCmd.Flags().Int("downscaling-factor", 1, "integer downscaling factor applied before matching")
	batchCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml, csv)")
	batchCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	batchCmd.Flags().String("overlay-dir", "", "write an overlay PNG per image into this directory")
	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	batchCmd.Flags().StringArray("include", nil, "include only files matching this glob (repeatable)")
	batchCmd.Flags().StringArray("exclude", nil, "exclude files matching this glob (repeatable)")
	batchCmd.Flags().Int("workers", 0, "number of parallel workers (0 = number of CPUs)")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress non-result output")
	batchCmd.Flags().Bool("stats", false, "print processing statistics")
}

// bindMatchingFlags wires the shared matching and output flags of a command
// into viper.
func bindMatchingFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"matching.score_threshold":    "score-threshold",
		"matching.max_overlap":        "max-overlap",
		"matching.objects":            "objects",
		"matching.downscaling_factor": "downscaling-factor",
		"output.format":               "format",
		"output.file":                 "output",
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

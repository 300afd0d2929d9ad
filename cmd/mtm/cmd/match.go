package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mtm/internal/matching"
	"github.com/MeKo-Tech/mtm/internal/utils"
	"github.com/MeKo-Tech/mtm/internal/visualize"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
	outputFormatCSV  = "csv"
)

// matchCmd represents the match command.
var matchCmd = &cobra.Command{
	Use:   "match [image]",
	Short: "Find template matches in an image",
	Long: `Search one or more template images inside a search image and print the
best non-overlapping matches.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  mtm match scene.png --template coin.png
  mtm match scene.png -t small.png -t big.png --label small --label big --objects 12
  mtm match scene.png -t logo.png --search-box 10,10,200,150 --overlay out.png`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	// Matching keys are shared with the batch command, so flags bind at run
	// time rather than in init to keep the active command's values.
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := bindMatchingFlags(cmd); err != nil {
			return err
		}
		bindings := map[string]string{
			"output.overlay":     "overlay",
			"output.show_legend": "show-legend",
			"output.show_score":  "show-score",
		}
		for key, flag := range bindings {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		templatePaths, _ := cmd.Flags().GetStringArray("template")
		if len(templatePaths) == 0 {
			return errors.New("no template files provided")
		}
		labels, _ := cmd.Flags().GetStringArray("label")
		searchBox, _ := cmd.Flags().GetString("search-box")

		cfg := GetConfig()
		format := cfg.Output.Format
		validFormats := []string{outputFormatText, outputFormatJSON, outputFormatYAML, outputFormatCSV}
		isValid := false
		for _, f := range validFormats {
			if format == f {
				isValid = true
				break
			}
		}
		if !isValid {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join(validFormats, ", "))
		}

		img, _, err := utils.LoadImage(args[0])
		if err != nil {
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
		if searchBox != "" {
			var x, y, w, h int
			if _, err := fmt.Sscanf(searchBox, "%d,%d,%d,%d", &x, &y, &w, &h); err != nil {
				return fmt.Errorf("invalid search-box %q, want x,y,width,height", searchBox)
			}
			opts.SearchRegion = &matching.SearchRegion{X: x, Y: y, Width: w, Height: h}
		}

		dets, err := matching.MatchTemplates(img, templates, opts)
		if err != nil {
			return err
		}

		b := img.Bounds()
		var rendered []byte
		switch format {
		case outputFormatJSON:
			rendered, err = matching.DetectionsToJSON(dets, b.Dx(), b.Dy())
		case outputFormatYAML:
			rendered, err = matching.DetectionsToYAML(dets, b.Dx(), b.Dy())
		case outputFormatCSV:
			rendered = []byte(matching.DetectionsToCSV(dets))
		default:
			rendered = []byte(matching.DetectionsToText(dets))
		}
		if err != nil {
			return err
		}

		if cfg.Output.File != "" {
			if err := os.WriteFile(cfg.Output.File, rendered, 0o600); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}
		} else {
			_, _ = cmd.OutOrStdout().Write(rendered)
		}

		if cfg.Output.Overlay != "" {
			overlay := visualize.Overlay(img, dets, visualize.Options{
				ShowLegend: cfg.Output.ShowLegend,
				ShowScore:  cfg.Output.ShowScore,
			})
			if err := utils.SavePNG(overlay, cfg.Output.Overlay); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringArrayP("template", "t", nil, "template image file (repeatable)")
	matchCmd.Flags().StringArray("label", nil, "label per template, in template order (repeatable)")
	matchCmd.Flags().Float64("score-threshold", 0.5, "minimal correlation score for a candidate match")
	matchCmd.Flags().Float64("max-overlap", 0.25, "maximal IoU tolerated between two final matches")
	matchCmd.Flags().IntP("objects", "n", 0, "expected number of objects (0 = unbounded)")
	matchCmd.Flags().Int("downscaling-factor", 1, "integer downscaling factor applied before matching")
	matchCmd.Flags().String("search-box", "", "restrict matching to x,y,width,height")
	matchCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml, csv)")
	matchCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	matchCmd.Flags().String("overlay", "", "write an overlay PNG with the detections drawn")
	matchCmd.Flags().Bool("show-legend", false, "draw a legend of distinct template labels on the overlay")
	matchCmd.Flags().Bool("show-score", false, "annotate each detection with its score on the overlay")
}

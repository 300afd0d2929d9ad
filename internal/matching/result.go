package matching

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/mtm/internal/detection"
)

// ResultJSON is a serializable representation of a matching run.
type ResultJSON struct {
	Width      int             `json:"width" yaml:"width"`
	Height     int             `json:"height" yaml:"height"`
	Detections []DetectionJSON `json:"detections" yaml:"detections"`
}

// DetectionJSON is one serialized detection.
type DetectionJSON struct {
	X             int     `json:"x" yaml:"x"`
	Y             int     `json:"y" yaml:"y"`
	Width         int     `json:"w" yaml:"w"`
	Height        int     `json:"h" yaml:"h"`
	Score         float64 `json:"score" yaml:"score"`
	TemplateIndex int     `json:"template_index" yaml:"template_index"`
	Label         string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// BuildResult converts detections to their serializable form with the given
// image dimensions.
func BuildResult(dets []detection.Detection, width, height int) ResultJSON {
	out := ResultJSON{Width: width, Height: height}
	out.Detections = make([]DetectionJSON, 0, len(dets))
	for _, d := range dets {
		x, y, w, h := d.XYWH()
		out.Detections = append(out.Detections, DetectionJSON{
			X:             x,
			Y:             y,
			Width:         w,
			Height:        h,
			Score:         d.Score(),
			TemplateIndex: d.TemplateIndex(),
			Label:         d.Label(),
		})
	}
	return out
}

// DetectionsToJSON converts detections to indented JSON with the given image
// dimensions.
func DetectionsToJSON(dets []detection.Detection, width, height int) ([]byte, error) {
	return json.MarshalIndent(BuildResult(dets, width, height), "", "  ")
}

// DetectionsFromJSON parses a serialized result.
func DetectionsFromJSON(data []byte) (ResultJSON, error) {
	var res ResultJSON
	err := json.Unmarshal(data, &res)
	return res, err
}

// DetectionsToYAML converts detections to YAML with the given image dimensions.
func DetectionsToYAML(dets []detection.Detection, width, height int) ([]byte, error) {
	return yaml.Marshal(BuildResult(dets, width, height))
}

// DetectionsToCSV renders detections as CSV, one row per hit.
func DetectionsToCSV(dets []detection.Detection) string {
	var sb strings.Builder
	sb.WriteString("x,y,width,height,score,template_index,label\n")
	for _, d := range dets {
		x, y, w, h := d.XYWH()
		fmt.Fprintf(&sb, "%d,%d,%d,%d,%.6f,%d,%s\n", x, y, w, h, d.Score(), d.TemplateIndex(), d.Label())
	}
	return sb.String()
}

// DetectionsToText renders detections as one human-readable line per hit.
func DetectionsToText(dets []detection.Detection) string {
	if len(dets) == 0 {
		return "no matches\n"
	}
	var sb strings.Builder
	for i, d := range dets {
		x, y, w, h := d.XYWH()
		fmt.Fprintf(&sb, "#%d score=%.4f xywh=(%d, %d, %d, %d) template=%d", i, d.Score(), x, y, w, h, d.TemplateIndex())
		if d.Label() != "" {
			fmt.Fprintf(&sb, " label=%s", d.Label())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

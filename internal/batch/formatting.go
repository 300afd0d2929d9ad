package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// batchDocument is the serialized shape shared by the JSON and YAML formats.
type batchDocument struct {
	Images []imageDocument `json:"images" yaml:"images"`
}

type imageDocument struct {
	File       string         `json:"file" yaml:"file"`
	Width      int            `json:"width" yaml:"width"`
	Height     int            `json:"height" yaml:"height"`
	Detections []DetectionRow `json:"detections" yaml:"detections"`
}

// formatBatchResults renders the per-image results in the requested format.
func formatBatchResults(images []ImageResult, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(images)
	case "yaml":
		return formatYAML(images)
	case "csv":
		return formatCSV(images)
	default: // text
		return formatText(images), nil
	}
}

func buildDocument(images []ImageResult) batchDocument {
	doc := batchDocument{Images: make([]imageDocument, len(images))}
	for i, img := range images {
		doc.Images[i] = imageDocument{
			File:       img.Path,
			Width:      img.Width,
			Height:     img.Height,
			Detections: img.Detections,
		}
	}
	return doc
}

func formatJSON(images []ImageResult) (string, error) {
	bts, err := json.MarshalIndent(buildDocument(images), "", "  ")
	return string(bts), err
}

func formatYAML(images []ImageResult) (string, error) {
	bts, err := yaml.Marshal(buildDocument(images))
	return string(bts), err
}

// formatCSV emits one row per detection, with an empty row for images that
// produced no matches so every input file appears in the output.
func formatCSV(images []ImageResult) (string, error) {
	csvData := [][]string{
		{"file", "x", "y", "width", "height", "score", "template_index", "label"},
	}

	for _, img := range images {
		if len(img.Detections) == 0 {
			csvData = append(csvData, []string{img.Path, "", "", "", "", "", "", ""})
			continue
		}
		for _, d := range img.Detections {
			csvData = append(csvData, []string{
				img.Path,
				strconv.Itoa(d.X),
				strconv.Itoa(d.Y),
				strconv.Itoa(d.Width),
				strconv.Itoa(d.Height),
				fmt.Sprintf("%.6f", d.Score),
				strconv.Itoa(d.TemplateIndex),
				d.Label,
			})
		}
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range csvData {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), nil
}

func formatText(images []ImageResult) string {
	var output strings.Builder
	for i, img := range images {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", img.Path)
		if len(img.Detections) == 0 {
			output.WriteString("no matches\n")
			continue
		}
		for j, d := range img.Detections {
			fmt.Fprintf(&output, "#%d score=%.4f xywh=(%d, %d, %d, %d) template=%d",
				j, d.Score, d.X, d.Y, d.Width, d.Height, d.TemplateIndex)
			if d.Label != "" {
				fmt.Fprintf(&output, " label=%s", d.Label)
			}
			output.WriteByte('\n')
		}
	}
	return output.String()
}

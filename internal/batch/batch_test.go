package batch

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/mtm/internal/matching"
	"github.com/MeKo-Tech/mtm/internal/testutil"
	"github.com/MeKo-Tech/mtm/internal/utils"
)

// writeScene saves a synthetic scene with one gradient blob at (20, 30) under
// the given name and returns its path.
func writeScene(t *testing.T, dir, name string) string {
	t.Helper()
	cfg := testutil.SceneConfig{
		Size:       testutil.SmallSize,
		Background: testutil.DefaultSceneConfig().Background,
		Blobs:      testutil.NoisyBlob(20, 30, 24, 24),
	}
	path := filepath.Join(dir, name)
	require.NoError(t, utils.SavePNG(testutil.GenerateScene(cfg), path))
	return path
}

func sceneTemplate() image.Image {
	cfg := testutil.SceneConfig{
		Size:       testutil.SmallSize,
		Background: testutil.DefaultSceneConfig().Background,
		Blobs:      testutil.NoisyBlob(20, 30, 24, 24),
	}
	return testutil.CropTemplate(testutil.GenerateScene(cfg), 16, 26, 32, 32)
}

func batchConfig() *Config {
	opts := matching.DefaultOptions()
	opts.ScoreThreshold = 0.9
	return &Config{Options: opts, Format: "text"}
}

func TestProcessBatch(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "a.png")
	writeScene(t, dir, "b.png")

	res, err := ProcessBatch([]string{dir}, []image.Image{sceneTemplate()}, batchConfig())
	require.NoError(t, err)
	require.Len(t, res.Images, 2)
	assert.Greater(t, res.WorkerCount, 0)

	for _, img := range res.Images {
		require.Len(t, img.Detections, 1, img.Path)
		assert.Equal(t, 16, img.Detections[0].X)
		assert.Equal(t, 26, img.Detections[0].Y)
		assert.Equal(t, testutil.SmallSize.Width, img.Width)
		assert.Equal(t, testutil.SmallSize.Height, img.Height)
	}
}

func TestProcessBatchKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	pathA := writeScene(t, dir, "a.png")
	pathB := writeScene(t, dir, "b.png")

	res, err := ProcessBatch([]string{pathA, pathB}, []image.Image{sceneTemplate()}, batchConfig())
	require.NoError(t, err)
	require.Len(t, res.Images, 2)
	assert.Equal(t, pathA, res.Images[0].Path)
	assert.Equal(t, pathB, res.Images[1].Path)
}

func TestProcessBatchNoImages(t *testing.T) {
	dir := t.TempDir()
	_, err := ProcessBatch([]string{dir}, []image.Image{sceneTemplate()}, batchConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files found")
}

func TestProcessBatchNoTemplates(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "a.png")
	_, err := ProcessBatch([]string{dir}, nil, batchConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no templates")
}

func TestProcessBatchMissingPath(t *testing.T) {
	_, err := ProcessBatch([]string{"/nonexistent/path"}, []image.Image{sceneTemplate()}, batchConfig())
	require.Error(t, err)
}

func TestProcessBatchCorruptImage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))

	_, err := ProcessBatch([]string{dir}, []image.Image{sceneTemplate()}, batchConfig())
	require.Error(t, err)
}

func TestProcessBatchWritesOverlays(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "a.png")
	overlayDir := filepath.Join(dir, "overlays")

	cfg := batchConfig()
	cfg.OverlayDir = overlayDir
	_, err := ProcessBatch([]string{dir}, []image.Image{sceneTemplate()}, cfg)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(overlayDir, "a_overlay.png"))
	require.NoError(t, err)
}

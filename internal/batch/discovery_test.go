package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestDiscoverImageFilesFlat(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "b.jpg"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "c.png"))

	files, err := discoverImageFiles([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, dir, filepath.Dir(f))
	}
}

func TestDiscoverImageFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "c.png"))

	files, err := discoverImageFiles([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverImageFilesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	touch(t, path)

	files, err := discoverImageFiles([]string{path}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestDiscoverImageFilesPatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "scan_001.png"))
	touch(t, filepath.Join(dir, "scan_002.png"))
	touch(t, filepath.Join(dir, "other.png"))

	files, err := discoverImageFiles([]string{dir}, false, []string{"scan_*.png"}, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = discoverImageFiles([]string{dir}, false, nil, []string{"scan_*"})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverImageFilesMissingPath(t *testing.T) {
	_, err := discoverImageFiles([]string{"/nonexistent"}, false, nil, nil)
	require.Error(t, err)
}

func TestShouldIncludeFileRejectsUnsupportedFormats(t *testing.T) {
	assert.False(t, shouldIncludeFile("doc.pdf", nil, nil))
	assert.False(t, shouldIncludeFile("notes.txt", nil, nil))
	assert.True(t, shouldIncludeFile("scan.tiff", nil, nil))
}

package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "burg-2.csv"))
	touch(t, filepath.Join(root, "a-1.CSV"))
	touch(t, filepath.Join(root, "b", "notes.txt"))
	touch(t, filepath.Join(root, ".cache", "old-1.csv"))
	touch(t, filepath.Join(root, "x-1.json"))

	paths, err := Files(root, "csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a-1.CSV"),
		filepath.Join(root, "b", "burg-2.csv"),
	}, paths)

	paths, err = Files(root, ".json", ".csv")
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestFilesSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "burg-1.json")
	touch(t, path)

	paths, err := Files(path, "json")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)

	_, err = Files(path, "csv")
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestFilesErrors(t *testing.T) {
	_, err := Files(filepath.Join(t.TempDir(), "missing"), "csv")
	assert.Error(t, err)

	_, err = Files(t.TempDir(), "csv")
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestByStem(t *testing.T) {
	paths := []string{"a/y-2.csv", "a/x-1.csv", "b/x-3.csv"}
	names, groups := ByStem(paths, func(p string) string {
		base := filepath.Base(p)
		return base[:strings.Index(base, "-")]
	})
	assert.Equal(t, []string{"x", "y"}, names)
	assert.Equal(t, []string{"a/x-1.csv", "b/x-3.csv"}, groups["x"])
	assert.Equal(t, []string{"a/y-2.csv"}, groups["y"])
}

// internal/resultfile/naming.go
// Package: resultfile

// Package resultfile decodes the files written by the benchmark runner:
// JSON arrays of per-trial records and CSV tables whose cells embed JSON.
package resultfile

import (
	"path/filepath"
	"strings"
)

// AlgorithmFromPath derives the algorithm name from a result file name by
// dropping the extension and the trailing "-<timestamp>" segment:
// "results/burg-basic-1677000000.csv" -> "burg-basic". A name without a
// dash is returned unchanged.
func AlgorithmFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndex(base, "-")
	if i <= 0 {
		return base
	}
	return base[:i]
}

// CategoryFromPath derives the input category from a sample file path:
// the name of the directory holding the file
// ("samples-convert/drums/kick_44100_1.wav" -> "drums"). A file without a
// directory falls back to its base name up to the first '_' or '-'.
func CategoryFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir != "." && dir != string(filepath.Separator) {
		return strings.ToLower(dir)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(base, "_-"); i > 0 {
		base = base[:i]
	}
	return strings.ToLower(base)
}

package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/export"
	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/stats"
)

func stat(t *testing.T, vals ...float64) stats.Statistic {
	t.Helper()
	s, err := stats.Summarize(vals)
	require.NoError(t, err)
	return s
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestErrorCurves(t *testing.T) {
	b := aggregate.NewBuilder()
	for _, lag := range []int{1, 2, 4, 8} {
		b.Set(group.Key{Category: "drums", TrainSize: 512, Lag: lag}, record.MAE, stat(t, 0.1, 0.2, 0.3))
		b.Set(group.Key{Category: "drums", TrainSize: 1024, Lag: lag}, record.MAE, stat(t, 0.05, 0.1))
	}
	b.SetBaseline("drums", record.SilenceSubstitution, record.MAE, stat(t, 0.5, 0.6))
	b.SetBaseline("drums", record.PatternReplication, record.MAE, stat(t, 0.4))
	b.AddDivergence(aggregate.Divergence{
		Key:         group.Key{Category: "drums", TrainSize: 2048, Lag: 16},
		Measurement: record.MAE,
		Value:       7,
	})
	tbl := b.Build()

	path := filepath.Join(t.TempDir(), "charts", "drums_mae.png")
	n, err := ErrorCurves(path, tbl, record.MAE, "drums", Options{Width: 12, Height: 8})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "two train sizes and the divergence markers")
	assertPNG(t, path)
}

func TestErrorCurvesSingleLag(t *testing.T) {
	b := aggregate.NewBuilder()
	b.Set(group.Key{Category: "piano", TrainSize: 512, Lag: 4}, record.RMSE, stat(t, 0.2))
	path := filepath.Join(t.TempDir(), "piano.png")
	n, err := ErrorCurves(path, b.Build(), record.RMSE, "piano", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertPNG(t, path)
}

func TestErrorCurvesNothingToDraw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.png")
	n, err := ErrorCurves(path, aggregate.NewBuilder().Build(), record.MAE, "drums", Options{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoFileExists(t, path)
}

func TestRows(t *testing.T) {
	rows := []export.Series{
		{Label: "burg", Cells: map[export.Column]export.Cell{
			{TrainSize: 512, Lag: 1}: {Stat: stat(t, 5, 7)},
			{TrainSize: 512, Lag: 2}: {Stat: stat(t, 6, 8)},
		}},
		{Label: "yule", Cells: map[export.Column]export.Cell{
			{TrainSize: 512, Lag: 1}: {Stat: stat(t, 1, 2)},
			{TrainSize: 512, Lag: 2}: {Diverged: true},
		}},
	}
	path := filepath.Join(t.TempDir(), "fit_time.png")
	n, err := Rows(path, "fit time", "ms", rows, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assertPNG(t, path)

	n, err = Rows(path, "empty", "ms", nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLog2Ticks(t *testing.T) {
	ticks := log2Ticks{}.Ticks(1, 16)
	require.Len(t, ticks, 5)
	assert.Equal(t, "1", ticks[0].Label)
	assert.Equal(t, "16", ticks[4].Label)
	assert.Len(t, log2Ticks{}.Ticks(3, 20), 3)
}

func TestLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pred", "burg-512-4.png")
	ok, err := Line(path, "burg 512-4", []float64{0.1, -0.2, 0.3, 0.05}, Options{})
	require.NoError(t, err)
	assert.True(t, ok)
	assertPNG(t, path)

	ok, err = Line(filepath.Join(t.TempDir(), "none.png"), "empty", nil, Options{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "Burg's method", AlgorithmName("burg-basic"))
	assert.Equal(t, "Hybrid den. (compensated)", AlgorithmName("compensated-burg-optimized-den-sqrt"))
	assert.Equal(t, "yule-walker", AlgorithmName("yule-walker"))

	assert.Equal(t, "Drums", CategoryName("drums"))
	assert.Equal(t, "Speech", CategoryName("SPEECH"))
	assert.Equal(t, "", CategoryName(""))
}

func TestOptionsTitle(t *testing.T) {
	assert.Equal(t, "Drums - MAE", Options{}.title("Drums - MAE"))
	assert.Equal(t, "AR fit time", Options{Title: "AR fit time"}.title("x"))
}

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
)

func f64(v float64) *float64 { return &v }

func errRec(cat string, ts, lag int, mae, rmse record.Series) record.RawRecord {
	fields := map[record.Measurement]record.Series{}
	if mae != nil {
		fields[record.MAE] = mae
	}
	if rmse != nil {
		fields[record.RMSE] = rmse
	}
	return record.RawRecord{Source: "t.csv", Category: cat, TrainSize: ts, Lag: lag, Fields: fields}
}

func aeSeries(n, missing int, v float64) record.Series {
	s := make(record.Series, n)
	for i := range s {
		if i < missing {
			continue
		}
		s[i] = f64(v)
	}
	return s
}

func TestRunDrumsScenario(t *testing.T) {
	tbl, rep := Run(DefaultConfig(), []record.RawRecord{
		errRec("drums", 512, 4, record.Values(0.1, 0.2), nil),
		errRec("drums", 512, 4, record.Values(0.3), nil),
	})
	s, ok := tbl.Lookup(group.Key{Category: "drums", TrainSize: 512, Lag: 4}, record.MAE)
	require.True(t, ok)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.2, s.Mean, 1e-12)
	assert.InDelta(t, 0.01, s.Variance, 1e-12)
	assert.InDelta(t, 0.1131, s.CI95, 1e-4)
	assert.Equal(t, 2, rep.Records)
	assert.False(t, rep.HasIssues())
}

func TestRunMalformedRecordIsSkippedNotFatal(t *testing.T) {
	tbl, rep := Run(DefaultConfig(), []record.RawRecord{
		errRec("drums", 0, 4, record.Values(0.1), nil),
		errRec("drums", 512, -2, record.Values(0.1), nil),
		errRec("drums", 512, 4, record.Values(0.1, 0.2), nil),
	})
	assert.Equal(t, 2, rep.Malformed)
	assert.Equal(t, 3, rep.Records)
	assert.Equal(t, 1, tbl.Len())
}

func TestRunExcludesPerFieldNotPerRecord(t *testing.T) {
	tbl, rep := Run(DefaultConfig(), []record.RawRecord{
		errRec("piano", 512, 1, record.Values(0.1, 0.12), record.Values(0.2, 5.0)),
	})
	key := group.Key{Category: "piano", TrainSize: 512, Lag: 1}

	_, ok := tbl.Lookup(key, record.MAE)
	assert.True(t, ok, "valid mae must survive an excluded rmse")
	_, ok = tbl.Lookup(key, record.RMSE)
	assert.False(t, ok)
	assert.True(t, tbl.Diverged(key, record.RMSE))
	assert.Equal(t, 1, rep.Divergent)
	assert.Equal(t, 1, rep.EmptyGroups)

	divs := tbl.Divergences()
	require.Len(t, divs, 1)
	assert.Equal(t, 5.0, divs[0].Value)
}

func TestRunMissingEntriesAreDropped(t *testing.T) {
	series := record.Series{f64(0.1), nil, f64(0.2), nil, f64(0.3)}
	tbl, _ := Run(DefaultConfig(), []record.RawRecord{errRec("drums", 512, 4, series, nil)})
	s, ok := tbl.Lookup(group.Key{Category: "drums", TrainSize: 512, Lag: 4}, record.MAE)
	require.True(t, ok)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.2, s.Mean, 1e-12)
}

func TestRunStrictCountExcludesWholeField(t *testing.T) {
	rec := record.RawRecord{
		Source:    "burg-basic-1677000000.json",
		Algorithm: "burg-basic",
		TrainSize: 512,
		Lag:       4,
		Fields:    map[record.Measurement]record.Series{record.AbsError: aeSeries(2560, 10, 0.05)},
	}
	conf := DefaultConfig()
	conf.Grouping = ByAlgorithm
	tbl, rep := Run(conf, []record.RawRecord{rec})

	key := group.Key{Category: "burg-basic", TrainSize: 512, Lag: 4}
	_, ok := tbl.Lookup(key, record.MAE)
	assert.False(t, ok)
	assert.Equal(t, 1, rep.InconsistentCount)
	assert.Equal(t, 1, rep.EmptyGroups)
	assert.Zero(t, tbl.Len())
}

func TestRunPredictionIsNotGrouped(t *testing.T) {
	conf := DefaultConfig()
	conf.Grouping = ByAlgorithm
	rec := record.RawRecord{
		Algorithm: "burg-basic",
		TrainSize: 512,
		Lag:       4,
		Fields: map[record.Measurement]record.Series{
			record.AbsError:   aeSeries(2560, 0, 0.05),
			record.Prediction: record.Values(0.1, 0.2, 0.3),
		},
	}
	tbl, rep := Run(conf, []record.RawRecord{rec})

	key := group.Key{Category: "burg-basic", TrainSize: 512, Lag: 4}
	assert.Equal(t, []record.Measurement{record.MAE}, tbl.Measurements(key))
	assert.Zero(t, rep.InconsistentCount)
	assert.False(t, rep.HasIssues())
}

func TestRunAbsErrorReducesToMAE(t *testing.T) {
	conf := DefaultConfig()
	conf.Grouping = ByAlgorithm
	conf.ExpectedSampleCount = 4
	recs := []record.RawRecord{
		{Algorithm: "burg-basic", TrainSize: 512, Lag: 1, Fields: map[record.Measurement]record.Series{
			record.AbsError: record.Values(0.1, 0.1, 0.3, 0.3),
		}},
		{Algorithm: "burg-basic", TrainSize: 512, Lag: 1, Fields: map[record.Measurement]record.Series{
			record.AbsError: record.Values(0.4, 0.4, 0.4, 0.4),
		}},
		{Algorithm: "burg-basic", TrainSize: 512, Lag: 128, Fields: map[record.Measurement]record.Series{
			record.AbsError: record.Values(9, 9, 9, 9),
		}},
	}
	tbl, rep := Run(conf, recs)

	s, ok := tbl.Lookup(group.Key{Category: "burg-basic", TrainSize: 512, Lag: 1}, record.MAE)
	require.True(t, ok)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 0.3, s.Mean, 1e-12)

	diverged := group.Key{Category: "burg-basic", TrainSize: 512, Lag: 128}
	v, isDiv, ok := tbl.DisplayValue(diverged, record.MAE)
	assert.True(t, ok)
	assert.True(t, isDiv)
	assert.Equal(t, aggregate.DivergenceDisplayValue, v)
	assert.Equal(t, 1, rep.Divergent)
}

func TestRunTimingConvertsBeforeVariance(t *testing.T) {
	rec := record.RawRecord{
		Category:  "drums",
		TrainSize: 512,
		Lag:       1,
		Fields: map[record.Measurement]record.Series{
			record.FitTime:     record.Values(5_000_000, 7_000_000),
			record.PredictTime: record.Values(1_000_000),
		},
	}
	tbl, _ := Run(DefaultConfig(), []record.RawRecord{rec})

	coarse := group.Key{TrainSize: 512, Lag: 1}
	fit, ok := tbl.Lookup(coarse, record.FitTime)
	require.True(t, ok)
	assert.Equal(t, 6.0, fit.Mean)
	assert.InDelta(t, 2.0, fit.Variance, 1e-12)

	pred, ok := tbl.Lookup(coarse, record.PredictTime)
	require.True(t, ok)
	assert.Equal(t, 1.0, pred.Mean)
	assert.Zero(t, pred.Variance)
	assert.Equal(t, pred.Mean, pred.Low)

	_, ok = tbl.Lookup(group.Key{Category: "drums", TrainSize: 512, Lag: 1}, record.FitTime)
	assert.False(t, ok, "timing uses the coarse key")
}

func TestRunBaselinesStaySeparate(t *testing.T) {
	recs := []record.RawRecord{
		errRec("drums", 512, 1, record.Values(0.1, 0.2), nil),
		{Category: "drums", Baseline: record.SilenceSubstitution, Fields: map[record.Measurement]record.Series{
			record.MAE: record.Values(0.4, 0.6), record.RMSE: record.Values(0.5, 0.7),
		}},
		{Category: "drums", Baseline: record.PatternReplication, Fields: map[record.Measurement]record.Series{
			record.MAE: record.Values(0.3),
		}},
	}
	tbl, _ := Run(DefaultConfig(), recs)

	assert.Equal(t, 1, tbl.Len(), "baselines must not enter the main table")
	b0, ok := tbl.Baseline("drums", record.SilenceSubstitution, record.MAE)
	require.True(t, ok)
	assert.InDelta(t, 0.5, b0.Mean, 1e-12)
	b1, ok := tbl.Baseline("drums", record.PatternReplication, record.MAE)
	require.True(t, ok)
	assert.Equal(t, 1, b1.Count)
	_, ok = tbl.Baseline("drums", record.PatternReplication, record.RMSE)
	assert.False(t, ok)
}

func TestRunFilters(t *testing.T) {
	conf := DefaultConfig()
	conf.TrainSizes = []int{2048}
	conf.MinLag = 1
	conf.MaxLag = 128
	recs := []record.RawRecord{
		errRec("drums", 2048, 4, record.Values(0.1), nil),
		errRec("drums", 512, 4, record.Values(0.1), nil),
		errRec("drums", 2048, 256, record.Values(0.1), nil),
		{Category: "drums", Baseline: record.SilenceSubstitution, Fields: map[record.Measurement]record.Series{
			record.MAE: record.Values(0.4),
		}},
	}
	tbl, rep := Run(conf, recs)
	assert.Equal(t, 2, rep.Filtered)
	assert.Equal(t, []group.Key{{Category: "drums", TrainSize: 2048, Lag: 4}}, tbl.Keys())
	_, ok := tbl.Baseline("drums", record.SilenceSubstitution, record.MAE)
	assert.True(t, ok)
}

func TestRunKeepsDiscoveryOrder(t *testing.T) {
	recs := []record.RawRecord{
		errRec("violin", 1024, 8, record.Values(0.1), nil),
		errRec("drums", 512, 2, record.Values(0.1), nil),
		errRec("violin", 512, 1, record.Values(0.1), nil),
	}
	tbl, _ := Run(DefaultConfig(), recs)
	assert.Equal(t, []string{"violin", "drums"}, tbl.Categories())
	assert.Equal(t, []int{1024, 512}, tbl.TrainSizes("violin"))
	assert.Equal(t, []int{512, 1024}, tbl.SortedTrainSizes("violin"))
}

func TestStreamingMatchesRetained(t *testing.T) {
	recs := []record.RawRecord{
		errRec("drums", 512, 4, record.Values(0.11, 0.52, 0.3), nil),
		errRec("drums", 512, 4, record.Values(0.07, 0.9), nil),
	}
	conf := DefaultConfig()
	retained, _ := Run(conf, recs)
	conf.Streaming = true
	streamed, _ := Run(conf, recs)

	key := group.Key{Category: "drums", TrainSize: 512, Lag: 4}
	a, _ := retained.Lookup(key, record.MAE)
	b, _ := streamed.Lookup(key, record.MAE)
	assert.Equal(t, a.Count, b.Count)
	assert.InDelta(t, a.Mean, b.Mean, 1e-12)
	assert.InDelta(t, a.Variance, b.Variance, 1e-12)
}

func TestMergeShardsGivesSameMean(t *testing.T) {
	recs := []record.RawRecord{
		errRec("drums", 512, 4, record.Values(0.11, 0.52), nil),
		errRec("drums", 512, 4, record.Values(0.3), nil),
		errRec("drums", 512, 4, record.Values(0.07, 0.9, 0.45), nil),
	}
	conf := DefaultConfig()
	whole, _ := Run(conf, recs)

	a, b := NewAccumulator(conf), NewAccumulator(conf)
	a.Add(recs[0])
	b.Add(recs[1])
	b.Add(recs[2])
	merged, err := Merge(conf, b, a)
	require.NoError(t, err)
	sharded, rep := Finalize(merged)

	key := group.Key{Category: "drums", TrainSize: 512, Lag: 4}
	w, _ := whole.Lookup(key, record.MAE)
	s, _ := sharded.Lookup(key, record.MAE)
	assert.Equal(t, w.Count, s.Count)
	assert.InDelta(t, w.Mean, s.Mean, 1e-12)
	assert.InDelta(t, w.Variance, s.Variance, 1e-12)
	assert.Equal(t, 3, rep.Records)
}

func TestRunFilesSkipsUnreadable(t *testing.T) {
	files := map[string]record.Batch{
		"a.csv": {Records: []record.RawRecord{errRec("drums", 512, 4, record.Values(0.1, 0.3), nil)}},
		"c.csv": {
			Records:  []record.RawRecord{errRec("piano", 512, 4, record.Values(0.2), nil)},
			Rejected: []error{record.ErrMalformedRecord},
		},
	}
	decode := func(path string) (record.Batch, error) {
		b, ok := files[path]
		if !ok {
			return record.Batch{}, errors.New("permission denied")
		}
		return b, nil
	}
	var seen atomic.Int32
	conf := DefaultConfig()
	conf.Workers = 2
	tbl, rep, err := RunFiles(context.Background(), conf, []string{"a.csv", "b.csv", "c.csv"}, decode, func(string) {
		seen.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), seen.Load())
	assert.Equal(t, 1, rep.IOFailures)
	assert.Equal(t, 2, rep.Files)
	assert.Equal(t, 1, rep.Malformed)
	assert.Equal(t, []string{"drums", "piano"}, tbl.Categories(), "merge follows path order")
}

func TestRunFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	decode := func(string) (record.Batch, error) { return record.Batch{}, nil }
	_, _, err := RunFiles(ctx, DefaultConfig(), []string{"a.csv"}, decode, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MinLag = 64
	bad.MaxLag = 8
	bad.TrainSizes = []int{512, -1}
	bad.DivergenceThreshold = -1
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minLag")
	assert.Contains(t, err.Error(), "trainSizes")
	assert.Contains(t, err.Error(), "divergenceThreshold")
}

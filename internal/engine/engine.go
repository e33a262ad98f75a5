// internal/engine/engine.go
// Package: engine

// Package engine turns raw benchmark records into a finalized aggregate
// table: validate and filter, group, then summarize every group once all
// input has been consumed.
package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/stats"
)

var baselineIDs = []record.Baseline{record.SilenceSubstitution, record.PatternReplication}

// Accumulator is the ingestion side of one run (or one shard of it). It
// is not safe for concurrent use; parallel ingestion uses one Accumulator
// per shard and Merge.
type Accumulator struct {
	conf        Config
	table       *group.Table
	baselines   map[record.Baseline]*group.Table
	divergences []aggregate.Divergence
	report      Report
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(conf Config) *Accumulator {
	acc := &Accumulator{
		conf:      conf,
		table:     group.NewTable(!conf.Streaming),
		baselines: make(map[record.Baseline]*group.Table, len(baselineIDs)),
	}
	for _, id := range baselineIDs {
		acc.baselines[id] = group.NewTable(!conf.Streaming)
	}
	return acc
}

// Report returns the counters collected so far.
func (acc *Accumulator) Report() Report {
	return acc.report
}

// AddAll ingests recs in order.
func (acc *Accumulator) AddAll(recs []record.RawRecord) {
	for _, rec := range recs {
		acc.Add(rec)
	}
}

// AddBatch ingests a decoded file, counting its rejected rows as
// malformed.
func (acc *Accumulator) AddBatch(b record.Batch) {
	acc.report.Files++
	for _, err := range b.Rejected {
		acc.report.Malformed++
		log.Warn().Str("source", b.Source).Err(err).Msg("skipping malformed row")
	}
	acc.AddAll(b.Records)
}

// Add ingests one record. A malformed record is skipped as a whole; every
// other rule applies per field, so one record may contribute a valid mae
// and an excluded rmse.
func (acc *Accumulator) Add(rec record.RawRecord) {
	acc.report.Records++
	if err := rec.Validate(); err != nil {
		acc.report.Malformed++
		log.Warn().Str("source", rec.Source).Err(err).Msg("skipping malformed record")
		return
	}
	if !acc.conf.accepts(rec) {
		acc.report.Filtered++
		return
	}

	fields := make([]record.Measurement, 0, len(rec.Fields))
	for m := range rec.Fields {
		fields = append(fields, m)
	}
	slices.Sort(fields)

	for _, m := range fields {
		p := policyFor(m)
		if !p.known {
			log.Debug().Str("source", rec.Source).Str("measurement", string(m)).Msg("ignoring unknown measurement")
			continue
		}
		if p.raw {
			continue
		}
		key, tbl := acc.target(rec, p.output)
		if err := tbl.Declare(key, p.output); err != nil {
			log.Error().Err(err).Msg("failed to declare group")
			return
		}
		vals, err := acc.usable(rec, m, p)
		if err != nil {
			acc.exclude(rec, key, m, p, err)
			continue
		}
		for _, v := range vals {
			if err := tbl.Insert(key, p.output, v); err != nil {
				log.Error().Err(err).Msg("failed to insert sample")
				return
			}
		}
	}
}

// target returns the grouping key and table of rec. Timing fields use
// the coarse (train_size, lag) key.
func (acc *Accumulator) target(rec record.RawRecord, m record.Measurement) (group.Key, *group.Table) {
	top := rec.Category
	if acc.conf.Grouping == ByAlgorithm {
		top = rec.Algorithm
	}
	if rec.Baseline != record.NoBaseline {
		return group.Key{Category: top}, acc.baselines[rec.Baseline]
	}
	if m.IsTiming() {
		return group.Key{TrainSize: rec.TrainSize, Lag: rec.Lag}, acc.table
	}
	return group.Key{Category: top, TrainSize: rec.TrainSize, Lag: rec.Lag}, acc.table
}

// divergenceError carries the offending value of an excluded field.
type divergenceError struct {
	value float64
}

func (e divergenceError) Error() string {
	return fmt.Sprintf("%s: |%g| exceeds threshold", record.ErrDivergentValue, e.value)
}

func (e divergenceError) Unwrap() error {
	return record.ErrDivergentValue
}

// usable applies the strict count, reduction, divergence and unit rules
// to one field and returns the values to insert.
func (acc *Accumulator) usable(rec record.RawRecord, m record.Measurement, p fieldPolicy) ([]float64, error) {
	vals := rec.Fields[m].Present()
	expected := acc.conf.ExpectedSampleCount

	if p.strictCount && expected > 0 && len(vals) != expected {
		return nil, fmt.Errorf("%w: %d usable of %d expected", record.ErrInconsistentSampleCount, len(vals), expected)
	}
	if p.meanOfCount {
		if len(vals) == 0 {
			return nil, nil
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		n := expected
		if n <= 0 {
			n = len(vals)
		}
		vals = []float64{sum / float64(n)}
	}
	if p.divergence && acc.conf.DivergenceThreshold > 0 {
		for _, v := range vals {
			if math.IsNaN(v) || math.Abs(v) > acc.conf.DivergenceThreshold {
				return nil, divergenceError{value: v}
			}
		}
	}
	if p.millis {
		vals = stats.NanosToMillis(vals)
	}
	return vals, nil
}

func (acc *Accumulator) exclude(rec record.RawRecord, key group.Key, m record.Measurement, p fieldPolicy, err error) {
	ev := log.Warn().
		Str("source", rec.Source).
		Str("key", key.String()).
		Str("measurement", string(m)).
		Err(err)

	var div divergenceError
	switch {
	case errors.As(err, &div):
		acc.report.Divergent++
		acc.divergences = append(acc.divergences, aggregate.Divergence{
			Key:         key,
			Baseline:    rec.Baseline,
			Measurement: p.output,
			Source:      rec.Source,
			Value:       div.value,
		})
		ev.Msg("excluding divergent field")
	case errors.Is(err, record.ErrInconsistentSampleCount):
		acc.report.InconsistentCount++
		ev.Msg("excluding field with inconsistent sample count")
	default:
		acc.report.Malformed++
		ev.Msg("excluding field")
	}
}

// Merge combines shard accumulators in the given order. Samples are
// concatenated per group; nothing is summarized.
func Merge(conf Config, shards ...*Accumulator) (*Accumulator, error) {
	out := NewAccumulator(conf)
	for _, sh := range shards {
		if sh == nil {
			continue
		}
		if err := out.table.Merge(sh.table); err != nil {
			return nil, err
		}
		for _, id := range baselineIDs {
			if err := out.baselines[id].Merge(sh.baselines[id]); err != nil {
				return nil, err
			}
		}
		out.divergences = append(out.divergences, sh.divergences...)
		out.report.Merge(sh.report)
	}
	return out, nil
}

// Finalize freezes acc and summarizes every non-empty group. Empty groups
// are omitted and counted.
func Finalize(acc *Accumulator) (*aggregate.Table, Report) {
	acc.table.Freeze()
	b := aggregate.NewBuilder()
	retained := acc.table.Retains()

	acc.table.Each(func(key group.Key, m record.Measurement, g *group.Group) {
		s, err := g.Summarize(retained)
		if err != nil {
			acc.omit(key, m, record.NoBaseline, err)
			return
		}
		b.Set(key, m, s)
	})
	for _, id := range baselineIDs {
		tbl := acc.baselines[id]
		tbl.Freeze()
		tbl.Each(func(key group.Key, m record.Measurement, g *group.Group) {
			s, err := g.Summarize(retained)
			if err != nil {
				acc.omit(key, m, id, err)
				return
			}
			b.SetBaseline(key.Category, id, m, s)
		})
	}
	for _, d := range acc.divergences {
		b.AddDivergence(d)
	}
	return b.Build(), acc.report
}

func (acc *Accumulator) omit(key group.Key, m record.Measurement, id record.Baseline, err error) {
	acc.report.EmptyGroups++
	log.Warn().
		Str("key", key.String()).
		Str("baseline", string(id)).
		Str("measurement", string(m)).
		Err(err).
		Msg("omitting group without valid samples")
}

// Run aggregates records in a single pass.
func Run(conf Config, records []record.RawRecord) (*aggregate.Table, Report) {
	acc := NewAccumulator(conf)
	acc.AddAll(records)
	return Finalize(acc)
}

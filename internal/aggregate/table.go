// internal/aggregate/table.go
// Package: aggregate

// Package aggregate holds the finalized, read-only result of one
// aggregation run.
package aggregate

import (
	"slices"

	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/stats"
)

// DivergenceDisplayValue is the conventional chart position of a diverged
// entry: worse than any valid observation. It is never a statistic.
const DivergenceDisplayValue = 2.0

// Divergence is an out-of-band marker for a record field excluded because
// its value exceeded the admissible range.
type Divergence struct {
	Key         group.Key          `json:"key"`
	Baseline    record.Baseline    `json:"baseline,omitempty"`
	Measurement record.Measurement `json:"measurement"`
	Source      string             `json:"source"`
	Value       float64            `json:"value"`
}

type entry map[record.Measurement]stats.Statistic

// Table is category -> train_size -> lag -> measurement -> Statistic with
// per-category baseline references and divergence markers. Only the
// engine builds it; consumers get read-only accessors.
type Table struct {
	keys        []group.Key
	entries     map[group.Key]entry
	baselines   map[string]map[record.Baseline]entry
	baseOrder   []string
	divergences []Divergence
}

// Builder assembles a Table. It is used once by the engine and must not
// be reused after Build.
type Builder struct {
	t *Table
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{t: &Table{
		entries:   make(map[group.Key]entry),
		baselines: make(map[string]map[record.Baseline]entry),
	}}
}

// Set stores the statistic of (key, m).
func (b *Builder) Set(key group.Key, m record.Measurement, s stats.Statistic) {
	e, ok := b.t.entries[key]
	if !ok {
		e = make(entry)
		b.t.entries[key] = e
		b.t.keys = append(b.t.keys, key)
	}
	e[m] = s
}

// SetBaseline stores a reference statistic for category.
func (b *Builder) SetBaseline(category string, id record.Baseline, m record.Measurement, s stats.Statistic) {
	byID, ok := b.t.baselines[category]
	if !ok {
		byID = make(map[record.Baseline]entry)
		b.t.baselines[category] = byID
		b.t.baseOrder = append(b.t.baseOrder, category)
	}
	e, ok := byID[id]
	if !ok {
		e = make(entry)
		byID[id] = e
	}
	e[m] = s
}

// AddDivergence records a divergence marker.
func (b *Builder) AddDivergence(d Divergence) {
	b.t.divergences = append(b.t.divergences, d)
}

// Build returns the finished table.
func (b *Builder) Build() *Table {
	t := b.t
	b.t = nil
	return t
}

// Keys returns every key holding at least one statistic, first-seen.
func (t *Table) Keys() []group.Key {
	return slices.Clone(t.keys)
}

// Len returns the number of keys.
func (t *Table) Len() int {
	return len(t.keys)
}

// Lookup returns the statistic of (key, m).
func (t *Table) Lookup(key group.Key, m record.Measurement) (stats.Statistic, bool) {
	e, ok := t.entries[key]
	if !ok {
		return stats.Statistic{}, false
	}
	s, ok := e[m]
	return s, ok
}

// Measurements returns the measurements available for key, sorted by name.
func (t *Table) Measurements(key group.Key) []record.Measurement {
	e := t.entries[key]
	out := make([]record.Measurement, 0, len(e))
	for m := range e {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Categories returns categories in first-seen order.
func (t *Table) Categories() []string {
	var out []string
	for _, k := range t.keys {
		if !slices.Contains(out, k.Category) {
			out = append(out, k.Category)
		}
	}
	return out
}

// TrainSizes returns the train sizes of category in first-seen order.
func (t *Table) TrainSizes(category string) []int {
	var out []int
	for _, k := range t.keys {
		if k.Category == category && !slices.Contains(out, k.TrainSize) {
			out = append(out, k.TrainSize)
		}
	}
	return out
}

// Lags returns the lags of (category, trainSize) in first-seen order.
func (t *Table) Lags(category string, trainSize int) []int {
	var out []int
	for _, k := range t.keys {
		if k.Category == category && k.TrainSize == trainSize && !slices.Contains(out, k.Lag) {
			out = append(out, k.Lag)
		}
	}
	return out
}

// SortedTrainSizes returns the train sizes of category ascending.
func (t *Table) SortedTrainSizes(category string) []int {
	out := t.TrainSizes(category)
	slices.Sort(out)
	return out
}

// SortedLags returns the lags of (category, trainSize) ascending.
func (t *Table) SortedLags(category string, trainSize int) []int {
	out := t.Lags(category, trainSize)
	slices.Sort(out)
	return out
}

// BaselineCategories returns the categories with a baseline reference.
func (t *Table) BaselineCategories() []string {
	return slices.Clone(t.baseOrder)
}

// Baseline returns the reference statistic of (category, id, m).
func (t *Table) Baseline(category string, id record.Baseline, m record.Measurement) (stats.Statistic, bool) {
	e, ok := t.baselines[category][id]
	if !ok {
		return stats.Statistic{}, false
	}
	s, ok := e[m]
	return s, ok
}

// Divergences returns every divergence marker in ingestion order.
func (t *Table) Divergences() []Divergence {
	return slices.Clone(t.divergences)
}

// Diverged reports whether any record of (key, m) was excluded as
// divergent.
func (t *Table) Diverged(key group.Key, m record.Measurement) bool {
	for _, d := range t.divergences {
		if d.Key == key && d.Measurement == m && d.Baseline == record.NoBaseline {
			return true
		}
	}
	return false
}

// DisplayValue returns the mean of (key, m) for charts. An entry with no
// statistic but a divergence marker is placed at DivergenceDisplayValue;
// diverged reports that case.
func (t *Table) DisplayValue(key group.Key, m record.Measurement) (value float64, diverged, ok bool) {
	if s, found := t.Lookup(key, m); found {
		return s.Mean, false, true
	}
	if t.Diverged(key, m) {
		return DivergenceDisplayValue, true, true
	}
	return 0, false, false
}

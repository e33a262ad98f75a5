// internal/group/table.go
// Package: group

// Package group accumulates raw samples per (category, train size, lag,
// measurement). The table is a single flat map keyed by the composite key;
// an auxiliary index keeps first-seen order, which consumers rely on when
// plotting series in discovery order.
package group

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/stats"
)

// ErrFrozen is returned when inserting into a table after Freeze.
var ErrFrozen = errors.New("grouping table is frozen")

// Key identifies one group. An empty Category is the coarse
// (train_size, lag) key used by timing views; baseline groups use
// TrainSize == Lag == 0.
type Key struct {
	Category  string `json:"category"`
	TrainSize int    `json:"train_size"`
	Lag       int    `json:"lag"`
}

// String returns "category/train_size-lag".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d-%d", k.Category, k.TrainSize, k.Lag)
}

type slot struct {
	Key         Key
	Measurement record.Measurement
}

// Group holds the samples of one slot. Samples are retained only when
// the owning table retains them; moments are always kept.
type Group struct {
	samples []float64
	moments stats.Moments
}

// Samples returns a copy of the retained samples.
func (g *Group) Samples() []float64 {
	return slices.Clone(g.samples)
}

// Count returns the number of inserted samples.
func (g *Group) Count() int {
	return g.moments.Count()
}

// Summarize reduces the group. With retained samples the two-pass
// Summarize is used, otherwise the streamed moments.
func (g *Group) Summarize(retained bool) (stats.Statistic, error) {
	if retained {
		return stats.Summarize(g.samples)
	}
	return g.moments.Statistic()
}

// Table is an append-only grouping table.
type Table struct {
	retain bool
	frozen bool
	groups map[slot]*Group
	order  []slot // first-seen slot order
	keys   []Key  // first-seen key order
	seen   map[Key]struct{}
}

// NewTable creates a table. With retain == false only streamed moments
// are kept (bounded memory).
func NewTable(retain bool) *Table {
	return &Table{
		retain: retain,
		groups: make(map[slot]*Group),
		seen:   make(map[Key]struct{}),
	}
}

// Retains reports whether raw samples are kept.
func (t *Table) Retains() bool {
	return t.retain
}

// Insert appends value to the group addressed by key and m, creating it
// on first use.
func (t *Table) Insert(key Key, m record.Measurement, value float64) error {
	if t.frozen {
		return ErrFrozen
	}
	g := t.group(key, m)
	if t.retain {
		g.samples = append(g.samples, value)
	}
	g.moments.Push(value)
	return nil
}

// Declare creates the group of (key, m) without adding a sample, so the
// slot keeps its discovery position even if every value for it ends up
// excluded. Such a group stays empty.
func (t *Table) Declare(key Key, m record.Measurement) error {
	if t.frozen {
		return ErrFrozen
	}
	t.group(key, m)
	return nil
}

func (t *Table) group(key Key, m record.Measurement) *Group {
	s := slot{Key: key, Measurement: m}
	g, ok := t.groups[s]
	if !ok {
		g = &Group{}
		t.groups[s] = g
		t.order = append(t.order, s)
		if _, seen := t.seen[key]; !seen {
			t.seen[key] = struct{}{}
			t.keys = append(t.keys, key)
		}
	}
	return g
}

// Freeze makes the table read-only.
func (t *Table) Freeze() {
	t.frozen = true
}

// Group returns the group for key and m.
func (t *Table) Group(key Key, m record.Measurement) (*Group, bool) {
	g, ok := t.groups[slot{Key: key, Measurement: m}]
	return g, ok
}

// Len returns the number of groups.
func (t *Table) Len() int {
	return len(t.order)
}

// Keys returns every seen key in first-seen order.
func (t *Table) Keys() []Key {
	return slices.Clone(t.keys)
}

// Measurements returns the measurements recorded under key, first-seen.
func (t *Table) Measurements(key Key) []record.Measurement {
	var out []record.Measurement
	for _, s := range t.order {
		if s.Key == key {
			out = append(out, s.Measurement)
		}
	}
	return out
}

// Each calls fn for every group in first-seen slot order.
func (t *Table) Each(fn func(key Key, m record.Measurement, g *Group)) {
	for _, s := range t.order {
		fn(s.Key, s.Measurement, t.groups[s])
	}
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

// Merge appends every group of other into t. Samples are concatenated and
// moments merged; nothing is summarized. Merge order only changes sample
// order, never the sample multiset.
func (t *Table) Merge(other *Table) error {
	if t.frozen {
		return ErrFrozen
	}
	for _, s := range other.order {
		src := other.groups[s]
		dst := t.group(s.Key, s.Measurement)
		if t.retain {
			dst.samples = append(dst.samples, src.samples...)
		}
		dst.moments.Merge(src.moments)
	}
	return nil
}

// internal/export/series.go
// Package: export

// Package export flattens aggregate tables into labelled rows and writes
// them as CSV, XLSX or terminal tables.
package export

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/stats"
)

// Column is one (train_size, lag) combination.
type Column struct {
	TrainSize int
	Lag       int
}

func (c Column) String() string {
	return fmt.Sprintf("%d-%d", c.TrainSize, c.Lag)
}

func compareColumns(a, b Column) int {
	if c := cmp.Compare(a.TrainSize, b.TrainSize); c != 0 {
		return c
	}
	return cmp.Compare(a.Lag, b.Lag)
}

// Cell is one exported value. A diverged cell has no statistic: every
// record of it was excluded as divergent.
type Cell struct {
	Stat     stats.Statistic
	Diverged bool
}

// Series is one output row: a label (algorithm or category) and its cells.
type Series struct {
	Label string
	Cells map[Column]Cell
}

// Columns returns the columns of s ordered by train size, then lag.
func (s Series) Columns() []Column {
	out := make([]Column, 0, len(s.Cells))
	for c := range s.Cells {
		out = append(out, c)
	}
	slices.SortFunc(out, compareColumns)
	return out
}

// FromCategories builds one series per category of t for measurement m,
// in first-seen category order. Keys whose records all diverged become
// diverged cells.
func FromCategories(t *aggregate.Table, m record.Measurement) []Series {
	var out []Series
	index := make(map[string]int)
	add := func(key group.Key, cell Cell) {
		i, ok := index[key.Category]
		if !ok {
			i = len(out)
			index[key.Category] = i
			out = append(out, Series{Label: key.Category, Cells: make(map[Column]Cell)})
		}
		out[i].Cells[Column{key.TrainSize, key.Lag}] = cell
	}
	for _, key := range t.Keys() {
		if key.Category == "" {
			continue
		}
		if s, ok := t.Lookup(key, m); ok {
			add(key, Cell{Stat: s})
		}
	}
	for _, d := range t.Divergences() {
		if d.Measurement != m || d.Baseline != record.NoBaseline || d.Key.Category == "" {
			continue
		}
		if _, ok := t.Lookup(d.Key, m); !ok {
			add(d.Key, Cell{Diverged: true})
		}
	}
	return out
}

// FromCoarse builds a single labelled series from the coarse keys (no
// category) of t, as used for timing measurements.
func FromCoarse(label string, t *aggregate.Table, m record.Measurement) Series {
	s := Series{Label: label, Cells: make(map[Column]Cell)}
	for _, key := range t.Keys() {
		if key.Category != "" {
			continue
		}
		if st, ok := t.Lookup(key, m); ok {
			s.Cells[Column{key.TrainSize, key.Lag}] = Cell{Stat: st}
		}
	}
	return s
}

// Relative divides every cell of rows by the mean of that row's ref
// column. Rows without a usable reference are returned unchanged and
// reported in missing.
func Relative(rows []Series, ref Column) (out []Series, missing []string) {
	out = make([]Series, len(rows))
	for i, row := range rows {
		base, ok := row.Cells[ref]
		if !ok || base.Diverged || base.Stat.Mean == 0 {
			out[i] = row
			missing = append(missing, row.Label)
			continue
		}
		scaled := Series{Label: row.Label, Cells: make(map[Column]Cell, len(row.Cells))}
		for c, cell := range row.Cells {
			if !cell.Diverged {
				cell.Stat = stats.Scale(cell.Stat, base.Stat.Mean)
			}
			scaled.Cells[c] = cell
		}
		out[i] = scaled
	}
	return out, missing
}

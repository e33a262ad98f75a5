// internal/export/sheet.go
// Package: export
package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/record"
)

// LabelHeader is the first header cell of every flattened sheet.
const LabelHeader = "algo"

// DivergedText is the cell text of an entry whose records all diverged.
const DivergedText = "diverged"

// Sheet is a flattened, rectangular table of cell text.
type Sheet struct {
	Name    string
	Header  []string
	Rows    [][]string
	Dropped int // cells whose column was not in the header
}

// Flatten lays rows out under one header derived from the first row: its
// columns sorted by train size, then lag. Every row is written against
// that header, a missing combination leaves an empty cell and columns the
// first row lacks are dropped and counted.
func Flatten(name string, rows []Series) Sheet {
	sheet := Sheet{Name: name, Header: []string{LabelHeader}}
	if len(rows) == 0 {
		return sheet
	}

	cols := rows[0].Columns()
	pos := make(map[Column]int, len(cols))
	for i, c := range cols {
		sheet.Header = append(sheet.Header, c.String())
		pos[c] = i + 1
	}

	for _, row := range rows {
		line := make([]string, len(sheet.Header))
		line[0] = row.Label
		for c, cell := range row.Cells {
			i, ok := pos[c]
			if !ok {
				sheet.Dropped++
				continue
			}
			line[i] = cell.Text()
		}
		sheet.Rows = append(sheet.Rows, line)
	}
	return sheet
}

// BaselineSheet lays out the baseline references of t for m: one row per
// baseline, one column per category.
func BaselineSheet(name string, t *aggregate.Table, m record.Measurement) Sheet {
	cats := t.BaselineCategories()
	sheet := Sheet{Name: name, Header: append([]string{"baseline"}, cats...)}
	for _, id := range []record.Baseline{record.SilenceSubstitution, record.PatternReplication} {
		line := make([]string, len(sheet.Header))
		line[0] = string(id)
		found := false
		for i, cat := range cats {
			if s, ok := t.Baseline(cat, id, m); ok {
				line[i+1] = Cell{Stat: s}.Text()
				found = true
			}
		}
		if found {
			sheet.Rows = append(sheet.Rows, line)
		}
	}
	return sheet
}

// Text formats the cell as "{mean}±{ci}".
func (c Cell) Text() string {
	if c.Diverged {
		return DivergedText
	}
	return FormatFloat(c.Stat.Mean) + "±" + FormatFloat(c.Stat.CI95)
}

// FormatFloat writes v in shortest round-trip form, keeping a ".0" on
// integral values (6 -> "6.0") and switching to exponent notation outside
// [1e-4, 1e16).
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	if a := math.Abs(v); a < 1e-4 || a >= 1e16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// internal/export/write.go
// Package: export
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the header and rows of sheet.
func WriteCSV(w io.Writer, sheet Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(sheet.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSVFile writes sheet to path, creating parent directories.
func WriteCSVFile(path string, sheet Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, sheet); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteWorkbook writes every sheet to one XLSX file, one worksheet each.
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool)
	for i, sheet := range sheets {
		name := worksheetName(sheet.Name, i, used)
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create worksheet %q: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		header := make([]interface{}, len(sheet.Header))
		for j, h := range sheet.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for r, row := range sheet.Rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return err
			}
		}
	}
	if !used[defaultSheet] {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// worksheetName returns a unique, valid worksheet name for sheet i.
func worksheetName(name string, i int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		name = base
		if len(name)+len(suffix) > 31 {
			name = name[:31-len(suffix)]
		}
		name += suffix
	}
	used[name] = true
	return name
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = cellStyle.Foreground(lipgloss.Color("255"))
	divStyle    = cellStyle.Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// RenderTable renders sheet for the terminal.
func RenderTable(sheet Sheet) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(sheet.Header...).
		Rows(sheet.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			case row >= 0 && row < len(sheet.Rows) && col < len(sheet.Rows[row]) && sheet.Rows[row][col] == DivergedText:
				return divStyle
			}
			return cellStyle
		})

	var b strings.Builder
	if sheet.Name != "" {
		b.WriteString(headerStyle.Render(sheet.Name))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	if sheet.Dropped > 0 {
		fmt.Fprintf(&b, "\n%d cell(s) outside the header were dropped", sheet.Dropped)
	}
	return b.String()
}

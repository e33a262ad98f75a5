// cmd/arstats/run.go
package arstats

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/chart"
	"github.com/mwiater/arstats/internal/engine"
	"github.com/mwiater/arstats/internal/export"
)

// aggregateFiles runs the engine over paths with a progress bar on
// stderr and logs the resulting report.
func aggregateFiles(ctx context.Context, ec engine.Config, paths []string, decode engine.DecodeFunc, desc string) (*aggregate.Table, engine.Report, error) {
	var progress engine.Progress
	if !quiet {
		bar := progressbar.Default(int64(len(paths)), desc)
		defer bar.Finish()
		progress = func(string) { bar.Add(1) }
	}
	table, report, err := engine.RunFiles(ctx, ec, paths, decode, progress)
	if err != nil {
		return nil, report, fmt.Errorf("aggregation cancelled: %w", err)
	}
	return table, report, nil
}

// emit writes sheet as CSV below the output directory and prints it
// unless quiet.
func emit(w io.Writer, rel string, sheet export.Sheet) error {
	path := filepath.Join(conf.Output, rel)
	if err := export.WriteCSVFile(path, sheet); err != nil {
		return err
	}
	if sheet.Dropped > 0 {
		log.Warn().Str("file", path).Int("dropped", sheet.Dropped).Msg("cells outside the header were dropped")
	}
	log.Info().Str("file", path).Int("rows", len(sheet.Rows)).Msg("table written")
	if !quiet {
		fmt.Fprintln(w, export.RenderTable(sheet))
	}
	return nil
}

func chartOptions() chart.Options {
	return chart.Options{Width: conf.Charts.Width, Height: conf.Charts.Height}
}

// fileStem is the file name without directory and extension.
func fileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// summarize prints the run report.
func summarize(w io.Writer, report engine.Report) {
	report.Log()
	if quiet || !report.HasIssues() {
		return
	}
	fmt.Fprintf(w, "skipped or excluded: %d malformed, %d divergent, %d inconsistent count, %d empty groups, %d unreadable files\n",
		report.Malformed, report.Divergent, report.InconsistentCount, report.EmptyGroups, report.IOFailures)
}

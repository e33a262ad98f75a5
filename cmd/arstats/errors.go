// cmd/arstats/errors.go
package arstats

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/chart"
	"github.com/mwiater/arstats/internal/discover"
	"github.com/mwiater/arstats/internal/engine"
	"github.com/mwiater/arstats/internal/export"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/resultfile"
)

var errorMeasurements = []record.Measurement{record.MAE, record.RMSE}

// timingViews are the per-file timing outputs of 'errors'.
var timingViews = []struct {
	m     record.Measurement
	title string
}{
	{record.FitTime, "AR fit time"},
	{record.PredictTime, "AR predict time"},
}

// errorsCmd implements 'errors', which summarizes prediction errors per
// category of every CSV result table.
var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Summarize mae and rmse per category of each CSV result file",
	Long: `The 'errors' command reads every CSV result table below the input directory and,
per file, groups mae and rmse by category, train size and lag. It writes
<output>/<file>/categories_<measurement>.csv and baselines_<measurement>.csv
with "{mean}±{ci}" cells, the file's fit and predict times in milliseconds
to <output>/<file>/fit_time.csv and predict_time.csv and, with --charts,
one chart per category and measurement plus one per timing measurement.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".csv")
		if err != nil {
			return err
		}
		ec := conf.Aggregation
		ec.Grouping = engine.ByCategory

		var total engine.Report
		for _, path := range paths {
			table, report, err := aggregateFiles(cmd.Context(), ec, []string{path}, resultfile.ReadFileTable, fileStem(path))
			if err != nil {
				return err
			}
			total.Merge(report)
			if table.Len() == 0 && len(table.BaselineCategories()) == 0 {
				log.Warn().Str("source", path).Msg("no usable error measurements")
				continue
			}
			if err := writeErrorTables(cmd, fileStem(path), table); err != nil {
				return err
			}
		}
		summarize(cmd.OutOrStdout(), total)
		return nil
	},
}

func writeErrorTables(cmd *cobra.Command, name string, table *aggregate.Table) error {
	for _, m := range errorMeasurements {
		rows := export.FromCategories(table, m)
		if len(rows) > 0 {
			sheet := export.Flatten(fmt.Sprintf("%s %s", name, m), rows)
			if err := emit(cmd.OutOrStdout(), filepath.Join(name, fmt.Sprintf("categories_%s.csv", m)), sheet); err != nil {
				return err
			}
		}
		if len(table.BaselineCategories()) > 0 {
			sheet := export.BaselineSheet(fmt.Sprintf("%s %s baselines", name, m), table, m)
			if len(sheet.Rows) > 0 {
				if err := emit(cmd.OutOrStdout(), filepath.Join(name, fmt.Sprintf("baselines_%s.csv", m)), sheet); err != nil {
					return err
				}
			}
		}
		if !conf.Charts.Enabled {
			continue
		}
		for _, cat := range table.Categories() {
			if cat == "" {
				continue
			}
			path := filepath.Join(conf.Output, name, "charts", fmt.Sprintf("%s_%s.png", cat, m))
			n, err := chart.ErrorCurves(path, table, m, cat, chartOptions())
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info().Str("file", path).Int("curves", n).Msg("chart written")
			}
		}
	}
	return writeFileTiming(cmd, name, table)
}

// writeFileTiming writes the coarse timing groups of one file: one row
// labelled with the file name, one chart with a curve per train size.
func writeFileTiming(cmd *cobra.Command, name string, table *aggregate.Table) error {
	for _, v := range timingViews {
		row := export.FromCoarse(name, table, v.m)
		if len(row.Cells) == 0 {
			continue
		}
		sheet := export.Flatten(fmt.Sprintf("%s %s", name, v.m), []export.Series{row})
		if err := emit(cmd.OutOrStdout(), filepath.Join(name, string(v.m)+".csv"), sheet); err != nil {
			return err
		}
		if !conf.Charts.Enabled {
			continue
		}
		opts := chartOptions()
		opts.Title = v.title
		path := filepath.Join(conf.Output, name, "charts", string(v.m)+".png")
		n, err := chart.ErrorCurves(path, table, v.m, "", opts)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Str("file", path).Int("curves", n).Msg("chart written")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(errorsCmd)
}

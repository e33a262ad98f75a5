// cmd/arstats/fit_error.go
package arstats

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwiater/arstats/internal/chart"
	"github.com/mwiater/arstats/internal/discover"
	"github.com/mwiater/arstats/internal/engine"
	"github.com/mwiater/arstats/internal/export"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/resultfile"
)

const (
	dfltFitErrorMinLag = 1
	dfltFitErrorMaxLag = 128
)

// fitErrorCmd implements 'fit-error', which summarizes the cumulative
// fit error tables.
var fitErrorCmd = &cobra.Command{
	Use:   "fit-error",
	Short: "Summarize cumulative fit error per category",
	Long: `The 'fit-error' command reads CSV result tables holding ar_error series and,
per file, reports the fit error per category, train size and lag within the
configured lag range (1..128 unless aggregation.minLag/maxLag are set). It
writes <output>/<file>/fit_error.csv and, with --charts, one chart per
category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".csv")
		if err != nil {
			return err
		}
		ec := conf.Aggregation
		ec.Grouping = engine.ByCategory
		if ec.MinLag == 0 && ec.MaxLag == 0 {
			ec.MinLag, ec.MaxLag = dfltFitErrorMinLag, dfltFitErrorMaxLag
		}

		var total engine.Report
		for _, path := range paths {
			table, report, err := aggregateFiles(cmd.Context(), ec, []string{path}, resultfile.ReadFileTable, fileStem(path))
			if err != nil {
				return err
			}
			total.Merge(report)
			rows := export.FromCategories(table, record.FitError)
			if len(rows) == 0 {
				continue
			}
			name := fileStem(path)
			if err := emit(cmd.OutOrStdout(), filepath.Join(name, "fit_error.csv"), export.Flatten(name+" fit error", rows)); err != nil {
				return err
			}
			if !conf.Charts.Enabled {
				continue
			}
			for _, cat := range table.Categories() {
				out := filepath.Join(conf.Output, name, "charts", fmt.Sprintf("%s_fit_error.png", cat))
				if _, err := chart.ErrorCurves(out, table, record.FitError, cat, chartOptions()); err != nil {
					return err
				}
			}
		}
		summarize(cmd.OutOrStdout(), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fitErrorCmd)
}

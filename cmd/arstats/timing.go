// cmd/arstats/timing.go
package arstats

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mwiater/arstats/internal/chart"
	"github.com/mwiater/arstats/internal/discover"
	"github.com/mwiater/arstats/internal/engine"
	"github.com/mwiater/arstats/internal/export"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/resultfile"
)

var (
	timingXLSX     bool
	timingRelative bool
)

// relativeRef is the column timings are expressed against with --relative.
var relativeRef = export.Column{TrainSize: 512, Lag: 1}

// timingCmd implements 'timing', which reports fit and predict times per
// algorithm across all CSV result files.
var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Summarize fit and predict times per algorithm",
	Long: `The 'timing' command reads every CSV result table below the input directory,
groups the files by algorithm (file name without the trailing -<timestamp>)
and reports fit and predict times in milliseconds per train size and lag.
It writes fit_time.csv and predict_time.csv, timing.xlsx with --xlsx and
charts with --charts. --relative prints each cell as a multiple of the
512-1 mean of its row.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".csv")
		if err != nil {
			return err
		}
		algos, byAlgo := discover.ByStem(paths, resultfile.AlgorithmFromPath)

		ec := conf.Aggregation
		ec.Grouping = engine.ByAlgorithm

		var (
			fitRows, predictRows []export.Series
			total                engine.Report
		)
		for _, algo := range algos {
			table, report, err := aggregateFiles(cmd.Context(), ec, byAlgo[algo], resultfile.ReadFileTable, algo)
			if err != nil {
				return err
			}
			total.Merge(report)
			fit := export.FromCoarse(algo, table, record.FitTime)
			predict := export.FromCoarse(algo, table, record.PredictTime)
			if len(fit.Cells) == 0 && len(predict.Cells) == 0 {
				log.Warn().Str("algorithm", algo).Msg("no timing measurements")
				continue
			}
			if c, ok := fit.Cells[relativeRef]; ok {
				log.Debug().
					Str("algorithm", algo).
					Float64("meanMs", c.Stat.Mean).
					Float64("medianMs", c.Stat.Median).
					Msg("fit time at " + relativeRef.String())
			}
			if len(fit.Cells) > 0 {
				fitRows = append(fitRows, fit)
			}
			if len(predict.Cells) > 0 {
				predictRows = append(predictRows, predict)
			}
		}

		sheets := []export.Sheet{
			export.Flatten("fit_time", fitRows),
			export.Flatten("predict_time", predictRows),
		}
		for _, sheet := range sheets {
			if err := emit(cmd.OutOrStdout(), sheet.Name+".csv", sheet); err != nil {
				return err
			}
		}
		if timingXLSX {
			path := filepath.Join(conf.Output, "timing.xlsx")
			if err := export.WriteWorkbook(path, sheets...); err != nil {
				return err
			}
			log.Info().Str("file", path).Msg("workbook written")
		}
		views := []struct {
			name string
			rows []export.Series
		}{{"fit_time", fitRows}, {"predict_time", predictRows}}
		if timingRelative && !quiet {
			for _, rows := range views {
				rel, missing := export.Relative(rows.rows, relativeRef)
				if len(missing) > 0 {
					log.Warn().Strs("algorithms", missing).Str("reference", relativeRef.String()).Msg("no reference cell, printing absolute values")
				}
				title := fmt.Sprintf("%s relative to %s", rows.name, relativeRef)
				fmt.Fprintln(cmd.OutOrStdout(), export.RenderTable(export.Flatten(title, rel)))
			}
		}
		if conf.Charts.Enabled {
			for _, v := range views {
				path := filepath.Join(conf.Output, "charts", v.name+".png")
				if _, err := chart.Rows(path, v.name, "ms", v.rows, chartOptions()); err != nil {
					return err
				}
			}
		}
		summarize(cmd.OutOrStdout(), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timingCmd)
	timingCmd.Flags().BoolVar(&timingXLSX, "xlsx", false, "also write timing.xlsx with one worksheet per measurement")
	timingCmd.Flags().BoolVar(&timingRelative, "relative", false, "print cells as multiples of the 512-1 mean")
}

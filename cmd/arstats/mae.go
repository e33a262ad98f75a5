// cmd/arstats/mae.go
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

// maeCmd implements 'mae', which derives the mean absolute error of each
// algorithm from per-trial JSON files.
var maeCmd = &cobra.Command{
	Use:   "mae",
	Short: "Summarize per-trial absolute errors per algorithm",
	Long: `The 'mae' command reads every JSON trial file below the input directory. Each
trial's ar_ae series must hold exactly the expected number of samples and is
reduced to one mean absolute error; trials above the divergence threshold
are excluded and marked. It writes mae.csv with one row per algorithm and,
with --charts, one chart per algorithm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".json")
		if err != nil {
			return err
		}
		ec := conf.Aggregation
		ec.Grouping = engine.ByAlgorithm

		table, report, err := aggregateFiles(cmd.Context(), ec, paths, resultfile.ReadTrialsFile, "trials")
		if err != nil {
			return err
		}
		for _, d := range table.Divergences() {
			log.Info().
				Str("source", d.Source).
				Str("key", d.Key.String()).
				Float64("value", d.Value).
				Msg("diverged")
		}

		sheet := export.Flatten("mae", export.FromCategories(table, record.MAE))
		if err := emit(cmd.OutOrStdout(), "mae.csv", sheet); err != nil {
			return err
		}
		if conf.Charts.Enabled {
			for _, algo := range table.Categories() {
				opts := chartOptions()
				opts.Title = chart.AlgorithmName(algo)
				path := filepath.Join(conf.Output, "charts", fmt.Sprintf("mae_%s.png", algo))
				if _, err := chart.ErrorCurves(path, table, record.MAE, algo, opts); err != nil {
					return err
				}
			}
		}
		summarize(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(maeCmd)
}

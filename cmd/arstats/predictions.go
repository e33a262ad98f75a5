// cmd/arstats/predictions.go
package arstats

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mwiater/arstats/internal/chart"
	"github.com/mwiater/arstats/internal/discover"
	"github.com/mwiater/arstats/internal/record"
	"github.com/mwiater/arstats/internal/resultfile"
)

// predictionsCmd implements 'predictions', which plots the raw prediction
// curve of every trial.
var predictionsCmd = &cobra.Command{
	Use:   "predictions",
	Short: "Plot the prediction curve of every trial",
	Long: `The 'predictions' command reads every JSON trial file below the input directory
and writes one chart per trial holding a prediction series to
<output>/predictions/<file>/<algorithm>-<train size>-<lag>.png. Missing
entries are left out of the curve; repeated train size and lag pairs get a
numeric suffix. Predictions are plotted as recorded and never aggregated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".json")
		if err != nil {
			return err
		}
		var bar *progressbar.ProgressBar
		if !quiet {
			bar = progressbar.Default(int64(len(paths)), "predictions")
			defer bar.Finish()
		}

		written, failed := 0, 0
		for _, path := range paths {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			n, err := plotPredictions(path)
			if err != nil {
				failed++
				log.Warn().Str("source", path).Err(err).Msg("skipping trial file")
			}
			written += n
			if bar != nil {
				bar.Add(1)
			}
		}
		log.Info().Int("charts", written).Int("failed", failed).Msg("prediction charts written")
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d prediction charts written to %s\n", written, filepath.Join(conf.Output, "predictions"))
		}
		return nil
	},
}

// plotPredictions writes one chart per trial of path and returns how many
// were written. Rejected trials are logged and skipped.
func plotPredictions(path string) (int, error) {
	batch, err := resultfile.ReadTrialsFile(path)
	if err != nil {
		return 0, err
	}
	for _, err := range batch.Rejected {
		log.Warn().Str("source", path).Err(err).Msg("skipping malformed trial")
	}

	dir := filepath.Join(conf.Output, "predictions", fileStem(path))
	seen := make(map[string]int)
	written := 0
	for _, rec := range batch.Records {
		series, ok := rec.Field(record.Prediction)
		if !ok {
			continue
		}
		name := fmt.Sprintf("%s-%d-%d", rec.Algorithm, rec.TrainSize, rec.Lag)
		seen[name]++
		file := name
		if n := seen[name]; n > 1 {
			file = fmt.Sprintf("%s-%d", name, n)
		}
		opts := chartOptions()
		opts.Title = fmt.Sprintf("%s %d-%d", chart.AlgorithmName(rec.Algorithm), rec.TrainSize, rec.Lag)
		drawn, err := chart.Line(filepath.Join(dir, file+".png"), name, series.Present(), opts)
		if err != nil {
			return written, err
		}
		if drawn {
			written++
		}
	}
	return written, nil
}

func init() {
	rootCmd.AddCommand(predictionsCmd)
}

// cmd/arstats/root.go
package arstats

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/arstats/internal/config"
	"github.com/mwiater/arstats/internal/logging"
)

var (
	cfgFile  string
	quiet    bool
	conf     config.Conf
	logClose io.Closer
)

// rootCmd is the base Cobra command for the arstats application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "arstats",
	Short: "Aggregate AR benchmark results",
	Long: `arstats reads the result files written by the AR packet loss concealment
benchmark, groups the measurements by category, train size and lag and
reports mean values with 95% confidence intervals as CSV, XLSX, terminal
tables and charts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		closer, err := logging.Setup(c.Logging)
		if err != nil {
			return err
		}
		conf, logClose = c, closer
		log.Debug().Str("input", conf.Input).Str("output", conf.Output).Msg("configuration loaded")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logClose == nil {
			return nil
		}
		return logClose.Close()
	},
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure. An interrupt cancels the running aggregation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.StringP("input", "i", "results", "input result file or directory (env ARSTATS_INPUT)")
	flags.StringP("output", "o", "out", "output directory (env ARSTATS_OUTPUT)")
	flags.Int("workers", 0, "files decoded in parallel (0 = number of CPUs)")
	flags.Bool("streaming", false, "keep online moments instead of samples")
	flags.IntSlice("train-size", nil, "only aggregate these train sizes")
	flags.Float64("divergence-threshold", 0, "exclude fields above this magnitude (default 2.0)")
	flags.Bool("charts", false, "write PNG charts next to the tables")
	flags.BoolVarP(&quiet, "quiet", "q", false, "do not print tables or progress")

	bind := map[string]string{
		"log-level":            config.KeyLogLevel,
		"log-file":             config.KeyLogPath,
		"input":                config.KeyInput,
		"output":               config.KeyOutput,
		"workers":              config.KeyWorkers,
		"streaming":            config.KeyStreaming,
		"train-size":           config.KeyTrainSizes,
		"divergence-threshold": config.KeyThreshold,
		"charts":               config.KeyCharts,
	}
	for flag, key := range bind {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

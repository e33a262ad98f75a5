// internal/config/config.go
// Package: config

// Package config resolves the run configuration from defaults, an
// optional config file, ARSTATS_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mwiater/arstats/internal/engine"
	"github.com/mwiater/arstats/internal/logging"
)

const (
	dfltInput        = "results"
	dfltOutput       = "out"
	dfltChartWidth   = 16 // cm
	dfltChartHeight  = 10 // cm
	envPrefix        = "ARSTATS"
	KeyInput         = "input"
	KeyOutput        = "output"
	KeyLogLevel      = "logging.level"
	KeyLogPath       = "logging.path"
	KeyThreshold     = "aggregation.divergenceThreshold"
	KeyExpectedCount = "aggregation.expectedSampleCount"
	KeyTrainSizes    = "aggregation.trainSizes"
	KeyMinLag        = "aggregation.minLag"
	KeyMaxLag        = "aggregation.maxLag"
	KeyStreaming     = "aggregation.streaming"
	KeyWorkers       = "aggregation.workers"
	KeyCharts        = "charts.enabled"
	KeyChartWidth    = "charts.width"
	KeyChartHeight   = "charts.height"
)

// ChartsConf controls PNG chart output. Sizes are in centimeters.
type ChartsConf struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	Width   float64 `json:"width" mapstructure:"width"`
	Height  float64 `json:"height" mapstructure:"height"`
}

// Conf is the resolved configuration of one arstats invocation.
type Conf struct {
	Input       string        `json:"input" mapstructure:"input"`
	Output      string        `json:"output" mapstructure:"output"`
	Logging     logging.Conf  `json:"logging" mapstructure:"logging"`
	Aggregation engine.Config `json:"aggregation" mapstructure:"aggregation"`
	Charts      ChartsConf    `json:"charts" mapstructure:"charts"`
}

// SetDefaults registers the documented defaults on v.
func SetDefaults(v *viper.Viper) {
	dflt := engine.DefaultConfig()
	v.SetDefault(KeyInput, dfltInput)
	v.SetDefault(KeyOutput, dfltOutput)
	v.SetDefault(KeyLogLevel, logging.DfltLevel)
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyThreshold, dflt.DivergenceThreshold)
	v.SetDefault(KeyExpectedCount, dflt.ExpectedSampleCount)
	v.SetDefault(KeyTrainSizes, []int{})
	v.SetDefault(KeyMinLag, 0)
	v.SetDefault(KeyMaxLag, 0)
	v.SetDefault(KeyStreaming, false)
	v.SetDefault(KeyWorkers, dflt.Workers)
	v.SetDefault(KeyCharts, false)
	v.SetDefault(KeyChartWidth, dfltChartWidth)
	v.SetDefault(KeyChartHeight, dfltChartHeight)
}

// Load resolves the configuration held by v. A non-empty path is read as
// a config file (format chosen by its extension). Only the input and
// output roots may come from the environment.
func Load(v *viper.Viper, path string) (Conf, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{KeyInput, KeyOutput} {
		if err := v.BindEnv(key); err != nil {
			return Conf{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Conf{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var conf Conf
	if err := v.Unmarshal(&conf); err != nil {
		return Conf{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return Conf{}, err
	}
	return conf, nil
}

// Validate checks the parts of conf the engine does not own.
func (c Conf) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input must not be empty"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		errs = append(errs, fmt.Errorf("chart size must be positive, got %gx%g", c.Charts.Width, c.Charts.Height))
	}
	if err := c.Aggregation.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

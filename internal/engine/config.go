// internal/engine/config.go
// Package: engine
package engine

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/mwiater/arstats/internal/record"
)

const (
	// DfltDivergenceThreshold is the largest admissible error magnitude.
	// Observed errors stay well below 1.
	DfltDivergenceThreshold = 2.0

	// DfltExpectedSampleCount is the number of prediction points of one
	// trial (128 * 20).
	DfltExpectedSampleCount = 2560
)

// Grouping selects the top-level key of error measurements.
type Grouping int

const (
	// ByCategory keys groups by the input category (e.g. "drums").
	ByCategory Grouping = iota
	// ByAlgorithm keys groups by the algorithm that produced the file.
	ByAlgorithm
)

func (g Grouping) String() string {
	if g == ByAlgorithm {
		return "algorithm"
	}
	return "category"
}

// Config is the explicit configuration of one aggregation run.
type Config struct {
	// DivergenceThreshold excludes fields with |value| above it. 0 disables
	// the check.
	DivergenceThreshold float64 `json:"divergenceThreshold" mapstructure:"divergenceThreshold"`

	// ExpectedSampleCount is the exact number of usable samples required
	// for per-sample ae series. 0 disables the check.
	ExpectedSampleCount int `json:"expectedSampleCount" mapstructure:"expectedSampleCount"`

	// TrainSizes keeps only the listed train sizes. Empty keeps all.
	TrainSizes []int `json:"trainSizes" mapstructure:"trainSizes"`

	// MinLag and MaxLag bound the accepted lags (inclusive). 0 is unbounded.
	MinLag int `json:"minLag" mapstructure:"minLag"`
	MaxLag int `json:"maxLag" mapstructure:"maxLag"`

	// Streaming keeps only online moments per group instead of samples.
	Streaming bool `json:"streaming" mapstructure:"streaming"`

	// Workers bounds the number of files parsed in parallel.
	Workers int `json:"workers" mapstructure:"workers"`

	Grouping Grouping `json:"grouping" mapstructure:"-"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DivergenceThreshold: DfltDivergenceThreshold,
		ExpectedSampleCount: DfltExpectedSampleCount,
		Workers:             runtime.NumCPU(),
		Grouping:            ByCategory,
	}
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c Config) Validate() error {
	var errs []error
	if c.DivergenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("divergenceThreshold must not be negative, got %g", c.DivergenceThreshold))
	}
	if c.ExpectedSampleCount < 0 {
		errs = append(errs, fmt.Errorf("expectedSampleCount must not be negative, got %d", c.ExpectedSampleCount))
	}
	if c.MinLag < 0 || c.MaxLag < 0 {
		errs = append(errs, fmt.Errorf("lag bounds must not be negative, got %d..%d", c.MinLag, c.MaxLag))
	}
	if c.MaxLag > 0 && c.MinLag > c.MaxLag {
		errs = append(errs, fmt.Errorf("minLag %d is above maxLag %d", c.MinLag, c.MaxLag))
	}
	for _, ts := range c.TrainSizes {
		if ts <= 0 {
			errs = append(errs, fmt.Errorf("trainSizes must be positive, got %d", ts))
		}
	}
	return errors.Join(errs...)
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

// accepts applies the train size and lag filters. Baseline records have
// no such dimensions and always pass.
func (c Config) accepts(rec record.RawRecord) bool {
	if rec.Baseline != record.NoBaseline {
		return true
	}
	if len(c.TrainSizes) > 0 && !slices.Contains(c.TrainSizes, rec.TrainSize) {
		return false
	}
	if c.MinLag > 0 && rec.Lag < c.MinLag {
		return false
	}
	if c.MaxLag > 0 && rec.Lag > c.MaxLag {
		return false
	}
	return true
}

// fieldPolicy is how one measurement is validated and reduced.
type fieldPolicy struct {
	known       bool
	raw         bool               // kept on the record for plotting, never grouped
	divergence  bool               // apply DivergenceThreshold
	strictCount bool               // apply ExpectedSampleCount
	meanOfCount bool               // reduce the series to sum/ExpectedSampleCount
	millis      bool               // ns -> ms before reduction
	output      record.Measurement // group the values under this name
}

func policyFor(m record.Measurement) fieldPolicy {
	switch m {
	case record.MAE, record.RMSE, record.FitError:
		return fieldPolicy{known: true, divergence: true, output: m}
	case record.AbsError:
		return fieldPolicy{known: true, divergence: true, strictCount: true, meanOfCount: true, output: record.MAE}
	case record.Prediction:
		return fieldPolicy{known: true, raw: true}
	case record.FitTime, record.PredictTime:
		return fieldPolicy{known: true, millis: true, output: m}
	}
	return fieldPolicy{}
}

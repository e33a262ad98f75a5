// internal/record/record.go
// Package: record

// Package record holds the typed form of one parsed benchmark observation
// and the validation applied to it before aggregation.
package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a schema violation: a missing or non-positive
	// train_size/lag, a wrong type or an unknown baseline.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDivergentValue marks a field whose value lies outside the
	// admissible range. The field is excluded, the record is kept.
	ErrDivergentValue = errors.New("divergent value")

	// ErrInconsistentSampleCount marks a field whose usable sample count
	// does not equal the expected fixed count.
	ErrInconsistentSampleCount = errors.New("inconsistent sample count")
)

// Measurement names one numeric field of a record.
type Measurement string

const (
	MAE         Measurement = "mae"
	RMSE        Measurement = "rmse"
	FitTime     Measurement = "fit_time"     // nanoseconds
	PredictTime Measurement = "predict_time" // nanoseconds
	AbsError    Measurement = "ae"           // per-sample absolute errors
	Prediction  Measurement = "prediction"
	FitError    Measurement = "error" // cumulative fit error
)

// IsTiming reports whether m holds durations in nanoseconds.
func (m Measurement) IsTiming() bool {
	return m == FitTime || m == PredictTime
}

// Baseline identifies a reference predictor measured next to the AR model.
type Baseline string

const (
	NoBaseline Baseline = ""
	// SilenceSubstitution ("b0") predicts zeros.
	SilenceSubstitution Baseline = "b0"
	// PatternReplication ("b1") repeats the previous packet.
	PatternReplication Baseline = "b1"
)

// Valid reports whether b is one of the known baselines (or none).
func (b Baseline) Valid() bool {
	return b == NoBaseline || b == SilenceSubstitution || b == PatternReplication
}

// Label returns a human readable name used in charts and tables.
func (b Baseline) Label() string {
	switch b {
	case SilenceSubstitution:
		return "silence substitution"
	case PatternReplication:
		return "pattern replication"
	}
	return "ar"
}

// Series is an ordered sequence of samples where a nil entry is an
// explicit missing marker (a JSON null in the source data).
type Series []*float64

// Present returns the non-missing values, in order.
func (s Series) Present() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Missing returns the number of missing entries.
func (s Series) Missing() int {
	n := 0
	for _, v := range s {
		if v == nil {
			n++
		}
	}
	return n
}

// Values builds a Series without missing entries.
func Values(vals ...float64) Series {
	out := make(Series, len(vals))
	for i := range vals {
		v := vals[i]
		out[i] = &v
	}
	return out
}

// RawRecord is one observation of one benchmark trial. Baseline records
// carry no train size or lag.
type RawRecord struct {
	Source    string                 `json:"source"`    // file the record was read from
	Algorithm string                 `json:"algorithm"` // e.g. "compensated-burg-basic"
	Category  string                 `json:"category"`  // e.g. "drums"
	TrainSize int                    `json:"train_size"`
	Lag       int                    `json:"lag"`
	Baseline  Baseline               `json:"baseline,omitempty"`
	Fields    map[Measurement]Series `json:"fields"`
}

// Validate checks the record-level schema rules. Field-level rules
// (divergence, strict counts) are applied by the engine because they
// depend on its configuration.
func (r RawRecord) Validate() error {
	if !r.Baseline.Valid() {
		return fmt.Errorf("%w: unknown baseline %q", ErrMalformedRecord, r.Baseline)
	}
	if r.Baseline == NoBaseline {
		if r.TrainSize <= 0 {
			return fmt.Errorf("%w: train_size must be positive, got %d", ErrMalformedRecord, r.TrainSize)
		}
		if r.Lag <= 0 {
			return fmt.Errorf("%w: lag must be positive, got %d", ErrMalformedRecord, r.Lag)
		}
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("%w: no measurement fields", ErrMalformedRecord)
	}
	return nil
}

// Field returns the series of m and whether the record has it.
func (r RawRecord) Field(m Measurement) (Series, bool) {
	s, ok := r.Fields[m]
	return s, ok
}

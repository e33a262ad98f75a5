// internal/stats/stats.go
// Package: stats

// Package stats reduces a group of samples to its summary statistic.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Z95 is the two-sided 95% quantile of the standard normal distribution.
const Z95 = 1.96

// NanosPerMilli converts nanosecond durations to milliseconds.
const NanosPerMilli = 1e6

// ErrEmptyGroup is returned when summarizing a group with no samples.
var ErrEmptyGroup = errors.New("empty group")

// Statistic is the finalized reduction of one group.
type Statistic struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Stdev    float64 `json:"stdev"`
	CI95     float64 `json:"confidence_interval_95"`
	Low      float64 `json:"low"`  // mean - CI95, not clamped
	High     float64 `json:"high"` // mean + CI95, not clamped

	// Median is only known when the samples were retained; a streamed
	// group with more than one sample leaves it 0.
	Median float64 `json:"median,omitempty"`
}

// Summarize computes mean, unbiased sample variance, stdev and the normal
// approximation 95% confidence interval of samples. A single sample has
// no dispersion estimate: variance, stdev and interval are 0 and
// low == high == mean.
func Summarize(samples []float64) (Statistic, error) {
	switch len(samples) {
	case 0:
		return Statistic{}, ErrEmptyGroup
	case 1:
		return single(samples[0]), nil
	}
	// stat.Variance is the corrected two-pass form, which cancels the
	// rounding of its own naive mean, so only the reported mean needs
	// the compensated sum.
	s := fromMoments(len(samples), Mean(samples), stat.Variance(samples, nil))
	s.Median, _ = Quantile(samples, 0.5)
	return s, nil
}

// Mean returns the arithmetic mean of samples, correctly rounded in all
// but pathological cases: the sum is accumulated with Neumaier
// compensation and the division residual is recovered with an FMA.
// A naive sum reports 0.20000000000000004 for {0.1, 0.2, 0.3}.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	var sum, comp float64
	for _, v := range samples {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}
		sum = t
	}
	n := float64(len(samples))
	q := sum / n
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return q
	}
	return q + (math.FMA(-q, n, sum)+comp)/n
}

func single(v float64) Statistic {
	return Statistic{Count: 1, Mean: v, Low: v, High: v, Median: v}
}

func fromMoments(n int, mean, variance float64) Statistic {
	if variance < 0 {
		// rounding on near-constant samples
		variance = 0
	}
	stdev := math.Sqrt(variance)
	ci := Z95 * stdev / math.Sqrt(float64(n))
	return Statistic{
		Count:    n,
		Mean:     mean,
		Variance: variance,
		Stdev:    stdev,
		CI95:     ci,
		Low:      mean - ci,
		High:     mean + ci,
	}
}

// NanosToMillis converts duration samples from ns to ms. Conversion must
// happen before Summarize so the variance is expressed in ms².
func NanosToMillis(ns []float64) []float64 {
	out := make([]float64, len(ns))
	for i, v := range ns {
		out[i] = v / NanosPerMilli
	}
	return out
}

// Clamp returns s with Low and High limited to [lo, hi]. It is meant for
// display of bounded quantities; the engine never clamps.
func Clamp(s Statistic, lo, hi float64) Statistic {
	s.Low = math.Max(lo, math.Min(hi, s.Low))
	s.High = math.Max(lo, math.Min(hi, s.High))
	return s
}

// Scale returns s expressed in units of 1/f: location and spread are
// divided by f, the variance by f².
func Scale(s Statistic, f float64) Statistic {
	s.Mean /= f
	s.Median /= f
	s.Variance /= f * f
	s.Stdev /= math.Abs(f)
	s.CI95 /= math.Abs(f)
	s.Low = s.Mean - s.CI95
	s.High = s.Mean + s.CI95
	return s
}

// internal/stats/moments.go
// Package: stats
package stats

// Moments is an online (Welford) accumulator of count, mean and the sum of
// squared deviations. It keeps memory bounded when groups are large and
// can be merged across shards.
type Moments struct {
	n    int
	mean float64
	m2   float64
}

// Push adds one sample.
func (m *Moments) Push(v float64) {
	m.n++
	d := v - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (v - m.mean)
}

// Merge folds other into m (Chan et al. pairwise update).
func (m *Moments) Merge(other Moments) {
	if other.n == 0 {
		return
	}
	if m.n == 0 {
		*m = other
		return
	}
	n := m.n + other.n
	d := other.mean - m.mean
	m.mean += d * float64(other.n) / float64(n)
	m.m2 += other.m2 + d*d*float64(m.n)*float64(other.n)/float64(n)
	m.n = n
}

// Count returns the number of pushed samples.
func (m Moments) Count() int {
	return m.n
}

// Statistic reduces the accumulated moments with the same degenerate-case
// policy as Summarize.
func (m Moments) Statistic() (Statistic, error) {
	switch m.n {
	case 0:
		return Statistic{}, ErrEmptyGroup
	case 1:
		return single(m.mean), nil
	}
	return fromMoments(m.n, m.mean, m.m2/float64(m.n-1)), nil
}

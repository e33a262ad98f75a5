// internal/group/sort.go
// Package: group
package group

import "slices"

// SortedTrainSizes returns the train sizes of category in ascending order.
func (t *Table) SortedTrainSizes(category string) []int {
	out := t.TrainSizes(category)
	slices.Sort(out)
	return out
}

// SortedLags returns the lags of (category, trainSize) in ascending order.
func (t *Table) SortedLags(category string, trainSize int) []int {
	out := t.Lags(category, trainSize)
	slices.Sort(out)
	return out
}

// CompareKeys orders keys by category, train size and lag.
func CompareKeys(a, b Key) int {
	switch {
	case a.Category < b.Category:
		return -1
	case a.Category > b.Category:
		return 1
	case a.TrainSize != b.TrainSize:
		return a.TrainSize - b.TrainSize
	default:
		return a.Lag - b.Lag
	}
}

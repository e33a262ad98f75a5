// internal/engine/report.go
// Package: engine
package engine

import "github.com/rs/zerolog/log"

// Report counts what a run skipped or excluded, for human review.
type Report struct {
	Files             int `json:"files"`
	Records           int `json:"records"`
	Malformed         int `json:"malformed"`
	Divergent         int `json:"divergent"`
	InconsistentCount int `json:"inconsistent_count"`
	Filtered          int `json:"filtered"`
	EmptyGroups       int `json:"empty_groups"`
	IOFailures        int `json:"io_failures"`
}

// Merge adds the counters of other.
func (r *Report) Merge(other Report) {
	r.Files += other.Files
	r.Records += other.Records
	r.Malformed += other.Malformed
	r.Divergent += other.Divergent
	r.InconsistentCount += other.InconsistentCount
	r.Filtered += other.Filtered
	r.EmptyGroups += other.EmptyGroups
	r.IOFailures += other.IOFailures
}

// Excluded returns the number of skipped records, excluded fields,
// omitted groups and failed files.
func (r Report) Excluded() int {
	return r.Malformed + r.Divergent + r.InconsistentCount + r.EmptyGroups + r.IOFailures
}

// HasIssues reports whether anything was skipped or excluded. Filtered
// records are a configured choice, not an issue.
func (r Report) HasIssues() bool {
	return r.Excluded() > 0
}

// Log writes the report as one structured log line.
func (r Report) Log() {
	ev := log.Info()
	if r.HasIssues() {
		ev = log.Warn()
	}
	ev.
		Int("files", r.Files).
		Int("records", r.Records).
		Int("malformed", r.Malformed).
		Int("divergent", r.Divergent).
		Int("inconsistentCount", r.InconsistentCount).
		Int("filtered", r.Filtered).
		Int("emptyGroups", r.EmptyGroups).
		Int("ioFailures", r.IOFailures).
		Msg("aggregation finished")
}

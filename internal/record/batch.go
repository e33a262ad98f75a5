// internal/record/batch.go
// Package: record
package record

// Batch is the outcome of decoding one result file: the records that
// parsed and one error per rejected row.
type Batch struct {
	Source   string
	Records  []RawRecord
	Rejected []error
}

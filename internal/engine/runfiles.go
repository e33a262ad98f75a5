// internal/engine/runfiles.go
// Package: engine
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/record"
)

// ErrIOFailure marks a result file that could not be read or decoded.
var ErrIOFailure = errors.New("io failure")

// DecodeFunc reads one result file.
type DecodeFunc func(path string) (record.Batch, error)

// Progress is notified once per processed file, from worker goroutines.
// It may be nil.
type Progress func(path string)

// RunFiles decodes paths in parallel, one accumulator per file, merges the
// accumulators in path order and only then summarizes. An unreadable file
// is counted as an IO failure and skipped. The returned error is non-nil
// only if ctx is cancelled.
func RunFiles(ctx context.Context, conf Config, paths []string, decode DecodeFunc, progress Progress) (*aggregate.Table, Report, error) {
	accs := make([]*Accumulator, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conf.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acc := NewAccumulator(conf)
			batch, err := decode(path)
			if err != nil {
				acc.report.IOFailures++
				log.Warn().
					Str("source", path).
					Err(fmt.Errorf("%w: %w", ErrIOFailure, err)).
					Msg("skipping unreadable result file")
			} else {
				if batch.Source == "" {
					batch.Source = path
				}
				acc.AddBatch(batch)
			}
			accs[i] = acc
			if progress != nil {
				progress(path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}

	merged, err := Merge(conf, accs...)
	if err != nil {
		return nil, Report{}, err
	}
	table, report := Finalize(merged)
	return table, report, nil
}

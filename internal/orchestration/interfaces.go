package orchestration

import (
	"context"

	"github.com/darionhq/resultgrab/internal/result"
)

// RecordFetcher runs one complete fetch cycle (attempts, retries, waits) for
// a single key. It never returns an error; every outcome is encoded in the
// Record's status. fetch.Retryer is the production implementation.
type RecordFetcher interface {
	Run(ctx context.Context, key result.Key) result.Record
}

// RecordFetcherFunc adapts a function to the RecordFetcher interface.
type RecordFetcherFunc func(ctx context.Context, key result.Key) result.Record

// Run calls the underlying function.
func (f RecordFetcherFunc) Run(ctx context.Context, key result.Key) result.Record {
	return f(ctx, key)
}

// ProgressReporter receives one callback per completed key. This interface
// decouples the orchestration layer from the presentation layer: spinners,
// progress bars, and dashboards all sit behind it.
//
// Report is invoked under the collector's lock, exactly once per completion,
// with completed strictly increasing and the final call satisfying
// completed == total. Implementations must not block for long.
type ProgressReporter interface {
	Report(completed, total int, lastPIN string)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(completed, total int, lastPIN string)

// Report calls the underlying function.
func (f ProgressReporterFunc) Report(completed, total int, lastPIN string) {
	f(completed, total, lastPIN)
}

// NullProgressReporter discards progress. Useful for quiet mode and tests.
type NullProgressReporter struct{}

// Report does nothing.
func (NullProgressReporter) Report(int, int, string) {}

package orchestration

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/result"
)

// Worker-limit bounds. The upper bound is politeness toward the external
// source, not a machine limit.
const (
	MinWorkers = 1
	MaxWorkers = 10
)

// RunAll fetches every key under a bounded worker pool and returns exactly
// one Record per submitted key, duplicates included.
//
// Guarantees:
//   - at most workerLimit fetches are in flight at any moment;
//   - the output has len(keys) records, indexed by submission position, so
//     no result is lost or duplicated by concurrent completion;
//   - reporter sees monotonic progress with a single final
//     completed == total callback;
//   - all workers have drained before RunAll returns.
//
// Completion order is not submission order; consumers needing a stable
// presentation order should re-sort (see SortRecords).
//
// The only fatal condition is a failure to obtain a worker slot, which
// aborts the run with a ScheduleError naming every key that never got an
// attempt. In-flight fetches are still drained before returning.
func RunAll(ctx context.Context, fetcher RecordFetcher, keys []result.Key, workerLimit int, reporter ProgressReporter) ([]result.Record, error) {
	if workerLimit < MinWorkers || workerLimit > MaxWorkers {
		return nil, apperrors.ValidationError{
			Field:   "workerLimit",
			Message: "must be between 1 and 10",
		}
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}

	records := make([]result.Record, len(keys))
	sem := semaphore.NewWeighted(int64(workerLimit))
	tracker := newTracker(len(keys), reporter)

	// Workers never return errors (RecordFetcher cannot fail), so the group
	// exists purely to drain them before returning.
	g := new(errgroup.Group)

	for i, k := range keys {
		if err := sem.Acquire(ctx, 1); err != nil {
			unattempted := make([]string, 0, len(keys)-i)
			for _, left := range keys[i:] {
				unattempted = append(unattempted, left.PIN)
			}
			_ = g.Wait()
			return nil, apperrors.ScheduleError{Unattempted: unattempted, Cause: err}
		}

		idx, key := i, k
		g.Go(func() error {
			defer sem.Release(1)
			records[idx] = fetcher.Run(ctx, key)
			tracker.complete(key.PIN)
			return nil
		})
	}

	_ = g.Wait()
	return records, nil
}

// SortRecords orders records by PIN ascending for stable presentation.
// Sorting is stable so duplicate keys keep their relative submission order.
func SortRecords(records []result.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PIN < records[j].PIN
	})
}

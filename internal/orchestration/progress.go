package orchestration

import "sync"

// tracker serializes completion accounting so progress callbacks are
// strictly monotonic even when workers finish simultaneously. The reporter
// is invoked under the lock: one insert per completed worker, no reads
// during active writes.
type tracker struct {
	mu        sync.Mutex
	completed int
	total     int
	reporter  ProgressReporter
}

func newTracker(total int, reporter ProgressReporter) *tracker {
	return &tracker{total: total, reporter: reporter}
}

func (t *tracker) complete(pin string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	t.reporter.Report(t.completed, t.total, pin)
}

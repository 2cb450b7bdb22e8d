package fetch

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/logging"
	"github.com/darionhq/resultgrab/internal/metrics"
	"github.com/darionhq/resultgrab/internal/result"
)

// RetryPolicy is the explicit attempt budget for one key. Only mechanism
// failures consume retries; a reachable source with no matching entry is
// terminal (NotFound) unless RetryNotFound is set.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, first try included.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// WaitTimeout bounds a single attempt's wait for the result container.
	WaitTimeout time.Duration
	// RetryNotFound also spends retries on NotFound outcomes. Off by
	// default: an absent record usually stays absent, but flaky sources
	// can benefit from treating it as transient.
	RetryNotFound bool
}

// DefaultPolicy mirrors the source's observed tolerances: three attempts,
// two seconds between them, fifteen seconds per wait.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		WaitTimeout: 15 * time.Second,
	}
}

// Retryer drives a Fetcher under a RetryPolicy and classifies outcomes.
// Its Run method never returns an error; every failure mode is encoded in
// the returned Record's status.
type Retryer struct {
	Fetcher Fetcher
	Policy  RetryPolicy
	Logger  logging.Logger
	// Sink, when non-nil, receives the markup of resolved records for
	// auxiliary document generation. Sink failures are logged only.
	Sink DocumentSink
	// Metrics may be nil.
	Metrics *metrics.Fetch

	tracer trace.Tracer
}

// NewRetryer wires a retryer with the given collaborators. logger must not
// be nil; sink and m may be.
func NewRetryer(fetcher Fetcher, policy RetryPolicy, logger logging.Logger, sink DocumentSink, m *metrics.Fetch) *Retryer {
	return &Retryer{
		Fetcher: fetcher,
		Policy:  policy,
		Logger:  logger,
		Sink:    sink,
		Metrics: m,
		tracer:  otel.Tracer("resultgrab/fetch"),
	}
}

// Run fetches one key and returns its Record. All failure is data: mechanism
// errors become StatusError after the attempt budget, missing entries become
// StatusNotFound, and partial parses surface as absent fields on a Resolved
// record.
func (r *Retryer) Run(ctx context.Context, key result.Key) result.Record {
	start := time.Now()
	rec := r.run(ctx, key)
	r.Metrics.ObserveRecord(string(rec.Status), time.Since(start))
	return rec
}

func (r *Retryer) run(ctx context.Context, key result.Key) result.Record {
	var lastErr error

	for attempt := 1; attempt <= r.Policy.MaxAttempts; attempt++ {
		page, err := r.attempt(ctx, key, attempt)

		switch {
		case err == nil && page.Found:
			rec := buildRecord(key.PIN, page)
			r.renderDocument(page, key.PIN)
			r.Logger.Debug("record resolved",
				logging.String("pin", key.PIN),
				logging.Int("attempt", attempt))
			return rec

		case err == nil:
			// Reachable source, no matching entry within the wait bound.
			if r.Policy.RetryNotFound && attempt < r.Policy.MaxAttempts {
				lastErr = errNoEntry
				break
			}
			r.Logger.Info("no result for key",
				logging.String("pin", key.PIN),
				logging.Int("attempt", attempt))
			return result.NewNotFound(key.PIN)

		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// The attempt's own wait bound elapsed while the source stayed
			// reachable: the data never appeared. Terminal, not retried.
			r.Logger.Info("wait for result container timed out",
				logging.String("pin", key.PIN),
				logging.Int("attempt", attempt),
				logging.Err(apperrors.TimeoutError{Operation: "result container wait", Limit: r.Policy.WaitTimeout}))
			return result.NewNotFound(key.PIN)

		case ctx.Err() != nil:
			// Run-level cancellation; further attempts cannot succeed.
			r.Logger.Warn("fetch canceled",
				logging.String("pin", key.PIN),
				logging.Err(ctx.Err()))
			return result.NewError(key.PIN)

		default:
			lastErr = err
			r.Logger.Warn("fetch attempt failed",
				logging.String("pin", key.PIN),
				logging.Int("attempt", attempt),
				logging.Err(err))
		}

		if attempt < r.Policy.MaxAttempts && !sleep(ctx, r.Policy.Delay) {
			return result.NewError(key.PIN)
		}
	}

	mechErr := apperrors.MechanismError{PIN: key.PIN, Attempts: r.Policy.MaxAttempts, Cause: lastErr}
	r.Logger.Error("fetch attempts exhausted", logging.Err(mechErr))
	return result.NewError(key.PIN)
}

// errNoEntry stands in for "reachable, no data" when NotFound retries are on.
var errNoEntry = errors.New("no matching entry")

// attempt performs one bounded retrieval attempt under a tracing span.
func (r *Retryer) attempt(ctx context.Context, key result.Key, attempt int) (*RawPage, error) {
	r.Metrics.ObserveAttempt()

	attemptCtx := ctx
	if r.Policy.WaitTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.Policy.WaitTimeout)
		defer cancel()
	}

	attemptCtx, span := r.tracer.Start(attemptCtx, "fetch.attempt",
		trace.WithAttributes(
			attribute.String("pin", key.PIN),
			attribute.String("term", string(key.Term)),
			attribute.Int("attempt", attempt),
		))
	defer span.End()

	page, err := r.Fetcher.Fetch(attemptCtx, key.PIN, key.Term)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("found", page.Found))
	return page, nil
}

// renderDocument hands the result markup to the document sink, if any.
func (r *Retryer) renderDocument(page *RawPage, pin string) {
	if r.Sink == nil || page.Markup == "" {
		return
	}
	if err := r.Sink.Render(page.Markup, pin); err != nil {
		r.Logger.Warn("document generation failed",
			logging.String("pin", pin),
			logging.Err(err))
	}
}

// sleep waits for d or until ctx is canceled; it reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

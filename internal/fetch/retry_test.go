package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/logging"
	"github.com/darionhq/resultgrab/internal/result"
)

// recordingLogger captures every emitted field for assertions.
type recordingLogger struct {
	fields []logging.Field
}

func (l *recordingLogger) capture(fields []logging.Field) {
	l.fields = append(l.fields, fields...)
}

func (l *recordingLogger) Debug(_ string, fields ...logging.Field) { l.capture(fields) }

func (l *recordingLogger) Info(_ string, fields ...logging.Field) { l.capture(fields) }

func (l *recordingLogger) Warn(_ string, fields ...logging.Field) { l.capture(fields) }

func (l *recordingLogger) Error(_ string, fields ...logging.Field) { l.capture(fields) }

func (l *recordingLogger) With(...logging.Field) logging.Logger { return l }

// loggedErrorAs reports whether any captured error field matches target.
func (l *recordingLogger) loggedErrorAs(target any) bool {
	for _, f := range l.fields {
		if err, ok := f.Value.(error); ok && errors.As(err, target) {
			return true
		}
	}
	return false
}

// StubFetcher is a hand-written Fetcher stub for exercising the retry loop
// without a real source.
type StubFetcher struct {
	FetchFunc func(ctx context.Context, pin string, term result.Term) (*RawPage, error)
	Calls     atomic.Int32
}

func (s *StubFetcher) Fetch(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
	s.Calls.Add(1)
	return s.FetchFunc(ctx, pin, term)
}

// StubSink records rendered documents and optionally fails.
type StubSink struct {
	Err      error
	Rendered []string
}

func (s *StubSink) Render(markup, pin string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Rendered = append(s.Rendered, pin)
	return nil
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond, WaitTimeout: time.Second}
}

func foundPage() *RawPage {
	return &RawPage{
		Found: true,
		Fields: map[string]string{
			FieldName:   "A STUDENT",
			FieldBranch: "CM",
			FieldGPA:    "8.5",
			FieldResult: "First Class",
		},
		SubjectRows: [][]string{
			{"Math", "55", "18", "73", "8", "4", "A", "P"},
			{"short", "row"}, // malformed, must be skipped not fatal
		},
		Markup: "<div>result</div>",
	}
}

func key(pin string) result.Key { return result.Key{PIN: pin, Term: result.TermFirstYear} }

func TestRetryer_FailTwiceThenSucceed(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{}
	stub.FetchFunc = func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		if stub.Calls.Load() < 3 {
			return nil, errors.New("mechanism failure")
		}
		return foundPage(), nil
	}

	r := NewRetryer(stub, testPolicy(), logging.Nop(), nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusResolved {
		t.Fatalf("Status = %q, want Resolved after third attempt", rec.Status)
	}
	if got := stub.Calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if rec.GPA == nil || *rec.GPA != 8.5 {
		t.Errorf("GPA = %v, want 8.5", rec.GPA)
	}
	if len(rec.Subjects) != 1 || rec.Subjects[0].SubjectResult != "P" {
		t.Errorf("Subjects = %+v, want the single well-formed row", rec.Subjects)
	}
}

func TestRetryer_AlwaysFailingYieldsErrorAfterThreeAttempts(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		return nil, errors.New("cannot reach source")
	}}

	r := NewRetryer(stub, testPolicy(), logging.Nop(), nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusError {
		t.Fatalf("Status = %q, want Error", rec.Status)
	}
	if got := stub.Calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want exactly 3", got)
	}
	if rec.GPA != nil || rec.StudentName != nil || len(rec.Subjects) != 0 {
		t.Error("error record must carry no optional data")
	}
}

func TestRetryer_MissingEntryIsTerminalNotFound(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		return &RawPage{Found: false}, nil
	}}

	r := NewRetryer(stub, testPolicy(), logging.Nop(), nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusNotFound {
		t.Fatalf("Status = %q, want NotFound", rec.Status)
	}
	if got := stub.Calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (NotFound is not retried)", got)
	}
}

func TestRetryer_RetryNotFoundPolicy(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{}
	stub.FetchFunc = func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		if stub.Calls.Load() < 2 {
			return &RawPage{Found: false}, nil
		}
		return foundPage(), nil
	}

	policy := testPolicy()
	policy.RetryNotFound = true
	r := NewRetryer(stub, policy, logging.Nop(), nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusResolved {
		t.Fatalf("Status = %q, want Resolved once the flaky source settles", rec.Status)
	}
	if got := stub.Calls.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestRetryer_WaitTimeoutIsNotFound(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	policy := testPolicy()
	policy.WaitTimeout = 10 * time.Millisecond
	log := &recordingLogger{}
	r := NewRetryer(stub, policy, log, nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusNotFound {
		t.Fatalf("Status = %q, want NotFound for an elapsed wait bound", rec.Status)
	}
	if got := stub.Calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (elapsed waits are terminal)", got)
	}

	var terr apperrors.TimeoutError
	if !log.loggedErrorAs(&terr) {
		t.Fatal("elapsed wait must be logged as a TimeoutError")
	}
	if terr.Limit != policy.WaitTimeout {
		t.Errorf("logged Limit = %s, want %s", terr.Limit, policy.WaitTimeout)
	}
}

func TestRetryer_RunCancellationYieldsError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		cancel()
		return nil, context.Canceled
	}}

	r := NewRetryer(stub, testPolicy(), logging.Nop(), nil, nil)
	rec := r.Run(ctx, key("P1"))

	if rec.Status != result.StatusError {
		t.Fatalf("Status = %q, want Error on run cancellation", rec.Status)
	}
	if got := stub.Calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries after cancellation)", got)
	}
}

func TestRetryer_DocumentSink(t *testing.T) {
	t.Parallel()

	t.Run("markup reaches the sink on resolved records", func(t *testing.T) {
		t.Parallel()
		stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
			return foundPage(), nil
		}}
		sink := &StubSink{}
		r := NewRetryer(stub, testPolicy(), logging.Nop(), sink, nil)
		r.Run(context.Background(), key("P1"))

		if len(sink.Rendered) != 1 || sink.Rendered[0] != "P1" {
			t.Errorf("sink rendered %v, want [P1]", sink.Rendered)
		}
	})

	t.Run("sink failure never changes the record status", func(t *testing.T) {
		t.Parallel()
		stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
			return foundPage(), nil
		}}
		sink := &StubSink{Err: errors.New("renderer unavailable")}
		r := NewRetryer(stub, testPolicy(), logging.Nop(), sink, nil)
		rec := r.Run(context.Background(), key("P1"))

		if rec.Status != result.StatusResolved {
			t.Errorf("Status = %q, want Resolved despite sink failure", rec.Status)
		}
	})
}

func TestRetryer_PartialParseDefaultsToAbsent(t *testing.T) {
	t.Parallel()

	stub := &StubFetcher{FetchFunc: func(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
		return &RawPage{
			Found:  true,
			Fields: map[string]string{FieldResult: "Pass"}, // name, branch, GPA missing
		}, nil
	}}

	r := NewRetryer(stub, testPolicy(), logging.Nop(), nil, nil)
	rec := r.Run(context.Background(), key("P1"))

	if rec.Status != result.StatusResolved {
		t.Fatalf("Status = %q, want Resolved: partial parse never aborts", rec.Status)
	}
	if rec.StudentName != nil || rec.Branch != nil || rec.GPA != nil {
		t.Error("missing fields must surface as absent values")
	}
	if rec.ResultText == nil || *rec.ResultText != "Pass" {
		t.Errorf("ResultText = %v, want Pass", rec.ResultText)
	}
}

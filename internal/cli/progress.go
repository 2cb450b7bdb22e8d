package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/darionhq/resultgrab/internal/orchestration"
)

const (
	// ProgressRefreshRate is the spinner animation interval. 200ms keeps
	// terminal churn low on large batches.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the character width of the textual bar.
	ProgressBarWidth = 30
)

// Spinner abstracts the terminal spinner so progress reporting can be
// tested without animating a real terminal.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// SpinnerReporter implements orchestration.ProgressReporter on top of a
// terminal spinner, showing a bar, counts, and the last finished PIN.
type SpinnerReporter struct {
	spinner Spinner
	started bool
}

var _ orchestration.ProgressReporter = (*SpinnerReporter)(nil)

// NewSpinnerReporter creates a reporter with the default spinner.
func NewSpinnerReporter(options ...spinner.Option) *SpinnerReporter {
	return &SpinnerReporter{spinner: newSpinner(options...)}
}

// Report updates the spinner suffix. The first call starts the
// animation; the terminal call stops it. The orchestrator serializes
// calls, so no locking is needed here.
func (r *SpinnerReporter) Report(completed, total int, lastPIN string) {
	if !r.started {
		r.spinner.Start()
		r.started = true
	}
	r.spinner.UpdateSuffix(fmt.Sprintf(" %s %d/%d %s",
		progressBar(fraction(completed, total), ProgressBarWidth),
		completed, total, lastPIN))
	if completed >= total {
		r.spinner.Stop()
		r.started = false
	}
}

func fraction(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// progressBar renders a normalized progress value as a fixed-width bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

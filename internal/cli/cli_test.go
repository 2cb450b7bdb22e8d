package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/briandowns/spinner"

	"github.com/darionhq/resultgrab/internal/analysis"
)

// fakeSpinner records lifecycle calls and suffix updates.
type fakeSpinner struct {
	starts, stops int
	suffixes      []string
}

func (f *fakeSpinner) Start() { f.starts++ }

func (f *fakeSpinner) Stop() { f.stops++ }

func (f *fakeSpinner) UpdateSuffix(suffix string) { f.suffixes = append(f.suffixes, suffix) }

func TestSpinnerReporterLifecycle(t *testing.T) {
	fake := &fakeSpinner{}
	orig := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return fake }
	defer func() { newSpinner = orig }()

	r := NewSpinnerReporter()
	r.Report(1, 3, "20CM01")
	r.Report(2, 3, "20CM02")
	r.Report(3, 3, "20CM03")

	if fake.starts != 1 {
		t.Errorf("starts = %d, want 1", fake.starts)
	}
	if fake.stops != 1 {
		t.Errorf("stops = %d, want 1 (stop on final report)", fake.stops)
	}
	if len(fake.suffixes) != 3 {
		t.Fatalf("suffix updates = %d, want 3", len(fake.suffixes))
	}
	if !strings.Contains(fake.suffixes[0], "1/3") || !strings.Contains(fake.suffixes[0], "20CM01") {
		t.Errorf("first suffix = %q, want counts and PIN", fake.suffixes[0])
	}
	if !strings.Contains(fake.suffixes[2], "3/3") {
		t.Errorf("final suffix = %q, want 3/3", fake.suffixes[2])
	}
}

func TestProgressBarBounds(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		want     string
	}{
		{"empty", 0.0, "░░░░"},
		{"half", 0.5, "██░░"},
		{"full", 1.0, "████"},
		{"clamped high", 1.7, "████"},
		{"clamped low", -0.3, "░░░░"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressBar(tt.progress, 4); got != tt.want {
				t.Errorf("progressBar(%v, 4) = %q, want %q", tt.progress, got, tt.want)
			}
		})
	}
}

func TestPresentSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf).PresentSummary(analysis.SummaryStats{Total: 3, Passed: 2, Failed: 1})

	out := buf.String()
	for _, want := range []string{"Summary", "Students: 3", "2", "1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPresentByGroupOrderAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)
	p.PresentByGroup([]analysis.GroupRow{
		{Branch: "EC", Pass: 2, Fail: 0, Total: 2, PassRate: 100},
		{Branch: "CM", Pass: 1, Fail: 1, Total: 2, PassRate: 50},
	})

	out := buf.String()
	if !strings.Contains(out, "EC") || !strings.Contains(out, "CM") {
		t.Fatalf("output missing branches:\n%s", out)
	}
	if strings.Index(out, "EC") > strings.Index(out, "CM") {
		t.Error("rows must print in given order (best branch first)")
	}
	if !strings.Contains(out, "100.00") || !strings.Contains(out, "50.00") {
		t.Errorf("output missing rates:\n%s", out)
	}

	buf.Reset()
	p.PresentByGroup(nil)
	if !strings.Contains(buf.String(), "no branch data") {
		t.Errorf("empty input = %q, want placeholder", buf.String())
	}
}

func TestPresentTopN(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)
	p.PresentTopN([]analysis.Ranked{
		{PIN: "20EC03", Name: "C", Branch: "EC", GPA: 9.1},
		{PIN: "20CM01", Name: "A", Branch: "CM", GPA: 8.5},
	})

	out := buf.String()
	if !strings.Contains(out, "20EC03") || !strings.Contains(out, "9.10") {
		t.Errorf("output missing leader:\n%s", out)
	}
	if !strings.Contains(out, "8.50") {
		t.Errorf("output missing runner-up GPA:\n%s", out)
	}

	buf.Reset()
	p.PresentTopN(nil)
	if !strings.Contains(buf.String(), "no graded results") {
		t.Errorf("empty input = %q, want placeholder", buf.String())
	}
}

func TestPresentSubjects(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf).PresentSubjects([]analysis.SubjectRow{
		{Subject: "Math", Pass: 3, Fail: 1, Total: 4, PassRate: 75},
	})

	out := buf.String()
	if !strings.Contains(out, "Math") || !strings.Contains(out, "75.00") {
		t.Errorf("output missing subject row:\n%s", out)
	}
}

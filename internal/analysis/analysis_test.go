package analysis

import (
	"reflect"
	"testing"

	"github.com/darionhq/resultgrab/internal/result"
)

func resolved(pin, branch, resultText, gpa string, subjects ...result.SubjectLine) result.Record {
	return result.NewResolved(pin, "STUDENT "+pin, branch, gpa, resultText, subjects)
}

func subject(name, res string) result.SubjectLine {
	return result.SubjectLine{Name: name, SubjectResult: res}
}

// fixtureRecords mirror the canonical three-student scenario: A and C pass,
// B fails, branches CM and EC.
func fixtureRecords() []result.Record {
	return []result.Record{
		resolved("A", "CM", "First Class", "8.5"),
		resolved("B", "CM", "Fail", ""),
		resolved("C", "EC", "Distinction", "9.1"),
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields zero stats", func(t *testing.T) {
		t.Parallel()
		got := Summary(nil, result.DefaultClassifier)
		if got != (SummaryStats{}) {
			t.Errorf("Summary(nil) = %+v, want zeroes", got)
		}
	})

	t.Run("canonical fixture", func(t *testing.T) {
		t.Parallel()
		got := Summary(fixtureRecords(), result.DefaultClassifier)
		want := SummaryStats{Total: 3, Passed: 2, Failed: 1}
		if got != want {
			t.Errorf("Summary = %+v, want %+v", got, want)
		}
	})

	t.Run("duplicate PINs collapse to one row, first wins", func(t *testing.T) {
		t.Parallel()
		records := append(fixtureRecords(),
			resolved("A", "CM", "Fail", "2.0"), // later duplicate must not flip A to failed
		)
		got := Summary(records, result.DefaultClassifier)
		want := SummaryStats{Total: 3, Passed: 2, Failed: 1}
		if got != want {
			t.Errorf("Summary = %+v, want %+v", got, want)
		}
	})

	t.Run("unresolved records count as failed", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{resolved("A", "CM", "Pass", "8.0"), result.NewNotFound("B"), result.NewError("C")}
		got := Summary(records, result.DefaultClassifier)
		want := SummaryStats{Total: 3, Passed: 1, Failed: 2}
		if got != want {
			t.Errorf("Summary = %+v, want %+v", got, want)
		}
	})
}

func TestByGroup(t *testing.T) {
	t.Parallel()

	t.Run("canonical fixture sorted by pass rate descending", func(t *testing.T) {
		t.Parallel()
		rows, ok := ByGroup(fixtureRecords(), result.DefaultClassifier)
		if !ok {
			t.Fatal("expected data")
		}
		want := []GroupRow{
			{Branch: "EC", Pass: 1, Fail: 0, Total: 1, PassRate: 100.0},
			{Branch: "CM", Pass: 1, Fail: 1, Total: 2, PassRate: 50.0},
		}
		if !reflect.DeepEqual(rows, want) {
			t.Errorf("ByGroup = %+v, want %+v", rows, want)
		}
	})

	t.Run("records without a branch are excluded", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "CM", "Pass", "8.0"),
			resolved("B", "", "Pass", "7.0"), // no branch: not a group named "missing"
			result.NewNotFound("C"),
		}
		rows, ok := ByGroup(records, result.DefaultClassifier)
		if !ok {
			t.Fatal("expected data")
		}
		if len(rows) != 1 || rows[0].Branch != "CM" || rows[0].Total != 1 {
			t.Errorf("ByGroup = %+v, want single CM row of one student", rows)
		}
	})

	t.Run("no qualifying rows signals no data", func(t *testing.T) {
		t.Parallel()
		if _, ok := ByGroup([]result.Record{result.NewNotFound("A")}, result.DefaultClassifier); ok {
			t.Error("expected ok=false when no record carries a branch")
		}
		if _, ok := ByGroup(nil, result.DefaultClassifier); ok {
			t.Error("expected ok=false for empty input")
		}
	})

	t.Run("tied pass rates order by branch for determinism", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "ME", "Pass", "7.0"),
			resolved("B", "CE", "Pass", "7.0"),
		}
		rows, _ := ByGroup(records, result.DefaultClassifier)
		if rows[0].Branch != "CE" || rows[1].Branch != "ME" {
			t.Errorf("tie order = %q,%q, want CE,ME", rows[0].Branch, rows[1].Branch)
		}
	})
}

func TestTopN(t *testing.T) {
	t.Parallel()

	t.Run("canonical fixture", func(t *testing.T) {
		t.Parallel()
		got := TopN(fixtureRecords(), 2) // B has no GPA and is excluded
		if len(got) != 2 {
			t.Fatalf("TopN returned %d entries, want 2", len(got))
		}
		if got[0].PIN != "C" || got[0].GPA != 9.1 {
			t.Errorf("rank 1 = %+v, want C at 9.1", got[0])
		}
		if got[1].PIN != "A" || got[1].GPA != 8.5 {
			t.Errorf("rank 2 = %+v, want A at 8.5", got[1])
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("X", "CM", "Pass", "8.0"),
			resolved("Y", "CM", "Pass", "8.0"),
		}
		got := TopN(records, 5)
		if got[0].PIN != "X" || got[1].PIN != "Y" {
			t.Errorf("tie order = %q,%q, want X,Y (stable)", got[0].PIN, got[1].PIN)
		}
	})

	t.Run("duplicate PINs ranked once", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "CM", "Pass", "8.0"),
			resolved("A", "CM", "Pass", "9.9"), // duplicate of A, ignored
		}
		got := TopN(records, 5)
		if len(got) != 1 || got[0].GPA != 8.0 {
			t.Errorf("TopN = %+v, want single A at 8.0", got)
		}
	})

	t.Run("empty and non-positive n", func(t *testing.T) {
		t.Parallel()
		if got := TopN(nil, 10); len(got) != 0 {
			t.Errorf("TopN(nil) = %+v, want empty", got)
		}
		if got := TopN(fixtureRecords(), 0); got != nil {
			t.Errorf("TopN(n=0) = %+v, want nil", got)
		}
	})
}

func TestSubjectAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("per-subject tallies across students without dedup", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "CM", "Pass", "8.0", subject("Math", "P"), subject("Physics", "P")),
			resolved("B", "CM", "Fail", "4.0", subject("Math", "P"), subject("Physics", "F")),
			resolved("C", "EC", "Pass", "7.0", subject("Math", "P")),
			resolved("D", "EC", "Fail", "3.0", subject("Math", "F")),
		}
		rows, ok := SubjectAnalysis(records)
		if !ok {
			t.Fatal("expected data")
		}
		want := []SubjectRow{
			{Subject: "Physics", Pass: 1, Fail: 1, Total: 2, PassRate: 50.0},
			{Subject: "Math", Pass: 3, Fail: 1, Total: 4, PassRate: 75.0},
		}
		if !reflect.DeepEqual(rows, want) {
			t.Errorf("SubjectAnalysis = %+v, want %+v (weakest first)", rows, want)
		}
	})

	t.Run("duplicate PIN contributes every subject line", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "CM", "Pass", "8.0", subject("Math", "P")),
			resolved("A", "CM", "Pass", "8.0", subject("Math", "F")), // duplicate key, still counted
		}
		rows, _ := SubjectAnalysis(records)
		if rows[0].Total != 2 {
			t.Errorf("Math total = %d, want 2 (no dedup on the flattened view)", rows[0].Total)
		}
	})

	t.Run("rows missing name or result are excluded", func(t *testing.T) {
		t.Parallel()
		records := []result.Record{
			resolved("A", "CM", "Pass", "8.0",
				subject("", "P"),       // nameless
				subject("Math", ""),    // resultless
				subject("Chem", "P")),
		}
		rows, ok := SubjectAnalysis(records)
		if !ok || len(rows) != 1 || rows[0].Subject != "Chem" {
			t.Errorf("SubjectAnalysis = %+v, want single Chem row", rows)
		}
	})

	t.Run("no subject data signals no data", func(t *testing.T) {
		t.Parallel()
		if _, ok := SubjectAnalysis([]result.Record{result.NewNotFound("A")}); ok {
			t.Error("expected ok=false without subject lines")
		}
	})
}

// TestAggregationDoesNotMutateInput guards the purity contract.
func TestAggregationDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := fixtureRecords()
	snapshot := make([]result.Record, len(records))
	copy(snapshot, records)

	Summary(records, result.DefaultClassifier)
	ByGroup(records, result.DefaultClassifier)
	TopN(records, 2)
	SubjectAnalysis(records)

	if !reflect.DeepEqual(records, snapshot) {
		t.Error("aggregation mutated its input")
	}
}

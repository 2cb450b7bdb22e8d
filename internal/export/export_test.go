package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/darionhq/resultgrab/internal/result"
)

func sampleRows() []result.Row {
	records := []result.Record{
		result.NewResolved("P1", "A STUDENT", "CM", "8.5", "First Class", []result.SubjectLine{
			{Name: "Math", External: "55", Internal: "18", Total: "73", GradePoints: "8", CreditsEarned: "4", Grade: "A", SubjectResult: "P"},
		}),
		result.NewNotFound("P2"),
	}
	return result.Flatten(records)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	parsed, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read csv: %v", err)
	}
	if len(parsed) != 3 { // header + 2 rows
		t.Fatalf("got %d csv lines, want 3", len(parsed))
	}
	if parsed[0][0] != "pin_number" || parsed[0][6] != "subject_name" {
		t.Errorf("header = %v", parsed[0])
	}
	if parsed[1][0] != "P1" || parsed[1][6] != "Math" || parsed[1][13] != "P" {
		t.Errorf("subject row = %v", parsed[1])
	}
	if parsed[2][0] != "P2" || parsed[2][1] != string(result.StatusNotFound) {
		t.Errorf("bare row = %v", parsed[2])
	}
}

func TestWriteCSV_EmptyTableStillHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	parsed, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read csv: %v", err)
	}
	if len(parsed) != 1 || len(parsed[0]) != len(result.Columns()) {
		t.Errorf("empty export should carry the header row only, got %v", parsed)
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.xlsx")
	if err := WriteXLSX(path, sampleRows()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen spreadsheet: %v", err)
	}
	defer f.Close()

	readCell := func(cell string) string {
		t.Helper()
		v, err := f.GetCellValue(SheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}

	if got := readCell("A1"); got != "pin_number" {
		t.Errorf("A1 = %q, want header", got)
	}
	if got := readCell("A2"); got != "P1" {
		t.Errorf("A2 = %q, want P1", got)
	}
	if got := readCell("G2"); got != "Math" {
		t.Errorf("G2 = %q, want Math", got)
	}
	if got := readCell("B3"); got != string(result.StatusNotFound) {
		t.Errorf("B3 = %q, want NOT_FOUND", got)
	}
}

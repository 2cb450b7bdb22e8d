package result

import "strconv"

// Row is the flattened export view: one row per subject per student, or a
// single bare row for records without subject lines. Its column set is
// exactly the union of Record's top-level fields (minus Subjects) and
// SubjectLine's fields, and it is the single artifact handed to spreadsheet
// exporters and archive packaging.
type Row struct {
	PIN           string `csv:"pin_number"`
	Status        string `csv:"status"`
	StudentName   string `csv:"student_name"`
	Branch        string `csv:"branch"`
	GPA           string `csv:"gpa"`
	ResultText    string `csv:"result"`
	SubjectName   string `csv:"subject_name"`
	External      string `csv:"external"`
	Internal      string `csv:"internal"`
	Total         string `csv:"total"`
	GradePoints   string `csv:"grade_points"`
	CreditsEarned string `csv:"credits_earned"`
	Grade         string `csv:"grade"`
	SubjectResult string `csv:"subject_result"`
}

// Columns returns the Row header in declaration order.
func Columns() []string {
	return []string{
		"pin_number", "status", "student_name", "branch", "gpa", "result",
		"subject_name", "external", "internal", "total", "grade_points",
		"credits_earned", "grade", "subject_result",
	}
}

// Values returns the row's cells in Columns() order.
func (r Row) Values() []string {
	return []string{
		r.PIN, r.Status, r.StudentName, r.Branch, r.GPA, r.ResultText,
		r.SubjectName, r.External, r.Internal, r.Total, r.GradePoints,
		r.CreditsEarned, r.Grade, r.SubjectResult,
	}
}

// Flatten expands records into the per-subject row view. Records never get
// merged or dropped: a record with N subject lines yields N rows sharing the
// student-level columns; a record with none yields one bare row.
func Flatten(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		base := Row{
			PIN:         rec.PIN,
			Status:      string(rec.Status),
			StudentName: deref(rec.StudentName),
			Branch:      deref(rec.Branch),
			GPA:         formatGPA(rec.GPA),
			ResultText:  deref(rec.ResultText),
		}
		if len(rec.Subjects) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, sub := range rec.Subjects {
			row := base
			row.SubjectName = sub.Name
			row.External = sub.External
			row.Internal = sub.Internal
			row.Total = sub.Total
			row.GradePoints = sub.GradePoints
			row.CreditsEarned = sub.CreditsEarned
			row.Grade = sub.Grade
			row.SubjectResult = sub.SubjectResult
			rows = append(rows, row)
		}
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatGPA(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

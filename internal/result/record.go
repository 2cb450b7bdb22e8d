// Package result defines the value types flowing through the pipeline: the
// lookup Key, the per-attempt Record, its flattened Row view, and the
// pass/fail classification predicate.
package result

import (
	"strconv"
	"strings"
)

// Term identifies an academic period on the remote source.
type Term string

// Terms accepted by the source's period selector.
const (
	TermFirstYear Term = "1YEAR"
	TermSem2      Term = "2SEM"
	TermSem3      Term = "3SEM"
	TermSem4      Term = "4SEM"
	TermSem5      Term = "5SEM"
	TermSem6      Term = "6SEM"
	TermSem7      Term = "7SEM"
)

// AllTerms lists the valid terms in selector order.
func AllTerms() []Term {
	return []Term{TermFirstYear, TermSem2, TermSem3, TermSem4, TermSem5, TermSem6, TermSem7}
}

// ParseTerm validates a term string against the enumerated set.
func ParseTerm(s string) (Term, bool) {
	for _, t := range AllTerms() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Key addresses one lookup: a roll/PIN number plus the academic term.
// Keys are transient; they exist only for the duration of a run. Duplicate
// keys are legal and each produces its own Record.
type Key struct {
	PIN  string
	Term Term
}

// Status classifies the outcome of one fetch attempt cycle.
type Status string

const (
	// StatusResolved means the source returned structured data.
	StatusResolved Status = "RESOLVED"
	// StatusNotFound means the source was reachable but no matching entry
	// appeared within the wait bound.
	StatusNotFound Status = "NOT_FOUND"
	// StatusError means the fetch mechanism itself failed after the full
	// attempt budget.
	StatusError Status = "ERROR"
)

// SubjectLine is one row of the per-subject marks table. All numeric-looking
// fields stay as text at this layer; subject-level pass/fail is determined
// solely by SubjectResult == "P".
type SubjectLine struct {
	Name          string
	External      string
	Internal      string
	Total         string
	GradePoints   string
	CreditsEarned string
	Grade         string
	SubjectResult string
}

// Record is the immutable output of one fetch attempt cycle. Exactly one
// Record exists per submitted key; a retry produces a replacement attempt
// inside the fetch layer, never an edit to an existing Record.
//
// Optional fields are pointers: absent source text maps to nil, never to a
// zero value. Status != StatusResolved implies Subjects is empty and GPA nil.
type Record struct {
	PIN         string
	Status      Status
	StudentName *string
	Branch      *string
	GPA         *float64
	ResultText  *string
	Subjects    []SubjectLine
}

// NewResolved builds a Resolved record from extracted field text. Empty
// strings are treated as absent. GPA text that does not parse as a number
// maps to nil.
func NewResolved(pin, name, branch, gpaText, resultText string, subjects []SubjectLine) Record {
	return Record{
		PIN:         pin,
		Status:      StatusResolved,
		StudentName: optionalString(name),
		Branch:      optionalString(branch),
		GPA:         parseGPA(gpaText),
		ResultText:  optionalString(resultText),
		Subjects:    subjects,
	}
}

// NewNotFound builds a record for a key the source had no data for.
func NewNotFound(pin string) Record {
	return Record{PIN: pin, Status: StatusNotFound}
}

// NewError builds a record for a key whose fetch mechanism failed outright.
func NewError(pin string) Record {
	return Record{PIN: pin, Status: StatusError}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseGPA(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

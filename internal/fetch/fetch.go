// Package fetch retrieves one result record per key from the remote source.
// The retrieval mechanism sits behind the Fetcher interface; Retryer wraps it
// with the attempt/retry/timeout policy and outcome classification.
package fetch

import (
	"context"

	"github.com/darionhq/resultgrab/internal/result"
)

// Logical field labels the source uses on the student summary table.
const (
	FieldName   = "Name"
	FieldBranch = "Branch"
	FieldGPA    = "GPA"
	FieldResult = "Result"
)

// RawPage is the product of one retrieval attempt that reached the source.
// Field lookup is by logical label; Markup is a raw snapshot of the result
// region for document rendering.
type RawPage struct {
	// Found reports whether the result container appeared within the wait
	// bound. False models a reachable source with no matching entry.
	Found bool
	// Fields maps logical field labels (FieldName, ...) to extracted text.
	// Missing fields are simply absent.
	Fields map[string]string
	// SubjectRows holds the raw cell text of the subject marks table, one
	// slice per table row, header excluded.
	SubjectRows [][]string
	// Markup is the raw markup of the result region.
	Markup string
}

// Fetcher performs a single retrieval attempt against the remote source.
// A non-nil error means the mechanism itself failed (could not reach or
// drive the source); "reachable but no data" is RawPage.Found == false.
type Fetcher interface {
	Fetch(ctx context.Context, pin string, term result.Term) (*RawPage, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, pin string, term result.Term) (*RawPage, error)

// Fetch calls the underlying function.
func (f FetcherFunc) Fetch(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
	return f(ctx, pin, term)
}

// DocumentSink receives the markup of a resolved record for auxiliary
// document generation. Sink failures are logged by the caller and never
// change a record's status.
type DocumentSink interface {
	Render(markup, pin string) error
}

// buildRecord parses a found page into a Record. Any single missing field
// defaults to absent; it never aborts the attempt.
func buildRecord(pin string, page *RawPage) result.Record {
	subjects := make([]result.SubjectLine, 0, len(page.SubjectRows))
	for _, cells := range page.SubjectRows {
		if len(cells) < 8 {
			continue
		}
		subjects = append(subjects, result.SubjectLine{
			Name:          cells[0],
			External:      cells[1],
			Internal:      cells[2],
			Total:         cells[3],
			GradePoints:   cells[4],
			CreditsEarned: cells[5],
			Grade:         cells[6],
			SubjectResult: cells[7],
		})
	}
	return result.NewResolved(
		pin,
		page.Fields[FieldName],
		page.Fields[FieldBranch],
		page.Fields[FieldGPA],
		page.Fields[FieldResult],
		subjects,
	)
}

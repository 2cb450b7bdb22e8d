package result

import "strings"

// PassClassifier decides whether a raw result label counts as a pass. The
// source's outcome vocabulary is not closed ("Pass", "Distinction", "First
// Class", ...), so classification is an injectable predicate rather than a
// fixed enumeration.
type PassClassifier func(resultText string) bool

// passMarkers are the substrings the source is known to use on passing
// outcome labels.
var passMarkers = []string{"pass", "distinction", "first"}

// DefaultClassifier matches the observed vocabulary case-insensitively.
func DefaultClassifier(resultText string) bool {
	lower := strings.ToLower(resultText)
	for _, marker := range passMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Passed reports whether a record's outcome label classifies as a pass.
// Records without a result label never classify as passed.
func (r Record) Passed(classify PassClassifier) bool {
	if r.ResultText == nil {
		return false
	}
	return classify(*r.ResultText)
}

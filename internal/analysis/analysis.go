// Package analysis computes aggregate statistics over a completed record
// set. Every function is pure: no input mutation, no side effects, and an
// explicit empty result instead of an error when data is thin, so reporting
// layers can always render an informative empty state.
//
// Functions counting students collapse the input to one row per PIN first;
// SubjectAnalysis alone works on the flattened per-subject view, where the
// same PIN legitimately appears once per subject.
package analysis

import (
	"math"
	"sort"

	"github.com/darionhq/resultgrab/internal/result"
)

// SummaryStats are the headline pass/fail counts over distinct students.
type SummaryStats struct {
	Total  int
	Passed int
	Failed int
}

// GroupRow is one branch's aggregate performance.
type GroupRow struct {
	Branch   string
	Pass     int
	Fail     int
	Total    int
	PassRate float64
}

// Ranked is one entry of the top-N ranking.
type Ranked struct {
	PIN    string
	Name   string
	Branch string
	GPA    float64
}

// SubjectRow is one subject's aggregate performance over the flattened view.
type SubjectRow struct {
	Subject  string
	Pass     int
	Fail     int
	Total    int
	PassRate float64
}

// Summary collapses the record set to one row per PIN (first occurrence
// wins, deterministic for a fixed input order) and counts passes with the
// given classifier.
func Summary(records []result.Record, classify result.PassClassifier) SummaryStats {
	var stats SummaryStats
	for _, rec := range dedupByPIN(records) {
		stats.Total++
		if rec.Passed(classify) {
			stats.Passed++
		}
	}
	stats.Failed = stats.Total - stats.Passed
	return stats
}

// ByGroup tallies pass/fail per branch over distinct students. Records
// without a branch value are excluded entirely rather than grouped under a
// placeholder. Rows come back sorted by pass rate descending, branch
// ascending on ties for deterministic output. ok is false when no record
// qualifies.
func ByGroup(records []result.Record, classify result.PassClassifier) (rows []GroupRow, ok bool) {
	type tally struct{ pass, fail int }
	tallies := make(map[string]*tally)

	for _, rec := range dedupByPIN(records) {
		if rec.Branch == nil {
			continue
		}
		t := tallies[*rec.Branch]
		if t == nil {
			t = &tally{}
			tallies[*rec.Branch] = t
		}
		if rec.Passed(classify) {
			t.pass++
		} else {
			t.fail++
		}
	}

	if len(tallies) == 0 {
		return nil, false
	}

	rows = make([]GroupRow, 0, len(tallies))
	for branch, t := range tallies {
		total := t.pass + t.fail
		rows = append(rows, GroupRow{
			Branch:   branch,
			Pass:     t.pass,
			Fail:     t.fail,
			Total:    total,
			PassRate: rate(t.pass, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PassRate != rows[j].PassRate {
			return rows[i].PassRate > rows[j].PassRate
		}
		return rows[i].Branch < rows[j].Branch
	})
	return rows, true
}

// TopN ranks distinct students by GPA descending and returns up to n
// entries. Records without a GPA are dropped before deduplication, so a
// student keeps their first row that actually carries a value. The sort is
// stable: ties keep input order.
func TopN(records []result.Record, n int) []Ranked {
	if n <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	ranked := make([]Ranked, 0, len(records))
	for _, rec := range records {
		if rec.GPA == nil {
			continue
		}
		if _, dup := seen[rec.PIN]; dup {
			continue
		}
		seen[rec.PIN] = struct{}{}
		ranked = append(ranked, Ranked{
			PIN:    rec.PIN,
			Name:   deref(rec.StudentName),
			Branch: deref(rec.Branch),
			GPA:    *rec.GPA,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GPA > ranked[j].GPA
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// SubjectAnalysis tallies pass/fail per subject over the flattened
// per-subject view; the same PIN contributes once per subject line, never
// deduplicated. Rows missing a subject name or subject result are excluded.
// Pass means SubjectResult == "P". Output is sorted by pass rate ascending,
// surfacing the weakest subjects first, subject name ascending on ties.
// ok is false when no subject line qualifies.
func SubjectAnalysis(records []result.Record) (rows []SubjectRow, ok bool) {
	type tally struct{ pass, fail int }
	tallies := make(map[string]*tally)

	for _, row := range result.Flatten(records) {
		if row.SubjectName == "" || row.SubjectResult == "" {
			continue
		}
		t := tallies[row.SubjectName]
		if t == nil {
			t = &tally{}
			tallies[row.SubjectName] = t
		}
		if row.SubjectResult == "P" {
			t.pass++
		} else {
			t.fail++
		}
	}

	if len(tallies) == 0 {
		return nil, false
	}

	rows = make([]SubjectRow, 0, len(tallies))
	for subject, t := range tallies {
		total := t.pass + t.fail
		rows = append(rows, SubjectRow{
			Subject:  subject,
			Pass:     t.pass,
			Fail:     t.fail,
			Total:    total,
			PassRate: rate(t.pass, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PassRate != rows[j].PassRate {
			return rows[i].PassRate < rows[j].PassRate
		}
		return rows[i].Subject < rows[j].Subject
	})
	return rows, true
}

// dedupByPIN keeps the first record of each PIN, preserving input order.
func dedupByPIN(records []result.Record) []result.Record {
	seen := make(map[string]struct{}, len(records))
	unique := make([]result.Record, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.PIN]; dup {
			continue
		}
		seen[rec.PIN] = struct{}{}
		unique = append(unique, rec)
	}
	return unique
}

// rate is the pass percentage rounded to two decimals.
func rate(pass, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(pass)/float64(total)*10000) / 100
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

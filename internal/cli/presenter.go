// Package cli renders run progress and analysis output for the terminal.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/darionhq/resultgrab/internal/analysis"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	headerStyle = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("245"))
	pinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Presenter writes the aggregate views as aligned terminal tables.
type Presenter struct {
	out io.Writer
}

// NewPresenter creates a Presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// PresentSummary prints the overall pass/fail summary line.
func (p *Presenter) PresentSummary(s analysis.SummaryStats) {
	fmt.Fprintf(p.out, "\n%s\n", titleStyle.Render("--- Summary ---"))
	fmt.Fprintf(p.out, "Students: %d   %s: %d   %s: %d\n",
		s.Total,
		passStyle.Render("Passed"), s.Passed,
		failStyle.Render("Failed"), s.Failed)
}

// PresentByGroup prints per-branch pass rates, best branch first.
func (p *Presenter) PresentByGroup(rows []analysis.GroupRow) {
	fmt.Fprintf(p.out, "\n%s\n", titleStyle.Render("--- Branch Performance ---"))
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "no branch data")
		return
	}
	p.table(
		[]string{"Branch", "Pass", "Fail", "Total", "Pass %"},
		len(rows),
		func(i int) []string {
			r := rows[i]
			return []string{r.Branch, strconv.Itoa(r.Pass), strconv.Itoa(r.Fail),
				strconv.Itoa(r.Total), formatRate(r.PassRate)}
		})
}

// PresentTopN prints the GPA ranking.
func (p *Presenter) PresentTopN(rows []analysis.Ranked) {
	fmt.Fprintf(p.out, "\n%s\n", titleStyle.Render("--- Top Performers ---"))
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "no graded results")
		return
	}
	p.table(
		[]string{"#", "PIN", "Name", "Branch", "GPA"},
		len(rows),
		func(i int) []string {
			r := rows[i]
			return []string{strconv.Itoa(i + 1), pinStyle.Render(r.PIN), r.Name, r.Branch,
				strconv.FormatFloat(r.GPA, 'f', 2, 64)}
		})
}

// PresentSubjects prints per-subject pass rates, hardest subject first.
func (p *Presenter) PresentSubjects(rows []analysis.SubjectRow) {
	fmt.Fprintf(p.out, "\n%s\n", titleStyle.Render("--- Subject Difficulty ---"))
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "no subject data")
		return
	}
	p.table(
		[]string{"Subject", "Pass", "Fail", "Total", "Pass %"},
		len(rows),
		func(i int) []string {
			r := rows[i]
			return []string{r.Subject, strconv.Itoa(r.Pass), strconv.Itoa(r.Fail),
				strconv.Itoa(r.Total), formatRate(r.PassRate)}
		})
}

// table prints header and rows with column widths sized to content.
// Widths are computed on the raw cells before styling so ANSI escapes
// never skew the padding.
func (p *Presenter) table(header []string, n int, row func(i int) []string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	cells := make([][]string, n)
	for i := 0; i < n; i++ {
		cells[i] = row(i)
		for j, c := range cells[i] {
			if w := lipgloss.Width(c); w > widths[j] {
				widths[j] = w
			}
		}
	}

	for j, h := range header {
		fmt.Fprintf(p.out, "%s%s   ", headerStyle.Render(h), pad(widths[j]-lipgloss.Width(h)))
	}
	fmt.Fprintln(p.out)
	for i := 0; i < n; i++ {
		for j, c := range cells[i] {
			fmt.Fprintf(p.out, "%s%s   ", c, pad(widths[j]-lipgloss.Width(c)))
		}
		fmt.Fprintln(p.out)
	}
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%*s", n, "")
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64)
}

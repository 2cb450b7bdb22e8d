package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/darionhq/resultgrab/internal/result"
)

// Locators map the logical fields of the result form to source-specific
// identifiers. They are configuration: the source occasionally renames its
// element ids and the tool must follow without a rebuild.
type Locators struct {
	// InputField is the form field name receiving the PIN.
	InputField string
	// TermField is the form field name of the term selector.
	TermField string
	// SubmitField is the name/value of the submit control.
	SubmitField string
	// ResultContainerID is the element id of the result region.
	ResultContainerID string
}

// DefaultLocators match the source as last observed.
func DefaultLocators() Locators {
	return Locators{
		InputField:        "hno",
		TermField:         "grade1",
		SubmitField:       "Get Result",
		ResultContainerID: "printDiv",
	}
}

// HTTPFetcher retrieves a result page by submitting the lookup form over
// HTTP and parsing the response markup. It implements Fetcher.
type HTTPFetcher struct {
	URL      string
	Locators Locators
	Client   *http.Client
}

// NewHTTPFetcher creates a fetcher for the given endpoint. The per-attempt
// deadline comes from the caller's context, so the client itself carries no
// timeout.
func NewHTTPFetcher(endpoint string, locators Locators) *HTTPFetcher {
	return &HTTPFetcher{
		URL:      endpoint,
		Locators: locators,
		Client:   &http.Client{},
	}
}

// Fetch submits the lookup form for one PIN and parses the result region.
// A response without the configured result container is a found=false page,
// not an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, pin string, term result.Term) (*RawPage, error) {
	form := url.Values{}
	form.Set(f.Locators.InputField, pin)
	form.Set(f.Locators.TermField, string(term))
	form.Set("submit", f.Locators.SubmitField)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit lookup form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response markup: %w", err)
	}

	container := findByID(doc, f.Locators.ResultContainerID)
	if container == nil {
		return &RawPage{Found: false}, nil
	}

	return &RawPage{
		Found:       true,
		Fields:      extractLabeledFields(container),
		SubjectRows: extractSubjectRows(container),
		Markup:      renderNode(container),
	}, nil
}

// findByID walks the tree for the element with the given id attribute.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attrValue(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// extractLabeledFields reads the summary table: each known label appears in
// a th cell, its value in the following td.
func extractLabeledFields(container *html.Node) map[string]string {
	labels := []string{FieldName, FieldBranch, FieldGPA, FieldResult}
	fields := make(map[string]string, len(labels))

	walk(container, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "th" {
			return
		}
		header := nodeText(n)
		for _, label := range labels {
			if !strings.Contains(header, label) {
				continue
			}
			if td := nextElement(n, "td"); td != nil {
				if _, seen := fields[label]; !seen {
					fields[label] = strings.TrimSpace(nodeText(td))
				}
			}
		}
	})
	return fields
}

// extractSubjectRows reads the second table in the container, skipping its
// header row, mirroring the source's marks-table layout.
func extractSubjectRows(container *html.Node) [][]string {
	var tables []*html.Node
	walk(container, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, n)
		}
	})
	if len(tables) < 2 {
		return nil
	}

	var rows [][]string
	first := true
	walk(tables[1], func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		if first {
			first = false
			return
		}
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "td" {
				cells = append(cells, strings.TrimSpace(nodeText(c)))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

// nextElement returns the next sibling element with the given tag, skipping
// whitespace text nodes.
func nextElement(n *html.Node, tag string) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == tag {
			return s
		}
	}
	return nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Package render generates per-student PDF documents from result markup by
// driving the wkhtmltopdf binary. The renderer is an optional collaborator:
// when the binary is missing, document generation is simply disabled.
package render

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const binaryName = "wkhtmltopdf"

// htmlShell wraps the raw result markup in a minimal printable document.
const htmlShell = `<html><head><meta charset="UTF-8"><style>
body { font-family: 'Helvetica', 'Arial', sans-serif; }
table, th, td { border: 1px solid #ddd; border-collapse: collapse; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
</style></head><body>%s</body></html>`

// WKHTMLToPDF renders result markup to per-key PDF files in Dir. It
// implements fetch.DocumentSink.
type WKHTMLToPDF struct {
	// Dir is the directory receiving the generated files.
	Dir string

	// lookPath and run are swappable for tests; zero values use the real
	// binary.
	lookPath func(string) (string, error)
	run      func(htmlContent, pdfPath string) error
}

// New creates a renderer writing into dir.
func New(dir string) *WKHTMLToPDF {
	return &WKHTMLToPDF{Dir: dir}
}

// Available reports whether the rendering binary is on PATH.
func (r *WKHTMLToPDF) Available() bool {
	look := r.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(binaryName)
	return err == nil
}

// Render writes the markup as a styled PDF named <pin>_result.pdf.
func (r *WKHTMLToPDF) Render(markup, pin string) error {
	pdfPath := filepath.Join(r.Dir, DocumentName(pin))
	styled := fmt.Sprintf(htmlShell, markup)

	if r.run != nil {
		return r.run(styled, pdfPath)
	}

	// wkhtmltopdf reads the document from stdin when the input is "-".
	cmd := exec.Command(binaryName, "-", pdfPath)
	cmd.Stdin = strings.NewReader(styled)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", binaryName, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// DocumentName is the artifact file name for one key.
func DocumentName(pin string) string {
	return pin + "_result.pdf"
}

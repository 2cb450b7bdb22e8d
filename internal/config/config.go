// Package config parses and validates the application configuration.
// Priority order: CLI flags > RESULTGRAB_* environment variables > defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/result"
)

// EnvPrefix is prepended to every environment variable override key.
const EnvPrefix = "RESULTGRAB_"

// Defaults mirror the source as last observed.
const (
	DefaultURL         = "https://sbtet.ap.gov.in/APSBTET/gradeWiseResults.do"
	DefaultInputID     = "hno"
	DefaultTermID      = "grade1"
	DefaultSubmitName  = "Get Result"
	DefaultResultID    = "printDiv"
	DefaultWorkers     = 5
	DefaultTopN        = 10
	DefaultOutDir      = "downloads"
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultWaitTimeout = 15 * time.Second
)

// AppConfig holds every runtime option of the batch tool.
type AppConfig struct {
	// Source addressing.
	URL        string
	InputID    string
	TermID     string
	SubmitName string
	ResultID   string

	// Batch shape.
	Term       string
	Workers    int
	PINList    string
	PINFile    string
	RangeBase  string
	RangeStart int
	RangeCount int

	// Retry policy.
	MaxAttempts   int
	RetryDelay    time.Duration
	WaitTimeout   time.Duration
	RetryNotFound bool

	// Outputs.
	OutDir       string
	GeneratePDF  bool
	GenerateXLSX bool
	MakeZip      bool
	TopN         int

	// Upload.
	DriveFolder     string
	CredentialsFile string

	// Observability and UX.
	MetricsAddr string
	TUI         bool
	Quiet       bool
	Verbose     bool
}

// ParseConfig parses command-line flags, applies environment overrides for
// flags not explicitly set, and validates the result.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	var cfg AppConfig
	fs.StringVar(&cfg.URL, "url", DefaultURL, "result lookup endpoint")
	fs.StringVar(&cfg.InputID, "input-id", DefaultInputID, "form field name for the PIN input")
	fs.StringVar(&cfg.TermID, "term-id", DefaultTermID, "form field name for the term selector")
	fs.StringVar(&cfg.SubmitName, "submit-name", DefaultSubmitName, "name of the submit control")
	fs.StringVar(&cfg.ResultID, "result-id", DefaultResultID, "element id of the result container")

	fs.StringVar(&cfg.Term, "term", string(result.TermFirstYear), "academic term (1YEAR, 2SEM..7SEM)")
	fs.IntVar(&cfg.Workers, "workers", DefaultWorkers, "parallel fetch workers (1-10)")
	fs.StringVar(&cfg.PINList, "pins", "", "comma-separated PIN list")
	fs.StringVar(&cfg.PINFile, "pins-file", "", "file with one PIN per line")
	fs.StringVar(&cfg.RangeBase, "range-base", "", "base PIN for range expansion (e.g. 23315-CM-)")
	fs.IntVar(&cfg.RangeStart, "range-start", 1, "first suffix of the PIN range")
	fs.IntVar(&cfg.RangeCount, "range-count", 0, "number of PINs in the range")

	fs.IntVar(&cfg.MaxAttempts, "max-attempts", DefaultMaxAttempts, "attempt budget per key")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", DefaultRetryDelay, "fixed wait between attempts")
	fs.DurationVar(&cfg.WaitTimeout, "wait-timeout", DefaultWaitTimeout, "wait bound per attempt")
	fs.BoolVar(&cfg.RetryNotFound, "retry-not-found", false, "also retry keys the source reports no data for")

	fs.StringVar(&cfg.OutDir, "out", DefaultOutDir, "directory for run artifacts")
	fs.BoolVar(&cfg.GeneratePDF, "pdf", false, "generate an individual PDF per resolved key")
	fs.BoolVar(&cfg.GenerateXLSX, "xlsx", true, "write the spreadsheet report")
	fs.BoolVar(&cfg.MakeZip, "zip", false, "bundle run artifacts into a zip archive")
	fs.IntVar(&cfg.TopN, "top", DefaultTopN, "size of the GPA ranking table")

	fs.StringVar(&cfg.DriveFolder, "drive-folder", "", "Google Drive folder id to upload artifacts to")
	fs.StringVar(&cfg.CredentialsFile, "credentials", "", "service account credentials file for uploads")

	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	fs.BoolVar(&cfg.TUI, "tui", false, "show the live dashboard")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress progress and info output")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that flag parsing cannot express.
func (c AppConfig) Validate() error {
	if _, ok := result.ParseTerm(c.Term); !ok {
		valid := make([]string, 0, len(result.AllTerms()))
		for _, t := range result.AllTerms() {
			valid = append(valid, string(t))
		}
		return apperrors.NewConfigError("invalid term %q (valid: %s)", c.Term, strings.Join(valid, ", "))
	}
	if c.Workers < 1 || c.Workers > 10 {
		return apperrors.NewConfigError("workers must be between 1 and 10, got %d", c.Workers)
	}
	if c.MaxAttempts < 1 {
		return apperrors.NewConfigError("max-attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RangeBase != "" && c.RangeCount < 1 {
		return apperrors.NewConfigError("range-base requires a positive range-count")
	}
	if c.RangeCount > 1000 {
		return apperrors.NewConfigError("range-count must not exceed 1000, got %d", c.RangeCount)
	}
	if c.DriveFolder != "" && c.CredentialsFile == "" {
		return apperrors.NewConfigError("drive-folder requires -credentials")
	}
	return nil
}

// TermValue returns the validated term.
func (c AppConfig) TermValue() result.Term {
	t, _ := result.ParseTerm(c.Term)
	return t
}

// String renders the effective configuration for verbose output, omitting
// anything secret-shaped.
func (c AppConfig) String() string {
	return fmt.Sprintf("url=%s term=%s workers=%d attempts=%d delay=%s wait=%s pdf=%v xlsx=%v zip=%v",
		c.URL, c.Term, c.Workers, c.MaxAttempts, c.RetryDelay, c.WaitTimeout,
		c.GeneratePDF, c.GenerateXLSX, c.MakeZip)
}

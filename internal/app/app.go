// Package app wires configuration, fetching, orchestration, analysis,
// and export into the resultgrab executable.
package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/darionhq/resultgrab/internal/cli"
	"github.com/darionhq/resultgrab/internal/config"
	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/logging"
	"github.com/darionhq/resultgrab/internal/metrics"
	"github.com/darionhq/resultgrab/internal/orchestration"
	"github.com/darionhq/resultgrab/internal/result"
	"github.com/darionhq/resultgrab/internal/tui"
)

// Version is the release identifier, overridable at build time via
// -ldflags "-X .../internal/app.Version=v1.2.3".
var Version = "dev"

// Application represents one configured resultgrab invocation.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
}

// New creates an Application by parsing command-line arguments.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "resultgrab"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the batch and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	logger := logging.New(a.ErrWriter, a.Config.Quiet, a.Config.Verbose)

	keys, err := a.Config.Keys()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return ExitCodeFor(err)
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	fetchMetrics := metrics.NewFetch()
	if a.Config.MetricsAddr != "" {
		go func() {
			if err := fetchMetrics.Serve(ctx, a.Config.MetricsAddr); err != nil {
				logger.Warn("metrics endpoint failed", logging.Err(err))
			}
		}()
	}

	if a.Config.TUI {
		return a.runTUI(ctx, out, logger, fetchMetrics, keys)
	}
	return a.runBatch(ctx, out, logger, fetchMetrics, keys)
}

// runBatch is the plain CLI mode: spinner progress plus printed tables.
func (a *Application) runBatch(ctx context.Context, out io.Writer, logger logging.Logger, m *metrics.Fetch, keys []result.Key) int {
	var reporter orchestration.ProgressReporter = orchestration.NullProgressReporter{}
	if !a.Config.Quiet {
		logger.Info("starting batch",
			logging.Int("keys", len(keys)),
			logging.String("config", a.Config.String()))
		reporter = cli.NewSpinnerReporter()
	}

	code, err := a.execute(ctx, out, logger, m, reporter, keys)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	}
	return code
}

// runTUI drives the live dashboard while the pipeline runs behind it.
// Tables are buffered and printed once the dashboard closes.
func (a *Application) runTUI(ctx context.Context, out io.Writer, logger logging.Logger, m *metrics.Fetch, keys []result.Key) int {
	var tables bytes.Buffer
	code := tui.Run(ctx, len(keys), Version, func(runCtx context.Context, reporter orchestration.ProgressReporter) (int, error) {
		return a.execute(runCtx, &tables, logger, m, reporter, keys)
	})
	if _, err := io.Copy(out, &tables); err != nil {
		logger.Warn("writing buffered output", logging.Err(err))
	}
	return code
}

// ExitCodeFor maps error categories to process exit codes. It covers
// both construction-time errors (New) and run-time errors, so main can
// apply one contract to every failure path.
func ExitCodeFor(err error) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	var schedErr apperrors.ScheduleError
	var cfgErr apperrors.ConfigError
	var valErr apperrors.ValidationError
	switch {
	case errors.As(err, &schedErr):
		return apperrors.ExitErrorSchedule
	case apperrors.IsContextError(err):
		return apperrors.ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return apperrors.ExitErrorConfig
	default:
		return apperrors.ExitErrorGeneric
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// HasVersionFlag reports whether the arguments request the version banner.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" {
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "resultgrab %s\n", Version)
}

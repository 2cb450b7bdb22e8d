package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/darionhq/resultgrab/internal/analysis"
	"github.com/darionhq/resultgrab/internal/archive"
	"github.com/darionhq/resultgrab/internal/cli"
	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/export"
	"github.com/darionhq/resultgrab/internal/fetch"
	"github.com/darionhq/resultgrab/internal/logging"
	"github.com/darionhq/resultgrab/internal/metrics"
	"github.com/darionhq/resultgrab/internal/orchestration"
	"github.com/darionhq/resultgrab/internal/render"
	"github.com/darionhq/resultgrab/internal/result"
	"github.com/darionhq/resultgrab/internal/sysmon"
	"github.com/darionhq/resultgrab/internal/upload"
)

// hostSampleInterval paces host-load logging during verbose runs.
const hostSampleInterval = 15 * time.Second

// execute runs the full pipeline: fetch every key, analyze, write
// artifacts, and upload. It returns the exit code and, for non-success
// codes, the error that caused it.
func (a *Application) execute(ctx context.Context, out io.Writer, logger logging.Logger, m *metrics.Fetch, reporter orchestration.ProgressReporter, keys []result.Key) (int, error) {
	runDir, err := a.makeRunDir()
	if err != nil {
		return apperrors.ExitErrorGeneric, err
	}

	if a.Config.Verbose {
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go sysmon.Watch(watchCtx, hostSampleInterval, func(s sysmon.Stats) {
			logger.Debug("host load",
				logging.Float64("cpu_percent", s.CPUPercent),
				logging.Float64("mem_percent", s.MemPercent))
		})
	}

	retryer := a.buildRetryer(runDir, logger.With(logging.String("component", "fetch")), m)

	records, err := orchestration.RunAll(ctx, retryer, keys, a.Config.Workers, reporter)
	if err != nil {
		return ExitCodeFor(err), err
	}
	orchestration.SortRecords(records)

	a.presentAnalysis(out, records)

	artifacts, err := a.writeArtifacts(runDir, records, logger)
	if err != nil {
		return apperrors.ExitErrorGeneric, err
	}

	if a.Config.DriveFolder != "" {
		if err := a.uploadArtifacts(ctx, artifacts, logger); err != nil {
			return ExitCodeFor(err), err
		}
	}

	logger.Info("batch complete",
		logging.Int("records", len(records)),
		logging.String("dir", runDir))
	return apperrors.ExitSuccess, nil
}

// makeRunDir creates the timestamped directory that holds this run's
// artifacts, mirroring results_<stamp> under the output root.
func (a *Application) makeRunDir() (string, error) {
	runDir := filepath.Join(a.Config.OutDir, "results_"+time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", apperrors.WrapError(err, "create run directory")
	}
	return runDir, nil
}

// buildRetryer assembles the fetcher, retry policy, and optional PDF
// sink from the configuration.
func (a *Application) buildRetryer(runDir string, logger logging.Logger, m *metrics.Fetch) *fetch.Retryer {
	fetcher := fetch.NewHTTPFetcher(a.Config.URL, fetch.Locators{
		InputField:        a.Config.InputID,
		TermField:         a.Config.TermID,
		SubmitField:       a.Config.SubmitName,
		ResultContainerID: a.Config.ResultID,
	})
	policy := fetch.RetryPolicy{
		MaxAttempts:   a.Config.MaxAttempts,
		Delay:         a.Config.RetryDelay,
		WaitTimeout:   a.Config.WaitTimeout,
		RetryNotFound: a.Config.RetryNotFound,
	}

	var sink fetch.DocumentSink
	if a.Config.GeneratePDF {
		renderer := render.New(runDir)
		if renderer.Available() {
			sink = renderer
		} else {
			logger.Warn("wkhtmltopdf not found, skipping per-record PDFs")
		}
	}

	return fetch.NewRetryer(fetcher, policy, logger, sink, m)
}

// presentAnalysis prints the four aggregate views.
func (a *Application) presentAnalysis(out io.Writer, records []result.Record) {
	classify := result.DefaultClassifier
	p := cli.NewPresenter(out)

	p.PresentSummary(analysis.Summary(records, classify))
	if rows, ok := analysis.ByGroup(records, classify); ok {
		p.PresentByGroup(rows)
	}
	p.PresentTopN(analysis.TopN(records, a.Config.TopN))
	if rows, ok := analysis.SubjectAnalysis(records); ok {
		p.PresentSubjects(rows)
	}
}

// writeArtifacts produces the spreadsheet, collects generated PDFs, and
// optionally bundles everything into a zip. It returns the paths of all
// artifacts written, zip included.
func (a *Application) writeArtifacts(runDir string, records []result.Record, logger logging.Logger) ([]string, error) {
	var artifacts []string

	if a.Config.GenerateXLSX {
		path := filepath.Join(runDir, "results.xlsx")
		if err := export.WriteXLSX(path, result.Flatten(records)); err != nil {
			return nil, apperrors.WrapError(err, "write spreadsheet")
		}
		artifacts = append(artifacts, path)
		logger.Info("spreadsheet written", logging.String("path", path))
	}

	if a.Config.GeneratePDF {
		for _, rec := range records {
			if rec.Status != result.StatusResolved {
				continue
			}
			path := filepath.Join(runDir, render.DocumentName(rec.PIN))
			if _, err := os.Stat(path); err == nil {
				artifacts = append(artifacts, path)
			}
		}
	}

	if a.Config.MakeZip && len(artifacts) > 0 {
		zipPath := filepath.Join(runDir, "results_bundle.zip")
		f, err := os.Create(zipPath)
		if err != nil {
			return nil, apperrors.WrapError(err, "create archive")
		}
		n, zerr := archive.Zip(f, artifacts, logger)
		if cerr := f.Close(); zerr == nil {
			zerr = cerr
		}
		if zerr != nil {
			return nil, apperrors.WrapError(zerr, "write archive")
		}
		artifacts = append(artifacts, zipPath)
		logger.Info("archive written",
			logging.String("path", zipPath),
			logging.Int("files", n))
	}

	return artifacts, nil
}

// uploadArtifacts pushes every artifact to the configured Drive folder.
// Individual failures are logged and counted; only a client setup error
// is returned.
func (a *Application) uploadArtifacts(ctx context.Context, artifacts []string, logger logging.Logger) error {
	uploader, err := upload.New(ctx, a.Config.CredentialsFile, a.Config.DriveFolder, logger)
	if err != nil {
		return err
	}

	failed := 0
	outcomes := uploader.UploadAll(ctx, artifacts, func(done, total int, path string, err error) {
		if err != nil {
			failed++
		}
		logger.Debug("upload progress",
			logging.Int("done", done),
			logging.Int("total", total),
			logging.String("path", path))
	})
	if failed > 0 {
		logger.Warn("some uploads failed",
			logging.Int("failed", failed),
			logging.Int("total", len(outcomes)))
	}
	return nil
}

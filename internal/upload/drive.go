// Package upload pushes run artifacts to a Google Drive folder.
package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/logging"
)

// fileCreator is the slice of the Drive API the uploader needs.
type fileCreator interface {
	Create(ctx context.Context, name, folderID string, body io.Reader) (string, error)
}

type driveCreator struct {
	svc *drive.Service
}

func (d *driveCreator) Create(ctx context.Context, name, folderID string, body io.Reader) (string, error) {
	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	f, err := d.svc.Files.Create(meta).Media(body).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

// Outcome records the fate of a single artifact in a batch upload.
type Outcome struct {
	Path   string
	FileID string
	Err    error
}

// ProgressFunc is invoked after each artifact completes, success or not.
type ProgressFunc func(done, total int, path string, err error)

// Uploader sends local files into a fixed Drive folder.
type Uploader struct {
	creator  fileCreator
	folderID string
	logger   logging.Logger
}

// New builds an Uploader authenticated from a service-account
// credentials file.
func New(ctx context.Context, credentialsPath, folderID string, logger logging.Logger) (*Uploader, error) {
	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, apperrors.NewConfigError("drive client from %s: %v", credentialsPath, err)
	}
	return &Uploader{creator: &driveCreator{svc: svc}, folderID: folderID, logger: logger}, nil
}

// UploadFile sends one file and returns the created Drive file ID.
func (u *Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &apperrors.UploadError{Name: filepath.Base(path), Cause: err}
	}
	defer f.Close()

	id, err := u.creator.Create(ctx, filepath.Base(path), u.folderID, f)
	if err != nil {
		return "", &apperrors.UploadError{Name: filepath.Base(path), Cause: err}
	}
	return id, nil
}

// UploadAll sends every file in order, never letting one failure abort
// the rest. It returns one Outcome per input path, in input order.
func (u *Uploader) UploadAll(ctx context.Context, paths []string, progress ProgressFunc) []Outcome {
	outcomes := make([]Outcome, 0, len(paths))
	for i, path := range paths {
		id, err := u.UploadFile(ctx, path)
		if err != nil {
			u.logger.Warn("upload failed",
				logging.String("path", path),
				logging.Err(err))
		} else {
			u.logger.Info("uploaded",
				logging.String("path", path),
				logging.String("file_id", id))
		}
		outcomes = append(outcomes, Outcome{Path: path, FileID: id, Err: err})
		if progress != nil {
			progress(i+1, len(paths), path, err)
		}
	}
	return outcomes
}

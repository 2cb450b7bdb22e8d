// Package archive bundles a run's artifacts into a single downloadable zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/darionhq/resultgrab/internal/logging"
)

// Zip writes the named files into w as a flat archive (base names only).
// Files that have gone missing since generation are skipped with a log
// entry rather than failing the bundle. It returns the number of files
// actually archived.
func Zip(w io.Writer, paths []string, logger logging.Logger) (int, error) {
	zw := zip.NewWriter(w)

	archived := 0
	for _, path := range paths {
		if err := addFile(zw, path); err != nil {
			if os.IsNotExist(err) {
				logger.Warn("artifact missing, skipped from archive", logging.String("path", path))
				continue
			}
			zw.Close()
			return archived, fmt.Errorf("archive %s: %w", path, err)
		}
		archived++
	}

	if err := zw.Close(); err != nil {
		return archived, fmt.Errorf("finalize archive: %w", err)
	}
	return archived, nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/darionhq/resultgrab/internal/result"
)

// WriteCSV writes the flattened rows in CSV form with a header row.
func WriteCSV(w io.Writer, rows []result.Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(result.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

package files

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	ex "rvcalc/data/extensions"
	m "rvcalc/data/models"
)

// the leading empty header is the row index column
var VarianceHeaders = []string{"", "date", "contractName", "interval", "method", "rv", "bv", "ssj", "rollDate"}

// CSVWriter writes one variance_calculations_<year>.csv per year into Dir
type CSVWriter struct {
	Dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

func (w *CSVWriter) PathFor(year int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("variance_calculations_%d.csv", year))
}

// WriteVarianceTable replaces the year's file. The index restarts at zero for every (method, interval) block.
func (w *CSVWriter) WriteVarianceTable(ctx context.Context, table *m.VarianceTable) error {
	path := w.PathFor(table.Year)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := writeVarianceRows(ctx, file, table); err != nil {
		file.Close()
		return err
	}

	// the last buffered bytes can still fail on close
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	log.Printf("wrote %d variance rows to %s", len(table.Rows), path)
	return nil
}

func writeVarianceRows(ctx context.Context, w io.Writer, table *m.VarianceTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(VarianceHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	index := 0
	for i, row := range table.Rows {
		if i > 0 && (row.Method != table.Rows[i-1].Method || row.Interval != table.Rows[i-1].Interval) {
			index = 0
		}

		if err := writer.Write(formatVarianceRow(index, row)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
		index++

		if i%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush variance rows for %d: %w", table.Year, err)
	}

	return nil
}

func formatVarianceRow(index int, row *m.VarianceRow) []string {
	return []string{
		strconv.Itoa(index),
		ex.FmtShort(row.Date),
		row.ContractName,
		strconv.Itoa(row.Interval),
		string(row.Method),
		formatFloat(row.RV),
		formatFloat(row.BV),
		formatFloat(row.SSJ),
		strconv.FormatBool(row.RollDate),
	}
}

// shortest representation that parses back to the same float64
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package visualization produces the artifacts of a trace transform run:
// feature tables, per-trace tables and sinogram images.
package visualization

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"tracetransform/internal/models"
)

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFeatures writes the feature matrix as CSV: a header row with the
// column labels followed by one row per angle index.
func WriteFeatures(w io.Writer, fm *models.FeatureMatrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fm.Headers); err != nil {
		return fmt.Errorf("failed to write feature header: %w", err)
	}

	rows, cols := fm.Dims()
	if cols == 0 {
		rows = 0
	}
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = formatValue(fm.Data.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write feature row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveFeatures writes the feature matrix into filename
func SaveFeatures(filename string, fm *models.FeatureMatrix) error {
	return writeFile(filename, func(w io.Writer) error {
		return WriteFeatures(w, fm)
	})
}

// WriteTrace writes a single circus function as a one-column CSV table
func WriteTrace(filename, header string, values []float64) error {
	return writeFile(filename, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{header}); err != nil {
			return err
		}
		for _, v := range values {
			if err := cw.Write([]string{formatValue(v)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeFile(filename string, write func(io.Writer) error) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", filename, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("error writing %s: %w", filename, err)
	}
	return file.Close()
}

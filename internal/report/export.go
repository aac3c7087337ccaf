package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/calculator"
	"JSEInsight/internal/forecast"
)

// WriteProjectionCSV writes one row per projected month.
func WriteProjectionCSV(w io.Writer, path forecast.ProjectionPath) error {
	points := path.Points
	if points == nil {
		points = []forecast.ProjectionPoint{}
	}
	if err := gocsv.Marshal(&points, w); err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return nil
}

// WriteComparisonCSV writes one row per compared stock.
func WriteComparisonCSV(w io.Writer, cmp *analyzer.Comparison) error {
	rows := cmp.Rows
	if rows == nil {
		rows = []analyzer.ComparisonRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("marshal comparison: %w", err)
	}
	return nil
}

// WriteDCACSV writes the monthly-investment simulation of every compared stock,
// one row per ticker and month, in comparison order.
func WriteDCACSV(w io.Writer, cmp *analyzer.Comparison) error {
	points := []calculator.DCAPoint{}
	for _, r := range cmp.Rows {
		points = append(points, cmp.DCA[r.Ticker]...)
	}
	if err := gocsv.Marshal(&points, w); err != nil {
		return fmt.Errorf("marshal simulation: %w", err)
	}
	return nil
}

// ExportFile creates path (and its directory) and hands it to write.
func ExportFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

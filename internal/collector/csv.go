package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
)

// CSVFetcher implements Fetcher over a directory of "<TICKER>.csv" files with date and close
// columns and an optional volume column.
type CSVFetcher struct {
	Dir        string
	DateLayout string
}

// NewCSVFetcher creates a fetcher reading from dir.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir, DateLayout: "2006-01-02"}
}

func (f *CSVFetcher) Name() string { return "csv" }

// csvRow is the expected row shape of a price file.
type csvRow struct {
	Date   string  `csv:"date"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func (f *CSVFetcher) Fetch(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, &forecast.DataUnavailableError{Ticker: ticker, Err: err}
	}
	series, err := f.load(ticker)
	if err != nil {
		return model.PriceSeries{}, &forecast.DataUnavailableError{Ticker: ticker, Err: err}
	}
	return series.Between(start, end), nil
}

func (f *CSVFetcher) load(ticker string) (model.PriceSeries, error) {
	path := filepath.Join(f.Dir, strings.ToUpper(ticker)+".csv")
	file, err := os.Open(path)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return model.PriceSeries{}, fmt.Errorf("parse %s: %w", path, err)
	}

	points := make([]model.PricePoint, 0, len(rows))
	for i, r := range rows {
		t, err := time.Parse(f.DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		points = append(points, model.PricePoint{Time: t, Price: r.Close, Volume: r.Volume})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	series := model.PriceSeries{Ticker: ticker, Points: points, FetchedAt: time.Now()}
	if err := series.Validate(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"JSEInsight/internal/model"
)

// Summary holds descriptive statistics of a price series.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SummaryStatistics returns mean, sample standard deviation, min and max of the closes.
func SummaryStatistics(series model.PriceSeries) (Summary, error) {
	closes := series.Closes()
	if len(closes) == 0 {
		return Summary{}, errors.New("no prices provided")
	}
	var s Summary
	var err error
	if s.Mean, err = stats.Mean(closes); err != nil {
		return Summary{}, fmt.Errorf("mean: %w", err)
	}
	if len(closes) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(closes); err != nil {
			return Summary{}, fmt.Errorf("std dev: %w", err)
		}
	}
	if s.Min, err = stats.Min(closes); err != nil {
		return Summary{}, fmt.Errorf("min: %w", err)
	}
	if s.Max, err = stats.Max(closes); err != nil {
		return Summary{}, fmt.Errorf("max: %w", err)
	}
	return s, nil
}

// Metrics computes every historical metric for a daily series.
// Indicators that need more history than available fall back to the current price.
func Metrics(series model.PriceSeries) (*model.HistoricalMetrics, error) {
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("metrics for %s: no prices provided", series.Ticker)
	}
	sum, err := SummaryStatistics(series)
	if err != nil {
		return nil, fmt.Errorf("metrics for %s: %w", series.Ticker, err)
	}

	m := &model.HistoricalMetrics{
		Ticker:       series.Ticker,
		CurrentPrice: last.Price,
		Mean:         sum.Mean,
		StdDev:       sum.StdDev,
		Min:          sum.Min,
		Max:          sum.Max,
		MaxDrawdown:  MaxDrawdown(series.Closes()),
	}

	if ma, err := CalculateMA50(series); err != nil {
		log.WithField("ticker", series.Ticker).Warnf("MA50 calculation failed: %v, using current price", err)
		m.MA50 = last.Price
	} else {
		m.MA50 = ma
	}
	if ma, err := CalculateMA200(series); err != nil {
		log.WithField("ticker", series.Ticker).Warnf("MA200 calculation failed: %v, using current price", err)
		m.MA200 = last.Price
	} else {
		m.MA200 = ma
	}

	if h, l, err := Calculate52WeekRange(series); err != nil {
		m.High52w, m.Low52w = last.Price, last.Price
	} else {
		m.High52w, m.Low52w = h, l
	}
	if pos, err := Calculate52WeekPosition(last.Price, m.High52w, m.Low52w); err != nil {
		m.Position52w = 0.5
	} else {
		m.Position52w = pos
	}
	return m, nil
}

// CorrelationMatrix returns Pearson correlations of closing prices on the dates all series share.
// Tickers are returned in sorted order; matrix[i][j] is the correlation of tickers[i] and tickers[j].
func CorrelationMatrix(series map[string]model.PriceSeries) (tickers []string, matrix [][]float64, err error) {
	for t := range series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	aligned := alignCloses(series, tickers)
	if len(aligned) == 0 || len(aligned[0]) < 2 {
		return nil, nil, errors.New("need at least two shared dates to correlate")
	}

	matrix = make([][]float64, len(tickers))
	for i := range tickers {
		matrix[i] = make([]float64, len(tickers))
		matrix[i][i] = 1
	}
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			c, err := stats.Correlation(aligned[i], aligned[j])
			if err != nil {
				return nil, nil, fmt.Errorf("correlate %s/%s: %w", tickers[i], tickers[j], err)
			}
			matrix[i][j], matrix[j][i] = c, c
		}
	}
	return tickers, matrix, nil
}

// alignCloses keeps only the calendar days present in every series.
func alignCloses(series map[string]model.PriceSeries, tickers []string) [][]float64 {
	counts := make(map[string]int)
	for _, t := range tickers {
		for _, p := range series[t].Points {
			counts[p.Time.Format("2006-01-02")]++
		}
	}
	out := make([][]float64, len(tickers))
	for i, t := range tickers {
		for _, p := range series[t].Points {
			if counts[p.Time.Format("2006-01-02")] == len(tickers) {
				out[i] = append(out[i], p.Price)
			}
		}
	}
	return out
}

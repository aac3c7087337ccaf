package forecast

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"JSEInsight/internal/model"
)

// MinPoints is the shortest series Estimate accepts.
const MinPoints = 2

// ReturnStats summarises the periodic returns of one ticker.
type ReturnStats struct {
	Ticker     string
	MeanReturn float64
	Volatility float64 // sample standard deviation of returns
	Periods    int     // number of returns used
}

// PeriodReturns computes simple period-over-period returns p[i]/p[i-1]-1.
func PeriodReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns
}

// Estimate derives mean return and volatility from a price series.
func Estimate(series model.PriceSeries) (ReturnStats, error) {
	if series.Len() < MinPoints {
		return ReturnStats{}, &InsufficientDataError{Ticker: series.Ticker, Points: series.Len(), Required: MinPoints}
	}
	if err := series.Validate(); err != nil {
		return ReturnStats{}, err
	}

	returns := PeriodReturns(series.Closes())
	mean, err := stats.Mean(returns)
	if err != nil {
		return ReturnStats{}, fmt.Errorf("mean return for %s: %w", series.Ticker, err)
	}

	// Sample deviation needs two returns; one return has no spread.
	var vol float64
	if len(returns) > 1 {
		vol, err = stats.StandardDeviationSample(returns)
		if err != nil {
			return ReturnStats{}, fmt.Errorf("volatility for %s: %w", series.Ticker, err)
		}
	}

	return ReturnStats{
		Ticker:     series.Ticker,
		MeanReturn: mean,
		Volatility: vol,
		Periods:    len(returns),
	}, nil
}

// EstimateAll estimates every series. Failures are reported for the first ticker in sorted order.
func EstimateAll(series map[string]model.PriceSeries) (map[string]ReturnStats, error) {
	tickers := make([]string, 0, len(series))
	for t := range series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make(map[string]ReturnStats, len(series))
	for _, t := range tickers {
		s := series[t]
		if s.Ticker == "" {
			s.Ticker = t
		}
		rs, err := Estimate(s)
		if err != nil {
			return nil, err
		}
		out[t] = rs
	}
	return out, nil
}

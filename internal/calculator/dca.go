package calculator

import (
	"time"

	"JSEInsight/internal/model"
)

// DCAPoint is the state of a historical monthly-investment simulation after one purchase.
type DCAPoint struct {
	Ticker   string    `csv:"ticker"`
	Time     time.Time `csv:"date"`
	Price    float64   `csv:"price"`
	Shares   float64   `csv:"shares"`
	Invested float64   `csv:"invested"`
	Value    float64   `csv:"value"`
}

// SimulateDCA buys monthlyInvestment worth of shares at every month-end close of the series.
func SimulateDCA(series model.PriceSeries, monthlyInvestment float64) []DCAPoint {
	monthly := series.Monthly()
	out := make([]DCAPoint, 0, monthly.Len())
	shares, invested := 0.0, 0.0
	for _, p := range monthly.Points {
		invested += monthlyInvestment
		if p.Price > 0 {
			shares += monthlyInvestment / p.Price
		}
		out = append(out, DCAPoint{
			Ticker:   series.Ticker,
			Time:     p.Time,
			Price:    p.Price,
			Shares:   shares,
			Invested: invested,
			Value:    shares * p.Price,
		})
	}
	return out
}

// TotalReturn returns the percentage change from the first to the last value.
func TotalReturn(values []float64) float64 {
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	return (values[len(values)-1] - values[0]) / values[0] * 100
}

// DCAReturn returns the gain of a simulation relative to the capital put in, in percent.
func DCAReturn(path []DCAPoint) float64 {
	if len(path) == 0 {
		return 0
	}
	last := path[len(path)-1]
	if last.Invested == 0 {
		return 0
	}
	return (last.Value - last.Invested) / last.Invested * 100
}

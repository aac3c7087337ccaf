package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JSEInsight/internal/model"
)

func dailySeries(ticker string, start time.Time, prices ...float64) model.PriceSeries {
	pts := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = model.PricePoint{Time: start.AddDate(0, 0, i), Price: p}
	}
	return model.PriceSeries{Ticker: ticker, Points: pts}
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestRollingSMA(t *testing.T) {
	out, err := RollingSMA([]float64{2, 4, 6, 8}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 5, 7}, out)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 0.5, MaxDrawdown([]float64{100, 120, 60, 90, 130, 110}), 1e-12)
	assert.Equal(t, 0.0, MaxDrawdown([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestCalculate52WeekRange_TrailingYearOnly(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 500)
	for i := range prices {
		prices[i] = 100
	}
	prices[10] = 500 // older than one year before the last point
	prices[400] = 150
	prices[450] = 80
	high, low, err := Calculate52WeekRange(dailySeries("AGL.JO", start, prices...))
	require.NoError(t, err)
	assert.Equal(t, 150.0, high)
	assert.Equal(t, 80.0, low)

	_, _, err = Calculate52WeekRange(model.PriceSeries{})
	assert.Error(t, err)
}

func TestCalculate52WeekPosition(t *testing.T) {
	pos, err := Calculate52WeekPosition(75, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	pos, _ = Calculate52WeekPosition(120, 100, 50)
	assert.Equal(t, 1.0, pos)

	_, err = Calculate52WeekPosition(1, 50, 100)
	assert.Error(t, err)
}

func TestSummaryStatistics(t *testing.T) {
	s, err := SummaryStatistics(dailySeries("X", time.Now(), 2, 4, 4, 4, 5, 5, 7, 9))
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Mean)
	assert.InDelta(t, 2.13809, s.StdDev, 1e-5)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)

	_, err = SummaryStatistics(model.PriceSeries{})
	assert.Error(t, err)
}

func TestMetrics_ShortHistoryFallsBack(t *testing.T) {
	m, err := Metrics(dailySeries("VOD.JO", time.Now(), 10, 12, 11))
	require.NoError(t, err)
	assert.Equal(t, 11.0, m.CurrentPrice)
	assert.Equal(t, 11.0, m.MA50)
	assert.Equal(t, 11.0, m.MA200)
	assert.Equal(t, 12.0, m.High52w)
	assert.Equal(t, 10.0, m.Low52w)
	assert.InDelta(t, 0.5, m.Position52w, 1e-12)
	assert.InDelta(t, 1.0/12, m.MaxDrawdown, 1e-12)
}

func TestCorrelationMatrix(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := dailySeries("A", start, 1, 2, 3, 4, 5)
	b := dailySeries("B", start, 10, 20, 30, 40, 50)
	c := dailySeries("C", start, 5, 4, 3, 2, 1)
	// extra day only in A must be ignored
	a.Points = append(a.Points, model.PricePoint{Time: start.AddDate(0, 0, 10), Price: 100})

	tickers, m, err := CorrelationMatrix(map[string]model.PriceSeries{"A": a, "B": b, "C": c})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, tickers)
	assert.InDelta(t, 1.0, m[0][1], 1e-12)
	assert.InDelta(t, -1.0, m[0][2], 1e-12)
	assert.Equal(t, m[1][2], m[2][1])
	assert.Equal(t, 1.0, m[2][2])
}

func TestSimulateDCA(t *testing.T) {
	s := model.PriceSeries{Ticker: "FSR.JO", Points: []model.PricePoint{
		{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Price: 40},
		{Time: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Price: 50},
		{Time: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Price: 100},
		{Time: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), Price: 50},
	}}
	path := SimulateDCA(s, 100)
	require.Len(t, path, 3)
	assert.Equal(t, "FSR.JO", path[2].Ticker)
	assert.InDelta(t, 2.0, path[0].Shares, 1e-12)
	assert.InDelta(t, 3.0, path[1].Shares, 1e-12)
	assert.InDelta(t, 300.0, path[1].Value, 1e-9)
	assert.Equal(t, 300.0, path[2].Invested)
	assert.InDelta(t, 250.0, path[2].Value, 1e-9)
	assert.InDelta(t, -16.6667, DCAReturn(path), 1e-3)

	assert.Equal(t, 50.0, TotalReturn([]float64{100, 120, 150}))
	assert.Equal(t, 0.0, TotalReturn(nil))
	assert.Equal(t, 0.0, DCAReturn(nil))
}

func TestCalculateRange(t *testing.T) {
	s := dailySeries("BHG.JO", time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), 30, 55, 20, 41)
	high, low, err := CalculateRange(s)
	require.NoError(t, err)
	assert.Equal(t, 55.0, high)
	assert.Equal(t, 20.0, low)

	_, _, err = CalculateRange(model.PriceSeries{})
	assert.Error(t, err)
}

package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JSEInsight/internal/model"
)

func makeSeries(ticker string, prices ...float64) model.PriceSeries {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = model.PricePoint{Time: start.AddDate(0, 0, 30*i), Price: p}
	}
	return model.PriceSeries{Ticker: ticker, Points: pts}
}

func TestEstimate_ConstantPrice(t *testing.T) {
	for _, n := range []int{2, 3, 10, 60} {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 123.45
		}
		rs, err := Estimate(makeSeries("NPN.JO", prices...))
		require.NoError(t, err)
		assert.Equal(t, 0.0, rs.MeanReturn, "n=%d", n)
		assert.Equal(t, 0.0, rs.Volatility, "n=%d", n)
		assert.Equal(t, n-1, rs.Periods)
	}
}

func TestEstimate_KnownReturns(t *testing.T) {
	// returns: +10%, -10%, +10%
	rs, err := Estimate(makeSeries("SBK.JO", 100, 110, 99, 108.9))
	require.NoError(t, err)
	assert.InDelta(t, 0.1/3, rs.MeanReturn, 1e-12)

	mean := 0.1 / 3
	ss := math.Pow(0.1-mean, 2)*2 + math.Pow(-0.1-mean, 2)
	assert.InDelta(t, math.Sqrt(ss/2), rs.Volatility, 1e-12)
	assert.Equal(t, 3, rs.Periods)
}

func TestEstimate_TwoPointsHasNoVolatility(t *testing.T) {
	rs, err := Estimate(makeSeries("MTN.JO", 100, 105))
	require.NoError(t, err)
	assert.InDelta(t, 0.05, rs.MeanReturn, 1e-12)
	assert.Equal(t, 0.0, rs.Volatility)
}

func TestEstimate_InsufficientData(t *testing.T) {
	for _, s := range []model.PriceSeries{makeSeries("AGL.JO"), makeSeries("AGL.JO", 100)} {
		_, err := Estimate(s)
		var ide *InsufficientDataError
		require.True(t, errors.As(err, &ide), "got %v", err)
		assert.Equal(t, "AGL.JO", ide.Ticker)
		assert.Equal(t, s.Len(), ide.Points)
		assert.Equal(t, 2, ide.Required)
	}
}

func TestEstimate_InvalidSeries(t *testing.T) {
	_, err := Estimate(makeSeries("SOL.JO", 100, 0, 90))
	assert.ErrorIs(t, err, ErrInvalidSeries)

	s := makeSeries("SOL.JO", 100, 101)
	s.Points[1].Time = s.Points[0].Time
	_, err = Estimate(s)
	assert.ErrorIs(t, err, ErrInvalidSeries)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = Estimate(makeSeries("SOL.JO", 100, bad, 110))
		assert.ErrorIs(t, err, ErrInvalidSeries, "price %v", bad)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	s := makeSeries("CPI.JO", 100, 103, 101, 107, 104, 111)
	a, err := Estimate(s)
	require.NoError(t, err)
	b, err := Estimate(s)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimateAll(t *testing.T) {
	out, err := EstimateAll(map[string]model.PriceSeries{
		"A.JO": makeSeries("A.JO", 10, 11),
		"B.JO": makeSeries("", 10, 10, 10),
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "B.JO", out["B.JO"].Ticker)

	_, err = EstimateAll(map[string]model.PriceSeries{
		"A.JO": makeSeries("A.JO", 10, 11),
		"C.JO": makeSeries("C.JO", 10),
	})
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, "C.JO", ide.Ticker)
}

func TestNewPortfolioConfig_Validation(t *testing.T) {
	tests := []struct {
		name     string
		holdings []Holding
		contrib  float64
		horizon  int
		opts     *Options
		field    string
	}{
		{"no holdings", nil, 1000, 12, nil, "holdings"},
		{"weights short", []Holding{{"A", 0.5}, {"B", 0.4}}, 1000, 12, nil, "weights"},
		{"weights over", []Holding{{"A", 0.6}, {"B", 0.4 + 1e-6}}, 1000, 12, nil, "weights"},
		{"negative weight", []Holding{{"A", 1.2}, {"B", -0.2}}, 1000, 12, nil, "weights"},
		{"zero horizon", []Holding{{"A", 1}}, 1000, 0, nil, "horizon"},
		{"negative horizon", []Holding{{"A", 1}}, 1000, -3, nil, "horizon"},
		{"negative contribution", []Holding{{"A", 1}}, -1, 12, nil, "monthly contribution"},
		{"duplicate", []Holding{{"A", 0.5}, {"A", 0.5}}, 1000, 12, nil, "holdings"},
		{"empty ticker", []Holding{{" ", 1}}, 1000, 12, nil, "holdings"},
		{"too many", EqualWeights([]string{"A", "B", "C", "D"}), 1000, 12, &Options{MaxHoldings: 3}, "holdings"},
		{"negative initial", []Holding{{"A", 1}}, 1000, 12, &Options{InitialAmount: -5}, "initial amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewPortfolioConfig(tt.holdings, tt.contrib, tt.horizon, tt.opts)
			assert.Nil(t, cfg)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestNewPortfolioConfig_WeightTolerance(t *testing.T) {
	_, err := NewPortfolioConfig([]Holding{{"A", 0.5}, {"B", 0.5 + 5e-10}}, 100, 6, nil)
	assert.NoError(t, err)

	cfg, err := NewPortfolioConfig(EqualWeights([]string{"A", "B", "C"}), 100, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Tickers())
	assert.Equal(t, 6, cfg.HorizonMonths())
	assert.Equal(t, 100.0, cfg.MonthlyContribution())
}

func TestProject_ReferenceExample(t *testing.T) {
	cfg, err := NewPortfolioConfig([]Holding{{"NPN.JO", 0.5}, {"FSR.JO", 0.5}}, 1000, 12, nil)
	require.NoError(t, err)
	statsMap := map[string]ReturnStats{
		"NPN.JO": {Ticker: "NPN.JO", MeanReturn: 0.012, Volatility: 0.025},
		"FSR.JO": {Ticker: "FSR.JO", MeanReturn: 0.008, Volatility: 0.015},
	}

	path, err := Project(cfg, statsMap)
	require.NoError(t, err)
	require.Len(t, path.Points, 12)
	assert.InDelta(t, 0.01, path.BlendedReturn, 1e-12)
	assert.InDelta(t, 0.02, path.BlendedVolatility, 1e-12)

	last, ok := path.Final()
	require.True(t, ok)
	assert.Equal(t, 12, last.Month)
	assert.InDelta(t, 12809.33, last.Expected, 0.01)
	assert.Equal(t, 12000.0, last.Invested)
	for _, pt := range path.Points {
		assert.Equal(t, pt.Expected, pt.Lower)
		assert.Equal(t, pt.Expected, pt.Upper)
	}

	banded, err := ConfidenceBand(path, path.BlendedVolatility, DefaultConfidenceLevel)
	require.NoError(t, err)
	prevWidth := 0.0
	for _, pt := range banded.Points {
		width := pt.Upper - pt.Lower
		assert.Greater(t, width, prevWidth)
		prevWidth = width
	}
}

func TestProject_Idempotent(t *testing.T) {
	cfg, err := NewPortfolioConfig(EqualWeights([]string{"A", "B"}), 500, 36, &Options{InitialAmount: 10000})
	require.NoError(t, err)
	statsMap := map[string]ReturnStats{
		"A": {MeanReturn: 0.007, Volatility: 0.04},
		"B": {MeanReturn: -0.002, Volatility: 0.06},
	}
	a, err := Project(cfg, statsMap)
	require.NoError(t, err)
	b, err := Project(cfg, statsMap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 10000+500*36.0, a.Points[35].Invested)
}

func TestProject_MissingStats(t *testing.T) {
	cfg, err := NewPortfolioConfig([]Holding{{"A", 0.7}, {"B", 0.3}}, 100, 12, nil)
	require.NoError(t, err)
	_, err = Project(cfg, map[string]ReturnStats{"A": {}})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "B")
}

func TestZScore(t *testing.T) {
	z, err := ZScore(0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.959964, z, 1e-6)

	z, err = ZScore(0.6827)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, z, 1e-3)

	for _, level := range []float64{-0.5, 0, 1, 1.5, math.NaN()} {
		_, err := ZScore(level)
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce, "level %v", level)
	}
}

func TestConfidenceBand_Ordering(t *testing.T) {
	cfg, err := NewPortfolioConfig([]Holding{{"A", 1}}, 2500, 120, nil)
	require.NoError(t, err)
	for _, r := range []float64{-0.03, 0, 0.015} {
		path, err := Project(cfg, map[string]ReturnStats{"A": {MeanReturn: r}})
		require.NoError(t, err)
		for _, vol := range []float64{0, 0.01, 0.08, 0.5} {
			banded, err := ConfidenceBand(path, vol, 0.99)
			require.NoError(t, err)
			assert.Equal(t, 0.99, banded.Confidence)
			for _, pt := range banded.Points {
				assert.LessOrEqual(t, pt.Lower, pt.Expected)
				assert.LessOrEqual(t, pt.Expected, pt.Upper)
				assert.GreaterOrEqual(t, pt.Lower, 0.0)
			}
		}
	}
}

func TestConfidenceBand_ZeroVolatilityCollapses(t *testing.T) {
	cfg, err := NewPortfolioConfig([]Holding{{"A", 1}}, 100, 6, nil)
	require.NoError(t, err)
	path, err := Project(cfg, map[string]ReturnStats{"A": {MeanReturn: 0.01}})
	require.NoError(t, err)
	banded, err := ConfidenceBand(path, 0, 0.95)
	require.NoError(t, err)
	for _, pt := range banded.Points {
		assert.Equal(t, pt.Expected, pt.Lower)
		assert.Equal(t, pt.Expected, pt.Upper)
	}
}

func TestConfidenceBand_DoesNotMutateInput(t *testing.T) {
	cfg, err := NewPortfolioConfig([]Holding{{"A", 1}}, 100, 3, nil)
	require.NoError(t, err)
	path, err := Project(cfg, map[string]ReturnStats{"A": {MeanReturn: 0.01}})
	require.NoError(t, err)
	before := path.Points[2]
	_, err = ConfidenceBand(path, 0.05, 0.9)
	require.NoError(t, err)
	assert.Equal(t, before, path.Points[2])
}

func TestConfidenceBand_RejectsBadInput(t *testing.T) {
	var ce *ConfigError
	_, err := ConfidenceBand(ProjectionPath{}, 0.02, -0.95)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "confidence level", ce.Field)

	_, err = ConfidenceBand(ProjectionPath{}, -0.01, 0.95)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "volatility", ce.Field)

	zero := ProjectionPath{Points: []ProjectionPoint{{Month: 1}, {Month: 2}}}
	for _, vol := range []float64{math.Inf(1), math.NaN()} {
		_, err = ConfidenceBand(zero, vol, 0.95)
		require.ErrorAs(t, err, &ce, "volatility %v", vol)
		assert.Equal(t, "volatility", ce.Field)
	}
}

func TestForecastReturns(t *testing.T) {
	assert.Equal(t, Returns{}, ForecastReturns(ProjectionPath{}))

	cfg, err := NewPortfolioConfig([]Holding{{"A", 1}}, 1000, 3, nil)
	require.NoError(t, err)
	path, err := Project(cfg, map[string]ReturnStats{"A": {MeanReturn: 0}})
	require.NoError(t, err)
	r := ForecastReturns(path)
	assert.Equal(t, 3000.0, r.Invested)
	assert.InDelta(t, 0, r.Gain, 1e-9)
	assert.InDelta(t, 0, r.GainPct, 1e-9)
}

func TestEqualWeights(t *testing.T) {
	h := EqualWeights([]string{"A", "B", "C", "D", "E", "F", "G"})
	sum := 0.0
	for _, x := range h {
		sum += x.Weight
	}
	assert.InDelta(t, 1.0, sum, WeightTolerance)
	assert.Nil(t, EqualWeights(nil))
}

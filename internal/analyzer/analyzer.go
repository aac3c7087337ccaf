package analyzer

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"JSEInsight/internal/calculator"
	"JSEInsight/internal/collector"
	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
)

// Analyzer runs the fetch → estimate → project → band pipeline.
type Analyzer struct {
	Collector    *collector.Collector
	HistoryYears int
	// Fundamentals feeds the mood P/E and the portfolio valuation; optional.
	Fundamentals map[string]model.Fundamentals

	now func() time.Time
}

// New creates an Analyzer looking back historyYears of prices.
func New(col *collector.Collector, historyYears int) *Analyzer {
	if historyYears <= 0 {
		historyYears = 5
	}
	return &Analyzer{Collector: col, HistoryYears: historyYears, now: time.Now}
}

func (a *Analyzer) window() (start, end time.Time) {
	end = a.now().UTC().Truncate(24 * time.Hour)
	return end.AddDate(-a.HistoryYears, 0, 0), end
}

// Report is the outcome of one forecast run.
type Report struct {
	GeneratedAt time.Time
	Portfolio   *forecast.PortfolioConfig
	Stats       map[string]forecast.ReturnStats
	Metrics     map[string]*model.HistoricalMetrics
	Path        forecast.ProjectionPath
	Returns     forecast.Returns
	// Valuation is nil when no holding has fundamentals.
	Valuation *model.Valuation
}

// Forecast projects the portfolio and bands the path at the given confidence level.
// Return statistics are estimated from month-end closes so they match the monthly projection step.
func (a *Analyzer) Forecast(ctx context.Context, cfg *forecast.PortfolioConfig, level float64) (*Report, error) {
	start, end := a.window()
	series, err := a.Collector.CollectAll(ctx, cfg.Tickers(), start, end)
	if err != nil {
		return nil, fmt.Errorf("collect prices: %w", err)
	}

	monthly := make(map[string]model.PriceSeries, len(series))
	metrics := make(map[string]*model.HistoricalMetrics, len(series))
	for t, s := range series {
		monthly[t] = s.Monthly()
		m, err := calculator.Metrics(s)
		if err != nil {
			log.WithField("ticker", t).Warnf("historical metrics unavailable: %v", err)
			continue
		}
		metrics[t] = m
	}

	statsMap, err := forecast.EstimateAll(monthly)
	if err != nil {
		return nil, fmt.Errorf("estimate returns: %w", err)
	}
	path, err := forecast.Project(cfg, statsMap)
	if err != nil {
		return nil, fmt.Errorf("project portfolio: %w", err)
	}
	path, err = forecast.ConfidenceBand(path, path.BlendedVolatility, level)
	if err != nil {
		return nil, fmt.Errorf("confidence band: %w", err)
	}

	log.WithFields(log.Fields{
		"tickers": len(statsMap),
		"horizon": cfg.HorizonMonths(),
		"return":  path.BlendedReturn,
		"vol":     path.BlendedVolatility,
	}).Info("forecast computed")

	rep := &Report{
		GeneratedAt: a.now(),
		Portfolio:   cfg,
		Stats:       statsMap,
		Metrics:     metrics,
		Path:        path,
		Returns:     forecast.ForecastReturns(path),
	}
	if v := calculator.PortfolioValuation(cfg.Tickers(), a.Fundamentals); v.Covered > 0 {
		rep.Valuation = &v
	}
	return rep, nil
}

// TickerReport holds the statistics of a single stock.
type TickerReport struct {
	Stock   model.Stock
	Monthly forecast.ReturnStats
	Daily   forecast.ReturnStats
	Metrics *model.HistoricalMetrics
	// Mood is nil when the series is too short to read one.
	Mood         *model.Mood
	Fundamentals *model.Fundamentals
}

// Ticker estimates daily and monthly return statistics for one stock.
func (a *Analyzer) Ticker(ctx context.Context, ticker string) (*TickerReport, error) {
	start, end := a.window()
	s, err := a.Collector.Series(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	daily, err := forecast.Estimate(s)
	if err != nil {
		return nil, fmt.Errorf("estimate daily returns: %w", err)
	}
	monthly, err := forecast.Estimate(s.Monthly())
	if err != nil {
		return nil, fmt.Errorf("estimate monthly returns: %w", err)
	}
	metrics, err := calculator.Metrics(s)
	if err != nil {
		return nil, err
	}

	st, ok := model.LookupStock(ticker)
	if !ok {
		st = model.Stock{Ticker: ticker, Name: ticker}
	}
	rep := &TickerReport{Stock: st, Monthly: monthly, Daily: daily, Metrics: metrics}
	if f, ok := a.Fundamentals[ticker]; ok {
		rep.Fundamentals = &f
	}
	var pe float64
	if rep.Fundamentals != nil {
		pe = rep.Fundamentals.PERatio
	}
	if rep.Mood, err = calculator.CalculateMood(s, pe); err != nil {
		log.WithField("ticker", ticker).Warnf("mood unavailable: %v", err)
	}
	return rep, nil
}

// ComparisonRow is the risk/return profile of one stock.
type ComparisonRow struct {
	Ticker        string  `csv:"ticker"`
	AvgReturnPct  float64 `csv:"avg_return_pct"`
	RiskPct       float64 `csv:"risk_pct"`
	MaxDrawdown   float64 `csv:"max_drawdown_pct"`
	TotalReturn   float64 `csv:"total_return_pct"`
	PeriodHigh    float64 `csv:"period_high"`
	PeriodLow     float64 `csv:"period_low"`
	DCAReturnPct  float64 `csv:"dca_return_pct"`
	DCAFinalValue float64 `csv:"dca_final_value"`
}

// Comparison contrasts several stocks over the same window.
type Comparison struct {
	Rows        []ComparisonRow
	Tickers     []string
	Correlation [][]float64
	Normalized  map[string][]float64
	// DCA holds the month-by-month investment simulation per ticker.
	DCA map[string][]calculator.DCAPoint
}

// Compare profiles each stock and correlates their prices.
// monthlyInvestment drives the historical monthly-investment simulation.
func (a *Analyzer) Compare(ctx context.Context, tickers []string, monthlyInvestment float64) (*Comparison, error) {
	start, end := a.window()
	series, err := a.Collector.CollectAll(ctx, tickers, start, end)
	if err != nil {
		return nil, fmt.Errorf("collect prices: %w", err)
	}

	cmp := &Comparison{
		Normalized: make(map[string][]float64, len(series)),
		DCA:        make(map[string][]calculator.DCAPoint, len(series)),
	}
	for _, t := range tickers {
		s := series[t]
		rs, err := forecast.Estimate(s)
		if err != nil {
			return nil, fmt.Errorf("estimate %s: %w", t, err)
		}
		high, low, err := calculator.CalculateRange(s)
		if err != nil {
			return nil, fmt.Errorf("price range %s: %w", t, err)
		}
		dca := calculator.SimulateDCA(s, monthlyInvestment)
		row := ComparisonRow{
			Ticker:       t,
			AvgReturnPct: rs.MeanReturn * 100,
			RiskPct:      rs.Volatility * 100,
			MaxDrawdown:  calculator.MaxDrawdown(s.Closes()) * 100,
			TotalReturn:  calculator.TotalReturn(s.Closes()),
			PeriodHigh:   high,
			PeriodLow:    low,
			DCAReturnPct: calculator.DCAReturn(dca),
		}
		if len(dca) > 0 {
			row.DCAFinalValue = dca[len(dca)-1].Value
		}
		cmp.Rows = append(cmp.Rows, row)
		cmp.DCA[t] = dca
		cmp.Normalized[t] = s.Rebased(100)
	}

	if len(tickers) > 1 {
		cmp.Tickers, cmp.Correlation, err = calculator.CorrelationMatrix(series)
		if err != nil {
			return nil, fmt.Errorf("correlation: %w", err)
		}
	}
	return cmp, nil
}

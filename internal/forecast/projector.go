package forecast

// ProjectionPoint is one month of a projection.
type ProjectionPoint struct {
	Month    int     `csv:"month"`
	Expected float64 `csv:"expected"`
	Lower    float64 `csv:"lower"`
	Upper    float64 `csv:"upper"`
	Invested float64 `csv:"invested"`
}

// ProjectionPath is an immutable month-by-month projection.
// Confidence is zero until ConfidenceBand populates the bounds.
type ProjectionPath struct {
	Points            []ProjectionPoint
	BlendedReturn     float64
	BlendedVolatility float64
	Confidence        float64
}

// Final returns the last point. ok is false for an empty path.
func (p ProjectionPath) Final() (pt ProjectionPoint, ok bool) {
	if len(p.Points) == 0 {
		return ProjectionPoint{}, false
	}
	return p.Points[len(p.Points)-1], true
}

// BlendedReturn is the weight-averaged mean return of the holdings.
func BlendedReturn(cfg *PortfolioConfig, statsMap map[string]ReturnStats) (float64, error) {
	return blend(cfg, statsMap, func(rs ReturnStats) float64 { return rs.MeanReturn })
}

// BlendedVolatility is the weight-averaged volatility of the holdings.
// It ignores correlation, so it bounds the true portfolio volatility from above.
func BlendedVolatility(cfg *PortfolioConfig, statsMap map[string]ReturnStats) (float64, error) {
	return blend(cfg, statsMap, func(rs ReturnStats) float64 { return rs.Volatility })
}

func blend(cfg *PortfolioConfig, statsMap map[string]ReturnStats, field func(ReturnStats) float64) (float64, error) {
	if cfg == nil {
		return 0, configErrorf("portfolio", "config is nil")
	}
	total := 0.0
	for _, h := range cfg.holdings {
		rs, ok := statsMap[h.Ticker]
		if !ok {
			return 0, configErrorf("stats", "no return statistics for %s", h.Ticker)
		}
		total += h.Weight * field(rs)
	}
	return total, nil
}

// Project compounds monthly contributions at the blended expected return.
// Each month the contribution is added first, then the whole balance grows.
// Bounds of the returned path equal the expected value.
func Project(cfg *PortfolioConfig, statsMap map[string]ReturnStats) (ProjectionPath, error) {
	r, err := BlendedReturn(cfg, statsMap)
	if err != nil {
		return ProjectionPath{}, err
	}
	vol, err := BlendedVolatility(cfg, statsMap)
	if err != nil {
		return ProjectionPath{}, err
	}

	points := make([]ProjectionPoint, cfg.horizonMonths)
	value := cfg.initialAmount
	invested := cfg.initialAmount
	for m := 1; m <= cfg.horizonMonths; m++ {
		value = (value + cfg.monthlyContribution) * (1 + r)
		invested += cfg.monthlyContribution
		points[m-1] = ProjectionPoint{
			Month:    m,
			Expected: value,
			Lower:    value,
			Upper:    value,
			Invested: invested,
		}
	}

	return ProjectionPath{
		Points:            points,
		BlendedReturn:     r,
		BlendedVolatility: vol,
	}, nil
}

// Returns summarises a projection at its horizon.
type Returns struct {
	Invested   float64
	Gain       float64
	GainPct    float64
	FinalValue float64
}

// ForecastReturns reports invested capital and expected gain at the end of the path.
func ForecastReturns(path ProjectionPath) Returns {
	last, ok := path.Final()
	if !ok {
		return Returns{}
	}
	out := Returns{
		Invested:   last.Invested,
		FinalValue: last.Expected,
		Gain:       last.Expected - last.Invested,
	}
	if last.Invested != 0 {
		out.GainPct = out.Gain / last.Invested * 100
	}
	return out
}

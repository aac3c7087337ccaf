package forecast

import (
	"math"
	"strings"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.
const WeightTolerance = 1e-9

// DefaultMaxHoldings caps the number of tickers in a portfolio.
const DefaultMaxHoldings = 15

// Holding is one ticker and its allocation weight.
type Holding struct {
	Ticker string  `yaml:"ticker"`
	Weight float64 `yaml:"weight"`
}

// PortfolioConfig is a validated portfolio and projection setup.
// Construct it with NewPortfolioConfig; the zero value is not usable.
type PortfolioConfig struct {
	holdings            []Holding
	monthlyContribution float64
	horizonMonths       int
	initialAmount       float64
}

// Options tunes PortfolioConfig construction.
type Options struct {
	MaxHoldings   int
	InitialAmount float64
}

// DefaultOptions returns the default construction options.
func DefaultOptions() *Options {
	return &Options{MaxHoldings: DefaultMaxHoldings}
}

// NewPortfolioConfig validates and builds a PortfolioConfig.
// A nil opts uses DefaultOptions.
func NewPortfolioConfig(holdings []Holding, monthlyContribution float64, horizonMonths int, opts *Options) (*PortfolioConfig, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(holdings) == 0 {
		return nil, configErrorf("holdings", "at least one ticker is required")
	}
	if opts.MaxHoldings > 0 && len(holdings) > opts.MaxHoldings {
		return nil, configErrorf("holdings", "%d tickers selected, at most %d allowed", len(holdings), opts.MaxHoldings)
	}

	seen := make(map[string]bool, len(holdings))
	sum := 0.0
	out := make([]Holding, len(holdings))
	for i, h := range holdings {
		ticker := strings.TrimSpace(h.Ticker)
		if ticker == "" {
			return nil, configErrorf("holdings", "ticker at position %d is empty", i)
		}
		if seen[ticker] {
			return nil, configErrorf("holdings", "ticker %s listed more than once", ticker)
		}
		seen[ticker] = true
		if math.IsNaN(h.Weight) || h.Weight < 0 {
			return nil, configErrorf("weights", "weight for %s must be non-negative, got %v", ticker, h.Weight)
		}
		sum += h.Weight
		out[i] = Holding{Ticker: ticker, Weight: h.Weight}
	}
	if math.Abs(sum-1) > WeightTolerance {
		return nil, configErrorf("weights", "weights sum to %.12f, want 1", sum)
	}

	if horizonMonths <= 0 {
		return nil, configErrorf("horizon", "must be positive, got %d", horizonMonths)
	}
	if math.IsNaN(monthlyContribution) || monthlyContribution < 0 {
		return nil, configErrorf("monthly contribution", "must be non-negative, got %v", monthlyContribution)
	}
	if math.IsNaN(opts.InitialAmount) || opts.InitialAmount < 0 {
		return nil, configErrorf("initial amount", "must be non-negative, got %v", opts.InitialAmount)
	}

	return &PortfolioConfig{
		holdings:            out,
		monthlyContribution: monthlyContribution,
		horizonMonths:       horizonMonths,
		initialAmount:       opts.InitialAmount,
	}, nil
}

// EqualWeights spreads weight evenly across tickers, giving any rounding residue to the last one.
func EqualWeights(tickers []string) []Holding {
	if len(tickers) == 0 {
		return nil
	}
	w := 1.0 / float64(len(tickers))
	out := make([]Holding, len(tickers))
	rest := 1.0
	for i, t := range tickers {
		out[i] = Holding{Ticker: t, Weight: w}
		if i < len(tickers)-1 {
			rest -= w
		}
	}
	out[len(out)-1].Weight = rest
	return out
}

// Holdings returns a copy of the holdings.
func (c *PortfolioConfig) Holdings() []Holding {
	out := make([]Holding, len(c.holdings))
	copy(out, c.holdings)
	return out
}

// Tickers returns the selected tickers in configuration order.
func (c *PortfolioConfig) Tickers() []string {
	out := make([]string, len(c.holdings))
	for i, h := range c.holdings {
		out[i] = h.Ticker
	}
	return out
}

func (c *PortfolioConfig) MonthlyContribution() float64 { return c.monthlyContribution }
func (c *PortfolioConfig) HorizonMonths() int           { return c.horizonMonths }
func (c *PortfolioConfig) InitialAmount() float64       { return c.initialAmount }

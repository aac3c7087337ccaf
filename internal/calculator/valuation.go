package calculator

import "JSEInsight/internal/model"

// PortfolioValuation weights P/E and dividend yield by market cap across the tickers.
// Holdings without a market cap are skipped; a ratio is averaged only over the holdings that report it.
func PortfolioValuation(tickers []string, fundamentals map[string]model.Fundamentals) model.Valuation {
	var v model.Valuation
	var peWeight, yieldWeight float64
	for _, t := range tickers {
		f, ok := fundamentals[t]
		if !ok || f.MarketCap <= 0 {
			continue
		}
		v.Covered++
		v.TotalMarketCap += f.MarketCap
		if f.PERatio > 0 {
			v.WeightedPE += f.PERatio * f.MarketCap
			peWeight += f.MarketCap
		}
		if f.DividendYield > 0 {
			v.WeightedDividendYield += f.DividendYield * f.MarketCap
			yieldWeight += f.MarketCap
		}
	}
	if peWeight > 0 {
		v.WeightedPE /= peWeight
	}
	if yieldWeight > 0 {
		v.WeightedDividendYield /= yieldWeight
	}
	return v
}

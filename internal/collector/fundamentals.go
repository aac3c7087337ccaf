package collector

import (
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"JSEInsight/internal/model"
)

// LoadFundamentals reads a CSV with ticker, market_cap, pe_ratio and dividend_yield columns.
// Empty ratio cells read as zero, which callers treat as unknown.
func LoadFundamentals(path string) (map[string]model.Fundamentals, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var rows []*model.Fundamentals
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make(map[string]model.Fundamentals, len(rows))
	for i, r := range rows {
		ticker := model.NormalizeTicker(r.Ticker)
		if ticker == "" {
			return nil, fmt.Errorf("%s row %d: empty ticker", path, i+1)
		}
		for name, v := range map[string]float64{"market_cap": r.MarketCap, "pe_ratio": r.PERatio, "dividend_yield": r.DividendYield} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%s row %d: %s %v must be finite and non-negative", path, i+1, name, v)
			}
		}
		r.Ticker = ticker
		out[ticker] = *r
	}
	log.WithField("stocks", len(out)).Infof("fundamentals loaded from %s", path)
	return out, nil
}

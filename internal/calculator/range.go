package calculator

import (
	"errors"
	"math"
	"time"

	"JSEInsight/internal/model"
)

// Calculate52WeekRange scans the trailing year of the series and returns the high and low close.
func Calculate52WeekRange(series model.PriceSeries) (high, low float64, err error) {
	last, ok := series.Last()
	if !ok {
		return 0, 0, errors.New("no prices provided")
	}
	return priceRange(series.Between(last.Time.AddDate(-1, 0, 0), time.Time{}))
}

// CalculateRange returns the high and low close over the whole series.
func CalculateRange(series model.PriceSeries) (high, low float64, err error) {
	if series.Len() == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	return priceRange(series)
}

func priceRange(series model.PriceSeries) (high, low float64, err error) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range series.Points {
		if p.Price > high {
			high = p.Price
		}
		if p.Price < low {
			low = p.Price
		}
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction of the peak.
func MaxDrawdown(prices []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := (peak - p) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

package calculator

import (
	"errors"

	"JSEInsight/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateMA50 returns the 50-day simple moving average of a daily series.
func CalculateMA50(series model.PriceSeries) (float64, error) {
	return CalculateSMA(series.Closes(), 50)
}

// CalculateMA200 returns the 200-day simple moving average of a daily series.
func CalculateMA200(series model.PriceSeries) (float64, error) {
	return CalculateSMA(series.Closes(), 200)
}

// RollingSMA returns the moving average ending at each index; entries before the first full window are 0.
func RollingSMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

package collector

import (
	"context"
	"time"

	"JSEInsight/internal/model"
)

// Fetcher defines the interface for fetching price history.
// Failures are reported as *forecast.DataUnavailableError.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}

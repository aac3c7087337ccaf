package recorder

import (
	"time"

	"github.com/google/uuid"

	"JSEInsight/internal/forecast"
)

// EstimateRecord is one ticker's return statistics at a point in time.
type EstimateRecord struct {
	RunID string
	Time  time.Time
	Stats forecast.ReturnStats
}

// ProjectionRecord summarises one forecast run.
type ProjectionRecord struct {
	RunID               string
	Time                time.Time
	Tickers             []string
	MonthlyContribution float64
	HorizonMonths       int
	Confidence          float64
	BlendedReturn       float64
	BlendedVolatility   float64
	FinalExpected       float64
	FinalLower          float64
	FinalUpper          float64
	Invested            float64
	Trigger             string // "SCHEDULED", "MANUAL" or "CLI"
}

// NewProjectionRecord extracts the horizon values of a banded path.
func NewProjectionRecord(cfg *forecast.PortfolioConfig, path forecast.ProjectionPath, trigger string) *ProjectionRecord {
	rec := &ProjectionRecord{
		RunID:               uuid.New().String(),
		Time:                time.Now(),
		Tickers:             cfg.Tickers(),
		MonthlyContribution: cfg.MonthlyContribution(),
		HorizonMonths:       cfg.HorizonMonths(),
		Confidence:          path.Confidence,
		BlendedReturn:       path.BlendedReturn,
		BlendedVolatility:   path.BlendedVolatility,
		Trigger:             trigger,
	}
	if last, ok := path.Final(); ok {
		rec.FinalExpected = last.Expected
		rec.FinalLower = last.Lower
		rec.FinalUpper = last.Upper
		rec.Invested = last.Invested
	}
	return rec
}

// Estimates links the per-ticker statistics of a run to it.
func (r *ProjectionRecord) Estimates(stats map[string]forecast.ReturnStats) []*EstimateRecord {
	out := make([]*EstimateRecord, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		s := stats[t]
		if s.Ticker == "" {
			s.Ticker = t
		}
		out = append(out, &EstimateRecord{RunID: r.RunID, Time: r.Time, Stats: s})
	}
	return out
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordEstimate(rec *EstimateRecord) error
	RecordProjection(rec *ProjectionRecord) error
	RecentProjections(limit int) ([]ProjectionRecord, error)
	Close() error
}

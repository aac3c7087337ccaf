package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSeries is returned when a price series breaks its ordering or positivity invariants.
var ErrInvalidSeries = errors.New("invalid price series")

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is a single (timestamp, price) observation.
// Volume is zero when the source does not report it.
type PricePoint struct {
	Time   time.Time `csv:"date" json:"time"`
	Price  float64   `csv:"close" json:"price"`
	Volume float64   `csv:"volume" json:"volume,omitempty"`
}

// PriceSeries holds the price history of one ticker, oldest first.
// Timestamps are strictly increasing and prices positive; callers must not mutate Points.
type PriceSeries struct {
	Ticker    string
	Points    []PricePoint
	FetchedAt time.Time
}

// SeriesFromBars builds a PriceSeries from candlestick closes.
func SeriesFromBars(ticker string, bars []OHLCV) PriceSeries {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Time: b.Time, Price: b.Close, Volume: b.Volume}
	}
	return PriceSeries{Ticker: ticker, Points: points, FetchedAt: time.Now()}
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the prices in chronological order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Price
	}
	return closes
}

// Last returns the most recent point. ok is false for an empty series.
func (s PriceSeries) Last() (p PricePoint, ok bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Validate checks that timestamps strictly increase and prices are positive and finite.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("%w: %s price %v at %s is not finite",
				ErrInvalidSeries, s.Ticker, p.Price, p.Time.Format("2006-01-02"))
		}
		if p.Price <= 0 {
			return fmt.Errorf("%w: %s price %.4f at %s is not positive",
				ErrInvalidSeries, s.Ticker, p.Price, p.Time.Format("2006-01-02"))
		}
		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("%w: %s timestamps not increasing at index %d", ErrInvalidSeries, s.Ticker, i)
		}
	}
	return nil
}

// Between returns the sub-series with start <= t <= end. A zero bound is open.
func (s PriceSeries) Between(start, end time.Time) PriceSeries {
	out := PriceSeries{Ticker: s.Ticker, FetchedAt: s.FetchedAt}
	for _, p := range s.Points {
		if !start.IsZero() && p.Time.Before(start) {
			continue
		}
		if !end.IsZero() && p.Time.After(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Monthly resamples the series to the last observation of each calendar month.
func (s PriceSeries) Monthly() PriceSeries {
	out := PriceSeries{Ticker: s.Ticker, FetchedAt: s.FetchedAt}
	for i, p := range s.Points {
		if i+1 < len(s.Points) {
			next := s.Points[i+1].Time
			if next.Year() == p.Time.Year() && next.Month() == p.Time.Month() {
				continue
			}
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Rebased returns the prices scaled so that the first point equals base.
func (s PriceSeries) Rebased(base float64) []float64 {
	if len(s.Points) == 0 || s.Points[0].Price == 0 {
		return nil
	}
	first := s.Points[0].Price
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price * base / first
	}
	return out
}

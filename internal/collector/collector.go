package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Drift  float64 // per-point growth applied to generated series
	Volume float64 // constant volume of generated points
	Data   map[string]model.PriceSeries
	Errors map[string]error

	mu    sync.Mutex
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if err, ok := m.Errors[ticker]; ok {
		return model.PriceSeries{}, &forecast.DataUnavailableError{Ticker: ticker, Err: err}
	}
	if s, ok := m.Data[ticker]; ok {
		return s.Between(start, end), nil
	}
	return generateMockSeries(ticker, m.Price, m.Drift, m.Volume, start, end), nil
}

func generateMockSeries(ticker string, basePrice, drift, volume float64, start, end time.Time) model.PriceSeries {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	var points []model.PricePoint
	p := basePrice
	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		points = append(points, model.PricePoint{Time: t, Price: p, Volume: volume})
		p *= 1 + drift
	}
	return model.PriceSeries{Ticker: ticker, Points: points, FetchedAt: time.Now()}
}

type cacheEntry struct {
	series  model.PriceSeries
	expires time.Time
}

// Collector fetches price histories with a TTL cache and bounded parallelism.
type Collector struct {
	Fetcher     Fetcher
	TTL         time.Duration
	Concurrency int

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, ttl time.Duration) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		TTL:         ttl,
		Concurrency: 4,
		cache:       make(map[string]cacheEntry),
		now:         time.Now,
	}
}

func cacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Series returns the price history of one ticker, served from cache while fresh.
func (c *Collector) Series(ctx context.Context, ticker string, start, end time.Time) (model.PriceSeries, error) {
	key := cacheKey(ticker, start, end)

	c.mu.Lock()
	if e, ok := c.cache[key]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.series, nil
	}
	c.mu.Unlock()

	series, err := c.Fetcher.Fetch(ctx, ticker, start, end)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if series.Ticker == "" {
		series.Ticker = ticker
	}
	log.WithFields(log.Fields{"ticker": ticker, "source": c.Fetcher.Name()}).
		Debugf("fetched %d points", series.Len())

	if c.TTL > 0 {
		c.mu.Lock()
		c.cache[key] = cacheEntry{series: series, expires: c.now().Add(c.TTL)}
		c.mu.Unlock()
	}
	return series, nil
}

// CollectAll fetches every ticker concurrently. The first failure cancels the rest.
func (c *Collector) CollectAll(ctx context.Context, tickers []string, start, end time.Time) (map[string]model.PriceSeries, error) {
	g, ctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}

	var mu sync.Mutex
	out := make(map[string]model.PriceSeries, len(tickers))
	for _, t := range tickers {
		g.Go(func() error {
			s, err := c.Series(ctx, t, start, end)
			if err != nil {
				return err
			}
			mu.Lock()
			out[t] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops every cached series.
func (c *Collector) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

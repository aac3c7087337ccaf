package model

// HistoricalMetrics holds the descriptive statistics computed for one ticker.
type HistoricalMetrics struct {
	Ticker       string
	CurrentPrice float64
	Mean         float64
	StdDev       float64
	Min          float64
	Max          float64
	High52w      float64
	Low52w       float64
	Position52w  float64 // 0.0 ~ 1.0
	MA50         float64
	MA200        float64
	MaxDrawdown  float64 // fraction of peak, 0.0 ~ 1.0
}

// FactorScore is one scored input of a composite indicator.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Mood summarises how a stock has behaved over the last few weeks.
type Mood struct {
	Emoji        string
	Label        string
	Confidence   float64 // 0.5 ~ 1.0, share of factors giving a clear reading
	PriceChange  float64 // percent over the window
	VolumeChange float64 // percent over the window, 0 when volume is unknown
	Volatility   float64 // annualised percent
	RSI          float64
	PERatio      float64
	Factors      []FactorScore
	Explanation  string
}

// Fundamentals are the valuation figures of one stock.
type Fundamentals struct {
	Ticker        string  `csv:"ticker"`
	MarketCap     float64 `csv:"market_cap"`
	PERatio       float64 `csv:"pe_ratio"`
	DividendYield float64 `csv:"dividend_yield"` // fraction, 0.035 is 3.5%
}

// Valuation aggregates fundamentals across a portfolio, weighted by market cap.
type Valuation struct {
	TotalMarketCap        float64
	WeightedPE            float64
	WeightedDividendYield float64
	Covered               int // holdings with a usable market cap
}

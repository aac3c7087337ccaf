package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"JSEInsight/internal/model"
)

const (
	// MoodWindow is the number of trailing sessions the mood looks at.
	MoodWindow = 20
	// MarketPE stands in for a missing P/E ratio.
	MarketPE = 15.0
	// RSIPeriod is the lookback of the RSI reported with the mood.
	RSIPeriod = 14

	tradingDaysPerYear = 252
	factorWeight       = 0.25
)

type moodReading struct {
	price  float64 // % change over the window
	volume float64 // % change over the window
	vol    float64 // annualised %
	pe     float64
}

// Rules are checked in order; the first match wins.
var moodRules = []struct {
	emoji string
	label string
	match func(r moodReading) bool
}{
	{"🚀", "Extremely Bullish", func(r moodReading) bool {
		return r.price > 10 && r.volume > 0 && r.vol < 30 && r.pe < 25
	}},
	{"🆘", "Extremely Bearish", func(r moodReading) bool {
		return r.price < -10 && r.volume < -20 && r.vol > 40
	}},
	{"😊", "Bullish", func(r moodReading) bool { return r.price > 5 && r.volume > -10 }},
	{"🙂", "Mildly Positive", func(r moodReading) bool { return r.price > 0 && r.volume > -20 }},
	{"😐", "Neutral", func(r moodReading) bool { return math.Abs(r.price) < 3 && math.Abs(r.volume) < 20 }},
	{"🙁", "Mildly Negative", func(r moodReading) bool { return r.price < 0 && r.price > -5 }},
	{"😟", "Bearish", func(r moodReading) bool { return r.price < -5 || r.volume < -20 }},
}

// CalculateMood reads the last MoodWindow points of a daily series.
// A non-positive peRatio is treated as unknown and replaced by MarketPE.
func CalculateMood(series model.PriceSeries, peRatio float64) (*model.Mood, error) {
	if series.Len() < 3 {
		return nil, fmt.Errorf("mood needs at least 3 prices, got %d", series.Len())
	}
	window := series.Points
	if len(window) > MoodWindow {
		window = window[len(window)-MoodWindow:]
	}
	first, last := window[0], window[len(window)-1]

	r := moodReading{pe: peRatio}
	if r.pe <= 0 || math.IsNaN(r.pe) {
		r.pe = MarketPE
	}
	r.price = (last.Price - first.Price) / first.Price * 100
	if first.Volume > 0 {
		r.volume = (last.Volume - first.Volume) / first.Volume * 100
	}

	changes := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		changes = append(changes, window[i].Price/window[i-1].Price-1)
	}
	sd, err := stats.StandardDeviationSample(changes)
	if err != nil {
		return nil, fmt.Errorf("mood volatility: %w", err)
	}
	r.vol = sd * math.Sqrt(tradingDaysPerYear) * 100

	rsi, err := CalculateRSI(series.Closes(), RSIPeriod)
	if err != nil {
		return nil, err
	}

	mood := &model.Mood{
		Emoji:        "😐",
		Label:        "Neutral",
		Confidence:   0.5,
		PriceChange:  r.price,
		VolumeChange: r.volume,
		Volatility:   r.vol,
		RSI:          rsi,
		PERatio:      r.pe,
		Factors:      moodFactors(r, first.Volume > 0, peRatio > 0),
		Explanation:  explainMood(r, rsi),
	}
	for _, rule := range moodRules {
		if rule.match(r) {
			mood.Emoji, mood.Label = rule.emoji, rule.label
			mood.Confidence = 0
			for _, f := range mood.Factors {
				mood.Confidence += f.Weighted
			}
			break
		}
	}
	return mood, nil
}

func factor(name string, clear bool, commentary string) model.FactorScore {
	raw := 0.5
	if clear {
		raw = 1
	}
	return model.FactorScore{Name: name, RawScore: raw, Weight: factorWeight, Weighted: raw * factorWeight, Commentary: commentary}
}

// moodFactors scores how decisive each reading is: 1 for a clear signal, 0.5 otherwise.
func moodFactors(r moodReading, hasVolume, hasPE bool) []model.FactorScore {
	volume := "volume n/a"
	if hasVolume {
		volume = fmt.Sprintf("%+.1f%%", r.volume)
	}
	pe := fmt.Sprintf("P/E %.1f", r.pe)
	if !hasPE {
		pe += " (market average)"
	}
	return []model.FactorScore{
		factor("Price trend", math.Abs(r.price) > 5, fmt.Sprintf("%+.1f%% over %d sessions", r.price, MoodWindow)),
		factor("Volume trend", math.Abs(r.volume) > 10, volume),
		factor("Volatility", r.vol < 30, fmt.Sprintf("%.1f%% annualised", r.vol)),
		factor("Valuation", r.pe > 10 && r.pe < 20, pe),
	}
}

func explainMood(r moodReading, rsi float64) string {
	var parts []string
	if r.price != 0 {
		dir := "increased"
		if r.price < 0 {
			dir = "decreased"
		}
		parts = append(parts, fmt.Sprintf("Price %s by %.1f%%", dir, math.Abs(r.price)))
	}
	if math.Abs(r.volume) > 10 {
		dir := "increased"
		if r.volume < 0 {
			dir = "decreased"
		}
		parts = append(parts, fmt.Sprintf("Trading volume %s significantly", dir))
	}
	switch {
	case r.vol > 30:
		parts = append(parts, "Stock showing high volatility")
	case r.vol < 15:
		parts = append(parts, "Stock showing low volatility")
	}
	switch {
	case r.pe < 15:
		parts = append(parts, "P/E ratio suggests potential undervaluation")
	case r.pe > 25:
		parts = append(parts, "P/E ratio suggests potential overvaluation")
	}
	switch {
	case rsi >= 70:
		parts = append(parts, fmt.Sprintf("RSI %.0f signals overbought", rsi))
	case rsi <= 30:
		parts = append(parts, fmt.Sprintf("RSI %.0f signals oversold", rsi))
	}
	return strings.Join(parts, " • ")
}

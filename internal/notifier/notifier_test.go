package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = url
	tn.RetryBase = time.Millisecond
	return tn
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send("<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStartPolling(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		served  int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&served, 1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /universe "}},{"update_id":8}]}`))
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			time.Sleep(10 * time.Millisecond)
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body["text"])
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var commands []string
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(cmd string) string {
			commands = append(commands, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(replies) == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"/universe"}, commands)
	assert.Equal(t, []string{"reply to /universe"}, replies)
}

func sampleReport(t *testing.T) *analyzer.Report {
	t.Helper()
	cfg, err := forecast.NewPortfolioConfig(forecast.EqualWeights([]string{"NPN.JO", "SOL.JO"}), 1000, 12, nil)
	require.NoError(t, err)
	stats := map[string]forecast.ReturnStats{
		"NPN.JO": {MeanReturn: 0.012, Volatility: 0.03},
		"SOL.JO": {MeanReturn: 0.008, Volatility: 0.01},
	}
	path, err := forecast.Project(cfg, stats)
	require.NoError(t, err)
	path, err = forecast.ConfidenceBand(path, path.BlendedVolatility, 0.9)
	require.NoError(t, err)
	return &analyzer.Report{
		GeneratedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Portfolio:   cfg,
		Stats:       stats,
		Metrics: map[string]*model.HistoricalMetrics{
			"SOL.JO": {Ticker: "SOL.JO", CurrentPrice: 80, MA200: 100},
			"NPN.JO": {Ticker: "NPN.JO", CurrentPrice: 3000, MA200: 2900},
		},
		Path:    path,
		Returns: forecast.ForecastReturns(path),
	}
}

func TestFormatForecastDigest(t *testing.T) {
	msg := FormatForecastDigest(sampleReport(t))
	assert.Contains(t, msg, "JSE Insight forecast</b> | 2025-07-01")
	assert.Contains(t, msg, "for 12 months")
	assert.Contains(t, msg, "NPN.JO 50%")
	assert.Contains(t, msg, "Blended: +1.00%/m ±2.00%")
	assert.Contains(t, msg, "Month 12:")
	assert.Contains(t, msg, "90% range")
	assert.Contains(t, msg, "SOL.JO trades 20.0% below its MA200")
	assert.NotContains(t, msg, "NPN.JO trades")
}

func TestFormatTickerStats(t *testing.T) {
	msg := FormatTickerStats(&analyzer.TickerReport{
		Stock:   model.Stock{Ticker: "ABG.JO", Name: "Absa Group", Sector: "Financial Services"},
		Monthly: forecast.ReturnStats{MeanReturn: 0.01, Volatility: 0.05},
		Metrics: &model.HistoricalMetrics{CurrentPrice: 180, Position52w: 0.25, MaxDrawdown: 0.3},
	})
	assert.Contains(t, msg, "<b>Absa Group</b> (ABG.JO)")
	assert.Contains(t, msg, "Monthly: +1.00% ±5.00%")
	assert.Contains(t, msg, "(25%)")
	assert.Contains(t, msg, "Max drawdown: 30.0%")
	assert.NotContains(t, msg, "confidence")
}

func TestFormatTickerStats_Mood(t *testing.T) {
	msg := FormatTickerStats(&analyzer.TickerReport{
		Stock:        model.Stock{Ticker: "GFI.JO", Name: "Gold Fields"},
		Metrics:      &model.HistoricalMetrics{CurrentPrice: 300},
		Fundamentals: &model.Fundamentals{PERatio: 9.5, DividendYield: 0.04},
		Mood: &model.Mood{Emoji: "🆘", Label: "Extremely Bearish", Confidence: 0.75, RSI: 22,
			Explanation: "Price decreased by 12.0% • P/E < 10"},
	})
	assert.Contains(t, msg, "🆘 <b>Extremely Bearish</b> (confidence 75%, RSI 22)")
	assert.Contains(t, msg, "P/E: 9.5 | Yield: 4.00%")
	assert.Contains(t, msg, "P/E &lt; 10")
}

func TestFormatForecastDigest_Valuation(t *testing.T) {
	rep := sampleReport(t)
	rep.Valuation = &model.Valuation{WeightedPE: 14.2, WeightedDividendYield: 0.045, Covered: 2}
	assert.Contains(t, FormatForecastDigest(rep), "P/E 14.2, yield 4.50% (cap-weighted)")
	assert.NotContains(t, FormatForecastDigest(sampleReport(t)), "cap-weighted")
}

func TestFormatUniverse(t *testing.T) {
	msg := FormatUniverse()
	for _, sector := range model.Sectors() {
		assert.Contains(t, msg, "<b>"+sector+"</b>")
	}
	assert.Contains(t, msg, "GFI.JO Gold Fields")
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "❌ forecast failed: a &lt; b", FormatError("forecast", errors.New("a < b")))
}

func TestLogNotifier(t *testing.T) {
	var n Notifier = LogNotifier{}
	assert.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
}

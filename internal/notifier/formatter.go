package notifier

import (
	"fmt"
	"html"
	"strings"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/model"
	"JSEInsight/internal/report"
)

// FormatForecastDigest formats a forecast run into a Telegram message.
func FormatForecastDigest(rep *analyzer.Report) string {
	var b strings.Builder
	cfg := rep.Portfolio

	b.WriteString(fmt.Sprintf("📊 <b>JSE Insight forecast</b> | %s\n\n", rep.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Contribution: %s/month for %d months\n", report.Rand(cfg.MonthlyContribution()), cfg.HorizonMonths()))
	if cfg.InitialAmount() > 0 {
		b.WriteString(fmt.Sprintf("Initial amount: %s\n", report.Rand(cfg.InitialAmount())))
	}
	b.WriteString("\n📈 <b>Holdings:</b>\n")
	for _, h := range cfg.Holdings() {
		s := rep.Stats[h.Ticker]
		b.WriteString(fmt.Sprintf("  %s %.0f%%: %s/m ±%.2f%%\n",
			html.EscapeString(h.Ticker), h.Weight*100, report.Pct(s.MeanReturn), s.Volatility*100))
	}
	b.WriteString(fmt.Sprintf("  Blended: %s/m ±%.2f%%\n\n", report.Pct(rep.Path.BlendedReturn), rep.Path.BlendedVolatility*100))

	if last, ok := rep.Path.Final(); ok {
		b.WriteString(fmt.Sprintf("💰 <b>Month %d:</b> %s\n", last.Month, report.Rand(last.Expected)))
		b.WriteString(fmt.Sprintf("   %.0f%% range: %s to %s\n", rep.Path.Confidence*100, report.Rand(last.Lower), report.Rand(last.Upper)))
	}
	r := rep.Returns
	b.WriteString(fmt.Sprintf("   Invested %s, gain %s (%+.1f%%)\n", report.Rand(r.Invested), report.Rand(r.Gain), r.GainPct))
	if v := rep.Valuation; v != nil {
		b.WriteString(fmt.Sprintf("   P/E %.1f, yield %.2f%% (cap-weighted)\n", v.WeightedPE, v.WeightedDividendYield*100))
	}

	for _, t := range cfg.Tickers() {
		m, ok := rep.Metrics[t]
		if !ok || m.MA200 == 0 || m.CurrentPrice >= m.MA200*0.9 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n⚠️ %s trades %.1f%% below its MA200", html.EscapeString(t), (1-m.CurrentPrice/m.MA200)*100))
	}
	return b.String()
}

// FormatTickerStats formats the statistics of a single stock.
func FormatTickerStats(rep *analyzer.TickerReport) string {
	var b strings.Builder
	m := rep.Metrics
	b.WriteString(fmt.Sprintf("📦 <b>%s</b> (%s)\n", html.EscapeString(rep.Stock.Name), html.EscapeString(rep.Stock.Ticker)))
	if rep.Stock.Sector != "" {
		b.WriteString(fmt.Sprintf("Sector: %s\n", html.EscapeString(rep.Stock.Sector)))
	}
	b.WriteString(fmt.Sprintf("\nPrice: %s\n", report.Rand(m.CurrentPrice)))
	b.WriteString(fmt.Sprintf("Daily: %s ±%.2f%%\n", report.Pct(rep.Daily.MeanReturn), rep.Daily.Volatility*100))
	b.WriteString(fmt.Sprintf("Monthly: %s ±%.2f%%\n", report.Pct(rep.Monthly.MeanReturn), rep.Monthly.Volatility*100))
	b.WriteString(fmt.Sprintf("52w: %s to %s (%.0f%%)\n", report.Rand(m.Low52w), report.Rand(m.High52w), m.Position52w*100))
	b.WriteString(fmt.Sprintf("MA50: %s | MA200: %s\n", report.Rand(m.MA50), report.Rand(m.MA200)))
	b.WriteString(fmt.Sprintf("Max drawdown: %.1f%%\n", m.MaxDrawdown*100))
	if f := rep.Fundamentals; f != nil {
		b.WriteString(fmt.Sprintf("P/E: %.1f | Yield: %.2f%%\n", f.PERatio, f.DividendYield*100))
	}
	if md := rep.Mood; md != nil {
		b.WriteString(fmt.Sprintf("\n%s <b>%s</b> (confidence %.0f%%, RSI %.0f)\n", md.Emoji, md.Label, md.Confidence*100, md.RSI))
		if md.Explanation != "" {
			b.WriteString(html.EscapeString(md.Explanation) + "\n")
		}
	}
	return b.String()
}

// FormatUniverse lists the selectable stocks by sector.
func FormatUniverse() string {
	var b strings.Builder
	b.WriteString("🗂 <b>JSE Top 50</b>\n")
	for _, sector := range model.Sectors() {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", html.EscapeString(sector)))
		for _, st := range model.StocksBySector(sector) {
			b.WriteString(fmt.Sprintf("  %s %s\n", st.Ticker, html.EscapeString(st.Name)))
		}
	}
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return "Available commands:\n• /forecast\n• /stats TICKER\n• /universe"
}

// FormatError formats a failed job or command.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", action, html.EscapeString(err.Error()))
}

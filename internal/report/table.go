package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/calculator"
	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
	"JSEInsight/internal/recorder"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// ProjectionTable renders a forecast run: per-ticker statistics, the banded path and the returns summary.
func ProjectionTable(w io.Writer, rep *analyzer.Report) {
	fmt.Fprintf(w, "Forecast %s | %d months | %s/month | %.0f%% confidence\n\n",
		rep.GeneratedAt.Format("2006-01-02"), rep.Portfolio.HorizonMonths(),
		Rand(rep.Portfolio.MonthlyContribution()), rep.Path.Confidence*100)

	StatsTable(w, rep.Portfolio.Holdings(), rep.Stats)
	fmt.Fprintf(w, "\nBlended monthly return %s, volatility %.2f%%\n\n",
		Pct(rep.Path.BlendedReturn), rep.Path.BlendedVolatility*100)

	table := newTable(w, "Month", "Invested", "Lower", "Expected", "Upper")
	for _, pt := range rep.Path.Points {
		table.Append([]string{
			strconv.Itoa(pt.Month), Rand(pt.Invested), Rand(pt.Lower), Rand(pt.Expected), Rand(pt.Upper),
		})
	}
	table.Render()

	r := rep.Returns
	fmt.Fprintf(w, "\nInvested %s | Expected value %s | Gain %s (%+.2f%%)\n",
		Rand(r.Invested), Rand(r.FinalValue), Rand(r.Gain), r.GainPct)
	if v := rep.Valuation; v != nil {
		fmt.Fprintf(w, "Cap-weighted P/E %.1f | Dividend yield %.2f%% | %d of %d holdings covered\n",
			v.WeightedPE, v.WeightedDividendYield*100, v.Covered, len(rep.Portfolio.Holdings()))
	}
}

func stockName(ticker string) string {
	if st, ok := model.LookupStock(ticker); ok {
		return st.Name
	}
	return ticker
}

// StatsTable renders monthly return statistics for each holding.
func StatsTable(w io.Writer, holdings []forecast.Holding, stats map[string]forecast.ReturnStats) {
	table := newTable(w, "Ticker", "Name", "Weight", "Mean/month", "Volatility", "Periods")
	for _, h := range holdings {
		s := stats[h.Ticker]
		table.Append([]string{
			h.Ticker, stockName(h.Ticker), fmt.Sprintf("%.1f%%", h.Weight*100),
			Pct(s.MeanReturn), fmt.Sprintf("%.2f%%", s.Volatility*100), strconv.Itoa(s.Periods),
		})
	}
	table.Render()
}

// TickerTable renders the statistics of a single stock.
func TickerTable(w io.Writer, rep *analyzer.TickerReport) {
	fmt.Fprintf(w, "%s (%s) | %s\n", rep.Stock.Name, rep.Stock.Ticker, rep.Stock.Sector)
	table := newTable(w, "Metric", "Value")
	m := rep.Metrics
	rows := [][]string{
		{"Current price", Rand(m.CurrentPrice)},
		{"Mean daily return", Pct(rep.Daily.MeanReturn)},
		{"Daily volatility", fmt.Sprintf("%.2f%%", rep.Daily.Volatility*100)},
		{"Mean monthly return", Pct(rep.Monthly.MeanReturn)},
		{"Monthly volatility", fmt.Sprintf("%.2f%%", rep.Monthly.Volatility*100)},
		{"Mean close", Rand(m.Mean)},
		{"Std dev close", Rand(m.StdDev)},
		{"Min / Max", Rand(m.Min) + " / " + Rand(m.Max)},
		{"52w low / high", Rand(m.Low52w) + " / " + Rand(m.High52w)},
		{"52w position", fmt.Sprintf("%.1f%%", m.Position52w*100)},
		{"Max drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100)},
	}
	if m.MA50 > 0 {
		rows = append(rows, []string{"MA50", Rand(m.MA50)})
	}
	if m.MA200 > 0 {
		rows = append(rows, []string{"MA200", Rand(m.MA200)})
	}
	if f := rep.Fundamentals; f != nil {
		rows = append(rows, []string{"P/E", fmt.Sprintf("%.1f", f.PERatio)},
			[]string{"Dividend yield", fmt.Sprintf("%.2f%%", f.DividendYield*100)})
	}
	if md := rep.Mood; md != nil {
		rows = append(rows,
			[]string{"Mood", fmt.Sprintf("%s %s", md.Emoji, md.Label)},
			[]string{"Mood confidence", fmt.Sprintf("%.0f%%", md.Confidence*100)},
			[]string{fmt.Sprintf("RSI(%d)", calculator.RSIPeriod), fmt.Sprintf("%.1f", md.RSI)},
		)
	}
	table.AppendBulk(rows)
	table.Render()
	if rep.Mood != nil && rep.Mood.Explanation != "" {
		fmt.Fprintln(w, rep.Mood.Explanation)
	}
}

// ComparisonTable renders the risk/return rows and, when present, the correlation matrix.
func ComparisonTable(w io.Writer, cmp *analyzer.Comparison) {
	table := newTable(w, "Ticker", "Avg return", "Risk", "Max drawdown", "Total return", "Low", "High", "Monthly-invest return", "Final value")
	for _, r := range cmp.Rows {
		table.Append([]string{
			r.Ticker,
			fmt.Sprintf("%.3f%%", r.AvgReturnPct),
			fmt.Sprintf("%.3f%%", r.RiskPct),
			fmt.Sprintf("%.2f%%", r.MaxDrawdown),
			fmt.Sprintf("%+.2f%%", r.TotalReturn),
			fmt.Sprintf("%.2f", r.PeriodLow),
			fmt.Sprintf("%.2f", r.PeriodHigh),
			fmt.Sprintf("%+.2f%%", r.DCAReturnPct),
			Rand(r.DCAFinalValue),
		})
	}
	table.Render()

	if len(cmp.Correlation) == 0 {
		return
	}
	fmt.Fprintln(w, "\nPrice correlation")
	corr := newTable(w, append([]string{""}, cmp.Tickers...)...)
	for i, t := range cmp.Tickers {
		row := []string{t}
		for j := range cmp.Tickers {
			row = append(row, fmt.Sprintf("%.2f", cmp.Correlation[i][j]))
		}
		corr.Append(row)
	}
	corr.Render()
}

// UniverseTable lists the selectable stocks grouped by sector.
func UniverseTable(w io.Writer, stocks []model.Stock) {
	sorted := append([]model.Stock(nil), stocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Sector != sorted[j].Sector {
			return sorted[i].Sector < sorted[j].Sector
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})
	table := newTable(w, "Sector", "Ticker", "Name")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range sorted {
		table.Append([]string{s.Sector, s.Ticker, s.Name})
	}
	table.Render()
}

// HistoryTable renders recorded projection runs.
func HistoryTable(w io.Writer, runs []recorder.ProjectionRecord) {
	table := newTable(w, "Time", "Trigger", "Tickers", "Months", "Expected", "Lower", "Upper")
	for _, r := range runs {
		table.Append([]string{
			r.Time.Local().Format(time.DateTime), r.Trigger, strings.Join(r.Tickers, " "),
			strconv.Itoa(r.HorizonMonths), Rand(r.FinalExpected), Rand(r.FinalLower), Rand(r.FinalUpper),
		})
	}
	table.Render()
}

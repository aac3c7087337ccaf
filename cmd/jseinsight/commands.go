package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"JSEInsight/internal/config"
	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
	"JSEInsight/internal/notifier"
	"JSEInsight/internal/recorder"
	"JSEInsight/internal/report"
	"JSEInsight/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduled forecast refresh and the Telegram command loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("JSE Insight starting...")
			portfolio, err := cfg.PortfolioConfig()
			if err != nil {
				return err
			}

			rec := openRecorder()
			defer rec.Close()

			var n notifier.Notifier = notifier.LogNotifier{}
			var tn *notifier.TelegramNotifier
			if cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
				n = tn
			} else {
				log.Warn("telegram not configured, digests go to the log")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewScheduler(ctx, newAnalyzer(), portfolio, cfg.Forecast.ConfidenceLevel, n, rec)
			if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info("telegram polling started")
			}

			if os.Getenv("RUN_ON_START") == "true" {
				log.Info("RUN_ON_START enabled, executing refresh now")
				go sched.RunNow()
			}

			log.Infof("JSE Insight is running (refresh %q). Press Ctrl+C to stop.", cfg.Schedule.RefreshCron)
			<-ctx.Done()
			log.Info("shutdown signal received, stopping...")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats TICKER...",
		Short: "Show historical return statistics for one or more stocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an := newAnalyzer()
			out := cmd.OutOrStdout()
			for i, t := range args {
				rep, err := an.Ticker(cmd.Context(), model.NormalizeTicker(t))
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				report.TickerTable(out, rep)
			}
			return nil
		},
	}
}

// addPortfolioFlags registers flags that override the configured watch portfolio.
func addPortfolioFlags(cmd *cobra.Command) {
	cmd.Flags().String("tickers", "", "Comma-separated tickers, equally weighted (default: configured holdings).")
	cmd.Flags().Float64("monthly", 0, "Monthly contribution in rand.")
	cmd.Flags().Int("months", 0, "Projection horizon in months.")
	cmd.Flags().Float64("initial", 0, "Initial amount invested before the first contribution.")
	cmd.Flags().Float64("level", 0, "Confidence level in (0, 1).")
}

// portfolioFromFlags applies flag overrides to a copy of the loaded config.
func portfolioFromFlags(cmd *cobra.Command, base *config.Config) (*forecast.PortfolioConfig, float64, error) {
	c := *base
	if v, _ := cmd.Flags().GetString("tickers"); v != "" {
		var tickers []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		c.Portfolio.Holdings = forecast.EqualWeights(tickers)
	}
	if cmd.Flags().Changed("monthly") {
		c.Portfolio.MonthlyContribution, _ = cmd.Flags().GetFloat64("monthly")
	}
	if cmd.Flags().Changed("months") {
		c.Portfolio.HorizonMonths, _ = cmd.Flags().GetInt("months")
	}
	if cmd.Flags().Changed("initial") {
		c.Portfolio.InitialAmount, _ = cmd.Flags().GetFloat64("initial")
	}
	level := c.Forecast.ConfidenceLevel
	if cmd.Flags().Changed("level") {
		level, _ = cmd.Flags().GetFloat64("level")
	}
	p, err := c.PortfolioConfig()
	if err != nil {
		return nil, 0, err
	}
	return p, level, nil
}

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the portfolio with a confidence band",
		RunE: func(cmd *cobra.Command, args []string) error {
			portfolio, level, err := portfolioFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			rep, err := newAnalyzer().Forecast(cmd.Context(), portfolio, level)
			if err != nil {
				return err
			}
			report.ProjectionTable(cmd.OutOrStdout(), rep)

			if save, _ := cmd.Flags().GetBool("record"); save {
				rec := openRecorder()
				defer rec.Close()
				run := recorder.NewProjectionRecord(portfolio, rep.Path, "CLI")
				run.Time = rep.GeneratedAt
				if err := rec.RecordProjection(run); err != nil {
					return fmt.Errorf("record projection: %w", err)
				}
				for _, est := range run.Estimates(rep.Stats) {
					if err := rec.RecordEstimate(est); err != nil {
						return fmt.Errorf("record estimate: %w", err)
					}
				}
				log.WithField("run", run.RunID).Info("projection recorded")
			}
			return nil
		},
	}
	addPortfolioFlags(cmd)
	cmd.Flags().Bool("record", false, "Store the run in the SQLite history.")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the banded projection path as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			portfolio, level, err := portfolioFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			rep, err := newAnalyzer().Forecast(cmd.Context(), portfolio, level)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "-" {
				return report.WriteProjectionCSV(cmd.OutOrStdout(), rep.Path)
			}
			if err := report.ExportFile(out, func(w io.Writer) error {
				return report.WriteProjectionCSV(w, rep.Path)
			}); err != nil {
				return err
			}
			log.Infof("projection written to %s", out)
			return nil
		},
	}
	addPortfolioFlags(cmd)
	cmd.Flags().StringP("out", "o", "projection.csv", "Output file, or - for stdout.")
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare TICKER...",
		Short: "Compare risk, return and correlation of several stocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > cfg.Portfolio.MaxHoldings {
				return fmt.Errorf("at most %d stocks can be compared", cfg.Portfolio.MaxHoldings)
			}
			tickers := make([]string, len(args))
			for i, a := range args {
				tickers[i] = model.NormalizeTicker(a)
			}
			monthly := cfg.Portfolio.MonthlyContribution
			if cmd.Flags().Changed("monthly") {
				monthly, _ = cmd.Flags().GetFloat64("monthly")
			}

			cmp, err := newAnalyzer().Compare(cmd.Context(), tickers, monthly)
			if err != nil {
				return err
			}
			report.ComparisonTable(cmd.OutOrStdout(), cmp)

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				if err := report.ExportFile(out, func(w io.Writer) error {
					return report.WriteComparisonCSV(w, cmp)
				}); err != nil {
					return err
				}
				log.Infof("comparison written to %s", out)
			}
			if out, _ := cmd.Flags().GetString("dca-out"); out != "" {
				if err := report.ExportFile(out, func(w io.Writer) error {
					return report.WriteDCACSV(w, cmp)
				}); err != nil {
					return err
				}
				log.Infof("monthly-investment simulation written to %s", out)
			}
			return nil
		},
	}
	cmd.Flags().Float64("monthly", 0, "Monthly amount for the historical investment simulation.")
	cmd.Flags().StringP("out", "o", "", "Also write the comparison rows to this CSV file.")
	cmd.Flags().String("dca-out", "", "Also write the month-by-month investment simulation to this CSV file.")
	return cmd
}

func newUniverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "List the selectable JSE Top 50 stocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks := model.Universe()
			if sector, _ := cmd.Flags().GetString("sector"); sector != "" {
				stocks = model.StocksBySector(sector)
				if len(stocks) == 0 {
					return fmt.Errorf("unknown sector %q (choose from %s)", sector, strings.Join(model.Sectors(), ", "))
				}
			}
			report.UniverseTable(cmd.OutOrStdout(), stocks)
			return nil
		},
	}
	cmd.Flags().String("sector", "", "Only list stocks of this sector.")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded projection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			rec := openRecorder()
			defer rec.Close()
			runs, err := rec.RecentProjections(limit)
			if err != nil {
				return err
			}
			report.HistoryTable(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "Number of runs to show.")
	return cmd
}

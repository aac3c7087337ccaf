package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/forecast"
	"JSEInsight/internal/model"
	"JSEInsight/internal/notifier"
	"JSEInsight/internal/recorder"
)

// Trigger values stored with each recorded run.
const (
	TriggerScheduled = "SCHEDULED"
	TriggerManual    = "MANUAL"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Analyzer   *analyzer.Analyzer
	Portfolio  *forecast.PortfolioConfig
	Confidence float64
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler for the watch portfolio.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, cfg *forecast.PortfolioConfig, confidence float64,
	n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Analyzer:   an,
		Portfolio:  cfg,
		Confidence: confidence,
		Notifier:   n,
		Recorder:   rec,
		Ctx:        ctx,
	}
}

// RegisterAll registers the forecast refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes the refresh immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() (*analyzer.Report, error) {
	return s.refresh(TriggerManual)
}

func (s *Scheduler) refreshTask() {
	s.refresh(TriggerScheduled)
}

// refresh fetches fresh prices, forecasts the watch portfolio, records the run and sends the digest.
func (s *Scheduler) refresh(trigger string) (*analyzer.Report, error) {
	logger := log.WithFields(log.Fields{"job": "refresh", "trigger": trigger})
	logger.Info("running forecast refresh")

	s.Analyzer.Collector.Invalidate()
	rep, err := s.Analyzer.Forecast(s.Ctx, s.Portfolio, s.Confidence)
	if err != nil {
		logger.Errorf("forecast: %v", err)
		s.trySend(notifier.FormatError("Forecast refresh", err))
		return nil, err
	}

	run := recorder.NewProjectionRecord(s.Portfolio, rep.Path, trigger)
	run.Time = rep.GeneratedAt
	logger = logger.WithField("run", run.RunID)
	if err := s.Recorder.RecordProjection(run); err != nil {
		logger.Errorf("record projection: %v", err)
	}
	for _, est := range run.Estimates(rep.Stats) {
		if err := s.Recorder.RecordEstimate(est); err != nil {
			logger.WithField("ticker", est.Stats.Ticker).Errorf("record estimate: %v", err)
		}
	}

	s.trySend(notifier.FormatForecastDigest(rep))
	return rep, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Commands may carry a "@botname" suffix in group chats.
	name := strings.SplitN(strings.ToLower(fields[0]), "@", 2)[0]

	switch name {
	case "/forecast":
		// The refresh fetches every holding; keep the polling loop responsive.
		go s.RunNow()
		return "Forecast refresh started, the digest follows shortly."
	case "/stats":
		if len(fields) < 2 {
			return "Usage: /stats TICKER"
		}
		ticker := model.NormalizeTicker(fields[1])
		rep, err := s.Analyzer.Ticker(s.Ctx, ticker)
		if err != nil {
			log.WithField("ticker", ticker).Errorf("stats command: %v", err)
			return notifier.FormatError("Stats for "+ticker, err)
		}
		return notifier.FormatTickerStats(rep)
	case "/universe":
		return notifier.FormatUniverse()
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Errorf("send notification: %v", err)
	}
}

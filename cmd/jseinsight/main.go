package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"JSEInsight/internal/analyzer"
	"JSEInsight/internal/collector"
	"JSEInsight/internal/config"
	"JSEInsight/internal/recorder"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "jseinsight",
	Short:         "JSE Top 50 return estimates and portfolio projections",
	Long:          `jseinsight estimates historical returns of JSE Top 50 stocks and projects a monthly-contribution portfolio with confidence bands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env, _ := cmd.Flags().GetString("env")
		if env == "" {
			env = os.Getenv("APP_ENV")
		}
		if err := config.LoadEnvFile(".", env); err != nil {
			return err
		}
		if env != "" {
			os.Setenv("APP_ENV", env)
		}

		cfgPath, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		loaded.ConfigureLogging()
		cfg = loaded
		return nil
	},
}

func newFetcher() collector.Fetcher {
	var f collector.Fetcher
	switch cfg.DataSource.Provider {
	case "csv":
		f = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	default:
		f = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Infof("data source: %s", f.Name())
	return f
}

func newAnalyzer() *analyzer.Analyzer {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		ttl = 15 * time.Minute
	}
	an := analyzer.New(collector.NewCollector(newFetcher(), ttl), cfg.DataSource.HistoryYears)
	if path := cfg.DataSource.FundamentalsFile; path != "" {
		f, err := collector.LoadFundamentals(path)
		if err != nil {
			log.Warnf("fundamentals unavailable, continuing without: %v", err)
		} else {
			an.Fundamentals = f
		}
	}
	return an
}

// openRecorder falls back to the no-op recorder when SQLite cannot be opened.
func openRecorder() recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func main() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().String("config", defaultConfig, "Path to the YAML config file.")
	rootCmd.PersistentFlags().String("env", "", "Environment name; loads .env.<env> (development or production).")

	rootCmd.AddCommand(newServeCmd(), newStatsCmd(), newProjectCmd(), newExportCmd(),
		newCompareCmd(), newUniverseCmd(), newHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

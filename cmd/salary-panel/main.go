package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/stitts-dev/salary-panel/internal/pipeline"
	"github.com/stitts-dev/salary-panel/internal/providers"
	"github.com/stitts-dev/salary-panel/internal/store"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/database"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

func main() {
	fs := pflag.NewFlagSet("salary-panel", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logrus.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithComponent("main")
	log.WithFields(logrus.Fields{
		"environment":   cfg.Env,
		"salary_source": cfg.SalarySource,
		"get_data":      cfg.GetData,
	}).Info("Starting salary panel run")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []pipeline.Option

	if cfg.GetData {
		fetcher := providers.NewFetcher(providers.FetcherConfig{
			Attempts:         cfg.FetchAttempts,
			Delay:            cfg.FetchDelay,
			RatePerMinute:    cfg.FetchRatePerMinute,
			Timeout:          cfg.HTTPTimeout,
			BreakerThreshold: cfg.CircuitBreakerThreshold,
			BreakerTimeout:   2 * time.Minute,
		})
		opts = append(opts, pipeline.WithDownloader(
			providers.NewDownloader(fetcher, providers.DefaultEndpoints(), cfg.DataDir),
		))
	}

	if cfg.RunStoreEnabled {
		db, err := database.NewConnection(cfg.RunStoreDriver, cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			log.Fatalf("Failed to connect to run store: %v", err)
		}
		defer db.Close()

		runs := store.NewRunStore(db, cfg.SalarySource)
		if err := runs.Migrate(); err != nil {
			log.Fatalf("Failed to migrate run store: %v", err)
		}
		opts = append(opts, pipeline.WithResultWriters(runs))
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	out, err := p.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Pipeline failed")
		stop()
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"panel_rows": out.Panel.Len(),
		"models":     len(out.Results),
		"results":    cfg.ResultsDir,
	}).Info("Run complete")
}

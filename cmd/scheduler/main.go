package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pulseboard/pulseboard/internal/agentclient"
	"github.com/pulseboard/pulseboard/internal/config"
	"github.com/pulseboard/pulseboard/internal/core"
	"github.com/pulseboard/pulseboard/internal/db"
	"github.com/pulseboard/pulseboard/internal/logging"
	"github.com/pulseboard/pulseboard/internal/metrics"
	"github.com/pulseboard/pulseboard/internal/scheduler"
)

func main() {
	runOnce := flag.Bool("run-once", false, "Run a single scheduling pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("scheduler"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()

	metrics.RegisterPgxPoolMetrics(corePool)

	services := core.NewServices(corePool)
	client := agentclient.New(cfg.AgentServerURL, time.Duration(cfg.AgentServerTimeout)*time.Second)
	windowLength := time.Duration(cfg.WindowHours) * time.Hour

	disp := scheduler.NewDispatcher(
		services.Organization,
		services.Agent,
		services.CronLog,
		client,
		logger,
		windowLength,
		cfg.RunQuery,
	)

	if *runOnce {
		disp.RunTick(ctx)
		disp.Drain()
		return
	}

	metricsServer := metrics.NewServer(cfg.MetricsListenAddr)
	go func() {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("metrics server failed")
		}
	}()

	// Tick cadence matches the window length so every hour of the day is
	// covered exactly once; the window's exclusive start keeps agents on the
	// boundary from firing twice.
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %dh", cfg.WindowHours), func() {
		disp.RunTick(ctx)
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to register cron entry")
	}

	logger.Info().
		Int("window_hours", cfg.WindowHours).
		Str("agent_server_url", cfg.AgentServerURL).
		Msg("starting scheduler")
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down scheduler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	disp.Drain()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx)
}

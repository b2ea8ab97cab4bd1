package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parallax-hq/parallax/pkg/api/handlers"
	"parallax-hq/parallax/pkg/config"
	"parallax-hq/parallax/pkg/pricing"
	"parallax-hq/parallax/pkg/providerfactory"
	"parallax-hq/parallax/pkg/query"
	"parallax-hq/parallax/pkg/server"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/store/retention"
	"parallax-hq/parallax/pkg/telemetry/logging"
	"parallax-hq/parallax/pkg/telemetry/metrics"
	"parallax-hq/parallax/pkg/usage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the parallax server",
	Long: `Start the parallax server with the specified configuration.

The server fans each submitted prompt out to every configured provider and
serves the results over the REST and streaming APIs.

Examples:
  # Start with environment-based configuration
  PARALLAX_PROVIDERS_OPENAI_API_KEY=sk-... parallax run

  # Start with a config file
  parallax run --config /etc/parallax/config.yaml

  # Override the listen address
  parallax run --listen 0.0.0.0:9090`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Provider registry
	registry, err := providerfactory.BuildRegistry(cfg.AdapterConfigs())
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}
	defer registry.Close()
	logger.Info("providers initialized", "count", registry.Len(), "ids", registry.IDs())

	// Pricing table, hot-reloaded from the config file when one is in use
	table := pricing.NewTable(cfg.Pricing)
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			logger.Warn("config watcher unavailable, pricing hot reload disabled", "error", err)
		} else {
			defer watcher.Close()
			go func() {
				_ = watcher.Watch(ctx, func(next *config.Config) {
					table.Update(next.Pricing)
				})
			}()
		}
	}

	// Conversation store
	st, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Usage tracker
	tracker, err := buildTracker(cfg)
	if err != nil {
		return fmt.Errorf("failed to open usage tracker: %w", err)
	}
	if tracker != nil {
		defer tracker.Close()
	}

	// Retention pruner
	if cfg.Retention.Enabled {
		pruner := retention.NewPruner(st, &retention.Config{
			RetentionDays: cfg.Retention.Days,
			PruneSchedule: cfg.Retention.Schedule,
		})
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				logger.Debug("retention scheduler started", "next_pruning", next)
			}
		}
	}

	// Metrics
	collector := metrics.NewCollector(cfg.Telemetry.Metrics)

	// Engine, handlers, server
	engine := query.NewEngine(registry, st, table, tracker, collector, logger)
	h := handlers.New(engine, st, tracker, logger)
	srv := server.New(cfg, h, collector, logger)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
		return srv.Shutdown(context.Background())
	}
}

// buildStore opens the configured conversation store backend.
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Store.Path,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Store.BusyTimeout,
		})
	}
}

// buildTracker opens the configured usage tracker, or nil when accounting
// is disabled.
func buildTracker(cfg *config.Config) (usage.Tracker, error) {
	if !cfg.Usage.Enabled {
		return nil, nil
	}
	switch cfg.Usage.Backend {
	case "memory":
		return usage.NewMemoryTracker(), nil
	default:
		return usage.NewSQLiteTracker(usage.SQLiteTrackerConfig{
			DBPath: cfg.Usage.Path,
		})
	}
}

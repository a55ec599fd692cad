package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/blazealert/internal/aggregator"
	"github.com/good-yellow-bee/blazealert/internal/api"
	"github.com/good-yellow-bee/blazealert/internal/api/health"
	"github.com/good-yellow-bee/blazealert/internal/channels"
	"github.com/good-yellow-bee/blazealert/internal/collector"
	"github.com/good-yellow-bee/blazealert/internal/dedup"
	"github.com/good-yellow-bee/blazealert/internal/metrics"
	"github.com/good-yellow-bee/blazealert/internal/routing"
	"github.com/good-yellow-bee/blazealert/internal/storage"
	"github.com/good-yellow-bee/blazealert/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "blazealert-server",
	Short: "BlazeAlert Server - Alert aggregation and notification engine",
	Long: `BlazeAlert Server ingests alerts from any source, merges duplicates,
routes them to notification channels, and serves the alert REST API.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blazealert-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config

	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	cfg.Verbose = verbose

	// Auto-create data directory
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Initialize storage
	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Printf("database initialized at %s", cfg.Database.Path)

	// Build the aggregation pipeline
	agg := aggregator.New(store.Alerts(), dedup.New(cfg.Deduplication.Options()), routing.New())

	if cfg.Routing.RulesFile != "" {
		rules, err := routing.LoadRulesFromFile(cfg.Routing.RulesFile)
		if err != nil {
			return fmt.Errorf("load routing rules: %w", err)
		}
		agg.ReplaceRoutingRules(rules)
		log.Printf("loaded %d routing rules from %s", len(rules), cfg.Routing.RulesFile)
	}

	// Signal handling drives shutdown for every component below.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Delivery channels
	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return fmt.Errorf("configure channels: %w", err)
	}
	defer dispatcher.Close()
	agg.AddCallback(dispatcher.Callback(ctx))

	// HTTP API
	apiSrv, err := api.New(&api.Config{
		Address: cfg.Server.HTTPAddress,
		Verbose: cfg.Verbose,
	}, agg, collector.New())
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	apiSrv.RegisterHealthChecker(health.NewSQLiteChecker(store.DB()))

	metricsSrv := metrics.NewServer(cfg.Server.MetricsAddress)

	sweepInterval, err := cfg.Retention.SweepIntervalDuration()
	if err != nil {
		return fmt.Errorf("retention sweep interval: %w", err)
	}

	log.Printf("starting blazealert-server %s", config.Version)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiSrv.Run(ctx)
	})

	g.Go(func() error {
		errChan := make(chan error, 1)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				errChan <- err
			}
		}()
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		case err := <-errChan:
			return err
		}
	})

	g.Go(func() error {
		return runRetentionSweep(ctx, agg, cfg.Retention.Days, sweepInterval)
	})

	if cfg.Routing.RulesFile != "" && cfg.Routing.Watch {
		watcher, err := routing.NewWatcher(cfg.Routing.RulesFile, agg.ReplaceRoutingRules)
		if err != nil {
			return fmt.Errorf("watch routing rules: %w", err)
		}
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	agg.Close()
	log.Printf("server stopped")
	return nil
}

// buildDispatcher registers every enabled delivery channel.
func buildDispatcher(cfg *Config) (*channels.Dispatcher, error) {
	d := channels.NewDispatcher()

	if cfg.Channels.Console.Enabled {
		d.Register(channels.NewConsoleChannel())
	}
	if cfg.Channels.File.Enabled {
		ch, err := channels.NewFileChannel(cfg.Channels.File.Path)
		if err != nil {
			return nil, fmt.Errorf("file channel: %w", err)
		}
		d.Register(ch)
	}
	if cfg.Channels.Webhook.Enabled {
		ch, err := channels.NewWebhookChannel(channels.WebhookConfig{
			URL:           cfg.Channels.Webhook.URL,
			Headers:       cfg.Channels.Webhook.Headers,
			Timeout:       time.Duration(cfg.Channels.Webhook.TimeoutSeconds) * time.Second,
			RatePerMinute: cfg.Channels.Webhook.RatePerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("webhook channel: %w", err)
		}
		d.Register(ch)
	}
	if cfg.Channels.Email.Enabled {
		ch, err := channels.NewEmailChannel(channels.EmailConfig{
			Host:        cfg.Channels.Email.Host,
			Port:        cfg.Channels.Email.Port,
			Username:    cfg.Channels.Email.Username,
			Password:    cfg.Channels.Email.Password,
			From:        cfg.Channels.Email.From,
			Recipients:  cfg.Channels.Email.Recipients,
			RatePerHour: cfg.Channels.Email.RatePerHour,
		})
		if err != nil {
			return nil, fmt.Errorf("email channel: %w", err)
		}
		d.Register(ch)
	}

	return d, nil
}

// runRetentionSweep deletes old resolved alerts on a fixed interval
// until the context is cancelled.
func runRetentionSweep(ctx context.Context, agg *aggregator.Aggregator, days int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := agg.CleanupOldAlerts(ctx, days)
			if err != nil {
				log.Printf("warning: retention sweep: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("retention sweep removed %d resolved alerts", removed)
			}
		}
	}
}

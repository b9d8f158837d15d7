package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foliolab/foliage-platform/internal/animator"
	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/pkg/config"
	"github.com/foliolab/foliage-platform/pkg/health"
	"github.com/foliolab/foliage-platform/pkg/mqtt"
	"github.com/foliolab/foliage-platform/pkg/postgres"
	"github.com/foliolab/foliage-platform/pkg/redis"
)

func main() {
	// Load configuration with hierarchy: defaults → env → flags
	cfg := config.NewConfig()
	cfg.ServiceName = "foliage-agent"
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting Foliage Animation Agent",
		"service_name", cfg.ServiceName,
		"dataset", cfg.DatasetName,
		"dataset_source", cfg.DatasetSource,
		"mqtt_broker", cfg.MQTTAddress(),
		"redis_host", cfg.RedisAddress(),
		"log_level", cfg.LogLevel)

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot import mode: CSV into Postgres, then exit
	if cfg.ImportDataset {
		if err := runImport(ctx, cfg, logger); err != nil {
			logger.Error("Dataset import failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Dataset import complete", "dataset", cfg.DatasetName)
		return
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		logger.Error("Failed to load phenology rules", "error", err)
		os.Exit(1)
	}

	// Initialize MQTT client
	mqttClient := mqtt.NewClient(cfg, logger)

	// Initialize Redis client
	redisClient := redis.NewClient(cfg, logger)

	// Load dataset; the Postgres client only exists for that source
	var pgClient postgres.Client
	if cfg.DatasetSource == "postgres" {
		pgClient = postgres.NewClient(cfg, logger)
		if err := pgClient.Connect(ctx); err != nil {
			logger.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Disconnect()
	}

	dataset, err := loadDataset(ctx, cfg, pgClient, logger)
	if err != nil {
		logger.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}

	// Create foliage agent
	agent := animator.NewAgent(mqttClient, redisClient, resolver, dataset, cfg, logger)

	// Start health check server
	healthChecker := health.NewChecker(mqttClient, redisClient, pgClient, logger)
	httpServer := startHealthServer(cfg.HealthPort, healthChecker, logger)

	// Start agent in a goroutine
	agentErr := make(chan error, 1)
	go func() {
		if err := agent.Start(ctx); err != nil {
			logger.Error("Agent error", "error", err)
			agentErr <- err
		}
	}()

	// Wait for shutdown signal or agent error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
	case err := <-agentErr:
		logger.Error("Agent failed", "error", err)
	}

	// Graceful shutdown
	logger.Info("Initiating graceful shutdown")
	cancel()

	if err := agent.Stop(); err != nil {
		logger.Error("Error stopping agent", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down health server", "error", err)
	}

	logger.Info("Foliage agent shutdown complete")
}

// buildResolver loads the phenology rules file when one is configured
// and falls back to the built-in ruleset otherwise.
func buildResolver(cfg *config.Config, logger *slog.Logger) (*phenology.Resolver, error) {
	if cfg.PhenologyPath == "" {
		logger.Info("Using built-in phenology rules")
		return phenology.NewResolver(nil), nil
	}

	rulesCfg, err := phenology.LoadConfig(cfg.PhenologyPath)
	if err != nil {
		return nil, err
	}

	ruleset, warnings := rulesCfg.Build()
	for _, w := range warnings {
		logger.Warn("Phenology rule skipped", "reason", w)
	}

	logger.Info("Loaded phenology rules",
		"path", cfg.PhenologyPath,
		"timing_rows", ruleset.Timing.Len(),
		"color_rows", ruleset.Colors.Len(),
		"groups", len(ruleset.Groups),
		"warnings", len(warnings))

	return phenology.NewResolver(ruleset), nil
}

// loadDataset reads the inventory from the configured source.
func loadDataset(ctx context.Context, cfg *config.Config, pgClient postgres.Client, logger *slog.Logger) (*inventory.Dataset, error) {
	switch cfg.DatasetSource {
	case "postgres":
		store := inventory.NewStore(pgClient, logger)
		dataset, err := store.LoadDataset(ctx, cfg.DatasetName)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded dataset from Postgres",
			"dataset", dataset.Name,
			"entities", len(dataset.Entities),
			"species", len(dataset.Species))
		return dataset, nil

	default:
		if cfg.DatasetPath == "" {
			return nil, fmt.Errorf("dataset path is required for the file source")
		}

		records, stats, err := inventory.LoadCSV(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		if stats.Skipped > 0 {
			logger.Warn("Skipped malformed inventory rows",
				"path", cfg.DatasetPath,
				"skipped", stats.Skipped,
				"rows", stats.Rows)
		}

		dataset := inventory.NewDataset(cfg.DatasetName, records, cfg.OffsetSeed, cfg.OffsetRangeDays)
		logger.Info("Loaded dataset from file",
			"dataset", dataset.Name,
			"path", cfg.DatasetPath,
			"entities", len(dataset.Entities),
			"species", len(dataset.Species))
		return dataset, nil
	}
}

// runImport loads the CSV inventory and writes it into Postgres.
func runImport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.DatasetPath == "" {
		return fmt.Errorf("dataset path is required for import")
	}

	records, stats, err := inventory.LoadCSV(cfg.DatasetPath)
	if err != nil {
		return err
	}
	if stats.Skipped > 0 {
		logger.Warn("Skipped malformed inventory rows",
			"path", cfg.DatasetPath,
			"skipped", stats.Skipped,
			"rows", stats.Rows)
	}

	dataset := inventory.NewDataset(cfg.DatasetName, records, cfg.OffsetSeed, cfg.OffsetRangeDays)

	pgClient := postgres.NewClient(cfg, logger)
	if err := pgClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	defer pgClient.Disconnect()

	store := inventory.NewStore(pgClient, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	return store.SaveDataset(ctx, dataset, cfg.OffsetSeed)
}

func startHealthServer(port int, checker *health.Checker, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HandlerFunc())
	mux.HandleFunc("/health/detailed", checker.DetailedHandlerFunc())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("Starting health check server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

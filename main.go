package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet_filter/internal/config"
	"fleet_filter/internal/daemon"
	"fleet_filter/internal/models"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// stdout carries query results
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func loadCriteria(path string) (models.FilterCriteria, error) {
	var c models.FilterCriteria
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read criteria file: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse criteria file: %w", err)
	}
	return c, nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	criteriaPath := flag.String("criteria", "", "Path to filter criteria (JSON)")
	portfolioID := flag.Int("portfolio", 0, "Portfolio id")
	callerID := flag.String("caller", "", "Caller identity")
	isService := flag.Bool("service", false, "Treat the caller as a service")
	countOnly := flag.Bool("count", false, "Print only the number of matching aircraft")
	watch := flag.Duration("watch", 0, "Re-run the query on this interval until interrupted")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("FLEET_FILTER_CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	if *criteriaPath == "" {
		slog.Error("A criteria file is required")
		os.Exit(2)
	}
	criteria, err := loadCriteria(*criteriaPath)
	if err != nil {
		slog.Error("Failed to load criteria", "error", err)
		os.Exit(2)
	}

	d, err := daemon.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if *watch > 0 {
		d.Watch(*portfolioID, criteria, *callerID, *isService, *watch, func(result models.TableResult) {
			if err := encoder.Encode(result); err != nil {
				slog.Error("Failed to write result", "error", err)
			}
		})
		d.Start()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("Received interrupt signal, shutting down...")

		if err := d.Stop(); err != nil {
			slog.Error("Error stopping daemon", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(d.Context(), time.Minute)
	err = run(ctx, d, *portfolioID, criteria, *callerID, *isService, *countOnly, encoder)
	cancel()

	if stopErr := d.Stop(); stopErr != nil {
		slog.Error("Error stopping daemon", "error", stopErr)
	}
	if err != nil {
		slog.Error("Query failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, d *daemon.Daemon, portfolioID int, c models.FilterCriteria, callerID string, isService, countOnly bool, encoder *json.Encoder) error {
	if countOnly {
		result, err := d.Service().GetFilteredCount(ctx, portfolioID, c, callerID, isService)
		if err != nil {
			return err
		}
		return encoder.Encode(result)
	}

	result, err := d.Service().GetFilteredTable(ctx, portfolioID, c, callerID, isService)
	if err != nil {
		return err
	}
	return encoder.Encode(result)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/config"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration, using defaults: %v\n", err)
		cfg = config.Default()
	}

	// Parse flags
	addr := flag.String("addr", cfg.Sim.Addr, "Listen address")
	token := flag.String("token", cfg.Sim.Token, "Accepted bearer token")
	chunkDelay := flag.Duration("chunk-delay", cfg.Sim.ChunkDelay, "Delay between streamed words")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	var logger *logging.Logger
	if *dev {
		logger = logging.NewDevelopment()
	} else {
		logger, err = logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Output: cfg.Logging.Output,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := monitoring.NewMetrics(registry)

	srv, err := sim.New(sim.Options{
		Token:          *token,
		ChunkDelay:     *chunkDelay,
		Logger:         logger,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Development:    *dev,
	})
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Simulated chat backend ready",
		zap.String("addr", *addr),
		zap.Duration("chunk_delay", *chunkDelay),
	)
	if err := srv.Run(ctx, *addr); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

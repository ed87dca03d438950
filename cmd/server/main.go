package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tendant/portfolio-content/internal/server"
	"github.com/tendant/portfolio-content/pkg/portfolio/config"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file applied before the environment")
	flag.Parse()

	opts := []config.Option{config.WithDotEnv()}
	if *configFile != "" {
		opts = append(opts, config.WithYAMLFile(*configFile))
	}
	opts = append(opts, config.WithEnv())

	cfg, err := config.Load(opts...)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cfg.Build(ctx, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return server.Run(ctx, app)
}

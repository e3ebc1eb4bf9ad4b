package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/csg33k/brq-ebookings/internal/app"
	"github.com/csg33k/brq-ebookings/internal/config"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("BRQ_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		slog.Error("invalid log level", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.ListenAndServe(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

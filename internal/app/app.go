// Package app wires configuration, storage and the pipeline into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	sqliteadapter "github.com/csg33k/brq-ebookings/internal/adapters/sqlite"
	"github.com/csg33k/brq-ebookings/internal/config"
	"github.com/csg33k/brq-ebookings/internal/gateway"
	"github.com/csg33k/brq-ebookings/internal/handlers"
	"github.com/csg33k/brq-ebookings/internal/metrics"
	"github.com/csg33k/brq-ebookings/internal/pipeline"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
	"github.com/csg33k/brq-ebookings/internal/validation"
)

type App struct {
	Config   *config.Config
	Repo     *sqliteadapter.Repository
	Service  *pipeline.Service
	Registry *prometheus.Registry
	Log      *slog.Logger
	handler  http.Handler
}

// NewLogger returns a text logger at the configured level.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// DryRunGateway answers every downstream operation locally: campaigns are
// fetched empty and every submitted line is accepted.
func DryRunGateway() *gateway.Recorder {
	return gateway.NewRecorder().
		Default(gateway.OpFetchCampaign, []byte(`{}`)).
		Default(gateway.OpUpdateCampaign, []byte(`{}`)).
		Default(gateway.OpSubmitSpots, []byte(`[]`)).
		Default(gateway.OpNotifyFailure, []byte(`{}`))
}

// New opens the database, applies migrations and, when a mapping file is
// configured, refreshes the stored sales-area table from it.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	threshold, err := cfg.SplitThreshold()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	if cfg.SalesAreaPath != "" {
		rows, err := salesarea.LoadFile(cfg.SalesAreaPath)
		if err != nil {
			repo.Close()
			return nil, err
		}
		if err := repo.ReplaceSalesAreas(ctx, rows); err != nil {
			repo.Close()
			return nil, err
		}
		log.Info("sales area mapping loaded", "path", cfg.SalesAreaPath, "rows", len(rows))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("brq", reg)

	svc := pipeline.New(repo, repo, repo, DryRunGateway(), m, pipeline.Settings{
		DaypartID:      cfg.DaypartID,
		ChunkLimit:     cfg.SpotChunkLimit,
		SplitThreshold: threshold,
		Validation: validation.Settings{
			AllowedNetworks: cfg.AllowedNetworks,
			DemoTolerance:   cfg.DemoTolerancePercent,
		},
	}, log)

	return &App{
		Config:   cfg,
		Repo:     repo,
		Service:  svc,
		Registry: reg,
		Log:      log,
		handler:  handlers.New(svc, m, reg, log).Routes(),
	}, nil
}

func (a *App) Handler() http.Handler { return a.handler }

// ListenAndServe blocks serving HTTP on the configured port.
func (a *App) ListenAndServe() error {
	a.Log.Info("BRQ eBookings running", "addr", "http://localhost:"+a.Config.Port, "db", a.Config.DBPath)
	return http.ListenAndServe(":"+a.Config.Port, a.handler)
}

func (a *App) Close() error { return a.Repo.Close() }

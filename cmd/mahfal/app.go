package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/config"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/crypto"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/intake"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/observability"
)

// app holds the wired collaborators for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *observability.Provider
	metrics  *observability.Metrics
	store    draft.Handle
	signer   *crypto.HMACSigner
	client   *intake.Client
}

type setupOptions struct {
	configPath string
	// needClient requires the signing secret and builds the intake client.
	needClient bool
	// needStore opens the configured draft store.
	needStore bool
}

func setup(ctx context.Context, opts setupOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	if opts.needClient {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		for _, w := range cfg.Warnings() {
			logger.WarnContext(ctx, w)
		}

		obsCfg := observability.DefaultConfig()
		obsCfg.ServiceVersion = Version
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		obsCfg.Insecure = true
		a.provider, err = observability.New(ctx, obsCfg)
		if err != nil {
			return nil, err
		}
		a.metrics, err = observability.NewMetrics(a.provider.Meter())
		if err != nil {
			return nil, err
		}

		a.signer, err = crypto.NewHMACSigner([]byte(cfg.APISecret))
		if err != nil {
			return nil, err
		}
		a.client = intake.New(cfg.APIURL, a.signer,
			intake.WithTimeout(cfg.APITimeout),
			intake.WithRateLimit(cfg.APIRPS),
			intake.WithTracer(a.provider.Tracer()),
			intake.WithLogger(logger.With("component", "intake")),
		)
	}

	if opts.needStore {
		a.store, err = draft.Open(ctx, draft.Options{
			Backend: cfg.DraftStore,
			DSN:     cfg.DraftDSN,
			TTL:     cfg.DraftTTL,
		})
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("open draft store: %w", err)
		}
	}
	return a, nil
}

// close flushes telemetry and releases the draft store.
func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if a.metrics != nil && a.cfg.PushgatewayURL != "" {
		if err := a.metrics.Push(ctx, a.cfg.PushgatewayURL); err != nil {
			a.logger.WarnContext(ctx, "metrics not pushed", "error", err)
		}
	}
	if a.provider != nil {
		_ = a.provider.Shutdown(ctx)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.WarnContext(ctx, "draft store close failed", "error", err)
		}
	}
}

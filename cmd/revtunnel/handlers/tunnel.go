package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/imamik/revtunnel/internal/config"
	"github.com/imamik/revtunnel/internal/logging"
	"github.com/imamik/revtunnel/internal/metrics"
	"github.com/imamik/revtunnel/internal/process"
	"github.com/imamik/revtunnel/internal/supervisor"
	"github.com/imamik/revtunnel/internal/tunnel"
)

// Factory function variables for tunnel - can be replaced in tests.
var (
	// newLogger builds the logger from the log settings.
	newLogger = logging.New

	// newInvoker returns what runs the ssh client for each attempt.
	newInvoker = func() supervisor.Invoker { return &process.Runner{} }
)

// Tunnel runs the reconnection supervisor until its attempts are used up or
// ctx is cancelled. It always returns an error so the process exits non-zero.
func Tunnel(ctx context.Context, configPath string, override func(*config.Config)) error {
	cfg, err := loadConfig(configPath, override)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Log.Options())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	tcfg, err := cfg.Tunnel()
	if err != nil {
		log.Error(err, "Invalid configuration")
		return err
	}

	if cfg.MetricsAddress == "" {
		return supervisor.New(tcfg, newInvoker(), log).Run(ctx)
	}
	return runWithMetrics(ctx, cfg.MetricsAddress, tcfg, log)
}

// runWithMetrics runs the supervisor next to the metrics endpoint. Whichever
// stops first takes the other down with it.
func runWithMetrics(ctx context.Context, addr string, tcfg tunnel.Config, log logr.Logger) error {
	reg := metrics.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}
	sup := supervisor.New(tcfg, newInvoker(), log, supervisor.WithRecorder(rec))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(gctx, addr, reg, log.WithName("metrics"))
	})
	g.Go(func() error {
		return sup.Run(gctx)
	})
	return g.Wait()
}

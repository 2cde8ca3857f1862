package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lugondev/go-dexterity/internal/common"
	"github.com/lugondev/go-dexterity/internal/config"
	"github.com/lugondev/go-dexterity/internal/datasource"
	"github.com/lugondev/go-dexterity/internal/metrics"
	"github.com/lugondev/go-dexterity/internal/processor"
	"github.com/lugondev/go-dexterity/internal/router"
	"github.com/lugondev/go-dexterity/internal/storage"
	"github.com/lugondev/go-dexterity/internal/vault"

	_ "github.com/lugondev/go-dexterity/internal/storage/mongo"
	_ "github.com/lugondev/go-dexterity/internal/storage/mysql"
	_ "github.com/lugondev/go-dexterity/internal/storage/postgres"
	_ "github.com/lugondev/go-dexterity/internal/storage/sqlite"
)

// app holds the components shared by the commands of one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collection
	conn    *storage.ConnectionManager
	repo    storage.Repository
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  common.NewLogger(cfg.Log),
		metrics: metrics.NewCollection(),
	}

	if cfg.Metrics.Enabled {
		switch cfg.Metrics.Backend {
		case "prometheus":
			a.metrics.Add(metrics.NewPrometheusMetrics(cfg.Metrics.Addr, a.logger))
		default:
			a.metrics.Add(metrics.NewLogMetrics(a.logger))
		}
		if err := a.metrics.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if cfg.Database.Enabled {
		a.conn, err = storage.NewConnectionManager(&cfg.Database)
		if err != nil {
			return nil, err
		}
		a.repo, err = a.conn.Connect(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.metrics.Flush(ctx); err != nil {
		a.logger.Debug("failed to flush metrics", "error", err)
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		a.logger.Debug("failed to shut down metrics", "error", err)
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}

func (a *app) requireRepository() (storage.Repository, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database is not enabled; set database.enabled in the config")
	}
	return a.repo, nil
}

// source returns the vault source selected by --source. Remote vaults need a
// ledger caller, which the CLI does not ship, so manifests must describe
// constant-product vaults.
func (a *app) source() (datasource.Source, error) {
	limiter := vault.NewLimiter(a.cfg.Ledger.RateLimit, a.cfg.Ledger.Burst)

	switch sourceKind {
	case "", "manifest":
		return datasource.NewManifestSource(a.cfg.Vaults.Manifest, nil).WithLimiter(limiter), nil
	case "database":
		repo, err := a.requireRepository()
		if err != nil {
			return nil, err
		}
		return datasource.NewRepositorySource(repo, nil).WithLimiter(limiter), nil
	default:
		return nil, fmt.Errorf("unknown vault source %q", sourceKind)
	}
}

// buildRouter builds an empty router from the config.
func (a *app) buildRouter() (*router.Router, error) {
	r, err := router.NewBuilder().
		Config(router.ConfigFrom(a.cfg.Router)).
		Logger(a.logger).
		Build()
	if err != nil {
		return nil, err
	}
	r.Metrics = a.metrics
	return r, nil
}

// loadRouter builds a router from the config and loads the current vault set.
func (a *app) loadRouter(ctx context.Context) (*router.Router, datasource.Source, error) {
	src, err := a.source()
	if err != nil {
		return nil, nil, err
	}
	r, err := a.buildRouter()
	if err != nil {
		return nil, nil, err
	}

	vaults, err := src.Vaults(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load vaults from %s: %w", src.Name(), err)
	}
	r.LoadVaults(vaults)
	return r, src, nil
}

// processor returns the chain every answered route query goes through.
// Journal failures are logged and never fail the query.
func (a *app) processor() processor.Processor[*processor.Result] {
	chain := processor.NewChainedProcessor[*processor.Result](processor.NewLogProcessor(a.logger))
	if a.repo != nil && a.cfg.Journal.Enabled {
		journal := processor.NewConditionalProcessor[*processor.Result](
			processor.NewJournalProcessor(a.repo.Routes(), a.logger),
			processor.MinAmountIn(a.cfg.Journal.MinAmountIn),
		)
		chain.Add(processor.NewErrorHandlingProcessor[*processor.Result](journal, func(err error) error {
			a.logger.Warn("route not journaled", "error", err)
			return nil
		}))
	}
	return chain
}

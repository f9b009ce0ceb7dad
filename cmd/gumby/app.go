package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/config"
	dbRedis "github.com/kailas-cloud/gumby/internal/db/redis"
	logpkg "github.com/kailas-cloud/gumby/internal/logger"
	"github.com/kailas-cloud/gumby/internal/metrics"
	"github.com/kailas-cloud/gumby/internal/repository/index"
	"github.com/kailas-cloud/gumby/internal/repository/individual"
	"github.com/kailas-cloud/gumby/internal/repository/sighting"
	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/health"
	"github.com/kailas-cloud/gumby/internal/usecase/migrate"
)

// app is the composition root of one command invocation.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store

	indexes     *index.Repo
	individuals *individual.Repo
	sightings   *sighting.Repo
	health      *health.Service

	stopMetrics context.CancelFunc
	metricsDone chan struct{}
}

// loadConfig resolves the environment, reads .env and the config file and
// applies the global flags.
func loadConfig() (string, config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return "", config.Config{}, fmt.Errorf("%w: %w", errConfig, err)
	}

	env := flagEnv
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return "", config.Config{}, fmt.Errorf("%w: %w", errConfig, err)
	}

	if flagPrefix != "" {
		cfg.Storage.KeyPrefix = flagPrefix
	}
	if flagMetricsAddr != "" {
		cfg.Metrics.Addr = flagMetricsAddr
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return env, cfg, nil
}

// newApp connects to the search engine and wires repositories. The
// returned context carries the logger and the per-command timeout.
func newApp(cmd *cobra.Command) (*app, context.Context, context.CancelFunc, error) {
	env, cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	logger = logger.With(zap.String("command", cmd.Name()))

	ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.CommandTimeout)*time.Second)

	logger.Debug("Connecting to search engine",
		zap.Strings("addrs", cfg.Database.Addrs),
		zap.String("prefix", cfg.Storage.KeyPrefix),
	)
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		cancel()
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("connect: %w", err)
	}

	a := &app{
		env:         env,
		cfg:         cfg,
		logger:      logger,
		store:       store,
		indexes:     index.New(store, cfg.Storage.KeyPrefix),
		individuals: individual.New(store, cfg.Storage.KeyPrefix),
		sightings:   sighting.New(store, cfg.Storage.KeyPrefix),
	}
	a.health = health.New(store, a.indexes, schema.All())

	if cfg.Metrics.Addr != "" {
		if err := a.startMetrics(ctx); err != nil {
			a.close(cancel)
			return nil, nil, nil, err
		}
	}
	return a, ctx, cancel, nil
}

// waitForReady blocks until the engine answers PING.
func (a *app) waitForReady(ctx context.Context) error {
	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := a.store.WaitForReady(ctx, timeout); err != nil {
		return fmt.Errorf("search engine not ready: %w", err)
	}
	return nil
}

func (a *app) startMetrics(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// The listener outlives the command timeout until close.
	mctx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopMetrics = stop
	a.metricsDone = make(chan struct{})
	go func() {
		defer close(a.metricsDone)
		if err := metrics.Serve(mctx, a.cfg.Metrics.Addr, metrics.NewRouter(reg, a.health), a.logger); err != nil {
			a.logger.Warn("Metrics listener failed", zap.Error(err))
		}
	}()
	return nil
}

func (a *app) close(cancel context.CancelFunc) {
	if a.stopMetrics != nil {
		a.stopMetrics()
		<-a.metricsDone
	}
	a.store.Close()
	cancel()
	_ = a.logger.Sync()
}

// documents returns the public-document repository for a model name.
func (a *app) documents(model string) (migrate.Repository, error) {
	models, err := schema.Lookup(model)
	if err != nil {
		return nil, err
	}
	switch models[0].Name {
	case schema.Sightings.Name:
		return a.sightings, nil
	default:
		return a.individuals, nil
	}
}

// modelLogger returns the command logger stored in ctx tagged with model.
func modelLogger(ctx context.Context, model string) *zap.Logger {
	return logpkg.ForModel(logpkg.FromContext(ctx), model)
}

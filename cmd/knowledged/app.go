package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/config"
	"github.com/fyrsmithlabs/knowledged/internal/knowledge"
	"github.com/fyrsmithlabs/knowledged/internal/logging"
	"github.com/fyrsmithlabs/knowledged/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/knowledged/cmd/knowledged"

// app is everything one command invocation needs.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	store  *knowledge.Store
	json   bool
}

// loadConfig reads configuration and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.dbPath != "" {
		cfg.Store.Path = opts.dbPath
	}
	if opts.matcher != "" {
		cfg.Matcher.Strategy = opts.matcher
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func initLogger(cmd *cobra.Command, cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	lcfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	lcfg.Level = level
	lcfg.Format = cfg.Logging.Format
	lcfg.Output.OTEL = tel.LoggerProvider() != nil
	// A CLI run is short; every line is worth keeping.
	lcfg.Sampling.Enabled = false
	lcfg.Fields["version"] = version

	return logging.NewLoggerWithWriter(lcfg, tel.LoggerProvider(), cmd.ErrOrStderr())
}

func newMatcher(cfg config.MatcherConfig) (knowledge.Matcher, error) {
	return knowledge.NewMatcher(knowledge.MatcherConfig{
		Strategy: cfg.Strategy,
		BM25: knowledge.BM25Config{
			K1:              cfg.K1,
			B:               cfg.B,
			TagBoost:        cfg.TagBoost,
			IncludeContents: cfg.IncludeContents,
		},
	})
}

// initStore opens the configured database and wraps it in a Store.
func initStore(ctx context.Context, cfg *config.Config, logger *logging.Logger, tel *telemetry.Telemetry) (*knowledge.Store, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := config.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	matcher, err := newMatcher(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	backend, err := knowledge.OpenSQLite(ctx, knowledge.SQLiteConfig{
		Path:         path,
		BusyTimeout:  cfg.Store.BusyTimeout.Duration(),
		MaxOpenConns: cfg.Store.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge database: %w", err)
	}

	opts := []knowledge.Option{
		knowledge.WithMatcher(matcher),
		knowledge.WithLogger(logger.Underlying()),
		knowledge.WithTracer(tel.Tracer("github.com/fyrsmithlabs/knowledged/internal/knowledge")),
		knowledge.WithRetry(knowledge.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseBackoff: cfg.Retry.BaseBackoff.Duration(),
		}),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, knowledge.WithQueryCache(cfg.Cache.MaxEntries))
	}

	store, err := knowledge.NewStore(backend, opts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	logger.Debug(ctx, "knowledge store opened",
		zap.String("path", path),
		zap.String("matcher", matcher.Name()),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return store, nil
}

// run sets up the app for cmd, calls fn and tears everything down again.
func run(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) (err error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Observability, version))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, tel.Shutdown(context.Background()))
	}()

	logger, err := initLogger(cmd, cfg, tel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	ctx = logging.WithCommand(ctx, cmd.Name())
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tel.Tracer(instrumentationName).Start(ctx, "knowledged."+cmd.Name())
	defer span.End()

	store, err := initStore(ctx, cfg, logger, tel)
	if err != nil {
		logger.Error(ctx, "failed to initialize store", zap.Error(err))
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	err = fn(ctx, &app{
		cfg:    cfg,
		logger: logger,
		tel:    tel,
		store:  store,
		json:   opts.outputJSON,
	})

	recordInvocation(ctx, tel, cmd.Name(), err)
	if err != nil {
		span.RecordError(err)
		logger.Debug(ctx, "command failed", zap.Error(err))
	}
	return err
}

func recordInvocation(ctx context.Context, tel *telemetry.Telemetry, command string, err error) {
	counter, cerr := tel.Meter(instrumentationName).Int64Counter(
		"knowledged.cli.invocations",
		metric.WithDescription("Number of CLI command invocations"),
	)
	if cerr != nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("result", result),
	))
}

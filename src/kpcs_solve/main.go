package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kp_with_conflicts/src/batch"
	"kp_with_conflicts/src/config"
	"kp_with_conflicts/src/fetch"
	"kp_with_conflicts/src/kpcs"
	"kp_with_conflicts/src/kpcs/lpsolve"
	"kp_with_conflicts/src/kpcs/mip"
	"kp_with_conflicts/src/kpcs/pbsolve"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		var exitErr *config.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newSolver(backend string, logger *zap.Logger) (kpcs.Solver, error) {
	switch backend {
	case config.BackendBnB:
		return &kpcs.BranchAndBound{}, nil
	case config.BackendHiGHS:
		return mip.New(logger), nil
	case config.BackendLPSolve:
		return lpsolve.New(logger), nil
	case config.BackendPB:
		return pbsolve.New(logger), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func run(ctx context.Context, out io.Writer, args []string) error {
	cfg, shouldExit, err := config.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &config.ExitError{Code: 1, Message: fmt.Sprintf("could not build logger: %v", err)}
	}
	defer logger.Sync()

	if cfg.NoInstall {
		logger.Info("Skipping the dependency installation step")
	} else {
		logger.Debug("Nothing to install, dependencies are linked into the binary")
	}

	if cfg.NoDownload {
		logger.Info("Skipping download and extraction of instance archives")
	} else {
		fetch.New(cfg.Dir, logger.Named("fetch")).FetchAll(ctx, fetch.DefaultArchives)
	}

	paths, err := batch.Locate(cfg.Dir, cfg.Patterns)
	if err != nil {
		return &config.ExitError{Code: 1, Message: err.Error()}
	}

	solver, err := newSolver(cfg.Backend, logger.Named(cfg.Backend))
	if err != nil {
		return &config.ExitError{Code: 2, Message: err.Error()}
	}
	logger.Info("Starting batch",
		zap.String("backend", cfg.Backend),
		zap.Duration("time_limit", cfg.TimeLimit),
		zap.Int("instances", len(paths)))

	runner := &batch.Runner{
		Dir:       cfg.Dir,
		Solver:    solver,
		TimeLimit: cfg.TimeLimit,
		Reporter:  batch.NewReporter(out),
		Metrics:   batch.NewMetrics(),
		Logger:    logger.Named("batch"),
	}
	summary := runner.Run(ctx, paths)

	if cfg.Report != "" {
		if err := batch.WriteYAMLFile(cfg.Report, summary); err != nil {
			logger.Error("Could not write report", zap.String("file", cfg.Report), zap.Error(err))
		}
	}
	if cfg.MetricsFile != "" {
		if err := runner.Metrics.WriteFile(cfg.MetricsFile); err != nil {
			logger.Error("Could not write metrics", zap.String("file", cfg.MetricsFile), zap.Error(err))
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/logging"
	"github.com/delfianto/tei-reranker-proxy/internal/metrics"
	"github.com/delfianto/tei-reranker-proxy/internal/proxy"
	"github.com/delfianto/tei-reranker-proxy/internal/proxy/handler"
	"github.com/delfianto/tei-reranker-proxy/internal/rerank"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tei-reranker-proxy",
		Short:         "Cohere-style rerank API in front of a TEI reranker",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// loadConfig resolves defaults, the YAML file, env and flags, in that order.
// The file is only required when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	fs := cmd.Flags()
	path, err := fs.GetString(config.FlagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, fs.Changed(config.FlagConfig))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyFlags(cfg, fs); err != nil {
		return nil, fmt.Errorf("apply flags: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	undo, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof))
	defer undo()
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	invoker := rerank.NewInvoker(cfg, nil, logger, m)
	handlers := &handler.Handlers{
		Config:   cfg,
		Reranker: rerank.NewService(invoker, cfg.MaxClientBatchSize, m),
		Logger:   logger,
		Metrics:  m,
	}
	srv := proxy.NewServer(proxy.ServerConfig{
		Handlers: handlers,
		CORS:     cfg.CORS,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("rerank proxy listening",
			zap.String("addr", httpServer.Addr),
			zap.String("upstream", cfg.RerankURL()),
			zap.Int("max_client_batch_size", cfg.MaxClientBatchSize),
			zap.Duration("upstream_timeout", cfg.UpstreamTimeout))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("proxy server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown did not complete", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		if err := metrics.ListenAndServe(gctx, cfg.MetricsAddr, reg, logger); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

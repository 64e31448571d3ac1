package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"orders-dashboard/internal/cache"
	"orders-dashboard/internal/config"
	"orders-dashboard/internal/export"
	"orders-dashboard/internal/handlers"
	"orders-dashboard/internal/loader"
	"orders-dashboard/internal/middleware"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/server"
	"orders-dashboard/internal/services"
)

const datasetLoadTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var datasetPath string

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Orders sales dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "dataset file, overrides DATASET_FILE")

	loadConfig := func() (*config.Config, error) {
		return config.Load(config.WithDatasetFile(datasetPath))
	}

	root.AddCommand(newServeCmd(loadConfig), newReportCmd(loadConfig))
	return root
}

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.NewLogger(cfg.Logger, os.Stdout)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func newReportCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var q handlers.FilterQuery

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the pipeline once and write the result as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.NewLogger(cfg.Logger, cmd.ErrOrStderr())

			if err := q.Validate(); err != nil {
				return err
			}
			spec, err := q.Spec()
			if err != nil {
				return err
			}

			dashboard, cleanup, err := buildDashboard(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := dashboard.Apply(cmd.Context(), spec)
			if err != nil {
				return fmt.Errorf("compute dashboard: %w", err)
			}
			return export.WriteCSV(cmd.OutOrStdout(), result, export.Meta{Spec: spec, GeneratedAt: time.Now()})
		},
	}

	cmd.Flags().StringVar(&q.Start, "start", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.End, "end", "", "last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&q.Regions, "region", nil, "region to include, repeatable")
	cmd.Flags().StringArrayVar(&q.Products, "product", nil, "product to include, repeatable")
	return cmd
}

// buildDashboard connects the optional result cache and loads the dataset.
// cleanup releases the cache connection.
func buildDashboard(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.Dashboard, func() error, error) {
	opts := []services.Option{
		services.WithLogger(logger),
		services.WithTopN(cfg.Dataset.TopN),
	}

	cleanup := func() error { return nil }
	if cfg.Cache.RedisAddr != "" {
		c, err := cache.Dial(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("result cache disabled", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			opts = append(opts, services.WithCache(c))
			cleanup = c.Close
			logger.Info("result cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		}
	}

	dashboard := services.NewDashboard(opts...)

	loadCtx, cancel := context.WithTimeout(ctx, datasetLoadTimeout)
	defer cancel()

	src := loader.Source{Path: cfg.Dataset.File, Sheet: cfg.Dataset.Sheet, Columns: cfg.Dataset.Columns}
	if err := dashboard.LoadFromFile(loadCtx, src); err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return dashboard, cleanup, nil
}

// newHandler wires routes and the middleware chain.
func newHandler(cfg *config.Config, dashboard *services.Dashboard, rateLimiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handlers.NewPageHandlers(dashboard, logger).HandleDashboard,
	}
	srv := server.NewServer(dashboard, logger, templateHandlers)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(cfg.Security),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return chain(srv)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"dataset", cfg.Dataset.File,
	)

	dashboard, cleanup, err := buildDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	go rateLimiter.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(context.Context) error {
		logger.Info("closing result cache")
		return cleanup()
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("application stopped gracefully")
	return nil
}

// Package main implements the demandscope dashboard API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconsports/demandscope/engine/bootstrap"
	"github.com/iconsports/demandscope/pkg/config"
	"github.com/iconsports/demandscope/pkg/metrics"
	"github.com/iconsports/demandscope/pkg/mid"
	"github.com/iconsports/demandscope/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "demandscope-api"

func main() {
	configPath := flag.String("config", os.Getenv("DEMANDSCOPE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: serviceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdownTracing(context.Background())

	m := metrics.New()
	app, err := bootstrap.Build(ctx, cfg, serviceName, logger, m)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close(context.Background())

	if cfg.Server.DashboardPassword == "" {
		logger.Warn("DASHBOARD_PASSWORD not set; API authentication is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newHandler(app, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Full production runs pace provider calls for minutes.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server starting", "port", cfg.Server.Port, "api_mode", app.Service.APIMode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

// newHandler builds the routed, middleware-wrapped API handler.
func newHandler(app *bootstrap.App, cfg *config.Config, logger *slog.Logger) http.Handler {
	s := &server{
		svc:           app.Service,
		store:         app.Store,
		secret:        cfg.Server.DashboardPassword,
		secureCookies: cfg.Server.SecureCookies,
		logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth", s.handleLogin)
	mux.HandleFunc("DELETE /api/auth", s.handleLogout)
	mux.HandleFunc("POST /api/dataforseo", s.handleAction)
	mux.HandleFunc("GET /api/stored-data", s.handleStoredData)
	mux.HandleFunc("POST /api/reports", s.handleReports)
	mux.Handle("GET /metrics", app.Metrics.Handler())

	// Observe sits inside OTel so it sees the routed request.
	return mid.Chain(mux,
		mid.Recover(logger),
		mid.OTel(serviceName),
		mid.Observe(logger, app.Metrics),
		mid.CORS(cfg.Server.CORSOrigin),
		mid.SharedSecret(cfg.Server.DashboardPassword, "/api/auth", "/api/health"),
	)
}

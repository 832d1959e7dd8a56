package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/leadsplit/internal/adapters/auth"
	"github.com/okian/leadsplit/internal/adapters/http/api"
	"github.com/okian/leadsplit/internal/adapters/http/site"
	"github.com/okian/leadsplit/internal/adapters/http/swagger"
	"github.com/okian/leadsplit/internal/adapters/mail"
	"github.com/okian/leadsplit/internal/adapters/repository"
	app "github.com/okian/leadsplit/internal/app"
	"github.com/okian/leadsplit/internal/config"
	"github.com/okian/leadsplit/pkg/logger"
	"github.com/okian/leadsplit/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 15 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	if err := configureLogging(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "failed to configure logging:", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "service exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// configureLogging applies log_format and log_level. An invalid level falls
// back to info with a warning.
func configureLogging(ctx context.Context, cfg *config.Config) error {
	if cfg.LogFormat != logger.FormatText {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return err
		}
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// configureMetrics rebuilds the global metrics manager from the metrics_*
// settings and returns the registry the /metrics endpoint serves.
func configureMetrics(cfg *config.Config) *prometheus.Registry {
	return metrics.Init(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
	)
}

// run wires the store, the service and the HTTP server, and blocks until ctx
// is cancelled or the server fails.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	configureMetrics(cfg).MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := repository.Open(ctx, cfg.DBPath, repository.WithLogger(log.Named("store")))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	svc, iss, err := newService(cfg, store)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, iss),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the token issuer, the mailer and the service over store.
func newService(cfg *config.Config, store repository.Store) (*app.Service, *auth.Issuer, error) {
	iss, err := auth.NewIssuer(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		return nil, nil, fmt.Errorf("token issuer: %w", err)
	}

	var mailer mail.Mailer = mail.NewLogMailer(logger.Get().Named("mail"))
	if cfg.MailEnabled() {
		mailer, err = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("smtp mailer: %w", err)
		}
	}

	svc := app.New(
		app.WithLogger(logger.Get().Named("service")),
		app.WithStore(store),
		app.WithIssuer(iss),
		app.WithMailer(mailer),
		app.WithOTPTTL(cfg.OTPTTL),
		app.WithMailQueueSize(cfg.MailQueueSize),
		app.WithMailWorkerCount(cfg.MailWorkerCount),
	)
	return svc, iss, nil
}

// newHandler registers every route and wraps the mux with logging and CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, iss *auth.Issuer) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, iss,
		api.WithUploadMaxBytes(cfg.UploadMaxBytes),
		api.WithCORSOrigin(cfg.CORSOrigin),
		api.WithReadiness(svc),
	)
	apiServer.Register(ctx, mux)
	return apiServer.Handler(mux)
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["mailQueueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if agents, ok := stats["agents"].(int); ok {
		metrics.UpdateAgentsTotal(agents)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/dental-voice-api/internal/api/router"
	"github.com/wolfman30/dental-voice-api/internal/appointments"
	"github.com/wolfman30/dental-voice-api/internal/auth"
	appconfig "github.com/wolfman30/dental-voice-api/internal/config"
	"github.com/wolfman30/dental-voice-api/internal/dashboard"
	"github.com/wolfman30/dental-voice-api/internal/database"
	"github.com/wolfman30/dental-voice-api/internal/http/handlers"
	"github.com/wolfman30/dental-voice-api/internal/notify"
	"github.com/wolfman30/dental-voice-api/internal/observability/metrics"
	"github.com/wolfman30/dental-voice-api/internal/patients"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental voice API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic_timezone", cfg.ClinicTimezone,
	)

	if cfg.AdminJWTSecret == "" {
		logger.Error("ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, database.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, dispatcher := newServer(cfg, pool, pool, reg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned", "error", err)
	}

	logger.Info("server stopped")
}

// newServer wires repositories, services and handlers over db and returns
// the routed handler plus the notification dispatcher that shutdown drains.
func newServer(cfg *appconfig.Config, db database.DB, pinger handlers.Pinger, reg *prometheus.Registry, logger *logging.Logger) (http.Handler, *notify.Dispatcher) {
	serviceMetrics := metrics.NewServiceMetrics(reg)
	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("using host timezone for the clinic calendar", "error", err, "host_zone", loc.String())
	}

	relay := notify.NewWhatsAppClient(cfg.WhatsAppBridgeURL,
		notify.WithCountryCode(cfg.WhatsAppCountryCode),
		notify.WithLogger(logger),
	)
	dispatcher := notify.NewDispatcher(relay, cfg.NotifyTimeout, serviceMetrics, logger)

	patientRepo := patients.NewPostgresRepositoryWithDB(db)
	patientSvc := patients.NewService(patientRepo, logger)
	appointmentSvc := appointments.NewService(
		appointments.NewPostgresRepositoryWithDB(db),
		patientRepo,
		logger,
		appointments.WithNotifier(dispatcher),
		appointments.WithLocation(loc),
	)

	tokens := auth.NewTokenIssuer(cfg.AdminJWTSecret, cfg.AdminTokenTTL)
	logger.Info("admin tokens configured", "ttl", tokens.TTL().String())
	authSvc := auth.NewService(auth.NewPostgresUserRepositoryWithDB(db), tokens, logger)

	dashboardSvc := dashboard.NewService(dashboard.NewRepositoryWithDB(db), loc, logger)

	handler := router.New(&router.Config{
		Logger: logger,
		System: handlers.NewSystemHandler(pinger, logger),
		Tools: handlers.NewToolsHandler(handlers.ToolsHandlerConfig{
			Patients:     patientSvc,
			Appointments: appointmentSvc,
			Recorder:     serviceMetrics,
			Logger:       logger,
		}),
		AdminAuth:           handlers.NewAdminAuthHandler(authSvc, serviceMetrics, logger),
		Dashboard:           dashboard.NewHandler(dashboardSvc, reg, logger),
		Authenticator:       authSvc,
		Users:               authSvc,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		TrustProxyHeaders:   cfg.TrustProxyHeaders,
		LoginRateLimitRPS:   cfg.LoginRateLimitRPS,
		LoginRateLimitBurst: cfg.LoginRateLimitBurst,
	})
	return handler, dispatcher
}

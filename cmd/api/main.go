package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/shopkit/fisrv-gateway/internal/checkout/adapters"
	"github.com/shopkit/fisrv-gateway/internal/checkout/adapters/fisrv"
	httpadapter "github.com/shopkit/fisrv-gateway/internal/checkout/adapters/http"
	checkoutpostgres "github.com/shopkit/fisrv-gateway/internal/checkout/adapters/postgres"
	checkoutapp "github.com/shopkit/fisrv-gateway/internal/checkout/app"
	"github.com/shopkit/fisrv-gateway/internal/checkout/app/commands"
	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
	checkoutmetrics "github.com/shopkit/fisrv-gateway/internal/checkout/metrics"
	"github.com/shopkit/fisrv-gateway/internal/config"
	"github.com/shopkit/fisrv-gateway/internal/database"
	"github.com/shopkit/fisrv-gateway/internal/kafka"
	"github.com/shopkit/fisrv-gateway/internal/telemetry"
	tokenspostgres "github.com/shopkit/fisrv-gateway/internal/tokens/postgres"
)

func main() {
	bootLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(bootLogger)

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := initTelemetry(ctx, cfg)
	if err != nil {
		bootLogger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	busMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create event bus metrics", "error", err)
		os.Exit(1)
	}
	appMetrics, err := checkoutmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create checkout metrics", "error", err)
		os.Exit(1)
	}

	repo := adapters.NewObservableRepository(checkoutpostgres.NewRepository(pool), dbMetrics)
	tokenStore := tokenspostgres.NewStore(pool)
	eventBus := adapters.NewObservableEventBus(kafka.NewNoopEventBus(), busMetrics)
	client := fisrv.NewClient(fisrv.Config{Production: cfg.Gateway.Production})

	settings := commands.Settings{
		Credentials: domain.Credentials{
			APIKey:    cfg.Gateway.APIKey,
			APISecret: cfg.Gateway.APISecret,
			StoreID:   cfg.Gateway.StoreID,
		},
		SiteLanguage:   cfg.Gateway.SiteLanguage,
		StorefrontBase: cfg.Gateway.StorefrontBaseURL,
		ServiceBase:    cfg.Gateway.ServiceBaseURL,
		WebhookPath:    httpadapter.WebhookPath,
		AutoComplete:   cfg.Gateway.AutoComplete,
		LinkTTL:        cfg.Gateway.LinkTTL,
	}

	service := checkoutapp.NewService(repo, client, tokenStore, eventBus, logger, appMetrics, settings)
	checkoutHandler := httpadapter.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	checkoutHandler.Register(mux)

	handler := withRecovery(withLogging(httpadapter.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	telCfg := telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}

	// Without a collector endpoint the instrumentation stays active but
	// exports nowhere.
	if cfg.Telemetry.OTelEndpoint == "" {
		return telemetry.Initialize(ctx, telCfg,
			telemetry.WithTraceExporter(telemetry.NewNoopTraceExporter()),
			telemetry.WithMetricExporter(telemetry.NewNoopMetricExporter()),
		)
	}

	return telemetry.Initialize(ctx, telCfg)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

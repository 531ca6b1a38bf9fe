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

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pixelshield/portal-api/internal/config"
	"github.com/pixelshield/portal-api/internal/handler"
	"github.com/pixelshield/portal-api/internal/infra/cache"
	"github.com/pixelshield/portal-api/internal/infra/flatfile"
	"github.com/pixelshield/portal-api/internal/infra/observability"
	"github.com/pixelshield/portal-api/internal/infra/resilience"
	"github.com/pixelshield/portal-api/internal/infra/sheets"
	"github.com/pixelshield/portal-api/internal/infra/supabase"
	"github.com/pixelshield/portal-api/internal/port"
	"github.com/pixelshield/portal-api/internal/service"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "portal-api")
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdownTracer = func(context.Context) error { return nil }
	}

	metrics := observability.NewMetrics()
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Backend wiring. The primary is the Supabase table store; the fallback
	// is the spreadsheet when configured, the local JSON file otherwise.
	// Staff accounts and leads live only in the primary.
	var (
		primary   port.ClientRecordBackend
		fallback  port.ClientRecordBackend
		staff     port.StaffStore
		leadStore port.LeadStore
	)
	breakers := map[string]*gobreaker.CircuitBreaker{}

	if cfg.UseSupabase() {
		cb := resilience.NewCircuitBreaker("supabase")
		breakers["supabase"] = cb
		sb := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			logger,
		)
		primary = sb
		staff = sb
		leadStore = sb
		logger.Info("primary backend: supabase", zap.String("url", cfg.SupabaseURL))
	} else {
		logger.Warn("primary backend not configured, client lookups go straight to the fallback")
	}

	if cfg.UseSheet() {
		cb := resilience.NewCircuitBreaker("sheets")
		breakers["sheets"] = cb
		fallback = sheets.NewStore(
			httpClient,
			cfg.SheetID,
			cfg.SheetKey,
			cfg.SheetRange,
			cb,
			cache.New[[][]string](cfg.CacheTTL),
			metrics,
			logger,
		)
		logger.Info("fallback backend: google sheet", zap.String("range", cfg.SheetRange))
	} else {
		fallback = flatfile.NewStore(cfg.ClientsFilePath, logger)
		logger.Info("fallback backend: flat file", zap.String("path", cfg.ClientsFilePath))
	}

	// Reads and writes outside the login flow use one backend only, chosen
	// here: a write must never land in a different store than the one it
	// was read from.
	recordBackend := primary
	if recordBackend == nil {
		recordBackend = fallback
	}

	authSvc := service.NewAuthService(primary, fallback, staff, metrics, logger)
	clientSvc := service.NewClientService(recordBackend, metrics, logger)
	leadSvc := service.NewLeadService(leadStore, metrics, logger)

	router := handler.NewRouter(handler.Deps{
		Auth:           authSvc,
		Clients:        clientSvc,
		Leads:          leadSvc,
		Metrics:        metrics,
		Logger:         logger,
		Breakers:       breakers,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("portal API listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(ctx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}

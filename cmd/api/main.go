package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/davenolan/littleshop-backend/api/routes"
	"github.com/davenolan/littleshop-backend/internal/coupons"
	"github.com/davenolan/littleshop-backend/internal/invoices"
	"github.com/davenolan/littleshop-backend/internal/items"
	"github.com/davenolan/littleshop-backend/internal/merchants"
	"github.com/davenolan/littleshop-backend/pkg/config"
	"github.com/davenolan/littleshop-backend/pkg/db"
	"github.com/davenolan/littleshop-backend/pkg/logger"
	"github.com/davenolan/littleshop-backend/pkg/metrics"
	"github.com/davenolan/littleshop-backend/pkg/migrate"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	merchantRepo := merchants.NewRepository(dbClient.DB())
	invoiceRepo := invoices.NewRepository(dbClient.DB())
	itemRepo := items.NewRepository(dbClient.DB())
	couponRepo := coupons.NewRepository(dbClient.DB())

	merchantService, err := merchants.NewService(merchantRepo, invoiceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create merchant service", err)
		os.Exit(1)
	}

	itemService, err := items.NewService(itemRepo, merchantRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(couponRepo, invoiceRepo, merchantRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			httpMetrics,
			merchantService,
			itemService,
			couponService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs := multierr.Append(server.Shutdown(shutdownCtx), <-errCh)
		if err := multierr.Combine(filterServerClosed(errs)...); err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func filterServerClosed(err error) []error {
	var out []error
	for _, e := range multierr.Errors(err) {
		if errors.Is(e, http.ErrServerClosed) {
			continue
		}
		out = append(out, e)
	}
	return out
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/core"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap("finboard")

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", backendConfig.Type)
		os.Exit(1)
	}
	b := result.Backend

	ids := services.NewIDGenerator(time.Now)
	reports := services.NewReports(b.Transactions, cfg.ReportCacheTTL)
	deps := apphttp.Deps{
		Accounts: services.NewCatalog(b.Catalogs.Accounts,
			services.WithPublisher[core.Account](b.Publisher),
			services.WithIDGenerator[core.Account](ids)),
		Categories: services.NewCatalog(b.Catalogs.Categories,
			services.WithPublisher[core.Category](b.Publisher),
			services.WithIDGenerator[core.Category](ids)),
		PaymentMethods: services.NewCatalog(b.Catalogs.PaymentMethods,
			services.WithPublisher[core.PaymentMethod](b.Publisher),
			services.WithIDGenerator[core.PaymentMethod](ids)),
		Transactions: services.NewTransactions(b.Transactions),
		Reports:      reports,
		Dashboard:    services.NewDashboard(b.Catalogs.Accounts, b.Transactions, reports),
		Ready:        b.Ping,
		Backend:      b.Type.String(),
		Logger: applog.New(applog.Config{
			Component: applog.ComponentHTTP,
			Handler:   slog.Default().Handler(),
		}),
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting finboard server",
		"port", cfg.Port,
		"backend", b.Type,
		"publishing", b.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = result.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

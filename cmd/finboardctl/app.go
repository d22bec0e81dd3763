package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/services"
)

// app is one CLI invocation's view of the backend.
type app struct {
	result *backend.BackendResult

	accounts       *services.Catalog[core.Account]
	categories     *services.Catalog[core.Category]
	paymentMethods *services.Catalog[core.PaymentMethod]
	transactions   *services.Transactions
	reports        *services.Reports
}

func loadConfig() (*config.Config, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if backendFlag != "" {
		cfg.DataBackend = strings.ToLower(backendFlag)
	}
	// keep CLI output readable; errors still reach stderr
	if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger("finboardctl", cfg)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", backendConfig.Type, err)
	}
	return newApp(result, cfg.ReportCacheTTL), nil
}

func newApp(result *backend.BackendResult, ttl time.Duration) *app {
	b := result.Backend
	ids := services.NewIDGenerator(time.Now)
	return &app{
		result: result,
		accounts: services.NewCatalog(b.Catalogs.Accounts,
			services.WithPublisher[core.Account](b.Publisher),
			services.WithIDGenerator[core.Account](ids)),
		categories: services.NewCatalog(b.Catalogs.Categories,
			services.WithPublisher[core.Category](b.Publisher),
			services.WithIDGenerator[core.Category](ids)),
		paymentMethods: services.NewCatalog(b.Catalogs.PaymentMethods,
			services.WithPublisher[core.PaymentMethod](b.Publisher),
			services.WithIDGenerator[core.PaymentMethod](ids)),
		transactions: services.NewTransactions(b.Transactions),
		reports:      services.NewReports(b.Transactions, ttl),
	}
}

func (a *app) Close() error {
	return a.result.Close()
}

// withApp opens the backend for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// parseKind accepts singular, plural and underscore spellings.
func parseKind(s string) (core.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "account", "accounts":
		return core.KindAccount, nil
	case "category", "categories":
		return core.KindCategory, nil
	case "payment-method", "payment-methods", "payment_method", "payment_methods":
		return core.KindPaymentMethod, nil
	default:
		return "", fmt.Errorf("unknown kind %q: use accounts, categories or payment-methods", s)
	}
}

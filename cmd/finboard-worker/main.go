package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	"finboard/internal/services"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap("finboard-worker")
	logger.Info("Starting finboard-worker")

	// SQLite change_log is the outbox every change passes through.
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - relaying changes written directly to SQLite")
	}

	var relay *services.ChangeRelay
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:     cfg.GoogleSpreadsheetID,
			TransactionsSheet: cfg.GoogleTransactionsSheet,
			ChangesSheet:      cfg.GoogleChangesSheet,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		relayConfig := services.DefaultChangeRelayConfig()
		relayConfig.BatchSize = cfg.RelayBatchSize
		relayConfig.PollInterval = cfg.RelayInterval
		relay = services.NewChangeRelay(sqliteRepo, sheetsClient, relayConfig)
		logger.Info("Google Sheets relay configured",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"batch_size", relayConfig.BatchSize,
			"interval", relayConfig.PollInterval)
	} else {
		logger.Info("Google Sheets disabled - changes stay in the local change log")
	}

	if amqpClient == nil && relay == nil {
		logger.Error("Nothing to do: configure AMQP_URL and/or GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	changeWorker := worker.NewChangeWorker(sqliteRepo, sqliteRepo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if relay != nil {
			if err := relay.Stop(ctx); err != nil {
				logger.Warn("Change relay stop error", "error", err)
			}
		}
	})

	if err := changeWorker.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeChanges(gctx, changeWorker.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if relay != nil {
		if err := relay.Start(gctx); err != nil {
			logger.Error("Failed to start change relay", "error", err)
			os.Exit(1)
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", "error", err)
		if relay != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = relay.Stop(stopCtx)
			cancel()
		}
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"time"

	"cashmonitor/internal/amqp"
	"cashmonitor/internal/backend"
	"cashmonitor/internal/cache"
	"cashmonitor/internal/cli"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
	gsheet "cashmonitor/internal/sheets/google"
	"cashmonitor/internal/worker"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = 10 * time.Minute
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)
	if err := cfg.ValidateExport(); err != nil {
		cli.Fatal(logger, "Export configuration invalid", err)
	}
	logger.Info("Starting export-worker", "backend", cfg.DataBackend, "spreadsheet_id", cfg.GoogleSpreadsheetID)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize storage backend", err)
	}
	store := ledger.NewStore(res.Store, logger)

	creds, err := gsheet.LoadCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		cli.Fatal(logger, "Failed to load Google credentials", err)
	}
	sheetsClient, err := gsheet.NewWithCredentials(context.Background(), cfg.GoogleSpreadsheetID, creds, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	var events worker.EventSource
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		events = amqpClient
	} else {
		logger.Info("AMQP disabled - only periodic exports will run")
	}

	w := worker.NewExportWorker(store, sheetsClient, events, worker.Config{
		Interval:    cfg.ExportInterval,
		Concurrency: cfg.ExportConcurrency,
	}, logger)
	janitor := cache.NewJanitor(logger)
	janitor.Register(sheetsClient.TabCache())

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		if err := w.Stop(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Export worker stopped with error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage backend", log.FieldError, err)
		}
	})

	go func() {
		if err := janitor.Run(ctx, janitorInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Cache janitor stopped", log.FieldError, err)
		}
	}()

	if err := w.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start export worker", err)
	}

	cli.WaitForShutdown(ctx, done)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashmonitor/internal/amqp"
	"cashmonitor/internal/backend"
	"cashmonitor/internal/categories"
	"cashmonitor/internal/config"
	"cashmonitor/internal/gate"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
	"cashmonitor/internal/services"
	"cashmonitor/internal/storage"
)

// App is the set of services one command invocation works with.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Store      *ledger.Store
	Ledger     *services.LedgerService
	Recurring  *services.RecurringManager
	Savings    *services.SavingsManager
	PINs       *gate.PINStore
	Categories categories.Set

	events  *amqp.Client
	cleanup backend.CleanupFunc
}

// AppOptions overrides parts of the wiring.
type AppOptions struct {
	Now func() time.Time
	// Docs replaces the configured backend.
	Docs storage.Store
}

// OpenApp builds the backend and services described by cfg.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger, opts AppOptions) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	docs := opts.Docs
	if docs == nil {
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, err
		}
		res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, err
		}
		docs, app.cleanup = res.Store, res.Cleanup
	}
	app.Store = ledger.NewStore(docs, logger)

	recurring, err := services.NewRecurringManager(ctx, app.Store, logger)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("load recurring items: %w", err)
	}
	app.Recurring = recurring
	app.Savings = services.NewSavingsManager(ctx, app.Store, logger)
	app.PINs = gate.NewPINStore(app.Store, logger)

	app.Categories, err = categories.Load(cfg.CategoriesFile)
	if err != nil {
		logger.WarnContext(ctx, "Categories file unreadable, using defaults", log.FieldError, err)
	}

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			app.events = client
			events = client
		}
	}

	app.Ledger = services.NewLedgerService(app.Store, app.Recurring, services.LedgerOptions{
		Cascade: cfg.RolloverCascade,
		Events:  events,
		Now:     opts.Now,
		Logger:  logger,
	})
	return app, nil
}

// Close releases the event connection and the backend.
func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.cleanup != nil {
		errs = append(errs, a.cleanup())
	}
	return errors.Join(errs...)
}

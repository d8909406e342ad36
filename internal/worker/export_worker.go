// Package worker mirrors stored months into an external spreadsheet, driven
// by month-changed events and a periodic full pass.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cashmonitor/internal/amqp"
	"cashmonitor/internal/core"
	"cashmonitor/internal/log"
	"cashmonitor/internal/sheets"
)

// MonthSource reads stored months.
type MonthSource interface {
	LoadMonth(ctx context.Context, year, month int) (*core.MonthSheet, error)
	ListAvailableMonths(ctx context.Context) ([]core.MonthKey, error)
}

// EventSource delivers month-changed events until ctx ends.
type EventSource interface {
	ConsumeMonthChanged(ctx context.Context, handler func(context.Context, *amqp.MonthChangedMessage) error) error
}

type Config struct {
	// Interval between full export passes; zero disables the periodic pass.
	Interval time.Duration
	// Concurrency bounds parallel exports during a full pass.
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Minute,
		Concurrency: 4,
	}
}

type ExportWorker struct {
	months   MonthSource
	exporter sheets.MonthExporter
	events   EventSource
	config   Config
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	lastErr error
}

// NewExportWorker creates a worker. events may be nil, leaving only the
// periodic pass.
func NewExportWorker(months MonthSource, exporter sheets.MonthExporter, events EventSource, config Config, logger *log.Logger) *ExportWorker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		months:   months,
		exporter: exporter,
		events:   events,
		config:   config,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMonthChanged exports the month named by msg.
func (w *ExportWorker) HandleMonthChanged(ctx context.Context, msg *amqp.MonthChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing month changed message",
		log.FieldMonthKey, msg.Key().String(),
		"reason", msg.Reason)
	return w.ExportMonth(ctx, msg.Key())
}

// ExportMonth loads one month from storage and hands it to the exporter.
func (w *ExportWorker) ExportMonth(ctx context.Context, key core.MonthKey) error {
	sheet, err := w.months.LoadMonth(ctx, key.Year, key.Month)
	if err != nil {
		return fmt.Errorf("load month %s: %w", key, err)
	}
	if err := w.exporter.ExportMonth(ctx, sheet); err != nil {
		return fmt.Errorf("export month %s: %w", key, err)
	}
	return nil
}

// ExportAll exports every stored month. A failing month does not stop the
// others; all failures are returned joined.
func (w *ExportWorker) ExportAll(ctx context.Context) (int, error) {
	keys, err := w.months.ListAvailableMonths(ctx)
	if err != nil {
		return 0, fmt.Errorf("list months: %w", err)
	}

	var (
		mu       sync.Mutex
		failures []error
		exported int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := w.ExportMonth(gctx, key); err != nil {
				w.logger.ErrorContext(gctx, "Month export failed",
					log.FieldMonthKey, key.String(), log.FieldError, err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			exported++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	w.logger.InfoContext(ctx, "Full export pass completed",
		"total", len(keys),
		"exported", exported,
		"errors", len(failures))
	return exported, errors.Join(failures...)
}

// Run performs a full pass, then consumes events and repeats the pass on
// every interval until ctx ends.
func (w *ExportWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if w.events != nil {
		g.Go(func() error {
			err := w.events.ConsumeMonthChanged(gctx, w.HandleMonthChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		if _, err := w.ExportAll(gctx); err != nil {
			w.logger.WarnContext(gctx, "Startup export had failures", log.FieldError, err)
		}
		if w.config.Interval <= 0 {
			return nil
		}
		ticker := time.NewTicker(w.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := w.ExportAll(gctx); err != nil {
					w.logger.WarnContext(gctx, "Periodic export had failures", log.FieldError, err)
				}
			}
		}
	})

	return g.Wait()
}

// Start runs the worker in the background. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("export worker is already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.lastErr = nil

	go func(done chan struct{}) {
		defer close(done)
		err := w.Run(ctx)
		w.mu.Lock()
		w.lastErr = err
		w.running = false
		w.mu.Unlock()
	}(w.doneCh)

	w.logger.InfoContext(ctx, "Export worker started",
		"interval", w.config.Interval,
		"concurrency", w.config.Concurrency)
	return nil
}

// Stop cancels a running worker and waits for it to finish.
func (w *ExportWorker) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.doneCh
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancel = nil
	w.logger.Info("Export worker stopped")
	return w.lastErr
}

// IsRunning reports whether Start was called and the worker has not exited.
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

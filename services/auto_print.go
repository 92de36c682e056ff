package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"snack-shop/libs"
	"snack-shop/models"
)

type Printer interface {
	Print(ctx context.Context, order models.Order) error
}

type PrintMode string

const (
	// PrintModeLatest prints only the newest fresh order of each update.
	PrintModeLatest PrintMode = "latest"
	// PrintModeQueue prints every fresh order, oldest first.
	PrintModeQueue PrintMode = "queue"
)

func ParsePrintMode(s string) PrintMode {
	if PrintMode(s) == PrintModeQueue {
		return PrintModeQueue
	}
	return PrintModeLatest
}

// AutoPrintDispatcher prints pending orders at most once per process.
// An order is marked dispatched before its print is attempted, so a
// failed print is reported and never retried automatically.
type AutoPrintDispatcher struct {
	printer  Printer
	mode     PrintMode
	enabled  func() bool
	notifier *Notifier
	log      *slog.Logger
	timeout  time.Duration

	mu         sync.Mutex
	dispatched map[string]struct{}
}

func NewAutoPrintDispatcher(printer Printer, mode PrintMode, enabled func() bool, notifier *Notifier, log *slog.Logger) *AutoPrintDispatcher {
	return &AutoPrintDispatcher{
		printer:    printer,
		mode:       mode,
		enabled:    enabled,
		notifier:   notifier,
		log:        log,
		timeout:    10 * time.Second,
		dispatched: map[string]struct{}{},
	}
}

func (d *AutoPrintDispatcher) Mode() PrintMode { return d.mode }

// Observe inspects a snapshot and prints fresh pending orders. It returns
// the ids a print was attempted for.
func (d *AutoPrintDispatcher) Observe(snap Snapshot) []string {
	if !d.enabled() || !snap.Live {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	fresh := []models.Order{}
	for _, o := range snap.Orders {
		if o.Status != models.StatusPending {
			continue
		}
		if _, seen := d.dispatched[o.ID]; seen {
			continue
		}
		fresh = append(fresh, o)
	}
	if len(fresh) == 0 {
		return nil
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		}
		return fresh[i].ID < fresh[j].ID
	})
	for _, o := range fresh {
		d.dispatched[o.ID] = struct{}{}
	}

	targets := fresh
	if d.mode == PrintModeLatest {
		targets = fresh[len(fresh)-1:]
		if skipped := len(fresh) - 1; skipped > 0 {
			d.log.Info("auto-print skipped older pending orders", "skipped", skipped)
		}
	}

	printed := make([]string, 0, len(targets))
	for _, o := range targets {
		d.print(o)
		printed = append(printed, o.ID)
	}
	return printed
}

func (d *AutoPrintDispatcher) Dispatched(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.dispatched[id]
	return ok
}

func (d *AutoPrintDispatcher) print(o models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.printer.Print(ctx, o); err != nil {
		libs.PrintJobs.WithLabelValues("auto", "failed").Inc()
		d.log.Error("auto-print failed", "order_id", o.ID, "table", o.TableNumber, "error", err)
		d.notifier.Push(NotifyPrintFailed, o.ID, o.TableNumber, "auto-print failed: "+err.Error())
		return
	}
	libs.PrintJobs.WithLabelValues("auto", "sent").Inc()
	d.log.Info("auto-printed order", "order_id", o.ID, "table", o.TableNumber)
}

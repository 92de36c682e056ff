package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type SettingsStore interface {
	SaveAutoPrint(ctx context.Context, enabled bool) error
	LoadAutoPrint(ctx context.Context) (enabled bool, ok bool, err error)
}

// Session is the process-wide operator state: the auto-print toggle, the
// dispatched-order set and the failure feed. It ends with the process.
type Session struct {
	StartedAt     time.Time
	Dispatcher    *AutoPrintDispatcher
	Notifications *Notifier

	autoPrint  atomic.Bool
	projection *Projection
	settings   SettingsStore
	log        *slog.Logger
}

func NewSession(ctx context.Context, autoPrint bool, mode PrintMode, projection *Projection, printer Printer, settings SettingsStore, notifier *Notifier, log *slog.Logger) *Session {
	s := &Session{
		StartedAt:     time.Now(),
		Notifications: notifier,
		projection:    projection,
		settings:      settings,
		log:           log,
	}

	if settings != nil {
		if stored, ok, err := settings.LoadAutoPrint(ctx); err != nil {
			log.Warn("failed to load auto-print setting", "error", err)
		} else if ok {
			autoPrint = stored
		}
	}
	s.autoPrint.Store(autoPrint)

	s.Dispatcher = NewAutoPrintDispatcher(printer, mode, s.AutoPrintEnabled, notifier, log)
	projection.OnUpdate(func(snap Snapshot) {
		s.Dispatcher.Observe(snap)
	})
	return s
}

func (s *Session) AutoPrintEnabled() bool {
	return s.autoPrint.Load()
}

// SetAutoPrint flips the toggle. Turning it on prints whatever the
// current snapshot holds that has not been dispatched yet.
func (s *Session) SetAutoPrint(ctx context.Context, enabled bool) {
	s.autoPrint.Store(enabled)
	s.log.Info("auto-print toggled", "enabled", enabled)

	if s.settings != nil {
		if err := s.settings.SaveAutoPrint(ctx, enabled); err != nil {
			s.log.Warn("failed to persist auto-print setting", "error", err)
		}
	}
	if enabled {
		s.Dispatcher.Observe(s.projection.Snapshot())
	}
}

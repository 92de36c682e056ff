package repositories

import (
	"context"
	"sync"

	"snack-shop/models"
)

// Subscription is a cancellable stream of order collection snapshots.
// Events is closed once the producer has stopped.
type Subscription struct {
	events chan models.FeedEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewSubscription starts run on its own goroutine. run must return once ctx
// is done; emit reports false when the subscription has been closed.
func NewSubscription(ctx context.Context, run func(ctx context.Context, emit func(models.FeedEvent) bool)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		events: make(chan models.FeedEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.events)
		run(ctx, func(ev models.FeedEvent) bool {
			select {
			case s.events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	return s
}

func (s *Subscription) Events() <-chan models.FeedEvent {
	return s.events
}

// Close stops the producer and waits for it. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

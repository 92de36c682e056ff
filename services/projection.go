package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"snack-shop/libs"
	"snack-shop/models"
	"snack-shop/repositories"
)

type OrderFeed interface {
	Subscribe(ctx context.Context) (*repositories.Subscription, error)
}

type SnapshotStore interface {
	Save(ctx context.Context, orders []models.Order) error
	Load(ctx context.Context) (*repositories.CachedSnapshot, error)
}

// Snapshot is one immutable view of the order collection.
type Snapshot struct {
	Orders []models.Order
	// Live is false while the projection serves a cached bootstrap.
	Live      bool
	UpdatedAt time.Time
	Version   uint64
}

func (s Snapshot) Find(id string) (models.Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// Projection keeps the latest order collection pushed by the store.
// Each delivery replaces the collection wholesale.
type Projection struct {
	feed  OrderFeed
	cache SnapshotStore
	log   *slog.Logger
	now   func() time.Time

	mu        sync.RWMutex
	snap      Snapshot
	listeners []func(Snapshot)

	lifeMu sync.Mutex
	sub    *repositories.Subscription
	done   chan struct{}
}

func NewProjection(feed OrderFeed, cache SnapshotStore, log *slog.Logger) *Projection {
	return &Projection{
		feed:  feed,
		cache: cache,
		log:   log,
		now:   time.Now,
		snap:  Snapshot{Orders: []models.Order{}},
	}
}

// OnUpdate registers fn to run after every live update. Listeners run
// one at a time on the projection goroutine.
func (p *Projection) OnUpdate(fn func(Snapshot)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Start serves the cached collection, if any, then subscribes to the
// store. Calling Start on a running projection is a no-op.
func (p *Projection) Start(ctx context.Context) error {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	if p.sub != nil {
		return nil
	}

	p.bootstrap(ctx)

	sub, err := p.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrSubscription, err)
	}
	p.sub = sub
	p.done = make(chan struct{})
	go p.run(sub, p.done)
	return nil
}

// Stop cancels the subscription and waits for the update loop to exit.
func (p *Projection) Stop() {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	if p.sub == nil {
		return
	}
	p.sub.Close()
	<-p.done
	p.sub = nil
}

func (p *Projection) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.snap
	snap.Orders = append([]models.Order(nil), p.snap.Orders...)
	return snap
}

func (p *Projection) bootstrap(ctx context.Context) {
	if p.cache == nil {
		return
	}
	cached, err := p.cache.Load(ctx)
	if err != nil {
		p.log.Warn("snapshot cache unavailable", "error", err)
		return
	}
	if cached == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.Live {
		return
	}
	orders := cached.Orders
	if orders == nil {
		orders = []models.Order{}
	}
	p.snap = Snapshot{Orders: orders, UpdatedAt: cached.SavedAt, Version: p.snap.Version}
	p.log.Info("serving cached orders until the feed connects", "orders", len(orders), "saved_at", cached.SavedAt)
}

func (p *Projection) run(sub *repositories.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.Events() {
		if ev.Err != nil {
			libs.FeedErrors.Inc()
			p.log.Error("order feed error, keeping last snapshot", "error", ev.Err)
			continue
		}
		p.apply(ev.Records)
	}
}

func (p *Projection) apply(records []models.OrderRecord) {
	now := p.now()
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		res := ParseRecord(rec, now)
		for _, issue := range res.Issues {
			libs.MalformedRecords.WithLabelValues(issue.Field).Inc()
			p.log.Warn("malformed order record", "order_id", issue.OrderID, "field", issue.Field, "reason", issue.Reason)
		}
		if !res.Usable() {
			continue
		}
		orders = append(orders, res.Order)
	}

	p.mu.Lock()
	p.snap = Snapshot{Orders: orders, Live: true, UpdatedAt: now, Version: p.snap.Version + 1}
	snap := p.snap
	listeners := append([]func(Snapshot){}, p.listeners...)
	p.mu.Unlock()

	libs.ProjectionOrders.Set(float64(len(orders)))
	p.mirror(orders)

	for _, fn := range listeners {
		fn(snap)
	}
}

func (p *Projection) mirror(orders []models.Order) {
	if p.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.cache.Save(ctx, orders); err != nil {
		p.log.Warn("failed to mirror orders to cache", "error", err)
	}
}

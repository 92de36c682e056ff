package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"snack-shop/models"
	"snack-shop/repositories"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePrinter struct {
	mu      sync.Mutex
	printed []string
	err     error
}

func (p *fakePrinter) Print(ctx context.Context, order models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = append(p.printed, order.ID)
	return p.err
}

func (p *fakePrinter) Printed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.printed...)
}

// chanFeed delivers whatever the test pushes onto events.
type chanFeed struct {
	events chan models.FeedEvent
}

func newChanFeed() *chanFeed {
	return &chanFeed{events: make(chan models.FeedEvent)}
}

func (f *chanFeed) Subscribe(ctx context.Context) (*repositories.Subscription, error) {
	return repositories.NewSubscription(ctx, func(ctx context.Context, emit func(models.FeedEvent) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.events:
				if !emit(ev) {
					return
				}
			}
		}
	}), nil
}

type failingFeed struct{}

func (failingFeed) Subscribe(ctx context.Context) (*repositories.Subscription, error) {
	return nil, errors.New("connection refused")
}

type memorySnapshots struct {
	mu     sync.Mutex
	cached *repositories.CachedSnapshot
	saves  int
}

func (m *memorySnapshots) Save(ctx context.Context, orders []models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.cached = &repositories.CachedSnapshot{SavedAt: time.Now(), Orders: orders}
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context) (*repositories.CachedSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cached, nil
}

func (m *memorySnapshots) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type testEnv struct {
	store      *repositories.MemoryOrderRepository
	menu       *repositories.MemoryMenuRepository
	projection *Projection
	notifier   *Notifier
	printer    *fakePrinter
	orders     *OrderService
	loc        *time.Location
}

func testMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: "rice", Name: "Rice", Price: 45, Category: "main", Available: true},
		{ID: "soup", Name: "Soup", Price: 30, Category: "soup", Available: true},
		{ID: "tea", Name: "Tea", Price: 25, Category: "drink", Available: false},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	env := &testEnv{
		store:    repositories.NewMemoryOrderRepository(),
		menu:     repositories.NewMemoryMenuRepository(testMenu()...),
		notifier: NewNotifier(20),
		printer:  &fakePrinter{},
		loc:      loc,
	}
	env.projection = NewProjection(env.store, nil, discardLogger())
	env.orders = NewOrderService(env.store, env.menu, env.projection, env.notifier, env.printer, OrderServiceConfig{
		Tables:       []string{"1", "2", "5", "10", "外帶"},
		WriteTimeout: time.Second,
		Location:     loc,
	}, discardLogger())

	require.NoError(t, env.projection.Start(context.Background()))
	t.Cleanup(env.projection.Stop)
	return env
}

// waitStatus blocks until the projection shows order id in status.
func (e *testEnv) waitStatus(t *testing.T, id string, status models.OrderStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		o, ok := e.projection.Snapshot().Find(id)
		return ok && o.Status == status
	}, 2*time.Second, 5*time.Millisecond)
}

func (e *testEnv) createOrder(t *testing.T, table string, items ...models.CreateOrderItemRequest) models.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(), models.CreateOrderRequest{TableNumber: table, Items: items})
	require.NoError(t, err)
	e.waitStatus(t, order.ID, models.StatusPending)
	return order
}

func (e *testEnv) advance(t *testing.T, id string, statuses ...models.OrderStatus) {
	t.Helper()
	for _, s := range statuses {
		_, err := e.orders.Transition(context.Background(), id, s)
		require.NoError(t, err)
		e.waitStatus(t, id, s)
	}
}

func rice(qty int) models.CreateOrderItemRequest {
	return models.CreateOrderItemRequest{MenuItemID: "rice", Quantity: qty}
}

func order(id, table string, status models.OrderStatus, total float64, createdAt time.Time) models.Order {
	return models.Order{
		ID:          id,
		TableNumber: table,
		Items:       []models.OrderItem{},
		TotalPrice:  total,
		Status:      status,
		CreatedAt:   createdAt,
	}
}

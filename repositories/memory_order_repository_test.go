package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"snack-shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, sub *Subscription) models.FeedEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no feed event")
	}
	return models.FeedEvent{}
}

func TestMemoryOrderRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryOrderRepository()
	items := []models.OrderItem{{MenuItemID: "1", Name: "Rice", Price: 45, Quantity: 2}}

	o, err := repo.Create(context.Background(), "5", items, 90)
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, models.StatusPending, o.Status)

	rec, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "5", *rec.TableNumber)
	assert.Equal(t, 90.0, *rec.TotalPrice)
	assert.Equal(t, "pending", *rec.Status)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestMemoryOrderRepositoryConditionalUpdate(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	o, err := repo.Create(ctx, "1", nil, 0)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, models.StatusPending, models.StatusPreparing))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, o.ID, models.StatusPending, models.StatusPreparing), models.ErrAlreadyInStatus)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, o.ID, models.StatusPending, models.StatusCancelled), models.ErrStaleStatus)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.StatusPending, models.StatusCancelled), models.ErrOrderNotFound)

	rec, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "preparing", *rec.Status)
}

func TestMemoryOrderRepositoryWriteHook(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	o, err := repo.Create(ctx, "1", nil, 0)
	require.NoError(t, err)

	repo.WriteHook = func(op, id string) error {
		if op == "delete" {
			return errors.New("denied")
		}
		return nil
	}
	assert.Error(t, repo.Delete(ctx, o.ID))
	assert.NoError(t, repo.UpdateStatus(ctx, o.ID, models.StatusPending, models.StatusCancelled))

	repo.WriteHook = nil
	require.NoError(t, repo.Delete(ctx, o.ID))
	assert.ErrorIs(t, repo.Delete(ctx, o.ID), models.ErrOrderNotFound)
}

func TestMemoryOrderRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	first, err := repo.Create(ctx, "1", nil, 0)
	require.NoError(t, err)
	second, err := repo.Create(ctx, "2", nil, 0)
	require.NoError(t, err)

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
}

func TestMemoryOrderRepositorySubscribe(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	sub, err := repo.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, nextEvent(t, sub).Records)

	o, err := repo.Create(ctx, "1", nil, 0)
	require.NoError(t, err)
	ev := nextEvent(t, sub)
	require.NoError(t, ev.Err)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, o.ID, ev.Records[0].ID)

	repo.InjectFeedError(errors.New("permission denied"))
	ev = nextEvent(t, sub)
	assert.EqualError(t, ev.Err, "permission denied")

	table := "9"
	repo.Put(models.OrderRecord{ID: "raw", TableNumber: &table})
	ev = nextEvent(t, sub)
	assert.Len(t, ev.Records, 2)
}

func TestSubscriptionClose(t *testing.T) {
	repo := NewMemoryOrderRepository()
	sub, err := repo.Subscribe(context.Background())
	require.NoError(t, err)
	nextEvent(t, sub)

	sub.Close()
	sub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)

	repo.mu.Lock()
	assert.Empty(t, repo.watchers)
	repo.mu.Unlock()
}

func TestSubscriptionStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSubscription(ctx, func(ctx context.Context, emit func(models.FeedEvent) bool) {
		for emit(models.FeedEvent{}) {
		}
	})
	nextEvent(t, sub)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"snack-shop/models"
	"snack-shop/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(orders ...models.Order) []models.OrderRecord {
	out := make([]models.OrderRecord, 0, len(orders))
	for _, o := range orders {
		out = append(out, models.RecordFromOrder(o))
	}
	return out
}

func waitVersion(t *testing.T, p *Projection, version uint64) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = p.Snapshot()
		return snap.Version >= version
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestProjectionReplacesSnapshotWholesale(t *testing.T) {
	feed := newChanFeed()
	cache := &memorySnapshots{}
	p := NewProjection(feed, cache, discardLogger())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	now := time.Now()
	feed.events <- models.FeedEvent{Records: records(
		order("a", "1", models.StatusPending, 10, now),
		order("b", "2", models.StatusPending, 20, now),
	)}
	snap := waitVersion(t, p, 1)
	assert.True(t, snap.Live)
	assert.Len(t, snap.Orders, 2)

	feed.events <- models.FeedEvent{Records: records(order("b", "2", models.StatusPreparing, 20, now))}
	snap = waitVersion(t, p, 2)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, models.StatusPreparing, snap.Orders[0].Status)
	assert.Equal(t, 2, cache.Saves())
}

func TestProjectionKeepsSnapshotOnFeedError(t *testing.T) {
	feed := newChanFeed()
	p := NewProjection(feed, nil, discardLogger())

	var mu sync.Mutex
	sizes := []int{}
	p.OnUpdate(func(s Snapshot) {
		mu.Lock()
		sizes = append(sizes, len(s.Orders))
		mu.Unlock()
	})
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	now := time.Now()
	feed.events <- models.FeedEvent{Records: records(order("a", "1", models.StatusPending, 10, now))}
	waitVersion(t, p, 1)

	feed.events <- models.FeedEvent{Err: errors.New("permission denied")}
	snap := p.Snapshot()
	assert.Len(t, snap.Orders, 1)
	assert.True(t, snap.Live)

	feed.events <- models.FeedEvent{Records: records(
		order("a", "1", models.StatusPending, 10, now),
		order("b", "1", models.StatusPending, 10, now),
	)}
	waitVersion(t, p, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, sizes)
}

func TestProjectionSkipsRecordsWithoutID(t *testing.T) {
	feed := newChanFeed()
	p := NewProjection(feed, nil, discardLogger())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	table := "3"
	feed.events <- models.FeedEvent{Records: []models.OrderRecord{
		{TableNumber: &table},
		{ID: "kept", TableNumber: &table},
	}}
	snap := waitVersion(t, p, 1)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "kept", snap.Orders[0].ID)
	assert.Equal(t, "3", snap.Orders[0].TableNumber)
	assert.False(t, snap.Orders[0].CreatedAt.IsZero())
}

func TestProjectionBootstrapsFromCache(t *testing.T) {
	saved := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	cache := &memorySnapshots{cached: &repositories.CachedSnapshot{
		SavedAt: saved,
		Orders:  []models.Order{order("cached", "5", models.StatusCompleted, 90, saved)},
	}}
	feed := newChanFeed()
	p := NewProjection(feed, cache, discardLogger())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	snap := p.Snapshot()
	assert.False(t, snap.Live)
	assert.Equal(t, saved, snap.UpdatedAt)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "cached", snap.Orders[0].ID)

	feed.events <- models.FeedEvent{Records: []models.OrderRecord{}}
	snap = waitVersion(t, p, 1)
	assert.True(t, snap.Live)
	assert.Empty(t, snap.Orders)
}

func TestProjectionStartFailure(t *testing.T) {
	p := NewProjection(failingFeed{}, nil, discardLogger())
	err := p.Start(context.Background())
	assert.ErrorIs(t, err, models.ErrSubscription)
	p.Stop()
}

func TestProjectionStopAndRestart(t *testing.T) {
	store := repositories.NewMemoryOrderRepository()
	p := NewProjection(store, nil, discardLogger())
	require.NoError(t, p.Start(context.Background()))
	waitVersion(t, p, 1)

	p.Stop()
	p.Stop()

	_, err := store.Create(context.Background(), "1", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, p.Snapshot().Orders)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()
	require.Eventually(t, func() bool {
		return len(p.Snapshot().Orders) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestProjectionSnapshotIsACopy(t *testing.T) {
	feed := newChanFeed()
	p := NewProjection(feed, nil, discardLogger())
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	feed.events <- models.FeedEvent{Records: records(order("a", "1", models.StatusPending, 10, time.Now()))}
	snap := waitVersion(t, p, 1)
	snap.Orders[0].Status = models.StatusPaid

	assert.Equal(t, models.StatusPending, p.Snapshot().Orders[0].Status)
}

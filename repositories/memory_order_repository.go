package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"snack-shop/models"

	"github.com/google/uuid"
)

type memoryWatcher struct {
	changed chan struct{}
	errs    chan error
}

// wait blocks until the collection changes, forwarding injected errors.
func (w *memoryWatcher) wait(ctx context.Context, emit func(models.FeedEvent) bool) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-w.errs:
			if !emit(models.FeedEvent{Err: err}) {
				return false
			}
		case <-w.changed:
			return true
		}
	}
}

// MemoryOrderRepository is an in-process order store with the same
// contract as OrderRepository. Used with STORE_DRIVER=memory and in tests.
type MemoryOrderRepository struct {
	mu       sync.Mutex
	records  map[string]models.OrderRecord
	seq      map[string]int
	next     int
	watchers map[int]*memoryWatcher
	nextW    int

	// Now stamps created_at on new orders.
	Now func() time.Time
	// WriteHook, when set, runs before every write and can fail it.
	WriteHook func(op, id string) error
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		records:  map[string]models.OrderRecord{},
		seq:      map[string]int{},
		watchers: map[int]*memoryWatcher{},
		Now:      time.Now,
	}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, tableNumber string, items []models.OrderItem, total float64) (models.Order, error) {
	if err := r.before(ctx, "create", ""); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:          uuid.NewString(),
		TableNumber: tableNumber,
		Items:       append([]models.OrderItem(nil), items...),
		TotalPrice:  total,
		Status:      models.StatusPending,
		CreatedAt:   r.Now(),
	}

	r.mu.Lock()
	r.putLocked(models.RecordFromOrder(order))
	r.mu.Unlock()
	r.broadcast()
	return order, nil
}

// Put stores a raw record as-is, replacing any record with the same id.
func (r *MemoryOrderRepository) Put(rec models.OrderRecord) {
	r.mu.Lock()
	r.putLocked(rec)
	r.mu.Unlock()
	r.broadcast()
}

func (r *MemoryOrderRepository) Get(ctx context.Context, id string) (models.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return models.OrderRecord{}, models.ErrOrderNotFound
	}
	return rec, nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	if err := r.before(ctx, "update_status", id); err != nil {
		return err
	}

	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return models.ErrOrderNotFound
	}
	current := ""
	if rec.Status != nil {
		current = *rec.Status
	}
	if current == string(to) {
		r.mu.Unlock()
		return models.ErrAlreadyInStatus
	}
	if current != string(from) {
		r.mu.Unlock()
		return models.ErrStaleStatus
	}
	status := string(to)
	rec.Status = &status
	r.records[id] = rec
	r.mu.Unlock()

	r.broadcast()
	return nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, id string) error {
	if err := r.before(ctx, "delete", id); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return models.ErrOrderNotFound
	}
	delete(r.records, id)
	delete(r.seq, id)
	r.mu.Unlock()

	r.broadcast()
	return nil
}

// ListRecords returns the collection newest first.
func (r *MemoryOrderRepository) ListRecords(ctx context.Context) ([]models.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.OrderRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *MemoryOrderRepository) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &memoryWatcher{changed: make(chan struct{}, 1), errs: make(chan error, 8)}
	r.mu.Lock()
	id := r.nextW
	r.nextW++
	r.watchers[id] = w
	r.mu.Unlock()

	return NewSubscription(ctx, func(ctx context.Context, emit func(models.FeedEvent) bool) {
		defer func() {
			r.mu.Lock()
			delete(r.watchers, id)
			r.mu.Unlock()
		}()

		for {
			records, err := r.ListRecords(ctx)
			if err != nil {
				return
			}
			if !emit(models.FeedEvent{Records: records}) {
				return
			}
			if !w.wait(ctx, emit) {
				return
			}
		}
	}), nil
}

// InjectFeedError delivers err to every open subscription.
func (r *MemoryOrderRepository) InjectFeedError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.watchers {
		select {
		case w.errs <- err:
		default:
		}
	}
}

func (r *MemoryOrderRepository) before(ctx context.Context, op, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.WriteHook != nil {
		return r.WriteHook(op, id)
	}
	return nil
}

func (r *MemoryOrderRepository) putLocked(rec models.OrderRecord) {
	if _, ok := r.seq[rec.ID]; !ok {
		r.seq[rec.ID] = r.next
		r.next++
	}
	r.records[rec.ID] = rec
}

func (r *MemoryOrderRepository) broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.watchers {
		select {
		case w.changed <- struct{}{}:
		default:
		}
	}
}

func cloneRecord(rec models.OrderRecord) models.OrderRecord {
	if rec.Items != nil {
		rec.Items = append(json.RawMessage(nil), rec.Items...)
	}
	return rec
}

package services

import (
	"sync"
	"time"
)

type Notification struct {
	ID          uint64    `json:"id"`
	Kind        string    `json:"kind"`
	OrderID     string    `json:"order_id,omitempty"`
	TableNumber string    `json:"table_number,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	NotifyWriteFailed = "write_failed"
	NotifyPrintFailed = "print_failed"
	NotifySettlement  = "settlement_failed"
)

// Notifier keeps the most recent operator-facing failures.
type Notifier struct {
	mu    sync.Mutex
	items []Notification
	limit int
	next  uint64
	now   func() time.Time
}

func NewNotifier(limit int) *Notifier {
	if limit <= 0 {
		limit = 100
	}
	return &Notifier{limit: limit, now: time.Now}
}

func (n *Notifier) Push(kind, orderID, table, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	item := Notification{
		ID:          n.next,
		Kind:        kind,
		OrderID:     orderID,
		TableNumber: table,
		Message:     message,
		CreatedAt:   n.now(),
	}
	n.items = append(n.items, item)
	if len(n.items) > n.limit {
		n.items = append([]Notification(nil), n.items[len(n.items)-n.limit:]...)
	}
	return item
}

// Since returns notifications with an id greater than after, oldest first.
func (n *Notifier) Since(after uint64) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []Notification{}
	for _, item := range n.items {
		if item.ID > after {
			out = append(out, item)
		}
	}
	return out
}

package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusPaid      OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusCompleted, StatusCancelled, StatusPaid:
		return true
	}
	return false
}

// Terminal reports whether no further status change is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

type OrderItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Order struct {
	ID          string      `json:"id"`
	TableNumber string      `json:"table_number"`
	Items       []OrderItem `json:"items"`
	TotalPrice  float64     `json:"total_price"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SumItems returns the sum of price * quantity over items.
func SumItems(items []OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// OrderRecord is an order as the store hands it over, before validation.
// Any field other than ID may be missing or malformed.
type OrderRecord struct {
	ID          string          `json:"id"`
	TableNumber *string         `json:"table_number"`
	Items       json.RawMessage `json:"items"`
	TotalPrice  *float64        `json:"total_price"`
	Status      *string         `json:"status"`
	CreatedAt   *time.Time      `json:"created_at"`
}

// RecordFromOrder builds the store representation of a well-formed order.
func RecordFromOrder(o Order) OrderRecord {
	items, _ := json.Marshal(o.Items)
	table := o.TableNumber
	total := o.TotalPrice
	status := string(o.Status)
	createdAt := o.CreatedAt
	return OrderRecord{
		ID:          o.ID,
		TableNumber: &table,
		Items:       items,
		TotalPrice:  &total,
		Status:      &status,
		CreatedAt:   &createdAt,
	}
}

// FeedEvent is one delivery of the order subscription: either the full
// current collection or an error.
type FeedEvent struct {
	Records []OrderRecord
	Err     error
}

type TableTotal struct {
	TableNumber string   `json:"table_number"`
	TotalAmount float64  `json:"total_amount"`
	OrderIDs    []string `json:"order_ids"`
}

type HistoryReport struct {
	Orders       []Order   `json:"orders"`
	TotalRevenue float64   `json:"total_revenue"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type KitchenQueue struct {
	Pending   []Order `json:"pending"`
	Preparing []Order `json:"preparing"`
}

type SettlementResult struct {
	TableNumber string   `json:"table_number"`
	OrderIDs    []string `json:"order_ids"`
	Amount      float64  `json:"amount"`
}

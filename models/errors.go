package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrWriteFailed       = errors.New("order store write failed")
	ErrPartialSettlement = errors.New("table settlement partially applied")
	ErrSubscription      = errors.New("order subscription error")
	ErrMalformedRecord   = errors.New("malformed order record")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrStaleStatus       = errors.New("order status changed concurrently")
	ErrAlreadyInStatus   = errors.New("order already in requested status")
	ErrOrderBilled       = errors.New("order already paid")
	ErrUnauthorized      = errors.New("unauthorized")
)

type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// WriteError wraps a failed create, update or delete against the order store.
type WriteError struct {
	Op      string
	OrderID string
	Err     error
}

func (e *WriteError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s order %s: %v", e.Op, e.OrderID, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWriteFailed, e.Err} }

// PartialSettlementError means some of the captured orders were marked paid
// and some were not. Retrying must recompute the unsettled subset.
type PartialSettlementError struct {
	TableNumber string
	Settled     []string
	Failed      map[string]error
}

func (e *PartialSettlementError) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("table %s: settled %d orders, failed %d (%s)",
		e.TableNumber, len(e.Settled), len(ids), strings.Join(ids, ", "))
}

func (e *PartialSettlementError) Unwrap() error { return ErrPartialSettlement }

func (e *PartialSettlementError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type MalformedRecordError struct {
	OrderID string
	Field   string
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("order %s: field %s: %s", e.OrderID, e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

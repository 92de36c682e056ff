package services

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"snack-shop/models"
)

const UnknownTable = "unknown"

type RecordResult struct {
	Order  models.Order
	Issues []*models.MalformedRecordError
}

// Usable is false only when the record has no id to address it by.
func (r RecordResult) Usable() bool {
	return r.Order.ID != ""
}

// ParseRecord maps a store record onto an Order. Missing or malformed fields
// are defaulted and each substitution is reported as an issue; now replaces
// a missing created_at.
func ParseRecord(rec models.OrderRecord, now time.Time) RecordResult {
	res := RecordResult{Order: models.Order{ID: strings.TrimSpace(rec.ID)}}
	issue := func(field, reason string) {
		res.Issues = append(res.Issues, &models.MalformedRecordError{OrderID: rec.ID, Field: field, Reason: reason})
	}

	if res.Order.ID == "" {
		issue("id", "missing")
	}

	if rec.TableNumber == nil || strings.TrimSpace(*rec.TableNumber) == "" {
		issue("table_number", "missing")
		res.Order.TableNumber = UnknownTable
	} else {
		res.Order.TableNumber = strings.TrimSpace(*rec.TableNumber)
	}

	res.Order.Items = []models.OrderItem{}
	if len(rec.Items) == 0 || string(rec.Items) == "null" {
		issue("items", "missing")
	} else if err := json.Unmarshal(rec.Items, &res.Order.Items); err != nil {
		issue("items", err.Error())
		res.Order.Items = []models.OrderItem{}
	} else {
		for _, item := range res.Order.Items {
			if item.Quantity < 1 {
				issue("items", "quantity below 1 for "+item.Name)
			}
		}
	}

	switch {
	case rec.TotalPrice == nil:
		issue("total_price", "missing, recomputed from items")
		res.Order.TotalPrice = models.SumItems(res.Order.Items)
	case math.IsNaN(*rec.TotalPrice) || math.IsInf(*rec.TotalPrice, 0):
		issue("total_price", "not a number, recomputed from items")
		res.Order.TotalPrice = models.SumItems(res.Order.Items)
	default:
		res.Order.TotalPrice = *rec.TotalPrice
	}

	if rec.Status == nil {
		issue("status", "missing")
	} else {
		res.Order.Status = models.OrderStatus(strings.ToLower(strings.TrimSpace(*rec.Status)))
		if !res.Order.Status.Valid() {
			issue("status", "unknown value "+*rec.Status)
		}
	}

	if rec.CreatedAt == nil || rec.CreatedAt.IsZero() {
		issue("created_at", "missing, using current time")
		res.Order.CreatedAt = now
	} else {
		res.Order.CreatedAt = *rec.CreatedAt
	}

	return res
}

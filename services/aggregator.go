package services

import (
	"bytes"
	"sort"

	"snack-shop/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ActiveTables groups completed orders by table. Tables are ordered by
// numeric-aware collation of their labels, so "2" sorts before "10".
func ActiveTables(orders []models.Order) []models.TableTotal {
	index := map[string]int{}
	tables := []models.TableTotal{}
	for _, o := range orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		i, ok := index[o.TableNumber]
		if !ok {
			i = len(tables)
			index[o.TableNumber] = i
			tables = append(tables, models.TableTotal{TableNumber: o.TableNumber, OrderIDs: []string{}})
		}
		tables[i].TotalAmount += o.TotalPrice
		tables[i].OrderIDs = append(tables[i].OrderIDs, o.ID)
	}

	labels := make([]string, len(tables))
	for i, t := range tables {
		labels[i] = t.TableNumber
	}
	SortTableLabels(labels)
	rank := make(map[string]int, len(labels))
	for i, l := range labels {
		rank[l] = i
	}
	sort.Slice(tables, func(i, j int) bool {
		return rank[tables[i].TableNumber] < rank[tables[j].TableNumber]
	})
	return tables
}

func OutstandingTotal(tables []models.TableTotal) float64 {
	total := 0.0
	for _, t := range tables {
		total += t.TotalAmount
	}
	return total
}

// SortTableLabels orders labels with numeric collation, falling back to
// byte order so that the result is total.
func SortTableLabels(labels []string) {
	col := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(labels, func(i, j int) bool {
		if c := col.CompareString(labels[i], labels[j]); c != 0 {
			return c < 0
		}
		return bytes.Compare([]byte(labels[i]), []byte(labels[j])) < 0
	})
}

// BuildKitchenQueue returns pending orders oldest first and orders being
// prepared in the same order.
func BuildKitchenQueue(orders []models.Order) models.KitchenQueue {
	q := models.KitchenQueue{Pending: []models.Order{}, Preparing: []models.Order{}}
	for _, o := range orders {
		switch o.Status {
		case models.StatusPending:
			q.Pending = append(q.Pending, o)
		case models.StatusPreparing:
			q.Preparing = append(q.Preparing, o)
		}
	}
	byAge := func(list []models.Order) {
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			}
			return list[i].ID < list[j].ID
		})
	}
	byAge(q.Pending)
	byAge(q.Preparing)
	return q
}

func FilterByStatus(orders []models.Order, statuses ...models.OrderStatus) []models.Order {
	if len(statuses) == 0 {
		return orders
	}
	out := []models.Order{}
	for _, o := range orders {
		for _, s := range statuses {
			if o.Status == s {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

package services

import (
	"fmt"
	"sort"
	"time"

	"snack-shop/models"
)

const DateLayout = "2006-01-02"

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 on t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// History lists paid orders created between the start of start's day and
// the end of end's day, both inclusive, newest first.
func History(orders []models.Order, start, end time.Time, loc *time.Location) models.HistoryReport {
	from := StartOfDay(start, loc)
	to := EndOfDay(end, loc)
	report := models.HistoryReport{Orders: []models.Order{}, Start: from, End: to}

	for _, o := range orders {
		if o.Status != models.StatusPaid {
			continue
		}
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		report.Orders = append(report.Orders, o)
		report.TotalRevenue += o.TotalPrice
	}

	sort.SliceStable(report.Orders, func(i, j int) bool {
		a, b := report.Orders[i], report.Orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return report
}

// ParseDateRange reads YYYY-MM-DD bounds in loc. An empty bound means today.
func ParseDateRange(start, end string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	parse := func(name, value string) (time.Time, error) {
		if value == "" {
			return StartOfDay(now, loc), nil
		}
		t, err := time.ParseInLocation(DateLayout, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", models.ErrInvalidOrder, name)
		}
		return t, nil
	}
	from, err := parse("start_date", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parse("end_date", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date is after end_date", models.ErrInvalidOrder)
	}
	return from, to, nil
}

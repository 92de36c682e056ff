package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"snack-shop/libs"
	"snack-shop/models"
	"snack-shop/repositories"
)

type OrderStore interface {
	Create(ctx context.Context, tableNumber string, items []models.OrderItem, total float64) (models.Order, error)
	Get(ctx context.Context, id string) (models.OrderRecord, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context) (*repositories.Subscription, error)
}

type MenuProvider interface {
	GetAll(ctx context.Context) ([]models.MenuItem, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error)
}

type OrderServiceConfig struct {
	// Tables restricts accepted table labels. Empty accepts any label.
	Tables       []string
	WriteTimeout time.Duration
	Location     *time.Location
}

type OrderService struct {
	store      OrderStore
	menu       MenuProvider
	projection *Projection
	notifier   *Notifier
	printer    Printer
	log        *slog.Logger

	tables       map[string]bool
	tableLabels  []string
	writeTimeout time.Duration
	loc          *time.Location
}

func NewOrderService(store OrderStore, menu MenuProvider, projection *Projection, notifier *Notifier, printer Printer, cfg OrderServiceConfig, log *slog.Logger) *OrderService {
	s := &OrderService{
		store:        store,
		menu:         menu,
		projection:   projection,
		notifier:     notifier,
		printer:      printer,
		log:          log,
		tableLabels:  append([]string(nil), cfg.Tables...),
		writeTimeout: cfg.WriteTimeout,
		loc:          cfg.Location,
	}
	if len(cfg.Tables) > 0 {
		s.tables = map[string]bool{}
		for _, t := range cfg.Tables {
			s.tables[t] = true
		}
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 10 * time.Second
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

func (s *OrderService) Location() *time.Location { return s.loc }

func (s *OrderService) Tables() []string {
	labels := append([]string(nil), s.tableLabels...)
	SortTableLabels(labels)
	return labels
}

func (s *OrderService) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return s.menu.GetAll(ctx)
}

func (s *OrderService) Snapshot() Snapshot {
	return s.projection.Snapshot()
}

func (s *OrderService) Orders(statuses ...models.OrderStatus) []models.Order {
	return FilterByStatus(s.projection.Snapshot().Orders, statuses...)
}

func (s *OrderService) ActiveTables() []models.TableTotal {
	return ActiveTables(s.projection.Snapshot().Orders)
}

func (s *OrderService) KitchenQueue() models.KitchenQueue {
	return BuildKitchenQueue(s.projection.Snapshot().Orders)
}

func (s *OrderService) History(start, end time.Time) models.HistoryReport {
	return History(s.projection.Snapshot().Orders, start, end, s.loc)
}

// GetOrder reads from the projection and falls back to the store for
// orders the feed has not delivered yet.
func (s *OrderService) GetOrder(ctx context.Context, id string) (models.Order, error) {
	if o, ok := s.projection.Snapshot().Find(id); ok {
		return o, nil
	}
	return s.storeOrder(ctx, id)
}

// storeOrder reads the order straight from the store, bypassing the
// projection, which may still hold the pre-write state.
func (s *OrderService) storeOrder(ctx context.Context, id string) (models.Order, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	res := ParseRecord(rec, time.Now())
	if !res.Usable() {
		return models.Order{}, models.ErrOrderNotFound
	}
	return res.Order, nil
}

// CreateOrder prices the requested items from the menu and stores a new
// pending order. Duplicate menu items are merged into one line.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	table := strings.TrimSpace(req.TableNumber)
	if table == "" {
		return models.Order{}, fmt.Errorf("%w: table number is required", models.ErrInvalidOrder)
	}
	if s.tables != nil && !s.tables[table] {
		return models.Order{}, fmt.Errorf("%w: unknown table %q", models.ErrInvalidOrder, table)
	}
	if len(req.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: at least one item is required", models.ErrInvalidOrder)
	}

	ids := []string{}
	quantities := map[string]int{}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return models.Order{}, fmt.Errorf("%w: quantity for %s must be at least 1", models.ErrInvalidOrder, item.MenuItemID)
		}
		if _, ok := quantities[item.MenuItemID]; !ok {
			ids = append(ids, item.MenuItemID)
		}
		quantities[item.MenuItemID] += item.Quantity
	}

	menu, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load menu: %w", err)
	}

	items := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		m, ok := menu[id]
		if !ok {
			return models.Order{}, fmt.Errorf("%w: menu item %s not found", models.ErrInvalidOrder, id)
		}
		if !m.Available {
			return models.Order{}, fmt.Errorf("%w: %s is not available", models.ErrInvalidOrder, m.Name)
		}
		items = append(items, models.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   quantities[id],
		})
	}

	var order models.Order
	err = s.write(ctx, "create", "", table, func(ctx context.Context) error {
		var err error
		order, err = s.store.Create(ctx, table, items, models.SumItems(items))
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	libs.OrdersCreated.Inc()
	s.log.Info("order created", "order_id", order.ID, "table", order.TableNumber, "total", order.TotalPrice)
	return order, nil
}

// Transition moves one order to a new status. The guard checks the status
// held by the store and runs before any write, so an illegal request never
// reaches the store.
func (s *OrderService) Transition(ctx context.Context, id string, to models.OrderStatus) (models.Order, error) {
	order, err := s.storeOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if err := ValidateTransition(order.ID, order.Status, to); err != nil {
		libs.StatusTransitions.WithLabelValues(string(to), "rejected").Inc()
		return models.Order{}, err
	}

	err = s.write(ctx, "update_status", order.ID, order.TableNumber, func(ctx context.Context) error {
		return s.store.UpdateStatus(ctx, order.ID, order.Status, to)
	})
	if errors.Is(err, models.ErrAlreadyInStatus) {
		order.Status = to
		return order, nil
	}
	if err != nil {
		libs.StatusTransitions.WithLabelValues(string(to), "failed").Inc()
		return models.Order{}, err
	}

	libs.StatusTransitions.WithLabelValues(string(to), "ok").Inc()
	s.log.Info("order status changed", "order_id", order.ID, "from", order.Status, "to", to)
	order.Status = to
	return order, nil
}

// SettleTable marks every pending, preparing or completed order of the
// table as paid. The id set is captured from the projection up front, so
// orders arriving mid-settlement are left for the next call. Orders the
// store already holds as paid are not reported again.
func (s *OrderService) SettleTable(ctx context.Context, table string) (models.SettlementResult, error) {
	table = strings.TrimSpace(table)
	result := models.SettlementResult{TableNumber: table, OrderIDs: []string{}}
	if table == "" {
		return result, fmt.Errorf("%w: table number is required", models.ErrInvalidOrder)
	}

	targets := []models.Order{}
	for _, o := range s.projection.Snapshot().Orders {
		if o.TableNumber == table && CanSettle(o.Status) {
			targets = append(targets, o)
		}
	}
	if len(targets) == 0 {
		return result, nil
	}

	failed := map[string]error{}
	for _, o := range targets {
		changed, err := s.settleOrder(ctx, o)
		if err != nil {
			failed[o.ID] = err
			continue
		}
		if changed {
			result.OrderIDs = append(result.OrderIDs, o.ID)
			result.Amount += o.TotalPrice
		}
	}

	switch {
	case len(failed) == 0 && len(result.OrderIDs) == 0:
		libs.Settlements.WithLabelValues("noop").Inc()
		return result, nil
	case len(failed) == 0:
		libs.Settlements.WithLabelValues("ok").Inc()
		s.log.Info("table settled", "table", table, "orders", len(result.OrderIDs), "amount", result.Amount)
		return result, nil
	case len(result.OrderIDs) == 0:
		errs := make([]error, 0, len(failed))
		for _, err := range failed {
			errs = append(errs, err)
		}
		err := &models.WriteError{Op: "settle_table", Err: errors.Join(errs...)}
		libs.Settlements.WithLabelValues("failed").Inc()
		s.log.Error("table settlement failed", "table", table, "error", err)
		s.notifier.Push(NotifySettlement, "", table, err.Error())
		return result, err
	default:
		err := &models.PartialSettlementError{TableNumber: table, Settled: result.OrderIDs, Failed: failed}
		libs.Settlements.WithLabelValues("partial").Inc()
		s.log.Error("table settlement incomplete", "table", table, "settled", len(result.OrderIDs), "failed", err.FailedIDs())
		s.notifier.Push(NotifySettlement, "", table, err.Error())
		return result, err
	}
}

// settleOrder marks one captured order as paid. A stale projection status is
// re-read from the store once; orders that are already paid, gone or no
// longer billable report false.
func (s *OrderService) settleOrder(ctx context.Context, o models.Order) (bool, error) {
	markPaid := func(from models.OrderStatus) error {
		return s.writeQuiet(ctx, "settle", o.ID, func(ctx context.Context) error {
			return s.store.UpdateStatus(ctx, o.ID, from, models.StatusPaid)
		})
	}

	err := markPaid(o.Status)
	if errors.Is(err, models.ErrStaleStatus) {
		current, getErr := s.storeOrder(ctx, o.ID)
		switch {
		case errors.Is(getErr, models.ErrOrderNotFound):
			return false, nil
		case getErr != nil:
			return false, err
		case !CanSettle(current.Status):
			return false, nil
		}
		err = markPaid(current.Status)
	}

	switch {
	case errors.Is(err, models.ErrAlreadyInStatus), errors.Is(err, models.ErrOrderNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// DeleteOrder voids an order outside the status machine. Paid orders are
// kept so history revenue stays intact.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.storeOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.StatusPaid {
		s.log.Warn("refused to delete paid order", "order_id", order.ID, "table", order.TableNumber)
		return fmt.Errorf("%w: order %s cannot be deleted", models.ErrOrderBilled, order.ID)
	}
	err = s.write(ctx, "delete", order.ID, order.TableNumber, func(ctx context.Context) error {
		return s.store.Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", order.ID, "table", order.TableNumber)
	return nil
}

// PrintOrder prints an order on request, regardless of the auto-print
// toggle or whether it was printed before.
func (s *OrderService) PrintOrder(ctx context.Context, id string) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := s.printer.Print(ctx, order); err != nil {
		libs.PrintJobs.WithLabelValues("manual", "failed").Inc()
		s.log.Error("print failed", "order_id", order.ID, "error", err)
		s.notifier.Push(NotifyPrintFailed, order.ID, order.TableNumber, "print failed: "+err.Error())
		return fmt.Errorf("print order %s: %w", order.ID, err)
	}
	libs.PrintJobs.WithLabelValues("manual", "sent").Inc()
	return nil
}

// write runs fn under the write timeout. Failures come back as
// *models.WriteError and are pushed to the operator feed.
func (s *OrderService) write(ctx context.Context, op, id, table string, fn func(context.Context) error) error {
	err := s.writeQuiet(ctx, op, id, fn)
	if err != nil && !errors.Is(err, models.ErrAlreadyInStatus) {
		s.log.Error("order write failed", "op", op, "order_id", id, "error", err)
		s.notifier.Push(NotifyWriteFailed, id, table, err.Error())
	}
	return err
}

func (s *OrderService) writeQuiet(ctx context.Context, op, id string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrOrderNotFound) || errors.Is(err, models.ErrAlreadyInStatus) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("no response from order store after %s: %w", s.writeTimeout, err)
	}
	return &models.WriteError{Op: op, OrderID: id, Err: err}
}

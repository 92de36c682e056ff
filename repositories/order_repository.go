package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"snack-shop/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrdersChannel is the LISTEN/NOTIFY channel fed by the orders trigger.
const OrdersChannel = "orders_changed"

const orderColumns = `id::text, table_number, items, total_price, status, created_at`

type OrderRepository struct {
	db           *pgxpool.Pool
	log          *slog.Logger
	RetryBackoff time.Duration
}

func NewOrderRepository(db *pgxpool.Pool, log *slog.Logger) *OrderRepository {
	return &OrderRepository{db: db, log: log, RetryBackoff: 2 * time.Second}
}

func (r *OrderRepository) Create(ctx context.Context, tableNumber string, items []models.OrderItem, total float64) (models.Order, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return models.Order{}, fmt.Errorf("encode items: %w", err)
	}

	order := models.Order{
		ID:          uuid.NewString(),
		TableNumber: tableNumber,
		Items:       items,
		TotalPrice:  total,
		Status:      models.StatusPending,
	}

	query := `
		INSERT INTO orders (id, table_number, items, total_price, status, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, now(), now())
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		order.ID, tableNumber, payload, total, string(models.StatusPending),
	).Scan(&order.CreatedAt)
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (models.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1::uuid`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return models.OrderRecord{}, models.ErrOrderNotFound
	}
	return rec, err
}

// UpdateStatus moves an order to status `to` only if it is still in `from`.
// An order already in `to` is left untouched and reported with
// models.ErrAlreadyInStatus.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3,
		    updated_at = now(),
		    paid_at = CASE WHEN $3 = 'paid' THEN now() ELSE paid_at END
		WHERE id = $1::uuid AND status = $2
	`
	tag, err := r.db.Exec(ctx, query, id, string(from), string(to))
	if isInvalidID(err) {
		return models.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1::uuid`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if current == string(to) {
		return models.ErrAlreadyInStatus
	}
	return models.ErrStaleStatus
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1::uuid`, id)
	if isInvalidID(err) {
		return models.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListRecords(ctx context.Context) ([]models.OrderRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.OrderRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Subscribe holds a dedicated connection listening on OrdersChannel and
// emits the full collection once up front and again after every change.
// Connection failures are emitted as errors and the listener is re-established.
func (r *OrderRepository) Subscribe(ctx context.Context) (*Subscription, error) {
	conn, err := r.listen(ctx)
	if err != nil {
		return nil, err
	}

	return NewSubscription(ctx, func(ctx context.Context, emit func(models.FeedEvent) bool) {
		defer func() {
			if conn != nil {
				conn.Release()
			}
		}()

		for {
			if conn == nil {
				conn, err = r.listen(ctx)
				if err != nil {
					if ctx.Err() != nil || !emit(models.FeedEvent{Err: err}) || !r.sleep(ctx) {
						return
					}
					continue
				}
			}

			records, err := r.ListRecords(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !emit(models.FeedEvent{Err: err}) {
					return
				}
			} else if !emit(models.FeedEvent{Records: records}) {
				return
			}

			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.log.Warn("order listener lost", "error", err)
				conn.Release()
				conn = nil
				if !emit(models.FeedEvent{Err: err}) || !r.sleep(ctx) {
					return
				}
			}
		}
	}), nil
}

func (r *OrderRepository) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+OrdersChannel); err != nil {
		conn.Release()
		return nil, err
	}
	return conn, nil
}

func (r *OrderRepository) sleep(ctx context.Context) bool {
	select {
	case <-time.After(r.RetryBackoff):
		return true
	case <-ctx.Done():
		return false
	}
}

func scanRecord(row pgx.Row) (models.OrderRecord, error) {
	var (
		rec   models.OrderRecord
		items []byte
	)
	if err := row.Scan(&rec.ID, &rec.TableNumber, &items, &rec.TotalPrice, &rec.Status, &rec.CreatedAt); err != nil {
		return models.OrderRecord{}, err
	}
	if items != nil {
		rec.Items = json.RawMessage(items)
	}
	return rec, nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

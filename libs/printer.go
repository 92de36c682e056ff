package libs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"snack-shop/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PrintJob is the message a print worker turns into a kitchen ticket.
type PrintJob struct {
	OrderID     string             `json:"order_id"`
	TableNumber string             `json:"table_number"`
	Items       []models.OrderItem `json:"items"`
	TotalPrice  float64            `json:"total_price"`
	CreatedAt   time.Time          `json:"created_at"`
	RequestedAt time.Time          `json:"requested_at"`
}

func NewPrintJob(order models.Order) PrintJob {
	return PrintJob{
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Items:       order.Items,
		TotalPrice:  order.TotalPrice,
		CreatedAt:   order.CreatedAt,
		RequestedAt: time.Now().UTC(),
	}
}

// QueuePrinter hands print jobs to the print queue.
type QueuePrinter struct {
	client *RabbitClient
	queue  string
}

func NewQueuePrinter(client *RabbitClient, queue string) (*QueuePrinter, error) {
	if err := client.DeclareQueue(queue); err != nil {
		return nil, fmt.Errorf("declare print queue: %w", err)
	}
	return &QueuePrinter{client: client, queue: queue}, nil
}

func (p *QueuePrinter) Print(ctx context.Context, order models.Order) error {
	body, err := json.Marshal(NewPrintJob(order))
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.queue, body, amqp.Table{"order_id": order.ID})
}

// LogPrinter writes tickets to the log. Used when no broker is configured.
type LogPrinter struct {
	Log *slog.Logger
}

func (p LogPrinter) Print(ctx context.Context, order models.Order) error {
	p.Log.Info("print ticket", "order_id", order.ID, "table", order.TableNumber, "ticket", FormatTicket(NewPrintJob(order)))
	return nil
}

// FormatTicket renders a job as plain ticket text.
func FormatTicket(job PrintJob) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TABLE %s\n", job.TableNumber)
	fmt.Fprintf(&b, "%s\n", job.CreatedAt.Format("2006-01-02 15:04"))
	for _, item := range job.Items {
		fmt.Fprintf(&b, "%-16s x%d %8.0f\n", item.Name, item.Quantity, item.Subtotal())
	}
	fmt.Fprintf(&b, "TOTAL %.0f\n", job.TotalPrice)
	return b.String()
}

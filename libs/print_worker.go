package libs

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketSink receives rendered tickets. The default sink logs them.
type TicketSink func(job PrintJob, ticket string) error

// RunPrintWorker consumes print jobs until ctx is cancelled or the
// delivery channel closes. Undecodable jobs are dead-lettered.
func RunPrintWorker(ctx context.Context, deliveries <-chan amqp.Delivery, sink TicketSink, log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			processJob(d.Body, d, sink, log)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func processJob(body []byte, ack acknowledger, sink TicketSink, log *slog.Logger) {
	var job PrintJob
	if err := json.Unmarshal(body, &job); err != nil {
		log.Error("invalid print job", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := sink(job, FormatTicket(job)); err != nil {
		log.Error("print failed", "order_id", job.OrderID, "error", err)
		PrintJobs.WithLabelValues("worker", "failed").Inc()
		_ = ack.Nack(false, false)
		return
	}

	PrintJobs.WithLabelValues("worker", "printed").Inc()
	_ = ack.Ack(false)
}

func LogSink(log *slog.Logger) TicketSink {
	return func(job PrintJob, ticket string) error {
		log.Info("ticket printed", "order_id", job.OrderID, "table", job.TableNumber, "ticket", ticket)
		return nil
	}
}

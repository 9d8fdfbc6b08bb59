package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consumes lead events and hands them to the notifier.
type Worker struct {
	Channel  consumer
	Notifier usecase.Notifier
	Logger   *slog.Logger
}

func NewWorker(ch *amqp.Channel, notifier usecase.Notifier, logger *slog.Logger) *Worker {
	return &Worker{Channel: ch, Notifier: notifier, Logger: logger}
}

// Start blocks until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("[*] worker aguardando eventos", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event usecase.LeadConvertedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// Mensagem malformada: rejeita sem requeue, vai pra DLQ.
		w.Logger.Error("❌ [WORKER] JSON inválido", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.Notifier.NotifyConversion(ctx, event); err != nil {
		w.Logger.Error("❌ [WORKER] falha ao enviar aviso de conversão", "lead_id", event.LeadID, "error", err)
		// one retry in place, then dead-letter
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	w.Logger.Info("✅ [WORKER] aviso de conversão enviado", "lead_id", event.LeadID, "client_id", event.ClientID)
	_ = d.Ack(false)
}

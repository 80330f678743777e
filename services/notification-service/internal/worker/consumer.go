package worker

import (
	"context"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phillipbowles/FixItNow/pkg/mq"
)

// Consumer drains the notification queue and resolves every delivery:
// Ack after the handler succeeds, Nack without requeue (off to the DLQ)
// when it fails. At-least-once end to end.
type Consumer struct {
	cons *mq.Consumer
	disp *Dispatcher
}

func NewConsumer(cons *mq.Consumer, disp *Dispatcher) *Consumer {
	return &Consumer{cons: cons, disp: disp}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.cons.Deliveries(ctx, "notification-service")
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if err := c.disp.Dispatch(ctx, d.RoutingKey, d.Body); err != nil {
		log.Printf("[notify] handle %s failed, dead-lettering: %v", d.RoutingKey, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "mbtidash/internal/log"
)

// Handler processes one decoded view event.
type Handler func(ctx context.Context, msg *ViewResolvedMessage) error

// Consumer reads view events from a queue bound to the topic exchange.
type Consumer struct {
	url          string
	exchangeName string
	bindingKey   string
	queueName    string

	logger *applog.Logger
}

// NewConsumer returns an unconnected consumer. An empty queueName declares
// a server-named exclusive queue that disappears with the connection.
func NewConsumer(url, exchangeName, bindingKey, queueName string) *Consumer {
	return &Consumer{
		url:          url,
		exchangeName: exchangeName,
		bindingKey:   bindingKey,
		queueName:    queueName,
		logger:       applog.Default(applog.ComponentEvents),
	}
}

// SetLogger routes the consumer's records through logger under the events
// component. Call it before Run.
func (c *Consumer) SetLogger(logger *applog.Logger) {
	if logger != nil {
		c.logger = logger.WithComponent(applog.ComponentEvents)
	}
}

// Run consumes until ctx ends, reconnecting with exponential backoff when
// the broker goes away. It always returns ctx.Err().
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for attempt := 0; ; {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errDeliveriesClosed) {
			attempt = 0
		}
		c.logger.WarnContext(ctx, "AMQP consumer stopped", applog.FieldAttempt, attempt+1, applog.FieldError, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}
		attempt++
	}
}

var errDeliveriesClosed = errors.New("amqp: delivery channel closed")

func (c *Consumer) consumeOnce(ctx context.Context, handler Handler) error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	if err := channel.ExchangeDeclare(c.exchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	durable := c.queueName != ""
	queue, err := channel.QueueDeclare(
		c.queueName, // name
		durable,     // durable
		!durable,    // delete when unused
		!durable,    // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, c.bindingKey, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	if err := channel.Qos(16, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := channel.Consume(
		queue.Name, // queue
		"",         // consumer
		false,      // auto-ack (we want manual ack)
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming view events",
		applog.FieldOperation, applog.OpConsume,
		applog.FieldExchange, c.exchangeName,
		applog.FieldQueue, queue.Name,
		applog.FieldBindingKey, c.bindingKey)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// handleDelivery decodes and dispatches one delivery. Malformed bodies are
// dropped; handler failures are requeued once and dropped on redelivery.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp091.Delivery, handler Handler) {
	msg, err := ViewResolvedMessageFromJSON(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to unmarshal view event", applog.FieldError, err)
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle view event",
			applog.FieldError, err,
			applog.FieldSelection, msg.Selection,
			applog.FieldRedelivered, d.Redelivered)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used by amqpPublisher.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpPublisher sends events to a RabbitMQ exchange or queue.
type amqpPublisher struct {
	id         string
	typ        string
	exchange   string
	routingKey string
	queue      string

	mu       sync.Mutex
	declared bool
	channel  amqpChannel
	conn     *amqp.Connection
	log      Logger
}

func newAMQPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.AMQP == nil {
		return nil, fmt.Errorf("publisher %q missing amqp configuration", cfg.ID)
	}

	conn, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	return newAMQPPublisherWithChannel(cfg, ch, conn, log), nil
}

func newAMQPPublisherWithChannel(cfg PublisherConfig, ch amqpChannel, conn *amqp.Connection, log Logger) *amqpPublisher {
	routingKey := cfg.AMQP.RoutingKey
	if routingKey == "" {
		routingKey = cfg.AMQP.Queue
	}
	return &amqpPublisher{
		id:         cfg.ID,
		typ:        TypeAMQP,
		exchange:   cfg.AMQP.Exchange,
		routingKey: routingKey,
		queue:      cfg.AMQP.Queue,
		channel:    ch,
		conn:       conn,
		log:        ensureLogger(log),
	}
}

func (a *amqpPublisher) ID() string   { return a.id }
func (a *amqpPublisher) Type() string { return a.typ }

// Publish delivers the event as a persistent JSON message.
func (a *amqpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.queue != "" && !a.declared {
		if _, err := a.channel.QueueDeclare(a.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare amqp queue %q: %w", a.queue, err)
		}
		a.declared = true
	}

	headers := amqp.Table{}
	for k, v := range evt.attributes() {
		headers[k] = v
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.Submission.ID,
		Timestamp:    evt.PublishedAt,
		Type:         evt.Type,
		Headers:      headers,
		Body:         payload,
	}
	if err := a.channel.PublishWithContext(ctx, a.exchange, a.routingKey, false, false, msg); err != nil {
		a.log.ErrorObj("amqp publisher send failed", "publisher_amqp_error", map[string]any{
			"publisher_id": a.id,
			"routing_key":  a.routingKey,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to amqp: %w", err)
	}
	a.log.DebugObj("amqp publisher delivered event", "publisher_amqp_delivery", map[string]any{
		"publisher_id": a.id,
		"routing_key":  a.routingKey,
	})
	return nil
}

// Close shuts the channel and the underlying connection.
func (a *amqpPublisher) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.channel != nil {
		if err := a.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

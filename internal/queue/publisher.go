package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/venue-booking/internal/logger"
)

const dialTimeout = 2 * time.Second

// Publisher sends audit events to a durable queue.  It dials per publish:
// audit traffic is low and a broker outage must never hold a connection
// open against request handling.
type Publisher struct {
	url   string
	queue string
	log   logger.Logger
}

func NewPublisher(url, queue string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{url: url, queue: queue, log: log.With("component", "audit-publisher")}
}

// Publish marshals ev and sends it as a persistent message.  Errors are
// logged and returned; callers are free to ignore them since the write has
// already been committed.
func (p *Publisher) Publish(ctx context.Context, ev AuditEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		p.log.Warn("broker dial failed", "err", err, "kind", ev.Kind)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("queue declare failed", "err", err, "queue", p.queue)
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Kind,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.log.Warn("publish failed", "err", err, "kind", ev.Kind)
		return err
	}
	p.log.Debug("audit event published", "kind", ev.Kind, "entity_id", ev.EntityID, "id", ev.ID)
	return nil
}

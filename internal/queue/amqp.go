// internal/queue/amqp.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const retryHeader = "x-retry-count"

// AMQP is the durable queue implementation. Delayed jobs go through a
// per-topic wait queue whose messages dead-letter into the work queue
// when their per-message TTL expires.
//
// Per-message TTL expires in queue order, so a long delay parked ahead
// of a short one holds the short one back. Campaign delays are published
// in non-decreasing cursor order per campaign, which keeps this benign.
type AMQP struct {
	ch         *amqp.Channel
	maxRetries int
	log        *zap.Logger
}

func NewAMQP(conn *amqp.Connection, maxRetries int, log *zap.Logger) (*AMQP, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQP{ch: ch, maxRetries: maxRetries, log: log}, nil
}

func (q *AMQP) declare(topic string) error {
	if _, err := q.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	_, err := q.ch.QueueDeclare(topic+".wait", true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": topic,
	})
	if err != nil {
		return fmt.Errorf("declare wait queue %s: %w", topic, err)
	}
	return nil
}

func (q *AMQP) Publish(ctx context.Context, topic string, payload any) error {
	return q.PublishIn(ctx, topic, payload, 0)
}

func (q *AMQP) PublishIn(ctx context.Context, topic string, payload any, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := q.declare(topic); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	if delay <= 0 {
		return q.ch.Publish("", topic, false, false, msg)
	}
	msg.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	return q.ch.Publish("", topic+".wait", false, false, msg)
}

func (q *AMQP) Subscribe(topic string, h Handler) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	deliveries, err := q.ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", topic, err)
	}

	go func() {
		for d := range deliveries {
			q.handle(topic, h, d)
		}
	}()
	return nil
}

func (q *AMQP) handle(topic string, h Handler, d amqp.Delivery) {
	err := h(context.Background(), d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if retries >= q.maxRetries {
		q.log.Error("job permanently failed",
			zap.String("topic", topic),
			zap.Int("attempts", retries+1),
			zap.Error(err),
		)
		_ = d.Ack(false)
		return
	}

	// Republish with the bumped retry header instead of Nack, so the
	// count survives the round trip.
	q.log.Warn("job failed, requeueing",
		zap.String("topic", topic),
		zap.Int("attempt", retries+1),
		zap.Error(err),
	)
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         d.Body,
		Headers:      amqp.Table{retryHeader: int32(retries + 1)},
	}
	if pubErr := q.ch.Publish("", topic, false, false, pub); pubErr != nil {
		q.log.Error("failed to requeue job", zap.String("topic", topic), zap.Error(pubErr))
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

var _ Queue = (*AMQP)(nil)

// Package queue is the job transport between pipeline stages. Payloads
// are JSON; delivery is at-least-once, so every handler must be
// idempotent. The amqp implementation backs production, the in-memory
// one backs tests and single-process dev mode.
package queue

import (
	"context"
	"time"
)

// Handler processes one job body. A nil return acks the job; an error
// hands it to the queue's retry policy (capped requeue).
type Handler func(ctx context.Context, body []byte) error

type Queue interface {
	// Publish enqueues a job for immediate processing.
	Publish(ctx context.Context, topic string, payload any) error
	// PublishIn enqueues a job that becomes visible after delay. The
	// delay is queue-level scheduling; no worker blocks waiting for it.
	PublishIn(ctx context.Context, topic string, payload any, delay time.Duration) error
	// Subscribe registers a handler for a topic.
	Subscribe(topic string, h Handler) error
}

// internal/queue/memory.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Memory is an in-process queue with timer-based delays and capped
// retry. It keeps the same at-least-once semantics as the amqp
// implementation so the pipeline can run single-process in dev and in
// tests.
type Memory struct {
	mu         sync.Mutex
	handlers   map[string][]Handler
	maxRetries int
	log        *zap.Logger
}

func NewMemory(maxRetries int, log *zap.Logger) *Memory {
	return &Memory{
		handlers:   make(map[string][]Handler),
		maxRetries: maxRetries,
		log:        log,
	}
}

func (q *Memory) Publish(ctx context.Context, topic string, payload any) error {
	return q.PublishIn(ctx, topic, payload, 0)
}

func (q *Memory) PublishIn(ctx context.Context, topic string, payload any, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()
	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, h := range handlers {
		h := h
		time.AfterFunc(delay, func() { q.process(topic, h, body) })
	}
	return nil
}

func (q *Memory) process(topic string, h Handler, body []byte) {
	for attempt := 0; ; attempt++ {
		err := h(context.Background(), body)
		if err == nil {
			return
		}
		if attempt >= q.maxRetries {
			q.log.Error("job permanently failed",
				zap.String("topic", topic),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return
		}
		q.log.Warn("job failed, retrying",
			zap.String("topic", topic),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
}

func (q *Memory) Subscribe(topic string, h Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], h)
	return nil
}

var _ Queue = (*Memory)(nil)

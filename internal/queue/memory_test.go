package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testJob struct {
	ID int `json:"id"`
}

func TestMemoryDeliversToSubscriber(t *testing.T) {
	q := NewMemory(0, zap.NewNop())

	got := make(chan testJob, 1)
	require.NoError(t, q.Subscribe("jobs", func(ctx context.Context, body []byte) error {
		var j testJob
		if err := json.Unmarshal(body, &j); err != nil {
			return err
		}
		got <- j
		return nil
	}))

	require.NoError(t, q.Publish(context.Background(), "jobs", testJob{ID: 42}))

	select {
	case j := <-got:
		assert.Equal(t, 42, j.ID)
	case <-time.After(time.Second):
		t.Fatal("job never delivered")
	}
}

func TestMemoryPublishWithoutSubscriberFails(t *testing.T) {
	q := NewMemory(0, zap.NewNop())
	assert.Error(t, q.Publish(context.Background(), "nobody", testJob{ID: 1}))
}

func TestMemoryHonoursDelay(t *testing.T) {
	q := NewMemory(0, zap.NewNop())

	var mu sync.Mutex
	var deliveredAt time.Time
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("jobs", func(ctx context.Context, body []byte) error {
		mu.Lock()
		deliveredAt = time.Now()
		mu.Unlock()
		close(done)
		return nil
	}))

	start := time.Now()
	require.NoError(t, q.PublishIn(context.Background(), "jobs", testJob{ID: 1}, 150*time.Millisecond))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed job never delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, deliveredAt.Sub(start), 140*time.Millisecond)
}

func TestMemoryRetriesUntilSuccess(t *testing.T) {
	q := NewMemory(3, zap.NewNop())

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("jobs", func(ctx context.Context, body []byte) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish(context.Background(), "jobs", testJob{ID: 1}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never succeeded")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestRetryCountHeaderParsing(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 2, retryCount(map[string]interface{}{retryHeader: int32(2)}))
	assert.Equal(t, 5, retryCount(map[string]interface{}{retryHeader: int64(5)}))
	assert.Equal(t, 0, retryCount(map[string]interface{}{retryHeader: "bogus"}))
}

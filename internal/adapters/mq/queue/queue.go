// Package queue carries recorded feedback to the adjustment recompute job.
package queue

import (
	"context"
	"sync"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/metrics"
)

const defaultCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue of feedback records.
type Queue interface {
	// Enqueue adds rec without blocking. Returns ErrFull or ErrClosed on failure.
	Enqueue(ctx context.Context, rec model.FeedbackRecord) error

	// Dequeue returns a channel of records that closes when the queue is
	// closed and drained, or when ctx ends.
	Dequeue(ctx context.Context) <-chan model.FeedbackRecord

	// Len returns the number of pending records.
	Len() int

	// Close stops accepting records. Pending records are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan model.FeedbackRecord
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan model.FeedbackRecord, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

// Enqueue adds rec to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, rec model.FeedbackRecord) error { //nolint:gocritic // records are passed by value through the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.records <- rec:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives records as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.FeedbackRecord {
	out := make(chan model.FeedbackRecord)
	go func() {
		defer close(out)
		for {
			select {
			case rec, ok := <-q.records:
				if !ok {
					return
				}
				select {
				case out <- rec:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending records.
func (q *InMemoryQueue) Len() int {
	n := len(q.records)
	q.observe()
	return n
}

func (q *InMemoryQueue) observe() {
	n := len(q.records)
	metrics.UpdateQueueSize(n)
	metrics.UpdateQueueUtilization(float64(n) / float64(q.capacity))
}

// Close stops accepting records.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

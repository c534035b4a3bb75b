package midi

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Recv once the queue is closed and drained.
var ErrQueueClosed = errors.New("midi queue closed")

// Queue is an unbounded multi-producer single-consumer queue of decoded
// messages. Send never blocks; Recv parks until a message arrives.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	head   int
	closed bool

	// wake holds at most one pending signal so producers never block on it
	wake chan struct{}
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Send appends msg. It reports false only after Close.
func (q *Queue) Send(msg Message) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Recv returns the oldest message, waiting while the queue is empty.
// It must only be called from a single consumer goroutine.
func (q *Queue) Recv(ctx context.Context) (Message, error) {
	for {
		if msg, ok, err := q.pop(); ok || err != nil {
			return msg, err
		}
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *Queue) pop() (Message, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head < len(q.items) {
		msg := q.items[q.head]
		q.items[q.head] = Message{}
		q.head++
		// reclaim the backing array once drained
		if q.head == len(q.items) {
			q.items = q.items[:0]
			q.head = 0
		}
		return msg, true, nil
	}
	if q.closed {
		return Message{}, false, ErrQueueClosed
	}
	return Message{}, false, nil
}

// Len returns the number of messages waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close stops accepting sends. Messages already queued are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

package blockingqueue

import (
	"context"
	"errors"
	"sync"

	base "github.com/xyhelper/xyphase"
)

// ErrClosed is returned by Send after Close, and by Receive once the queue is
// closed and drained.
var ErrClosed = errors.New("blockingqueue: closed")

// Queue is a blocking, concurrency-safe mailbox built on xyphase.Queue.
// Send never waits for a receiver; Receive suspends until a value is
// available, the queue is closed, or the context is done.
//
// All methods are safe for concurrent use by multiple goroutines. Values are
// delivered at most once: concurrent receivers race for each value.
type Queue[T any] struct {
	mu     sync.Mutex
	cv     *sync.Cond // signaled when an element is added or the queue closes
	q      *base.Queue[T]
	closed bool
}

// New creates a new blocking queue with the given discipline.
func New[T any](d base.Discipline) *Queue[T] {
	b := &Queue[T]{q: base.New[T](d)}
	b.cv = sync.NewCond(&b.mu)
	return b
}

// NewWithCapacity creates a new blocking queue with initial capacity.
func NewWithCapacity[T any](d base.Discipline, capacity int) *Queue[T] {
	b := &Queue[T]{q: base.NewWithCapacity[T](d, capacity)}
	b.cv = sync.NewCond(&b.mu)
	return b
}

// Discipline reports the ordering discipline of the queue.
func (b *Queue[T]) Discipline() base.Discipline { return b.q.Discipline() }

// Send appends v and wakes exactly one waiting receiver. It returns ErrClosed
// if the queue has been closed.
func (b *Queue[T]) Send(v T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.q.Enqueue(v)
	b.cv.Signal()
	b.mu.Unlock()
	return nil
}

// SendMany appends items in order and wakes one receiver per item. It
// returns the number of items added.
func (b *Queue[T]) SendMany(items ...T) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	n := b.q.EnqueueMany(items...)
	for i := 0; i < n; i++ {
		b.cv.Signal()
	}
	return n, nil
}

// TryReceive removes and returns the next value without blocking.
// ok is false if the queue is empty.
func (b *Queue[T]) TryReceive() (v T, ok bool) {
	b.mu.Lock()
	v, ok = b.q.Dequeue()
	b.mu.Unlock()
	return
}

// Receive blocks until an element is available, the queue is closed and
// drained, or ctx is done. On success returns (value, nil). On cancellation
// returns the zero value and ctx.Err(); on a closed, empty queue ErrClosed.
// Elements already queued are delivered even after Close.
func (b *Queue[T]) Receive(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var zero T
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		// The predicate is re-checked after every wake-up, so spurious wakes
		// and values taken by a faster receiver just loop back to Wait.
		if v, ok := b.q.Dequeue(); ok {
			return v, nil
		}
		if b.closed {
			return zero, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		b.wait(ctx)
	}
}

// wait parks on the cond until signaled or ctx is done. b.mu must be held.
func (b *Queue[T]) wait(ctx context.Context) {
	if ctx.Done() == nil {
		b.cv.Wait()
		return
	}
	// A short-lived watcher broadcasts on cancellation to wake Wait.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.cv.Broadcast()
			b.mu.Unlock()
		case <-done:
		}
	}()
	b.cv.Wait() // releases and re-acquires b.mu
	close(done)
}

// Peek returns the value Receive would return next without removing it.
// ok is false when empty.
func (b *Queue[T]) Peek() (v T, ok bool) {
	b.mu.Lock()
	v, ok = b.q.Peek()
	b.mu.Unlock()
	return
}

// Len returns the number of elements currently queued.
func (b *Queue[T]) Len() int {
	b.mu.Lock()
	n := b.q.Len()
	b.mu.Unlock()
	return n
}

// IsEmpty reports whether the queue is empty.
func (b *Queue[T]) IsEmpty() bool { return b.Len() == 0 }

// Clear removes all elements from the queue.
func (b *Queue[T]) Clear() {
	b.mu.Lock()
	b.q.Clear()
	b.mu.Unlock()
}

// Close marks the queue closed and wakes every waiting receiver. Further
// sends fail with ErrClosed. Close is idempotent.
func (b *Queue[T]) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		b.cv.Broadcast()
	}
	b.mu.Unlock()
}

// Closed reports whether Close has been called.
func (b *Queue[T]) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ErrCanceled is returned by Receive when the context is canceled.
var ErrCanceled = context.Canceled

// ErrDeadlineExceeded is returned by Receive when the context deadline expires.
var ErrDeadlineExceeded = context.DeadlineExceeded

// IsContextError reports whether err equals context.Canceled or context.DeadlineExceeded.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package xyphase

import (
	"errors"
	"strings"
	"sync"
)

// Discipline selects the end of the queue Dequeue removes from.
type Discipline int

const (
	// FIFO returns the oldest value first.
	FIFO Discipline = iota
	// LIFO returns the most recently enqueued value first.
	LIFO
)

// ErrUnknownDiscipline is returned by ParseDiscipline for unrecognized names.
var ErrUnknownDiscipline = errors.New("xyphase: unknown discipline")

func (d Discipline) String() string {
	switch d {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	}
	return "unknown"
}

// ParseDiscipline parses "fifo" or "lifo", ignoring case.
func ParseDiscipline(s string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	}
	return FIFO, ErrUnknownDiscipline
}

// MarshalText implements encoding.TextMarshaler.
func (d Discipline) MarshalText() ([]byte, error) {
	if d != FIFO && d != LIFO {
		return nil, ErrUnknownDiscipline
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Discipline) UnmarshalText(text []byte) error {
	v, err := ParseDiscipline(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Queue is a generic, concurrency-safe ordered container. Values are stored
// in insertion order; the Discipline decides which end Dequeue and Peek use.
// The zero value is a ready-to-use FIFO queue, but New or NewWithCapacity
// should be preferred.
type Queue[T any] struct {
	mu   sync.Mutex
	data []T
	disc Discipline
}

// New creates a new queue with the given discipline.
func New[T any](d Discipline) *Queue[T] {
	return &Queue[T]{
		data: make([]T, 0),
		disc: d,
	}
}

// NewWithCapacity creates a new queue with the given initial capacity.
// Capacity preallocates internal storage; behavior is otherwise identical to
// New.
func NewWithCapacity[T any](d Discipline, capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		data: make([]T, 0, capacity),
		disc: d,
	}
}

// Discipline reports the ordering discipline chosen at construction.
func (q *Queue[T]) Discipline() Discipline {
	return q.disc
}

// Enqueue appends v to the tail. Amortized complexity: O(1).
func (q *Queue[T]) Enqueue(v T) {
	q.mu.Lock()
	q.data = append(q.data, v)
	q.mu.Unlock()
}

// EnqueueMany appends items in order and returns the count added.
func (q *Queue[T]) EnqueueMany(items ...T) int {
	q.mu.Lock()
	q.data = append(q.data, items...)
	q.mu.Unlock()
	return len(items)
}

// Dequeue removes and returns the next value: the head under FIFO, the tail
// under LIFO.
//
// The second result is false when the queue is empty. Amortized complexity: O(1).
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	n := len(q.data)
	if n == 0 {
		return zero, false
	}
	if q.disc == LIFO {
		v := q.data[n-1]
		q.data[n-1] = zero
		q.data = q.data[:n-1]
		return v, true
	}
	v := q.data[0]
	q.data[0] = zero
	// Avoid O(n) element moves by reslicing; let GC reclaim older head when needed.
	q.data = q.data[1:]
	return v, true
}

// Peek returns the value Dequeue would return next without removing it.
// The second result is false when the queue is empty. Complexity: O(1).
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	n := len(q.data)
	if n == 0 {
		return zero, false
	}
	if q.disc == LIFO {
		return q.data[n-1], true
	}
	return q.data[0], true
}

// Len returns the number of elements currently queued.
// Complexity: O(1). Safe for concurrent use.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

// IsEmpty reports whether the queue is empty.
// Complexity: O(1). Equivalent to Len() == 0.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Clear removes all elements from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.data)
	q.data = q.data[:0]
}

// ToSlice returns a copy of the queue's contents in insertion order, oldest
// first, regardless of discipline.
// Complexity: O(n). The returned slice is independent of the queue.
func (q *Queue[T]) ToSlice() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.data))
	copy(out, q.data)
	return out
}

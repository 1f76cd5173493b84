package phasecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/xyhelper/xyphase/blockingqueue"
)

// Subscription receives every phase published after Subscribe, independent
// of the shared queue and of other subscriptions.
type Subscription struct {
	c     *Cycle
	queue *blockingqueue.Queue[Phase]
}

// Subscribe registers a new fan-out subscription. It returns ErrStopped if
// the cycle has already stopped.
func (c *Cycle) Subscribe() (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil, ErrStopped
	}
	s := &Subscription{c: c, queue: blockingqueue.New[Phase](c.cfg.Discipline)}
	c.subs[s] = struct{}{}
	return s, nil
}

// Receive blocks for the next phase delivered to this subscription.
func (s *Subscription) Receive(ctx context.Context) (Phase, error) {
	p, err := s.queue.Receive(ctx)
	if err != nil {
		return p, s.translate(err)
	}
	return p, nil
}

// WaitForPhase blocks until target is delivered to this subscription while
// it is still the current phase. Stale phases in the backlog are skipped.
func (s *Subscription) WaitForPhase(ctx context.Context, target Phase) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPhase, int32(target))
	}
	return s.translate(s.c.waitFor(ctx, s.queue, target))
}

// Pending returns the number of phases delivered but not yet received.
func (s *Subscription) Pending() int { return s.queue.Len() }

// Close unsubscribes and discards undelivered phases. Blocked and later
// Receive calls return ErrSubscriptionClosed while the cycle runs and
// ErrStopped after it stops.
func (s *Subscription) Close() {
	s.c.mu.Lock()
	delete(s.c.subs, s)
	s.c.mu.Unlock()
	// No publish can reach the queue once it is out of subs.
	s.queue.Clear()
	s.queue.Close()
}

func (s *Subscription) translate(err error) error {
	if !errors.Is(err, blockingqueue.ErrClosed) {
		return err
	}
	s.c.mu.Lock()
	stopped := s.c.stopped
	s.c.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	return ErrSubscriptionClosed
}

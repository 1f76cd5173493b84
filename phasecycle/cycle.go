// Package phasecycle implements a two-phase state machine that toggles
// between Red and Green at randomized intervals and publishes every change
// through a blocking queue.
//
// A Cycle has a single publisher goroutine, started by Simulate, which is the
// only writer of the phase. Observers either share the cycle's queue through
// WaitForPhase, in which case each published phase is delivered to at most
// one of them, or take their own Subscription to see every phase.
//
// CurrentPhase and the queue are two views of the same fact, not updated
// under one lock. The phase is stored before it is sent, and the wait
// operations skip any queued phase that no longer matches CurrentPhase, so
// when WaitForPhase(P) returns CurrentPhase reads P until the next
// transition. A plain Receive on a Subscription may still hand out phases
// from a backlog that CurrentPhase has already moved past.
package phasecycle

import (
	"context"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"

	"github.com/xyhelper/xyphase/blockingqueue"
	"github.com/xyhelper/xyphase/internal/logger"
)

// Cycle owns the current phase and the publisher that flips it.
type Cycle struct {
	id  uuid.UUID
	cfg Config
	log *logger.Logger
	now func() time.Time
	rnd *rand.Rand // publisher goroutine only

	phase  atomic.Int32
	queue  *blockingqueue.Queue[Phase]
	shared bool // publish to queue

	transitions    atomic.Uint64
	lastTransition atomic.Int64 // unix nanos, 0 until started

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	subs    map[*Subscription]struct{}
	done    chan struct{}
}

// Option customizes a Cycle at construction.
type Option func(*Cycle)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cycle) { c.log = l }
}

// WithRand sets the random source used to draw cycle durations. The default
// is a ChaCha8 generator seeded from crypto/rand.
func WithRand(r *rand.Rand) Option {
	return func(c *Cycle) { c.rnd = r }
}

// WithID sets the diagnostic identifier instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Cycle) { c.id = id }
}

// WithoutSharedQueue stops the publisher from feeding the shared queue, for
// callers that only observe through Subscribe. WaitForPhase on such a cycle
// returns ErrNoSharedQueue.
func WithoutSharedQueue() Option {
	return func(c *Cycle) { c.shared = false }
}

// WithClock replaces time.Now for elapsed-time checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cycle) { c.now = now }
}

// New returns a Cycle in the Red phase. The publisher is not running until
// Simulate is called. Failures of the system randomness source are returned
// here rather than at the first draw.
func New(cfg Config, opts ...Option) (*Cycle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Cycle{
		cfg:    cfg,
		now:    time.Now,
		queue:  blockingqueue.New[Phase](cfg.Discipline),
		shared: true,
		subs:   make(map[*Subscription]struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.phase.Store(int32(Red))
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.id.IsNil() {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("generating cycle id: %w", err)
		}
		c.id = id
	}
	if c.rnd == nil {
		var seed [32]byte
		if _, err := cryptorand.Read(seed[:]); err != nil {
			return nil, fmt.Errorf("seeding random source: %w", err)
		}
		c.rnd = rand.New(rand.NewChaCha8(seed))
	}
	return c, nil
}

// ID returns the identifier used in log lines and Stats.
func (c *Cycle) ID() uuid.UUID { return c.id }

// Config returns the configuration the cycle was built with.
func (c *Cycle) Config() Config { return c.cfg }

// CurrentPhase returns the last phase written by the publisher. It may lag
// or lead the phases still waiting in the queue.
func (c *Cycle) CurrentPhase() Phase {
	return Phase(c.phase.Load())
}

// Simulate starts the publisher. It runs until Stop is called or ctx is
// done. Only the first call starts anything: later calls return
// ErrAlreadyStarted, and calls after Stop return ErrStopped.
func (c *Cycle) Simulate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stopped:
		return ErrStopped
	case c.started:
		return ErrAlreadyStarted
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	start := c.now()
	c.lastTransition.Store(start.UnixNano())
	go c.run(runCtx, start)
	c.log.Infof("cycle %s: started in %s, cycle %s-%s", c.id, c.CurrentPhase(), c.cfg.MinCycle, c.cfg.MaxCycle)
	return nil
}

// Stop cancels the publisher, waits for it to exit, and closes the shared
// queue and every subscription. Phases already queued can still be
// received. Stop is idempotent and may be called before Simulate.
func (c *Cycle) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	started := c.started
	if !started && !c.stopped {
		c.started = true // keep Simulate from racing the close below
		c.mu.Unlock()
		c.shutdown()
		close(c.done)
		return
	}
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-c.done
}

// Done is closed once the publisher has exited, or when Stop is called on a
// cycle that never started.
func (c *Cycle) Done() <-chan struct{} { return c.done }

func (c *Cycle) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	c.queue.Close()
	for s := range c.subs {
		s.queue.Close()
	}
	clear(c.subs)
	c.log.Infof("cycle %s: stopped after %d transitions in %s", c.id, c.transitions.Load(), c.CurrentPhase())
}

func (c *Cycle) run(ctx context.Context, last time.Time) {
	defer close(c.done)
	defer c.shutdown()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	wait := c.nextDuration()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if c.now().Sub(last) < wait {
			continue
		}
		next := c.CurrentPhase().Next()
		c.phase.Store(int32(next))
		last = c.now()
		c.lastTransition.Store(last.UnixNano())
		n := c.transitions.Add(1)
		c.publish(next)
		c.log.Debugf("cycle %s: transition %d to %s after %s", c.id, n, next, wait)
		wait = c.nextDuration()
	}
}

// nextDuration draws uniformly from [MinCycle, MaxCycle].
func (c *Cycle) nextDuration() time.Duration {
	span := int64(c.cfg.MaxCycle - c.cfg.MinCycle)
	if span <= 0 {
		return c.cfg.MinCycle
	}
	return c.cfg.MinCycle + time.Duration(c.rnd.Int64N(span+1))
}

func (c *Cycle) publish(p Phase) {
	if c.shared {
		if err := c.queue.Send(p); err != nil {
			c.log.Warnf("cycle %s: publish %s: %v", c.id, p, err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for s := range c.subs {
		_ = s.queue.Send(p)
	}
}

// WaitForPhase blocks until target is received from the shared queue while
// it is still the current phase, discarding every other phase on the way.
// A stale target left in the backlog by earlier transitions is skipped.
// Each published phase is consumed by exactly one waiter, so concurrent
// callers compete for values; use Subscribe when every observer must see
// every phase.
//
// It returns ctx.Err() on cancellation and ErrStopped once the cycle has
// stopped and no queued phase matches.
func (c *Cycle) WaitForPhase(ctx context.Context, target Phase) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPhase, int32(target))
	}
	if !c.shared {
		return ErrNoSharedQueue
	}
	err := c.waitFor(ctx, c.queue, target)
	if errors.Is(err, blockingqueue.ErrClosed) {
		return ErrStopped
	}
	return err
}

// WaitForGreen is WaitForPhase(ctx, Green).
func (c *Cycle) WaitForGreen(ctx context.Context) error {
	return c.WaitForPhase(ctx, Green)
}

func (c *Cycle) waitFor(ctx context.Context, q *blockingqueue.Queue[Phase], target Phase) error {
	for {
		p, err := q.Receive(ctx)
		if err != nil {
			return err
		}
		if p == target && c.CurrentPhase() == target {
			return nil
		}
	}
}

// Stats is a point-in-time view of a cycle, useful as a liveness check.
type Stats struct {
	ID             uuid.UUID
	Phase          Phase
	Transitions    uint64
	LastTransition time.Time // zero before Simulate
	Pending        int       // phases waiting in the shared queue
	Running        bool
}

// Stats returns a snapshot. Fields are read independently and may be
// mutually inconsistent by one transition.
func (c *Cycle) Stats() Stats {
	s := Stats{
		ID:          c.id,
		Phase:       c.CurrentPhase(),
		Transitions: c.transitions.Load(),
		Pending:     c.queue.Len(),
	}
	if ns := c.lastTransition.Load(); ns != 0 {
		s.LastTransition = time.Unix(0, ns)
	}
	c.mu.Lock()
	s.Running = c.started && !c.stopped
	c.mu.Unlock()
	return s
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/xyhelper/xyphase/internal/logger"
	"github.com/xyhelper/xyphase/phasecycle"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start the cycle and block observers on the target phase",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "observers", Aliases: []string{"n"}, Value: 1, Usage: "number of observers"},
			&cli.BoolFlag{Name: "fanout", Usage: "give each observer its own subscription instead of sharing the queue"},
			&cli.StringFlag{Name: "phase", Value: "green", Usage: "phase to wait for, red or green"},
			&cli.IntFlag{Name: "count", Usage: "exit after each observer sees the phase this many times (0 runs until interrupted)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}
			level, err := logger.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			target, err := phasecycle.ParsePhase(c.String("phase"))
			if err != nil {
				return err
			}
			r := runner{
				cfg:       cfg,
				log:       logger.New(os.Stderr, level, "[phasecycle] "),
				out:       c.App.Writer,
				observers: c.Int("observers"),
				fanout:    c.Bool("fanout"),
				target:    target,
				count:     c.Int("count"),
			}
			return r.run(c.Context)
		},
	}
}

type runner struct {
	cfg       phasecycle.Config
	log       *logger.Logger
	out       io.Writer
	observers int
	fanout    bool
	target    phasecycle.Phase
	count     int

	outMu sync.Mutex
}

// waitFunc blocks until one observation of the target phase.
type waitFunc func(ctx context.Context) error

func (r *runner) run(ctx context.Context) error {
	if r.observers < 1 {
		return fmt.Errorf("need at least one observer, got %d", r.observers)
	}
	opts := []phasecycle.Option{phasecycle.WithLogger(r.log)}
	if r.fanout {
		// Nobody drains the shared queue in fan-out mode.
		opts = append(opts, phasecycle.WithoutSharedQueue())
	}
	cycle, err := phasecycle.New(r.cfg, opts...)
	if err != nil {
		return fmt.Errorf("creating cycle: %w", err)
	}
	defer cycle.Stop()

	waits := make([]waitFunc, r.observers)
	for i := range waits {
		if !r.fanout {
			waits[i] = func(ctx context.Context) error { return cycle.WaitForPhase(ctx, r.target) }
			continue
		}
		sub, err := cycle.Subscribe()
		if err != nil {
			return fmt.Errorf("subscribing observer %d: %w", i, err)
		}
		defer sub.Close()
		waits[i] = func(ctx context.Context) error { return sub.WaitForPhase(ctx, r.target) }
	}

	if err := cycle.Simulate(ctx); err != nil {
		return fmt.Errorf("starting cycle: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, wait := range waits {
		wg.Add(1)
		go func(id int, wait waitFunc) {
			defer wg.Done()
			if err := r.observe(ctx, id, wait); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i, wait)
	}
	wg.Wait()
	st := cycle.Stats()
	r.log.Infof("cycle %s: %d transitions, %d phases pending", st.ID, st.Transitions, st.Pending)
	return errors.Join(errs...)
}

func (r *runner) observe(ctx context.Context, id int, wait waitFunc) error {
	for seen := 0; r.count == 0 || seen < r.count; {
		err := wait(ctx)
		switch {
		case err == nil:
			seen++
			r.outMu.Lock()
			fmt.Fprintf(r.out, "observer %d: %s (%d)\n", id, r.target, seen)
			r.outMu.Unlock()
		case errors.Is(err, context.Canceled), errors.Is(err, phasecycle.ErrStopped):
			return nil
		default:
			return fmt.Errorf("observer %d: %w", id, err)
		}
	}
	return nil
}

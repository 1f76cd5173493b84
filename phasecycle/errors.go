package phasecycle

import "errors"

var (
	// ErrAlreadyStarted is returned by Simulate on every call after the first.
	ErrAlreadyStarted = errors.New("phasecycle: already started")
	// ErrStopped is returned once the publisher has exited and the pending
	// phases are drained.
	ErrStopped = errors.New("phasecycle: stopped")
	// ErrInvalidPhase reports a value that is neither Red nor Green.
	ErrInvalidPhase = errors.New("phasecycle: invalid phase")
	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("phasecycle: invalid config")
	// ErrNoSharedQueue is returned by WaitForPhase on a cycle built with
	// WithoutSharedQueue.
	ErrNoSharedQueue = errors.New("phasecycle: shared queue disabled")
	// ErrSubscriptionClosed is returned by a Subscription after Close.
	ErrSubscriptionClosed = errors.New("phasecycle: subscription closed")
)

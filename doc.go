// Package xyphase provides a generic ordered container used as the storage
// layer of the phase mailbox.
//
// The queue is concurrency-safe: all exported methods use internal locking and
// may be called from multiple goroutines. Construct a queue with New or
// NewWithCapacity. The Discipline chosen at construction decides which end
// Dequeue takes from: FIFO returns the oldest value, LIFO the newest.
//
// Blocking receive lives in the blockingqueue subpackage, and the phase state
// machine built on it in phasecycle.
package xyphase

package queue

import (
	"github.com/lrclib/lrclib/src/catalog"
)

// DefaultCapacity bounds the missing track queue when no capacity is configured.
const DefaultCapacity = 10000

// Bounded is an in-memory FIFO implementation of the MissingQueue interface.
// Push and pop never block; a full queue rejects new entries instead.
type Bounded struct {
	items chan catalog.MissingTrack
}

// NewBounded creates a new bounded queue. A capacity of zero or less
// falls back to DefaultCapacity.
func NewBounded(capacity int) catalog.MissingQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bounded{items: make(chan catalog.MissingTrack, capacity)}
}

// TryPush enqueues mt and reports whether there was room for it.
func (q *Bounded) TryPush(mt catalog.MissingTrack) bool {
	select {
	case q.items <- mt:
		return true
	default:
		return false
	}
}

// TryPop dequeues the oldest entry, reporting false when the queue is empty.
func (q *Bounded) TryPop() (catalog.MissingTrack, bool) {
	select {
	case mt := <-q.items:
		return mt, true
	default:
		return catalog.MissingTrack{}, false
	}
}

// Len returns the number of queued entries.
func (q *Bounded) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *Bounded) Cap() int {
	return cap(q.items)
}

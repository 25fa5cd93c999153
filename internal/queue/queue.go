// Package queue tracks units of search work through a queued → running →
// finished lifecycle.
//
// Objects live in an arena and are addressed by Handle. The queued and
// running sets are roaring bitmaps over arena indices, so the state queries
// are O(1) and Pop always returns the oldest queued object.
package queue

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrEmpty is returned by Pop when no object is queued.
	ErrEmpty = errors.New("queue: no queued objects")

	// ErrNotRunning is returned by SetFinished for a handle that is not running.
	ErrNotRunning = errors.New("queue: object is not running")

	// ErrFull is returned when the arena cannot address more objects.
	ErrFull = errors.New("queue: arena is full")
)

// State is the lifecycle state of a tracked object.
type State uint8

const (
	// Untracked marks an arena slot whose object was consumed.
	Untracked State = iota
	Queued
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Untracked:
		return "untracked"
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// ParseState maps a state name as returned by String back to a State.
func ParseState(name string) (State, error) {
	for s := Queued; s <= Finished; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return Untracked, fmt.Errorf("queue: unknown state %q", name)
}

// Handle addresses an object in the queue arena.
type Handle uint32

// Entry is a tracked object together with its state.
type Entry[T any] struct {
	Object T
	State  State
}

// Queue is a work queue. A tracking queue moves popped objects to Running;
// a consuming queue forgets them on Pop. Queue is not safe for concurrent use.
type Queue[T any] struct {
	consume bool
	items   []T
	states  []State
	queued  *roaring.Bitmap
	running *roaring.Bitmap
}

// NewTracking creates a queue whose popped objects must be marked finished.
func NewTracking[T any](objs ...T) *Queue[T] {
	q := newQueue[T](false)
	q.mustAdd(objs)
	return q
}

// NewConsuming creates a queue whose popped objects leave the queue.
func NewConsuming[T any](objs ...T) *Queue[T] {
	q := newQueue[T](true)
	q.mustAdd(objs)
	return q
}

func newQueue[T any](consume bool) *Queue[T] {
	return &Queue[T]{
		consume: consume,
		queued:  roaring.New(),
		running: roaring.New(),
	}
}

func (q *Queue[T]) mustAdd(objs []T) {
	if err := q.Add(objs...); err != nil {
		panic(err)
	}
}

// Add appends objects in the Queued state.
func (q *Queue[T]) Add(objs ...T) error {
	for _, o := range objs {
		if err := q.AddWithState(o, Queued); err != nil {
			return err
		}
	}
	return nil
}

// AddWithState appends an object in an explicit state. It is used to restore
// a queue from a checkpoint. A consuming queue only accepts Queued objects.
func (q *Queue[T]) AddWithState(obj T, state State) error {
	if len(q.items) >= math.MaxUint32 {
		return ErrFull
	}
	switch state {
	case Queued, Running, Finished:
	default:
		return fmt.Errorf("queue: cannot add object in state %s", state)
	}
	if q.consume && state != Queued {
		return fmt.Errorf("queue: consuming queue cannot hold %s objects", state)
	}

	h := uint32(len(q.items))
	q.items = append(q.items, obj)
	q.states = append(q.states, state)
	switch state {
	case Queued:
		q.queued.Add(h)
	case Running:
		q.running.Add(h)
	}
	return nil
}

// Pop returns the oldest queued object. On a tracking queue the object moves
// to Running; on a consuming queue it stops being tracked.
func (q *Queue[T]) Pop() (Handle, T, error) {
	var zero T
	if q.queued.IsEmpty() {
		return 0, zero, ErrEmpty
	}
	h := q.queued.Minimum()
	q.queued.Remove(h)
	obj := q.items[h]

	if q.consume {
		q.items[h] = zero
		q.states[h] = Untracked
	} else {
		q.states[h] = Running
		q.running.Add(h)
	}
	return Handle(h), obj, nil
}

// SetFinished moves a running object to Finished, releasing its slot.
func (q *Queue[T]) SetFinished(h Handle) error {
	if !q.running.Contains(uint32(h)) {
		return fmt.Errorf("%w: handle %d", ErrNotRunning, h)
	}
	q.running.Remove(uint32(h))
	q.states[h] = Finished
	return nil
}

// HasQueued reports whether at least one object is queued.
func (q *Queue[T]) HasQueued() bool { return !q.queued.IsEmpty() }

// NumQueued returns the number of queued objects.
func (q *Queue[T]) NumQueued() int { return int(q.queued.GetCardinality()) }

// NumRunning returns the number of running objects.
func (q *Queue[T]) NumRunning() int { return int(q.running.GetCardinality()) }

// Finished reports whether no object is queued or running.
func (q *Queue[T]) Finished() bool { return q.queued.IsEmpty() && q.running.IsEmpty() }

// Entries returns all tracked objects with their states in insertion order.
func (q *Queue[T]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, len(q.items))
	for i, s := range q.states {
		if s == Untracked {
			continue
		}
		out = append(out, Entry[T]{Object: q.items[i], State: s})
	}
	return out
}

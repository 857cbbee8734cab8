// Package state provides a generic state container whose reads and
// transitions are applied one at a time on a single event-queue goroutine.
//
// A container owns its state value and a list of listeners. Set replaces
// the state and invokes every listener synchronously, on the queue
// goroutine, before Set returns. Listeners must not call back into the
// same container synchronously; hand work off to another goroutine instead.
// A listener that panics is recovered and reported to the handler set with
// OnListenerPanic; the remaining listeners still run.
//
// State values are treated as immutable: transitions must build new slices
// and maps rather than modifying the ones held by the previous state.
package state

import (
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed container.
var ErrClosed = errors.New("state: container closed")

// Listener is notified after every transition with the new and previous
// state.
type Listener[S any] func(next, prev S)

// Store is a state container.
type Store[S any] struct {
	queue chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	// Owned by the queue goroutine.
	state     S
	listeners []subscription[S]
	nextID    int
	onPanic   func(recovered any)
}

type subscription[S any] struct {
	id int
	fn Listener[S]
}

// New creates a container seeded with initial and starts its queue.
func New[S any](initial S) *Store[S] {
	s := &Store[S]{
		queue: make(chan func()),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		state: initial,
	}
	go s.loop()
	return s
}

func (s *Store[S]) loop() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-s.quit:
			return
		}
	}
}

// do runs fn on the queue goroutine and waits for it to return.
func (s *Store[S]) do(fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.queue <- job:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// Get returns the current state.
func (s *Store[S]) Get() (S, error) {
	var cur S
	err := s.do(func() { cur = s.state })
	return cur, err
}

// Set applies fn to the current state, stores the result and notifies
// listeners in subscription order.
func (s *Store[S]) Set(fn func(S) S) error {
	return s.do(func() {
		prev := s.state
		s.state = fn(prev)
		for _, sub := range s.listeners {
			s.notify(sub, prev)
		}
	})
}

func (s *Store[S]) notify(sub subscription[S], prev S) {
	defer func() {
		if r := recover(); r != nil && s.onPanic != nil {
			s.onPanic(r)
		}
	}()
	sub.fn(s.state, prev)
}

// OnListenerPanic sets the function called with the recovered value when a
// listener panics. It runs on the queue goroutine.
func (s *Store[S]) OnListenerPanic(fn func(recovered any)) error {
	return s.do(func() { s.onPanic = fn })
}

// Subscribe registers l and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func(), err error) {
	var id int
	err = s.do(func() {
		s.nextID++
		id = s.nextID
		s.listeners = append(s.listeners, subscription[S]{id: id, fn: l})
	})
	if err != nil {
		return func() {}, err
	}
	return func() {
		_ = s.do(func() {
			kept := s.listeners[:0:0]
			for _, sub := range s.listeners {
				if sub.id != id {
					kept = append(kept, sub)
				}
			}
			s.listeners = kept
		})
	}, nil
}

// Close stops the queue. Pending calls either complete or fail with
// ErrClosed. Close is idempotent.
func (s *Store[S]) Close() error {
	s.once.Do(func() { close(s.quit) })
	<-s.done
	return nil
}

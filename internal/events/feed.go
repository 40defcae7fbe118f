package events

import (
	"sync"
)

// Feed fans values out to channel and callback subscribers.
// T is the published value type; values are passed by copy, so T should be
// a value type or treated as immutable once published.
type Feed[T any] struct {
	mu        sync.RWMutex
	chans     map[uint64]chan<- T
	funcs     map[uint64]func(T)
	nextID    uint64
	replay    bool
	last      T
	published bool
}

// NewFeed creates a Feed. With replay set, a new subscriber immediately
// receives the most recently published value, if any.
func NewFeed[T any](replay bool) *Feed[T] {
	return &Feed[T]{
		chans:  make(map[uint64]chan<- T),
		funcs:  make(map[uint64]func(T)),
		replay: replay,
	}
}

// Subscribe registers ch and returns the function that removes it.
// Delivery is non-blocking: a full channel misses the value.
func (f *Feed[T]) Subscribe(ch chan<- T) func() {
	if ch == nil {
		panic("events: nil channel")
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.chans[id] = ch
	last, send := f.last, f.replay && f.published
	f.mu.Unlock()

	if send {
		select {
		case ch <- last:
		default:
		}
	}

	return func() {
		f.mu.Lock()
		delete(f.chans, id)
		f.mu.Unlock()
	}
}

// SubscribeFunc registers fn, which is called synchronously from Publish.
func (f *Feed[T]) SubscribeFunc(fn func(T)) func() {
	if fn == nil {
		panic("events: nil callback")
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.funcs[id] = fn
	last, send := f.last, f.replay && f.published
	f.mu.Unlock()

	// outside the lock so fn may publish
	if send {
		fn(last)
	}

	return func() {
		f.mu.Lock()
		delete(f.funcs, id)
		f.mu.Unlock()
	}
}

// Publish delivers v to every subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	if f.replay {
		f.last = v
		f.published = true
	}
	chans := make([]chan<- T, 0, len(f.chans))
	for _, ch := range f.chans {
		chans = append(chans, ch)
	}
	funcs := make([]func(T), 0, len(f.funcs))
	for _, fn := range f.funcs {
		funcs = append(funcs, fn)
	}
	f.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- v:
		default:
		}
	}
	for _, fn := range funcs {
		fn(v)
	}
}

// Last returns the most recent value of a replaying feed.
func (f *Feed[T]) Last() (T, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last, f.published
}

// SubscriberCount is used by tests and shutdown diagnostics.
func (f *Feed[T]) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.chans) + len(f.funcs)
}

package store

import (
	"sync"
	"time"
)

// Store owns exactly one state value and notifies subscribers on every
// committed update. All commits and notification passes run synchronously on
// the calling goroutine; the internal mutex is never held while subscribers
// execute, so subscribers may read, write, and unsubscribe reentrantly.
type Store[S any] struct {
	mu    sync.Mutex
	state S
	cfg   storeConfig

	dispatch SetFunc[S]
	ready    bool

	subs   []subscription[S]
	nextID uint64
}

// New builds a store by running init once against the core. Compose an
// initializer with middleware before passing it in:
//
//	st := store.New(store.Compose(initCart, p.Middleware(), d.Middleware()))
func New[S any](init Initializer[S], opts ...StoreOption) *Store[S] {
	s := &Store[S]{cfg: applyStoreOptions(opts)}
	s.dispatch = s.commit
	if init != nil {
		s.state = init(s.Set, s.Get, s)
	}
	s.ready = true
	return s
}

// Compose applies middleware to init as an explicit ordered list. The first
// middleware listed sits innermost, closest to the raw state; the last listed
// observes every other middleware's work. Stacked middleware still produce
// exactly one commit and one notification pass per logical update.
func Compose[S any](init Initializer[S], middleware ...Middleware[S]) Initializer[S] {
	wrapped := init
	for _, mw := range middleware {
		if mw == nil {
			continue
		}
		wrapped = mw(wrapped)
	}
	return wrapped
}

// Get returns the current state reference.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set applies an update through the store's middleware chain and notifies
// subscribers. Calling Set before the initializer has returned is programmer
// misuse and panics.
func (s *Store[S]) Set(u Update[S]) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		panic("store: Set called before the initializer returned")
	}
	dispatch := s.dispatch
	s.mu.Unlock()
	dispatch(u)
}

// InterceptSet wraps the store's update path. Middleware call this during
// initialization to add side effects around commits; the wrapper installed
// first runs closest to the raw commit.
func (s *Store[S]) InterceptSet(wrap func(next SetFunc[S]) SetFunc[S]) {
	if wrap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch = wrap(s.dispatch)
}

// commit is the innermost update path: swap the state under lock, then run
// one notification pass over a snapshot of the registry taken at commit time.
// The core always notifies after an accepted update; value-level filtering is
// the subscription registry's responsibility.
func (s *Store[S]) commit(u Update[S]) {
	s.mu.Lock()
	prev := s.state
	s.mu.Unlock()

	// Next runs caller code (updaters, draft materialization) and may call
	// back into Get, so it executes outside the lock.
	next := u.Next(prev)

	s.mu.Lock()
	s.state = next
	snapshot := make([]subscription[S], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()

	started := time.Now()
	s.notify(snapshot, next, prev)
	s.logger().LogTransition(TransitionEvent{
		Label:       u.Label(),
		Subscribers: len(snapshot),
		Duration:    time.Since(started),
	})
}

func (s *Store[S]) notify(snapshot []subscription[S], state, prev S) {
	var recovered any
	var caught bool
	for _, sub := range snapshot {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if s.cfg.onListenerPanic != nil {
					s.cfg.onListenerPanic(r)
					return
				}
				if !caught {
					recovered = r
					caught = true
				}
			}()
			sub.notify(state, prev)
		}()
	}
	if caught {
		panic(recovered)
	}
}

func (s *Store[S]) logger() Logger {
	if s.cfg.logger != nil {
		return s.cfg.logger
	}
	return noopLogger{}
}

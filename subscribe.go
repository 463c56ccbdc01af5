package store

import (
	"reflect"
	"sync"
)

type subscription[S any] struct {
	id     uint64
	notify func(state, prev S)
}

// SubscribeOption configures a selector subscription.
type SubscribeOption[V any] func(*subscribeConfig[V])

type subscribeConfig[V any] struct {
	equals          func(a, b V) bool
	fireImmediately bool
}

// WithEquality overrides the comparison deciding whether a selected value
// changed. The default compares by identity: pointers, maps, and slices by
// reference, comparable values with ==.
func WithEquality[V any](equals func(a, b V) bool) SubscribeOption[V] {
	return func(cfg *subscribeConfig[V]) {
		if equals != nil {
			cfg.equals = equals
		}
	}
}

// FireImmediately invokes the listener once, synchronously, at subscription
// time with the currently selected value as both arguments.
func FireImmediately[V any]() SubscribeOption[V] {
	return func(cfg *subscribeConfig[V]) {
		cfg.fireImmediately = true
	}
}

// Subscribe registers fn to receive (state, previous) on every committed
// update, in registration order. The returned function removes the
// subscription and is idempotent. Subscribers registered or removed during a
// notification pass do not affect that pass; the registry snapshot is fixed
// when the commit happens.
func (s *Store[S]) Subscribe(fn func(state, prev S)) func() {
	if fn == nil {
		return func() {}
	}
	return s.register(fn)
}

// Subscribe registers a selector-scoped listener on st. fn fires only when
// equals(selected, previousSelected) reports false; see WithEquality and
// FireImmediately. Selector subscriptions need their own type parameter for
// the selected value, which Go methods cannot introduce, hence the
// package-level form.
func Subscribe[S, V any](st *Store[S], selector func(S) V, fn func(value, prev V), opts ...SubscribeOption[V]) func() {
	if st == nil || selector == nil || fn == nil {
		return func() {}
	}

	cfg := subscribeConfig[V]{equals: defaultEquality[V]}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var mu sync.Mutex
	current := selector(st.Get())

	unsubscribe := st.register(func(state, _ S) {
		selected := selector(state)
		mu.Lock()
		prev := current
		changed := !cfg.equals(selected, prev)
		if changed {
			current = selected
		}
		mu.Unlock()
		if changed {
			fn(selected, prev)
		}
	})

	if cfg.fireImmediately {
		fn(current, current)
	}
	return unsubscribe
}

func (s *Store[S]) register(notify func(state, prev S)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[S]{id: id, notify: notify})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unregister(id) })
	}
}

func (s *Store[S]) unregister(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func defaultEquality[V any](a, b V) bool {
	return sameValue(a, b)
}

// sameValue approximates reference equality across arbitrary types: reference
// kinds compare by pointer, comparable kinds by ==, everything else reports
// not-equal so the listener fires.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Len() == bv.Len() && (av.Len() == 0 || av.Pointer() == bv.Pointer())
	default:
		if av.Type().Comparable() {
			return a == b
		}
		return false
	}
}

package store

// GetFunc reads the current state of a store.
type GetFunc[S any] func() S

// SetFunc commits an update against a store.
type SetFunc[S any] func(Update[S])

// Initializer produces the initial state of a store. It receives the store's
// set and get entry points plus the store handle itself so actions embedded in
// the state can close over them.
type Initializer[S any] func(set SetFunc[S], get GetFunc[S], api *Store[S]) S

// Middleware transforms an initializer into one of extended capability.
// Middleware are stateless transformations; configuration lives on the value
// that produced them (a Persistor, a Devtools handle, and so on).
type Middleware[S any] func(next Initializer[S]) Initializer[S]

// Update describes one logical state transition. Construct updates with
// Merge, MergeFunc, Swap, SwapFunc, or Mutate; the zero Update is a no-op.
type Update[S any] struct {
	apply func(S) S
	label string
}

// Next computes the state that would result from applying the update to
// current. Middleware authors can call this to inspect a transition, but the
// store core invokes it exactly once per commit.
func (u Update[S]) Next(current S) S {
	if u.apply == nil {
		return current
	}
	return u.apply(current)
}

// Label returns the action label attached to the update, if any.
func (u Update[S]) Label() string {
	return u.label
}

// Labeled returns a copy of the update carrying label. Labels are forwarded
// to devtools inspectors and transition loggers.
func (u Update[S]) Labeled(label string) Update[S] {
	u.label = label
	return u
}

// StoreOption configures a store at construction time.
type StoreOption func(*storeConfig)

type storeConfig struct {
	logger          Logger
	onListenerPanic func(recovered any)
}

func applyStoreOptions(opts []StoreOption) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSubscriberErrorHandler installs a handler for panics raised by
// subscribers during a notification pass. Without a handler the first
// recovered panic is re-raised once the pass completes, after every remaining
// subscriber has run.
func WithSubscriberErrorHandler(handler func(recovered any)) StoreOption {
	return func(cfg *storeConfig) {
		cfg.onListenerPanic = handler
	}
}

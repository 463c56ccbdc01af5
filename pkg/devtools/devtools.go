package devtools

import (
	store "github.com/goliatone/go-store"
)

// Conn is one live channel to an inspector, scoped to a single store.
type Conn interface {
	Send(label string, state any) error
}

// ConnFunc allows plain functions to satisfy Conn.
type ConnFunc func(label string, state any) error

// Send dispatches to the underlying function.
func (fn ConnFunc) Send(label string, state any) error {
	if fn == nil {
		return nil
	}
	return fn(label, state)
}

// Inspector opens connections to an external state inspector.
type Inspector interface {
	Connect(label string) (Conn, error)
}

// Option configures a Devtools handle.
type Option func(*config)

type config struct {
	label    string
	disabled bool
}

// WithLabel names the store in the inspector. Defaults to "store".
func WithLabel(label string) Option {
	return func(cfg *config) {
		if label != "" {
			cfg.label = label
		}
	}
}

// WithEnabled toggles forwarding. Pass the build or environment flag here so
// production builds get a pure pass-through.
func WithEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.disabled = !enabled
	}
}

// Devtools forwards named state transitions to an inspector. It is strictly
// an observer: it never alters committed state, and inspector failures never
// reach the caller's update.
type Devtools[S any] struct {
	inspector Inspector
	cfg       config
}

func New[S any](inspector Inspector, opts ...Option) *Devtools[S] {
	cfg := config{label: "store"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Devtools[S]{inspector: inspector, cfg: cfg}
}

// Middleware returns the store middleware forwarding each committed update's
// label and resulting state. When disabled, or when the inspector cannot be
// reached, the middleware is a pass-through.
func (d *Devtools[S]) Middleware() store.Middleware[S] {
	return func(next store.Initializer[S]) store.Initializer[S] {
		return func(set store.SetFunc[S], get store.GetFunc[S], api *store.Store[S]) S {
			conn := d.connect()
			if conn != nil {
				api.InterceptSet(func(inner store.SetFunc[S]) store.SetFunc[S] {
					return func(u store.Update[S]) {
						inner(u)
						send(conn, actionLabel(u.Label()), api.Get())
					}
				})
			}

			var state S
			if next != nil {
				state = next(set, get, api)
			}
			if conn != nil {
				send(conn, "@init", state)
			}
			return state
		}
	}
}

func (d *Devtools[S]) connect() Conn {
	if d == nil || d.cfg.disabled || d.inspector == nil {
		return nil
	}
	conn, err := d.inspector.Connect(d.cfg.label)
	if err != nil {
		return nil
	}
	return conn
}

// send is best-effort: errors are dropped and panics contained.
func send(conn Conn, label string, state any) {
	defer func() {
		_ = recover()
	}()
	_ = conn.Send(label, state)
}

func actionLabel(label string) string {
	if label == "" {
		return "anonymous"
	}
	return label
}

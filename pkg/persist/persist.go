package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/internal/hydrate"
	"github.com/google/uuid"
)

// ErrNotConstructed is returned by Rehydrate when the middleware has not been
// attached to a store yet.
var ErrNotConstructed = errors.New("persist: store not constructed")

// Status tracks the hydration state machine of one persisted store.
type Status int

const (
	StatusUninitialized Status = iota
	StatusHydrating
	StatusHydrated
)

func (s Status) String() string {
	switch s {
	case StatusHydrating:
		return "hydrating"
	case StatusHydrated:
		return "hydrated"
	default:
		return "uninitialized"
	}
}

// Option configures a Persistor.
type Option[S any] func(*config[S])

type config[S any] struct {
	version       int
	migrate       func(fromVersion int, state map[string]any) (map[string]any, error)
	partialize    func(S) any
	onError       func(error)
	onHydrate     func(state *S, err error)
	skipHydration bool
	ctx           context.Context
}

// WithVersion sets the version written into persisted records. Records on
// disk carrying a different version are discarded unless a migration is
// configured.
func WithVersion[S any](version int) Option[S] {
	return func(cfg *config[S]) {
		cfg.version = version
	}
}

// WithMigrate installs a migration invoked when a persisted record's version
// differs from the running version. It receives the on-disk version and the
// raw state payload and returns the payload rewritten for the current shape.
func WithMigrate[S any](migrate func(fromVersion int, state map[string]any) (map[string]any, error)) Option[S] {
	return func(cfg *config[S]) {
		cfg.migrate = migrate
	}
}

// WithPartialize chooses the projection of state eligible for persistence.
// Fields outside the projection are never round-tripped. The default projects
// every exported serializable field.
func WithPartialize[S any](partialize func(S) any) Option[S] {
	return func(cfg *config[S]) {
		cfg.partialize = partialize
	}
}

// WithOnError installs a hook receiving persistence failures. Write failures
// never roll back the in-memory commit; this hook is the only place they
// surface.
func WithOnError[S any](onError func(error)) Option[S] {
	return func(cfg *config[S]) {
		cfg.onError = onError
	}
}

// WithOnHydrate installs a hook invoked exactly once when hydration
// completes: with the post-hydration state on success (the hook may adjust it
// in place before it is committed), or with a nil state and the failure
// otherwise.
func WithOnHydrate[S any](onHydrate func(state *S, err error)) Option[S] {
	return func(cfg *config[S]) {
		cfg.onHydrate = onHydrate
	}
}

// WithSkipHydration defers hydration until an explicit Rehydrate call.
// Server-rendered environments use this when no storage backend exists at
// construction time.
func WithSkipHydration[S any]() Option[S] {
	return func(cfg *config[S]) {
		cfg.skipHydration = true
	}
}

// WithContext sets the context used for construction-time hydration and
// fire-and-forget writes. Defaults to context.Background().
func WithContext[S any](ctx context.Context) Option[S] {
	return func(cfg *config[S]) {
		cfg.ctx = ctx
	}
}

// Persistor serializes a projection of a store's state to a Backend and
// restores it at or after construction. It carries the persist extension
// surface of the store handle: Rehydrate, Status, Clear.
type Persistor[S any] struct {
	name    string
	backend Backend
	cfg     config[S]

	mu     sync.Mutex
	status Status
	api    *store.Store[S]
}

// New builds a Persistor for the record called name. Attach it to a store
// with Middleware.
func New[S any](name string, backend Backend, opts ...Option[S]) *Persistor[S] {
	cfg := config[S]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Persistor[S]{name: name, backend: backend, cfg: cfg}
}

// Middleware returns the store middleware wiring persistence around commits:
// every committed update is followed by a write of the partialized state, and
// the initial state is hydrated from the backend unless skipHydration is set.
func (p *Persistor[S]) Middleware() store.Middleware[S] {
	return func(next store.Initializer[S]) store.Initializer[S] {
		return func(set store.SetFunc[S], get store.GetFunc[S], api *store.Store[S]) S {
			api.InterceptSet(func(inner store.SetFunc[S]) store.SetFunc[S] {
				return func(u store.Update[S]) {
					inner(u)
					p.write(api.Get())
				}
			})

			var state S
			if next != nil {
				state = next(set, get, api)
			}

			p.mu.Lock()
			p.api = api
			p.mu.Unlock()

			if p.cfg.skipHydration {
				return state
			}
			hydrated, _ := p.hydrateInto(p.context(), state)
			return hydrated
		}
	}
}

// Rehydrate reads the persisted record and merges it over the store's current
// state. A hydration failure is recovered locally: the store keeps its
// current state and the error is returned for the caller's information.
func (p *Persistor[S]) Rehydrate(ctx context.Context) error {
	p.mu.Lock()
	api := p.api
	p.mu.Unlock()
	if api == nil {
		return fmt.Errorf("persist: rehydrate record %q: %w", p.name, ErrNotConstructed)
	}

	merged, err := p.hydrateInto(ctx, api.Get())
	if err != nil {
		return err
	}
	api.Set(store.Swap(merged).Labeled("persist/rehydrate"))
	return nil
}

// Status reports where the store sits in the hydration lifecycle.
func (p *Persistor[S]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Hydrated reports whether hydration has completed. Callers defer rendering
// until this is true.
func (p *Persistor[S]) Hydrated() bool {
	return p.Status() == StatusHydrated
}

// Clear removes the persisted record. The in-memory state is untouched.
func (p *Persistor[S]) Clear(ctx context.Context) error {
	if err := p.backend.Remove(ctx, p.name); err != nil {
		return fmt.Errorf("persist: clear record %q: %w", p.name, err)
	}
	return nil
}

func (p *Persistor[S]) hydrateInto(ctx context.Context, base S) (S, error) {
	p.setStatus(StatusHydrating)
	merged, err := p.load(ctx, base)
	p.setStatus(StatusHydrated)
	if err != nil {
		p.reportError(err)
		if p.cfg.onHydrate != nil {
			p.cfg.onHydrate(nil, err)
		}
		return base, err
	}
	if p.cfg.onHydrate != nil {
		p.cfg.onHydrate(&merged, nil)
	}
	return merged, nil
}

func (p *Persistor[S]) load(ctx context.Context, base S) (S, error) {
	data, ok, err := p.backend.Get(ctx, p.name)
	if err != nil {
		return base, fmt.Errorf("persist: read record %q: %w", p.name, err)
	}
	if !ok {
		// Absent record: the defaults are the hydrated state.
		return base, nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return base, fmt.Errorf("persist: decode record %q: %w", p.name, err)
	}
	payload := map[string]any{}
	if len(record.State) > 0 {
		if err := json.Unmarshal(record.State, &payload); err != nil {
			return base, fmt.Errorf("persist: decode state of record %q: %w", p.name, err)
		}
	}

	var opts []hydrate.DecoderOption[S]
	if record.Version != p.cfg.version {
		if p.cfg.migrate == nil {
			// Version mismatch without a migration: discard and keep defaults.
			return base, nil
		}
		from := record.Version
		opts = append(opts, hydrate.WithPreHook[S](func(state map[string]any) (map[string]any, error) {
			return p.cfg.migrate(from, state)
		}))
	}

	merged, err := hydrate.NewDecoder[S](opts...).Merge(base, payload)
	if err != nil {
		return base, fmt.Errorf("persist: hydrate record %q: %w", p.name, err)
	}
	return merged, nil
}

// write is fire-and-forget relative to the commit: failures surface through
// the OnError hook and never roll back state.
func (p *Persistor[S]) write(state S) {
	projection := p.partialize(state)
	raw, err := json.Marshal(projection)
	if err != nil {
		p.reportError(fmt.Errorf("persist: encode state for record %q: %w", p.name, err))
		return
	}
	record := Record{
		Name:       p.name,
		Version:    p.cfg.version,
		SnapshotID: uuid.NewString(),
		State:      raw,
	}
	data, err := json.Marshal(record)
	if err != nil {
		p.reportError(fmt.Errorf("persist: encode record %q: %w", p.name, err))
		return
	}
	if err := p.backend.Set(p.context(), p.name, data); err != nil {
		p.reportError(fmt.Errorf("persist: write record %q: %w", p.name, err))
	}
}

func (p *Persistor[S]) partialize(state S) any {
	if p.cfg.partialize != nil {
		return p.cfg.partialize(state)
	}
	return projectState(state)
}

func (p *Persistor[S]) setStatus(status Status) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
}

func (p *Persistor[S]) reportError(err error) {
	if err == nil || p.cfg.onError == nil {
		return
	}
	p.cfg.onError(err)
}

func (p *Persistor[S]) context() context.Context {
	if p.cfg.ctx != nil {
		return p.cfg.ctx
	}
	return context.Background()
}

// projectState is the default partialize: every exported field the JSON codec
// can express, keyed by json tag name. Action closures and other
// unserializable fields are dropped rather than failing the write.
func projectState(state any) any {
	rv := reflect.ValueOf(state)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return state
	}

	out := make(map[string]any, rv.NumField())
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Func, reflect.Chan:
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		out[name] = rv.Field(i).Interface()
	}
	return out
}

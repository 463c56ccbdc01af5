package theme

import (
	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/pkg/persist"
)

// Preference is a theme choice. System defers to the environment.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// Environment supplies the ambient color preference. It is injected rather
// than read from globals so theme resolution stays deterministic under test.
type Environment interface {
	// Preference reports the environment's concrete preference, Light or Dark.
	Preference() Preference
	// OnPreferenceChange registers fn for preference changes and returns a
	// function cancelling the registration.
	OnPreferenceChange(fn func(Preference)) (stop func())
}

// State is the theme store's shape. Theme is the persisted user choice;
// Resolved is always concrete (Light or Dark), derived at hydration and on
// environment changes.
type State struct {
	Theme    Preference `json:"theme"`
	Resolved Preference `json:"-"`

	Set func(Preference) `json:"-"`
}

// Theme bundles the store with its persistence extension and the environment
// subscription keeping Resolved current.
type Theme struct {
	Store   *store.Store[State]
	Persist *persist.Persistor[State]

	stop func()
}

// New builds a persisted theme store defaulting to System. Additional persist
// options (skip hydration, error hooks) pass through.
func New(env Environment, backend persist.Backend, opts ...persist.Option[State]) *Theme {
	persistOpts := append([]persist.Option[State]{
		persist.WithPartialize[State](func(s State) any {
			return map[string]any{"theme": s.Theme}
		}),
		persist.WithOnHydrate[State](func(s *State, err error) {
			if s != nil {
				s.Resolved = resolve(env, s.Theme)
			}
		}),
	}, opts...)
	p := persist.New[State]("theme", backend, persistOpts...)

	init := store.Combine(State{
		Theme:    System,
		Resolved: resolve(env, System),
	}, func(set store.SetFunc[State], get store.GetFunc[State], api *store.Store[State]) State {
		return State{
			Set: func(pref Preference) {
				set(store.SwapFunc(func(cur State) State {
					cur.Theme = pref
					cur.Resolved = resolve(env, pref)
					return cur
				}).Labeled("theme/set"))
			},
		}
	})

	st := store.New(store.Compose(init, p.Middleware()))

	stop := func() {}
	if env != nil {
		stop = env.OnPreferenceChange(func(pref Preference) {
			if st.Get().Theme != System {
				return
			}
			st.Set(store.SwapFunc(func(cur State) State {
				cur.Resolved = pref
				return cur
			}).Labeled("theme/environment-change"))
		})
	}

	return &Theme{Store: st, Persist: p, stop: stop}
}

// Close cancels the environment subscription.
func (t *Theme) Close() {
	if t != nil && t.stop != nil {
		t.stop()
	}
}

func resolve(env Environment, pref Preference) Preference {
	if pref != System && pref != "" {
		return pref
	}
	if env == nil {
		return Light
	}
	if env.Preference() == Dark {
		return Dark
	}
	return Light
}

package theme_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-store/pkg/persist"
	"github.com/goliatone/go-store/pkg/theme"
)

// fakeEnv is a controllable Environment standing in for an OS or browser
// media query.
type fakeEnv struct {
	current   theme.Preference
	listeners []func(theme.Preference)
	stopped   int
}

func (e *fakeEnv) Preference() theme.Preference { return e.current }

func (e *fakeEnv) OnPreferenceChange(fn func(theme.Preference)) func() {
	e.listeners = append(e.listeners, fn)
	return func() { e.stopped++ }
}

func (e *fakeEnv) flip(pref theme.Preference) {
	e.current = pref
	for _, fn := range e.listeners {
		fn(pref)
	}
}

func seedRecord(t *testing.T, backend persist.Backend, pref theme.Preference) {
	t.Helper()
	record, _ := json.Marshal(persist.Record{
		Name:  "theme",
		State: json.RawMessage(`{"theme":"` + string(pref) + `"}`),
	})
	if err := backend.Set(context.Background(), "theme", record); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestDefaultsToSystemResolvedFromEnvironment(t *testing.T) {
	env := &fakeEnv{current: theme.Dark}
	th := theme.New(env, persist.NewMemoryBackend())
	defer th.Close()

	got := th.Store.Get()
	if got.Theme != theme.System {
		t.Fatalf("expected the system default, got %q", got.Theme)
	}
	if got.Resolved != theme.Dark {
		t.Fatalf("expected resolution against the environment, got %q", got.Resolved)
	}
}

func TestHydrationResolvesSystemPreference(t *testing.T) {
	backend := persist.NewMemoryBackend()
	seedRecord(t, backend, theme.System)

	env := &fakeEnv{current: theme.Dark}
	th := theme.New(env, backend)
	defer th.Close()

	got := th.Store.Get()
	if got.Theme != theme.System || got.Resolved != theme.Dark {
		t.Fatalf("expected system/dark after hydration, got %q/%q", got.Theme, got.Resolved)
	}
	if !th.Persist.Hydrated() {
		t.Fatalf("expected the theme store to report hydrated")
	}
}

func TestHydratedConcreteChoiceIgnoresEnvironment(t *testing.T) {
	backend := persist.NewMemoryBackend()
	seedRecord(t, backend, theme.Light)

	env := &fakeEnv{current: theme.Dark}
	th := theme.New(env, backend)
	defer th.Close()

	if got := th.Store.Get(); got.Resolved != theme.Light {
		t.Fatalf("expected an explicit choice to win over the environment, got %q", got.Resolved)
	}
}

func TestEnvironmentChangeTracksOnlySystem(t *testing.T) {
	env := &fakeEnv{current: theme.Light}
	th := theme.New(env, persist.NewMemoryBackend())
	defer th.Close()

	env.flip(theme.Dark)
	if got := th.Store.Get(); got.Resolved != theme.Dark {
		t.Fatalf("expected system theme to follow the environment, got %q", got.Resolved)
	}

	th.Store.Get().Set(theme.Light)
	env.flip(theme.Light)
	env.flip(theme.Dark)
	if got := th.Store.Get(); got.Resolved != theme.Light {
		t.Fatalf("expected an explicit choice to stop tracking the environment, got %q", got.Resolved)
	}
}

func TestExplicitSetPersistsOnlyTheChoice(t *testing.T) {
	backend := persist.NewMemoryBackend()
	env := &fakeEnv{current: theme.Light}
	th := theme.New(env, backend)
	defer th.Close()

	th.Store.Get().Set(theme.Dark)

	data, ok, err := backend.Get(context.Background(), "theme")
	if err != nil || !ok {
		t.Fatalf("expected a persisted record, ok=%v err=%v", ok, err)
	}
	var record persist.Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	var state map[string]any
	if err := json.Unmarshal(record.State, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state["theme"] != "dark" {
		t.Fatalf("expected the persisted choice, got %v", state)
	}
	if _, ok := state["resolved"]; ok {
		t.Fatalf("expected the derived value to stay out of storage, got %v", state)
	}
}

func TestCloseStopsTheEnvironmentSubscription(t *testing.T) {
	env := &fakeEnv{current: theme.Light}
	th := theme.New(env, persist.NewMemoryBackend())

	th.Close()
	if env.stopped != 1 {
		t.Fatalf("expected close to cancel the subscription, got %d", env.stopped)
	}
}

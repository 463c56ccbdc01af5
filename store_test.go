package store

import (
	"reflect"
	"strings"
	"testing"
)

type profile struct {
	Name string
}

type appState struct {
	Count int
	Tags  []string
	Owner *profile
}

func newAppStore() *Store[appState] {
	return New(func(set SetFunc[appState], get GetFunc[appState], api *Store[appState]) appState {
		return appState{Count: 1, Tags: []string{"a", "b"}, Owner: &profile{Name: "ada"}}
	})
}

func sameBacking(t *testing.T, a, b any) {
	t.Helper()
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Pointer() != bv.Pointer() {
		t.Fatalf("expected %v and %v to share backing storage", a, b)
	}
}

func TestMergeKeepsUntouchedFieldIdentity(t *testing.T) {
	s := newAppStore()
	before := s.Get()

	s.Set(Merge(appState{Count: 5}))

	after := s.Get()
	if after.Count != 5 {
		t.Fatalf("expected count 5, got %d", after.Count)
	}
	sameBacking(t, after.Tags, before.Tags)
	if after.Owner != before.Owner {
		t.Fatalf("expected owner pointer to be preserved")
	}
}

func TestMergeFuncComputesPartialFromCurrent(t *testing.T) {
	s := newAppStore()

	s.Set(MergeFunc(func(cur appState) appState {
		return appState{Count: cur.Count + 10}
	}))

	if got := s.Get().Count; got != 11 {
		t.Fatalf("expected count 11, got %d", got)
	}
	if got := s.Get().Owner; got == nil || got.Name != "ada" {
		t.Fatalf("expected owner preserved, got %+v", got)
	}
}

func TestSwapReplacesWholeState(t *testing.T) {
	s := newAppStore()

	s.Set(Swap(appState{Count: 9}))

	got := s.Get()
	if got.Count != 9 || got.Tags != nil || got.Owner != nil {
		t.Fatalf("expected bare replacement, got %+v", got)
	}
}

func TestNoOpUpdateStillNotifies(t *testing.T) {
	s := newAppStore()
	calls := 0
	s.Subscribe(func(state, prev appState) {
		calls++
		if state.Count != prev.Count {
			t.Fatalf("expected unchanged state, got %d -> %d", prev.Count, state.Count)
		}
	})

	s.Set(Update[appState]{})

	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}

func TestSetBeforeInitializerReturnsPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "before the initializer") {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()

	New(func(set SetFunc[int], get GetFunc[int], api *Store[int]) int {
		api.Set(Swap(1))
		return 0
	})
}

func TestReentrantSetFromListener(t *testing.T) {
	s := New(func(set SetFunc[int], get GetFunc[int], api *Store[int]) int {
		return 0
	})

	var seen [][2]int
	s.Subscribe(func(state, prev int) {
		seen = append(seen, [2]int{prev, state})
		if state == 1 {
			s.Set(Swap(2))
		}
	})

	s.Set(Swap(1))

	if s.Get() != 2 {
		t.Fatalf("expected final state 2, got %d", s.Get())
	}
	want := [][2]int{{0, 1}, {1, 2}}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("expected transitions %v, got %v", want, seen)
	}
}

func TestLoggerReceivesTransitionEvents(t *testing.T) {
	var events []TransitionEvent
	s := New(func(set SetFunc[int], get GetFunc[int], api *Store[int]) int {
		return 0
	}, WithLogger(LoggerFunc(func(event TransitionEvent) {
		events = append(events, event)
	})))
	s.Subscribe(func(int, int) {})

	s.Set(Swap(7).Labeled("bump"))

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Label != "bump" || events[0].Subscribers != 1 {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestNilInitializerYieldsZeroState(t *testing.T) {
	s := New[appState](nil)
	if got := s.Get(); got.Count != 0 || got.Tags != nil {
		t.Fatalf("expected zero state, got %+v", got)
	}
}

package persist

import (
	"context"
	"testing"
)

func TestMemoryBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	if _, ok, err := backend.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected a clean miss, ok=%v err=%v", ok, err)
	}

	if err := backend.Set(ctx, "prefs", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := backend.Get(ctx, "prefs")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data: %s", data)
	}

	// Mutating the returned slice must not leak into the stored copy.
	data[0] = 'X'
	again, _, _ := backend.Get(ctx, "prefs")
	if string(again) != `{"a":1}` {
		t.Fatalf("expected stored data to be isolated, got %s", again)
	}

	if err := backend.Remove(ctx, "prefs"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := backend.Get(ctx, "prefs"); ok {
		t.Fatalf("expected the record to be gone")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := FileBackend{Dir: t.TempDir()}

	if _, ok, err := backend.Get(ctx, "prefs"); ok || err != nil {
		t.Fatalf("expected a clean miss, ok=%v err=%v", ok, err)
	}

	if err := backend.Set(ctx, "prefs", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := backend.Get(ctx, "prefs")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data: %s", data)
	}

	if err := backend.Remove(ctx, "prefs"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an absent record is not an error.
	if err := backend.Remove(ctx, "prefs"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestFileBackendRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	backend := FileBackend{Dir: t.TempDir()}

	for _, name := range []string{"", "../escape", `a\b`} {
		if err := backend.Set(ctx, name, nil); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}

	empty := FileBackend{}
	if _, _, err := empty.Get(ctx, "prefs"); err == nil {
		t.Fatalf("expected an error without a directory")
	}
}

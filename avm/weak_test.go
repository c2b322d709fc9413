package avm

import "testing"

func TestWeakHandleResolvesWhileLive(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)
	a.AddRoot(obj)

	wh := a.NewWeakHandle(obj)
	got, ok := wh.Resolve()
	if !ok || got != Object(obj) {
		t.Error("weak handle should resolve to the live referent")
	}
	if !wh.IsAlive() {
		t.Error("IsAlive should report true for a live referent")
	}

	a.Collect()
	if _, ok := wh.Resolve(); !ok {
		t.Error("rooted referent should survive collection")
	}
}

func TestWeakHandleDoesNotKeepAlive(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)
	wh := a.NewWeakHandle(obj)

	stats := a.Collect()
	if stats.WeakCleared != 1 {
		t.Errorf("WeakCleared = %d, want 1", stats.WeakCleared)
	}
	if _, ok := wh.Resolve(); ok {
		t.Error("handle should resolve to absent after collection")
	}
	if wh.IsAlive() {
		t.Error("IsAlive should report false after collection")
	}
}

func TestWeakHandleFinalizer(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)
	wh := a.NewWeakHandle(obj)

	calls := 0
	var seen Object
	wh.SetFinalizer(func(o Object) {
		calls++
		seen = o
	})

	a.Collect()
	if calls != 1 {
		t.Fatalf("finalizer ran %d times, want 1", calls)
	}
	if seen != Object(obj) {
		t.Error("finalizer should receive the former referent")
	}

	// A later cycle must not re-finalize an already-cleared handle.
	a.Collect()
	if calls != 1 {
		t.Errorf("finalizer ran %d times after second cycle, want 1", calls)
	}
}

func TestDroppedWeakHandleNotCleared(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)
	wh := a.NewWeakHandle(obj)
	a.DropWeakHandle(wh)

	a.Collect()

	// The arena no longer manages the handle, so it still holds its
	// (now stale) referent. Callers drop handles only when the referent's
	// lifetime is no longer interesting.
	if !wh.IsAlive() {
		t.Error("dropped handle is no longer cleared by the arena")
	}
}

func TestWeakHandleIDsDistinct(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)
	w1 := a.NewWeakHandle(obj)
	w2 := a.NewWeakHandle(obj)
	if w1.ID() == w2.ID() {
		t.Error("each handle should get a distinct ID")
	}
}

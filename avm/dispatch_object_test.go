package avm

import "testing"

// ---------------------------------------------------------------------------
// DispatchObject rejection tests
// ---------------------------------------------------------------------------

func TestDispatchObjectConstructRejected(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	_, err := holder.Construct(a, nil)
	if !IsConstructionRejected(err) {
		t.Fatalf("construct should be rejected, got %v", err)
	}
	want := "Cannot construct internal event dispatcher structures."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestDispatchObjectCoercionRejected(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	v, err := holder.CoercePrimitive(a)
	if !IsCoercionRejected(err) {
		t.Fatalf("coercion should be rejected, got %v", err)
	}
	want := "Cannot subclass internal event dispatcher structures."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if v != Undefined {
		t.Error("rejected coercion should yield Undefined")
	}
}

// ---------------------------------------------------------------------------
// Borrow discipline tests
// ---------------------------------------------------------------------------

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		if msg, ok := r.(string); !ok || msg != want {
			t.Fatalf("panic = %v, want %q", r, want)
		}
	}()
	fn()
}

func TestSharedBorrowsCoexist(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	g1, ok := holder.AsDispatchList()
	if !ok {
		t.Fatal("holder should expose its dispatch list")
	}
	g2, _ := holder.AsDispatchList()
	if g1.List() != g2.List() {
		t.Error("both guards should view the same list")
	}
	g1.Release()
	g2.Release()
}

func TestMutBorrowWhileSharedPanics(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	guard, _ := holder.AsDispatchList()
	defer guard.Release()

	mustPanic(t, "avm: dispatch list already borrowed", func() {
		holder.AsDispatchListMut(a)
	})
}

func TestSharedBorrowWhileMutPanics(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	guard, _ := holder.AsDispatchListMut(a)
	defer guard.Release()

	mustPanic(t, "avm: dispatch list already mutably borrowed", func() {
		holder.AsDispatchList()
	})
}

func TestMutationOutsideMutBorrowPanics(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)
	listener := a.NewFunction("f", func(*Arena, *Event) error { return nil })

	guard, _ := holder.AsDispatchList()
	defer guard.Release()

	mustPanic(t, "avm: dispatch list mutated outside a mutable borrow", func() {
		guard.List().AddListener("click", listener, false, 0, false)
	})
}

func TestGuardDoubleReleasePanics(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	guard, _ := holder.AsDispatchList()
	guard.Release()

	mustPanic(t, "avm: dispatch list guard released twice", func() {
		guard.Release()
	})
}

func TestBorrowFreeAfterRelease(t *testing.T) {
	a := NewArena()
	holder := emptyDispatchList(a)

	guard, _ := holder.AsDispatchListMut(a)
	guard.Release()

	// A fresh borrow of either kind succeeds once the previous one ended.
	g2, _ := holder.AsDispatchListMut(a)
	g2.Release()
	g3, _ := holder.AsDispatchList()
	g3.Release()
}

package avm

import "sync"

// ---------------------------------------------------------------------------
// WeakHandle: a non-owning reference to an arena object
// ---------------------------------------------------------------------------

// WeakHandle references an object without keeping it alive: the collector
// never traces through it, and once the referent is swept the handle
// resolves to absent, never to a dangling object. Optionally supports a
// finalizer callback invoked when the referent is collected.
type WeakHandle struct {
	id        uint32
	mu        sync.RWMutex
	tgt       Object
	finalizer func(Object)
}

// NewWeakHandle creates a weak handle to o, registered with the arena so
// collection cycles can clear it.
func (a *Arena) NewWeakHandle(o Object) *WeakHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextWeakID++
	wh := &WeakHandle{id: a.nextWeakID, tgt: o}
	a.weakRefs[wh.id] = wh
	return wh
}

// DropWeakHandle unregisters wh from the arena. Resolving a dropped handle
// still works until its referent is collected, but the arena no longer
// clears it.
func (a *Arena) DropWeakHandle(wh *WeakHandle) {
	a.mu.Lock()
	delete(a.weakRefs, wh.id)
	a.mu.Unlock()
}

// ID returns the handle's unique identifier.
func (wh *WeakHandle) ID() uint32 {
	return wh.id
}

// Resolve returns the live referent, or false once it has been collected.
func (wh *WeakHandle) Resolve() (Object, bool) {
	wh.mu.RLock()
	defer wh.mu.RUnlock()
	if wh.tgt == nil {
		return nil, false
	}
	return wh.tgt, true
}

// IsAlive reports whether the referent has not been collected.
func (wh *WeakHandle) IsAlive() bool {
	wh.mu.RLock()
	defer wh.mu.RUnlock()
	return wh.tgt != nil
}

// SetFinalizer sets a callback invoked once when the referent is collected.
// The callback receives the dead handle's former referent for informational
// purposes only; the object is already gone from the arena.
func (wh *WeakHandle) SetFinalizer(fn func(Object)) {
	wh.mu.Lock()
	wh.finalizer = fn
	wh.mu.Unlock()
}

// Finalizer returns the finalization callback, if any.
func (wh *WeakHandle) Finalizer() func(Object) {
	wh.mu.RLock()
	defer wh.mu.RUnlock()
	return wh.finalizer
}

// target returns the referent without liveness bookkeeping. Collector use.
func (wh *WeakHandle) target() Object {
	wh.mu.RLock()
	defer wh.mu.RUnlock()
	return wh.tgt
}

// clear severs the handle and returns the old referent. Collector use.
func (wh *WeakHandle) clear() Object {
	wh.mu.Lock()
	defer wh.mu.Unlock()
	old := wh.tgt
	wh.tgt = nil
	return old
}

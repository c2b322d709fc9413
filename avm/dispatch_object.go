package avm

import "unsafe"

// ---------------------------------------------------------------------------
// DispatchObject: the internal dispatch-list holder kind
// ---------------------------------------------------------------------------

// DispatchObject is the internal representation of the dispatch lists
// generated by event-target machinery. It is not intended to be constructed,
// subclassed, or otherwise interacted with by scripted code; it exists
// solely to hold the event handlers attached to other objects, and is only
// ever reached through a private property on its owning event target.
//
// A dedicated kind (rather than folding listener storage into other
// representations) keeps bare event targets able to store their handlers,
// keeps the internal list out of the general Value comparison logic, and
// keeps unrelated kinds, such as display-tree-backed objects, free of
// dispatch fields they do not need.
type DispatchObject struct {
	base ScriptObjectData

	// dispatch is the list this object holds, guarded by cell.
	dispatch DispatchList
	cell     borrowCell
}

// emptyDispatchList allocates a dispatch-list holder with no registrations.
// Deliberately unexported: only the event-target machinery creates these.
func emptyDispatchList(a *Arena) *DispatchObject {
	o := &DispatchObject{
		base:     NewScriptObjectData(a.Classes().dispatchList),
		dispatch: DispatchList{buckets: make(map[string][]Registration)},
	}
	o.dispatch.cell = &o.cell
	a.allocate(o)
	return o
}

// Base returns the shared header.
func (o *DispatchObject) Base() *ScriptObjectData {
	return &o.base
}

// Ptr returns the heap identity of the object.
func (o *DispatchObject) Ptr() uintptr {
	return uintptr(unsafe.Pointer(&o.base))
}

// Trace visits the header's interior values and every registered listener.
func (o *DispatchObject) Trace(visit func(Value)) {
	o.base.trace(visit)
	o.dispatch.trace(visit)
}

// Construct always fails: dispatch-list holders are internal.
func (o *DispatchObject) Construct(*Arena, []Value) (Object, error) {
	return nil, errNotConstructible()
}

// CoercePrimitive always fails. Primitive coercion is the path scripted
// subclassing takes, so this is a distinct reject rather than a delegation
// to the default coercion.
func (o *DispatchObject) CoercePrimitive(*Arena) (Value, error) {
	return Undefined, errNotSubclassable()
}

// AsDispatchList borrows this object's list of event handlers for reading.
func (o *DispatchObject) AsDispatchList() (*DispatchGuard, bool) {
	o.cell.borrowShared()
	return &DispatchGuard{list: &o.dispatch, cell: &o.cell}, true
}

// AsDispatchListMut borrows this object's list of event handlers for
// mutation. The arena's write barrier records the holder as dirty before
// the borrow is handed out, so the collector re-scans it. The borrow counts
// as a mutator operation until released: collection cycles wait for it.
func (o *DispatchObject) AsDispatchListMut(a *Arena) (*DispatchGuard, bool) {
	a.WriteBarrier(o)
	o.cell.borrowMut()
	a.beginOp()
	return &DispatchGuard{list: &o.dispatch, cell: &o.cell, mutable: true, arena: a}, true
}

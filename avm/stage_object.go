package avm

import "unsafe"

// ---------------------------------------------------------------------------
// StageObject: display-tree-backed kind
// ---------------------------------------------------------------------------

// StageObject is the runtime representation of a display-tree node. It
// reuses the exact layering strategy of every other kind: the shared header
// first, then kind-specific payload. The payload here is the parent link the
// event dispatcher walks to build an event's ancestor chain.
//
// The parent link is a weak handle: a child must never keep its parent alive
// on its own, and a detached subtree must not resurrect an already-collected
// ancestor.
type StageObject struct {
	base   ScriptObjectData
	parent *WeakHandle
}

// NewStageObject allocates a display-backed object of the given class with
// no parent.
func (a *Arena) NewStageObject(class *Class) *StageObject {
	o := &StageObject{base: NewScriptObjectData(class)}
	a.allocate(o)
	return o
}

// SetParent links the object under the given parent, or detaches it when
// parent is nil. Routed through the write barrier like every interior
// mutation.
func (a *Arena) SetParent(o *StageObject, parent Object) {
	a.WriteBarrier(o)
	if o.parent != nil {
		a.DropWeakHandle(o.parent)
		o.parent = nil
	}
	if parent == nil {
		return
	}
	o.parent = a.NewWeakHandle(parent)
}

// Parent resolves the parent link. Returns false if the object is detached
// or the parent has been collected.
func (o *StageObject) Parent() (Object, bool) {
	if o.parent == nil {
		return nil, false
	}
	return o.parent.Resolve()
}

// Base returns the shared header.
func (o *StageObject) Base() *ScriptObjectData {
	return &o.base
}

// Ptr returns the heap identity of the object.
func (o *StageObject) Ptr() uintptr {
	return uintptr(unsafe.Pointer(&o.base))
}

// Trace visits the header's interior values. The parent link is weak and is
// deliberately not traced.
func (o *StageObject) Trace(visit func(Value)) {
	o.base.trace(visit)
}

// Construct creates a detached instance of the same class.
func (o *StageObject) Construct(a *Arena, args []Value) (Object, error) {
	return defaultConstruct(a, o, args)
}

// CoercePrimitive returns the class-tagged string form.
func (o *StageObject) CoercePrimitive(a *Arena) (Value, error) {
	return defaultCoercePrimitive(a, o)
}

// AsDispatchList returns false: stage objects keep their handlers on an
// attached dispatch-list holder, not inline.
func (o *StageObject) AsDispatchList() (*DispatchGuard, bool) {
	return nil, false
}

// AsDispatchListMut returns false; see AsDispatchList.
func (o *StageObject) AsDispatchListMut(*Arena) (*DispatchGuard, bool) {
	return nil, false
}

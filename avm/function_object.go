package avm

import (
	"fmt"
	"unsafe"
)

// ---------------------------------------------------------------------------
// FunctionObject: callable kind wrapping a host callback
// ---------------------------------------------------------------------------

// ListenerFunc is the host-side shape of an event callback. An error return
// is isolated per listener: it is reported without aborting the siblings in
// the same phase.
type ListenerFunc func(a *Arena, e *Event) error

// FunctionObject wraps a host callback so it can be stored in property
// tables and registered as an event listener. Because it is a heap object,
// registrations compare it by handle identity, which is what makes listener
// add/remove idempotent. The bytecode interpreter supplies its own callable
// kind for scripted functions; both share this layering.
type FunctionObject struct {
	base ScriptObjectData
	name string
	fn   ListenerFunc
}

// NewFunction allocates a callable object around the given host callback.
func (a *Arena) NewFunction(name string, fn ListenerFunc) *FunctionObject {
	o := &FunctionObject{
		base: NewScriptObjectData(a.Classes().Function),
		name: name,
		fn:   fn,
	}
	a.allocate(o)
	return o
}

// Name returns the function's diagnostic name.
func (o *FunctionObject) Name() string {
	return o.name
}

// HandleEvent invokes the wrapped callback.
func (o *FunctionObject) HandleEvent(a *Arena, e *Event) error {
	return o.fn(a, e)
}

// Base returns the shared header.
func (o *FunctionObject) Base() *ScriptObjectData {
	return &o.base
}

// Ptr returns the heap identity of the object.
func (o *FunctionObject) Ptr() uintptr {
	return uintptr(unsafe.Pointer(&o.base))
}

// Trace visits the header's interior values. The wrapped callback is host
// code and holds no arena-owned values of its own.
func (o *FunctionObject) Trace(visit func(Value)) {
	o.base.trace(visit)
}

// Construct fails: host functions are not scripted constructors.
func (o *FunctionObject) Construct(*Arena, []Value) (Object, error) {
	return nil, &ScriptError{
		Kind:    ErrKindConstructionRejected,
		Message: fmt.Sprintf("Function %s is not a constructor.", o.name),
	}
}

// CoercePrimitive returns the function's string form.
func (o *FunctionObject) CoercePrimitive(a *Arena) (Value, error) {
	return a.NewString(fmt.Sprintf("function %s() {}", o.name)), nil
}

// AsDispatchList returns false: functions hold no dispatch list.
func (o *FunctionObject) AsDispatchList() (*DispatchGuard, bool) {
	return nil, false
}

// AsDispatchListMut returns false: functions hold no dispatch list.
func (o *FunctionObject) AsDispatchListMut(*Arena) (*DispatchGuard, bool) {
	return nil, false
}

package avm

import (
	"fmt"
	"unsafe"
)

// ---------------------------------------------------------------------------
// Object: the uniform polymorphic handle
// ---------------------------------------------------------------------------

// Object is an opaque handle to a heap-allocated object of some concrete
// kind. Handles are copyable and compare equal iff they refer to the same
// heap cell. Generic code operates on any kind through this interface; kinds
// that hold capability-specific state (such as a dispatch list) surface it
// through the As* narrowing methods, which return false on every other kind.
type Object interface {
	// Base returns the shared header. It is always valid for any allocated
	// handle of any kind: every kind stores the header at offset 0 of its
	// payload (see layout.go).
	Base() *ScriptObjectData

	// Ptr returns the heap identity of the object: the address of its
	// shared header. Two handles are the same object iff their Ptr is equal.
	Ptr() uintptr

	// Trace visits every arena-owned Value reachable from the object's
	// interior. Called by the collector during the mark phase.
	Trace(visit func(Value))

	// Construct creates a new instance as if scripted code invoked the
	// object as a constructor. Internal-only kinds return a
	// construction-rejected script error.
	Construct(a *Arena, args []Value) (Object, error)

	// CoercePrimitive converts the object to a primitive Value. Internal
	// kinds reject coercion; the rejection doubles as the
	// subclass-prevention hook.
	CoercePrimitive(a *Arena) (Value, error)

	// AsDispatchList borrows the object's dispatch list for reading.
	// Present only on kinds that actually hold one; all other kinds
	// return false. The caller must Release the guard.
	AsDispatchList() (*DispatchGuard, bool)

	// AsDispatchListMut borrows the object's dispatch list for mutation,
	// routing through the arena's write barrier. The caller must Release
	// the guard.
	AsDispatchListMut(a *Arena) (*DispatchGuard, bool)
}

// ---------------------------------------------------------------------------
// ScriptObjectData: the shared header embedded in every kind
// ---------------------------------------------------------------------------

// ScriptObjectData holds the fields every object kind must expose at the
// same position: class identity, the object's own property table, and the
// prototype link. Each concrete kind embeds it as its first field so a
// handle of any kind can be reinterpreted as a header pointer without
// copying (the layout is asserted at compile time in layout.go).
type ScriptObjectData struct {
	class      *Class
	properties map[string]Value
	proto      Value

	// self is the full handle this header belongs to, set once by the
	// arena at allocation. It lets a NaN-boxed header pointer round-trip
	// back to the concrete kind.
	self Object
}

// NewScriptObjectData creates a header for the given class with an empty
// property table and no prototype.
func NewScriptObjectData(class *Class) ScriptObjectData {
	return ScriptObjectData{
		class:      class,
		properties: make(map[string]Value),
		proto:      Null,
	}
}

// Class returns the object's class identity.
func (d *ScriptObjectData) Class() *Class {
	return d.class
}

// Proto returns the prototype link, or Null if unset.
func (d *ScriptObjectData) Proto() Value {
	return d.proto
}

// Property returns the named own property and whether it exists.
func (d *ScriptObjectData) Property(name string) (Value, bool) {
	v, ok := d.properties[name]
	return v, ok
}

// ForEachProperty calls fn for each own property of the object.
func (d *ScriptObjectData) ForEachProperty(fn func(name string, v Value)) {
	for name, v := range d.properties {
		fn(name, v)
	}
}

// NumProperties returns the number of own properties.
func (d *ScriptObjectData) NumProperties() int {
	return len(d.properties)
}

// setProperty, deleteProperty, and setProto are deliberately unexported:
// interior mutation must go through the arena's write-barrier path.
func (d *ScriptObjectData) setProperty(name string, v Value) {
	d.properties[name] = v
}

func (d *ScriptObjectData) deleteProperty(name string) {
	delete(d.properties, name)
}

func (d *ScriptObjectData) setProto(v Value) {
	d.proto = v
}

// trace visits the header's interior values: the prototype link and every
// own property.
func (d *ScriptObjectData) trace(visit func(Value)) {
	if d.proto.IsObject() {
		visit(d.proto)
	}
	for _, v := range d.properties {
		visit(v)
	}
}

// ---------------------------------------------------------------------------
// Default capability behavior shared across kinds
// ---------------------------------------------------------------------------

// defaultConstruct implements the construct path for kinds that do not
// special-case it: sealed classes reject, everything else gets a fresh
// plain instance with the receiver as prototype.
func defaultConstruct(a *Arena, receiver Object, _ []Value) (Object, error) {
	class := receiver.Base().Class()
	if class.Sealed {
		return nil, &ScriptError{
			Kind:    ErrKindConstructionRejected,
			Message: fmt.Sprintf("Cannot construct instances of %s.", class.Name),
		}
	}
	instance := a.NewScriptObject(class)
	a.SetProto(instance, FromObject(receiver))
	return instance, nil
}

// defaultCoercePrimitive implements primitive coercion for kinds that do not
// special-case it: the class-tagged string form.
func defaultCoercePrimitive(a *Arena, receiver Object) (Value, error) {
	return a.NewString(fmt.Sprintf("[object %s]", receiver.Base().Class().Name)), nil
}

// ---------------------------------------------------------------------------
// ScriptObject: the plain scripted object kind
// ---------------------------------------------------------------------------

// ScriptObject is the default representation of scripted objects: nothing
// beyond the shared header.
type ScriptObject struct {
	base ScriptObjectData
}

// NewScriptObject allocates a plain scripted object of the given class.
func (a *Arena) NewScriptObject(class *Class) *ScriptObject {
	o := &ScriptObject{base: NewScriptObjectData(class)}
	a.allocate(o)
	return o
}

// Base returns the shared header.
func (o *ScriptObject) Base() *ScriptObjectData {
	return &o.base
}

// Ptr returns the heap identity of the object.
func (o *ScriptObject) Ptr() uintptr {
	return uintptr(unsafe.Pointer(&o.base))
}

// Trace visits the object's interior values.
func (o *ScriptObject) Trace(visit func(Value)) {
	o.base.trace(visit)
}

// Construct creates a new instance with this object as prototype.
func (o *ScriptObject) Construct(a *Arena, args []Value) (Object, error) {
	return defaultConstruct(a, o, args)
}

// CoercePrimitive returns the class-tagged string form.
func (o *ScriptObject) CoercePrimitive(a *Arena) (Value, error) {
	return defaultCoercePrimitive(a, o)
}

// AsDispatchList returns false: plain objects hold no dispatch list.
func (o *ScriptObject) AsDispatchList() (*DispatchGuard, bool) {
	return nil, false
}

// AsDispatchListMut returns false: plain objects hold no dispatch list.
func (o *ScriptObject) AsDispatchListMut(*Arena) (*DispatchGuard, bool) {
	return nil, false
}

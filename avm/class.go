package avm

// ---------------------------------------------------------------------------
// Class: scripted class identity
// ---------------------------------------------------------------------------

// Class is the class identity carried by every object header. The scripting
// language's full class semantics (trait resolution, method tables) live in
// the interpreter layer; the runtime only needs identity, the inheritance
// chain, and the sealed flag that guards internal-only kinds.
type Class struct {
	Name       string // Qualified class name, e.g. "glint.events.EventDispatcher"
	Superclass *Class // Parent class (nil for Object)

	// Sealed classes cannot be constructed or subclassed by scripted code.
	// Used for internal bookkeeping kinds such as the dispatch-list holder.
	Sealed bool
}

// NewClass creates a class with the given name and superclass.
func NewClass(name string, super *Class) *Class {
	return &Class{Name: name, Superclass: super}
}

// IsSubclassOf returns true if c is a subclass of other (or is the same class).
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.Superclass {
		if current == other {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// CoreClasses: well-known classes for bootstrapping and fast-path checks
// ---------------------------------------------------------------------------

// CoreClasses holds the classes every arena is born with.
type CoreClasses struct {
	Object          *Class
	Function        *Class
	EventDispatcher *Class
	Stage           *Class

	// dispatchList is the sealed class of the internal dispatch-list holder.
	// It is deliberately unexported: scripted code never sees it.
	dispatchList *Class
}

func newCoreClasses() *CoreClasses {
	object := NewClass("Object", nil)
	dispatcher := NewClass("EventDispatcher", object)
	dl := NewClass("DispatchList", object)
	dl.Sealed = true
	return &CoreClasses{
		Object:          object,
		Function:        NewClass("Function", object),
		EventDispatcher: dispatcher,
		Stage:           NewClass("Stage", dispatcher),
		dispatchList:    dl,
	}
}

package avm

// ---------------------------------------------------------------------------
// ScriptError: recoverable errors surfaced to scripted code
// ---------------------------------------------------------------------------

// ScriptErrorKind classifies recoverable script-level errors.
type ScriptErrorKind int

const (
	// ErrKindGeneric is an unclassified script-level error.
	ErrKindGeneric ScriptErrorKind = iota
	// ErrKindConstructionRejected is raised when scripted code attempts to
	// construct an internal-only or sealed kind.
	ErrKindConstructionRejected
	// ErrKindCoercionRejected is raised when a kind refuses primitive
	// coercion; it doubles as the subclass-prevention hook.
	ErrKindCoercionRejected
)

// ScriptError is a recoverable error delivered to the scripted-call boundary.
// It is never fatal to the runtime; the interpreter layer converts it into a
// catchable exception object.
type ScriptError struct {
	Kind    ScriptErrorKind
	Message string
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return e.Message
}

// NewScriptError creates a generic script-level error.
func NewScriptError(message string) *ScriptError {
	return &ScriptError{Kind: ErrKindGeneric, Message: message}
}

// errNotConstructible returns the construction-rejected error for internal
// event dispatcher structures. The message text is part of the scripted
// compatibility surface and must not change.
func errNotConstructible() *ScriptError {
	return &ScriptError{
		Kind:    ErrKindConstructionRejected,
		Message: "Cannot construct internal event dispatcher structures.",
	}
}

// errNotSubclassable returns the coercion-rejected error for internal event
// dispatcher structures. Primitive coercion is the path scripted subclassing
// takes, so rejecting it here prevents subclassing as well.
func errNotSubclassable() *ScriptError {
	return &ScriptError{
		Kind:    ErrKindCoercionRejected,
		Message: "Cannot subclass internal event dispatcher structures.",
	}
}

// IsConstructionRejected reports whether err is a construction-rejected
// script error.
func IsConstructionRejected(err error) bool {
	se, ok := err.(*ScriptError)
	return ok && se.Kind == ErrKindConstructionRejected
}

// IsCoercionRejected reports whether err is a coercion-rejected script error.
func IsCoercionRejected(err error) bool {
	se, ok := err.(*ScriptError)
	return ok && se.Kind == ErrKindCoercionRejected
}

package avm

// ---------------------------------------------------------------------------
// Event: one propagating event instance
// ---------------------------------------------------------------------------

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	PhaseNone      EventPhase = 0
	PhaseCapturing EventPhase = 1
	PhaseAtTarget  EventPhase = 2
	PhaseBubbling  EventPhase = 3
)

// String returns the phase name.
func (p EventPhase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseAtTarget:
		return "at-target"
	case PhaseBubbling:
		return "bubbling"
	default:
		return "none"
	}
}

// Event is one event instance travelling through an ancestor chain. It is
// created fresh per dispatch; Target and CurrentTarget are filled in by the
// dispatcher as propagation proceeds.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool

	Target        Object
	CurrentTarget Object
	Phase         EventPhase

	stopped          bool
	immediateStopped bool
	defaultPrevented bool

	// callbackErrs collects per-listener errors. Each listener's error is
	// isolated: it is logged and recorded here without aborting siblings.
	callbackErrs []error
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string, bubbles, cancelable bool) *Event {
	return &Event{Type: eventType, Bubbles: bubbles, Cancelable: cancelable}
}

// StopPropagation halts traversal to further objects in the chain after the
// current object's listeners finish. Listeners already scheduled on the
// current object still fire.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// StopImmediatePropagation halts traversal and also skips the remaining
// listeners on the current object.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.immediateStopped = true
}

// PreventDefault marks the event's default behavior as cancelled. A no-op
// for non-cancelable events.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PropagationStopped reports whether a listener requested cancellation.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// CallbackErrors returns the errors raised by individual listeners during
// this dispatch, in invocation order.
func (e *Event) CallbackErrors() []error {
	return e.callbackErrs
}

func (e *Event) recordCallbackError(err error) {
	e.callbackErrs = append(e.callbackErrs, err)
}

package avm

// ---------------------------------------------------------------------------
// Event-target machinery: listener registration and event propagation
// ---------------------------------------------------------------------------

// dispatchListProperty is the private property under which an event target
// keeps its dispatch-list holder. The leading NUL keeps it out of any name
// space reachable from scripted code.
const dispatchListProperty = "\x00dispatchList"

// parented is the capability of kinds that live in an ancestor hierarchy.
// The dispatcher walks it to build an event's propagation chain.
type parented interface {
	Parent() (Object, bool)
}

// EnsureDispatchList returns the dispatch-list holder attached to target,
// creating and attaching one on first use. The allocate-then-attach pair
// runs as one mutator operation, so a collection cycle can never sweep the
// fresh holder before the property store makes it reachable.
func EnsureDispatchList(a *Arena, target Object) *DispatchObject {
	a.beginOp()
	defer a.endOp()

	if v, ok := target.Base().Property(dispatchListProperty); ok {
		if holder, ok := v.Object().(*DispatchObject); ok {
			return holder
		}
	}
	holder := emptyDispatchList(a)
	a.SetProperty(target, dispatchListProperty, FromObject(holder))
	return holder
}

// dispatchListOf returns target's holder without creating one.
func dispatchListOf(target Object) (*DispatchObject, bool) {
	v, ok := target.Base().Property(dispatchListProperty)
	if !ok {
		return nil, false
	}
	holder, ok := v.Object().(*DispatchObject)
	return holder, ok
}

// AddEventListener registers a listener on target. Identical
// (type, listener, capture) registrations collapse to one entry.
func AddEventListener(a *Arena, target Object, eventType string, listener Object, capture bool, priority int32, once bool) {
	a.beginOp()
	defer a.endOp()

	holder := EnsureDispatchList(a, target)
	guard, _ := holder.AsDispatchListMut(a)
	guard.List().AddListener(eventType, listener, capture, priority, once)
	guard.Release()
}

// RemoveEventListener removes a matching registration from target, if any.
func RemoveEventListener(a *Arena, target Object, eventType string, listener Object, capture bool) {
	a.beginOp()
	defer a.endOp()

	holder, ok := dispatchListOf(target)
	if !ok {
		return
	}
	guard, _ := holder.AsDispatchListMut(a)
	guard.List().RemoveListener(eventType, listener, capture)
	guard.Release()
}

// HasEventListener reports whether target has any registration for the
// given event type, in either phase.
func HasEventListener(a *Arena, target Object, eventType string) bool {
	a.beginOp()
	defer a.endOp()

	holder, ok := dispatchListOf(target)
	if !ok {
		return false
	}
	guard, _ := holder.AsDispatchList()
	has := guard.List().HasListener(eventType)
	guard.Release()
	return has
}

// DispatchEvent propagates e through target's ancestor chain: capture phase
// root-to-target, at-target, then bubble phase target-to-root if the event
// bubbles. Returns true unless a listener called PreventDefault on a
// cancelable event.
//
// Each listener's error is isolated: it is logged, recorded on the event,
// and the remaining listeners still run. Cancellation (StopPropagation)
// halts remaining traversal but never already-dispatched calls.
//
// The whole dispatch runs as one mutator operation; collection cycles wait
// for it to finish.
func DispatchEvent(a *Arena, target Object, e *Event) bool {
	a.beginOp()
	defer a.endOp()

	if limit := a.maxDispatchDepth.Load(); limit > 0 {
		if a.dispatchDepth.Load() >= limit {
			a.eventLog.Errorf("dispatch of %q refused: nesting depth limit %d reached", e.Type, limit)
			e.recordCallbackError(NewScriptError("event dispatch nesting limit reached"))
			return !e.defaultPrevented
		}
	}
	a.dispatchDepth.Add(1)
	defer a.dispatchDepth.Add(-1)

	e.Target = target

	ancestors := ancestorChain(target)

	// Capture phase: root towards the target, capture listeners only.
	e.Phase = PhaseCapturing
	for i := len(ancestors) - 1; i >= 0; i-- {
		invokeListeners(a, ancestors[i], e)
		if e.stopped {
			return !e.defaultPrevented
		}
	}

	// At-target phase: every listener on the target, in priority order.
	e.Phase = PhaseAtTarget
	invokeListeners(a, target, e)
	if e.stopped || !e.Bubbles {
		return !e.defaultPrevented
	}

	// Bubble phase: target towards the root, non-capture listeners only.
	e.Phase = PhaseBubbling
	for _, ancestor := range ancestors {
		invokeListeners(a, ancestor, e)
		if e.stopped {
			break
		}
	}
	return !e.defaultPrevented
}

// ancestorChain returns target's ancestors ordered nearest-first. Objects
// without the parent capability have an empty chain.
func ancestorChain(target Object) []Object {
	var chain []Object
	current := target
	for {
		p, ok := current.(parented)
		if !ok {
			break
		}
		parent, ok := p.Parent()
		if !ok {
			break
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain
}

// invokeListeners fires the listeners registered on obj that match the
// event's current phase. The invocation list is snapshotted under a shared
// borrow before any callback runs, so re-entrant add/remove from inside a
// listener never perturbs the in-flight dispatch; once-only entries are
// dropped afterwards.
func invokeListeners(a *Arena, obj Object, e *Event) {
	holder, ok := dispatchListOf(obj)
	if !ok {
		return
	}

	guard, _ := holder.AsDispatchList()
	regs := guard.List().snapshot(e.Type, e.Phase)
	guard.Release()
	if len(regs) == 0 {
		return
	}

	e.CurrentTarget = obj

	var spent []uint64
	for i := range regs {
		if err := callListener(a, regs[i].Listener, e); err != nil {
			a.eventLog.Errorf("listener error for %q during %s phase: %s",
				e.Type, e.Phase, err.Error())
			e.recordCallbackError(err)
		}
		if regs[i].Once {
			spent = append(spent, regs[i].seq)
		}
		if e.immediateStopped {
			// Entries already invoked keep their once accounting; the
			// rest of the snapshot is abandoned.
			break
		}
	}

	if len(spent) > 0 {
		guard, _ := holder.AsDispatchListMut(a)
		for _, seq := range spent {
			guard.List().removeSeq(e.Type, seq)
		}
		guard.Release()
	}
}

// callListener invokes a single registration's callback target.
func callListener(a *Arena, listener Object, e *Event) error {
	type eventHandler interface {
		HandleEvent(a *Arena, e *Event) error
	}
	h, ok := listener.(eventHandler)
	if !ok {
		return NewScriptError("listener is not callable")
	}
	return h.HandleEvent(a, e)
}

package avm

// ---------------------------------------------------------------------------
// DispatchList: the ordered listener registry
// ---------------------------------------------------------------------------

// Registration is one listener entry in a dispatch list.
type Registration struct {
	Listener Object // The callback target, compared by heap identity
	Capture  bool   // Fires during the capture phase instead of bubble
	Priority int32  // Higher priority fires first within a phase
	Once     bool   // Removed automatically after its first invocation

	// seq is the insertion sequence number, the tie-break for equal
	// priority.
	seq uint64
}

// matchesPhase reports whether the registration fires in the given phase.
// At-target listeners fire regardless of their capture flag.
func (r *Registration) matchesPhase(phase EventPhase) bool {
	switch phase {
	case PhaseCapturing:
		return r.Capture
	case PhaseAtTarget:
		return true
	case PhaseBubbling:
		return !r.Capture
	default:
		return false
	}
}

// DispatchList is the ordered registry of event listeners attached to one
// event-capable object. Within one event type, registrations are kept in
// invocation order: priority descending, insertion order breaking ties.
//
// The list is exclusively owned by its holder object and is only reachable
// through a checked borrow (see DispatchGuard); it is never independently
// referenced.
type DispatchList struct {
	buckets map[string][]Registration
	nextSeq uint64

	// cell is the holder's borrow cell, nil for free-standing lists.
	// Mutating methods refuse to run unless a mutable borrow is live.
	cell *borrowCell
}

// NewDispatchList creates an empty dispatch list.
func NewDispatchList() *DispatchList {
	return &DispatchList{buckets: make(map[string][]Registration)}
}

// requireMut panics unless the list is free-standing or mutably borrowed.
func (l *DispatchList) requireMut() {
	if l.cell != nil && l.cell.state.Load() != -1 {
		panic("avm: dispatch list mutated outside a mutable borrow")
	}
}

// AddListener registers a listener for the given event type. Registration
// is idempotent: if an identical (type, listener, capture) entry already
// exists, the call is a no-op and returns false. Returns true if a new
// entry was inserted.
func (l *DispatchList) AddListener(eventType string, listener Object, capture bool, priority int32, once bool) bool {
	l.requireMut()
	bucket := l.buckets[eventType]
	for i := range bucket {
		if bucket[i].Listener.Ptr() == listener.Ptr() && bucket[i].Capture == capture {
			return false
		}
	}

	l.nextSeq++
	reg := Registration{
		Listener: listener,
		Capture:  capture,
		Priority: priority,
		Once:     once,
		seq:      l.nextSeq,
	}

	// Insert before the first entry with strictly lower priority, keeping
	// the bucket sorted by (priority descending, insertion order).
	at := len(bucket)
	for i := range bucket {
		if bucket[i].Priority < priority {
			at = i
			break
		}
	}
	bucket = append(bucket, Registration{})
	copy(bucket[at+1:], bucket[at:])
	bucket[at] = reg
	l.buckets[eventType] = bucket
	return true
}

// RemoveListener removes the matching (type, listener, capture) entry.
// Removing a non-existent listener is a no-op, not an error. Returns true
// if an entry was removed.
func (l *DispatchList) RemoveListener(eventType string, listener Object, capture bool) bool {
	l.requireMut()
	bucket := l.buckets[eventType]
	for i := range bucket {
		if bucket[i].Listener.Ptr() == listener.Ptr() && bucket[i].Capture == capture {
			l.buckets[eventType] = append(bucket[:i], bucket[i+1:]...)
			if len(l.buckets[eventType]) == 0 {
				delete(l.buckets, eventType)
			}
			return true
		}
	}
	return false
}

// removeSeq removes the entry with the given insertion sequence number.
// Used to drop once-only listeners after invocation.
func (l *DispatchList) removeSeq(eventType string, seq uint64) {
	l.requireMut()
	bucket := l.buckets[eventType]
	for i := range bucket {
		if bucket[i].seq == seq {
			l.buckets[eventType] = append(bucket[:i], bucket[i+1:]...)
			if len(l.buckets[eventType]) == 0 {
				delete(l.buckets, eventType)
			}
			return
		}
	}
}

// HasListener reports whether any registration (either phase) exists for
// the given event type.
func (l *DispatchList) HasListener(eventType string) bool {
	return len(l.buckets[eventType]) > 0
}

// NumRegistrations returns the total number of registrations across all
// event types.
func (l *DispatchList) NumRegistrations() int {
	n := 0
	for _, bucket := range l.buckets {
		n += len(bucket)
	}
	return n
}

// snapshot returns a copy of the registrations that fire for the given
// (type, phase), in invocation order. Invocation iterates the copy, so
// mutations performed by in-flight listeners never skip or double-fire a
// sibling.
func (l *DispatchList) snapshot(eventType string, phase EventPhase) []Registration {
	bucket := l.buckets[eventType]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Registration, 0, len(bucket))
	for i := range bucket {
		if bucket[i].matchesPhase(phase) {
			out = append(out, bucket[i])
		}
	}
	return out
}

// trace visits every listener handle held by the list. Called by the
// holder's Trace; runs between discrete operations, so no borrow is taken.
func (l *DispatchList) trace(visit func(Value)) {
	for _, bucket := range l.buckets {
		for i := range bucket {
			visit(FromObject(bucket[i].Listener))
		}
	}
}

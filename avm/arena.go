package avm

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Arena: the garbage-collected heap and mutation context
// ---------------------------------------------------------------------------

// Arena owns the storage of every object kind. It is the single gateway for
// allocation, for interior mutation (every write is barrier-gated so the
// collector's trace stays correct), and for weak-handle resolution.
//
// Scripted execution is single-threaded and cooperative; the arena's locks
// exist so a background collection runner (ArenaGC) can interleave with
// mutation between discrete operations, never mid-mutation.
type Arena struct {
	mu      sync.RWMutex
	objects map[*ScriptObjectData]Object
	roots   map[*ScriptObjectData]Object

	// opMu excludes collection cycles from mutator operations: Collect
	// takes it exclusively, mutator operations hold it shared for their
	// whole duration. opDepth tracks operation nesting on the mutator
	// thread so re-entrant operations share the outermost hold.
	opMu    sync.RWMutex
	opDepth atomic.Int32

	// dirty records objects whose interior changed since the last
	// collection cycle. A stop-the-world cycle re-scans them before
	// sweeping; an incremental collector would consume the same set.
	dirty map[*ScriptObjectData]struct{}

	// Interned strings
	strings   map[uint32]string
	stringIDs map[string]uint32
	nextStr   uint32

	// Weak handles, keyed by ID
	weakRefs   map[uint32]*WeakHandle
	nextWeakID uint32

	classes *CoreClasses

	// Re-entrant dispatch nesting bound; zero means unbounded.
	maxDispatchDepth atomic.Int32
	dispatchDepth    atomic.Int32

	collections uint64
	lastStats   *CollectStats

	log      commonlog.Logger
	eventLog commonlog.Logger
}

// CollectStats holds statistics from a single collection cycle.
type CollectStats struct {
	Live         int
	Swept        int
	WeakCleared  int
	DirtyFlushed int
	Duration     time.Duration
	Timestamp    time.Time
}

// NewArena creates an empty arena with the core classes installed.
func NewArena() *Arena {
	return &Arena{
		objects:   make(map[*ScriptObjectData]Object),
		roots:     make(map[*ScriptObjectData]Object),
		dirty:     make(map[*ScriptObjectData]struct{}),
		strings:   make(map[uint32]string),
		stringIDs: make(map[string]uint32),
		weakRefs:  make(map[uint32]*WeakHandle),
		classes:   newCoreClasses(),
		log:       commonlog.GetLogger("glint.avm"),
		eventLog:  commonlog.GetLogger("glint.avm.events"),
	}
}

// Classes returns the arena's well-known classes.
func (a *Arena) Classes() *CoreClasses {
	return a.classes
}

// SetMaxDispatchDepth bounds re-entrant event dispatch nesting. Dispatches
// beyond the bound are refused rather than allowed to recurse without
// limit. Zero (the default) means unbounded.
func (a *Arena) SetMaxDispatchDepth(n int) {
	a.maxDispatchDepth.Store(int32(n))
}

// MaxDispatchDepth returns the configured nesting bound.
func (a *Arena) MaxDispatchDepth() int {
	return int(a.maxDispatchDepth.Load())
}

// beginOp marks the start of a mutator operation. Collection cycles are
// excluded for the operation's whole duration, so a multi-step mutation
// (allocate a holder, then store the handle that makes it reachable) can
// never have a sweep land between its steps. Scripted execution is
// single-threaded; nested operations (a listener re-registering during
// dispatch) share the outermost hold via the depth counter instead of
// re-acquiring the lock, which would deadlock against a waiting collector.
func (a *Arena) beginOp() {
	if a.opDepth.Add(1) == 1 {
		a.opMu.RLock()
	}
}

// endOp marks the end of a mutator operation.
func (a *Arena) endOp() {
	if a.opDepth.Add(-1) == 0 {
		a.opMu.RUnlock()
	}
}

// Mutate runs fn as one discrete mutator operation: no collection cycle runs
// inside it. Hosts building multi-step object graphs under a running ArenaGC
// wrap the steps so a freshly allocated object cannot be swept before the
// store that hands it off to a reachable holder.
func (a *Arena) Mutate(fn func()) {
	a.beginOp()
	defer a.endOp()
	fn()
}

// allocate registers a freshly constructed kind with the arena and wires the
// header's self handle. Called by the kind constructors only.
func (a *Arena) allocate(o Object) {
	base := o.Base()
	base.self = o

	a.mu.Lock()
	a.objects[base] = o
	a.mu.Unlock()
}

// Owns reports whether o was allocated in this arena and is still live.
func (a *Arena) Owns(o Object) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.objects[o.Base()]
	return ok
}

// LiveCount returns the number of live objects.
func (a *Arena) LiveCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.objects)
}

// ForEachObject calls fn for every live object. The order is unspecified.
func (a *Arena) ForEachObject(fn func(Object)) {
	a.mu.RLock()
	handles := make([]Object, 0, len(a.objects))
	for _, o := range a.objects {
		handles = append(handles, o)
	}
	a.mu.RUnlock()
	for _, o := range handles {
		fn(o)
	}
}

// ---------------------------------------------------------------------------
// Roots
// ---------------------------------------------------------------------------

// AddRoot pins o as a reachability root. Rooted objects and everything
// reachable from them survive collection.
func (a *Arena) AddRoot(o Object) {
	a.mu.Lock()
	a.roots[o.Base()] = o
	a.mu.Unlock()
}

// RemoveRoot unpins o. The object stays live until the next cycle proves it
// unreachable.
func (a *Arena) RemoveRoot(o Object) {
	a.mu.Lock()
	delete(a.roots, o.Base())
	a.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Write barrier and barrier-gated mutation
// ---------------------------------------------------------------------------

// WriteBarrier records that o's interior has been mutated since the last
// collection cycle. Every mutation of arena-owned interior state must pass
// through here (the property and dispatch-list helpers already do).
// Panics if o is not owned by this arena.
func (a *Arena) WriteBarrier(o Object) {
	a.mu.Lock()
	a.writeBarrierLocked(o)
	a.mu.Unlock()
}

func (a *Arena) writeBarrierLocked(o Object) {
	base := o.Base()
	if _, ok := a.objects[base]; !ok {
		panic("avm: write barrier on object not owned by this arena")
	}
	a.dirty[base] = struct{}{}
}

// SetProperty sets an own property on o through the write barrier.
func (a *Arena) SetProperty(o Object, name string, v Value) {
	a.mu.Lock()
	a.writeBarrierLocked(o)
	o.Base().setProperty(name, v)
	a.mu.Unlock()
}

// DeleteProperty removes an own property from o through the write barrier.
func (a *Arena) DeleteProperty(o Object, name string) {
	a.mu.Lock()
	a.writeBarrierLocked(o)
	o.Base().deleteProperty(name)
	a.mu.Unlock()
}

// SetProto sets o's prototype link through the write barrier.
func (a *Arena) SetProto(o Object, proto Value) {
	a.mu.Lock()
	a.writeBarrierLocked(o)
	o.Base().setProto(proto)
	a.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Interned strings
// ---------------------------------------------------------------------------

// NewString interns s and returns its string Value. Interning the same
// content twice yields the same Value.
func (a *Arena) NewString(s string) Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.stringIDs[s]; ok {
		return FromStringID(id)
	}
	a.nextStr++
	id := a.nextStr
	a.strings[id] = s
	a.stringIDs[s] = id
	return FromStringID(id)
}

// StringContent returns the Go string content of a string Value.
// Panics if v is not a string.
func (a *Arena) StringContent(v Value) string {
	id := v.StringID()
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.strings[id]
}

// ---------------------------------------------------------------------------
// Collection
// ---------------------------------------------------------------------------

// Collect runs one mark/sweep cycle: marks everything reachable from the
// roots via Trace, re-scans dirty objects, sweeps the rest, and clears weak
// handles whose referents were swept. Collection only ever runs between
// discrete operations; a cycle waits for in-flight mutator operations to
// finish and blocks new ones until the sweep completes.
func (a *Arena) Collect() *CollectStats {
	start := time.Now()

	a.opMu.Lock()
	a.mu.Lock()

	marked := make(map[*ScriptObjectData]struct{}, len(a.objects))
	var worklist []Object
	for _, o := range a.roots {
		worklist = append(worklist, o)
		marked[o.Base()] = struct{}{}
	}

	visit := func(v Value) {
		if !v.IsObject() {
			return
		}
		base := v.objectHeader()
		if _, seen := marked[base]; seen {
			return
		}
		if o, ok := a.objects[base]; ok {
			marked[base] = struct{}{}
			worklist = append(worklist, o)
		}
	}

	for len(worklist) > 0 {
		o := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		o.Trace(visit)
	}

	// Re-scan seam: live objects mutated since the last cycle may point at
	// objects the initial trace predates. A stop-the-world cycle finds
	// nothing new here, but an incremental collector consumes the same set.
	stats := &CollectStats{Timestamp: start}
	for base := range a.dirty {
		if _, live := marked[base]; live {
			a.objects[base].Trace(visit)
			stats.DirtyFlushed++
		}
	}
	for len(worklist) > 0 {
		o := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		o.Trace(visit)
	}
	a.dirty = make(map[*ScriptObjectData]struct{})

	// Sweep
	for base := range a.objects {
		if _, live := marked[base]; !live {
			delete(a.objects, base)
			stats.Swept++
		}
	}
	stats.Live = len(a.objects)

	// Clear weak handles to swept objects; collect finalizers to run
	// outside the lock.
	var finalize []func()
	for _, wh := range a.weakRefs {
		target := wh.target()
		if target == nil {
			continue
		}
		if _, live := marked[target.Base()]; !live {
			old := wh.clear()
			stats.WeakCleared++
			if fn := wh.Finalizer(); fn != nil && old != nil {
				f, o := fn, old
				finalize = append(finalize, func() { f(o) })
			}
		}
	}

	a.collections++
	a.lastStats = stats
	a.mu.Unlock()
	a.opMu.Unlock()

	for _, fn := range finalize {
		fn()
	}

	stats.Duration = time.Since(start)
	a.log.Debugf("collect: %d live, %d swept, %d weak cleared in %s",
		stats.Live, stats.Swept, stats.WeakCleared, stats.Duration)
	return stats
}

// CollectionCount returns the number of completed collection cycles.
func (a *Arena) CollectionCount() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.collections
}

// LastCollectStats returns statistics from the most recent cycle, or nil if
// none has run yet.
func (a *Arena) LastCollectStats() *CollectStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastStats
}

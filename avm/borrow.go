package avm

import "sync/atomic"

// ---------------------------------------------------------------------------
// borrowCell: runtime-checked borrow discipline for interior-mutable state
// ---------------------------------------------------------------------------

// borrowCell tracks outstanding borrows of a piece of interior-mutable
// state. Shared and mutable access are mutually exclusive at any instant; a
// conflicting borrow indicates a reentrancy bug in calling code and panics
// rather than letting callers observe a half-mutated structure.
//
// State encoding: 0 = free, -1 = mutably borrowed, n > 0 = n shared borrows.
type borrowCell struct {
	state atomic.Int32
}

func (c *borrowCell) borrowShared() {
	for {
		s := c.state.Load()
		if s < 0 {
			panic("avm: dispatch list already mutably borrowed")
		}
		if c.state.CompareAndSwap(s, s+1) {
			return
		}
	}
}

func (c *borrowCell) borrowMut() {
	if !c.state.CompareAndSwap(0, -1) {
		panic("avm: dispatch list already borrowed")
	}
}

func (c *borrowCell) releaseShared() {
	if c.state.Add(-1) < 0 {
		panic("avm: unbalanced shared borrow release")
	}
}

func (c *borrowCell) releaseMut() {
	if !c.state.CompareAndSwap(-1, 0) {
		panic("avm: unbalanced mutable borrow release")
	}
}

// ---------------------------------------------------------------------------
// DispatchGuard: a live borrow of an object's dispatch list
// ---------------------------------------------------------------------------

// DispatchGuard is a borrowed view of a dispatch list. The list must only be
// accessed while the guard is live, and the guard must be released exactly
// once. Mutating methods of DispatchList check the guard's mutability.
type DispatchGuard struct {
	list     *DispatchList
	cell     *borrowCell
	mutable  bool
	released bool

	// arena is set on mutable guards: a live mutable borrow counts as a
	// mutator operation, so the collector never traces the list while its
	// buckets are being rewritten.
	arena *Arena
}

// List returns the borrowed dispatch list.
// Panics if the guard has already been released.
func (g *DispatchGuard) List() *DispatchList {
	if g.released {
		panic("avm: use of released dispatch list guard")
	}
	return g.list
}

// Mutable reports whether this guard permits mutation.
func (g *DispatchGuard) Mutable() bool {
	return g.mutable
}

// Release ends the borrow. Releasing twice panics.
func (g *DispatchGuard) Release() {
	if g.released {
		panic("avm: dispatch list guard released twice")
	}
	g.released = true
	if g.mutable {
		g.cell.releaseMut()
	} else {
		g.cell.releaseShared()
	}
	if g.arena != nil {
		g.arena.endOp()
	}
}

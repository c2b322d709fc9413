// Package glint wires the object runtime together from a glint.toml
// configuration: the arena, its dispatch nesting bound, and the background
// collection driver.
package glint

import (
	"github.com/glintmedia/glint/avm"
	"github.com/glintmedia/glint/config"
)

// Runtime bundles a configured arena with its background collection driver.
type Runtime struct {
	Arena *avm.Arena

	// GC is nil when runtime.gc-interval is zero; collection is then the
	// host's responsibility.
	GC *avm.ArenaGC
}

// NewRuntime builds an arena from cfg. Call Start to begin background
// collection and Close on shutdown.
func NewRuntime(cfg *config.Config) *Runtime {
	a := avm.NewArena()
	a.SetMaxDispatchDepth(cfg.Runtime.MaxListenerDepth)

	rt := &Runtime{Arena: a}
	if interval := cfg.Runtime.GCInterval.Std(); interval > 0 {
		rt.GC = avm.NewArenaGC(a, interval)
	}
	return rt
}

// Start begins the background collection driver, if one is configured.
func (rt *Runtime) Start() {
	if rt.GC != nil {
		rt.GC.Start()
	}
}

// Close stops the background collection driver.
func (rt *Runtime) Close() {
	if rt.GC != nil {
		rt.GC.Stop()
	}
}

package avm

import (
	"sync"
	"sync/atomic"
	"time"
)

// ---------------------------------------------------------------------------
// ArenaGC: periodic collection driver
// ---------------------------------------------------------------------------

// ArenaGC periodically runs collection cycles on an arena. Long-running
// hosts (the player shell, IDE sessions) use it so unreachable objects are
// reclaimed without the interpreter scheduling cycles itself. Cycles run
// between discrete operations, interleaved with mutation, never inside one.
type ArenaGC struct {
	arena    *Arena
	interval time.Duration
	enabled  atomic.Bool
	stop     chan struct{}
	stopped  chan struct{}
	mu       sync.Mutex // protects start/stop lifecycle

	cycleCount atomic.Uint64
}

// DefaultGCInterval is the default cycle interval for ArenaGC.
const DefaultGCInterval = 30 * time.Second

// NewArenaGC creates a collection driver for the given arena with the
// specified interval. Use DefaultGCInterval for the default (30s).
func NewArenaGC(arena *Arena, interval time.Duration) *ArenaGC {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	gc := &ArenaGC{
		arena:    arena,
		interval: interval,
	}
	gc.enabled.Store(true)
	return gc
}

// Start begins the periodic collection goroutine. It is safe to call Start
// multiple times; only one loop will run.
func (gc *ArenaGC) Start() {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if gc.stop != nil {
		return // already running
	}

	gc.stop = make(chan struct{})
	gc.stopped = make(chan struct{})

	// Capture channels locally so the goroutine does not read gc.stop and
	// gc.stopped after Stop() has nilled them out.
	stopCh := gc.stop
	stoppedCh := gc.stopped
	go gc.loop(stopCh, stoppedCh)
}

// Stop halts the collection goroutine and waits for it to finish. It is
// safe to call Stop multiple times or on a driver that was never started.
func (gc *ArenaGC) Stop() {
	gc.mu.Lock()
	stopCh := gc.stop
	stoppedCh := gc.stopped
	gc.stop = nil
	gc.stopped = nil
	gc.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-stoppedCh
	}
}

// SetEnabled enables or disables cycles. When disabled, the goroutine still
// runs but skips collection.
func (gc *ArenaGC) SetEnabled(enabled bool) {
	gc.enabled.Store(enabled)
}

// IsEnabled returns whether collection is currently enabled.
func (gc *ArenaGC) IsEnabled() bool {
	return gc.enabled.Load()
}

// Interval returns the configured cycle interval.
func (gc *ArenaGC) Interval() time.Duration {
	return gc.interval
}

// CycleCount returns the total number of cycles driven by this runner.
func (gc *ArenaGC) CycleCount() uint64 {
	return gc.cycleCount.Load()
}

// CollectNow runs an immediate cycle regardless of the timer.
func (gc *ArenaGC) CollectNow() *CollectStats {
	gc.cycleCount.Add(1)
	return gc.arena.Collect()
}

// loop drives periodic cycles until stopCh closes.
func (gc *ArenaGC) loop(stopCh <-chan struct{}, stoppedCh chan struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if gc.enabled.Load() {
				gc.cycleCount.Add(1)
				gc.arena.Collect()
			}
		}
	}
}

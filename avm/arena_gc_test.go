package avm

import (
	"testing"
	"time"
)

func TestArenaGCDefaults(t *testing.T) {
	gc := NewArenaGC(NewArena(), 0)
	if gc.Interval() != DefaultGCInterval {
		t.Errorf("Interval = %s, want %s", gc.Interval(), DefaultGCInterval)
	}
	if !gc.IsEnabled() {
		t.Error("runner should start enabled")
	}
}

func TestArenaGCCollectNow(t *testing.T) {
	a := NewArena()
	a.NewScriptObject(a.Classes().Object)
	gc := NewArenaGC(a, time.Minute)

	stats := gc.CollectNow()
	if stats == nil || stats.Swept != 1 {
		t.Errorf("CollectNow stats = %+v, want one sweep", stats)
	}
	if gc.CycleCount() != 1 {
		t.Errorf("CycleCount = %d, want 1", gc.CycleCount())
	}
}

func TestArenaGCPeriodicCycles(t *testing.T) {
	a := NewArena()
	gc := NewArenaGC(a, 5*time.Millisecond)
	gc.Start()
	defer gc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for a.CollectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no collection cycle ran within the deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestArenaGCStartStopIdempotent(t *testing.T) {
	gc := NewArenaGC(NewArena(), time.Minute)
	gc.Start()
	gc.Start()
	gc.Stop()
	gc.Stop()

	// Stopping a never-started runner is also fine.
	NewArenaGC(NewArena(), time.Minute).Stop()
}

func TestArenaGCDisabledSkipsCycles(t *testing.T) {
	a := NewArena()
	gc := NewArenaGC(a, 5*time.Millisecond)
	gc.SetEnabled(false)
	gc.Start()
	defer gc.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := a.CollectionCount(); got != 0 {
		t.Errorf("disabled runner drove %d cycles, want 0", got)
	}
	if gc.IsEnabled() {
		t.Error("IsEnabled should report false")
	}
}

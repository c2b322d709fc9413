package snapshot

import (
	"testing"

	"github.com/glintmedia/glint/avm"
)

// buildHeap populates an arena with one of each kind plus a few properties
// and a listener registration.
func buildHeap(t *testing.T) *avm.Arena {
	t.Helper()
	a := avm.NewArena()

	obj := a.NewScriptObject(a.Classes().Object)
	a.AddRoot(obj)
	a.SetProperty(obj, "count", avm.FromSmallInt(3))
	a.SetProperty(obj, "ratio", avm.FromFloat64(0.5))
	a.SetProperty(obj, "label", a.NewString("hello"))
	a.SetProperty(obj, "flag", avm.True)
	a.SetProperty(obj, "nothing", avm.Null)

	stage := a.NewStageObject(a.Classes().Stage)
	a.AddRoot(stage)
	a.SetProperty(obj, "stage", avm.FromObject(stage))

	listener := a.NewFunction("onClick", func(*avm.Arena, *avm.Event) error { return nil })
	avm.AddEventListener(a, stage, "click", listener, false, 0, false)
	return a
}

func findRecord(s *Snapshot, kind string) (ObjectRecord, bool) {
	for _, rec := range s.Objects {
		if rec.Kind == kind {
			return rec, true
		}
	}
	return ObjectRecord{}, false
}

func TestCaptureCoversLiveObjects(t *testing.T) {
	a := buildHeap(t)
	snap := Capture(a)

	if len(snap.Objects) != a.LiveCount() {
		t.Errorf("captured %d objects, arena has %d", len(snap.Objects), a.LiveCount())
	}
	for _, kind := range []string{"script", "stage", "function", "dispatch"} {
		if _, ok := findRecord(snap, kind); !ok {
			t.Errorf("no %q record in capture", kind)
		}
	}
	for i, rec := range snap.Objects {
		if rec.Index != uint32(i) {
			t.Errorf("record %d carries index %d", i, rec.Index)
		}
	}
}

func TestCaptureEncodesValues(t *testing.T) {
	a := buildHeap(t)
	snap := Capture(a)

	rec, ok := findRecord(snap, "script")
	if !ok {
		t.Fatal("no script record")
	}
	if rec.Class != "Object" {
		t.Errorf("Class = %q, want Object", rec.Class)
	}
	if rec.Proto.Tag != TagNull {
		t.Errorf("Proto tag = %#x, want TagNull", rec.Proto.Tag)
	}

	cases := map[string]byte{
		"count":   TagSmallInt,
		"ratio":   TagFloat,
		"label":   TagString,
		"flag":    TagTrue,
		"nothing": TagNull,
		"stage":   TagObject,
	}
	for name, wantTag := range cases {
		ev, ok := rec.Properties[name]
		if !ok {
			t.Errorf("property %q missing from record", name)
			continue
		}
		if ev.Tag != wantTag {
			t.Errorf("property %q tag = %#x, want %#x", name, ev.Tag, wantTag)
		}
	}
	if rec.Properties["count"].Bits != 3 {
		t.Errorf("count bits = %d, want 3", rec.Properties["count"].Bits)
	}
	if rec.Properties["label"].Str != "hello" {
		t.Errorf("label = %q, want hello", rec.Properties["label"].Str)
	}

	// Object references point into the object table.
	stageIdx := rec.Properties["stage"].Bits
	if stageIdx >= uint64(len(snap.Objects)) || snap.Objects[stageIdx].Kind != "stage" {
		t.Errorf("stage reference resolves to %v", stageIdx)
	}
}

func TestCaptureCountsListeners(t *testing.T) {
	a := buildHeap(t)
	snap := Capture(a)

	rec, ok := findRecord(snap, "dispatch")
	if !ok {
		t.Fatal("no dispatch record")
	}
	if rec.Listeners != 1 {
		t.Errorf("Listeners = %d, want 1", rec.Listeners)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	a := buildHeap(t)
	snap := Capture(a)
	snap.ID = "test-snapshot"

	data, err := Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.ID != snap.ID {
		t.Errorf("ID = %q, want %q", back.ID, snap.ID)
	}
	if len(back.Objects) != len(snap.Objects) {
		t.Fatalf("round trip has %d objects, want %d", len(back.Objects), len(snap.Objects))
	}
	rec, ok := findRecord(back, "script")
	if !ok {
		t.Fatal("script record lost in round trip")
	}
	if rec.Properties["label"].Str != "hello" {
		t.Error("property content lost in round trip")
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("definitely not CBOR")); err == nil {
		t.Error("garbage input should fail to unmarshal")
	}
}

func TestHashIgnoresIDAndTime(t *testing.T) {
	a := buildHeap(t)
	snap := Capture(a)

	h1, err := Hash(snap)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	snap.ID = "renamed"
	snap.CapturedAt = snap.CapturedAt.Add(1)
	h2, err := Hash(snap)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 != h2 {
		t.Error("hash should depend only on the object graph")
	}
}

func TestHashTracksHeapChanges(t *testing.T) {
	a := buildHeap(t)
	h1, err := Hash(Capture(a))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// An unchanged heap captures to the same hash.
	h2, err := Hash(Capture(a))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 != h2 {
		t.Error("captures of an unchanged heap should hash identically")
	}

	// A mutation changes it.
	var root avm.Object
	a.ForEachObject(func(o avm.Object) {
		if _, ok := o.Base().Property("count"); ok {
			root = o
		}
	})
	if root == nil {
		t.Fatal("root object not found")
	}
	a.SetProperty(root, "count", avm.FromSmallInt(4))
	h3, err := Hash(Capture(a))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 == h3 {
		t.Error("a heap mutation should change the hash")
	}
}

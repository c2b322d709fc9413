// Package snapshot captures an arena's live object graph into a
// deterministic, content-addressable wire form for debugging and
// persistence.
package snapshot

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/glintmedia/glint/avm"
)

// cborEncMode uses canonical options so equal snapshots marshal to equal
// bytes, which is what makes content hashing meaningful.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Value encoding tags. Object values are encoded as indices into the
// snapshot's object table; strings are stored literally.
const (
	TagFloat     byte = 0x0
	TagSmallInt  byte = 0x1
	TagObject    byte = 0x2
	TagUndefined byte = 0x3
	TagNull      byte = 0x4
	TagTrue      byte = 0x5
	TagFalse     byte = 0x6
	TagString    byte = 0x7
)

// EncodedValue is the wire form of one runtime Value.
type EncodedValue struct {
	Tag  byte   `cbor:"t"`
	Bits uint64 `cbor:"b,omitempty"`
	Str  string `cbor:"s,omitempty"`
}

// ObjectRecord is the wire form of one heap object.
type ObjectRecord struct {
	Index      uint32                  `cbor:"i"`
	Kind       string                  `cbor:"k"`
	Class      string                  `cbor:"c"`
	Proto      EncodedValue            `cbor:"p"`
	Properties map[string]EncodedValue `cbor:"v"`

	// Listeners is the registration count for dispatch-list holders,
	// zero for every other kind. Callback targets are host code and are
	// not serialized.
	Listeners int `cbor:"l,omitempty"`
}

// Snapshot is a point-in-time capture of an arena's live object graph.
type Snapshot struct {
	ID         string         `cbor:"id,omitempty"`
	CapturedAt time.Time      `cbor:"at"`
	Objects    []ObjectRecord `cbor:"objects"`
}

// ---------------------------------------------------------------------------
// Capture
// ---------------------------------------------------------------------------

// Capture walks the arena's live objects and produces their wire form.
// Object order (and therefore index assignment) follows heap identity, so a
// capture is internally consistent; cross-process stability comes from the
// canonical encoding, not from the indices.
func Capture(a *avm.Arena) *Snapshot {
	var handles []avm.Object
	a.ForEachObject(func(o avm.Object) {
		handles = append(handles, o)
	})
	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Ptr() < handles[j].Ptr()
	})

	index := make(map[uintptr]uint32, len(handles))
	for i, o := range handles {
		index[o.Ptr()] = uint32(i)
	}

	snap := &Snapshot{
		CapturedAt: time.Now().UTC(),
		Objects:    make([]ObjectRecord, 0, len(handles)),
	}
	for i, o := range handles {
		snap.Objects = append(snap.Objects, captureObject(a, o, uint32(i), index))
	}
	return snap
}

func captureObject(a *avm.Arena, o avm.Object, idx uint32, index map[uintptr]uint32) ObjectRecord {
	base := o.Base()
	rec := ObjectRecord{
		Index:      idx,
		Kind:       kindName(o),
		Class:      base.Class().Name,
		Proto:      encodeValue(a, base.Proto(), index),
		Properties: make(map[string]EncodedValue, base.NumProperties()),
	}
	base.ForEachProperty(func(name string, v avm.Value) {
		rec.Properties[name] = encodeValue(a, v, index)
	})
	if guard, ok := o.AsDispatchList(); ok {
		rec.Listeners = guard.List().NumRegistrations()
		guard.Release()
	}
	return rec
}

func kindName(o avm.Object) string {
	switch o.(type) {
	case *avm.ScriptObject:
		return "script"
	case *avm.DispatchObject:
		return "dispatch"
	case *avm.StageObject:
		return "stage"
	case *avm.FunctionObject:
		return "function"
	default:
		return "unknown"
	}
}

func encodeValue(a *avm.Arena, v avm.Value, index map[uintptr]uint32) EncodedValue {
	switch {
	case v == avm.Undefined:
		return EncodedValue{Tag: TagUndefined}
	case v == avm.Null:
		return EncodedValue{Tag: TagNull}
	case v == avm.True:
		return EncodedValue{Tag: TagTrue}
	case v == avm.False:
		return EncodedValue{Tag: TagFalse}
	case v.IsSmallInt():
		return EncodedValue{Tag: TagSmallInt, Bits: uint64(v.SmallInt())}
	case v.IsObject():
		return EncodedValue{Tag: TagObject, Bits: uint64(index[v.Object().Ptr()])}
	case v.IsString():
		return EncodedValue{Tag: TagString, Str: a.StringContent(v)}
	default:
		return EncodedValue{Tag: TagFloat, Bits: uint64(v)}
	}
}

// ---------------------------------------------------------------------------
// Wire form
// ---------------------------------------------------------------------------

// Marshal serializes a Snapshot to canonical CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}

// Hash returns the SHA-256 content hash of the snapshot's object graph.
// The ID and capture time are excluded, so two captures of an unchanged
// heap hash identically.
func Hash(s *Snapshot) ([32]byte, error) {
	data, err := cborEncMode.Marshal(s.Objects)
	if err != nil {
		return [32]byte{}, fmt.Errorf("snapshot: hash: %w", err)
	}
	return sha256.Sum256(data), nil
}

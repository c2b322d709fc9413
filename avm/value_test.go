package avm

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Value tagging tests
// ---------------------------------------------------------------------------

func TestFloatRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.14159, math.Inf(1), math.Inf(-1), math.MaxFloat64}
	for _, f := range cases {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v) should be a float", f)
		}
		if v.Float64() != f {
			t.Errorf("Float64() = %v, want %v", v.Float64(), f)
		}
	}
}

func TestRealNaNIsFloat(t *testing.T) {
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("a real NaN should still be a float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("Float64() should return NaN")
	}
}

func TestSmallIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, MaxSmallInt, MinSmallInt}
	for _, n := range cases {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d) should be a small int", n)
		}
		if v.IsFloat() {
			t.Errorf("FromSmallInt(%d) should not be a float", n)
		}
		if v.SmallInt() != n {
			t.Errorf("SmallInt() = %d, want %d", v.SmallInt(), n)
		}
	}
}

func TestTryFromSmallIntRange(t *testing.T) {
	if _, ok := TryFromSmallInt(MaxSmallInt + 1); ok {
		t.Error("value above range should fail")
	}
	if _, ok := TryFromSmallInt(MinSmallInt - 1); ok {
		t.Error("value below range should fail")
	}
	if v, ok := TryFromSmallInt(7); !ok || v.SmallInt() != 7 {
		t.Error("in-range value should round-trip")
	}
}

func TestSpecialsAreDistinct(t *testing.T) {
	specials := []Value{Undefined, Null, True, False}
	for i, a := range specials {
		for j, b := range specials {
			if i != j && a == b {
				t.Errorf("specials %d and %d should differ", i, j)
			}
		}
		if !a.IsSpecial() {
			t.Errorf("special %d should report IsSpecial", i)
		}
		if a.IsFloat() {
			t.Errorf("special %d should not be a float", i)
		}
	}
	if !Undefined.IsUndefined() || Null.IsUndefined() {
		t.Error("IsUndefined should only hold for Undefined")
	}
	if !Null.IsNull() || Undefined.IsNull() {
		t.Error("IsNull should only hold for Null")
	}
}

func TestBoolConversion(t *testing.T) {
	if !FromBool(true).Bool() {
		t.Error("FromBool(true) should convert back to true")
	}
	if FromBool(false).Bool() {
		t.Error("FromBool(false) should convert back to false")
	}
	if !True.IsBool() || !False.IsBool() || Null.IsBool() {
		t.Error("IsBool should hold exactly for True and False")
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{Undefined, Null, False, FromSmallInt(0), FromFloat64(0), FromFloat64(math.NaN())}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("%#x should be falsy", uint64(v))
		}
	}
	truthy := []Value{True, FromSmallInt(1), FromSmallInt(-1), FromFloat64(0.5), FromStringID(1)}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%#x should be truthy", uint64(v))
		}
	}
}

func TestStringValueTagging(t *testing.T) {
	v := FromStringID(99)
	if !v.IsString() {
		t.Error("FromStringID should produce a string value")
	}
	if v.StringID() != 99 {
		t.Errorf("StringID() = %d, want 99", v.StringID())
	}
	if v.IsObject() || v.IsSmallInt() || v.IsFloat() {
		t.Error("string value should not report other tags")
	}
}

func TestObjectValueRoundTrip(t *testing.T) {
	a := NewArena()
	obj := a.NewScriptObject(a.Classes().Object)

	v := FromObject(obj)
	if !v.IsObject() {
		t.Fatal("FromObject should produce an object value")
	}
	back := v.Object()
	if back != Object(obj) {
		t.Error("Object() should return the original handle")
	}
	if back.Ptr() != obj.Ptr() {
		t.Error("heap identity should survive the round trip")
	}
}

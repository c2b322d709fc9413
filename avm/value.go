// Package avm implements the object runtime of the Glint scripting engine:
// a garbage-collected heap of polymorphic object kinds, a DOM-style event
// dispatch protocol, and the value representation shared by both.
package avm

import (
	"math"
	"unsafe"
)

// Value represents a Glint scripted value using NaN-boxing.
//
// All values are represented as 64-bit IEEE 754 doubles. Non-float values
// are encoded in the NaN (Not-a-Number) space using the quiet NaN prefix
// and tag bits to distinguish types.
//
// Encoding scheme:
//   - Float: Native IEEE 754 double (if not a tagged NaN, it's a float)
//   - SmallInt: Quiet NaN + tagInt + 48-bit signed payload
//   - Object: Quiet NaN + tagObject + 48-bit pointer to the object header
//   - String: Quiet NaN + tagString + interned string ID
//   - Special: Quiet NaN + tagSpecial + special ID (undefined/null/true/false)
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for pointer/int/id
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagObject  uint64 = 0x0001000000000000 // Heap object header pointer
	tagInt     uint64 = 0x0002000000000000 // 48-bit signed integer
	tagSpecial uint64 = 0x0003000000000000 // undefined, null, true, false
	tagString  uint64 = 0x0004000000000000 // Interned string ID

	// Sign bit for 48-bit integer sign extension
	intSignBit uint64 = 0x0000800000000000

	// Mask for sign extension
	intSignExtend uint64 = 0xFFFF000000000000
)

// Special value payloads
const (
	specialUndefined uint64 = 0
	specialNull      uint64 = 1
	specialTrue      uint64 = 2
	specialFalse     uint64 = 3
)

// Pre-defined special values
const (
	Undefined Value = Value(nanBits | tagSpecial | specialUndefined)
	Null      Value = Value(nanBits | tagSpecial | specialNull)
	True      Value = Value(nanBits | tagSpecial | specialTrue)
	False     Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat returns true if v represents a float64 value.
// A value is a float if it's not one of our tagged NaN values.
// This includes regular numbers, infinities, and "real" NaN values.
func (v Value) IsFloat() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		// Exponent is not all 1s, so it's a regular float
		return true
	}

	// Exponent is all 1s. Could be Infinity or NaN.
	mantissa := bits & 0x000FFFFFFFFFFFFF
	if mantissa == 0 {
		// +Inf or -Inf, which are valid floats
		return true
	}

	if (bits & nanBits) != nanBits {
		// Quiet NaN bit not set - signaling NaN, treat as float
		return true
	}

	tag := bits & tagMask
	if tag == 0 {
		// No tag bits set - a "real" quiet NaN, treat as float
		return true
	}

	return false
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsObject returns true if v represents a heap object handle.
func (v Value) IsObject() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagObject)
}

// IsString returns true if v represents an interned string.
func (v Value) IsString() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagString)
}

// IsUndefined returns true if v is the undefined value.
func (v Value) IsUndefined() bool {
	return v == Undefined
}

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool {
	return v == Null
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// IsSpecial returns true if v is undefined, null, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// ---------------------------------------------------------------------------
// Float operations
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInt operations
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask

	// Sign extend from 48 bits to 64 bits
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// TryFromSmallInt creates a Value from an int64, returning false if out of range.
func TryFromSmallInt(n int64) (Value, bool) {
	if n > MaxSmallInt || n < MinSmallInt {
		return Undefined, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// ---------------------------------------------------------------------------
// Object handle operations
// ---------------------------------------------------------------------------

// objectHeader returns the object header encoded in v.
// Panics if v is not an object.
func (v Value) objectHeader() *ScriptObjectData {
	if !v.IsObject() {
		panic("Value.objectHeader: not an object")
	}
	ptr := uintptr(uint64(v) & payloadMask)
	return (*ScriptObjectData)(unsafe.Pointer(ptr))
}

// Object returns the polymorphic handle encoded in v.
// Panics if v is not an object.
func (v Value) Object() Object {
	return v.objectHeader().self
}

// FromObject creates a Value from an object handle. The handle must have
// been allocated through an Arena; the encoding stores the address of the
// shared header, which every kind exposes at offset 0.
// The pointer must fit in 48 bits (true for all current architectures).
func FromObject(o Object) Value {
	return Value(nanBits | tagObject | uint64(uintptr(unsafe.Pointer(o.Base()))))
}

// ---------------------------------------------------------------------------
// String operations
// ---------------------------------------------------------------------------

// StringID returns the interned string ID encoded in v.
// Panics if v is not a string.
func (v Value) StringID() uint32 {
	if !v.IsString() {
		panic("Value.StringID: not a string")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromStringID creates a Value from an interned string ID.
func FromStringID(id uint32) Value {
	return Value(nanBits | tagString | uint64(id))
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// ---------------------------------------------------------------------------
// Truthiness
// ---------------------------------------------------------------------------

// IsTruthy returns true if v is considered "truthy" in conditionals.
// Undefined, null, false, zero, and NaN are falsy; everything else is truthy.
func (v Value) IsTruthy() bool {
	switch {
	case v == Undefined || v == Null || v == False:
		return false
	case v.IsSmallInt():
		return v.SmallInt() != 0
	case v.IsFloat():
		f := v.Float64()
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// IsFalsy returns true if v is considered "falsy" in conditionals.
func (v Value) IsFalsy() bool {
	return !v.IsTruthy()
}

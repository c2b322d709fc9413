package avm

import "unsafe"

// Every concrete kind must keep the shared header at offset 0 of its payload
// with an alignment compatible with the header's own, so that any kind's
// handle can be reinterpreted as a header pointer without copying. The
// array-index expressions below fail to compile if a kind ever moves its
// header or changes alignment. Add a pair of lines here for each new kind.

var _ = [1]struct{}{}[unsafe.Offsetof(ScriptObject{}.base)]
var _ = [1]struct{}{}[unsafe.Offsetof(DispatchObject{}.base)]
var _ = [1]struct{}{}[unsafe.Offsetof(StageObject{}.base)]
var _ = [1]struct{}{}[unsafe.Offsetof(FunctionObject{}.base)]

var _ = [1]struct{}{}[unsafe.Alignof(ScriptObject{})%unsafe.Alignof(ScriptObjectData{})]
var _ = [1]struct{}{}[unsafe.Alignof(DispatchObject{})%unsafe.Alignof(ScriptObjectData{})]
var _ = [1]struct{}{}[unsafe.Alignof(StageObject{})%unsafe.Alignof(ScriptObjectData{})]
var _ = [1]struct{}{}[unsafe.Alignof(FunctionObject{})%unsafe.Alignof(ScriptObjectData{})]

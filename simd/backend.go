// Package simd is the portable instruction API. An Assembler validates
// logical operands, splits paired widths into halves, derives the
// comparators a target lacks and hands physical operations to a Backend.
package simd

import (
	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/target"
)

type (
	Op   = lanes.Op
	Elem = lanes.Elem
)

var (
	U8  = lanes.U8
	S8  = lanes.S8
	U16 = lanes.U16
	S16 = lanes.S16
	U32 = lanes.U32
	S32 = lanes.S32
	U64 = lanes.U64
	S64 = lanes.S64
	F32 = lanes.F32
	F64 = lanes.F64
)

// Support classifies how a backend realises an operation.
type Support uint8

const (
	Unsupported Support = iota
	Native
	Fallback
	Derived
)

func (s Support) String() string {
	switch s {
	case Native:
		return "native"
	case Fallback:
		return "fallback"
	case Derived:
		return "derived"
	}
	return "-"
}

// MaskCond selects the Mkj condition.
type MaskCond uint8

const (
	NONE MaskCond = iota // no lane set
	FULL                 // every lane set
)

func (m MaskCond) String() string {
	if m == FULL {
		return "FULL"
	}
	return "NONE"
}

// Cond is a BASE compare-and-jump condition.
type Cond uint8

const (
	EQ Cond = iota
	NE
	LTU
	LEU
	GTU
	GEU
	LTS
	LES
	GTS
	GES
)

var condNames = [...]string{"EQ_x", "NE_x", "LT_u", "LE_u", "GT_u", "GE_u", "LT_n", "LE_n", "GT_n", "GE_n"}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "cond?"
}

// ParseCond reads the textual condition names.
func ParseCond(s string) (Cond, bool) {
	for i, n := range condNames {
		if n == s {
			return Cond(i), true
		}
	}
	return 0, false
}

// Backend emits one target's encodings. Vector registers are physical
// indexes and memory operands already address the half being processed.
type Backend interface {
	Config() target.Config
	Len() int
	NewLabel(name string) *emit.Label
	Bind(l *emit.Label) error
	Finish() ([]byte, error)

	Supports(op Op, e Elem) Support
	// NativeCompare reports whether comparator c on e is handled without
	// derivation.
	NativeCompare(c Op, e Elem) bool

	Move(dst, src operand.Operand) error
	Logic(op Op, dst, s1 operand.Reg, s2 operand.Operand) error
	Not(dst, src operand.Reg) error
	Arith(op Op, e Elem, dst, s1 operand.Reg, s2 operand.Operand) error
	Shift(op Op, e Elem, dst, src operand.Reg, count operand.Operand) error
	ShiftVar(op Op, e Elem, dst, src operand.Reg, counts operand.Operand) error
	Compare(c Op, e Elem, dst, s1 operand.Reg, s2 operand.Operand) error
	Merge(dst operand.Reg, src operand.Operand, mask operand.Reg) error
	MaskJump(src operand.Reg, cond MaskCond, l *emit.Label) error

	MoveBase(dst, src operand.Operand) error
	ArithBase(op Op, dst operand.Reg, src operand.Operand) error
	ShiftBase(op Op, arith bool, dst operand.Reg, count operand.Imm) error
	CompareJump(c Cond, a operand.Reg, b operand.Operand, l *emit.Label) error
	Jump(l *emit.Label) error
}

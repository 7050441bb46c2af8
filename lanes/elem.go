// Package lanes defines the element types and portable operations and
// evaluates them lane by lane on little-endian vectors.
package lanes

import "fmt"

// Kind is the interpretation of a lane.
type Kind uint8

const (
	Unsigned Kind = iota
	Signed
	Float
)

// Elem is one lane type.
type Elem struct {
	Bits int
	Kind Kind
}

var (
	U8  = Elem{8, Unsigned}
	S8  = Elem{8, Signed}
	U16 = Elem{16, Unsigned}
	S16 = Elem{16, Signed}
	U32 = Elem{32, Unsigned}
	S32 = Elem{32, Signed}
	U64 = Elem{64, Unsigned}
	S64 = Elem{64, Signed}
	F32 = Elem{32, Float}
	F64 = Elem{64, Float}
)

// All lists every element type.
var All = []Elem{U8, S8, U16, S16, U32, S32, U64, S64, F32, F64}

// Integers lists the integer element types.
var Integers = []Elem{U8, S8, U16, S16, U32, S32, U64, S64}

func (e Elem) Bytes() int       { return e.Bits / 8 }
func (e Elem) IsFloat() bool    { return e.Kind == Float }
func (e Elem) IsSigned() bool   { return e.Kind == Signed }
func (e Elem) Valid() bool      { return validElem(e) }
func (e Elem) MaskBits() uint64 { return ones(e.Bits) }

func validElem(e Elem) bool {
	switch e.Bits {
	case 8, 16:
		return e.Kind != Float
	case 32, 64:
		return true
	}
	return false
}

func (e Elem) String() string {
	k := "u"
	switch e.Kind {
	case Signed:
		k = "s"
	case Float:
		k = "f"
	}
	return fmt.Sprintf("%s%d", k, e.Bits)
}

func ones(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

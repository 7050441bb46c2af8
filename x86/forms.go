package x86

import (
	"github.com/colorfulnotion/rtsimd/fallback"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/target"
)

var (
	fMovaps   = form{pp: ppNone, mm: map0F, op: 0x28}
	fMovupsLd = form{pp: ppNone, mm: map0F, op: 0x10}
	fMovupsSt = form{pp: ppNone, mm: map0F, op: 0x11}
	fAndps    = form{pp: ppNone, mm: map0F, op: 0x54}
	fAndnps   = form{pp: ppNone, mm: map0F, op: 0x55}
	fOrps     = form{pp: ppNone, mm: map0F, op: 0x56}
	fXorps    = form{pp: ppNone, mm: map0F, op: 0x57}
	fCmpps    = form{pp: ppNone, mm: map0F, op: 0xC2}
	fPand     = form{pp: pp66, mm: map0F, op: 0xDB}
	fPcmpeqd  = form{pp: pp66, mm: map0F, op: 0x76}
	fPmovmskb = form{pp: pp66, mm: map0F, op: 0xD7}
	fMovd     = form{pp: pp66, mm: map0F, op: 0x6E}
	fPor      = form{pp: pp66, mm: map0F, op: 0xEB}
	fPblendvb = form{pp: pp66, mm: map0F38, op: 0x10}
	fVblendvb = form{pp: pp66, mm: map0F3A, op: 0x4C}

	fVextract128 = form{pp: pp66, mm: map0F3A, op: 0x19}

	// shift by immediate groups; the operation sits in ModRM.reg
	fShiftImm16 = form{pp: pp66, mm: map0F, op: 0x71}
	fShiftImm32 = form{pp: pp66, mm: map0F, op: 0x72}
	fShiftImm64 = form{pp: pp66, mm: map0F, op: 0x73}
)

func p66(op byte) form   { return form{pp: pp66, mm: map0F, op: op} }
func p6638(op byte) form { return form{pp: pp66, mm: map0F38, op: op} }

// nativeForm returns the opcode encoding op on e and the lowest level with
// its 128-bit form. Shifts return the form taking an xmm count.
func nativeForm(op lanes.Op, e lanes.Elem) (form, target.Level, bool) {
	if e.IsFloat() {
		return floatForm(op, e)
	}
	signed := e.IsSigned()
	pick := func(bits8, bits16, bits32, bits64 byte) (form, target.Level, bool) {
		var o byte
		switch e.Bits {
		case 8:
			o = bits8
		case 16:
			o = bits16
		case 32:
			o = bits32
		case 64:
			o = bits64
		}
		if o == 0 {
			return form{}, 0, false
		}
		return p66(o), target.SSE2, true
	}
	switch op {
	case lanes.OpAdd:
		return pick(0xFC, 0xFD, 0xFE, 0xD4)
	case lanes.OpSub:
		return pick(0xF8, 0xF9, 0xFA, 0xFB)
	case lanes.OpAds:
		if signed {
			return pick(0xEC, 0xED, 0, 0)
		}
		return pick(0xDC, 0xDD, 0, 0)
	case lanes.OpSbs:
		if signed {
			return pick(0xE8, 0xE9, 0, 0)
		}
		return pick(0xD8, 0xD9, 0, 0)
	case lanes.OpMul:
		switch e.Bits {
		case 16:
			return p66(0xD5), target.SSE2, true
		case 32:
			return p6638(0x40), target.SSE4, true
		}
	case lanes.OpMin, lanes.OpMax:
		return minMaxForm(op == lanes.OpMax, e)
	case lanes.OpCeq:
		if e.Bits == 64 {
			return p6638(0x29), target.SSE4, true
		}
		return pick(0x74, 0x75, 0x76, 0)
	case lanes.OpCgt:
		if !signed {
			break
		}
		if e.Bits == 64 {
			return p6638(0x37), target.SSE4, true
		}
		return pick(0x64, 0x65, 0x66, 0)
	case lanes.OpShl:
		return pick(0, 0xF1, 0xF2, 0xF3)
	case lanes.OpShr:
		if signed {
			return pick(0, 0xE1, 0xE2, 0)
		}
		return pick(0, 0xD1, 0xD2, 0xD3)
	case lanes.OpSvl, lanes.OpSvr:
		return varShiftForm(op, e)
	}
	return form{}, 0, false
}

// minMaxForm: SSE2 only has unsigned bytes and signed words.
func minMaxForm(isMax bool, e lanes.Elem) (form, target.Level, bool) {
	type mm struct {
		min, max byte
		sse2     bool
	}
	var t mm
	switch {
	case e.Bits == 8 && !e.IsSigned():
		t = mm{0xDA, 0xDE, true}
	case e.Bits == 16 && e.IsSigned():
		t = mm{0xEA, 0xEE, true}
	case e.Bits == 8:
		t = mm{0x38, 0x3C, false}
	case e.Bits == 16:
		t = mm{0x3A, 0x3E, false}
	case e.Bits == 32 && e.IsSigned():
		t = mm{0x39, 0x3D, false}
	case e.Bits == 32:
		t = mm{0x3B, 0x3F, false}
	default:
		return form{}, 0, false
	}
	o := t.min
	if isMax {
		o = t.max
	}
	if t.sse2 {
		return p66(o), target.SSE2, true
	}
	return p6638(o), target.SSE4, true
}

// varShiftForm covers the AVX2 per-lane shifts; there is no 64-bit
// arithmetic form and nothing below 32 bits.
func varShiftForm(op lanes.Op, e lanes.Elem) (form, target.Level, bool) {
	if e.Bits != 32 && e.Bits != 64 {
		return form{}, 0, false
	}
	w := e.Bits == 64
	switch {
	case op == lanes.OpSvl:
		return form{pp: pp66, mm: map0F38, op: 0x47, w: w}, target.AVX2, true
	case !e.IsSigned():
		return form{pp: pp66, mm: map0F38, op: 0x45, w: w}, target.AVX2, true
	case !w:
		return form{pp: pp66, mm: map0F38, op: 0x46}, target.AVX2, true
	}
	return form{}, 0, false
}

func floatForm(op lanes.Op, e lanes.Elem) (form, target.Level, bool) {
	pp := byte(ppNone)
	if e.Bits == 64 {
		pp = pp66
	}
	var o byte
	switch op {
	case lanes.OpAdd:
		o = 0x58
	case lanes.OpMul:
		o = 0x59
	case lanes.OpSub:
		o = 0x5C
	case lanes.OpMin:
		o = 0x5D
	case lanes.OpDiv:
		o = 0x5E
	case lanes.OpMax:
		o = 0x5F
	case lanes.OpCeq, lanes.OpCne, lanes.OpClt, lanes.OpCle:
		o = 0xC2
	default:
		return form{}, 0, false
	}
	return form{pp: pp, mm: map0F, op: o}, target.SSE2, true
}

// floatPredicate is the cmpps immediate of c. Ordered predicates are false
// on NaN lanes, neq is true.
func floatPredicate(c lanes.Op) byte {
	switch c {
	case lanes.OpClt:
		return X86_CMP_LT_OS
	case lanes.OpCle:
		return X86_CMP_LE_OS
	case lanes.OpCne:
		return X86_CMP_NEQ_UQ
	}
	return X86_CMP_EQ_OQ
}

// scalarOp lists what the one-lane-per-step fallback can compute.
func scalarOp(op lanes.Op, e lanes.Elem) bool {
	if e.IsFloat() {
		return false
	}
	switch op {
	case lanes.OpAdd, lanes.OpSub, lanes.OpMul, lanes.OpMin, lanes.OpMax,
		lanes.OpCeq, lanes.OpShl, lanes.OpShr, lanes.OpSvl, lanes.OpSvr:
		return true
	case lanes.OpCgt:
		return e.IsSigned()
	}
	return false
}

// planFor is the fallback rule: native when the level has the form at this
// width, two VEX.128 halves for AVX1 256-bit integers, scalar lanes when
// no vector form exists.
func planFor(k fallback.Key) (fallback.Plan, bool) {
	if _, lvl, ok := nativeForm(k.Op, k.Elem); ok && lvl <= k.Level {
		if k.Width == 16 || k.Elem.IsFloat() || k.Level >= target.AVX2 {
			return fallback.Plan{Unit: fallback.None, Wide: k.Width, Narrow: k.Width}, true
		}
		if lvl <= target.AVX1 {
			return fallback.Plan{Unit: fallback.Vector, Wide: k.Width, Narrow: 16}, true
		}
	}
	if scalarOp(k.Op, k.Elem) {
		return fallback.Plan{Unit: fallback.Scalar, Wide: k.Width, Narrow: k.Elem.Bytes()}, true
	}
	return fallback.Plan{}, false
}

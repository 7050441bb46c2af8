package lanes

import "math"

func boolMask(e Elem, b bool) uint64 {
	if b {
		return e.MaskBits()
	}
	return 0
}

func intLane(op Op, e Elem, a, b uint64) uint64 {
	bits := e.Bits
	m := e.MaskBits()
	a &= m
	b &= m
	if e.Kind == Signed {
		sa, sb := signed(a, bits), signed(b, bits)
		lo := int64(-1) << uint(bits-1)
		hi := -(lo + 1)
		switch op {
		case OpAds:
			return uint64(addSat(sa, sb, lo, hi)) & m
		case OpSbs:
			return uint64(subSat(sa, sb, lo, hi)) & m
		case OpMin:
			return uint64(minOf(sa, sb)) & m
		case OpMax:
			return uint64(maxOf(sa, sb)) & m
		case OpShr, OpSvr:
			return uint64(sa>>uint(b&uint64(bits-1))) & m
		case OpCeq:
			return boolMask(e, sa == sb)
		case OpCne:
			return boolMask(e, sa != sb)
		case OpClt:
			return boolMask(e, sa < sb)
		case OpCle:
			return boolMask(e, sa <= sb)
		case OpCgt:
			return boolMask(e, sa > sb)
		case OpCge:
			return boolMask(e, sa >= sb)
		}
	} else {
		switch op {
		case OpAds:
			return addSatU(a, b, m)
		case OpSbs:
			return subSatU(a, b)
		case OpMin:
			return minOf(a, b)
		case OpMax:
			return maxOf(a, b)
		case OpShr, OpSvr:
			return a >> uint(b&uint64(bits-1))
		case OpCeq:
			return boolMask(e, a == b)
		case OpCne:
			return boolMask(e, a != b)
		case OpClt:
			return boolMask(e, a < b)
		case OpCle:
			return boolMask(e, a <= b)
		case OpCgt:
			return boolMask(e, a > b)
		case OpCge:
			return boolMask(e, a >= b)
		}
	}
	switch op {
	case OpAdd:
		return (a + b) & m
	case OpSub:
		return (a - b) & m
	case OpMul:
		return (a * b) & m
	case OpShl, OpSvl:
		return (a << uint(b&uint64(bits-1))) & m
	}
	return 0
}

// floatLane follows the x86 rules: min/max return the second operand when
// either is NaN; ordered comparators are false and cne is true on NaN.
func floatLane(op Op, e Elem, a, b uint64) uint64 {
	var fa, fb float64
	if e.Bits == 32 {
		fa, fb = float64(math.Float32frombits(uint32(a))), float64(math.Float32frombits(uint32(b)))
	} else {
		fa, fb = math.Float64frombits(a), math.Float64frombits(b)
	}
	var r float64
	switch op {
	case OpAdd:
		r = fa + fb
	case OpSub:
		r = fa - fb
	case OpMul:
		r = fa * fb
	case OpDiv:
		r = fa / fb
	case OpMin:
		if fa < fb {
			return a
		}
		return b
	case OpMax:
		if fa > fb {
			return a
		}
		return b
	case OpCeq:
		return boolMask(e, fa == fb)
	case OpCne:
		return boolMask(e, !(fa == fb))
	case OpClt:
		return boolMask(e, fa < fb)
	case OpCle:
		return boolMask(e, fa <= fb)
	case OpCgt:
		return boolMask(e, fa > fb)
	case OpCge:
		return boolMask(e, fa >= fb)
	default:
		return 0
	}
	if e.Bits == 32 {
		// single precision arithmetic rounds once, in float32
		switch op {
		case OpAdd:
			return uint64(math.Float32bits(float32(fa) + float32(fb)))
		case OpSub:
			return uint64(math.Float32bits(float32(fa) - float32(fb)))
		case OpMul:
			return uint64(math.Float32bits(float32(fa) * float32(fb)))
		case OpDiv:
			return uint64(math.Float32bits(float32(fa) / float32(fb)))
		}
	}
	return math.Float64bits(r)
}

// Lane evaluates op on one lane pair.
func Lane(op Op, e Elem, a, b uint64) uint64 {
	if e.IsFloat() {
		return floatLane(op, e, a, b)
	}
	return intLane(op, e, a, b)
}

// Eval applies a lanewise operation. Shl/Shr take their count from the
// first lane of b; every other operation pairs lanes. Logic operations
// ignore e.
func Eval(op Op, e Elem, a, b Vector) Vector {
	out := make(Vector, len(a))
	switch op {
	case OpAnd, OpAnn, OpOrr, OpOrn, OpXor:
		for i := range a {
			out[i] = logicByte(op, a[i], b[i])
		}
		return out
	case OpNot:
		for i := range a {
			out[i] = ^a[i]
		}
		return out
	case OpMov:
		copy(out, b)
		return out
	}
	n := a.Len(e)
	var count uint64
	if op == OpShl || op == OpShr {
		count = b.Get(e, 0)
	}
	for i := 0; i < n; i++ {
		var bv uint64
		if op == OpShl || op == OpShr {
			bv = count
		} else {
			bv = b.Get(e, i)
		}
		out.Set(e, i, Lane(op, e, a.Get(e, i), bv))
	}
	return out
}

func logicByte(op Op, a, b byte) byte {
	switch op {
	case OpAnd:
		return a & b
	case OpAnn:
		return ^a & b
	case OpOrr:
		return a | b
	case OpOrn:
		return ^a | b
	case OpXor:
		return a ^ b
	}
	return 0
}

// ShiftImm shifts every lane of a by count.
func ShiftImm(op Op, e Elem, a Vector, count uint64) Vector {
	out := make(Vector, len(a))
	for i := 0; i < a.Len(e); i++ {
		out.Set(e, i, Lane(op, e, a.Get(e, i), count))
	}
	return out
}

// Merge returns (src & mask) | (dst &^ mask).
func Merge(dst, src, mask Vector) Vector {
	out := make(Vector, len(dst))
	for i := range dst {
		out[i] = src[i]&mask[i] | dst[i]&^mask[i]
	}
	return out
}

// MaskNone reports that no byte of m has its top bit set.
func MaskNone(m Vector) bool {
	for _, b := range m {
		if b&0x80 != 0 {
			return false
		}
	}
	return true
}

// MaskFull reports that every byte of m has its top bit set.
func MaskFull(m Vector) bool {
	for _, b := range m {
		if b&0x80 == 0 {
			return false
		}
	}
	return true
}

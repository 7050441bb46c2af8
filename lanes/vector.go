package lanes

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"
)

// Vector is a little-endian lane buffer.
type Vector []byte

// Len returns the number of e lanes in v.
func (v Vector) Len(e Elem) int { return len(v) / e.Bytes() }

// Get returns the raw bits of lane i.
func (v Vector) Get(e Elem, i int) uint64 {
	o := i * e.Bytes()
	switch e.Bits {
	case 8:
		return uint64(v[o])
	case 16:
		return uint64(binary.LittleEndian.Uint16(v[o:]))
	case 32:
		return uint64(binary.LittleEndian.Uint32(v[o:]))
	default:
		return binary.LittleEndian.Uint64(v[o:])
	}
}

// Set stores the low bits of x into lane i.
func (v Vector) Set(e Elem, i int, x uint64) {
	o := i * e.Bytes()
	switch e.Bits {
	case 8:
		v[o] = byte(x)
	case 16:
		binary.LittleEndian.PutUint16(v[o:], uint16(x))
	case 32:
		binary.LittleEndian.PutUint32(v[o:], uint32(x))
	default:
		binary.LittleEndian.PutUint64(v[o:], x)
	}
}

// Pack builds a vector of e lanes from raw values.
func Pack(e Elem, vals ...uint64) Vector {
	v := make(Vector, len(vals)*e.Bytes())
	for i, x := range vals {
		v.Set(e, i, x)
	}
	return v
}

// PackFloat builds a float vector.
func PackFloat(e Elem, vals ...float64) Vector {
	v := make(Vector, len(vals)*e.Bytes())
	for i, x := range vals {
		if e.Bits == 32 {
			v.Set(e, i, uint64(math.Float32bits(float32(x))))
		} else {
			v.Set(e, i, math.Float64bits(x))
		}
	}
	return v
}

// Unpack returns the raw lanes of v.
func Unpack(e Elem, v Vector) []uint64 {
	out := make([]uint64, v.Len(e))
	for i := range out {
		out[i] = v.Get(e, i)
	}
	return out
}

// signed sign-extends the low bits of x.
func signed(x uint64, bits int) int64 {
	shift := uint(64 - bits)
	return int64(x<<shift) >> shift
}

func clamp[T constraints.Integer](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func addSat[T constraints.Signed](a, b, lo, hi T) T {
	s := a + b
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		if a >= 0 {
			return hi
		}
		return lo
	}
	return clamp(s, lo, hi)
}

func subSat[T constraints.Signed](a, b, lo, hi T) T {
	s := a - b
	if (a >= 0) != (b >= 0) && (s >= 0) != (a >= 0) {
		if a >= 0 {
			return hi
		}
		return lo
	}
	return clamp(s, lo, hi)
}

func addSatU[T constraints.Unsigned](a, b, hi T) T {
	s := a + b
	if s < a {
		return hi
	}
	return minOf(s, hi)
}

func subSatU[T constraints.Unsigned](a, b T) T {
	if a < b {
		return 0
	}
	return a - b
}

package lanes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndU16(t *testing.T) {
	a := Pack(U16, 0, 1, 2, 3, 4, 5, 6, 7)
	b := Pack(U16, 7, 6, 5, 4, 3, 2, 1, 0)
	assert.Equal(t, []uint64{7, 7, 7, 7, 7, 7, 7, 7}, Unpack(U16, Eval(OpAdd, U16, a, b)))
	assert.Equal(t, []uint64{0, 0, 0, 0, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF}, Unpack(U16, Eval(OpCgt, U16, a, b)))
}

// boundary samples per element: 0, 1, -1/all-ones, min and max representable
func samples(e Elem) []uint64 {
	m := e.MaskBits()
	out := []uint64{0, 1, 2, m, m - 1, 7}
	if e.Kind == Signed {
		min := uint64(1) << uint(e.Bits-1)
		out = append(out, min, min-1, min+1)
	} else {
		out = append(out, m>>1, m>>1+1)
	}
	return out
}

func TestComparatorIdentities(t *testing.T) {
	for _, e := range Integers {
		t.Run(e.String(), func(t *testing.T) {
			s := samples(e)
			for _, a := range s {
				for _, b := range s {
					min := Lane(OpMin, e, a, b)
					max := Lane(OpMax, e, a, b)
					require.Equal(t, Lane(OpCge, e, a, b), Lane(OpCeq, e, min, b), "cge %x %x", a, b)
					require.Equal(t, Lane(OpCgt, e, a, b), Lane(OpCne, e, max, b), "cgt %x %x", a, b)
					require.Equal(t, Lane(OpClt, e, a, b), Lane(OpCgt, e, b, a), "clt %x %x", a, b)
					require.Equal(t, Lane(OpCle, e, a, b), Lane(OpCge, e, b, a), "cle %x %x", a, b)
					require.Equal(t, Lane(OpCne, e, a, b), ^Lane(OpCeq, e, a, b)&e.MaskBits(), "cne %x %x", a, b)
				}
			}
		})
	}
}

func TestShiftCountMasking(t *testing.T) {
	for _, e := range Integers {
		t.Run(e.String(), func(t *testing.T) {
			a := Pack(e, samples(e)...)
			for c := uint64(0); c < uint64(e.Bits); c++ {
				for _, op := range []Op{OpShl, OpShr} {
					assert.Equal(t, ShiftImm(op, e, a, c), ShiftImm(op, e, a, c+uint64(e.Bits)))
				}
			}
		})
	}
	v := Pack(U16, 0x8001)
	assert.Equal(t, []uint64{0x0002}, Unpack(U16, ShiftImm(OpShl, U16, v, 17)))
	assert.Equal(t, []uint64{0xC000}, Unpack(S16, ShiftImm(OpShr, S16, v, 17)))
	assert.Equal(t, []uint64{0x4000}, Unpack(U16, ShiftImm(OpShr, U16, v, 17)))
}

func TestVariableShiftUsesEveryLane(t *testing.T) {
	a := Pack(U32, 1, 1, 1, 1)
	c := Pack(U32, 0, 1, 33, 31)
	assert.Equal(t, []uint64{1, 2, 2, 0x80000000}, Unpack(U32, Eval(OpSvl, U32, a, c)))
	// plain shifts only read lane 0
	assert.Equal(t, []uint64{1, 1, 1, 1}, Unpack(U32, Eval(OpShl, U32, a, c)))
}

func TestSaturation(t *testing.T) {
	tests := []struct {
		op   Op
		e    Elem
		a, b uint64
		want uint64
	}{
		{OpAds, U8, 200, 100, 0xFF},
		{OpAds, S8, 0x7F, 1, 0x7F},
		{OpAds, S8, 0x80, 0xFF, 0x80},
		{OpSbs, U16, 5, 9, 0},
		{OpSbs, S16, 0x8000, 1, 0x8000},
		{OpAds, U64, ^uint64(0), 1, ^uint64(0)},
		{OpSbs, S64, 1 << 63, 1, 1 << 63},
		{OpAds, S32, 0x7FFFFFFF, 0x7FFFFFFF, 0x7FFFFFFF},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Lane(tc.op, tc.e, tc.a, tc.b), "%s %s", tc.op, tc.e)
	}
}

func TestFloatPolicy(t *testing.T) {
	nan := math.Float32bits(float32(math.NaN()))
	one := math.Float32bits(1)
	for _, op := range []Op{OpCeq, OpClt, OpCle, OpCgt, OpCge} {
		assert.Zero(t, Lane(op, F32, uint64(nan), uint64(one)), op.String())
	}
	assert.Equal(t, uint64(0xFFFFFFFF), Lane(OpCne, F32, uint64(nan), uint64(one)))
	assert.Equal(t, uint64(one), Lane(OpMin, F32, uint64(nan), uint64(one)))

	a := PackFloat(F64, 1.5, -2)
	b := PackFloat(F64, 0.5, 4)
	assert.Equal(t, PackFloat(F64, 3, -0.5), Eval(OpDiv, F64, a, b))
	assert.Equal(t, PackFloat(F32, 1.75), Eval(OpAdd, F32, PackFloat(F32, 1.5), PackFloat(F32, 0.25)))
}

func TestMergeAndMask(t *testing.T) {
	dst := Pack(U32, 1, 2, 3, 4)
	src := Pack(U32, 10, 20, 30, 40)
	mixed := Pack(U32, 0, 0xFFFFFFFF, 0, 0xFFFFFFFF)
	assert.Equal(t, []uint64{1, 20, 3, 40}, Unpack(U32, Merge(dst, src, mixed)))
	assert.Equal(t, dst, Merge(dst, src, Pack(U32, 0, 0, 0, 0)))
	full := Pack(U32, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF)
	assert.Equal(t, src, Merge(dst, src, full))

	assert.True(t, MaskFull(full))
	assert.False(t, MaskNone(full))
	assert.True(t, MaskNone(Pack(U32, 0, 0, 0, 0)))
	assert.False(t, MaskNone(mixed))
	assert.False(t, MaskFull(mixed))
}

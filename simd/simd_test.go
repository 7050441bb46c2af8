package simd_test

import (
	"math/rand"
	"testing"

	"github.com/colorfulnotion/rtsimd/interp"
	"github.com/colorfulnotion/rtsimd/lanes"
	. "github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	slotA   = 0x000
	slotB   = 0x080
	slotOut = 0x100
	memSize = 0x500
)

func cfgFor(t *testing.T, name string) target.Config {
	c, err := target.Parse(name)
	require.NoError(t, err)
	c.Scratch.Offset = 0x400
	return c
}

func run(t *testing.T, cfg target.Config, mem []byte, prog func(a *simd.Assembler), opts ...interp.Option) []byte {
	t.Helper()
	m, err := interp.Exec(cfg, Rebp.Index, mem, prog, opts...)
	require.NoError(t, err)
	return m.Mem
}

func binaryProg(op simd.Op, e simd.Elem, fromMem bool) func(a *simd.Assembler) {
	return func(a *simd.Assembler) {
		a.Mov(Xmm1, M(Rebp, DP(slotA)))
		a.Mov(Xmm2, M(Rebp, DP(slotB)))
		var s2 Operand = Xmm2
		if fromMem {
			s2 = M(Rebp, DP(slotB))
		}
		a.Emit3(op, e, Xmm3, Xmm1, s2)
		a.Mov(M(Rebp, DP(slotOut)), Xmm3)
	}
}

func randomLanes(r *rand.Rand, e simd.Elem, n int) []uint64 {
	edge := []uint64{0, 1, e.MaskBits(), e.MaskBits() >> 1, e.MaskBits()>>1 + 1}
	out := make([]uint64, n)
	for i := range out {
		if i < len(edge) {
			out[i] = edge[i]
		} else {
			out[i] = r.Uint64() & e.MaskBits()
		}
	}
	return out
}

func TestEndToEndScenario(t *testing.T) {
	for _, opts := range [][]interp.Option{nil, {interp.EqualityOnly()}} {
		cfg := cfgFor(t, "x86_64-sse2-128")
		mem := make([]byte, memSize)
		copy(mem[slotA:], lanes.Pack(simd.U16, 0, 1, 2, 3, 4, 5, 6, 7))
		copy(mem[slotB:], lanes.Pack(simd.U16, 7, 6, 5, 4, 3, 2, 1, 0))
		out := run(t, cfg, mem, func(a *simd.Assembler) {
			a.Mov(Xmm1, M(Rebp, DP(slotA)))
			a.Mov(Xmm2, Xmm1)
			a.Add(simd.U16, Xmm1, M(Rebp, DP(slotB)))
			a.Mov(M(Rebp, DP(slotOut)), Xmm1)
			a.Cgt(simd.U16, Xmm2, M(Rebp, DP(slotB)))
			a.Mov(M(Rebp, DP(slotOut+0x10)), Xmm2)
		}, opts...)
		assert.Equal(t, []uint64{7, 7, 7, 7, 7, 7, 7, 7}, lanes.Unpack(simd.U16, out[slotOut:slotOut+16]))
		assert.Equal(t, []uint64{0, 0, 0, 0, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF}, lanes.Unpack(simd.U16, out[slotOut+16:slotOut+32]))
	}
}

func TestCompareDerivationsMatchReference(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, name := range []string{"x86_64-sse2-128", "mips32-msa-128x2", "x86_64-avx2-256x2"} {
		cfg := cfgFor(t, name)
		for _, e := range lanes.Integers {
			n := cfg.Lanes(e.Bits)
			a := lanes.Pack(e, randomLanes(r, e, n)...)
			b := lanes.Pack(e, randomLanes(r, e, n)...)
			for i := 0; i < n; i += 3 {
				b.Set(e, i, a.Get(e, i))
			}
			for _, c := range lanes.Compares {
				want := lanes.Eval(c, e, a, b)
				for _, fromMem := range []bool{false, true} {
					for _, opts := range [][]interp.Option{nil, {interp.EqualityOnly()}} {
						mem := make([]byte, memSize)
						copy(mem[slotA:], a)
						copy(mem[slotB:], b)
						out := run(t, cfg, mem, binaryProg(c, e, fromMem), opts...)
						require.Equal(t, want, lanes.Vector(out[slotOut:slotOut+len(a)]), "%s %s.%s mem=%v", name, c, e, fromMem)
					}
				}
			}
		}
	}
}

func TestCompareRoutes(t *testing.T) {
	cfg := cfgFor(t, "x86_64-sse2-128")
	full := simd.New(interp.New(cfg))
	eq := simd.New(interp.New(cfg, interp.EqualityOnly()))
	assert.Equal(t, simd.RouteDirect, full.CompareRoute(lanes.OpCge, simd.U32))
	assert.Equal(t, simd.RouteMinMax, eq.CompareRoute(lanes.OpCge, simd.U32))
	assert.Equal(t, simd.RouteNotEq, eq.CompareRoute(lanes.OpCne, simd.S8))
	assert.Equal(t, simd.RouteDirect, eq.CompareRoute(lanes.OpClt, simd.F32))
	assert.Equal(t, simd.RouteNone, full.CompareRoute(lanes.OpAdd, simd.U32))
}

func TestWideningConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	single := cfgFor(t, "x86_64-avx2-256")
	paired := cfgFor(t, "x86_64-sse4-128x2")
	mpaired := cfgFor(t, "mips64-msa-128x2")
	require.Equal(t, single.VectorBytes(), paired.VectorBytes())
	ops := []simd.Op{lanes.OpAdd, lanes.OpSub, lanes.OpMin, lanes.OpCgt, lanes.OpXor, lanes.OpSvr, lanes.OpShl}
	for _, e := range []simd.Elem{simd.U8, simd.S16, simd.U32, simd.S64} {
		a := lanes.Pack(e, randomLanes(r, e, single.Lanes(e.Bits))...)
		b := lanes.Pack(e, randomLanes(r, e, single.Lanes(e.Bits))...)
		for _, op := range ops {
			var outs [][]byte
			for _, cfg := range []target.Config{single, paired, mpaired} {
				mem := make([]byte, memSize)
				copy(mem[slotA:], a)
				copy(mem[slotB:], b)
				out := run(t, cfg, mem, binaryProg(op, e, true))
				outs = append(outs, out[slotOut:slotOut+32])
			}
			assert.Equal(t, outs[0], outs[1], "%s.%s", op, e)
			assert.Equal(t, outs[0], outs[2], "%s.%s", op, e)
		}
	}
}

func TestShiftCountMasking(t *testing.T) {
	cfg := cfgFor(t, "x86_64-sse2-128x2")
	for _, e := range lanes.Integers {
		for _, op := range []simd.Op{lanes.OpShl, lanes.OpShr} {
			src := lanes.Pack(e, randomLanes(rand.New(rand.NewSource(3)), e, cfg.Lanes(e.Bits))...)
			shift := func(count Operand) []byte {
				mem := make([]byte, memSize)
				copy(mem[slotA:], src)
				// memory counts come from lane 0 only
				cnt := make(lanes.Vector, cfg.VectorBytes())
				cnt.Set(e, 0, uint64(e.Bits+1))
				cnt.Set(e, 1, 5)
				copy(mem[slotB:], cnt)
				out := run(t, cfg, mem, func(a *simd.Assembler) {
					a.Mov(Xmm1, M(Rebp, DP(slotA)))
					a.Emit3(op, e, Xmm2, Xmm1, count)
					a.Mov(M(Rebp, DP(slotOut)), Xmm2)
				})
				return out[slotOut : slotOut+cfg.VectorBytes()]
			}
			one := shift(IB(1))
			assert.Equal(t, one, shift(IB(int64(e.Bits+1))), "%s.%s imm", op, e)
			assert.Equal(t, one, shift(M(Rebp, DP(slotB))), "%s.%s mem", op, e)
		}
	}
}

func TestMaskMerge(t *testing.T) {
	cfg := cfgFor(t, "mips32-msa-128x2")
	dst := lanes.Pack(simd.U32, 1, 2, 3, 4, 5, 6, 7, 8)
	src := lanes.Pack(simd.U32, 10, 20, 30, 40, 50, 60, 70, 80)
	const m = 0xFFFFFFFF
	masks := []lanes.Vector{
		lanes.Pack(simd.U32, 0, 0, 0, 0, 0, 0, 0, 0),
		lanes.Pack(simd.U32, m, m, m, m, m, m, m, m),
		lanes.Pack(simd.U32, m, 0, m, 0, 0, m, 0, m),
	}
	for _, mask := range masks {
		for _, fromMem := range []bool{false, true} {
			mem := make([]byte, memSize)
			copy(mem[slotA:], dst)
			copy(mem[slotB:], src)
			copy(mem[slotOut+0x80:], mask)
			out := run(t, cfg, mem, func(a *simd.Assembler) {
				a.Mov(Xmm0, M(Rebp, DP(slotOut+0x80)))
				a.Mov(Xmm3, M(Rebp, DP(slotA)))
				if fromMem {
					a.Mmv(Xmm3, M(Rebp, DP(slotB)))
				} else {
					a.Mov(Xmm4, M(Rebp, DP(slotB)))
					a.Mmv(Xmm3, Xmm4)
				}
				a.Mov(M(Rebp, DP(slotOut)), Xmm3)
			})
			assert.Equal(t, lanes.Merge(dst, src, mask), lanes.Vector(out[slotOut:slotOut+32]))
		}
	}
}

func TestNegatedLogicSynthesis(t *testing.T) {
	cfg := cfgFor(t, "x86_64-sse2-128x2")
	a := lanes.Pack(simd.U32, 0xF0F0F0F0, 0, 0xFFFFFFFF, 0x12345678, 1, 2, 3, 4)
	b := lanes.Pack(simd.U32, 0xFF00FF00, 0xFFFFFFFF, 0, 0x0F0F0F0F, 3, 3, 3, 3)
	for _, op := range []simd.Op{lanes.OpAnn, lanes.OpOrn} {
		want := lanes.Eval(op, simd.U32, a, b)
		for _, opts := range [][]interp.Option{nil, {interp.NoNegatedLogic()}} {
			mem := make([]byte, memSize)
			copy(mem[slotA:], a)
			copy(mem[slotB:], b)
			// destination aliases the second source
			out := run(t, cfg, mem, func(as *simd.Assembler) {
				as.Mov(Xmm1, M(Rebp, DP(slotA)))
				as.Mov(Xmm2, M(Rebp, DP(slotB)))
				as.Emit3(op, simd.U32, Xmm2, Xmm1, Xmm2)
				as.Mov(M(Rebp, DP(slotOut)), Xmm2)
			}, opts...)
			assert.Equal(t, want, lanes.Vector(out[slotOut:slotOut+32]), op.String())
		}
	}
}

func TestMaskJumpLoop(t *testing.T) {
	// count lanes of A greater than 4, one vector per iteration, until a
	// vector has no such lane
	for _, name := range []string{"x86_64-avx1-256x2", "mips32-msa-128"} {
		cfg := cfgFor(t, name)
		vb := int64(cfg.VectorBytes())
		mem := make([]byte, 0x800)
		e := simd.U32
		n := int(vb) / 4
		for i := 0; i < 3*n; i++ {
			v := uint64(9)
			if i >= 2*n {
				v = 1
			}
			lanes.Vector(mem[0x200:]).Set(e, i, v)
		}
		for i := 0; i < n; i++ {
			lanes.Vector(mem[slotB:]).Set(e, i, 4)
		}
		m, err := interp.Exec(cfg, Rebp.Index, mem, func(a *simd.Assembler) {
			top := a.NewLabel("top")
			done := a.NewLabel("done")
			a.MovX(Resi, IM(0x200))
			a.MovX(Rebx, IB(0))
			a.Mov(Xmm2, M(Rebp, DP(slotB)))
			a.Bind(top)
			a.Mov(Xmm1, M(Resi, PLAIN))
			a.Cgt(e, Xmm1, Xmm2)
			a.Mkj(Xmm1, simd.NONE, done)
			a.AddX(Rebx, IB(1))
			a.AddX(Resi, IV(vb))
			a.CmjX(Rebx, IB(10), simd.LTU, top)
			a.Bind(done)
			a.MovX(M(Rebp, DP(slotOut)), Rebx)
		})
		require.NoError(t, err, name)
		assert.Equal(t, uint64(2), m.R[Rebx.Index], name)
		assert.Equal(t, byte(2), m.Mem[slotOut], name)
	}
}

func TestStickyErrors(t *testing.T) {
	cfg := cfgFor(t, "x86_64-sse2-128x2")
	a := simd.New(interp.New(cfg))
	a.Add(simd.U16, Xmm(6), Xmm1)
	require.ErrorIs(t, a.Err(), rterrors.ErrRegisterRange)
	assert.Contains(t, a.Err().Error(), "#1 add.u16")
	a.Add(simd.U16, Xmm1, Xmm2)
	assert.Equal(t, 2, a.Count())
	_, err := a.Code()
	assert.ErrorIs(t, err, rterrors.ErrRegisterRange)

	for _, tc := range []struct {
		name string
		prog func(a *simd.Assembler)
		want error
	}{
		{"int div", func(a *simd.Assembler) { a.Div(simd.U32, Xmm1, Xmm2) }, rterrors.ErrElement},
		{"float shift", func(a *simd.Assembler) { a.Shl(simd.F32, Xmm1, IB(1)) }, rterrors.ErrElement},
		{"disp window", func(a *simd.Assembler) { a.Mov(Xmm1, M(Rebp, DP(0x1000))) }, rterrors.ErrDisplacementRange},
		{"imm window", func(a *simd.Assembler) { a.Shl(simd.U16, Xmm1, IB(0x100)) }, rterrors.ErrImmediateRange},
		{"base as vector", func(a *simd.Assembler) { a.Add(simd.U8, Reax, Xmm1) }, rterrors.ErrOperandKind},
		{"store imm", func(a *simd.Assembler) { a.MovX(M(Rebp, PLAIN), IB(1)) }, rterrors.ErrOperandKind},
		{"immediate counts for svl", func(a *simd.Assembler) { a.Svl(simd.U32, Xmm1, IB(1)) }, rterrors.ErrOperandKind},
		{"unbound label", func(a *simd.Assembler) { a.Jmp(a.NewLabel("nowhere")) }, rterrors.ErrLabel},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := simd.New(interp.New(cfg))
			tc.prog(a)
			_, err := a.Code()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

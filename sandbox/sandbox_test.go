//go:build unicorn
// +build unicorn

package sandbox

import (
	"math/rand"
	"testing"

	"github.com/colorfulnotion/rtsimd/interp"
	"github.com/colorfulnotion/rtsimd/lanes"
	. "github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/colorfulnotion/rtsimd/x86"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	slotA   = 0x000
	slotB   = 0x080
	slotOut = 0x100
	memSize = 0x200
)

func profiles(t *testing.T) []target.Config {
	var out []target.Config
	for _, name := range []string{"x86_64-sse2-128", "x86_64-sse4-128", "x86_64-sse2-128x2", "x86_64-sse4-128-x32-a32"} {
		c := target.MustParse(name)
		c.Scratch.Offset = memSize
		out = append(out, c)
	}
	return out
}

func lanesFor(r *rand.Rand, e simd.Elem, n int) lanes.Vector {
	if e.IsFloat() {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = (r.Float64() - 0.5) * 64
		}
		return lanes.PackFloat(e, vals...)
	}
	vals := make([]uint64, n)
	for i := range vals {
		vals[i] = r.Uint64() & e.MaskBits()
	}
	vals[0] = e.MaskBits()
	return lanes.Pack(e, vals...)
}

func TestSandboxMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	ops := append([]simd.Op{lanes.OpAnn, lanes.OpOrn, lanes.OpShl, lanes.OpShr, lanes.OpSvl, lanes.OpSvr}, lanes.Binary...)
	ops = append(ops, lanes.Compares...)
	for _, cfg := range profiles(t) {
		sel, err := x86.NewAssembler(cfg)
		require.NoError(t, err)
		for _, e := range lanes.All {
			for _, op := range ops {
				if sel.Support(op, e) == simd.Unsupported {
					continue
				}
				mem := make([]byte, memSize)
				n := cfg.Lanes(e.Bits)
				copy(mem[slotA:], lanesFor(r, e, n))
				b := lanesFor(r, e, n)
				if op == lanes.OpShl || op == lanes.OpShr {
					b.Set(e, 0, uint64(r.Intn(e.Bits+2)))
				}
				copy(mem[slotB:], b)
				prog := func(a *simd.Assembler) {
					a.Mov(Xmm1, M(Rebp, DP(slotA)))
					a.Emit3(op, e, Xmm3, Xmm1, M(Rebp, DP(slotB)))
					a.Mov(M(Rebp, DP(slotOut)), Xmm3)
				}
				want, err := interp.Exec(cfg, Rebp.Index, append([]byte(nil), mem...), prog)
				require.NoError(t, err)
				got, err := Run(cfg, Rebp.Index, mem, prog)
				require.NoError(t, err, "%s %s.%s", cfg, op, e)
				vb := cfg.VectorBytes()
				assert.Equal(t, want.Mem[slotOut:slotOut+vb], got.Mem[slotOut:slotOut+vb], "%s %s.%s", cfg, op, e)
			}
		}
	}
}

func TestSandboxBaseLoop(t *testing.T) {
	cfg := profiles(t)[0]
	res, err := Run(cfg, Rebp.Index, make([]byte, memSize), func(a *simd.Assembler) {
		top := a.NewLabel("top")
		a.MovX(Rebx, IB(0))
		a.MovX(Resi, IB(0))
		a.Bind(top)
		a.AddX(Resi, IB(3))
		a.AddX(Rebx, IB(1))
		a.CmjX(Rebx, IB(10), simd.LTU, top)
		a.ShlX(Resi, IB(2))
		a.MovX(M(Rebp, DP(slotOut)), Resi)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), res.R[Rebx.Index])
	assert.Equal(t, uint64(120), res.R[Resi.Index])
	assert.Equal(t, byte(120), res.Mem[slotOut])
}

func TestSandboxRejectsAVX(t *testing.T) {
	_, err := Run(target.MustParse("x86_64-avx2-256"), Rebp.Index, nil, func(*simd.Assembler) {})
	assert.Error(t, err)
}

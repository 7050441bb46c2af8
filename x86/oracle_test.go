package x86_test

import (
	"testing"

	. "github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	asm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	gx86 "github.com/twitchyliquid64/golang-asm/obj/x86"
)

// oracle assembles the same instruction with the Go toolchain's encoder.
func oracle(t *testing.T, build func(p *obj.Prog)) []byte {
	t.Helper()
	b, err := asm.NewBuilder("amd64", 64)
	require.NoError(t, err)
	p := b.NewProg()
	build(p)
	b.AddInstruction(p)
	return b.Assemble()
}

func xreg(i int) obj.Addr { return obj.Addr{Type: obj.TYPE_REG, Reg: gx86.REG_X0 + int16(i)} }

// rr is the Go operand order: source first, destination last.
func rr(as obj.As, src, dst int) func(p *obj.Prog) {
	return func(p *obj.Prog) {
		p.As = as
		p.From = xreg(src)
		p.To = xreg(dst)
	}
}

func TestAgainstGoAssembler(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		prog    func(a *simd.Assembler)
		build   func(p *obj.Prog)
	}{
		{"paddb", "x86_64-sse2-128", func(a *simd.Assembler) { a.Add(simd.U8, Xmm1, Xmm2) }, rr(gx86.APADDB, 2, 1)},
		{"paddq", "x86_64-sse2-128", func(a *simd.Assembler) { a.Add(simd.S64, Xmm3, Xmm4) }, rr(gx86.APADDQ, 4, 3)},
		{"psubw", "x86_64-sse2-128", func(a *simd.Assembler) { a.Sub(simd.U16, Xmm1, Xmm2) }, rr(gx86.APSUBW, 2, 1)},
		{"pmullw", "x86_64-sse2-128", func(a *simd.Assembler) { a.Mul(simd.S16, Xmm5, Xmm6) }, rr(gx86.APMULLW, 6, 5)},
		{"pcmpeqb", "x86_64-sse2-128", func(a *simd.Assembler) { a.Ceq(simd.U8, Xmm1, Xmm2) }, rr(gx86.APCMPEQB, 2, 1)},
		{"pcmpgtl", "x86_64-sse2-128", func(a *simd.Assembler) { a.Cgt(simd.S32, Xmm1, Xmm2) }, rr(gx86.APCMPGTL, 2, 1)},
		{"pminub", "x86_64-sse2-128", func(a *simd.Assembler) { a.Min(simd.U8, Xmm1, Xmm2) }, rr(gx86.APMINUB, 2, 1)},
		{"paddsw", "x86_64-sse2-128", func(a *simd.Assembler) { a.Ads(simd.S16, Xmm1, Xmm2) }, rr(gx86.APADDSW, 2, 1)},
		{"addps", "x86_64-sse2-128", func(a *simd.Assembler) { a.Add(simd.F32, Xmm1, Xmm2) }, rr(gx86.AADDPS, 2, 1)},
		{"mulpd", "x86_64-sse2-128", func(a *simd.Assembler) { a.Mul(simd.F64, Xmm1, Xmm2) }, rr(gx86.AMULPD, 2, 1)},
		{"divps", "x86_64-sse2-128", func(a *simd.Assembler) { a.Div(simd.F32, Xmm1, Xmm2) }, rr(gx86.ADIVPS, 2, 1)},
		{"andps", "x86_64-sse2-128", func(a *simd.Assembler) { a.And(Xmm1, Xmm2) }, rr(gx86.AANDPS, 2, 1)},
		{"xorps", "x86_64-sse2-128", func(a *simd.Assembler) { a.Xor(Xmm1, Xmm2) }, rr(gx86.AXORPS, 2, 1)},
		{"paddl high registers", "x86_64-sse2-128", func(a *simd.Assembler) { a.Add(simd.U32, Xmm9, XmmA) }, rr(gx86.APADDL, 10, 9)},
		{"psllw immediate", "x86_64-sse2-128", func(a *simd.Assembler) { a.Shl(simd.U16, Xmm1, IB(3)) },
			func(p *obj.Prog) {
				p.As = gx86.APSLLW
				p.From = obj.Addr{Type: obj.TYPE_CONST, Offset: 3}
				p.To = xreg(1)
			}},
		{"movups load", "x86_64-sse2-128", func(a *simd.Assembler) { a.Mov(Xmm1, M(Rebp, DP(0x40))) },
			func(p *obj.Prog) {
				p.As = gx86.AMOVUPS
				p.From = obj.Addr{Type: obj.TYPE_MEM, Reg: gx86.REG_BP, Offset: 0x40}
				p.To = xreg(1)
			}},
		{"vpaddd", "x86_64-avx1-128", func(a *simd.Assembler) { a.Add3(simd.U32, Xmm1, Xmm2, Xmm3) },
			func(p *obj.Prog) {
				p.As = gx86.AVPADDD
				p.From = xreg(3)
				p.SetFrom3(xreg(2))
				p.To = xreg(1)
			}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ours := encode(t, tc.profile, tc.prog)
			theirs := oracle(t, tc.build)
			require.GreaterOrEqual(t, len(theirs), len(ours))
			assert.Equal(t, theirs[:len(ours)], ours)
		})
	}
}

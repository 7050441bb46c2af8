package msa_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/msa"
	. "github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(t *testing.T, profile string, prog func(a *simd.Assembler)) []uint32 {
	t.Helper()
	a, err := msa.NewAssembler(target.MustParse(profile))
	require.NoError(t, err)
	prog(a)
	code, err := a.Code()
	require.NoError(t, err)
	require.Zero(t, len(code)%4)
	out := make([]uint32, len(code)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(code[4*i:])
	}
	return out
}

func TestVectorWords(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		prog    func(a *simd.Assembler)
		want    []uint32
	}{
		{"addv.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Add3(simd.U32, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7843104E}},
		{"and.v", "mips32-msa-128",
			func(a *simd.Assembler) { a.And3(Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7803105E}},
		{"nor.v for not", "mips32-msa-128",
			func(a *simd.Assembler) { a.Not2(Xmm1, Xmm2) },
			[]uint32{0x7842105E}},
		{"move.v", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, Xmm2) },
			[]uint32{0x78BE1059}},
		{"mulv.h", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mul(simd.U16, Xmm1, Xmm2) },
			[]uint32{0x78220852}},
		{"adds_u.b", "mips32-msa-128",
			func(a *simd.Assembler) { a.Ads(simd.U8, Xmm1, Xmm2) },
			[]uint32{0x79820850}},
		{"min_s.d", "mips64-msa-128",
			func(a *simd.Assembler) { a.Min(simd.S64, Xmm1, Xmm2) },
			[]uint32{0x7A62084E}},
		{"fadd.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Add3(simd.F32, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7803105B}},
		{"fadd.d", "mips32-msa-128",
			func(a *simd.Assembler) { a.Add3(simd.F64, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7823105B}},
		{"fclt.d", "mips32-msa-128",
			func(a *simd.Assembler) { a.Clt(simd.F64, Xmm1, Xmm2) },
			[]uint32{0x7922085A}},
		{"fcune.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Cne3(simd.F32, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7883105C}},
		{"clt_s.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Clt3(simd.S32, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7943104F}},
		{"cgt swaps into clt_s", "mips32-msa-128",
			func(a *simd.Assembler) { a.Cgt3(simd.S32, Xmm1, Xmm2, Xmm3) },
			[]uint32{0x7942184F}},
		{"integer cne is ceq then nor", "mips32-msa-128",
			func(a *simd.Assembler) { a.Cne(simd.U8, Xmm1, Xmm2) },
			[]uint32{0x7802084F, 0x7841085E}},
		{"slli.h masks the count", "mips32-msa-128",
			func(a *simd.Assembler) { a.Shl(simd.U16, Xmm1, IB(18)) },
			[]uint32{0x78620849}},
		{"srai.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Shr(simd.S32, Xmm1, IB(3)) },
			[]uint32{0x78C30849}},
		{"shift count from memory", "mips32-msa-128",
			func(a *simd.Assembler) { a.Shl(simd.U32, Xmm1, M(Redx, DP(0))) },
			[]uint32{0x780023E2, 0x78707BD9, 0x784F084D}},
		{"sra.h per lane", "mips32-msa-128",
			func(a *simd.Assembler) { a.Svr(simd.S16, Xmm1, Xmm2) },
			[]uint32{0x78A2084D}},
		{"bmnz.v", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mmv(Xmm1, Xmm2) },
			[]uint32{0x7880105E}},
		{"paired addv.w", "mips32-msa-128x2",
			func(a *simd.Assembler) { a.Add(simd.U32, Xmm1, Xmm2) },
			[]uint32{0x7842084E, 0x78528C4E}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, words(t, tc.profile, tc.prog))
		})
	}
}

func TestMemoryWords(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		prog    func(a *simd.Assembler)
		want    []uint32
	}{
		{"ld.w scaled offset", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, M(Redx, DP(16))) },
			[]uint32{0x78042062}},
		{"ld.w plain", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm0, M(Redx, PLAIN)) },
			[]uint32{0x78002022}},
		{"st.w", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(M(Redx, DP(0)), Xmm9) },
			[]uint32{0x78002266}},
		{"offset past the s10 window", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, M(Redx, DH(0x1000))) },
			[]uint32{0x24981000, 0x7800C062}},
		{"offset past 16 bits", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, M(Redx, DV(0x20000))) },
			[]uint32{0x3C180002, 0x0304C021, 0x7800C062}},
		{"offset past 16 bits on mips64", "mips64-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, M(Redx, DV(0x20000))) },
			[]uint32{0x3C180002, 0x0304C02D, 0x7800C062}},
		{"indexed through $at", "mips32-msa-128",
			func(a *simd.Assembler) { a.Mov(Xmm1, MI(Redx, Rebx, DP(0))) },
			[]uint32{0x00850821, 0x78000862}},
		{"paired load halves", "mips32-msa-128x2",
			func(a *simd.Assembler) { a.Mov(Xmm1, M(Redx, DP(0))) },
			[]uint32{0x78002062, 0x78042462}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, words(t, tc.profile, tc.prog))
		})
	}
}

func TestMaskJumpWords(t *testing.T) {
	for _, tc := range []struct {
		cond   simd.MaskCond
		branch uint32
	}{
		{simd.NONE, 0x456FFFFE},
		{simd.FULL, 0x478FFFFE},
	} {
		t.Run(tc.cond.String(), func(t *testing.T) {
			got := words(t, "mips32-msa-128", func(a *simd.Assembler) {
				l := a.NewLabel("top")
				a.Bind(l)
				a.Mkj(Xmm1, tc.cond, l)
			})
			assert.Equal(t, []uint32{0x79770BC9, tc.branch, 0}, got)
		})
	}
}

func TestBaseWords(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		prog    func(a *simd.Assembler)
		want    []uint32
	}{
		{"or for move", "mips32-msa-128",
			func(a *simd.Assembler) { a.MovX(Reax, Recx) },
			[]uint32{0x00601025}},
		{"lui ori", "mips32-msa-128",
			func(a *simd.Assembler) { a.MovX(Reax, IV(0x12345)) },
			[]uint32{0x3C020001, 0x34422345}},
		{"lw", "mips32-msa-128",
			func(a *simd.Assembler) { a.MovX(Reax, M(Redx, DP(8))) },
			[]uint32{0x8C820008}},
		{"ld", "mips64-msa-128",
			func(a *simd.Assembler) { a.MovX(Reax, M(Redx, DP(8))) },
			[]uint32{0xDC820008}},
		{"sw", "mips32-msa-128",
			func(a *simd.Assembler) { a.MovX(M(Redx, DP(8)), Reax) },
			[]uint32{0xAC820008}},
		{"addiu", "mips32-msa-128",
			func(a *simd.Assembler) { a.AddX(Reax, IB(4)) },
			[]uint32{0x24420004}},
		{"daddiu", "mips64-msa-128",
			func(a *simd.Assembler) { a.AddX(Reax, IB(4)) },
			[]uint32{0x64420004}},
		{"sub as negative addiu", "mips32-msa-128",
			func(a *simd.Assembler) { a.SubX(Reax, IB(4)) },
			[]uint32{0x2442FFFC}},
		{"andi", "mips32-msa-128",
			func(a *simd.Assembler) { a.AndX(Reax, IH(0xFF00)) },
			[]uint32{0x3042FF00}},
		{"addu", "mips32-msa-128",
			func(a *simd.Assembler) { a.AddX(Reax, Recx) },
			[]uint32{0x00431021}},
		{"daddu", "mips64-msa-128",
			func(a *simd.Assembler) { a.AddX(Reax, Recx) },
			[]uint32{0x0043102D}},
		{"addu with 32-bit base on mips64", "mips64-msa-128-x32",
			func(a *simd.Assembler) { a.AddX(Reax, Recx) },
			[]uint32{0x00431021}},
		{"sll", "mips32-msa-128",
			func(a *simd.Assembler) { a.ShlX(Reax, IB(3)) },
			[]uint32{0x000210C0}},
		{"dsll32", "mips64-msa-128",
			func(a *simd.Assembler) { a.ShlX(Reax, IB(40)) },
			[]uint32{0x0002123C}},
		{"sra", "mips32-msa-128",
			func(a *simd.Assembler) { a.ShrXn(Reax, IB(5)) },
			[]uint32{0x00021143}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, words(t, tc.profile, tc.prog))
		})
	}
}

func TestBranchWords(t *testing.T) {
	t.Run("beq backwards", func(t *testing.T) {
		got := words(t, "mips32-msa-128", func(a *simd.Assembler) {
			l := a.NewLabel("top")
			a.Bind(l)
			a.CmjX(Reax, Recx, simd.EQ, l)
		})
		assert.Equal(t, []uint32{0x1043FFFF, 0}, got)
	})
	t.Run("slt then bne", func(t *testing.T) {
		got := words(t, "mips32-msa-128", func(a *simd.Assembler) {
			l := a.NewLabel("top")
			a.Bind(l)
			a.CmjX(Reax, Recx, simd.LTS, l)
		})
		assert.Equal(t, []uint32{0x0043082A, 0x1420FFFE, 0}, got)
	})
	t.Run("jump forward", func(t *testing.T) {
		got := words(t, "mips32-msa-128", func(a *simd.Assembler) {
			l := a.NewLabel("out")
			a.Jmp(l)
			a.Bind(l)
		})
		assert.Equal(t, []uint32{0x10000001, 0}, got)
	})
}

func TestSupport(t *testing.T) {
	b, err := msa.New(target.MustParse("mips64-msa-128"))
	require.NoError(t, err)
	assert.Equal(t, simd.Native, b.Supports(lanes.OpAds, simd.S64))
	assert.Equal(t, simd.Native, b.Supports(lanes.OpSvl, simd.U8))
	assert.Equal(t, simd.Derived, b.Supports(lanes.OpOrn, simd.U32))
	assert.Equal(t, simd.Derived, b.Supports(lanes.OpCgt, simd.S16))
	assert.Equal(t, simd.Derived, b.Supports(lanes.OpCne, simd.U16))
	assert.Equal(t, simd.Native, b.Supports(lanes.OpCne, simd.F32))
	assert.Equal(t, simd.Unsupported, b.Supports(lanes.OpDiv, simd.U32))
}

func TestErrors(t *testing.T) {
	_, err := msa.New(target.MustParse("x86_64-sse2-128"))
	assert.True(t, errors.Is(err, rterrors.ErrTargetConfig))

	_, err = target.Parse("mips32-msa-256")
	assert.True(t, errors.Is(err, rterrors.ErrTargetConfig))

	a, err := msa.NewAssembler(target.MustParse("mips32-msa-128"))
	require.NoError(t, err)
	a.Add(simd.U32, Xmm1, Xmm(14))
	assert.True(t, errors.Is(a.Err(), rterrors.ErrRegisterRange))

	a, _ = msa.NewAssembler(target.MustParse("mips32-msa-128"))
	a.Jmp(&emit.Label{Name: "nowhere"})
	_, err = a.Code()
	assert.True(t, errors.Is(err, rterrors.ErrLabel))
}

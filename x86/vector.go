package x86

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/fallback"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

// op2 emits dst = f(x) at vector length l.
func (b *Backend) op2(f form, l bool, dst int, x rm, imm ...byte) {
	if b.avx {
		b.emitVEX(f, l, dst, 0, x, imm...)
		return
	}
	b.emitLegacy(f, dst, x, imm...)
}

// op3 emits dst = s1 f s2. Without VEX the destructive form needs dst to
// hold s1 first; when dst aliases s2 the sources are exchanged if f is
// commutative, otherwise s2 is parked in tmp.
func (b *Backend) op3(f form, l, commutative bool, dst, s1 int, s2 rm, imm ...byte) {
	if b.avx {
		b.emitVEX(f, l, dst, s1, s2, imm...)
		return
	}
	switch {
	case dst == s1:
	case s2.is(dst) && commutative:
		s2 = reg(s1)
	case s2.is(dst):
		b.movRR(false, tmp, dst)
		b.movRR(false, dst, s1)
		s2 = reg(tmp)
	default:
		b.movRR(false, dst, s1)
	}
	b.emitLegacy(f, dst, s2, imm...)
}

func (b *Backend) movRR(l bool, dst, src int) {
	if dst != src {
		b.op2(fMovaps, l, dst, reg(src))
	}
}

func (b *Backend) load(l bool, dst int, m operand.Mem) { b.op2(fMovupsLd, l, dst, mem(m)) }
func (b *Backend) store(l bool, m operand.Mem, src int) { b.op2(fMovupsSt, l, src, mem(m)) }

// ones fills r with all-ones bits. AVX1 has no 256-bit integer compare, so
// the float TRUE predicate is used there.
func (b *Backend) ones(r int) {
	if b.wide && b.cfg.Level < target.AVX2 {
		b.emitVEX(fCmpps, true, r, r, reg(r), X86_CMP_TRUE_UQ)
		return
	}
	b.op3(fPcmpeqd, b.wide, true, r, r, reg(r))
}

func (b *Backend) Move(dst, src operand.Operand) error {
	switch d := dst.(type) {
	case operand.Reg:
		if err := b.vcheck(d); err != nil {
			return err
		}
		x, err := b.rmOf(src)
		if err != nil {
			return err
		}
		if x.isMem {
			b.load(b.wide, d.Index, x.mem)
			return nil
		}
		b.movRR(b.wide, d.Index, x.reg)
		return nil
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store needs a register source", rterrors.ErrOperandKind)
		}
		if err := b.vcheck(s); err != nil {
			return err
		}
		if err := memCheck(d); err != nil {
			return err
		}
		b.store(b.wide, d, s.Index)
		return nil
	}
	return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
}

func (b *Backend) Logic(op simd.Op, dst, s1 operand.Reg, s2 operand.Operand) error {
	if err := b.vcheck(dst, s1); err != nil {
		return err
	}
	x, err := b.rmOf(s2)
	if err != nil {
		return err
	}
	switch op {
	case lanes.OpAnd:
		b.op3(fAndps, b.wide, true, dst.Index, s1.Index, x)
	case lanes.OpAnn:
		b.op3(fAndnps, b.wide, false, dst.Index, s1.Index, x)
	case lanes.OpOrr:
		b.op3(fOrps, b.wide, true, dst.Index, s1.Index, x)
	case lanes.OpXor:
		b.op3(fXorps, b.wide, true, dst.Index, s1.Index, x)
	default:
		return fmt.Errorf("%w: %s", rterrors.ErrUnsupported, op)
	}
	return nil
}

func (b *Backend) Not(dst, src operand.Reg) error {
	if err := b.vcheck(dst, src); err != nil {
		return err
	}
	b.ones(tmp)
	b.op3(fXorps, b.wide, true, dst.Index, src.Index, reg(tmp))
	return nil
}

func (b *Backend) Arith(op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	return b.binary(op, e, dst, s1, s2, nil)
}

func (b *Backend) Compare(c simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	if !b.NativeCompare(c, e) {
		return fmt.Errorf("%w: %s.%s has no direct encoding", rterrors.ErrUnsupported, c, e)
	}
	if e.IsFloat() {
		return b.binary(c, e, dst, s1, s2, []byte{floatPredicate(c)})
	}
	return b.binary(c, e, dst, s1, s2, nil)
}

// binary encodes a two-source lanewise operation natively or through its
// fallback plan.
func (b *Backend) binary(op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand, imm []byte) error {
	if err := b.vcheck(dst, s1); err != nil {
		return err
	}
	x, err := b.rmOf(s2)
	if err != nil {
		return err
	}
	f, _, _ := nativeForm(op, e)
	p, ok := b.plan(op, e)
	if !ok {
		return fmt.Errorf("%w: %s.%s on %s", rterrors.ErrUnsupported, op, e, b.cfg)
	}
	// float min/max return the second source on NaN, keep the order
	commutative := op.Commutative() && !(e.IsFloat() && (op == lanes.OpMin || op == lanes.OpMax))
	if p.Unit == fallback.None {
		b.op3(f, b.wide, commutative, dst.Index, s1.Index, x, imm...)
		return nil
	}
	return b.expand(p, op, e, dst.Index, s1.Index, x, f)
}

// Merge copies the bytes of src whose mask byte has its top bit set.
// Lanes of a compare result are uniform, so this selects whole lanes.
func (b *Backend) Merge(dst operand.Reg, src operand.Operand, mask operand.Reg) error {
	if err := b.vcheck(dst, mask); err != nil {
		return err
	}
	x, err := b.rmOf(src)
	if err != nil {
		return err
	}
	d, m := dst.Index, mask.Index
	if x.is(d) {
		return nil
	}
	switch {
	case b.avx && b.blend():
		b.emitVEX(fVblendvb, b.wide, d, d, x, byte(m<<4))
	case !b.avx && b.blend() && m == 0:
		b.emitLegacy(fPblendvb, d, x)
	case b.avx:
		b.emitVEX(fAndnps, b.wide, tmp, m, reg(d))
		b.emitVEX(fAndps, b.wide, d, m, x)
		b.emitVEX(fOrps, b.wide, d, d, reg(tmp))
	default:
		// tmp = ~m & dst; dst = m & src; dst |= tmp
		b.movRR(false, tmp, m)
		b.emitLegacy(fAndnps, tmp, reg(d))
		b.movRR(false, d, m)
		if !x.is(m) {
			b.emitLegacy(fAndps, d, x)
		}
		b.emitLegacy(fOrps, d, reg(tmp))
	}
	return nil
}

// MaskJump branches on the top bit of every byte of src: NONE when no
// byte has it set, FULL when every byte does.
func (b *Backend) MaskJump(src operand.Reg, cond simd.MaskCond, l *emit.Label) error {
	if err := b.vcheck(src); err != nil {
		return err
	}
	s, long := src.Index, b.wide
	if b.wide && b.cfg.Level < target.AVX2 {
		// no 256-bit pmovmskb: fold the upper lane into the lower one
		join := fPor
		if cond == simd.FULL {
			join = fPand
		}
		b.emitVEX(fVextract128, true, s, 0, reg(tmp), 1)
		b.emitVEX(join, false, tmp, tmp, reg(s))
		s, long = tmp, false
	}
	b.push(regRAX)
	b.op2(fPmovmskb, long, regRAX, reg(s))
	if cond == simd.NONE {
		b.gpRR(false, X86_OP_TEST_RM_R, regRAX, regRAX)
	} else {
		full := uint32(0xFFFF)
		if long {
			full = 0xFFFFFFFF
		}
		b.buf.EmitB(X86_OP_CMP_EAX_IMM32)
		b.buf.EmitU32(full)
	}
	b.pop(regRAX)
	b.jcc(X86_CC_E, l)
	return nil
}

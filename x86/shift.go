package x86

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/fallback"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
)

// shiftDigit is the ModRM.reg extension of the immediate shift group.
func shiftDigit(op lanes.Op, e lanes.Elem) byte {
	switch {
	case op == lanes.OpShl:
		return X86_REG_PSLL
	case e.IsSigned():
		return X86_REG_PSRA
	}
	return X86_REG_PSRL
}

func shiftGroup(bits int) form {
	switch bits {
	case 16:
		return fShiftImm16
	case 32:
		return fShiftImm32
	}
	return fShiftImm64
}

// shiftImm emits dst = src shifted by the immediate n.
func (b *Backend) shiftImm(l bool, digit byte, bits int, dst, src int, n byte) {
	g := shiftGroup(bits)
	if b.avx {
		b.emitVEX(g, l, int(digit), dst, reg(src), n)
		return
	}
	b.movRR(false, dst, src)
	b.emitLegacy(g, int(digit), reg(dst), n)
}

// Shift shifts every lane by one count: an immediate or the first lane of
// a memory vector, taken modulo the lane width.
func (b *Backend) Shift(op simd.Op, e simd.Elem, dst, src operand.Reg, count operand.Operand) error {
	if err := b.vcheck(dst, src); err != nil {
		return err
	}
	p, ok := b.plan(op, e)
	if !ok {
		return fmt.Errorf("%w: %s.%s on %s", rterrors.ErrUnsupported, op, e, b.cfg)
	}
	mask := byte(e.Bits - 1)
	switch c := count.(type) {
	case operand.Imm:
		n := byte(c.Value) & mask
		if p.Unit == fallback.None {
			b.shiftImm(b.wide, shiftDigit(op, e), e.Bits, dst.Index, src.Index, n)
			return nil
		}
		return b.expandShift(p, op, e, dst.Index, src.Index, count)
	case operand.Mem:
		if err := memCheck(c); err != nil {
			return err
		}
		if p.Unit != fallback.None {
			return b.expandShift(p, op, e, dst.Index, src.Index, count)
		}
		b.push(regRCX)
		b.loadCount(e, c, mask)
		b.op2(fMovd, false, tmp, reg(regRCX))
		b.pop(regRCX)
		f, _, _ := nativeForm(op, e)
		b.op3(f, b.wide, false, dst.Index, src.Index, reg(tmp))
		return nil
	}
	return fmt.Errorf("%w: shift count %s", rterrors.ErrOperandKind, count)
}

// loadCount reads the first lane of m into ecx and masks it.
func (b *Backend) loadCount(e lanes.Elem, m operand.Mem, mask byte) {
	b.gpLoad(lanes.Elem{Bits: min(e.Bits, 32), Kind: lanes.Unsigned}, regRCX, m)
	b.gpImm8(false, X86_REG_AND, regRCX, mask)
}

// ShiftVar shifts every lane by the matching lane of counts.
func (b *Backend) ShiftVar(op simd.Op, e simd.Elem, dst, src operand.Reg, counts operand.Operand) error {
	if err := b.vcheck(dst, src); err != nil {
		return err
	}
	x, err := b.rmOf(counts)
	if err != nil {
		return err
	}
	p, ok := b.plan(op, e)
	if !ok {
		return fmt.Errorf("%w: %s.%s on %s", rterrors.ErrUnsupported, op, e, b.cfg)
	}
	if p.Unit != fallback.None {
		return b.expand(p, op, e, dst.Index, src.Index, x, form{})
	}
	// tmp = counts & (bits-1), built as all-ones shifted right
	f, _, _ := nativeForm(op, e)
	b.ones(tmp)
	if e.Bits == 64 {
		b.emitVEX(fShiftImm64, b.wide, X86_REG_PSRL, tmp, reg(tmp), 58)
	} else {
		b.emitVEX(fShiftImm32, b.wide, X86_REG_PSRL, tmp, reg(tmp), 27)
	}
	b.emitVEX(fPand, b.wide, tmp, tmp, x)
	b.emitVEX(f, b.wide, dst.Index, src.Index, reg(tmp))
	return nil
}

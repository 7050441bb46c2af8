package x86

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/fallback"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

// stage stores s1 in scratch slot A and s2 in slot B.
func (b *Backend) stage(s1 int, s2 rm) {
	b.store(b.wide, b.slots.A, s1)
	if s2.isMem {
		b.load(b.wide, tmp, s2.mem)
		b.store(b.wide, b.slots.B, tmp)
		return
	}
	b.store(b.wide, b.slots.B, s2.reg)
}

// expand runs a two-source operation through scratch memory: s1 and s2 are
// staged, every narrow group of A is combined with the same group of B
// and written back, and A is reloaded into dst.
func (b *Backend) expand(p fallback.Plan, op lanes.Op, e lanes.Elem, dst, s1 int, s2 rm, f form) error {
	log.Debug(log.FallbackPath, "expand", "op", op, "elem", e, "plan", p)
	b.stage(s1, s2)
	A, B := b.slots.A, b.slots.B
	var err error
	switch p.Unit {
	case fallback.Vector:
		err = p.Expand(func(_, off int) error {
			a := fallback.At(A, off)
			b.load(false, tmp, a)
			b.emitVEX(f, false, tmp, tmp, mem(fallback.At(B, off)))
			b.store(false, a, tmp)
			return nil
		})
	case fallback.Scalar:
		b.push(regRAX)
		b.push(regRCX)
		err = p.Expand(func(_, off int) error {
			a := fallback.At(A, off)
			b.gpLoad(e, regRAX, a)
			b.gpLoad(e, regRCX, fallback.At(B, off))
			if err := b.scalar(op, e); err != nil {
				return err
			}
			b.gpStore(e, a, regRAX)
			return nil
		})
		b.pop(regRCX)
		b.pop(regRAX)
	default:
		err = fmt.Errorf("%w: %s has no fallback", rterrors.ErrScratch, p)
	}
	if err != nil {
		return err
	}
	b.load(b.wide, dst, A)
	return nil
}

// expandShift is expand for a single broadcast count. A memory count is
// read, masked and parked in slot B before the groups run.
func (b *Backend) expandShift(p fallback.Plan, op lanes.Op, e lanes.Elem, dst, src int, count operand.Operand) error {
	log.Debug(log.FallbackPath, "expand shift", "op", op, "elem", e, "plan", p)
	mask := byte(e.Bits - 1)
	A, B := b.slots.A, b.slots.B
	b.store(b.wide, A, src)
	imm, isImm := count.(operand.Imm)
	var err error
	switch p.Unit {
	case fallback.Vector:
		if !isImm {
			b.push(regRCX)
			b.loadCount(e, count.(operand.Mem), mask)
			b.gpStore(lanes.U64, B, regRCX)
			b.pop(regRCX)
		}
		f, _, _ := nativeForm(op, e)
		err = p.Expand(func(_, off int) error {
			a := fallback.At(A, off)
			b.load(false, tmp, a)
			if isImm {
				b.emitVEX(shiftGroup(e.Bits), false, int(shiftDigit(op, e)), tmp, reg(tmp), byte(imm.Value)&mask)
			} else {
				b.emitVEX(f, false, tmp, tmp, mem(B))
			}
			b.store(false, a, tmp)
			return nil
		})
	case fallback.Scalar:
		b.push(regRAX)
		b.push(regRCX)
		if isImm {
			b.movImm32(regRCX, uint32(byte(imm.Value)&mask))
		} else {
			b.loadCount(e, count.(operand.Mem), mask)
		}
		err = p.Expand(func(_, off int) error {
			a := fallback.At(A, off)
			b.gpLoad(e, regRAX, a)
			b.shiftCL(op, e)
			b.gpStore(e, a, regRAX)
			return nil
		})
		b.pop(regRCX)
		b.pop(regRAX)
	default:
		err = fmt.Errorf("%w: %s has no fallback", rterrors.ErrScratch, p)
	}
	if err != nil {
		return err
	}
	b.load(b.wide, dst, A)
	return nil
}

// scalar computes eax = eax op ecx on one lane. Narrow lanes are loaded
// sign or zero extended so 32-bit arithmetic gives the lane result.
func (b *Backend) scalar(op lanes.Op, e lanes.Elem) error {
	w := e.Bits == 64
	signed := e.IsSigned()
	switch op {
	case lanes.OpAdd:
		b.gpRR(w, X86_OP_ADD_RM_R, regRAX, regRCX)
	case lanes.OpSub:
		b.gpRR(w, X86_OP_SUB_RM_R, regRAX, regRCX)
	case lanes.OpMul:
		b.emitLegacy(form{mm: map0F, op: X86_OP2_IMUL, w: w}, regRAX, reg(regRCX))
	case lanes.OpMin, lanes.OpMax:
		// eax takes ecx when eax is on the wrong side of it
		var cc byte
		switch {
		case op == lanes.OpMin && signed:
			cc = X86_CC_G
		case op == lanes.OpMin:
			cc = X86_CC_A
		case signed:
			cc = X86_CC_L
		default:
			cc = X86_CC_B
		}
		b.gpRR(w, X86_OP_CMP_RM_R, regRAX, regRCX)
		b.emitLegacy(form{mm: map0F, op: X86_OP2_CMOVCC + cc, w: w}, regRAX, reg(regRCX))
	case lanes.OpCeq, lanes.OpCgt:
		cc := byte(X86_CC_E)
		if op == lanes.OpCgt {
			cc = X86_CC_G
		}
		b.gpRR(w, X86_OP_CMP_RM_R, regRAX, regRCX)
		b.setTrue(w, cc)
	case lanes.OpSvl, lanes.OpSvr:
		b.gpImm8(false, X86_REG_AND, regRCX, byte(e.Bits-1))
		b.shiftCL(op, e)
	default:
		return fmt.Errorf("%w: no scalar form of %s.%s", rterrors.ErrUnsupported, op, e)
	}
	return nil
}

// setTrue turns flag cc into an all-ones or zero rax.
func (b *Backend) setTrue(w bool, cc byte) {
	b.emitLegacy(form{mm: map0F, op: X86_OP2_SETCC + cc}, 0, reg(regRAX))
	b.emitLegacy(form{mm: map0F, op: X86_OP2_MOVZX_8}, regRAX, reg(regRAX))
	b.emitLegacy(form{mm: mapOne, op: X86_OP_GROUP3_RM, w: w}, X86_REG_NEG, reg(regRAX))
}

// shiftCL shifts eax by cl: left, logical right for unsigned lanes,
// arithmetic right for signed ones.
func (b *Backend) shiftCL(op lanes.Op, e lanes.Elem) {
	digit := X86_REG_SHL
	switch {
	case op == lanes.OpShl || op == lanes.OpSvl:
	case e.IsSigned():
		digit = X86_REG_SAR
	default:
		digit = X86_REG_SHR
	}
	b.emitLegacy(form{mm: mapOne, op: X86_OP_GROUP2_RM_CL, w: e.Bits == 64}, digit, reg(regRAX))
}

// gpLoad loads one lane of m into r, extended to 32 bits.
func (b *Backend) gpLoad(e lanes.Elem, r int, m operand.Mem) {
	var f form
	switch e.Bits {
	case 8:
		f = form{mm: map0F, op: X86_OP2_MOVZX_8}
		if e.IsSigned() {
			f.op = X86_OP2_MOVSX_8
		}
	case 16:
		f = form{mm: map0F, op: X86_OP2_MOVZX_16}
		if e.IsSigned() {
			f.op = X86_OP2_MOVSX_16
		}
	default:
		f = form{mm: mapOne, op: X86_OP_MOV_R_RM, w: e.Bits == 64}
	}
	b.emitLegacy(f, r, mem(m))
}

// gpStore writes the low lane-sized part of r to m.
func (b *Backend) gpStore(e lanes.Elem, m operand.Mem, r int) {
	f := form{mm: mapOne, op: X86_OP_MOV_RM_R, w: e.Bits == 64}
	switch e.Bits {
	case 8:
		f.op = X86_OP_MOV_RM8_R8
	case 16:
		f.pp = pp66
	}
	b.emitLegacy(f, r, mem(m))
}

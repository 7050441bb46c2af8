package msa

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

func (b *Backend) wide() bool { return b.cfg.BaseBits() == 64 && b.cfg.ISA == target.MIPS64 }

func gpr(r operand.Reg) (int, error) {
	if r.Class != operand.Base || r.Index < 0 || r.Index > 15 {
		return 0, fmt.Errorf("%w: %s", rterrors.ErrRegisterRange, r)
	}
	return int(gprs[r.Index]), nil
}

func (b *Backend) loadWord(rt int, m operand.Mem) {
	rs, off := b.gaddr(m)
	op := uint32(OP_LW)
	if b.wide() {
		op = OP_LD
	}
	b.w(itype(op, rt, rs, uint16(off)))
}

func (b *Backend) storeWord(m operand.Mem, rt int) {
	rs, off := b.gaddr(m)
	op := uint32(OP_SW)
	if b.wide() {
		op = OP_SD
	}
	b.w(itype(op, rt, rs, uint16(off)))
}

// operandReg returns a register holding src, materializing immediates and
// memory into $t9.
func (b *Backend) operandReg(src operand.Operand) (int, error) {
	switch s := src.(type) {
	case operand.Reg:
		return gpr(s)
	case operand.Imm:
		b.loadImm32(regT9, int32(s.Signed()))
		return regT9, nil
	case operand.Mem:
		b.loadWord(regT9, s)
		return regT9, nil
	}
	return 0, fmt.Errorf("%w: %s", rterrors.ErrOperandKind, src)
}

func (b *Backend) MoveBase(dst, src operand.Operand) error {
	switch d := dst.(type) {
	case operand.Reg:
		rd, err := gpr(d)
		if err != nil {
			return err
		}
		switch s := src.(type) {
		case operand.Reg:
			rs, err := gpr(s)
			if err != nil {
				return err
			}
			if rs != rd {
				b.w(rtype(FN_OR, rd, rs, regZero, 0))
			}
		case operand.Imm:
			b.loadImm32(rd, int32(s.Signed()))
		case operand.Mem:
			b.loadWord(rd, s)
		default:
			return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, src)
		}
		return nil
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store needs a register source", rterrors.ErrOperandKind)
		}
		rt, err := gpr(s)
		if err != nil {
			return err
		}
		b.storeWord(d, rt)
		return nil
	}
	return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
}

func logicImm(op simd.Op) uint32 {
	switch op {
	case lanes.OpAnd:
		return OP_ANDI
	case lanes.OpOrr:
		return OP_ORI
	}
	return OP_XORI
}

func (b *Backend) ArithBase(op simd.Op, dst operand.Reg, src operand.Operand) error {
	rd, err := gpr(dst)
	if err != nil {
		return err
	}
	w := b.wide()
	if imm, ok := src.(operand.Imm); ok {
		v := imm.Signed()
		switch {
		case op == lanes.OpAdd && fitsInt16(v), op == lanes.OpSub && fitsInt16(-v):
			if op == lanes.OpSub {
				v = -v
			}
			iop := uint32(OP_ADDIU)
			if w {
				iop = OP_DADDIU
			}
			b.w(itype(iop, rd, rd, uint16(v)))
			return nil
		case v >= 0 && v <= 0xFFFF && (op == lanes.OpAnd || op == lanes.OpOrr || op == lanes.OpXor):
			b.w(itype(logicImm(op), rd, rd, uint16(v)))
			return nil
		}
	}
	rt, err := b.operandReg(src)
	if err != nil {
		return err
	}
	var fn uint32
	switch op {
	case lanes.OpAdd:
		fn = FN_ADDU
		if w {
			fn = FN_DADDU
		}
	case lanes.OpSub:
		fn = FN_SUBU
		if w {
			fn = FN_DSUBU
		}
	case lanes.OpAnd:
		fn = FN_AND
	case lanes.OpOrr:
		fn = FN_OR
	case lanes.OpXor:
		fn = FN_XOR
	default:
		return fmt.Errorf("%w: %sxx", rterrors.ErrUnsupported, op)
	}
	b.w(rtype(fn, rd, rd, rt, 0))
	return nil
}

func (b *Backend) ShiftBase(op simd.Op, arith bool, dst operand.Reg, count operand.Imm) error {
	rd, err := gpr(dst)
	if err != nil {
		return err
	}
	bits := b.cfg.BaseBits()
	n := uint32(count.Value) & uint32(bits-1)
	var fn uint32
	switch {
	case op == lanes.OpShl:
		fn = FN_SLL
	case op != lanes.OpShr:
		return fmt.Errorf("%w: %sxx", rterrors.ErrUnsupported, op)
	case arith:
		fn = FN_SRA
	default:
		fn = FN_SRL
	}
	if b.wide() {
		// sll 0 srl 2 sra 3 map to dsll 38 dsrl 3a dsra 3b, +4 for counts above 31
		fn += FN_DSLL
		if n >= 32 {
			fn += 4
			n -= 32
		}
	}
	b.w(rtype(fn, rd, regZero, rd, n))
	return nil
}

// CompareJump branches on a <c> src. Ordered conditions set $at with
// slt/sltu and branch on it.
func (b *Backend) CompareJump(c simd.Cond, a operand.Reg, src operand.Operand, l *emit.Label) error {
	ra, err := gpr(a)
	if err != nil {
		return err
	}
	rb, err := b.operandReg(src)
	if err != nil {
		return err
	}
	switch c {
	case simd.EQ:
		b.branch(itype(OP_BEQ, rb, ra, 0), l)
		return nil
	case simd.NE:
		b.branch(itype(OP_BNE, rb, ra, 0), l)
		return nil
	}
	slt := uint32(FN_SLTU)
	if c >= simd.LTS {
		slt = FN_SLT
	}
	x, y, taken := ra, rb, uint32(OP_BNE)
	switch c {
	case simd.LTU, simd.LTS: // a < b
	case simd.GEU, simd.GES: // !(a < b)
		taken = OP_BEQ
	case simd.GTU, simd.GTS: // b < a
		x, y = rb, ra
	case simd.LEU, simd.LES: // !(b < a)
		x, y, taken = rb, ra, OP_BEQ
	default:
		return fmt.Errorf("%w: condition %s", rterrors.ErrUnsupported, c)
	}
	b.w(rtype(slt, regAT, x, y, 0))
	b.branch(itype(taken, regZero, regAT, 0), l)
	return nil
}

// Jump is beq $0, $0.
func (b *Backend) Jump(l *emit.Label) error {
	b.branch(itype(OP_BEQ, regZero, regZero, 0), l)
	return nil
}

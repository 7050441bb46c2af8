package x86

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
)

func (b *Backend) push(r int) {
	if r >= 8 {
		b.buf.EmitB(rex(false, 0, 0, 1))
	}
	b.buf.EmitB(X86_OP_PUSH_R + byte(r&7))
}

func (b *Backend) pop(r int) {
	if r >= 8 {
		b.buf.EmitB(rex(false, 0, 0, 1))
	}
	b.buf.EmitB(X86_OP_POP_R + byte(r&7))
}

// gpRR emits op r/m=dst, reg=src.
func (b *Backend) gpRR(w bool, op byte, dst, src int) {
	b.emitLegacy(form{mm: mapOne, op: op, w: w}, src, reg(dst))
}

// gpImm8 emits a group 1 operation with a sign-extended 8-bit immediate.
func (b *Backend) gpImm8(w bool, digit int, dst int, v byte) {
	b.emitLegacy(form{mm: mapOne, op: X86_OP_GROUP1_RM_IMM8, w: w}, digit, reg(dst), v)
}

// movImm32 loads a zero-extended 32-bit immediate.
func (b *Backend) movImm32(r int, v uint32) {
	if r >= 8 {
		b.buf.EmitB(rex(false, 0, 0, 1))
	}
	b.buf.EmitB(X86_OP_MOV_R_IMM + byte(r&7))
	b.buf.EmitU32(v)
}

func (b *Backend) jcc(cc byte, l *emit.Label) {
	b.buf.EmitBytes(0x0F, X86_OP2_JCC+cc)
	at := b.buf.Len()
	b.buf.EmitU32(0)
	b.buf.Fix(emit.Rel32, at, b.buf.Len(), l)
}

func (b *Backend) Jump(l *emit.Label) error {
	b.buf.EmitB(X86_OP_JMP_REL32)
	at := b.buf.Len()
	b.buf.EmitU32(0)
	b.buf.Fix(emit.Rel32, at, b.buf.Len(), l)
	return nil
}

// w64 reports whether BASE operations use REX.W.
func (b *Backend) w64() bool { return b.cfg.BaseBits() == 64 }

func gpCheck(rs ...operand.Reg) error {
	for _, r := range rs {
		if r.Class != operand.Base || r.Index < 0 || r.Index > 15 {
			return fmt.Errorf("%w: %s", rterrors.ErrRegisterRange, r)
		}
	}
	return nil
}

// MoveBase moves a BASE-sized value. Immediates are sign-extended from 32
// bits on 64-bit BASE.
func (b *Backend) MoveBase(dst, src operand.Operand) error {
	w := b.w64()
	switch d := dst.(type) {
	case operand.Reg:
		if err := gpCheck(d); err != nil {
			return err
		}
		switch s := src.(type) {
		case operand.Reg:
			if err := gpCheck(s); err != nil {
				return err
			}
			if s != d {
				b.gpRR(w, X86_OP_MOV_RM_R, d.Index, s.Index)
			}
		case operand.Imm:
			v := uint32(int32(s.Signed()))
			if !w {
				b.movImm32(d.Index, v)
				break
			}
			b.emitLegacy(form{mm: mapOne, op: X86_OP_MOV_RM_IMM, w: true}, 0, reg(d.Index))
			b.buf.EmitU32(v)
		case operand.Mem:
			b.emitLegacy(form{mm: mapOne, op: X86_OP_MOV_R_RM, w: w}, d.Index, mem(s))
		default:
			return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, src)
		}
		return nil
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store needs a register source", rterrors.ErrOperandKind)
		}
		if err := gpCheck(s); err != nil {
			return err
		}
		b.emitLegacy(form{mm: mapOne, op: X86_OP_MOV_RM_R, w: w}, s.Index, mem(d))
		return nil
	}
	return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
}

type aluOp struct {
	rmR, rRM byte
	digit    int
}

var aluOps = map[lanes.Op]aluOp{
	lanes.OpAdd: {X86_OP_ADD_RM_R, X86_OP_ADD_R_RM, X86_REG_ADD},
	lanes.OpSub: {X86_OP_SUB_RM_R, X86_OP_SUB_R_RM, X86_REG_SUB},
	lanes.OpAnd: {X86_OP_AND_RM_R, X86_OP_AND_R_RM, X86_REG_AND},
	lanes.OpOrr: {X86_OP_OR_RM_R, X86_OP_OR_R_RM, X86_REG_OR},
	lanes.OpXor: {X86_OP_XOR_RM_R, X86_OP_XOR_R_RM, X86_REG_XOR},
}

// alu emits dst op= src for a register, immediate or memory source.
func (b *Backend) alu(a aluOp, dst operand.Reg, src operand.Operand) error {
	w := b.w64()
	switch s := src.(type) {
	case operand.Reg:
		if err := gpCheck(s); err != nil {
			return err
		}
		b.gpRR(w, a.rmR, dst.Index, s.Index)
	case operand.Imm:
		v := s.Signed()
		if fitsInt8(v) {
			b.gpImm8(w, a.digit, dst.Index, byte(int8(v)))
			break
		}
		b.emitLegacy(form{mm: mapOne, op: X86_OP_GROUP1_RM_IMM32, w: w}, a.digit, reg(dst.Index))
		b.buf.EmitU32(uint32(int32(v)))
	case operand.Mem:
		b.emitLegacy(form{mm: mapOne, op: a.rRM, w: w}, dst.Index, mem(s))
	default:
		return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, src)
	}
	return nil
}

func (b *Backend) ArithBase(op simd.Op, dst operand.Reg, src operand.Operand) error {
	if err := gpCheck(dst); err != nil {
		return err
	}
	a, ok := aluOps[op]
	if !ok {
		return fmt.Errorf("%w: %sxx", rterrors.ErrUnsupported, op)
	}
	return b.alu(a, dst, src)
}

func (b *Backend) ShiftBase(op simd.Op, arith bool, dst operand.Reg, count operand.Imm) error {
	if err := gpCheck(dst); err != nil {
		return err
	}
	digit := X86_REG_SHL
	switch {
	case op == lanes.OpShl:
	case op != lanes.OpShr:
		return fmt.Errorf("%w: %sxx", rterrors.ErrUnsupported, op)
	case arith:
		digit = X86_REG_SAR
	default:
		digit = X86_REG_SHR
	}
	n := byte(count.Value) & byte(b.cfg.BaseBits()-1)
	b.emitLegacy(form{mm: mapOne, op: X86_OP_GROUP2_RM_IMM8, w: b.w64()}, digit, reg(dst.Index), n)
	return nil
}

var condCodes = map[simd.Cond]byte{
	simd.EQ: X86_CC_E, simd.NE: X86_CC_NE,
	simd.LTU: X86_CC_B, simd.LEU: X86_CC_BE, simd.GTU: X86_CC_A, simd.GEU: X86_CC_AE,
	simd.LTS: X86_CC_L, simd.LES: X86_CC_LE, simd.GTS: X86_CC_G, simd.GES: X86_CC_GE,
}

// CompareJump compares a with b and jumps when c holds.
func (b *Backend) CompareJump(c simd.Cond, a operand.Reg, src operand.Operand, l *emit.Label) error {
	if err := gpCheck(a); err != nil {
		return err
	}
	cc, ok := condCodes[c]
	if !ok {
		return fmt.Errorf("%w: condition %s", rterrors.ErrUnsupported, c)
	}
	if err := b.alu(aluOp{X86_OP_CMP_RM_R, X86_OP_CMP_R_RM, X86_REG_CMP}, a, src); err != nil {
		return err
	}
	b.jcc(cc, l)
	return nil
}

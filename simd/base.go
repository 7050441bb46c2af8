package simd

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

// bsrc accepts a base register, immediate or memory operand.
func (a *Assembler) bsrc(o operand.Operand) error {
	switch v := o.(type) {
	case operand.Reg:
		return a.breg(v)
	case operand.Imm:
		return v.Check()
	case operand.Mem:
		return a.mem(v)
	}
	return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, o)
}

// MovX moves a pointer-sized value: register from register, immediate or
// memory, or memory from register.
func (a *Assembler) MovX(dst, src operand.Operand) {
	a.do("movxx", func() error {
		switch d := dst.(type) {
		case operand.Reg:
			if err := a.breg(d); err != nil {
				return err
			}
			if err := a.bsrc(src); err != nil {
				return err
			}
		case operand.Mem:
			if err := a.mem(d); err != nil {
				return err
			}
			s, ok := src.(operand.Reg)
			if !ok {
				return fmt.Errorf("%w: store needs a register source", rterrors.ErrOperandKind)
			}
			if err := a.breg(s); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
		}
		return a.b.MoveBase(dst, src)
	})
}

func (a *Assembler) baseArith(op Op, dst operand.Reg, src operand.Operand) {
	a.do(op.String()+"xx", func() error {
		if err := a.breg(dst); err != nil {
			return err
		}
		if err := a.bsrc(src); err != nil {
			return err
		}
		return a.b.ArithBase(op, dst, src)
	})
}

func (a *Assembler) AddX(dst operand.Reg, src operand.Operand) { a.baseArith(lanes.OpAdd, dst, src) }
func (a *Assembler) SubX(dst operand.Reg, src operand.Operand) { a.baseArith(lanes.OpSub, dst, src) }
func (a *Assembler) AndX(dst operand.Reg, src operand.Operand) { a.baseArith(lanes.OpAnd, dst, src) }
func (a *Assembler) OrrX(dst operand.Reg, src operand.Operand) { a.baseArith(lanes.OpOrr, dst, src) }
func (a *Assembler) XorX(dst operand.Reg, src operand.Operand) { a.baseArith(lanes.OpXor, dst, src) }

func (a *Assembler) baseShift(op Op, arith bool, dst operand.Reg, count operand.Imm) {
	a.do(op.String()+"xx", func() error {
		if err := a.breg(dst); err != nil {
			return err
		}
		if err := count.Check(); err != nil {
			return err
		}
		return a.b.ShiftBase(op, arith, dst, count)
	})
}

// ShlX, ShrX and ShrXn shift by count modulo the BASE width.
func (a *Assembler) ShlX(dst operand.Reg, count operand.Imm)  { a.baseShift(lanes.OpShl, false, dst, count) }
func (a *Assembler) ShrX(dst operand.Reg, count operand.Imm)  { a.baseShift(lanes.OpShr, false, dst, count) }
func (a *Assembler) ShrXn(dst operand.Reg, count operand.Imm) { a.baseShift(lanes.OpShr, true, dst, count) }

// CmjX jumps to l when x <c> y holds.
func (a *Assembler) CmjX(x operand.Reg, y operand.Operand, c Cond, l *emit.Label) {
	a.do("cmjxx", func() error {
		if err := a.breg(x); err != nil {
			return err
		}
		if err := a.bsrc(y); err != nil {
			return err
		}
		if c > GES {
			return fmt.Errorf("%w: condition %d", rterrors.ErrOperandKind, c)
		}
		return a.b.CompareJump(c, x, y, l)
	})
}

// Jmp transfers control to l.
func (a *Assembler) Jmp(l *emit.Label) {
	a.do("jmpxx", func() error { return a.b.Jump(l) })
}

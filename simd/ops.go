package simd

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

// Mov copies a vector: register to register, memory to register or
// register to memory.
func (a *Assembler) Mov(dst, src operand.Operand) {
	a.do("mov", func() error {
		switch d := dst.(type) {
		case operand.Reg:
			if err := a.vreg(d); err != nil {
				return err
			}
			if err := a.vsrc(src); err != nil {
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
			if err := a.vreg(s); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
		}
		return a.each(func(h int) error {
			d, err := a.half(dst, h)
			if err != nil {
				return err
			}
			s, err := a.half(src, h)
			if err != nil {
				return err
			}
			return a.b.Move(d, s)
		})
	})
}

// logic ops are element agnostic; support is queried with a 32-bit lane.
func (a *Assembler) logic(op Op, dst, s1 operand.Reg, s2 operand.Operand) {
	a.do(op.String(), func() error {
		if err := a.vregs(dst, s1); err != nil {
			return err
		}
		if err := a.vsrc(s2); err != nil {
			return err
		}
		native := a.b.Supports(op, U32) == Native
		return a.each(func(h int) error {
			y, err := a.half(s2, h)
			if err != nil {
				return err
			}
			d, x := a.phys(dst, h), a.phys(s1, h)
			if native {
				return a.b.Logic(op, d, x, y)
			}
			return a.notThen(op, d, x, y, a.temp(h))
		})
	})
}

// notThen synthesizes ann/orn as not(s1) followed by and/orr.
func (a *Assembler) notThen(op Op, d, x operand.Reg, y operand.Operand, t operand.Reg) error {
	base := lanes.OpAnd
	if op == lanes.OpOrn {
		base = lanes.OpOrr
	}
	if r, ok := y.(operand.Reg); ok && r == d {
		if err := a.b.Not(t, x); err != nil {
			return err
		}
		return a.b.Logic(base, d, t, y)
	}
	if err := a.b.Not(d, x); err != nil {
		return err
	}
	return a.b.Logic(base, d, d, y)
}

func (a *Assembler) And3(dst, s1 operand.Reg, s2 operand.Operand) { a.logic(lanes.OpAnd, dst, s1, s2) }
func (a *Assembler) Ann3(dst, s1 operand.Reg, s2 operand.Operand) { a.logic(lanes.OpAnn, dst, s1, s2) }
func (a *Assembler) Orr3(dst, s1 operand.Reg, s2 operand.Operand) { a.logic(lanes.OpOrr, dst, s1, s2) }
func (a *Assembler) Orn3(dst, s1 operand.Reg, s2 operand.Operand) { a.logic(lanes.OpOrn, dst, s1, s2) }
func (a *Assembler) Xor3(dst, s1 operand.Reg, s2 operand.Operand) { a.logic(lanes.OpXor, dst, s1, s2) }

func (a *Assembler) And(dst operand.Reg, s operand.Operand) { a.And3(dst, dst, s) }
func (a *Assembler) Ann(dst operand.Reg, s operand.Operand) { a.Ann3(dst, dst, s) }
func (a *Assembler) Orr(dst operand.Reg, s operand.Operand) { a.Orr3(dst, dst, s) }
func (a *Assembler) Orn(dst operand.Reg, s operand.Operand) { a.Orn3(dst, dst, s) }
func (a *Assembler) Xor(dst operand.Reg, s operand.Operand) { a.Xor3(dst, dst, s) }

// Not2 writes the complement of src to dst.
func (a *Assembler) Not2(dst, src operand.Reg) {
	a.do("not", func() error {
		if err := a.vregs(dst, src); err != nil {
			return err
		}
		return a.each(func(h int) error { return a.b.Not(a.phys(dst, h), a.phys(src, h)) })
	})
}

// Not complements dst in place.
func (a *Assembler) Not(dst operand.Reg) { a.Not2(dst, dst) }

func (a *Assembler) arith(op Op, e Elem, dst, s1 operand.Reg, s2 operand.Operand) {
	a.do(opName(op, e), func() error {
		if err := a.supported(op, e); err != nil {
			return err
		}
		if err := a.vregs(dst, s1); err != nil {
			return err
		}
		if err := a.vsrc(s2); err != nil {
			return err
		}
		return a.each(func(h int) error {
			y, err := a.half(s2, h)
			if err != nil {
				return err
			}
			return a.b.Arith(op, e, a.phys(dst, h), a.phys(s1, h), y)
		})
	})
}

func (a *Assembler) Add3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpAdd, e, dst, s1, s2) }
func (a *Assembler) Sub3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpSub, e, dst, s1, s2) }
func (a *Assembler) Mul3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpMul, e, dst, s1, s2) }
func (a *Assembler) Div3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpDiv, e, dst, s1, s2) }
func (a *Assembler) Ads3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpAds, e, dst, s1, s2) }
func (a *Assembler) Sbs3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpSbs, e, dst, s1, s2) }
func (a *Assembler) Min3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpMin, e, dst, s1, s2) }
func (a *Assembler) Max3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.arith(lanes.OpMax, e, dst, s1, s2) }

func (a *Assembler) Add(e Elem, dst operand.Reg, s operand.Operand) { a.Add3(e, dst, dst, s) }
func (a *Assembler) Sub(e Elem, dst operand.Reg, s operand.Operand) { a.Sub3(e, dst, dst, s) }
func (a *Assembler) Mul(e Elem, dst operand.Reg, s operand.Operand) { a.Mul3(e, dst, dst, s) }
func (a *Assembler) Div(e Elem, dst operand.Reg, s operand.Operand) { a.Div3(e, dst, dst, s) }
func (a *Assembler) Ads(e Elem, dst operand.Reg, s operand.Operand) { a.Ads3(e, dst, dst, s) }
func (a *Assembler) Sbs(e Elem, dst operand.Reg, s operand.Operand) { a.Sbs3(e, dst, dst, s) }
func (a *Assembler) Min(e Elem, dst operand.Reg, s operand.Operand) { a.Min3(e, dst, dst, s) }
func (a *Assembler) Max(e Elem, dst operand.Reg, s operand.Operand) { a.Max3(e, dst, dst, s) }

// shift broadcasts one count to every lane: an immediate, or the first lane
// of a memory vector. Counts are taken modulo the lane width.
func (a *Assembler) shift(op Op, e Elem, dst, src operand.Reg, count operand.Operand) {
	a.do(opName(op, e), func() error {
		if err := a.supported(op, e); err != nil {
			return err
		}
		if err := a.vregs(dst, src); err != nil {
			return err
		}
		switch c := count.(type) {
		case operand.Imm:
			if err := c.Check(); err != nil {
				return err
			}
		case operand.Mem:
			if err := a.mem(c); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: shift count must be an immediate or memory", rterrors.ErrOperandKind)
		}
		return a.each(func(h int) error {
			return a.b.Shift(op, e, a.phys(dst, h), a.phys(src, h), count)
		})
	})
}

func (a *Assembler) Shl3(e Elem, dst, src operand.Reg, count operand.Operand) {
	a.shift(lanes.OpShl, e, dst, src, count)
}
func (a *Assembler) Shr3(e Elem, dst, src operand.Reg, count operand.Operand) {
	a.shift(lanes.OpShr, e, dst, src, count)
}
func (a *Assembler) Shl(e Elem, dst operand.Reg, count operand.Operand) { a.Shl3(e, dst, dst, count) }
func (a *Assembler) Shr(e Elem, dst operand.Reg, count operand.Operand) { a.Shr3(e, dst, dst, count) }

// shiftVar shifts every lane by the matching lane of counts.
func (a *Assembler) shiftVar(op Op, e Elem, dst, src operand.Reg, counts operand.Operand) {
	a.do(opName(op, e), func() error {
		if err := a.supported(op, e); err != nil {
			return err
		}
		if err := a.vregs(dst, src); err != nil {
			return err
		}
		if err := a.vsrc(counts); err != nil {
			return err
		}
		return a.each(func(h int) error {
			c, err := a.half(counts, h)
			if err != nil {
				return err
			}
			return a.b.ShiftVar(op, e, a.phys(dst, h), a.phys(src, h), c)
		})
	})
}

func (a *Assembler) Svl3(e Elem, dst, src operand.Reg, counts operand.Operand) {
	a.shiftVar(lanes.OpSvl, e, dst, src, counts)
}
func (a *Assembler) Svr3(e Elem, dst, src operand.Reg, counts operand.Operand) {
	a.shiftVar(lanes.OpSvr, e, dst, src, counts)
}
func (a *Assembler) Svl(e Elem, dst operand.Reg, counts operand.Operand) { a.Svl3(e, dst, dst, counts) }
func (a *Assembler) Svr(e Elem, dst operand.Reg, counts operand.Operand) { a.Svr3(e, dst, dst, counts) }

// Mmv copies the lanes of src selected by the mask register Xmm0 into dst.
func (a *Assembler) Mmv(dst operand.Reg, src operand.Operand) {
	a.do("mmv", func() error {
		if err := a.vreg(dst); err != nil {
			return err
		}
		if err := a.vsrc(src); err != nil {
			return err
		}
		return a.each(func(h int) error {
			s, err := a.half(src, h)
			if err != nil {
				return err
			}
			return a.b.Merge(a.phys(dst, h), s, a.phys(operand.Mask, h))
		})
	})
}

// Mkj jumps to l when no lane (NONE) or every lane (FULL) of src is set.
func (a *Assembler) Mkj(src operand.Reg, cond MaskCond, l *emit.Label) {
	a.do("mkj", func() error {
		if err := a.vreg(src); err != nil {
			return err
		}
		if a.cfg.Halves() == 1 {
			return a.b.MaskJump(a.phys(src, 0), cond, l)
		}
		join := lanes.OpOrr
		if cond == FULL {
			join = lanes.OpAnd
		}
		t := a.temp(0)
		if err := a.b.Logic(join, t, a.phys(src, 0), a.phys(src, 1)); err != nil {
			return err
		}
		return a.b.MaskJump(t, cond, l)
	})
}

// Emit3 issues op in its three-operand form; s2 is the count operand for
// shifts and is ignored by not.
func (a *Assembler) Emit3(op Op, e Elem, dst, s1 operand.Reg, s2 operand.Operand) {
	switch op {
	case lanes.OpAnd, lanes.OpAnn, lanes.OpOrr, lanes.OpOrn, lanes.OpXor:
		a.logic(op, dst, s1, s2)
	case lanes.OpNot:
		a.Not2(dst, s1)
	case lanes.OpAdd, lanes.OpSub, lanes.OpMul, lanes.OpDiv, lanes.OpAds, lanes.OpSbs, lanes.OpMin, lanes.OpMax:
		a.arith(op, e, dst, s1, s2)
	case lanes.OpShl, lanes.OpShr:
		a.shift(op, e, dst, s1, s2)
	case lanes.OpSvl, lanes.OpSvr:
		a.shiftVar(op, e, dst, s1, s2)
	case lanes.OpCeq, lanes.OpCne, lanes.OpClt, lanes.OpCle, lanes.OpCgt, lanes.OpCge:
		a.compare(op, e, dst, s1, s2)
	default:
		a.do(op.String(), func() error {
			return fmt.Errorf("%w: %s has no three-operand form", rterrors.ErrMnemonic, op)
		})
	}
}

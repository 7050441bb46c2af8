package interp

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
)

func (b *Backend) Move(dst, src operand.Operand) error {
	switch d := dst.(type) {
	case operand.Reg:
		b.add("mov", func(m *Machine) (*emit.Label, error) {
			v, err := m.vec(src)
			if err != nil {
				return nil, err
			}
			m.setV(d, v)
			return nil, nil
		})
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store source %s", rterrors.ErrOperandKind, src)
		}
		b.add("mov.st", func(m *Machine) (*emit.Label, error) {
			return nil, m.store(d, m.V[s.Index])
		})
	default:
		return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
	}
	return nil
}

func (b *Backend) binary(name string, op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) {
	b.add(name, func(m *Machine) (*emit.Label, error) {
		y, err := m.vec(s2)
		if err != nil {
			return nil, err
		}
		m.setV(dst, lanes.Eval(op, e, m.V[s1.Index], y))
		return nil, nil
	})
}

func (b *Backend) Logic(op simd.Op, dst, s1 operand.Reg, s2 operand.Operand) error {
	if !op.IsLogic() || op == lanes.OpNot {
		return fmt.Errorf("%w: %s is not a binary logic op", rterrors.ErrUnsupported, op)
	}
	b.binary(op.String(), op, lanes.U8, dst, s1, s2)
	return nil
}

func (b *Backend) Not(dst, src operand.Reg) error {
	b.add("not", func(m *Machine) (*emit.Label, error) {
		m.setV(dst, lanes.Eval(lanes.OpNot, lanes.U8, m.V[src.Index], nil))
		return nil, nil
	})
	return nil
}

func (b *Backend) Arith(op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	if !op.Applies(e) {
		return fmt.Errorf("%w: %s.%s", rterrors.ErrElement, op, e)
	}
	b.binary(op.String(), op, e, dst, s1, s2)
	return nil
}

func (b *Backend) Shift(op simd.Op, e simd.Elem, dst, src operand.Reg, count operand.Operand) error {
	b.add(op.String(), func(m *Machine) (*emit.Label, error) {
		var c uint64
		switch v := count.(type) {
		case operand.Imm:
			c = uint64(v.Value)
		case operand.Mem:
			raw, err := m.load(v, e.Bytes())
			if err != nil {
				return nil, err
			}
			c = raw.Get(e, 0)
		default:
			return nil, fmt.Errorf("%w: shift count %s", rterrors.ErrOperandKind, count)
		}
		m.setV(dst, lanes.ShiftImm(op, e, m.V[src.Index], c))
		return nil, nil
	})
	return nil
}

func (b *Backend) ShiftVar(op simd.Op, e simd.Elem, dst, src operand.Reg, counts operand.Operand) error {
	b.binary(op.String(), op, e, dst, src, counts)
	return nil
}

func (b *Backend) Compare(c simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	if !b.NativeCompare(c, e) {
		return fmt.Errorf("%w: %s.%s is derived", rterrors.ErrUnsupported, c, e)
	}
	b.binary(c.String(), c, e, dst, s1, s2)
	return nil
}

func (b *Backend) Merge(dst operand.Reg, src operand.Operand, mask operand.Reg) error {
	b.add("mmv", func(m *Machine) (*emit.Label, error) {
		s, err := m.vec(src)
		if err != nil {
			return nil, err
		}
		m.setV(dst, lanes.Merge(m.V[dst.Index], s, m.V[mask.Index]))
		return nil, nil
	})
	return nil
}

func (b *Backend) MaskJump(src operand.Reg, cond simd.MaskCond, l *emit.Label) error {
	b.refs = append(b.refs, l)
	b.add("mkj", func(m *Machine) (*emit.Label, error) {
		v := m.V[src.Index]
		if cond == simd.FULL && lanes.MaskFull(v) || cond == simd.NONE && lanes.MaskNone(v) {
			return l, nil
		}
		return nil, nil
	})
	return nil
}

func (b *Backend) MoveBase(dst, src operand.Operand) error {
	switch d := dst.(type) {
	case operand.Reg:
		b.add("movxx", func(m *Machine) (*emit.Label, error) {
			v, err := m.base(src)
			if err != nil {
				return nil, err
			}
			m.R[d.Index] = v
			return nil, nil
		})
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store source %s", rterrors.ErrOperandKind, src)
		}
		b.add("movxx.st", func(m *Machine) (*emit.Label, error) {
			e := lanes.Elem{Bits: m.cfg.BaseBits()}
			buf := make(lanes.Vector, e.Bytes())
			buf.Set(e, 0, m.R[s.Index])
			return nil, m.store(d, buf)
		})
	default:
		return fmt.Errorf("%w: %s", rterrors.ErrOperandKind, dst)
	}
	return nil
}

func (b *Backend) ArithBase(op simd.Op, dst operand.Reg, src operand.Operand) error {
	switch op {
	case lanes.OpAdd, lanes.OpSub, lanes.OpAnd, lanes.OpOrr, lanes.OpXor:
	default:
		return fmt.Errorf("%w: %sxx", rterrors.ErrUnsupported, op)
	}
	b.add(op.String()+"xx", func(m *Machine) (*emit.Label, error) {
		y, err := m.base(src)
		if err != nil {
			return nil, err
		}
		x := m.R[dst.Index]
		var r uint64
		switch op {
		case lanes.OpAdd:
			r = x + y
		case lanes.OpSub:
			r = x - y
		case lanes.OpAnd:
			r = x & y
		case lanes.OpOrr:
			r = x | y
		case lanes.OpXor:
			r = x ^ y
		}
		m.R[dst.Index] = r & m.baseMask()
		return nil, nil
	})
	return nil
}

func (b *Backend) ShiftBase(op simd.Op, arith bool, dst operand.Reg, count operand.Imm) error {
	k := lanes.Unsigned
	if arith {
		k = lanes.Signed
	}
	e := lanes.Elem{Bits: b.cfg.BaseBits(), Kind: k}
	b.add(op.String()+"xx", func(m *Machine) (*emit.Label, error) {
		m.R[dst.Index] = lanes.Lane(op, e, m.R[dst.Index], uint64(count.Value))
		return nil, nil
	})
	return nil
}

func (b *Backend) CompareJump(c simd.Cond, x operand.Reg, y operand.Operand, l *emit.Label) error {
	b.refs = append(b.refs, l)
	bits := b.cfg.BaseBits()
	b.add("cmjxx", func(m *Machine) (*emit.Label, error) {
		rhs, err := m.base(y)
		if err != nil {
			return nil, err
		}
		lhs := m.R[x.Index] & m.baseMask()
		sl := int64(lhs<<uint(64-bits)) >> uint(64-bits)
		sr := int64(rhs<<uint(64-bits)) >> uint(64-bits)
		var t bool
		switch c {
		case simd.EQ:
			t = lhs == rhs
		case simd.NE:
			t = lhs != rhs
		case simd.LTU:
			t = lhs < rhs
		case simd.LEU:
			t = lhs <= rhs
		case simd.GTU:
			t = lhs > rhs
		case simd.GEU:
			t = lhs >= rhs
		case simd.LTS:
			t = sl < sr
		case simd.LES:
			t = sl <= sr
		case simd.GTS:
			t = sl > sr
		case simd.GES:
			t = sl >= sr
		}
		if t {
			return l, nil
		}
		return nil, nil
	})
	return nil
}

func (b *Backend) Jump(l *emit.Label) error {
	b.refs = append(b.refs, l)
	b.add("jmp", func(m *Machine) (*emit.Label, error) { return l, nil })
	return nil
}

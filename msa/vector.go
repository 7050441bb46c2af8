package msa

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
)

// MOVE.V lives in the ELM space.
const moveV = MSA_MAJOR | 0x0BE<<16 | MINOR_ELM

type enc struct {
	minor, op uint32
	float     bool
}

// forms maps an operation to its 3R or 3RF encoding; signed and unsigned
// variants differ in op.
func forms(op lanes.Op, e lanes.Elem) (enc, bool) {
	if e.IsFloat() {
		switch op {
		case lanes.OpAdd:
			return enc{MINOR_3RF_A, 0x0, true}, true
		case lanes.OpSub:
			return enc{MINOR_3RF_A, 0x1, true}, true
		case lanes.OpMul:
			return enc{MINOR_3RF_A, 0x2, true}, true
		case lanes.OpDiv:
			return enc{MINOR_3RF_A, 0x3, true}, true
		case lanes.OpMin:
			return enc{MINOR_3RF_A, 0xC, true}, true
		case lanes.OpMax:
			return enc{MINOR_3RF_A, 0xE, true}, true
		case lanes.OpCeq:
			return enc{MINOR_3RF_C, 0x2, true}, true
		case lanes.OpClt:
			return enc{MINOR_3RF_C, 0x4, true}, true
		case lanes.OpCle:
			return enc{MINOR_3RF_C, 0x6, true}, true
		case lanes.OpCne:
			return enc{MINOR_3RF_N, 0x2, true}, true
		}
		return enc{}, false
	}
	var u uint32
	if !e.IsSigned() {
		u = 1
	}
	switch op {
	case lanes.OpAdd:
		return enc{MINOR_ADDSUB, 0, false}, true
	case lanes.OpSub:
		return enc{MINOR_ADDSUB, 1, false}, true
	case lanes.OpMax:
		return enc{MINOR_ADDSUB, 2 + u, false}, true
	case lanes.OpMin:
		return enc{MINOR_ADDSUB, 4 + u, false}, true
	case lanes.OpAds:
		return enc{MINOR_ADDS, 2 + u, false}, true
	case lanes.OpSbs:
		return enc{MINOR_SUBS, u, false}, true
	case lanes.OpMul:
		return enc{MINOR_MUL, 0, false}, true
	case lanes.OpCeq:
		return enc{MINOR_CMP, 0, false}, true
	case lanes.OpClt:
		return enc{MINOR_CMP, 2 + u, false}, true
	case lanes.OpCle:
		return enc{MINOR_CMP, 4 + u, false}, true
	case lanes.OpShl, lanes.OpSvl:
		return enc{MINOR_SHIFT, 0, false}, true
	case lanes.OpShr, lanes.OpSvr:
		return enc{MINOR_SHIFT, 1 + u, false}, true
	}
	return enc{}, false
}

func (f enc) word(e lanes.Elem, wd, ws, wt int) uint32 {
	if f.float {
		var df uint32
		if e.Bits == 64 {
			df = 1
		}
		return r3f(f.minor, f.op, df, wd, ws, wt)
	}
	return r3(f.minor, f.op, dfOf(e.Bits), wd, ws, wt)
}

func (b *Backend) Move(dst, src operand.Operand) error {
	switch d := dst.(type) {
	case operand.Reg:
		if err := vcheck(d); err != nil {
			return err
		}
		switch s := src.(type) {
		case operand.Reg:
			if err := vcheck(s); err != nil {
				return err
			}
			if s.Index != d.Index {
				b.w(moveV | uint32(s.Index)<<11 | uint32(d.Index)<<6)
			}
			return nil
		case operand.Mem:
			b.vload(d.Index, s)
			return nil
		}
	case operand.Mem:
		s, ok := src.(operand.Reg)
		if !ok {
			return fmt.Errorf("%w: store needs a register source", rterrors.ErrOperandKind)
		}
		if err := vcheck(s); err != nil {
			return err
		}
		b.vstore(d, s.Index)
		return nil
	}
	return fmt.Errorf("%w: %s <- %s", rterrors.ErrOperandKind, dst, src)
}

func (b *Backend) Logic(op simd.Op, dst, s1 operand.Reg, s2 operand.Operand) error {
	if err := vcheck(dst, s1); err != nil {
		return err
	}
	t, err := b.source(s2)
	if err != nil {
		return err
	}
	var v uint32
	switch op {
	case lanes.OpAnd:
		v = VEC_AND
	case lanes.OpOrr:
		v = VEC_OR
	case lanes.OpXor:
		v = VEC_XOR
	default:
		return fmt.Errorf("%w: %s", rterrors.ErrUnsupported, op)
	}
	b.w(vec(v, dst.Index, s1.Index, t))
	return nil
}

// Not is nor.v with both sources equal.
func (b *Backend) Not(dst, src operand.Reg) error {
	if err := vcheck(dst, src); err != nil {
		return err
	}
	b.w(vec(VEC_NOR, dst.Index, src.Index, src.Index))
	return nil
}

func (b *Backend) Arith(op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	return b.three(op, e, dst, s1, s2)
}

func (b *Backend) Compare(c simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	if !b.NativeCompare(c, e) {
		return fmt.Errorf("%w: %s.%s has no direct encoding", rterrors.ErrUnsupported, c, e)
	}
	return b.three(c, e, dst, s1, s2)
}

func (b *Backend) three(op simd.Op, e simd.Elem, dst, s1 operand.Reg, s2 operand.Operand) error {
	if err := vcheck(dst, s1); err != nil {
		return err
	}
	f, ok := forms(op, e)
	if !ok {
		return fmt.Errorf("%w: %s.%s on %s", rterrors.ErrUnsupported, op, e, b.cfg)
	}
	t, err := b.source(s2)
	if err != nil {
		return err
	}
	b.w(f.word(e, dst.Index, s1.Index, t))
	return nil
}

// Shift takes an immediate count into the BIT form; a memory count is
// loaded, its first lane splatted and used as a per-lane count, which
// the hardware reduces modulo the lane width.
func (b *Backend) Shift(op simd.Op, e simd.Elem, dst, src operand.Reg, count operand.Operand) error {
	if err := vcheck(dst, src); err != nil {
		return err
	}
	df := dfOf(e.Bits)
	switch c := count.(type) {
	case operand.Imm:
		var bop uint32 // slli
		if op == lanes.OpShr {
			bop = 2 // srli
			if e.IsSigned() {
				bop = 1 // srai
			}
		}
		b.w(bit(bop, df, uint32(c.Value)&uint32(e.Bits-1), dst.Index, src.Index))
		return nil
	case operand.Mem:
		b.vload(wtmp, c)
		b.w(splati(df, 0, wtmp, wtmp))
		f, _ := forms(op, e)
		b.w(f.word(e, dst.Index, src.Index, wtmp))
		return nil
	}
	return fmt.Errorf("%w: shift count %s", rterrors.ErrOperandKind, count)
}

// ShiftVar maps directly onto sll/srl/sra.df.
func (b *Backend) ShiftVar(op simd.Op, e simd.Elem, dst, src operand.Reg, counts operand.Operand) error {
	return b.three(op, e, dst, src, counts)
}

// Merge is bmnz.v: dst takes src where mask bits are set.
func (b *Backend) Merge(dst operand.Reg, src operand.Operand, mask operand.Reg) error {
	if err := vcheck(dst, mask); err != nil {
		return err
	}
	s, err := b.source(src)
	if err != nil {
		return err
	}
	if s == dst.Index {
		return nil
	}
	b.w(vec(VEC_BMNZ, dst.Index, s, mask.Index))
	return nil
}

// MaskJump reduces every byte to its top bit, then branches with bz.v
// (NONE) or bnz.b (FULL).
func (b *Backend) MaskJump(src operand.Reg, cond simd.MaskCond, l *emit.Label) error {
	if err := vcheck(src); err != nil {
		return err
	}
	b.w(bit(2, DF_B, 7, wtmp, src.Index))
	if cond == simd.NONE {
		b.branch(vbranch(BR_BZ_V, wtmp), l)
	} else {
		b.branch(vbranch(BR_BNZ_B, wtmp), l)
	}
	return nil
}

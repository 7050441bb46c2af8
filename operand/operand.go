// Package operand normalizes register, memory and immediate operands into
// triplets consumed by the encoders.
package operand

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/rterrors"
)

// Tag classifies a triplet.
type Tag uint8

const (
	TagVector  Tag = iota + 1 // vector register, direct
	TagBase                   // base register, direct
	TagPlain                  // [base]
	TagDisp                   // [base + disp]
	TagIndexed                // [base + index + disp]
	TagImm                    // immediate
)

func (t Tag) String() string {
	switch t {
	case TagVector:
		return "vector"
	case TagBase:
		return "base"
	case TagPlain:
		return "plain"
	case TagDisp:
		return "disp"
	case TagIndexed:
		return "indexed"
	case TagImm:
		return "imm"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Triplet is the normalized form of any operand. Encoders read the three
// fields positionally and never look behind them.
type Triplet struct {
	Value    int64
	Tag      Tag
	Fragment uint32
}

// Operand is anything that can be reduced to a triplet.
type Operand interface {
	Triplet() Triplet
	String() string
}

// Class selects the register file of a Reg.
type Class uint8

const (
	Vector Class = iota
	Base
)

// Reg references one register by index. At the portable API the index is
// logical; the backends receive physical indexes.
type Reg struct {
	Class Class
	Index int
}

// Xmm returns vector register i.
func Xmm(i int) Reg { return Reg{Class: Vector, Index: i} }

// R returns base register i.
func R(i int) Reg { return Reg{Class: Base, Index: i} }

var (
	Xmm0, Xmm1, Xmm2, Xmm3, Xmm4, Xmm5, Xmm6       = Xmm(0), Xmm(1), Xmm(2), Xmm(3), Xmm(4), Xmm(5), Xmm(6)
	Xmm7, Xmm8, Xmm9, XmmA, XmmB, XmmC, XmmD       = Xmm(7), Xmm(8), Xmm(9), Xmm(10), Xmm(11), Xmm(12), Xmm(13)
	Reax, Recx, Redx, Rebx, Resp, Rebp, Resi, Redi = R(0), R(1), R(2), R(3), R(4), R(5), R(6), R(7)
	Reg08, Reg09, Reg10, Reg11                     = R(8), R(9), R(10), R(11)
	Reg12, Reg13, Reg14, Reg15                     = R(12), R(13), R(14), R(15)
)

// Mask is the implicit mask register of Mmv.
var Mask = Xmm0

var baseNames = [16]string{"Reax", "Recx", "Redx", "Rebx", "Resp", "Rebp", "Resi", "Redi",
	"Reg08", "Reg09", "Reg10", "Reg11", "Reg12", "Reg13", "Reg14", "Reg15"}

func (r Reg) Triplet() Triplet {
	tag := TagVector
	if r.Class == Base {
		tag = TagBase
	}
	return Triplet{Value: int64(r.Index), Tag: tag, Fragment: RegFragment(r.Index)}
}

// RegFragment packs the low three index bits with the two extension bits.
func RegFragment(i int) uint32 {
	return uint32(i&7) | uint32(i>>3&1)<<3 | uint32(i>>4&1)<<4
}

// Low3 returns the ModRM/opcode field bits of r.
func (r Reg) Low3() byte { return byte(r.Index & 7) }

// Ext returns the REX/VEX extension bit of r.
func (r Reg) Ext() byte { return byte(r.Index >> 3 & 1) }

func (r Reg) String() string {
	if r.Class == Base {
		if r.Index >= 0 && r.Index < len(baseNames) {
			return baseNames[r.Index]
		}
		return fmt.Sprintf("R%d", r.Index)
	}
	if r.Index >= 0 && r.Index < 10 {
		return fmt.Sprintf("Xmm%d", r.Index)
	}
	if r.Index >= 10 && r.Index < 16 {
		return fmt.Sprintf("Xmm%c", 'A'+r.Index-10)
	}
	return fmt.Sprintf("X%d", r.Index)
}

// Mem is a base register plus displacement, optionally indexed (scale 1).
type Mem struct {
	Base    Reg
	Index   Reg
	Indexed bool
	Disp    Disp
}

// M returns [base + d].
func M(base Reg, d Disp) Mem { return Mem{Base: base, Disp: d} }

// MI returns [base + index + d].
func MI(base, index Reg, d Disp) Mem { return Mem{Base: base, Index: index, Indexed: true, Disp: d} }

func (m Mem) Triplet() Triplet {
	tag := TagDisp
	switch {
	case m.Indexed:
		tag = TagIndexed
	case m.Disp.Value == 0:
		tag = TagPlain
	}
	var frag uint32
	if m.Indexed {
		frag = uint32(m.Index.Index + 1)
	}
	return Triplet{Value: int64(m.Base.Index), Tag: tag, Fragment: frag}
}

// Check validates the registers and the displacement window.
func (m Mem) Check() error {
	if m.Base.Class != Base {
		return fmt.Errorf("%w: memory base %s is not a base register", rterrors.ErrOperandKind, m.Base)
	}
	if m.Indexed && m.Index.Class != Base {
		return fmt.Errorf("%w: memory index %s is not a base register", rterrors.ErrOperandKind, m.Index)
	}
	return m.Disp.Check()
}

// Offset returns m moved by delta bytes. The result is no longer bound to
// the caller's constructor window but must still fit DV.
func (m Mem) Offset(delta int64) (Mem, error) {
	n := m
	n.Disp = DV(m.Disp.Value + delta)
	if err := n.Disp.Check(); err != nil {
		return m, fmt.Errorf("%s moved by %d: %w", m, delta, err)
	}
	return n, nil
}

func (m Mem) String() string {
	if m.Indexed {
		return fmt.Sprintf("[%s+%s, %s]", m.Base, m.Index, m.Disp)
	}
	return fmt.Sprintf("[%s, %s]", m.Base, m.Disp)
}

package simd

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/target"
)

// Assembler issues portable instructions against one backend. The first
// error is kept and every later instruction is skipped.
type Assembler struct {
	b     Backend
	cfg   target.Config
	err   error
	count int
}

// New returns an Assembler emitting through b.
func New(b Backend) *Assembler {
	return &Assembler{b: b, cfg: b.Config()}
}

func (a *Assembler) Backend() Backend      { return a.b }
func (a *Assembler) Config() target.Config { return a.cfg }
func (a *Assembler) Err() error            { return a.err }
func (a *Assembler) Len() int              { return a.b.Len() }

// Count returns the number of portable instructions issued.
func (a *Assembler) Count() int { return a.count }

// Code resolves labels and returns the encoded program.
func (a *Assembler) Code() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.b.Finish()
}

// P returns the pointer-sized element of kind k.
func (a *Assembler) P(k lanes.Kind) Elem {
	return Elem{Bits: a.cfg.BaseBits(), Kind: k}
}

func (a *Assembler) NewLabel(name string) *emit.Label { return a.b.NewLabel(name) }

func (a *Assembler) Bind(l *emit.Label) {
	a.do("label", func() error { return a.b.Bind(l) })
}

func (a *Assembler) do(name string, f func() error) {
	a.count++
	if a.err != nil {
		return
	}
	if err := f(); err != nil {
		a.err = fmt.Errorf("#%d %s: %w", a.count, name, err)
	}
}

func opName(op Op, e Elem) string { return op.String() + "." + e.String() }

func (a *Assembler) vreg(r operand.Reg) error {
	if r.Class != operand.Vector {
		return fmt.Errorf("%w: %s is not a vector register", rterrors.ErrOperandKind, r)
	}
	if r.Index < 0 || r.Index >= a.cfg.VectorRegs() {
		return fmt.Errorf("%w: %s (usable 0..%d)", rterrors.ErrRegisterRange, r, a.cfg.VectorRegs()-1)
	}
	return nil
}

func (a *Assembler) breg(r operand.Reg) error {
	if r.Class != operand.Base {
		return fmt.Errorf("%w: %s is not a base register", rterrors.ErrOperandKind, r)
	}
	if r.Index < 0 || r.Index > 15 {
		return fmt.Errorf("%w: %s", rterrors.ErrRegisterRange, r)
	}
	return nil
}

func (a *Assembler) mem(m operand.Mem) error {
	if err := m.Check(); err != nil {
		return err
	}
	if err := a.breg(m.Base); err != nil {
		return err
	}
	if m.Indexed {
		if m.Index == operand.Resp {
			return fmt.Errorf("%w: %s cannot be an index", rterrors.ErrOperandKind, m.Index)
		}
		return a.breg(m.Index)
	}
	return nil
}

// vsrc accepts a vector register or memory operand.
func (a *Assembler) vsrc(o operand.Operand) error {
	switch v := o.(type) {
	case operand.Reg:
		return a.vreg(v)
	case operand.Mem:
		return a.mem(v)
	}
	return fmt.Errorf("%w: %s needs a register or memory operand", rterrors.ErrOperandKind, o)
}

func (a *Assembler) vregs(rs ...operand.Reg) error {
	for _, r := range rs {
		if err := a.vreg(r); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) supported(op Op, e Elem) error {
	if !op.Applies(e) {
		return fmt.Errorf("%w: %s", rterrors.ErrElement, opName(op, e))
	}
	if a.b.Supports(op, e) == Unsupported {
		return fmt.Errorf("%w: %s on %s", rterrors.ErrUnsupported, opName(op, e), a.cfg)
	}
	return nil
}

// Support reports how op on e is realised, taking compare derivation into
// account.
func (a *Assembler) Support(op Op, e Elem) Support {
	if !op.Applies(e) {
		return Unsupported
	}
	if op.IsCompare() {
		switch a.CompareRoute(op, e) {
		case RouteNone:
			return Unsupported
		case RouteDirect:
			return a.b.Supports(op, e)
		}
		return Derived
	}
	return a.b.Supports(op, e)
}

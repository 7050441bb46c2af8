// Package interp is the reference backend: instead of bytes it records a
// program that a Machine executes lane by lane. Encoders are checked
// against it.
package interp

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

const defaultStepLimit = 1 << 20

type step struct {
	name string
	exec func(m *Machine) (*emit.Label, error)
}

// Backend records portable operations as executable steps.
type Backend struct {
	cfg          target.Config
	prog         []step
	labels       map[*emit.Label]int
	refs         []*emit.Label
	equalityOnly bool
	noNegated    bool
	StepLimit    int
}

// Option configures a Backend.
type Option func(*Backend)

// EqualityOnly makes ceq the only native integer comparator so every other
// integer comparator goes through derivation.
func EqualityOnly() Option { return func(b *Backend) { b.equalityOnly = true } }

// NoNegatedLogic withholds ann/orn so they are synthesized from not.
func NoNegatedLogic() Option { return func(b *Backend) { b.noNegated = true } }

// New returns a reference backend for cfg.
func New(cfg target.Config, opts ...Option) *Backend {
	b := &Backend{cfg: cfg, labels: make(map[*emit.Label]int), StepLimit: defaultStepLimit}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Backend) Config() target.Config { return b.cfg }
func (b *Backend) Len() int              { return len(b.prog) }

func (b *Backend) NewLabel(name string) *emit.Label { return &emit.Label{Name: name} }

func (b *Backend) Bind(l *emit.Label) error {
	if _, ok := b.labels[l]; ok {
		return fmt.Errorf("%w: %q bound twice", rterrors.ErrLabel, l.Name)
	}
	b.labels[l] = len(b.prog)
	return nil
}

// Finish returns no bytes; it only checks that every jump target is bound.
func (b *Backend) Finish() ([]byte, error) {
	for _, l := range b.refs {
		if _, ok := b.labels[l]; !ok {
			return nil, fmt.Errorf("%w: %q never bound", rterrors.ErrLabel, l.Name)
		}
	}
	return nil, nil
}

func (b *Backend) add(name string, f func(m *Machine) (*emit.Label, error)) {
	b.prog = append(b.prog, step{name: name, exec: f})
}

func (b *Backend) Supports(op simd.Op, e simd.Elem) simd.Support {
	if b.noNegated && (op == lanes.OpAnn || op == lanes.OpOrn) {
		return simd.Fallback
	}
	if op.IsLogic() || op == lanes.OpMov || op == lanes.OpMmv || op == lanes.OpMkj {
		return simd.Native
	}
	if !op.Applies(e) {
		return simd.Unsupported
	}
	if op.IsCompare() && !b.NativeCompare(op, e) {
		return simd.Derived
	}
	return simd.Native
}

func (b *Backend) NativeCompare(c simd.Op, e simd.Elem) bool {
	if b.equalityOnly && !e.IsFloat() {
		return c == lanes.OpCeq
	}
	return c.IsCompare() && c.Applies(e)
}

// Machine is the architectural state a program runs against.
type Machine struct {
	V     [32]lanes.Vector
	R     [32]uint64
	Mem   []byte
	Steps int
	cfg   target.Config
}

// NewMachine returns zeroed registers over mem.
func (b *Backend) NewMachine(mem []byte) *Machine {
	m := &Machine{Mem: mem, cfg: b.cfg}
	for i := range m.V {
		m.V[i] = make(lanes.Vector, b.cfg.PhysBytes())
	}
	return m
}

// Run executes the recorded program from the first step.
func (b *Backend) Run(m *Machine) error {
	pc := 0
	for pc < len(b.prog) {
		if m.Steps >= b.StepLimit {
			return fmt.Errorf("%w: %d", rterrors.ErrStepLimit, b.StepLimit)
		}
		m.Steps++
		s := b.prog[pc]
		to, err := s.exec(m)
		if err != nil {
			return fmt.Errorf("step %d %s: %w", pc, s.name, err)
		}
		if to == nil {
			pc++
			continue
		}
		next, ok := b.labels[to]
		if !ok {
			return fmt.Errorf("%w: %q never bound", rterrors.ErrLabel, to.Name)
		}
		log.Trace(log.InterpExec, "jump", "from", pc, "to", next, "label", to.Name)
		pc = next
	}
	return nil
}

func (m *Machine) baseMask() uint64 {
	if m.cfg.BaseBits() == 32 {
		return 0xFFFFFFFF
	}
	return ^uint64(0)
}

func (m *Machine) addr(mem operand.Mem, size int) (int, error) {
	a := m.R[mem.Base.Index] + uint64(mem.Disp.Value)
	if mem.Indexed {
		a += m.R[mem.Index.Index]
	}
	if m.cfg.AddressBits() == 32 {
		a &= 0xFFFFFFFF
	}
	if a+uint64(size) > uint64(len(m.Mem)) {
		return 0, fmt.Errorf("%w: %#x+%d", rterrors.ErrMemoryBounds, a, size)
	}
	return int(a), nil
}

func (m *Machine) load(mem operand.Mem, size int) (lanes.Vector, error) {
	a, err := m.addr(mem, size)
	if err != nil {
		return nil, err
	}
	v := make(lanes.Vector, size)
	copy(v, m.Mem[a:a+size])
	return v, nil
}

func (m *Machine) store(mem operand.Mem, v []byte) error {
	a, err := m.addr(mem, len(v))
	if err != nil {
		return err
	}
	copy(m.Mem[a:], v)
	return nil
}

// vec reads a vector register or a full physical vector from memory.
func (m *Machine) vec(o operand.Operand) (lanes.Vector, error) {
	switch v := o.(type) {
	case operand.Reg:
		return m.V[v.Index], nil
	case operand.Mem:
		return m.load(v, m.cfg.PhysBytes())
	}
	return nil, fmt.Errorf("%w: %s", rterrors.ErrOperandKind, o)
}

func (m *Machine) setV(r operand.Reg, v lanes.Vector) {
	out := make(lanes.Vector, len(v))
	copy(out, v)
	m.V[r.Index] = out
}

// base reads a base operand at the configured BASE width.
func (m *Machine) base(o operand.Operand) (uint64, error) {
	switch v := o.(type) {
	case operand.Reg:
		return m.R[v.Index] & m.baseMask(), nil
	case operand.Imm:
		return uint64(v.Signed()) & m.baseMask(), nil
	case operand.Mem:
		raw, err := m.load(v, m.cfg.BaseBits()/8)
		if err != nil {
			return 0, err
		}
		return lanes.Vector(raw).Get(lanes.Elem{Bits: m.cfg.BaseBits()}, 0), nil
	}
	return 0, fmt.Errorf("%w: %s", rterrors.ErrOperandKind, o)
}

package msa

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

// Backend emits MIPS MSA words for one configuration.
type Backend struct {
	cfg target.Config
	buf *emit.Buffer
}

// New returns an encoder for cfg.
func New(cfg target.Config) (*Backend, error) {
	if !cfg.ISA.IsMIPS() {
		return nil, fmt.Errorf("%w: %s is not a mips target", rterrors.ErrTargetConfig, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug(log.MSAEncoding, "msa backend", "target", cfg)
	return &Backend{cfg: cfg, buf: emit.NewBuffer()}, nil
}

// NewAssembler returns a portable assembler over a fresh MSA backend.
func NewAssembler(cfg target.Config) (*simd.Assembler, error) {
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return simd.New(b), nil
}

func (b *Backend) Config() target.Config            { return b.cfg }
func (b *Backend) Len() int                         { return b.buf.Len() }
func (b *Backend) NewLabel(name string) *emit.Label { return b.buf.NewLabel(name) }
func (b *Backend) Bind(l *emit.Label) error         { return b.buf.Bind(l) }
func (b *Backend) Finish() ([]byte, error)          { return b.buf.Finish() }

func (b *Backend) w(word uint32) { b.buf.EmitW(word) }

// branch emits a branch word with its delay slot and records the fixup.
func (b *Backend) branch(word uint32, l *emit.Label) {
	at := b.buf.Len()
	b.w(word)
	b.buf.Fix(emit.MIPS16, at, at+4, l)
	b.w(nop)
}

// Supports: every lane operation is native except the negated logic forms.
func (b *Backend) Supports(op simd.Op, e simd.Elem) simd.Support {
	switch op {
	case lanes.OpAnn, lanes.OpOrn:
		return simd.Derived
	case lanes.OpMov, lanes.OpNot, lanes.OpMkj, lanes.OpMmv,
		lanes.OpAnd, lanes.OpOrr, lanes.OpXor:
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

// NativeCompare: integers have ceq, clt and cle in both signednesses,
// floats the ordered eq/lt/le and the unordered ne.
func (b *Backend) NativeCompare(c simd.Op, e simd.Elem) bool {
	switch c {
	case lanes.OpCeq, lanes.OpClt, lanes.OpCle:
		return true
	case lanes.OpCne:
		return e.IsFloat()
	}
	return false
}

func vcheck(rs ...operand.Reg) error {
	for _, r := range rs {
		if r.Class != operand.Vector || r.Index < 0 || r.Index > 31 {
			return fmt.Errorf("%w: %s", rterrors.ErrRegisterRange, r)
		}
	}
	return nil
}

// source returns the register holding s, loading memory into wtmp.
func (b *Backend) source(s operand.Operand) (int, error) {
	switch v := s.(type) {
	case operand.Reg:
		if err := vcheck(v); err != nil {
			return 0, err
		}
		return v.Index, nil
	case operand.Mem:
		b.vload(wtmp, v)
		return wtmp, nil
	}
	return 0, fmt.Errorf("%w: %s", rterrors.ErrOperandKind, s)
}

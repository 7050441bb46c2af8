package x86

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/fallback"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

// Backend emits x86_64 machine code for one configuration.
type Backend struct {
	cfg   target.Config
	buf   *emit.Buffer
	avx   bool // VEX encodings
	wide  bool // 256-bit physical registers
	slots fallback.Slots
	plans *fallback.Table
}

// New returns an encoder for cfg.
func New(cfg target.Config) (*Backend, error) {
	if cfg.ISA != target.X86_64 {
		return nil, fmt.Errorf("%w: %s is not an x86 target", rterrors.ErrTargetConfig, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		cfg:   cfg,
		buf:   emit.NewBuffer(),
		avx:   cfg.Level >= target.AVX1,
		wide:  cfg.PhysBytes() == 32,
		slots: fallback.SlotsFor(cfg),
	}
	b.plans = fallback.NewTable(planFor)
	log.Debug(log.X86Encoding, "x86 backend", "target", cfg, "vex", b.avx, "scratch", reg2name(cfg.Scratch.Base))
	return b, nil
}

// NewAssembler returns a portable assembler over a fresh x86 backend.
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

// form is one opcode: mandatory prefix, opcode map and opcode byte.
type form struct {
	pp byte
	mm byte
	op byte
	w  bool
}

var ppBytes = [...]byte{0, X86_PREFIX_66, X86_PREFIX_F3, X86_PREFIX_F2}

func (b *Backend) adr(x rm) {
	if x.isMem && b.cfg.NeedADR() {
		b.buf.EmitB(X86_PREFIX_ADR)
	}
}

// emitLegacy emits [67] [pp] [REX] [0F [38|3A]] op ModRM [SIB] [disp] [imm].
func (b *Backend) emitLegacy(f form, r int, x rm, imm ...byte) {
	b.adr(x)
	if f.pp != ppNone {
		b.buf.EmitB(ppBytes[f.pp])
	}
	xx, bb := x.xb()
	if f.w || r >= 8 || xx|bb != 0 {
		b.buf.EmitB(rex(f.w, byte(r>>3), xx, bb))
	}
	switch f.mm {
	case map0F:
		b.buf.EmitB(0x0F)
	case map0F38:
		b.buf.EmitBytes(0x0F, 0x38)
	case map0F3A:
		b.buf.EmitBytes(0x0F, 0x3A)
	}
	b.buf.EmitB(f.op)
	encodeRM(b.buf, r, x)
	b.buf.EmitBytes(imm...)
}

// emitVEX emits [67] VEX op ModRM [SIB] [disp] [imm] with v in VEX.vvvv.
func (b *Backend) emitVEX(f form, l bool, r, v int, x rm, imm ...byte) {
	b.adr(x)
	xx, bb := x.xb()
	b.buf.EmitBytes(vex(f.w, l, f.pp, f.mm, byte(r>>3), xx, bb, v)...)
	b.buf.EmitB(f.op)
	encodeRM(b.buf, r, x)
	b.buf.EmitBytes(imm...)
}

// vcheck rejects vector operands outside the physical file.
func (b *Backend) vcheck(rs ...operand.Reg) error {
	for _, r := range rs {
		if r.Class != operand.Vector || r.Index < 0 || r.Index > 15 {
			return fmt.Errorf("%w: %s", rterrors.ErrRegisterRange, r)
		}
	}
	return nil
}

// rmOf converts a vector source. Stack-relative vector memory is refused
// because fallback sequences move rsp.
func (b *Backend) rmOf(o operand.Operand) (rm, error) {
	switch v := o.(type) {
	case operand.Reg:
		if err := b.vcheck(v); err != nil {
			return rm{}, err
		}
		return reg(v.Index), nil
	case operand.Mem:
		if err := memCheck(v); err != nil {
			return rm{}, err
		}
		return mem(v), nil
	}
	return rm{}, fmt.Errorf("%w: %s", rterrors.ErrOperandKind, o)
}

func memCheck(m operand.Mem) error {
	if m.Base.Index == regRSP {
		return fmt.Errorf("%w: rsp based vector operand", rterrors.ErrOperandKind)
	}
	if m.Indexed && m.Index.Index == regRSP {
		return fmt.Errorf("%w: rsp cannot be an index", rterrors.ErrOperandKind)
	}
	return nil
}

// Supports reports how op on e is encoded on this target.
func (b *Backend) Supports(op simd.Op, e simd.Elem) simd.Support {
	switch op {
	case lanes.OpMov, lanes.OpNot, lanes.OpMkj,
		lanes.OpAnd, lanes.OpAnn, lanes.OpOrr, lanes.OpXor:
		return simd.Native
	case lanes.OpOrn:
		return simd.Derived
	case lanes.OpMmv:
		if b.blend() {
			return simd.Native
		}
		return simd.Derived
	}
	if !op.Applies(e) {
		return simd.Unsupported
	}
	if op.IsCompare() && !b.NativeCompare(op, e) {
		return simd.Derived
	}
	p, ok := b.plan(op, e)
	switch {
	case !ok:
		return simd.Unsupported
	case p.Unit == fallback.None:
		return simd.Native
	}
	return simd.Fallback
}

// NativeCompare: integers have ceq and signed cgt, floats have the four
// predicates cmpps encodes directly.
func (b *Backend) NativeCompare(c simd.Op, e simd.Elem) bool {
	if e.IsFloat() {
		switch c {
		case lanes.OpCeq, lanes.OpCne, lanes.OpClt, lanes.OpCle:
			return true
		}
		return false
	}
	return c == lanes.OpCeq || c == lanes.OpCgt && e.IsSigned()
}

func (b *Backend) plan(op simd.Op, e simd.Elem) (fallback.Plan, bool) {
	return b.plans.Lookup(fallback.Key{Op: op, Elem: e, Level: b.cfg.Level, Width: b.cfg.PhysBytes()})
}

// blend reports whether Mmv has a native blend at this level and width.
func (b *Backend) blend() bool {
	if b.wide {
		return b.cfg.Level >= target.AVX2
	}
	return b.cfg.Level >= target.SSE4
}

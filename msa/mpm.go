package msa

import (
	"github.com/colorfulnotion/rtsimd/operand"
)

func fitsInt16(v int64) bool { return v >= -1<<15 && v < 1<<15 }

// ptrAdd is the pointer-sized register add.
func (b *Backend) ptrAdd(rd, rs, rt int) {
	fn := uint32(FN_ADDU)
	if b.cfg.Pointer() == 64 {
		fn = FN_DADDU
	}
	b.w(rtype(fn, rd, rs, rt, 0))
}

// ptrAddImm is the pointer-sized immediate add.
func (b *Backend) ptrAddImm(rt, rs int, v int16) {
	op := uint32(OP_ADDIU)
	if b.cfg.Pointer() == 64 {
		op = OP_DADDIU
	}
	b.w(itype(op, rt, rs, uint16(v)))
}

// loadImm32 sets r to the sign-extended 32-bit value v.
func (b *Backend) loadImm32(r int, v int32) {
	if fitsInt16(int64(v)) {
		b.w(itype(OP_ADDIU, r, regZero, uint16(v)))
		return
	}
	b.w(itype(OP_LUI, r, regZero, uint16(uint32(v)>>16)))
	if lo := uint16(v); lo != 0 {
		b.w(itype(OP_ORI, r, r, lo))
	}
}

// resolve reduces m to a register plus a displacement that satisfies
// fits, going through $at for an index and $t8 for an out of window
// displacement.
func (b *Backend) resolve(m operand.Mem, fits func(int64) bool) (int, int64) {
	base := int(gprs[m.Base.Index])
	if m.Indexed {
		b.ptrAdd(regAT, base, int(gprs[m.Index.Index]))
		base = regAT
	}
	disp := m.Disp.Value
	if fits(disp) {
		return base, disp
	}
	if fitsInt16(disp) {
		b.ptrAddImm(regT8, base, int16(disp))
		return regT8, 0
	}
	b.loadImm32(regT8, int32(disp))
	b.ptrAdd(regT8, regT8, base)
	return regT8, 0
}

// vaddr returns base and element offset for an MI10 access of format df.
// The 10-bit signed offset is scaled by the element size.
func (b *Backend) vaddr(m operand.Mem, df uint32) (int, int32) {
	scale := int64(1) << df
	rs, disp := b.resolve(m, func(d int64) bool {
		return d%scale == 0 && d/scale >= -512 && d/scale <= 511
	})
	return rs, int32(disp / scale)
}

// gaddr returns base and byte offset for a general purpose load or store.
func (b *Backend) gaddr(m operand.Mem) (int, int16) {
	rs, disp := b.resolve(m, fitsInt16)
	return rs, int16(disp)
}

// vload loads a full vector register from m.
func (b *Backend) vload(wd int, m operand.Mem) {
	rs, off := b.vaddr(m, DF_W)
	b.w(mi10(MI10_LD, DF_W, wd, rs, off))
}

func (b *Backend) vstore(m operand.Mem, ws int) {
	rs, off := b.vaddr(m, DF_W)
	b.w(mi10(MI10_ST, DF_W, ws, rs, off))
}

package x86

import (
	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/operand"
)

// rm is the r/m side of an instruction: a register number or a memory
// reference.
type rm struct {
	reg   int
	mem   operand.Mem
	isMem bool
}

func reg(r int) rm { return rm{reg: r} }
func mem(m operand.Mem) rm { return rm{mem: m, isMem: true} }
func (x rm) is(r int) bool { return !x.isMem && x.reg == r }
func (x rm) base() int { return x.mem.Base.Index }

// xb returns the REX.X and REX.B extension bits of x.
func (x rm) xb() (byte, byte) {
	if !x.isMem {
		return 0, byte(x.reg >> 3 & 1)
	}
	var xx byte
	if x.mem.Indexed {
		xx = byte(x.mem.Index.Index >> 3 & 1)
	}
	return xx, byte(x.mem.Base.Index >> 3 & 1)
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

func sib(scale, index, base byte) byte {
	return scale<<6 | (index&7)<<3 | base&7
}

func fitsInt8(v int64) bool { return v >= -128 && v <= 127 }

// encodeRM appends ModRM, the optional SIB byte and the displacement for
// reg against x. rsp and r12 bases need a SIB byte; rbp and r13 bases
// cannot use mod 00 and take a zero disp8 instead.
func encodeRM(buf *emit.Buffer, r int, x rm) {
	if !x.isMem {
		buf.EmitB(modrm(X86_MOD_REGISTER, byte(r), byte(x.reg)))
		return
	}
	b := byte(x.mem.Base.Index)
	disp := x.mem.Disp.Value
	var mod byte
	switch {
	case disp == 0 && b&7 != regRBP:
		mod = X86_MOD_INDIRECT
	case fitsInt8(disp):
		mod = X86_MOD_INDIRECT_DISP8
	default:
		mod = X86_MOD_INDIRECT_DISP32
	}
	if x.mem.Indexed || b&7 == regRSP {
		index := byte(regRSP) // no index
		if x.mem.Indexed {
			index = byte(x.mem.Index.Index)
		}
		buf.EmitB(modrm(mod, byte(r), regRSP))
		buf.EmitB(sib(0, index, b))
	} else {
		buf.EmitB(modrm(mod, byte(r), b))
	}
	switch mod {
	case X86_MOD_INDIRECT_DISP8:
		buf.EmitB(byte(int8(disp)))
	case X86_MOD_INDIRECT_DISP32:
		buf.EmitU32(uint32(int32(disp)))
	}
}

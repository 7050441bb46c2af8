// Package msa encodes portable instructions for MIPS32/MIPS64 with the
// MSA vector unit. Words are emitted little-endian.
package msa

const (
	MSA_MAJOR  = 0x1E << 26 // 011110
	COP1_MAJOR = 0x11 << 26 // 010001, vector branches
)

// 3R minor opcodes
const (
	MINOR_SHIFT  = 0x0D // sll sra srl
	MINOR_ADDSUB = 0x0E // addv subv max min
	MINOR_CMP    = 0x0F // ceq clt cle
	MINOR_ADDS   = 0x10 // adds
	MINOR_SUBS   = 0x11 // subs
	MINOR_MUL    = 0x12 // mulv
	MINOR_VEC    = 0x1E // and.v or.v nor.v xor.v bmnz.v
	MINOR_BIT    = 0x09 // slli srai srli
	MINOR_ELM    = 0x19 // splati
	MINOR_3RF_C  = 0x1A // fcaf .. fcule
	MINOR_3RF_A  = 0x1B // fadd .. fmax
	MINOR_3RF_N  = 0x1C // fcor fcune fcne
)

// VEC operations
const (
	VEC_AND  = 0
	VEC_OR   = 1
	VEC_NOR  = 2
	VEC_XOR  = 3
	VEC_BMNZ = 4
)

// MI10 minor fields (bits 5..2)
const (
	MI10_LD = 0x8
	MI10_ST = 0x9
)

// Vector branch rs fields
const (
	BR_BZ_V  = 0x0B
	BR_BNZ_V = 0x0F
	BR_BZ_B  = 0x18
	BR_BNZ_B = 0x1C
)

// Data formats
const (
	DF_B = 0
	DF_H = 1
	DF_W = 2
	DF_D = 3
)

// General purpose opcodes
const (
	OP_SPECIAL = 0x00
	OP_BEQ     = 0x04
	OP_BNE     = 0x05
	OP_ADDIU   = 0x09
	OP_ANDI    = 0x0C
	OP_ORI     = 0x0D
	OP_XORI    = 0x0E
	OP_LUI     = 0x0F
	OP_DADDIU  = 0x19
	OP_LW      = 0x23
	OP_SW      = 0x2B
	OP_LD      = 0x37
	OP_SD      = 0x3F
)

// SPECIAL functions
const (
	FN_SLL    = 0x00
	FN_SRL    = 0x02
	FN_SRA    = 0x03
	FN_ADDU   = 0x21
	FN_SUBU   = 0x23
	FN_AND    = 0x24
	FN_OR     = 0x25
	FN_XOR    = 0x26
	FN_SLT    = 0x2A
	FN_SLTU   = 0x2B
	FN_DADDU  = 0x2D
	FN_DSUBU  = 0x2F
	FN_DSLL   = 0x38
	FN_DSRL   = 0x3A
	FN_DSRA   = 0x3B
	FN_DSLL32 = 0x3C
	FN_DSRL32 = 0x3E
	FN_DSRA32 = 0x3F
)

// Reserved registers
const (
	regZero = 0
	regAT   = 1  // indexed addresses
	regT8   = 24 // out of window offsets
	regT9   = 25 // materialized operands
	regSP   = 29

	wtmp = 15 // vector scratch
)

const nop = 0x00000000

// gprs maps logical BASE registers to MIPS registers: $v0.. upwards with
// the stack pointer in the fifth slot.
var gprs = [16]uint32{2, 3, 4, 5, regSP, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17}

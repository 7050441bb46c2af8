// Package x86 encodes portable instructions for x86_64 with SSE2, SSE4,
// AVX1 and AVX2.
package x86

// ================================================================================================
// Prefixes
// ================================================================================================

const (
	X86_PREFIX_66  = 0x66 // operand size override, SSE mandatory prefix
	X86_PREFIX_F3  = 0xF3
	X86_PREFIX_F2  = 0xF2
	X86_PREFIX_ADR = 0x67 // address size override

	X86_REX   = 0x40
	X86_REX_W = 0x08 // REX.W - 64-bit operand size
	X86_REX_R = 0x04 // REX.R - Extension of ModRM reg field
	X86_REX_X = 0x02 // REX.X - Extension of SIB index field
	X86_REX_B = 0x01 // REX.B - Extension of ModRM r/m or SIB base

	X86_VEX2 = 0xC5
	X86_VEX3 = 0xC4
)

// Mandatory prefix field (VEX.pp)
const (
	ppNone = 0
	pp66   = 1
	ppF3   = 2
	ppF2   = 3
)

// Opcode maps (VEX.mmmmm)
const (
	mapOne  = 0 // one-byte opcodes, legacy only
	map0F   = 1
	map0F38 = 2
	map0F3A = 3
)

// ModRM Mode Constants
const (
	X86_MOD_INDIRECT        = 0x00
	X86_MOD_INDIRECT_DISP8  = 0x01
	X86_MOD_INDIRECT_DISP32 = 0x02
	X86_MOD_REGISTER        = 0x03
)

// ================================================================================================
// General purpose opcodes
// ================================================================================================

const (
	X86_OP_ADD_RM_R        = 0x01
	X86_OP_ADD_R_RM        = 0x03
	X86_OP_OR_RM_R         = 0x09
	X86_OP_OR_R_RM         = 0x0B
	X86_OP_AND_RM_R        = 0x21
	X86_OP_AND_R_RM        = 0x23
	X86_OP_SUB_RM_R        = 0x29
	X86_OP_SUB_R_RM        = 0x2B
	X86_OP_XOR_RM_R        = 0x31
	X86_OP_XOR_R_RM        = 0x33
	X86_OP_CMP_RM_R        = 0x39
	X86_OP_CMP_R_RM        = 0x3B
	X86_OP_PUSH_R          = 0x50
	X86_OP_POP_R           = 0x58
	X86_OP_GROUP1_RM_IMM32 = 0x81
	X86_OP_GROUP1_RM_IMM8  = 0x83
	X86_OP_TEST_RM_R       = 0x85
	X86_OP_MOV_RM8_R8      = 0x88
	X86_OP_MOV_RM_R        = 0x89
	X86_OP_MOV_R_RM        = 0x8B
	X86_OP_CMP_EAX_IMM32   = 0x3D
	X86_OP_MOV_R_IMM       = 0xB8 // + reg
	X86_OP_GROUP2_RM_IMM8  = 0xC1
	X86_OP_MOV_RM_IMM      = 0xC7
	X86_OP_GROUP2_RM_CL    = 0xD3
	X86_OP_JMP_REL32       = 0xE9
	X86_OP_GROUP3_RM       = 0xF7
	X86_OP_RET             = 0xC3
)

// Two-byte opcodes (0F xx)
const (
	X86_OP2_CMOVCC   = 0x40 // + cc
	X86_OP2_JCC      = 0x80 // + cc, rel32
	X86_OP2_SETCC    = 0x90 // + cc
	X86_OP2_IMUL     = 0xAF
	X86_OP2_MOVZX_8  = 0xB6
	X86_OP2_MOVZX_16 = 0xB7
	X86_OP2_MOVSX_8  = 0xBE
	X86_OP2_MOVSX_16 = 0xBF
)

// Condition codes
const (
	X86_CC_B  = 0x2
	X86_CC_AE = 0x3
	X86_CC_E  = 0x4
	X86_CC_NE = 0x5
	X86_CC_BE = 0x6
	X86_CC_A  = 0x7
	X86_CC_L  = 0xC
	X86_CC_GE = 0xD
	X86_CC_LE = 0xE
	X86_CC_G  = 0xF
)

// Group opcode extensions (ModRM.reg)
const (
	X86_REG_ADD = 0
	X86_REG_OR  = 1
	X86_REG_AND = 4
	X86_REG_SUB = 5
	X86_REG_XOR = 6
	X86_REG_CMP = 7

	X86_REG_SHL = 4
	X86_REG_SHR = 5
	X86_REG_SAR = 7

	X86_REG_NEG = 3

	X86_REG_PSRL = 2
	X86_REG_PSRA = 4
	X86_REG_PSLL = 6
)

// General purpose registers used by fallback sequences
const (
	regRAX = 0
	regRCX = 1
	regRSP = 4
	regRBP = 5
)

// tmp is the physical vector register reserved for encoder sequences.
const tmp = 15

// Compare predicates for cmpps/cmppd
const (
	X86_CMP_EQ_OQ   = 0x00
	X86_CMP_LT_OS   = 0x01
	X86_CMP_LE_OS   = 0x02
	X86_CMP_NEQ_UQ  = 0x04
	X86_CMP_TRUE_UQ = 0x0F
)

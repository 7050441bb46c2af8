package msa

import (
	"encoding/binary"
	"fmt"
	"strings"
)

var dfNames = [...]string{"b", "h", "w", "d"}

var r3Names = map[[2]uint32]string{
	{MINOR_SHIFT, 0}: "sll", {MINOR_SHIFT, 1}: "sra", {MINOR_SHIFT, 2}: "srl",
	{MINOR_ADDSUB, 0}: "addv", {MINOR_ADDSUB, 1}: "subv",
	{MINOR_ADDSUB, 2}: "max_s", {MINOR_ADDSUB, 3}: "max_u",
	{MINOR_ADDSUB, 4}: "min_s", {MINOR_ADDSUB, 5}: "min_u",
	{MINOR_CMP, 0}: "ceq", {MINOR_CMP, 2}: "clt_s", {MINOR_CMP, 3}: "clt_u",
	{MINOR_CMP, 4}: "cle_s", {MINOR_CMP, 5}: "cle_u",
	{MINOR_ADDS, 2}: "adds_s", {MINOR_ADDS, 3}: "adds_u",
	{MINOR_SUBS, 0}: "subs_s", {MINOR_SUBS, 1}: "subs_u",
	{MINOR_MUL, 0}: "mulv",
}

var r3fNames = map[[2]uint32]string{
	{MINOR_3RF_A, 0x0}: "fadd", {MINOR_3RF_A, 0x1}: "fsub", {MINOR_3RF_A, 0x2}: "fmul",
	{MINOR_3RF_A, 0x3}: "fdiv", {MINOR_3RF_A, 0xC}: "fmin", {MINOR_3RF_A, 0xE}: "fmax",
	{MINOR_3RF_C, 0x2}: "fceq", {MINOR_3RF_C, 0x4}: "fclt", {MINOR_3RF_C, 0x6}: "fcle",
	{MINOR_3RF_N, 0x2}: "fcune",
}

var vecNames = [...]string{"and.v", "or.v", "nor.v", "xor.v", "bmnz.v"}

var specialNames = map[uint32]string{
	FN_SLL: "sll", FN_SRL: "srl", FN_SRA: "sra", FN_ADDU: "addu", FN_SUBU: "subu",
	FN_AND: "and", FN_OR: "or", FN_XOR: "xor", FN_SLT: "slt", FN_SLTU: "sltu",
	FN_DADDU: "daddu", FN_DSUBU: "dsubu", FN_DSLL: "dsll", FN_DSRL: "dsrl", FN_DSRA: "dsra",
	FN_DSLL32: "dsll32", FN_DSRL32: "dsrl32", FN_DSRA32: "dsra32",
}

var itypeNames = map[uint32]string{
	OP_BEQ: "beq", OP_BNE: "bne", OP_ADDIU: "addiu", OP_ANDI: "andi", OP_ORI: "ori",
	OP_XORI: "xori", OP_LUI: "lui", OP_DADDIU: "daddiu", OP_LW: "lw", OP_SW: "sw",
	OP_LD: "ld", OP_SD: "sd",
}

// DecodeWord names one instruction word.
func DecodeWord(w uint32) string {
	if w == nop {
		return "nop"
	}
	wt, ws, wd := w>>16&31, w>>11&31, w>>6&31
	switch w >> 26 {
	case MSA_MAJOR >> 26:
		return decodeMSA(w, wt, ws, wd)
	case COP1_MAJOR >> 26:
		rs := w >> 21 & 31
		names := map[uint32]string{BR_BZ_V: "bz.v", BR_BNZ_V: "bnz.v", BR_BZ_B: "bz.b", BR_BNZ_B: "bnz.b"}
		if n, ok := names[rs]; ok {
			return fmt.Sprintf("%s $w%d, %d", n, wt, int16(w))
		}
	case OP_SPECIAL:
		if n, ok := specialNames[w&63]; ok {
			rs, rt, rd, sa := w>>21&31, w>>16&31, w>>11&31, w>>6&31
			if fn := w & 63; fn <= FN_SRA || fn >= FN_DSLL {
				return fmt.Sprintf("%s $%d, $%d, %d", n, rd, rt, sa)
			}
			return fmt.Sprintf("%s $%d, $%d, $%d", n, rd, rs, rt)
		}
	default:
		op, rt, rs := w>>26, w>>16&31, w>>21&31
		n, ok := itypeNames[op]
		switch {
		case !ok:
		case op == OP_BEQ || op == OP_BNE:
			return fmt.Sprintf("%s $%d, $%d, %d", n, rs, rt, int16(w))
		case op == OP_LUI:
			return fmt.Sprintf("lui $%d, %#x", rt, uint16(w))
		case op >= OP_LW:
			return fmt.Sprintf("%s $%d, %d($%d)", n, rt, int16(w), rs)
		case op >= OP_ANDI && op <= OP_XORI:
			return fmt.Sprintf("%s $%d, $%d, %#x", n, rt, rs, uint16(w))
		default:
			return fmt.Sprintf("%s $%d, $%d, %d", n, rt, rs, int16(w))
		}
	}
	return fmt.Sprintf(".word 0x%08x", w)
}

func decodeMSA(w, wt, ws, wd uint32) string {
	minor := w & 63
	switch minor {
	case MINOR_VEC:
		if op := w >> 21 & 31; int(op) < len(vecNames) {
			return fmt.Sprintf("%s $w%d, $w%d, $w%d", vecNames[op], wd, ws, wt)
		}
	case MINOR_BIT:
		dfm := w >> 16 & 0x7F
		df, m := uint32(DF_D), dfm&63
		switch {
		case dfm&0x70 == 0x70:
			df, m = DF_B, dfm&7
		case dfm&0x60 == 0x60:
			df, m = DF_H, dfm&15
		case dfm&0x40 == 0x40:
			df, m = DF_W, dfm&31
		}
		names := [...]string{"slli", "srai", "srli"}
		if op := w >> 23 & 7; op < 3 {
			return fmt.Sprintf("%s.%s $w%d, $w%d, %d", names[op], dfNames[df], wd, ws, m)
		}
	case MINOR_ELM:
		if w&^(31<<11|31<<6) == moveV {
			return fmt.Sprintf("move.v $w%d, $w%d", wd, ws)
		}
		return fmt.Sprintf("splati $w%d, $w%d[%#x]", wd, ws, w>>16&63)
	case MINOR_3RF_A, MINOR_3RF_C, MINOR_3RF_N:
		if n, ok := r3fNames[[2]uint32{minor, w >> 22 & 15}]; ok {
			return fmt.Sprintf("%s.%s $w%d, $w%d, $w%d", n, dfNames[2+w>>21&1], wd, ws, wt)
		}
	default:
		if minor>>2 == MI10_LD || minor>>2 == MI10_ST {
			name := "ld"
			if minor>>2 == MI10_ST {
				name = "st"
			}
			off := int32(w>>16&0x3FF) << 22 >> 22
			return fmt.Sprintf("%s.%s $w%d, %d($%d)", name, dfNames[w&3], wd, off<<(w&3), ws)
		}
		if n, ok := r3Names[[2]uint32{minor, w >> 23 & 7}]; ok {
			return fmt.Sprintf("%s.%s $w%d, $w%d, $w%d", n, dfNames[w>>21&3], wd, ws, wt)
		}
	}
	return fmt.Sprintf(".word 0x%08x", w)
}

// Disassemble lists code word by word.
func Disassemble(code []byte) string {
	var sb strings.Builder
	for off := 0; off+4 <= len(code); off += 4 {
		w := binary.LittleEndian.Uint32(code[off:])
		sb.WriteString(fmt.Sprintf("0x%04x: %08x  %s\n", off, w, DecodeWord(w)))
	}
	return sb.String()
}

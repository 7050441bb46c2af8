package msa

// r3 packs a 3R word: wd = ws op wt.
func r3(minor, op, df uint32, wd, ws, wt int) uint32 {
	return MSA_MAJOR | op<<23 | df<<21 | uint32(wt&31)<<16 | uint32(ws&31)<<11 | uint32(wd&31)<<6 | minor
}

// r3f packs a 3RF word; df 0 is single, 1 double precision.
func r3f(minor, op, df uint32, wd, ws, wt int) uint32 {
	return MSA_MAJOR | op<<22 | df<<21 | uint32(wt&31)<<16 | uint32(ws&31)<<11 | uint32(wd&31)<<6 | minor
}

// vec packs a VEC word.
func vec(op uint32, wd, ws, wt int) uint32 {
	return MSA_MAJOR | op<<21 | uint32(wt&31)<<16 | uint32(ws&31)<<11 | uint32(wd&31)<<6 | MINOR_VEC
}

// bit packs a BIT word with the shift amount m folded into df/m.
func bit(op, df, m uint32, wd, ws int) uint32 {
	var dfm uint32
	switch df {
	case DF_B:
		dfm = 0x70 | m&7
	case DF_H:
		dfm = 0x60 | m&15
	case DF_W:
		dfm = 0x40 | m&31
	default:
		dfm = m & 63
	}
	return MSA_MAJOR | op<<23 | dfm<<16 | uint32(ws&31)<<11 | uint32(wd&31)<<6 | MINOR_BIT
}

// splati packs an ELM splat of element n of ws.
func splati(df, n uint32, wd, ws int) uint32 {
	var dfn uint32
	switch df {
	case DF_B:
		dfn = n & 15
	case DF_H:
		dfn = 0x20 | n&7
	case DF_W:
		dfn = 0x30 | n&3
	default:
		dfn = 0x38 | n&1
	}
	return MSA_MAJOR | 1<<22 | dfn<<16 | uint32(ws&31)<<11 | uint32(wd&31)<<6 | MINOR_ELM
}

// mi10 packs a vector load or store; off is in elements of df.
func mi10(minor, df uint32, wd, rs int, off int32) uint32 {
	return MSA_MAJOR | uint32(off&0x3FF)<<16 | uint32(rs&31)<<11 | uint32(wd&31)<<6 | minor<<2 | df
}

// vbranch packs a vector branch; the offset is patched later.
func vbranch(rs uint32, wt int) uint32 {
	return COP1_MAJOR | rs<<21 | uint32(wt&31)<<16
}

// rtype packs a SPECIAL word.
func rtype(fn uint32, rd, rs, rt int, sa uint32) uint32 {
	return OP_SPECIAL<<26 | uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(rd&31)<<11 | (sa&31)<<6 | fn
}

// itype packs an immediate word.
func itype(op uint32, rt, rs int, imm uint16) uint32 {
	return op<<26 | uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(imm)
}

func dfOf(bits int) uint32 {
	switch bits {
	case 8:
		return DF_B
	case 16:
		return DF_H
	case 32:
		return DF_W
	}
	return DF_D
}

package x86

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Line is one decoded instruction.
type Line struct {
	Offset int
	Bytes  []byte
	Text   string
}

// Decode walks code instruction by instruction. x86asm has no VEX tables,
// so VEX instructions are sized here and printed by their prefix fields;
// bytes that decode to nothing become db entries.
func Decode(code []byte) []Line {
	var out []Line
	offset := 0
	for offset < len(code) {
		if n, text, ok := decodeVEX(code[offset:]); ok {
			out = append(out, Line{offset, code[offset : offset+n], text})
			offset += n
			continue
		}
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil {
			out = append(out, Line{offset, code[offset : offset+1], fmt.Sprintf("db 0x%02x", code[offset])})
			offset++
			continue
		}
		out = append(out, Line{offset, code[offset : offset+inst.Len], strings.ToLower(inst.String())})
		offset += inst.Len
	}
	return out
}

// Disassemble renders code as an offset/bytes/text listing.
func Disassemble(code []byte) string {
	var sb strings.Builder
	for _, l := range Decode(code) {
		var hexBytes []string
		for _, c := range l.Bytes {
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", c))
		}
		sb.WriteString(fmt.Sprintf("0x%04x: %-24s %s\n", l.Offset, strings.Join(hexBytes, " "), l.Text))
	}
	return sb.String()
}

var ppNames = [...]string{"", ".66", ".f3", ".f2"}
var mapNames = [...]string{"", ".0f", ".0f38", ".0f3a"}

// decodeVEX sizes one VEX instruction, optionally behind an address size
// prefix.
func decodeVEX(code []byte) (int, string, bool) {
	i := 0
	adr := ""
	if len(code) > 0 && code[0] == X86_PREFIX_ADR {
		i, adr = 1, "addr32 "
	}
	if len(code) < i+4 || code[i] != X86_VEX2 && code[i] != X86_VEX3 {
		return 0, "", false
	}
	var mm, pp, w, l byte
	if code[i] == X86_VEX2 {
		mm, pp, l = map0F, code[i+1]&3, code[i+1]>>2&1
		i += 2
	} else {
		mm, w, pp, l = code[i+1]&0x1F, code[i+2]>>7, code[i+2]&3, code[i+2]>>2&1
		i += 3
	}
	if mm < map0F || mm > map0F3A || len(code) < i+2 {
		return 0, "", false
	}
	op := code[i]
	i++
	n, ok := rmLen(code[i:])
	if !ok {
		return 0, "", false
	}
	i += n
	if mm == map0F3A || mm == map0F && (op == 0xC2 || op >= 0x71 && op <= 0x73) {
		i++
	}
	if i > len(code) {
		return 0, "", false
	}
	text := fmt.Sprintf("%svex.%d%s%s.w%d %02x", adr, 128<<l, ppNames[pp], mapNames[mm], w, op)
	return i, text, true
}

// rmLen is the size of ModRM, SIB and displacement starting at code.
func rmLen(code []byte) (int, bool) {
	if len(code) == 0 {
		return 0, false
	}
	m := code[0]
	mod, r := m>>6, m&7
	n := 1
	if mod == X86_MOD_REGISTER {
		return n, true
	}
	if r == regRSP {
		if len(code) < 2 {
			return 0, false
		}
		if mod == X86_MOD_INDIRECT && code[1]&7 == regRBP {
			n += 4
		}
		n++
	}
	switch {
	case mod == X86_MOD_INDIRECT_DISP8:
		n++
	case mod == X86_MOD_INDIRECT_DISP32, mod == X86_MOD_INDIRECT && r == regRBP:
		n += 4
	}
	return n, true
}

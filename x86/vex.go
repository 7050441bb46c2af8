package x86

// vex builds a VEX prefix. The two-byte C5 form is chosen when X and B are
// clear, W is zero and the opcode lives in map 0F.
//
//	C5 [R̄ v̄v̄v̄v̄ L pp]
//	C4 [R̄ X̄ B̄ mmmmm] [W v̄v̄v̄v̄ L pp]
func vex(w, l bool, pp, mm, r, x, b byte, v int) []byte {
	vvvv := ^byte(v) & 0xF
	var lbit, wbit byte
	if l {
		lbit = 1
	}
	if w {
		wbit = 1
	}
	if x&1 == 0 && b&1 == 0 && !w && mm == map0F {
		return []byte{X86_VEX2, (^r&1)<<7 | vvvv<<3 | lbit<<2 | pp}
	}
	return []byte{
		X86_VEX3,
		(^r&1)<<7 | (^x&1)<<6 | (^b&1)<<5 | mm,
		wbit<<7 | vvvv<<3 | lbit<<2 | pp,
	}
}

package x86

// rex builds a REX prefix from the operand size flag and the high bits of
// the reg, index and base fields.
func rex(w bool, r, x, b byte) byte {
	v := byte(X86_REX)
	if w {
		v |= X86_REX_W
	}
	if r&1 != 0 {
		v |= X86_REX_R
	}
	if x&1 != 0 {
		v |= X86_REX_X
	}
	if b&1 != 0 {
		v |= X86_REX_B
	}
	return v
}

var gpNames = [...]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}

func reg2name(r int) string {
	if r >= 0 && r < len(gpNames) {
		return gpNames[r]
	}
	return "?"
}

// Package native runs encoder output on the host CPU. It backs the
// equivalence tests and the rtasm run command.
package native

import "encoding/binary"

// callee-saved registers of the host ABI, pushed in this order
var saved = []int{5, 3, 12, 13, 14, 15}

func push(r int) []byte {
	if r >= 8 {
		return []byte{0x41, 0x50 + byte(r&7)}
	}
	return []byte{0x50 + byte(r)}
}

func pop(r int) []byte {
	if r >= 8 {
		return []byte{0x41, 0x58 + byte(r&7)}
	}
	return []byte{0x58 + byte(r)}
}

// Prologue saves the callee-saved registers and loads base with addr.
func Prologue(base int, addr uint64) []byte {
	var out []byte
	for _, r := range saved {
		out = append(out, push(r)...)
	}
	rex := byte(0x48)
	if base >= 8 {
		rex |= 1
	}
	out = append(out, rex, 0xB8+byte(base&7))
	return binary.LittleEndian.AppendUint64(out, addr)
}

// Epilogue leaves xmm15 zero and the upper vector state clean, then
// restores the saved registers and returns.
func Epilogue(avx bool) []byte {
	var out []byte
	if avx {
		out = append(out, 0xC5, 0xF8, 0x77) // vzeroupper
	}
	out = append(out, 0x66, 0x45, 0x0F, 0xEF, 0xFF) // pxor xmm15, xmm15
	for i := len(saved) - 1; i >= 0; i-- {
		out = append(out, pop(saved[i])...)
	}
	return append(out, 0xC3)
}

func pageAlign(n int) int {
	const page = 4096
	if n == 0 {
		return page
	}
	return (n + page - 1) &^ (page - 1)
}

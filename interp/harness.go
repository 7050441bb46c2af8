package interp

import (
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

// Exec assembles prog for cfg and runs it over mem. Base register base
// holds offset 0 of mem; every other register starts at zero.
func Exec(cfg target.Config, base int, mem []byte, prog func(a *simd.Assembler), opts ...Option) (*Machine, error) {
	b := New(cfg, opts...)
	a := simd.New(b)
	prog(a)
	if _, err := a.Code(); err != nil {
		return nil, err
	}
	m := b.NewMachine(mem)
	m.R[base] = 0
	if err := b.Run(m); err != nil {
		return m, err
	}
	return m, nil
}

// Package encoder picks the backend for a target and runs listings
// through it.
package encoder

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/listing"
	"github.com/colorfulnotion/rtsimd/msa"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/colorfulnotion/rtsimd/x86"
)

// New returns an assembler over the encoder for cfg.
func New(cfg target.Config) (*simd.Assembler, error) {
	switch {
	case cfg.ISA == target.X86_64:
		return x86.NewAssembler(cfg)
	case cfg.ISA.IsMIPS():
		return msa.NewAssembler(cfg)
	}
	return nil, fmt.Errorf("%w: no encoder for %s", rterrors.ErrTargetConfig, cfg)
}

// Assemble encodes a parsed listing for cfg.
func Assemble(cfg target.Config, l *listing.Listing) ([]byte, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := l.Assemble(a); err != nil {
		return nil, err
	}
	return a.Code()
}

// Encode parses and encodes listing source for cfg.
func Encode(cfg target.Config, src string) ([]byte, error) {
	l, err := listing.ParseString(src)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, l)
}

// Disassemble renders code for cfg's instruction set.
func Disassemble(cfg target.Config, code []byte) string {
	if cfg.ISA.IsMIPS() {
		return msa.Disassemble(code)
	}
	return x86.Disassemble(code)
}

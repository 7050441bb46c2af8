//go:build unicorn
// +build unicorn

// Package sandbox executes x86 encoder output under the Unicorn emulator,
// so the SSE tiers are testable on any host.
package sandbox

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/colorfulnotion/rtsimd/x86"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
)

const (
	pageSize  = 0x1000
	codeBase  = 0x100000
	dataBase  = 0x400000
	stackTop  = 0x800000
	stackSize = 0x10000

	// MaxSteps bounds one run.
	MaxSteps = 1 << 20
)

var regIDs = [16]int{
	uc.X86_REG_RAX, uc.X86_REG_RCX, uc.X86_REG_RDX, uc.X86_REG_RBX,
	uc.X86_REG_RSP, uc.X86_REG_RBP, uc.X86_REG_RSI, uc.X86_REG_RDI,
	uc.X86_REG_R8, uc.X86_REG_R9, uc.X86_REG_R10, uc.X86_REG_R11,
	uc.X86_REG_R12, uc.X86_REG_R13, uc.X86_REG_R14, uc.X86_REG_R15,
}

// Result is the machine state after a run.
type Result struct {
	Mem []byte
	R   [16]uint64
}

func align(n uint64) uint64 { return (n + pageSize - 1) &^ (pageSize - 1) }

// Emulates reports whether the emulator models cfg's vector extension.
func Emulates(cfg target.Config) bool {
	return cfg.ISA == target.X86_64 && cfg.Level <= target.SSE4
}

// Run assembles prog for cfg and emulates it with base register base
// holding the guest address of mem.
func Run(cfg target.Config, base int, mem []byte, prog func(a *simd.Assembler)) (*Result, error) {
	if !Emulates(cfg) {
		return nil, fmt.Errorf("%w: %s is not emulated", rterrors.ErrExecUnavailable, cfg)
	}
	a, err := x86.NewAssembler(cfg)
	if err != nil {
		return nil, err
	}
	prog(a)
	code, err := a.Code()
	if err != nil {
		return nil, err
	}
	size := uint64(len(mem))
	if cfg.Scratch.Base == base {
		size = max(size, uint64(cfg.Scratch.Offset)+uint64(cfg.ScratchSize()))
	}

	mu, err := uc.NewUnicorn(uc.ARCH_X86, uc.MODE_64)
	if err != nil {
		return nil, fmt.Errorf("create unicorn: %w", err)
	}
	defer mu.Close()
	for _, region := range []struct {
		addr, size uint64
		prot       int
	}{
		{codeBase, align(uint64(len(code)) + 1), uc.PROT_ALL},
		{dataBase, align(size + 1), uc.PROT_READ | uc.PROT_WRITE},
		{stackTop - stackSize, stackSize, uc.PROT_READ | uc.PROT_WRITE},
	} {
		if err := mu.MemMapProt(region.addr, region.size, region.prot); err != nil {
			return nil, fmt.Errorf("map 0x%x: %w", region.addr, err)
		}
	}
	if err := mu.MemWrite(codeBase, code); err != nil {
		return nil, fmt.Errorf("write code: %w", err)
	}
	if err := mu.MemWrite(dataBase, mem); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}
	if err := mu.RegWrite(uc.X86_REG_RSP, stackTop-8); err != nil {
		return nil, fmt.Errorf("set rsp: %w", err)
	}
	if err := mu.RegWrite(regIDs[base], dataBase); err != nil {
		return nil, fmt.Errorf("set base: %w", err)
	}

	end := uint64(codeBase + len(code))
	log.Debug(log.NativeExec, "sandbox run", "target", cfg, "code", len(code))
	if err := mu.StartWithOptions(codeBase, end, &uc.UcOptions{Count: MaxSteps}); err != nil {
		rip, _ := mu.RegRead(uc.X86_REG_RIP)
		return nil, fmt.Errorf("emulation failed at 0x%x: %w", rip-codeBase, err)
	}
	if rip, _ := mu.RegRead(uc.X86_REG_RIP); rip != end {
		return nil, fmt.Errorf("%w: stopped at 0x%x", rterrors.ErrStepLimit, rip-codeBase)
	}

	res := &Result{}
	if res.Mem, err = mu.MemRead(dataBase, uint64(len(mem))); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	for i, id := range regIDs {
		if res.R[i], err = mu.RegRead(id); err != nil {
			return nil, fmt.Errorf("read register %d: %w", i, err)
		}
	}
	return res, nil
}

//go:build linux && amd64

package native

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/colorfulnotion/rtsimd/x86"
	"golang.org/x/sys/unix"
)

// Available reports whether this build can execute code at all.
func Available() bool { return true }

// Run assembles prog for cfg and executes it with base register base
// pointing at a copy of mem. The scratch region is appended when it lies
// past the end of mem. It returns mem as the program left it.
func Run(cfg target.Config, base int, mem []byte, prog func(a *simd.Assembler)) ([]byte, error) {
	if !target.HostRuns(cfg) {
		return nil, fmt.Errorf("%w: host cannot run %s", rterrors.ErrExecUnavailable, cfg)
	}
	if base < 0 || base > 15 || base == operand.Resp.Index {
		return nil, fmt.Errorf("%w: base register %d", rterrors.ErrRegisterRange, base)
	}
	size := len(mem)
	if cfg.Scratch.Base == base {
		size = max(size, int(cfg.Scratch.Offset)+cfg.ScratchSize())
	}
	data, err := unix.Mmap(-1, 0, pageAlign(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap data: %w", err)
	}
	defer unix.Munmap(data)
	copy(data, mem)

	a, err := x86.NewAssembler(cfg)
	if err != nil {
		return nil, err
	}
	prog(a)
	body, err := a.Code()
	if err != nil {
		return nil, err
	}
	code := Prologue(base, uint64(uintptr(unsafe.Pointer(&data[0]))))
	code = append(code, body...)
	code = append(code, Epilogue(cfg.Level >= target.AVX1)...)
	log.Debug(log.NativeExec, "native run", "target", cfg, "body", len(body), "data", size)
	if err := Exec(code); err != nil {
		return nil, err
	}
	out := make([]byte, len(mem))
	copy(out, data)
	return out, nil
}

// Exec maps code executable and calls it on a locked thread. code must
// return with ret and leave the Go ABI registers as it found them.
func Exec(code []byte) error {
	page, err := unix.Mmap(-1, 0, pageAlign(len(code)), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("failed to mmap exec code: %w", err)
	}
	defer unix.Munmap(page)
	copy(page, code)
	if err := unix.Mprotect(page, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("failed to mprotect exec code: %w", err)
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	call(uintptr(unsafe.Pointer(&page[0])))
	return nil
}

// call jumps to entry through a func value whose closure word is entry.
func call(entry uintptr) {
	p := &entry
	f := *(*func())(unsafe.Pointer(&p))
	f()
}

//go:build !(linux && amd64)

package native

import (
	"fmt"
	"runtime"

	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
)

func Available() bool { return false }

func Run(cfg target.Config, base int, mem []byte, prog func(a *simd.Assembler)) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s/%s", rterrors.ErrExecUnavailable, runtime.GOOS, runtime.GOARCH)
}

func Exec(code []byte) error {
	return fmt.Errorf("%w: %s/%s", rterrors.ErrExecUnavailable, runtime.GOOS, runtime.GOARCH)
}

package main

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// generate runs a JavaScript listing generator. The script calls
// emit(line) for each listing line; hex(n) formats n for DP/IB operands.
//
//	for (var i = 0; i < 4; i++)
//	    emit("addox_ld Xmm1, [Rebp + DP(" + hex(i * 16) + ")]")
func generate(src string) (string, error) {
	vm := goja.New()
	var lines []string
	if err := vm.Set("emit", func(line string) { lines = append(lines, line) }); err != nil {
		return "", err
	}
	if err := vm.Set("hex", func(n int64) string { return fmt.Sprintf("0x%x", n) }); err != nil {
		return "", err
	}
	if _, err := vm.RunString(src); err != nil {
		return "", fmt.Errorf("script: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/colorfulnotion/rtsimd/interp"
	"github.com/colorfulnotion/rtsimd/listing"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/native"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/spf13/cobra"
)

// execute runs l over mem with base addressing it, natively when the
// host can, otherwise (or when forced) on the interpreter.
func execute(cfg target.Config, base int, mem []byte, l *listing.Listing, useInterp bool) ([]byte, string, error) {
	var perr error
	prog := func(a *simd.Assembler) { perr = l.Assemble(a) }
	if !useInterp && native.Available() && target.HostRuns(cfg) {
		out, err := native.Run(cfg, base, mem, prog)
		if perr != nil {
			return nil, "", perr
		}
		return out, "native", err
	}
	m, err := interp.Exec(cfg, base, mem, prog)
	if perr != nil {
		return nil, "", perr
	}
	if err != nil {
		return nil, "", err
	}
	return m.Mem, "interp", nil
}

func runCmd(a *app) *cobra.Command {
	var (
		size      int
		seed      string
		baseName  string
		useInterp bool
	)
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a listing over a memory block and dump the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.target()
			if err != nil {
				return err
			}
			base, err := listing.ParseReg(baseName)
			if err != nil || base.Class != operand.Base {
				return fmt.Errorf("base register %q", baseName)
			}
			mem := make([]byte, size)
			if seed != "" {
				data, err := os.ReadFile(seed)
				if err != nil {
					return err
				}
				if len(data) > size {
					return fmt.Errorf("%s is larger than --size %d", seed, size)
				}
				copy(mem, data)
			}
			l, err := readListing(cmd, args)
			if err != nil {
				return err
			}
			out, how, err := execute(cfg, base.Index, mem, l, useInterp)
			if err != nil {
				return err
			}
			log.Info(log.CLI, "run", "target", cfg, "executor", how, "bytes", len(out))
			fmt.Fprint(cmd.OutOrStdout(), hex.Dump(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 0x400, "memory block size in bytes")
	cmd.Flags().StringVar(&seed, "init", "", "file whose bytes seed the memory block")
	cmd.Flags().StringVar(&baseName, "base", "Rebp", "BASE register holding the block address")
	cmd.Flags().BoolVar(&useInterp, "interp", false, "always use the reference interpreter")
	cmd.Flags().Bool("js", false, "input is a JavaScript generator calling emit(line)")
	return cmd
}

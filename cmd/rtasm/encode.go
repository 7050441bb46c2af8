package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/colorfulnotion/rtsimd/encoder"
	"github.com/colorfulnotion/rtsimd/listing"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/spf13/cobra"
)

// readListing parses the file named by args[0], or stdin when absent or
// "-". With --js set the input is a generator script instead.
func readListing(cmd *cobra.Command, args []string) (*listing.Listing, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if js, _ := cmd.Flags().GetBool("js"); js {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		text, err := generate(string(src))
		if err != nil {
			return nil, err
		}
		return listing.ParseString(text)
	}
	return listing.Parse(r)
}

func encodeCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a listing for the selected target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.target()
			if err != nil {
				return err
			}
			l, err := readListing(cmd, args)
			if err != nil {
				return err
			}
			code, err := encoder.Assemble(cfg, l)
			if err != nil {
				return err
			}
			log.Debug(log.CLI, "encoded", "target", cfg, "instrs", len(l.Instrs), "bytes", len(code))
			if out != "" {
				return os.WriteFile(out, code, 0o644)
			}
			w := cmd.OutOrStdout()
			switch format {
			case "hex":
				fmt.Fprintln(w, hex.EncodeToString(code))
			case "asm":
				fmt.Fprint(w, encoder.Disassemble(cfg, code))
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "hex", "output format: hex or asm")
	cmd.Flags().Bool("js", false, "input is a JavaScript generator calling emit(line)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write raw bytes to this file")
	return cmd
}

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/rtsimd/encoder"
	"github.com/colorfulnotion/rtsimd/listing"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/spf13/cobra"
)

// session is the REPL state: the current target and the instructions
// entered since the last :reset, so labels can be bound across lines.
type session struct {
	cfg   target.Config
	lines []string
}

const replHelp = `  <instruction>      encode one line, e.g. addox_rr Xmm1, Xmm2
  !<javascript>      run a generator; each emit(line) is entered
  :target <profile>  switch target
  :list              encode and disassemble everything entered so far
  :reset             forget entered lines
  :quit              leave
`

// eval handles one input line and reports whether the session should end.
func (s *session) eval(line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if js, ok := strings.CutPrefix(line, "!"); ok {
		text, err := generate(js)
		if err != nil {
			fmt.Fprintln(w, "error:", err)
			return false
		}
		for _, l := range strings.Split(text, "\n") {
			if s.eval(l, w) {
				return true
			}
		}
		return false
	}
	if cmd, arg, _ := strings.Cut(line, " "); strings.HasPrefix(cmd, ":") {
		switch cmd {
		case ":quit", ":q":
			return true
		case ":help":
			fmt.Fprint(w, replHelp)
		case ":target":
			cfg, err := target.Parse(strings.TrimSpace(arg))
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				return false
			}
			s.cfg = cfg
			fmt.Fprintln(w, "target", cfg)
		case ":reset":
			s.lines = nil
		case ":list":
			code, err := encoder.Encode(s.cfg, strings.Join(s.lines, "\n"))
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				return false
			}
			fmt.Fprint(w, encoder.Disassemble(s.cfg, code))
		default:
			fmt.Fprintf(w, "unknown command %s\n", cmd)
		}
		return false
	}
	l, err := listing.ParseString(line)
	if err != nil {
		fmt.Fprintln(w, "error:", err)
		return false
	}
	if len(l.Instrs) == 0 {
		s.lines = append(s.lines, line)
		return false
	}
	code, err := encoder.Assemble(s.cfg, l)
	if err != nil && l.Instrs[0].Target == "" {
		fmt.Fprintln(w, "error:", err)
		return false
	}
	s.lines = append(s.lines, line)
	if err != nil {
		fmt.Fprintln(w, "(branch resolved by :list)")
		return false
	}
	fmt.Fprintln(w, hex.EncodeToString(code))
	return false
}

func replCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.target()
			if err != nil {
				return err
			}
			home, _ := os.UserHomeDir()
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      cfg.String() + "> ",
				HistoryFile: filepath.Join(home, ".rtasm_history"),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			s := &session{cfg: cfg}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, replHelp)
			for {
				line, err := rl.Readline()
				if err != nil {
					return nil
				}
				if s.eval(line, out) {
					return nil
				}
				rl.SetPrompt(s.cfg.String() + "> ")
			}
		},
	}
}

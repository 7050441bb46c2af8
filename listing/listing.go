package listing

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/simd"
)

// Instr is one parsed line.
type Instr struct {
	Line   int
	Labels []string // labels bound before the instruction
	M      Mnemonic
	Args   []operand.Operand
	Mask   simd.MaskCond // mkj
	Cond   simd.Cond     // cmj
	Target string        // mkj, cmj and jmp
}

// Listing is a parsed program.
type Listing struct {
	Instrs []Instr
	Tail   []string // labels after the last instruction
}

func lineErr(n int, err error) error { return fmt.Errorf("line %d: %w", n, err) }

func stripComment(s string) string {
	for _, c := range []string{"#", ";", "//"} {
		if i := strings.Index(s, c); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// splitArgs splits on commas outside brackets and parentheses.
func splitArgs(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, c := range s {
		switch c {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" || len(out) > 0 {
		out = append(out, rest)
	}
	return out
}

// arity is the operand count of a shape before any mkj/cmj extras.
func arity(s Shape) int {
	switch s {
	case ShapeRX, ShapeLB:
		return 1
	case Shape3RR, Shape3LD, Shape3RI:
		return 3
	}
	return 2
}

// Parse reads a listing.
func Parse(r io.Reader) (*Listing, error) {
	var (
		l       Listing
		pending []string
		n       int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		n++
		text := stripComment(sc.Text())
		for {
			i := strings.IndexByte(text, ':')
			if i < 0 || strings.ContainsAny(text[:i], " \t[(,") {
				break
			}
			name := strings.TrimSpace(text[:i])
			if name == "" {
				return nil, lineErr(n, fmt.Errorf("%w: empty label", rterrors.ErrSyntax))
			}
			pending = append(pending, name)
			text = strings.TrimSpace(text[i+1:])
		}
		if text == "" {
			continue
		}
		in, err := parseInstr(text)
		if err != nil {
			return nil, lineErr(n, err)
		}
		in.Line, in.Labels, pending = n, pending, nil
		l.Instrs = append(l.Instrs, in)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	l.Tail = pending
	return &l, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Listing, error) { return Parse(strings.NewReader(s)) }

func parseInstr(text string) (Instr, error) {
	name, rest, _ := strings.Cut(text, " ")
	m, err := ParseMnemonic(strings.TrimSpace(name))
	if err != nil {
		return Instr{}, err
	}
	in := Instr{M: m}
	args := splitArgs(strings.TrimSpace(rest))
	want := arity(m.Shape)
	switch m.Name {
	case "mkj", "cmj":
		want += 2
	}
	if len(args) != want {
		return Instr{}, fmt.Errorf("%w: %s takes %d operands, got %d", rterrors.ErrArity, m, want, len(args))
	}
	switch m.Name {
	case "jmp":
		in.Target = args[0]
		return in, nil
	case "mkj":
		switch strings.ToUpper(args[1]) {
		case "NONE":
			in.Mask = simd.NONE
		case "FULL":
			in.Mask = simd.FULL
		default:
			return Instr{}, syntaxErr(args[1])
		}
		in.Target, args = args[2], args[:1]
	case "cmj":
		c, ok := simd.ParseCond(args[2])
		if !ok {
			return Instr{}, syntaxErr(args[2])
		}
		in.Cond, in.Target, args = c, args[3], args[:2]
	}
	for i, a := range args {
		o, err := parseArg(m.Shape, i, len(args), a)
		if err != nil {
			return Instr{}, err
		}
		in.Args = append(in.Args, o)
	}
	return in, nil
}

// parseArg reads argument i of n with the operand kind the shape implies.
func parseArg(s Shape, i, n int, text string) (operand.Operand, error) {
	last := i == n-1
	switch {
	case s == ShapeST && i == 0, (s == ShapeLD || s == Shape3LD) && last:
		return ParseMem(text)
	case (s == ShapeRI || s == Shape3RI) && last:
		return ParseImm(text)
	}
	return ParseReg(text)
}

// Assemble issues every instruction on a. Labels are created on first
// use, so forward references work.
func (l *Listing) Assemble(a *simd.Assembler) error {
	labels := map[string]*emit.Label{}
	label := func(name string) *emit.Label {
		if lb, ok := labels[name]; ok {
			return lb
		}
		lb := a.NewLabel(name)
		labels[name] = lb
		return lb
	}
	bind := func(names []string) {
		for _, name := range names {
			a.Bind(label(name))
		}
	}
	for _, in := range l.Instrs {
		bind(in.Labels)
		if err := issue(a, in, label); err != nil {
			return lineErr(in.Line, err)
		}
		if err := a.Err(); err != nil {
			return lineErr(in.Line, err)
		}
	}
	bind(l.Tail)
	log.Debug(log.SIMDLayer, "listing assembled", "instructions", len(l.Instrs), "labels", len(labels))
	return a.Err()
}

func reg(o operand.Operand) (operand.Reg, error) {
	r, ok := o.(operand.Reg)
	if !ok {
		return r, fmt.Errorf("%w: %s is not a register", rterrors.ErrOperandKind, o)
	}
	return r, nil
}

func issue(a *simd.Assembler, in Instr, label func(string) *emit.Label) error {
	m := in.M
	if m.Base() {
		return issueBase(a, in, label)
	}
	args := in.Args
	e := m.Elem(a.Config().BaseBits())
	switch m.Op {
	case lanes.OpMov:
		if m.Shape.Three() || m.Shape == ShapeRI || m.Shape == ShapeRX {
			return fmt.Errorf("%w: %s", rterrors.ErrMnemonic, m)
		}
		a.Mov(args[0], args[1])
		return nil
	case lanes.OpMkj:
		r, err := reg(args[0])
		if err != nil {
			return err
		}
		a.Mkj(r, in.Mask, label(in.Target))
		return nil
	case lanes.OpMmv:
		r, err := reg(args[0])
		if err != nil {
			return err
		}
		if m.Shape.Three() {
			return fmt.Errorf("%w: %s", rterrors.ErrMnemonic, m)
		}
		a.Mmv(r, args[1])
		return nil
	case lanes.OpNot:
		r, err := reg(args[0])
		if err != nil {
			return err
		}
		src := r
		if len(args) > 1 {
			if src, err = reg(args[1]); err != nil {
				return err
			}
		}
		a.Not2(r, src)
		return nil
	}
	if m.Shape == ShapeRX || m.Shape == ShapeST || m.Shape == ShapeLB {
		return fmt.Errorf("%w: %s", rterrors.ErrMnemonic, m)
	}
	dst, err := reg(args[0])
	if err != nil {
		return err
	}
	s1, s2 := dst, args[1]
	if m.Shape.Three() {
		if s1, err = reg(args[1]); err != nil {
			return err
		}
		s2 = args[2]
	}
	a.Emit3(m.Op, e, dst, s1, s2)
	return nil
}

func issueBase(a *simd.Assembler, in Instr, label func(string) *emit.Label) error {
	m, args := in.M, in.Args
	switch m.Name {
	case "jmp":
		a.Jmp(label(in.Target))
		return nil
	case "cmj":
		r, err := reg(args[0])
		if err != nil {
			return err
		}
		a.CmjX(r, args[1], in.Cond, label(in.Target))
		return nil
	case "mov":
		a.MovX(args[0], args[1])
		return nil
	}
	if m.Shape != ShapeRR && m.Shape != ShapeRI && m.Shape != ShapeLD {
		return fmt.Errorf("%w: %s", rterrors.ErrMnemonic, m)
	}
	dst, err := reg(args[0])
	if err != nil {
		return err
	}
	switch m.Op {
	case lanes.OpAdd:
		a.AddX(dst, args[1])
	case lanes.OpSub:
		a.SubX(dst, args[1])
	case lanes.OpAnd:
		a.AndX(dst, args[1])
	case lanes.OpOrr:
		a.OrrX(dst, args[1])
	case lanes.OpXor:
		a.XorX(dst, args[1])
	case lanes.OpShl, lanes.OpShr:
		n, ok := args[1].(operand.Imm)
		if !ok {
			return fmt.Errorf("%w: base shifts take an immediate count", rterrors.ErrOperandKind)
		}
		switch {
		case m.Op == lanes.OpShl:
			a.ShlX(dst, n)
		case m.Kind == 'n':
			a.ShrXn(dst, n)
		default:
			a.ShrX(dst, n)
		}
	default:
		return fmt.Errorf("%w: %s has no base form", rterrors.ErrMnemonic, m)
	}
	return nil
}

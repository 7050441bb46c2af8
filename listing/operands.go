package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

var baseNames = map[string]int{
	"reax": 0, "recx": 1, "redx": 2, "rebx": 3, "resp": 4, "rebp": 5, "resi": 6, "redi": 7,
	"reg08": 8, "reg09": 9, "reg10": 10, "reg11": 11, "reg12": 12, "reg13": 13, "reg14": 14, "reg15": 15,
}

var dispCtors = map[string]func(int64) operand.Disp{
	"dp": operand.DP, "de": operand.DE, "df": operand.DF, "dg": operand.DG, "dh": operand.DH, "dv": operand.DV,
}

var immCtors = map[string]func(int64) operand.Imm{
	"ic": operand.IC, "ib": operand.IB, "im": operand.IM, "ig": operand.IG, "ih": operand.IH, "iv": operand.IV, "iw": operand.IW,
}

func syntaxErr(s string) error { return fmt.Errorf("%w: %q", rterrors.ErrSyntax, s) }

// ParseReg reads Xmm0..XmmD (hex digit) or a BASE register name.
func ParseReg(s string) (operand.Reg, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	if i, ok := baseNames[l]; ok {
		return operand.R(i), nil
	}
	if rest, ok := strings.CutPrefix(l, "xmm"); ok && len(rest) == 1 {
		if i, err := strconv.ParseUint(rest, 16, 8); err == nil {
			return operand.Xmm(int(i)), nil
		}
	}
	return operand.Reg{}, syntaxErr(s)
}

// ctorCall splits "IB(3)" into its lower-case name and value.
func ctorCall(s string) (string, int64, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s[open+1:len(s)-1]), 0, 64)
	if err != nil {
		return "", 0, false
	}
	return strings.ToLower(strings.TrimSpace(s[:open])), v, true
}

// ParseImm reads IB(3) style immediates; a bare number is IV.
func ParseImm(s string) (operand.Imm, error) {
	s = strings.TrimSpace(s)
	var imm operand.Imm
	if name, v, ok := ctorCall(s); ok {
		ctor, known := immCtors[name]
		if !known {
			return imm, syntaxErr(s)
		}
		imm = ctor(v)
	} else {
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return imm, syntaxErr(s)
		}
		imm = operand.IV(v)
	}
	return imm, imm.Check()
}

// ParseMem reads [Rbase], [Rbase + DP(n)] or [Rbase + Rindex + DP(n)].
func ParseMem(s string) (operand.Mem, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return operand.Mem{}, syntaxErr(s)
	}
	parts := strings.Split(s[1:len(s)-1], "+")
	var (
		regs []operand.Reg
		disp = operand.PLAIN
		seen bool
	)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if name, v, ok := ctorCall(p); ok {
			ctor, known := dispCtors[name]
			if !known || seen {
				return operand.Mem{}, syntaxErr(s)
			}
			disp, seen = ctor(v), true
			continue
		}
		r, err := ParseReg(p)
		if err != nil || r.Class != operand.Base {
			return operand.Mem{}, syntaxErr(s)
		}
		regs = append(regs, r)
	}
	var m operand.Mem
	switch len(regs) {
	case 1:
		m = operand.M(regs[0], disp)
	case 2:
		m = operand.MI(regs[0], regs[1], disp)
	default:
		return operand.Mem{}, syntaxErr(s)
	}
	return m, m.Check()
}

// ParseOperand reads a register, memory or immediate operand.
func ParseOperand(s string) (operand.Operand, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "["):
		return ParseMem(s)
	case strings.ContainsAny(s[:min(1, len(s))], "0123456789-") || strings.Contains(s, "("):
		return ParseImm(s)
	}
	return ParseReg(s)
}

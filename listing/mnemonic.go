// Package listing reads portable instructions written as text, one per
// line, and issues them on a simd.Assembler.
//
//	top:
//	    movox_ld Xmm1, [Rebp + DP(0x40)]
//	    addax3rr Xmm2, Xmm1, Xmm3
//	    shlmx_ri Xmm2, IB(3)
//	    mkjox_rx Xmm2, NONE, top     # loop while any lane is set
//	    cmjxx_ri Resi, IB(10), LT_u, top
package listing

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

// Shape is the operand pattern of a mnemonic.
type Shape uint8

const (
	ShapeRR  Shape = iota // _rr: dst, src register
	ShapeLD               // _ld: dst, memory
	ShapeST               // _st: memory, src
	ShapeRI               // _ri: dst, immediate
	ShapeRX               // _rx: register only
	ShapeLB               // _lb: label
	Shape3RR              // 3rr: dst, src1, src2 register
	Shape3LD              // 3ld: dst, src1, memory
	Shape3RI              // 3ri: dst, src1, immediate
)

var shapeNames = [...]string{"_rr", "_ld", "_st", "_ri", "_rx", "_lb", "3rr", "3ld", "3ri"}

func (s Shape) String() string { return shapeNames[s] }

// Three reports whether the shape names an explicit destination.
func (s Shape) Three() bool { return s >= Shape3RR }

// Mnemonic is a decoded instruction name such as addax_rr or ceqps3ld.
type Mnemonic struct {
	Name  string   // three-letter operation
	Op    lanes.Op // OpNone for jmp and cmj
	Size  byte     // b, a, m, o, q, p or x for BASE
	Kind  byte     // x, n or s
	Shape Shape
}

// Base reports whether m is a BASE instruction.
func (m Mnemonic) Base() bool { return m.Size == 'x' }

func (m Mnemonic) String() string {
	return fmt.Sprintf("%s%c%c%s", m.Name, m.Size, m.Kind, m.Shape)
}

// Bits resolves the element size; p follows the BASE width.
func (m Mnemonic) Bits(baseBits int) int {
	switch m.Size {
	case 'b':
		return 8
	case 'a', 'm':
		return 16
	case 'o':
		return 32
	case 'q':
		return 64
	}
	return baseBits
}

// Elem resolves the lane type for a BASE width.
func (m Mnemonic) Elem(baseBits int) lanes.Elem {
	e := lanes.Elem{Bits: m.Bits(baseBits)}
	switch m.Kind {
	case 'n':
		e.Kind = lanes.Signed
	case 's':
		e.Kind = lanes.Float
	}
	return e
}

// ParseMnemonic decodes <op><size><kind>[3]<shape>.
func ParseMnemonic(s string) (Mnemonic, error) {
	bad := func() (Mnemonic, error) {
		return Mnemonic{}, fmt.Errorf("%w: %q", rterrors.ErrMnemonic, s)
	}
	s = strings.ToLower(s)
	if len(s) != 8 {
		return bad()
	}
	m := Mnemonic{Name: s[:3]}
	jump := m.Name == "jmp" || m.Name == "cmj"
	if !jump {
		op, ok := lanes.ParseOp(m.Name)
		if !ok {
			return bad()
		}
		m.Op = op
	}
	m.Size, m.Kind = s[3], s[4]
	if !strings.ContainsRune("bamoqpx", rune(m.Size)) || !strings.ContainsRune("xns", rune(m.Kind)) {
		return bad()
	}
	found := false
	for i, n := range shapeNames {
		if s[5:] == n {
			m.Shape, found = Shape(i), true
		}
	}
	if !found {
		return bad()
	}
	if jump && !m.Base() || m.Kind == 's' && m.Size != 'o' && m.Size != 'q' && m.Size != 'p' {
		return bad()
	}
	return m, nil
}

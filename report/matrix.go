// Package report renders what each target can encode: support matrices,
// the profile tree and encoded-size charts.
package report

import (
	"fmt"
	"io"

	"github.com/colorfulnotion/rtsimd/encoder"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/olekukonko/tablewriter"
)

// MatrixOps are the rows of a support matrix.
var MatrixOps = []lanes.Op{
	lanes.OpAdd, lanes.OpSub, lanes.OpMul, lanes.OpDiv, lanes.OpAds, lanes.OpSbs,
	lanes.OpMin, lanes.OpMax, lanes.OpShl, lanes.OpShr, lanes.OpSvl, lanes.OpSvr,
	lanes.OpCeq, lanes.OpCne, lanes.OpClt, lanes.OpCle, lanes.OpCgt, lanes.OpCge,
	lanes.OpOrn, lanes.OpMmv,
}

var marks = map[simd.Support]string{
	simd.Native:      "N",
	simd.Fallback:    "F",
	simd.Derived:     "D",
	simd.Unsupported: "-",
}

// Matrix is the support level of every MatrixOps row per element type.
type Matrix struct {
	Target target.Config
	Elems  []lanes.Elem
	cells  map[lanes.Op][]simd.Support
}

// Build queries the assembler for cfg on every op and element.
func Build(cfg target.Config) (*Matrix, error) {
	a, err := encoder.New(cfg)
	if err != nil {
		return nil, err
	}
	m := &Matrix{Target: cfg, Elems: lanes.All, cells: make(map[lanes.Op][]simd.Support)}
	for _, op := range MatrixOps {
		row := make([]simd.Support, len(m.Elems))
		for i, e := range m.Elems {
			row[i] = a.Support(op, e)
		}
		m.cells[op] = row
	}
	return m, nil
}

// At returns the support of op on e, Unsupported for unknown rows.
func (m *Matrix) At(op lanes.Op, e lanes.Elem) simd.Support {
	row, ok := m.cells[op]
	if !ok {
		return simd.Unsupported
	}
	for i, x := range m.Elems {
		if x == e {
			return row[i]
		}
	}
	return simd.Unsupported
}

// Count tallies cells by support level.
func (m *Matrix) Count() map[simd.Support]int {
	out := make(map[simd.Support]int)
	for _, row := range m.cells {
		for _, s := range row {
			out[s]++
		}
	}
	return out
}

// Render writes the matrix as a table with a legend line.
func (m *Matrix) Render(w io.Writer) {
	fmt.Fprintf(w, "%s  (N native, F fallback, D derived, - unsupported)\n", m.Target)
	table := tablewriter.NewWriter(w)
	hdr := []string{"op"}
	for _, e := range m.Elems {
		hdr = append(hdr, e.String())
	}
	table.SetHeader(hdr)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	for _, op := range MatrixOps {
		row := []string{op.String()}
		for _, s := range m.cells[op] {
			row = append(row, marks[s])
		}
		table.Append(row)
	}
	table.Render()
}

// Summary writes one row of support counts per profile.
func Summary(w io.Writer, profiles []target.Config) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"target", "native", "fallback", "derived", "unsupported"})
	table.SetAutoFormatHeaders(false)
	for _, cfg := range profiles {
		m, err := Build(cfg)
		if err != nil {
			return err
		}
		c := m.Count()
		table.Append([]string{
			cfg.String(),
			fmt.Sprint(c[simd.Native]),
			fmt.Sprint(c[simd.Fallback]),
			fmt.Sprint(c[simd.Derived]),
			fmt.Sprint(c[simd.Unsupported]),
		})
	}
	table.Render()
	return nil
}

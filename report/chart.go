package report

import (
	"io"

	"github.com/colorfulnotion/rtsimd/encoder"
	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/simd"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// OpSize is the encoded length of one three-operand operation.
type OpSize struct {
	Op      lanes.Op
	Support simd.Support
	Bytes   int
}

// Sizes encodes every MatrixOps row on e as dst=Xmm1, Xmm2, Xmm3 (shift
// counts IB(3)) and reports the byte count. Unsupported rows report 0.
func Sizes(cfg target.Config, e lanes.Elem) ([]OpSize, error) {
	probe, err := encoder.New(cfg)
	if err != nil {
		return nil, err
	}
	out := make([]OpSize, 0, len(MatrixOps))
	for _, op := range MatrixOps {
		s := OpSize{Op: op, Support: probe.Support(op, e)}
		if s.Support != simd.Unsupported {
			a, err := encoder.New(cfg)
			if err != nil {
				return nil, err
			}
			var src operand.Operand = operand.Xmm3
			if op == lanes.OpShl || op == lanes.OpShr {
				src = operand.IB(3)
			}
			if op == lanes.OpMmv {
				a.Mmv(operand.Xmm1, operand.Xmm2)
			} else {
				a.Emit3(op, e, operand.Xmm1, operand.Xmm2, src)
			}
			code, err := a.Code()
			if err != nil {
				return nil, err
			}
			s.Bytes = len(code)
		}
		out = append(out, s)
	}
	return out, nil
}

// SizeChart renders a bar chart of Sizes, one series per profile.
func SizeChart(w io.Writer, profiles []target.Config, e lanes.Elem) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Encoded size",
			Subtitle: "bytes per three-operand " + e.String() + " operation",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	names := make([]string, len(MatrixOps))
	for i, op := range MatrixOps {
		names[i] = op.String()
	}
	bar.SetXAxis(names)
	for _, cfg := range profiles {
		sizes, err := Sizes(cfg, e)
		if err != nil {
			return err
		}
		data := make([]opts.BarData, len(sizes))
		for i, s := range sizes {
			data[i] = opts.BarData{Value: s.Bytes, Name: s.Support.String()}
		}
		bar.AddSeries(cfg.String(), data)
	}
	return bar.Render(w)
}

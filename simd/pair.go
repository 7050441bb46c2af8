package simd

import "github.com/colorfulnotion/rtsimd/operand"

// phys maps logical vector register r to its physical register in half h.
func (a *Assembler) phys(r operand.Reg, h int) operand.Reg {
	return operand.Xmm(a.cfg.Physical(r.Index, h))
}

// half maps a logical operand to the physical half h. The upper half of a
// memory operand sits one physical register further and must stay inside
// the DV window.
func (a *Assembler) half(o operand.Operand, h int) (operand.Operand, error) {
	switch v := o.(type) {
	case operand.Reg:
		if v.Class == operand.Vector {
			return a.phys(v, h), nil
		}
	case operand.Mem:
		if h > 0 {
			return v.Offset(int64(h * a.cfg.PhysBytes()))
		}
	}
	return o, nil
}

func (a *Assembler) temp(h int) operand.Reg { return a.phys(operand.Xmm(a.cfg.TempReg()), h) }

func (a *Assembler) each(f func(h int) error) error {
	for h := 0; h < a.cfg.Halves(); h++ {
		if err := f(h); err != nil {
			return err
		}
	}
	return nil
}

package operand

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/rterrors"
)

// DispClass is a displacement constructor window.
type DispClass uint8

const (
	ClassDP DispClass = iota
	ClassDE
	ClassDF
	ClassDG
	ClassDH
	ClassDV
)

var dispMasks = [...]int64{
	ClassDP: 0xFFC,
	ClassDE: 0x1FFC,
	ClassDF: 0x3FFC,
	ClassDG: 0x7FFC,
	ClassDH: 0xFFFC,
	ClassDV: 0x7FFFFFFC,
}

var dispNames = [...]string{"DP", "DE", "DF", "DG", "DH", "DV"}

func (c DispClass) Mask() int64   { return dispMasks[c] }
func (c DispClass) String() string { return dispNames[c] }

// Disp is a non-negative, 4-byte aligned displacement.
type Disp struct {
	Value int64
	Class DispClass
}

func DP(v int64) Disp { return Disp{v, ClassDP} }
func DE(v int64) Disp { return Disp{v, ClassDE} }
func DF(v int64) Disp { return Disp{v, ClassDF} }
func DG(v int64) Disp { return Disp{v, ClassDG} }
func DH(v int64) Disp { return Disp{v, ClassDH} }
func DV(v int64) Disp { return Disp{v, ClassDV} }

// PLAIN addresses the base register itself.
var PLAIN = DP(0)

// Check reports values outside the window or off the 4-byte grid.
func (d Disp) Check() error {
	if int(d.Class) >= len(dispMasks) {
		return fmt.Errorf("%w: unknown class %d", rterrors.ErrDisplacementRange, d.Class)
	}
	if d.Value < 0 || d.Value&^d.Class.Mask() != 0 {
		return fmt.Errorf("%w: %s(%#x) outside mask %#x", rterrors.ErrDisplacementRange, d.Class, d.Value, d.Class.Mask())
	}
	return nil
}

func (d Disp) String() string { return fmt.Sprintf("%s(%#x)", d.Class, d.Value) }

// ImmClass is an immediate constructor window.
type ImmClass uint8

const (
	ClassIC ImmClass = iota
	ClassIB
	ClassIM
	ClassIG
	ClassIH
	ClassIV
	ClassIW
)

var immMasks = [...]int64{
	ClassIC: 0x7F,
	ClassIB: 0xFF,
	ClassIM: 0xFFF,
	ClassIG: 0x7FFF,
	ClassIH: 0xFFFF,
	ClassIV: 0x7FFFFFFF,
	ClassIW: 0xFFFFFFFF,
}

var immNames = [...]string{"IC", "IB", "IM", "IG", "IH", "IV", "IW"}

func (c ImmClass) Mask() int64   { return immMasks[c] }
func (c ImmClass) String() string { return immNames[c] }

// Imm is an immediate bound to a size class.
type Imm struct {
	Value int64
	Class ImmClass
}

func IC(v int64) Imm { return Imm{v, ClassIC} }
func IB(v int64) Imm { return Imm{v, ClassIB} }
func IM(v int64) Imm { return Imm{v, ClassIM} }
func IG(v int64) Imm { return Imm{v, ClassIG} }
func IH(v int64) Imm { return Imm{v, ClassIH} }
func IV(v int64) Imm { return Imm{v, ClassIV} }
func IW(v int64) Imm { return Imm{v, ClassIW} }

// Check reports values outside the class window.
func (i Imm) Check() error {
	if int(i.Class) >= len(immMasks) {
		return fmt.Errorf("%w: unknown class %d", rterrors.ErrImmediateRange, i.Class)
	}
	if i.Value < 0 || i.Value&^i.Class.Mask() != 0 {
		return fmt.Errorf("%w: %s(%#x) outside mask %#x", rterrors.ErrImmediateRange, i.Class, i.Value, i.Class.Mask())
	}
	return nil
}

// Signed returns the value as the BASE instructions see it: IW is a 32-bit
// pattern sign-extended to the operation size.
func (i Imm) Signed() int64 {
	if i.Class == ClassIW {
		return int64(int32(uint32(i.Value)))
	}
	return i.Value
}

func (i Imm) Triplet() Triplet {
	return Triplet{Value: i.Value, Tag: TagImm, Fragment: uint32(i.Value & i.Class.Mask())}
}

func (i Imm) String() string { return fmt.Sprintf("%s(%#x)", i.Class, i.Value) }

package simd

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
)

// Route is how a comparator is realised on a backend.
type Route uint8

const (
	RouteNone      Route = iota
	RouteDirect          // native comparator
	RouteSwap            // native comparator with exchanged sources
	RouteNotEq           // cne = not(ceq)
	RouteNotDirect       // complement of a native comparator
	RouteNotSwap         // complement of a swapped native comparator
	RouteMinMax          // ceq against min/max
)

var routeNames = [...]string{"none", "direct", "swap", "not-eq", "not-direct", "not-swap", "min-max"}

func (r Route) String() string { return routeNames[r] }

func complement(c Op) Op {
	switch c {
	case lanes.OpCeq:
		return lanes.OpCne
	case lanes.OpCne:
		return lanes.OpCeq
	case lanes.OpClt:
		return lanes.OpCge
	case lanes.OpCge:
		return lanes.OpClt
	case lanes.OpCle:
		return lanes.OpCgt
	case lanes.OpCgt:
		return lanes.OpCle
	}
	return c
}

// CompareRoute picks the cheapest realisation of c on e. Floats never use
// complements, which would turn ordered predicates into unordered ones.
func (a *Assembler) CompareRoute(c Op, e Elem) Route {
	b := a.b
	if !c.IsCompare() || !c.Applies(e) {
		return RouteNone
	}
	if b.NativeCompare(c, e) {
		return RouteDirect
	}
	if c == lanes.OpCne {
		if b.NativeCompare(lanes.OpCeq, e) {
			return RouteNotEq
		}
		return RouteNone
	}
	if s := c.Swapped(); s != c && b.NativeCompare(s, e) {
		return RouteSwap
	}
	if e.IsFloat() {
		return RouteNone
	}
	k := complement(c)
	if b.NativeCompare(k, e) {
		return RouteNotDirect
	}
	if s := k.Swapped(); s != k && b.NativeCompare(s, e) {
		return RouteNotSwap
	}
	if b.NativeCompare(lanes.OpCeq, e) &&
		b.Supports(lanes.OpMin, e) != Unsupported && b.Supports(lanes.OpMax, e) != Unsupported {
		return RouteMinMax
	}
	return RouteNone
}

func (a *Assembler) compare(c Op, e Elem, dst, s1 operand.Reg, s2 operand.Operand) {
	a.do(opName(c, e), func() error {
		if err := a.vregs(dst, s1); err != nil {
			return err
		}
		if err := a.vsrc(s2); err != nil {
			return err
		}
		r := a.CompareRoute(c, e)
		if r == RouteNone {
			return fmt.Errorf("%w: %s on %s", rterrors.ErrUnsupported, opName(c, e), a.cfg)
		}
		if r != RouteDirect {
			log.Debug(log.SIMDLayer, "derived compare", "op", c, "elem", e, "route", r)
		}
		return a.each(func(h int) error {
			y, err := a.half(s2, h)
			if err != nil {
				return err
			}
			return a.emitCompare(r, c, e, a.phys(dst, h), a.phys(s1, h), y, a.temp(h))
		})
	})
}

// swapped emits c(y, x) for a swapped-native comparator c.
func (a *Assembler) swapped(c Op, e Elem, d, x operand.Reg, y operand.Operand, t operand.Reg) error {
	yr, ok := y.(operand.Reg)
	if !ok {
		if err := a.b.Move(t, y); err != nil {
			return err
		}
		yr = t
	}
	return a.b.Compare(c, e, d, yr, x)
}

func (a *Assembler) emitCompare(r Route, c Op, e Elem, d, x operand.Reg, y operand.Operand, t operand.Reg) error {
	b := a.b
	switch r {
	case RouteDirect:
		return b.Compare(c, e, d, x, y)
	case RouteSwap:
		return a.swapped(c.Swapped(), e, d, x, y, t)
	case RouteNotEq:
		if err := b.Compare(lanes.OpCeq, e, d, x, y); err != nil {
			return err
		}
		return b.Not(d, d)
	case RouteNotDirect:
		if err := b.Compare(complement(c), e, d, x, y); err != nil {
			return err
		}
		return b.Not(d, d)
	case RouteNotSwap:
		if err := a.swapped(complement(c).Swapped(), e, d, x, y, t); err != nil {
			return err
		}
		return b.Not(d, d)
	case RouteMinMax:
		return a.minMaxCompare(c, e, d, x, y, t)
	}
	return rterrors.ErrUnsupported
}

// minMaxCompare derives ordering comparators from equality:
//
//	cge(a,b) = ceq(min(a,b), b)    cle(a,b) = ceq(min(a,b), a)
//	cgt(a,b) = cne(max(a,b), b)    clt(a,b) = cne(max(a,b), a)
func (a *Assembler) minMaxCompare(c Op, e Elem, d, x operand.Reg, y operand.Operand, t operand.Reg) error {
	b := a.b
	pick := lanes.OpMin
	if c == lanes.OpCgt || c == lanes.OpClt {
		pick = lanes.OpMax
	}
	if err := b.Arith(pick, e, t, x, y); err != nil {
		return err
	}
	var against operand.Operand = y
	if c == lanes.OpCle || c == lanes.OpClt {
		against = x
	}
	if err := b.Compare(lanes.OpCeq, e, d, t, against); err != nil {
		return err
	}
	if pick == lanes.OpMax {
		return b.Not(d, d)
	}
	return nil
}

func (a *Assembler) Ceq3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpCeq, e, dst, s1, s2) }
func (a *Assembler) Cne3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpCne, e, dst, s1, s2) }
func (a *Assembler) Clt3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpClt, e, dst, s1, s2) }
func (a *Assembler) Cle3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpCle, e, dst, s1, s2) }
func (a *Assembler) Cgt3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpCgt, e, dst, s1, s2) }
func (a *Assembler) Cge3(e Elem, dst, s1 operand.Reg, s2 operand.Operand) { a.compare(lanes.OpCge, e, dst, s1, s2) }

func (a *Assembler) Ceq(e Elem, dst operand.Reg, s operand.Operand) { a.Ceq3(e, dst, dst, s) }
func (a *Assembler) Cne(e Elem, dst operand.Reg, s operand.Operand) { a.Cne3(e, dst, dst, s) }
func (a *Assembler) Clt(e Elem, dst operand.Reg, s operand.Operand) { a.Clt3(e, dst, dst, s) }
func (a *Assembler) Cle(e Elem, dst operand.Reg, s operand.Operand) { a.Cle3(e, dst, dst, s) }
func (a *Assembler) Cgt(e Elem, dst operand.Reg, s operand.Operand) { a.Cgt3(e, dst, dst, s) }
func (a *Assembler) Cge(e Elem, dst operand.Reg, s operand.Operand) { a.Cge3(e, dst, dst, s) }

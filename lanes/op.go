package lanes

// Op is a portable operation.
type Op uint8

const (
	OpNone Op = iota
	OpMov
	OpAnd
	OpAnn // ~a & b
	OpOrr
	OpOrn // ~a | b
	OpXor
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAds // saturating add
	OpSbs // saturating subtract
	OpMin
	OpMax
	OpShl // count from an immediate or the first lane of memory
	OpShr
	OpSvl // per-lane counts
	OpSvr
	OpCeq
	OpCne
	OpClt
	OpCle
	OpCgt
	OpCge
	OpMmv
	OpMkj
)

var opNames = [...]string{
	OpNone: "none", OpMov: "mov", OpAnd: "and", OpAnn: "ann", OpOrr: "orr", OpOrn: "orn",
	OpXor: "xor", OpNot: "not", OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div",
	OpAds: "ads", OpSbs: "sbs", OpMin: "min", OpMax: "max", OpShl: "shl", OpShr: "shr",
	OpSvl: "svl", OpSvr: "svr", OpCeq: "ceq", OpCne: "cne", OpClt: "clt", OpCle: "cle",
	OpCgt: "cgt", OpCge: "cge", OpMmv: "mmv", OpMkj: "mkj",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op?"
}

// ParseOp maps a three-letter name to its Op.
func ParseOp(s string) (Op, bool) {
	for i, n := range opNames {
		if n == s && i != int(OpNone) {
			return Op(i), true
		}
	}
	return OpNone, false
}

// IsCompare reports whether o produces a lane mask.
func (o Op) IsCompare() bool { return o >= OpCeq && o <= OpCge }

// IsLogic reports whether o is element agnostic.
func (o Op) IsLogic() bool { return o >= OpAnd && o <= OpNot }

// Commutative reports whether the sources may be swapped.
func (o Op) Commutative() bool {
	switch o {
	case OpAnd, OpOrr, OpXor, OpAdd, OpMul, OpAds, OpMin, OpMax, OpCeq, OpCne:
		return true
	}
	return false
}

// Swapped returns the comparator with its operands exchanged.
func (o Op) Swapped() Op {
	switch o {
	case OpClt:
		return OpCgt
	case OpCgt:
		return OpClt
	case OpCle:
		return OpCge
	case OpCge:
		return OpCle
	}
	return o
}

// Applies reports whether o is defined for e at all, independent of target.
func (o Op) Applies(e Elem) bool {
	if !e.Valid() {
		return false
	}
	switch o {
	case OpDiv:
		return e.IsFloat()
	case OpAds, OpSbs, OpShl, OpShr, OpSvl, OpSvr:
		return !e.IsFloat()
	}
	return true
}

// Compares lists the comparators in mnemonic order.
var Compares = []Op{OpCeq, OpCne, OpClt, OpCle, OpCgt, OpCge}

// Binary lists the lanewise two-source operations.
var Binary = []Op{OpAdd, OpSub, OpMul, OpDiv, OpAds, OpSbs, OpMin, OpMax}

// Package fallback describes how an operation a target cannot encode at
// full width is split into narrow steps through scratch memory.
package fallback

import (
	"fmt"
	"sync"

	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/colorfulnotion/rtsimd/rterrors"
	"github.com/colorfulnotion/rtsimd/target"
)

// Unit is the narrow step a wide operation is decomposed into.
type Unit uint8

const (
	None   Unit = iota // encoded natively, no plan
	Vector             // 16-byte vector steps
	Scalar             // one lane per step through base registers
)

func (u Unit) String() string {
	switch u {
	case Vector:
		return "vector128"
	case Scalar:
		return "scalar"
	}
	return "none"
}

// Plan splits Wide bytes into steps of Narrow bytes.
type Plan struct {
	Unit   Unit
	Wide   int
	Narrow int
}

// Steps returns the number of narrow groups.
func (p Plan) Steps() int {
	if p.Narrow == 0 {
		return 0
	}
	return p.Wide / p.Narrow
}

func (p Plan) String() string {
	return fmt.Sprintf("%s %dx%d", p.Unit, p.Steps(), p.Narrow)
}

// Expand calls step once per narrow group with its byte offset.
func (p Plan) Expand(step func(i, offset int) error) error {
	if p.Unit == None || p.Narrow <= 0 || p.Wide%p.Narrow != 0 {
		return fmt.Errorf("%w: bad plan %s", rterrors.ErrScratch, p)
	}
	for i := 0; i < p.Steps(); i++ {
		if err := step(i, i*p.Narrow); err != nil {
			return err
		}
	}
	return nil
}

// Key selects a plan.
type Key struct {
	Op    lanes.Op
	Elem  lanes.Elem
	Level target.Level
	Width int // physical register bytes
}

// Rule decides the plan for a key; ok is false when the operation cannot
// be expressed at all.
type Rule func(k Key) (p Plan, ok bool)

// Table memoizes a Rule.
type Table struct {
	rule Rule
	mu   sync.Mutex
	memo map[Key]entry
}

type entry struct {
	p  Plan
	ok bool
}

// NewTable returns a table answering from rule.
func NewTable(rule Rule) *Table {
	return &Table{rule: rule, memo: make(map[Key]entry)}
}

// Lookup returns the plan for k.
func (t *Table) Lookup(k Key) (Plan, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.memo[k]; ok {
		return e.p, e.ok
	}
	p, ok := t.rule(k)
	t.memo[k] = entry{p, ok}
	if ok && p.Unit != None {
		log.Debug(log.FallbackPath, "fallback plan", "op", k.Op, "elem", k.Elem, "level", k.Level, "plan", p)
	}
	return p, ok
}

// Slots are the two scratch operands a plan stages its sources in.
type Slots struct {
	A, B operand.Mem
}

// SlotsFor returns the scratch slots of cfg, one physical register each.
func SlotsFor(cfg target.Config) Slots {
	base := operand.R(cfg.Scratch.Base)
	off := int64(cfg.Scratch.Offset)
	return Slots{
		A: operand.M(base, operand.DV(off)),
		B: operand.M(base, operand.DV(off+int64(cfg.PhysBytes()))),
	}
}

// At returns slot m advanced by offset bytes. Slots lie inside the scratch
// area that Config.Validate keeps within DV, so the sum needs no check.
func At(m operand.Mem, offset int) operand.Mem {
	return operand.M(m.Base, operand.DV(m.Disp.Value+int64(offset)))
}

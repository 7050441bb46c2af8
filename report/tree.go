package report

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/target"
	"github.com/xlab/treeprint"
)

// Tree groups profiles by ISA and level. Profiles the host can run are
// tagged "host".
func Tree(profiles []target.Config, host func(target.Config) bool) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue("targets")
	isas := map[target.ISA]treeprint.Tree{}
	levels := map[string]treeprint.Tree{}
	for _, cfg := range profiles {
		ib, ok := isas[cfg.ISA]
		if !ok {
			ib = tree.AddBranch(cfg.ISA.String())
			isas[cfg.ISA] = ib
		}
		key := cfg.ISA.String() + "/" + cfg.Level.String()
		lb, ok := levels[key]
		if !ok {
			lb = ib.AddBranch(cfg.Level.String())
			levels[key] = lb
		}
		v := fmt.Sprintf("%s  regs=%d u32x%d base=%d addr=%d", cfg, cfg.VectorRegs(), cfg.Lanes(32), cfg.BaseBits(), cfg.AddressBits())
		if host != nil && host(cfg) {
			lb.AddMetaNode("host", v)
		} else {
			lb.AddNode(v)
		}
	}
	return tree
}

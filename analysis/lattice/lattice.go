// Package lattice provides the reusable abstract domains concrete analyses
// build their states from: flat lifts of value types, immutable finite sets,
// and intervals with widening. Each domain satisfies absint.Domain for its
// element type.
package lattice

import (
	"github.com/fatih/color"

	"github.com/ibex-analyzer/ibex/analysis/absint"
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/utils"
)

// The domains are pluggable into the fixpoint engine for any node type.
var (
	_ absint.Domain[Flat[int]]     = FlatDomain[int]{}
	_ absint.Domain[Set[cfg.Ident]] = SetDomain[cfg.Ident]{}
	_ absint.Domain[Interval]      = IntervalDomain{}
)

var elementColor = color.New(color.FgMagenta).SprintFunc()

// colorizeElement renders the symbolic lattice constants (⊥, ⊤) with the
// global colorization setting applied.
func colorizeElement(s string) string {
	return utils.CanColorize(elementColor)(s)
}

// Package mutators holds the catalogue of Mutation Operators: pure scans
// over a Function's instructions that identify candidate MutationPoints
// without ever touching the IR they scan.
package mutators

import "crucible.dev/pkg/crucible/internal/ir"

// Operator scans a Function for instructions it knows how to mutate.
// Scan must never modify fn; producing the list of candidate points is
// strictly read-only, so the same Function can be scanned by every
// registered Operator in any order without interference.
type Operator interface {
	Kind() ir.OperatorKind
	Scan(handle ir.ModuleHandle, fn *ir.Function) []*ir.MutationPoint
}

// Registry is the project's fixed, ordered catalogue of operators. Order
// matters: the Pipeline visits mutation points in a stable order, by
// operator-registration-order first, then instruction index.
func Registry() []Operator {
	return []Operator{
		ConditionalsBoundary{},
		MathAdd{},
		MathSub{},
	}
}

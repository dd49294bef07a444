package mutators

import "crucible.dev/pkg/crucible/internal/ir"

// ConditionalsBoundary replaces a relational comparison with its boundary
// counterpart: < becomes <=, <= becomes <, > becomes >=, >= becomes >.
// Equality and inequality comparisons have no boundary counterpart and are
// left alone.
type ConditionalsBoundary struct{}

func (ConditionalsBoundary) Kind() ir.OperatorKind { return ir.ConditionalsBoundary }

func (o ConditionalsBoundary) Scan(handle ir.ModuleHandle, fn *ir.Function) []*ir.MutationPoint {
	var points []*ir.MutationPoint

	for _, instr := range fn.Instructions() {
		if instr.Opcode != ir.OpICmp {
			continue
		}

		switch instr.Predicate {
		case ir.PredLT, ir.PredLE, ir.PredGT, ir.PredGE:
			points = append(points, ir.NewMutationPoint(o.Kind(), handle, fn.Name, instr))
		}
	}

	return points
}

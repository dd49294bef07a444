package mutators

import "crucible.dev/pkg/crucible/internal/ir"

// MathAdd replaces every addition with a subtraction.
type MathAdd struct{}

func (MathAdd) Kind() ir.OperatorKind { return ir.MathAdd }

func (o MathAdd) Scan(handle ir.ModuleHandle, fn *ir.Function) []*ir.MutationPoint {
	var points []*ir.MutationPoint

	for _, instr := range fn.Instructions() {
		if instr.Opcode == ir.OpAdd {
			points = append(points, ir.NewMutationPoint(o.Kind(), handle, fn.Name, instr))
		}
	}

	return points
}

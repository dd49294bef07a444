package mutators

import "crucible.dev/pkg/crucible/internal/ir"

// MathSub replaces every subtraction with an addition.
type MathSub struct{}

func (MathSub) Kind() ir.OperatorKind { return ir.MathSub }

func (o MathSub) Scan(handle ir.ModuleHandle, fn *ir.Function) []*ir.MutationPoint {
	var points []*ir.MutationPoint

	for _, instr := range fn.Instructions() {
		if instr.Opcode == ir.OpSub {
			points = append(points, ir.NewMutationPoint(o.Kind(), handle, fn.Name, instr))
		}
	}

	return points
}

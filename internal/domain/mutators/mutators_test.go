package mutators

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/ir"
)

func buildMixedFunction() *ir.Function {
	return &ir.Function{
		Name:  "f",
		Entry: "b",
		Blocks: []*ir.BasicBlock{{Name: "b", Instructions: []*ir.Instruction{
			{Opcode: ir.OpICmp, Predicate: ir.PredLT},
			{Opcode: ir.OpICmp, Predicate: ir.PredGE},
			{Opcode: ir.OpICmp, Predicate: ir.PredEQ},
			{Opcode: ir.OpICmp, Predicate: ir.PredNE},
			{Opcode: ir.OpAdd},
			{Opcode: ir.OpSub},
			{Opcode: ir.OpMul},
			{Opcode: ir.OpRet},
		}}},
	}
}

func TestConditionalsBoundaryScansOnlyOrderedPredicates(t *testing.T) {
	fn := buildMixedFunction()
	points := ConditionalsBoundary{}.Scan(0, fn)

	require.Len(t, points, 2)
	require.Equal(t, ir.PredLT, points[0].Instr.Predicate)
	require.Equal(t, ir.PredGE, points[1].Instr.Predicate)

	for _, p := range points {
		require.Equal(t, ir.ConditionalsBoundary, p.Operator)
	}
}

func TestMathAddScansOnlyAdditions(t *testing.T) {
	fn := buildMixedFunction()
	points := MathAdd{}.Scan(0, fn)

	require.Len(t, points, 1)
	require.Equal(t, ir.OpAdd, points[0].Instr.Opcode)
	require.Equal(t, ir.MathAdd, points[0].Operator)
}

func TestMathSubScansOnlySubtractions(t *testing.T) {
	fn := buildMixedFunction()
	points := MathSub{}.Scan(0, fn)

	require.Len(t, points, 1)
	require.Equal(t, ir.OpSub, points[0].Instr.Opcode)
	require.Equal(t, ir.MathSub, points[0].Operator)
}

func TestRegistryOrderIsStable(t *testing.T) {
	reg := Registry()

	require.Len(t, reg, 3)
	require.Equal(t, ir.ConditionalsBoundary, reg[0].Kind())
	require.Equal(t, ir.MathAdd, reg[1].Kind())
	require.Equal(t, ir.MathSub, reg[2].Kind())
}

func TestScanNeverMutatesTheFunction(t *testing.T) {
	fn := buildMixedFunction()
	before := fn.Instructions()[0].Predicate

	for _, op := range Registry() {
		op.Scan(0, fn)
	}

	require.Equal(t, before, fn.Instructions()[0].Predicate)
}

package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/adapter"
	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
	"crucible.dev/pkg/crucible/pkg"
)

// fakeJunkDetector flags every point in a named set of "junky" functions,
// so the pipeline test can exercise the skip-and-count path without a
// real C++ source file for CXXJunkDetector to parse.
type fakeJunkDetector struct {
	junkyFunctions map[string]bool
}

func (d *fakeJunkDetector) IsJunk(point *ir.MutationPoint) (bool, error) {
	return d.junkyFunctions[point.FunctionName], nil
}

// buildPipelineModule builds:
//
//	add(x, y)   = x + y
//	junky(x, y) = x + y   (flagged junk by the fake detector)
//	test_calc   calls both, fails iff either sum differs from 5
func buildPipelineModule() *ir.Module {
	adder := func(name string) *ir.Function {
		return &ir.Function{
			Name:   name,
			Entry:  "b",
			Params: []string{"x", "y"},
			Blocks: []*ir.BasicBlock{{Name: "b", Instructions: []*ir.Instruction{
				{ID: 0, Opcode: ir.OpAdd, Result: "r", LHS: "x", RHS: "y"},
				{ID: 1, Opcode: ir.OpRet, LHS: "r"},
			}}},
		}
	}

	add := adder("add")
	junky := adder("junky")

	test := &ir.Function{
		Name:  "test_calc",
		Entry: "b",
		Blocks: []*ir.BasicBlock{{Name: "b", Instructions: []*ir.Instruction{
			{ID: 0, Opcode: ir.OpConst, Result: "two", Const: 2},
			{ID: 1, Opcode: ir.OpConst, Result: "three", Const: 3},
			{ID: 2, Opcode: ir.OpConst, Result: "five", Const: 5},
			{ID: 3, Opcode: ir.OpCall, Result: "got1", Callee: "add", Args: []string{"two", "three"}},
			{ID: 4, Opcode: ir.OpCall, Result: "got2", Callee: "junky", Args: []string{"two", "three"}},
			{ID: 5, Opcode: ir.OpSub, Result: "diff1", LHS: "got1", RHS: "five"},
			{ID: 6, Opcode: ir.OpSub, Result: "diff2", LHS: "got2", RHS: "five"},
			{ID: 7, Opcode: ir.OpAdd, Result: "sum", LHS: "diff1", RHS: "diff2"},
			{ID: 8, Opcode: ir.OpRet, LHS: "sum"},
		}}},
	}

	return &ir.Module{SourceFile: "calc.c", Functions: []*ir.Function{add, junky, test}}
}

func newPipelineForModule(t *testing.T, mod *ir.Module) *Pipeline {
	t.Helper()

	loader := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{"calc": mod})
	store := NewStore(loader)

	_, err := store.Load("calc")
	require.NoError(t, err)

	compiler := adapter.NewNativeCompiler()
	cache, err := adapter.NewDiskObjectCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.CompileBaselines(compiler, cache))

	junk := &fakeJunkDetector{junkyFunctions: map[string]bool{"junky": true}}

	return NewPipeline(store, compiler, adapter.NewLocalLinker(), adapter.NewLocalTestRunner(time.Second), junk)
}

func TestPipelineRunKillsMutantAndSkipsJunk(t *testing.T) {
	pipeline := newPipelineForModule(t, buildPipelineModule())

	results, skipped, err := pipeline.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, results, 1)

	result := results[0]
	require.Equal(t, "test_calc", result.Name)
	require.Equal(t, model.Passed, result.Baseline.Status)
	require.Len(t, result.Mutants, 1)
	require.Equal(t, ir.MathAdd, result.Mutants[0].Operator)
	require.Equal(t, model.Failed, result.Mutants[0].Result.Status)
}

func TestPipelineRunConcurrentMatchesSequential(t *testing.T) {
	pipeline := newPipelineForModule(t, buildPipelineModule())

	results, skipped, err := pipeline.Run(context.Background(), RunOptions{Concurrency: 4})
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, results, 1)
	require.Equal(t, model.Failed, results[0].Mutants[0].Result.Status)
}

func TestPipelineRunReportsProgress(t *testing.T) {
	pipeline := newPipelineForModule(t, buildPipelineModule())

	var calls [][2]int
	_, _, err := pipeline.Run(context.Background(), RunOptions{
		ProgressFunc: func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		},
	})
	require.NoError(t, err)
	require.Equal(t, [][2]int{{1, 1}}, calls)
}

func TestPipelineRunWithResultSpill(t *testing.T) {
	pipeline := newPipelineForModule(t, buildPipelineModule())

	spill, err := pkg.NewFileSpill[model.TestResult](t.TempDir())
	require.NoError(t, err)

	results, _, err := pipeline.Run(context.Background(), RunOptions{ResultSpill: spill})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "test_calc", results[0].Name)
}

func TestShardTestsSplitsDeterministically(t *testing.T) {
	tests := []model.Test{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}

	shard0 := shardTests(tests, 0, 2)
	shard1 := shardTests(tests, 1, 2)

	require.Equal(t, []string{"a", "c"}, namesOf(shard0))
	require.Equal(t, []string{"b", "d"}, namesOf(shard1))
}

func TestShardTestsDisabledByZeroTotal(t *testing.T) {
	tests := []model.Test{{Name: "a"}, {Name: "b"}}

	require.Equal(t, tests, shardTests(tests, 0, 0))
}

func namesOf(tests []model.Test) []string {
	out := make([]string, len(tests))
	for i, tc := range tests {
		out[i] = tc.Name
	}
	return out
}

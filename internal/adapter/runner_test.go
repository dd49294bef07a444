package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

func buildDoubleModule() *ir.Module {
	double := &ir.Function{
		Name:   "double",
		Entry:  "body",
		Params: []string{"x"},
		Blocks: []*ir.BasicBlock{
			{Name: "body", Instructions: []*ir.Instruction{
				{ID: 0, Opcode: ir.OpAdd, Result: "r", LHS: "x", RHS: "x"},
				{ID: 1, Opcode: ir.OpRet, LHS: "r"},
			}},
		},
	}

	test := &ir.Function{
		Name:   "test_double",
		Entry:  "body",
		Params: nil,
		Blocks: []*ir.BasicBlock{
			{Name: "body", Instructions: []*ir.Instruction{
				{ID: 0, Opcode: ir.OpConst, Result: "twentyone", Const: 21},
				{ID: 1, Opcode: ir.OpCall, Result: "got", Callee: "double", Args: []string{"twentyone"}},
				{ID: 2, Opcode: ir.OpConst, Result: "want", Const: 42},
				{ID: 3, Opcode: ir.OpSub, Result: "diff", LHS: "got", RHS: "want"},
				{ID: 4, Opcode: ir.OpRet, LHS: "diff"},
			}},
		},
	}

	return &ir.Module{SourceFile: "double.c", Functions: []*ir.Function{double, test}}
}

func TestCompileLinkRunRoundTrip(t *testing.T) {
	mod := buildDoubleModule()

	compiler := NewNativeCompiler()
	obj, err := compiler.Compile(mod)
	require.NoError(t, err)
	require.NotEmpty(t, obj.SourceHash)

	linker := NewLocalLinker()
	img, err := linker.Link([]*model.Object{obj})
	require.NoError(t, err)

	runner := NewLocalTestRunner(time.Second)
	test := model.Test{Name: "test_double", Function: mod.Function("test_double"), Kind: model.TestKindSimple}

	result := runner.Run(context.Background(), test, img)
	require.Equal(t, model.Passed, result.Status)
}

func TestRunnerReportsFailureOnNonzeroExit(t *testing.T) {
	mod := buildDoubleModule()
	// Corrupt the expected value so double(21) != want, forcing a nonzero exit.
	mod.Function("test_double").Block("body").Instructions[2].Const = 1000

	compiler := NewNativeCompiler()
	obj, err := compiler.Compile(mod)
	require.NoError(t, err)

	linker := NewLocalLinker()
	img, err := linker.Link([]*model.Object{obj})
	require.NoError(t, err)

	runner := NewLocalTestRunner(time.Second)
	test := model.Test{Name: "test_double", Function: mod.Function("test_double"), Kind: model.TestKindSimple}

	result := runner.Run(context.Background(), test, img)
	require.Equal(t, model.Failed, result.Status)
}

func TestRunnerReportsInvalidOnUnresolvedCall(t *testing.T) {
	mod := buildDoubleModule()
	mod.Function("test_double").Block("body").Instructions[1].Callee = "nonexistent"

	compiler := NewNativeCompiler()
	obj, err := compiler.Compile(mod)
	require.NoError(t, err)

	linker := NewLocalLinker()
	img, err := linker.Link([]*model.Object{obj})
	require.NoError(t, err)

	runner := NewLocalTestRunner(time.Second)
	test := model.Test{Name: "test_double", Function: mod.Function("test_double"), Kind: model.TestKindSimple}

	result := runner.Run(context.Background(), test, img)
	require.Equal(t, model.Invalid, result.Status)
}

func TestRunnerTimesOut(t *testing.T) {
	loopFn := &ir.Function{
		Name:  "test_loops_forever",
		Entry: "body",
		Blocks: []*ir.BasicBlock{
			{Name: "body", Instructions: []*ir.Instruction{
				{ID: 0, Opcode: ir.OpBr, Targets: []string{"body"}},
			}},
		},
	}
	mod := &ir.Module{SourceFile: "loop.c", Functions: []*ir.Function{loopFn}}

	compiler := NewNativeCompiler()
	obj, err := compiler.Compile(mod)
	require.NoError(t, err)

	linker := NewLocalLinker()
	img, err := linker.Link([]*model.Object{obj})
	require.NoError(t, err)

	runner := NewLocalTestRunner(10 * time.Millisecond)
	test := model.Test{Name: "test_loops_forever", Function: loopFn, Kind: model.TestKindSimple}

	result := runner.Run(context.Background(), test, img)
	require.Equal(t, model.Invalid, result.Status)
}

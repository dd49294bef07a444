package adapter

import (
	"context"
	"fmt"
	"time"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// LinkedImage is the result of resolving a set of Objects against each
// other: a flat, name-addressed symbol table a TestRunner can invoke into.
type LinkedImage struct {
	symbols map[string]*model.FunctionBody
}

// Lookup resolves a function by name across every Object the Linker was
// given. Per the "which object answers a call" open question, when more
// than one Object defines the same symbol the last one passed to Link wins
// — callers are expected to pass the mutated module's Object last so it
// shadows the baseline definition it replaces.
func (img *LinkedImage) Lookup(name string) (*model.FunctionBody, bool) {
	body, ok := img.symbols[name]
	return body, ok
}

// Linker merges the symbol tables of an "all but one" object set: every
// module's baseline Object plus exactly one mutated Object standing in for
// the module currently under test.
type Linker interface {
	Link(objects []*model.Object) (*LinkedImage, error)
}

// LocalLinker resolves symbols purely by function name, in the order the
// Objects are supplied.
type LocalLinker struct{}

// NewLocalLinker constructs a LocalLinker.
func NewLocalLinker() *LocalLinker {
	return &LocalLinker{}
}

func (l *LocalLinker) Link(objects []*model.Object) (*LinkedImage, error) {
	img := &LinkedImage{symbols: make(map[string]*model.FunctionBody)}

	for _, obj := range objects {
		for name, body := range obj.Functions {
			img.symbols[name] = body
		}
	}

	return img, nil
}

// TestRunner invokes a Test's entry function against a linked image and
// reports the outcome. Implementations own the timeout: a Test that does
// not return within the configured mutation timeout is reported Invalid,
// never Failed, since a hang is not evidence the mutant was killed.
type TestRunner interface {
	Run(ctx context.Context, test model.Test, img *LinkedImage) model.ExecutionResult
}

// LocalTestRunner interprets IR directly rather than invoking a real JIT,
// the native execution counterpart to NativeCompiler: there is no machine
// code, so "running" a test means walking its FunctionBody's instructions.
type LocalTestRunner struct {
	Timeout time.Duration
}

// NewLocalTestRunner constructs a LocalTestRunner with the given
// per-invocation timeout. A zero timeout means no deadline.
func NewLocalTestRunner(timeout time.Duration) *LocalTestRunner {
	return &LocalTestRunner{Timeout: timeout}
}

func (r *LocalTestRunner) Run(ctx context.Context, test model.Test, img *LinkedImage) model.ExecutionResult {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()

	type outcome struct {
		exitCode int64
		err      error
	}

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("test %q panicked: %v", test.Name, p)}
			}
		}()

		code, err := interpretFunction(img, test.Function.Name, nil)
		done <- outcome{exitCode: code, err: err}
	}()

	select {
	case <-ctx.Done():
		return model.ExecutionResult{Status: model.Invalid, RunningTimeNanos: time.Since(start).Nanoseconds()}
	case o := <-done:
		elapsed := time.Since(start).Nanoseconds()

		if o.err != nil {
			return model.ExecutionResult{Status: model.Invalid, RunningTimeNanos: elapsed}
		}

		return model.ExecutionResult{Status: test.Kind.InterpretStatus(o.exitCode), RunningTimeNanos: elapsed}
	}
}

// interpretFunction walks a function body's basic blocks, following calls
// into other symbols of the same linked image, until it reaches a ret.
func interpretFunction(img *LinkedImage, name string, args []int64) (int64, error) {
	body, ok := img.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("unresolved symbol %q", name)
	}

	locals := make(map[string]int64, len(body.Params))
	for i, p := range body.Params {
		if i < len(args) {
			locals[p] = args[i]
		}
	}

	blockName := body.Entry
	block, ok := body.Blocks[blockName]
	if !ok {
		return 0, fmt.Errorf("function %q has no entry block %q", name, body.Entry)
	}

	const maxSteps = 1 << 20 // guards against a malformed mutant looping forever without a context deadline.
	steps := 0

	for {
		targetBlockName, ret, retOK, err := execBlock(img, block, locals)
		if err != nil {
			return 0, err
		}

		if retOK {
			return ret, nil
		}

		block, ok = body.Blocks[targetBlockName]
		if !ok {
			return 0, fmt.Errorf("function %q: unresolved basic block %q", name, targetBlockName)
		}

		steps++
		if steps > maxSteps {
			return 0, fmt.Errorf("function %q exceeded %d basic block transitions", name, maxSteps)
		}
	}
}

func execBlock(img *LinkedImage, block []*ir.Instruction, locals map[string]int64) (targetBlockName string, retVal int64, returned bool, err error) {
	for _, instr := range block {
		switch instr.Opcode {
		case ir.OpConst:
			locals[instr.Result] = instr.Const
		case ir.OpAdd:
			locals[instr.Result] = locals[instr.LHS] + operand(locals, instr.RHS)
		case ir.OpSub:
			locals[instr.Result] = locals[instr.LHS] - operand(locals, instr.RHS)
		case ir.OpMul:
			locals[instr.Result] = locals[instr.LHS] * operand(locals, instr.RHS)
		case ir.OpQuo:
			divisor := operand(locals, instr.RHS)
			if divisor == 0 {
				return "", 0, false, fmt.Errorf("division by zero")
			}

			locals[instr.Result] = locals[instr.LHS] / divisor
		case ir.OpRem:
			divisor := operand(locals, instr.RHS)
			if divisor == 0 {
				return "", 0, false, fmt.Errorf("division by zero")
			}

			locals[instr.Result] = locals[instr.LHS] % divisor
		case ir.OpICmp:
			locals[instr.Result] = boolToInt(compare(instr.Predicate, locals[instr.LHS], operand(locals, instr.RHS)))
		case ir.OpLoad:
			locals[instr.Result] = locals[instr.LHS]
		case ir.OpStore:
			locals[instr.LHS] = operand(locals, instr.RHS)
		case ir.OpCall:
			calleeArgs := make([]int64, len(instr.Args))
			for i, a := range instr.Args {
				calleeArgs[i] = operand(locals, a)
			}

			result, callErr := interpretFunction(img, instr.Callee, calleeArgs)
			if callErr != nil {
				return "", 0, false, callErr
			}

			if instr.Result != "" {
				locals[instr.Result] = result
			}
		case ir.OpBr:
			targetBlockName = instr.Targets[0]
		case ir.OpCondBr:
			if locals[instr.Cond] != 0 {
				targetBlockName = instr.Targets[0]
			} else {
				targetBlockName = instr.Targets[1]
			}
		case ir.OpRet:
			return "", operand(locals, instr.LHS), true, nil
		default:
			return "", 0, false, fmt.Errorf("unsupported opcode %s", instr.Opcode)
		}
	}

	if targetBlockName == "" {
		return "", 0, false, fmt.Errorf("basic block fell through without a terminator")
	}

	return targetBlockName, 0, false, nil
}

func operand(locals map[string]int64, name string) int64 {
	if v, ok := locals[name]; ok {
		return v
	}

	return 0
}

func compare(pred ir.Predicate, lhs, rhs int64) bool {
	switch pred {
	case ir.PredLT:
		return lhs < rhs
	case ir.PredLE:
		return lhs <= rhs
	case ir.PredGT:
		return lhs > rhs
	case ir.PredGE:
		return lhs >= rhs
	case ir.PredEQ:
		return lhs == rhs
	case ir.PredNE:
		return lhs != rhs
	default:
		return false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

package domain

import (
	"strings"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// TestFinder discovers Tests by a function naming convention and walks the
// call graph from each Test to its Testees.
type TestFinder struct {
	store *Store
}

// NewTestFinder constructs a TestFinder reading from store.
func NewTestFinder(store *Store) *TestFinder {
	return &TestFinder{store: store}
}

// FindTests returns every function recognised as a test entry point, in a
// stable order: module load order, then function declaration order within
// the module. A function named with a "test_" prefix is TestKindSimple; a
// function named with a "Test" prefix is TestKindXUnit.
func (f *TestFinder) FindTests() []model.Test {
	var tests []model.Test

	for _, mod := range f.store.IterAll() {
		for _, fn := range mod.Functions {
			kind, ok := classify(fn.Name)
			if !ok {
				continue
			}

			tests = append(tests, model.Test{
				Name:         fn.Name,
				ModuleHandle: mod.Handle,
				Function:     fn,
				Kind:         kind,
			})
		}
	}

	return tests
}

func classify(name string) (model.TestKind, bool) {
	switch {
	case strings.HasPrefix(name, "test_"):
		return model.TestKindSimple, true
	case strings.HasPrefix(name, "Test"):
		return model.TestKindXUnit, true
	default:
		return 0, false
	}
}

// FindTestees returns every function reachable from test's entry function
// by direct calls, in deterministic preorder discovery order, excluding
// the test function itself. Calls that cannot be resolved to a known
// function — an external symbol, or a typo — are skipped silently rather
// than treated as an error: an unresolved callee carries no mutable IR to
// mutate. Indirect calls are not represented in the IR and so are never
// followed.
func (f *TestFinder) FindTestees(test model.Test) []model.Testee {
	index := f.functionIndex()

	visited := map[string]bool{test.Function.Name: true}

	var order []model.Testee

	var walk func(fn *ir.Function)
	walk = func(fn *ir.Function) {
		for _, instr := range fn.Instructions() {
			if instr.Opcode != ir.OpCall {
				continue
			}

			if visited[instr.Callee] {
				continue
			}

			visited[instr.Callee] = true

			entry, ok := index[instr.Callee]
			if !ok {
				continue
			}

			order = append(order, model.Testee{ModuleHandle: entry.handle, Function: entry.fn})
			walk(entry.fn)
		}
	}

	walk(test.Function)

	return order
}

type functionEntry struct {
	handle ir.ModuleHandle
	fn     *ir.Function
}

// functionIndex builds a name -> definition map across every loaded
// module. Mull's call graph traversal resolves a callee by looking it up
// in the whole program's symbol table, not just the caller's own module;
// this mirrors that by indexing globally.
func (f *TestFinder) functionIndex() map[string]functionEntry {
	index := make(map[string]functionEntry)

	for _, mod := range f.store.IterAll() {
		for _, fn := range mod.Functions {
			index[fn.Name] = functionEntry{handle: mod.Handle, fn: fn}
		}
	}

	return index
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/adapter"
	"crucible.dev/pkg/crucible/internal/ir"
)

func TestStoreLoadAssignsStableHandles(t *testing.T) {
	loader := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{
		"a": {SourceFile: "a.c", Functions: []*ir.Function{{Name: "a_fn"}}},
		"b": {SourceFile: "b.c", Functions: []*ir.Function{{Name: "b_fn"}}},
	})

	store := NewStore(loader)

	h1, err := store.Load("a")
	require.NoError(t, err)
	require.Equal(t, ir.ModuleHandle(0), h1)

	h2, err := store.Load("b")
	require.NoError(t, err)
	require.Equal(t, ir.ModuleHandle(1), h2)

	mod, ok := store.Get(h2)
	require.True(t, ok)
	require.Equal(t, "b.c", mod.SourceFile)
	require.Equal(t, h2, mod.Functions[0].Parent)

	require.Len(t, store.IterAll(), 2)

	_, ok = store.Get(99)
	require.False(t, ok)
}

func TestStoreLoadUnknownPathReturnsLoadError(t *testing.T) {
	loader := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{})
	store := NewStore(loader)

	_, err := store.Load("missing")
	require.Error(t, err)
}

func TestStoreCompileBaselinesUsesCache(t *testing.T) {
	mod := &ir.Module{SourceFile: "a.c", Functions: []*ir.Function{{
		Name:  "f",
		Entry: "b",
		Blocks: []*ir.BasicBlock{{Name: "b", Instructions: []*ir.Instruction{
			{Opcode: ir.OpConst, Result: "r", Const: 1},
			{Opcode: ir.OpRet, LHS: "r"},
		}}},
	}}}

	loader := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{"a": mod})
	store := NewStore(loader)

	handle, err := store.Load("a")
	require.NoError(t, err)

	compiler := adapter.NewNativeCompiler()
	cache, err := adapter.NewDiskObjectCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.CompileBaselines(compiler, cache))

	obj, ok := store.Baseline(handle)
	require.True(t, ok)
	require.NotEmpty(t, obj.SourceHash)

	// A second store over the same cache directory should hit the cache
	// rather than recompiling.
	loader2 := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{"a": mod})
	store2 := NewStore(loader2)
	handle2, err := store2.Load("a")
	require.NoError(t, err)
	require.NoError(t, store2.CompileBaselines(compiler, cache))

	obj2, ok := store2.Baseline(handle2)
	require.True(t, ok)
	require.Equal(t, obj.SourceHash, obj2.SourceHash)
}

func TestStoreForkDeepCopiesModules(t *testing.T) {
	mod := &ir.Module{SourceFile: "a.c", Functions: []*ir.Function{{
		Name:  "f",
		Entry: "b",
		Blocks: []*ir.BasicBlock{{Name: "b", Instructions: []*ir.Instruction{
			{Opcode: ir.OpConst, Result: "r", Const: 1},
		}}},
	}}}

	loader := adapter.NewInMemoryModuleLoader(map[string]*ir.Module{"a": mod})
	store := NewStore(loader)
	_, err := store.Load("a")
	require.NoError(t, err)

	fork := store.Fork()
	fork.modules[0].Functions[0].Blocks[0].Instructions[0].Const = 42

	original, _ := store.Get(0)
	require.Equal(t, int64(1), original.Functions[0].Blocks[0].Instructions[0].Const)
}

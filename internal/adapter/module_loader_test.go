package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/ir"
)

func writeModule(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestTextModuleLoaderParsesFunctionsAndBlocks(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "a.ir", `
module a
source "a.c"

func add(x, y) entry=body {
block body:
  r = add x y @a.c:3:5
  ret r
}

func max(x, y) entry=entry {
block entry:
  c = icmp < x y
  condbr c lt ge
block lt:
  ret y
block ge:
  ret x
}
`)

	loader := NewTextModuleLoader()

	mod, err := loader.LoadModuleAtPath(path)
	require.NoError(t, err)
	require.Equal(t, "a.c", mod.SourceFile)
	require.Len(t, mod.Functions, 2)

	add := mod.Function("add")
	require.NotNil(t, add)
	require.Equal(t, []string{"x", "y"}, add.Params)

	body := add.Block("body")
	require.NotNil(t, body)
	require.Len(t, body.Instructions, 2)
	require.Equal(t, ir.OpAdd, body.Instructions[0].Opcode)
	require.Equal(t, "a.c", body.Instructions[0].Loc.Path)
	require.Equal(t, 3, body.Instructions[0].Loc.Line)

	max := mod.Function("max")
	require.NotNil(t, max)
	require.Len(t, max.Blocks, 3)
	require.Equal(t, ir.OpICmp, max.Block("entry").Instructions[0].Opcode)
	require.Equal(t, ir.PredLT, max.Block("entry").Instructions[0].Predicate)
}

func TestTextModuleLoaderMissingFileIsLoadError(t *testing.T) {
	loader := NewTextModuleLoader()

	_, err := loader.LoadModuleAtPath(filepath.Join(t.TempDir(), "missing.ir"))
	require.Error(t, err)
}

func TestInMemoryModuleLoaderReturnsClone(t *testing.T) {
	mod := &ir.Module{SourceFile: "x.c"}
	loader := NewInMemoryModuleLoader(map[string]*ir.Module{"x": mod})

	got, err := loader.LoadModuleAtPath("x")
	require.NoError(t, err)
	require.Equal(t, "x.c", got.SourceFile)
	require.NotSame(t, mod, got)

	_, err = loader.LoadModuleAtPath("missing")
	require.Error(t, err)
}

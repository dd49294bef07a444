package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

func TestDiskObjectCachePutGetRoundTrip(t *testing.T) {
	cache, err := NewDiskObjectCache(t.TempDir())
	require.NoError(t, err)

	obj := &model.Object{
		SourceHash: "deadbeef",
		Functions: map[string]*model.FunctionBody{
			"f": {Entry: "b", Blocks: map[string][]*ir.Instruction{}},
		},
	}

	_, ok := cache.Get("deadbeef")
	require.False(t, ok)

	require.NoError(t, cache.Put("deadbeef", obj))

	got, ok := cache.Get("deadbeef")
	require.True(t, ok)
	require.Equal(t, obj.SourceHash, got.SourceHash)
}

func TestDiskObjectCacheSurvivesColdLookup(t *testing.T) {
	dir := t.TempDir()

	cache1, err := NewDiskObjectCache(dir)
	require.NoError(t, err)

	obj := &model.Object{SourceHash: "abc", Functions: map[string]*model.FunctionBody{}}
	require.NoError(t, cache1.Put("abc", obj))

	// A fresh cache instance over the same directory, simulating a new
	// process picking up a previous run's cached baselines.
	cache2, err := NewDiskObjectCache(dir)
	require.NoError(t, err)

	got, ok := cache2.Get("abc")
	require.True(t, ok)
	require.Equal(t, "abc", got.SourceHash)
}

func TestNoopObjectCacheNeverHits(t *testing.T) {
	var cache NoopObjectCache

	require.NoError(t, cache.Put("k", &model.Object{}))

	_, ok := cache.Get("k")
	require.False(t, ok)
}

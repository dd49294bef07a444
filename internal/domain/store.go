// Package domain implements the core mutation pipeline: the Module Store,
// Test Finder, Pipeline Driver and mutation score aggregation described by
// the design. Every external collaborator — module loading, compilation,
// linking, test execution, junk detection — is consumed through the
// interface types the adapter package declares, never implemented here.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"crucible.dev/pkg/crucible/internal/adapter"
	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// Store is the Module Store: an append-only collection of loaded Modules,
// each addressed by a stable ModuleHandle, plus the baseline Object cache
// for every loaded Module.
//
// Store is safe for concurrent reads. Load is expected to run sequentially
// during startup, before any pipeline worker begins reading.
type Store struct {
	loader adapter.ModuleLoader

	mu        sync.RWMutex
	modules   []*ir.Module
	baselines map[ir.ModuleHandle]*model.Object
}

// NewStore constructs an empty Store backed by loader.
func NewStore(loader adapter.ModuleLoader) *Store {
	return &Store{
		loader:    loader,
		baselines: make(map[ir.ModuleHandle]*model.Object),
	}
}

// Load reads the module at path through the Store's loader, assigns it the
// next ModuleHandle, and appends it to the store.
func (s *Store) Load(path string) (ir.ModuleHandle, error) {
	mod, err := s.loader.LoadModuleAtPath(path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	handle := ir.ModuleHandle(len(s.modules))
	mod.Handle = handle

	for _, fn := range mod.Functions {
		fn.Parent = handle
	}

	s.modules = append(s.modules, mod)

	return handle, nil
}

// Get returns the Module for handle.
func (s *Store) Get(handle ir.ModuleHandle) (*ir.Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(handle) < 0 || int(handle) >= len(s.modules) {
		return nil, false
	}

	return s.modules[handle], true
}

// IterAll returns every loaded Module, in load order.
func (s *Store) IterAll() []*ir.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ir.Module, len(s.modules))
	copy(out, s.modules)

	return out
}

// CloneModule returns a deep copy of the Module at handle, for a pipeline
// worker to mutate without disturbing the shared Store or any other
// worker's copy.
func (s *Store) CloneModule(handle ir.ModuleHandle) (*ir.Module, error) {
	mod, ok := s.Get(handle)
	if !ok {
		return nil, fmt.Errorf("no module with handle %d", handle)
	}

	return mod.Clone(), nil
}

// CompileBaselines compiles every loaded Module into its baseline Object,
// consulting cache first so an unchanged module does not pay compilation
// cost twice across runs. The cache key is a content hash of the
// unmutated Module's IR, so a module whose source has not changed since
// the last run is always a cache hit regardless of its path.
func (s *Store) CompileBaselines(compiler adapter.Compiler, cache adapter.ObjectCache) error {
	for _, mod := range s.IterAll() {
		key, err := moduleContentHash(mod)
		if err != nil {
			return &model.BaselineCompileError{Module: mod.SourceFile, Err: err}
		}

		if obj, ok := cache.Get(key); ok {
			s.setBaseline(mod.Handle, obj)
			continue
		}

		obj, err := compiler.Compile(mod)
		if err != nil {
			return &model.BaselineCompileError{Module: mod.SourceFile, Err: err}
		}

		if err := cache.Put(key, obj); err != nil {
			return &model.BaselineCompileError{Module: mod.SourceFile, Err: err}
		}

		s.setBaseline(mod.Handle, obj)
	}

	return nil
}

// Baseline returns the cached baseline Object for handle, if
// CompileBaselines has already run.
func (s *Store) Baseline(handle ir.ModuleHandle) (*model.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.baselines[handle]

	return obj, ok
}

// Baselines returns every baseline Object compiled so far, in no
// particular order, for callers (such as the Linker) that need the full
// "all modules" side of an all-but-one object set.
func (s *Store) Baselines() []*model.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Object, 0, len(s.baselines))
	for _, obj := range s.baselines {
		out = append(out, obj)
	}

	return out
}

// Fork returns a new Store whose IR modules are deep copies of this
// Store's, safe for a pipeline worker to mutate independently. The
// baseline Object cache is shared rather than copied: baselines are never
// mutated after CompileBaselines runs, so read-only sharing across workers
// is safe and avoids recompiling every module per worker.
func (s *Store) Fork() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fork := &Store{loader: s.loader, baselines: s.baselines, modules: make([]*ir.Module, len(s.modules))}
	for i, mod := range s.modules {
		fork.modules[i] = mod.Clone()
	}

	return fork
}

func (s *Store) setBaseline(handle ir.ModuleHandle, obj *model.Object) {
	s.mu.Lock()
	s.baselines[handle] = obj
	s.mu.Unlock()
}

func moduleContentHash(mod *ir.Module) (string, error) {
	buf, err := msgpack.Marshal(mod)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(buf)

	return hex.EncodeToString(sum[:]), nil
}

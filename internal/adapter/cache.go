package adapter

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"crucible.dev/pkg/crucible/internal/model"
)

// ObjectCache persists baseline Objects across runs, keyed by content
// hash. Mutant objects are never written here: only a Module's baseline
// (unmutated) compilation is worth reusing between invocations.
type ObjectCache interface {
	Get(key string) (*model.Object, bool)
	Put(key string, obj *model.Object) error
}

// DiskObjectCache stores each baseline Object as its own msgpack-encoded
// file under a directory, written via a temp-file-then-rename so a reader
// never observes a partially written entry.
type DiskObjectCache struct {
	dir string

	mu  sync.RWMutex
	hot map[string]*model.Object
}

// NewDiskObjectCache constructs a cache rooted at dir, creating it if
// necessary.
func NewDiskObjectCache(dir string) (*DiskObjectCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &DiskObjectCache{dir: dir, hot: make(map[string]*model.Object)}, nil
}

func (c *DiskObjectCache) Get(key string) (*model.Object, bool) {
	c.mu.RLock()
	if obj, ok := c.hot[key]; ok {
		c.mu.RUnlock()
		return obj, true
	}
	c.mu.RUnlock()

	buf, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, false
	}

	var obj model.Object
	if err := msgpack.Unmarshal(buf, &obj); err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.hot[key] = &obj
	c.mu.Unlock()

	return &obj, true
}

func (c *DiskObjectCache) Put(key string, obj *model.Object) error {
	buf, err := msgpack.Marshal(obj)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "obj-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	c.mu.Lock()
	c.hot[key] = obj
	c.mu.Unlock()

	return nil
}

func (c *DiskObjectCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".obj")
}

// NoopObjectCache never hits, for runs with caching disabled (NoCache).
type NoopObjectCache struct{}

func (NoopObjectCache) Get(string) (*model.Object, bool) { return nil, false }
func (NoopObjectCache) Put(string, *model.Object) error  { return nil }

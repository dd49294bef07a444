// Package pkg holds small, reusable building blocks with no dependency on
// the rest of the project.
package pkg

import (
	"encoding/gob"
	"os"
	"sync"
)

// FileSpill is a mutex-guarded, append-only sequence of gob-encoded values
// backed by a temp file rather than an in-memory slice. It exists for runs
// with a test suite large enough that holding every TestResult in memory
// at once would be wasteful: results are appended to disk as they
// complete and read back once, in order, when the run finishes.
type FileSpill[T any] struct {
	mu  sync.Mutex
	f   *os.File
	enc *gob.Encoder
	n   int
}

// NewFileSpill creates a FileSpill backed by a new temp file in dir (the
// system default temp directory if dir is empty).
func NewFileSpill[T any](dir string) (*FileSpill[T], error) {
	f, err := os.CreateTemp(dir, "spill-*.gob")
	if err != nil {
		return nil, err
	}

	return &FileSpill[T]{f: f, enc: gob.NewEncoder(f)}, nil
}

// Append encodes v and writes it to the spill file.
func (s *FileSpill[T]) Append(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(v); err != nil {
		return err
	}

	s.n++

	return nil
}

// Len returns the number of values appended so far.
func (s *FileSpill[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.n
}

// All rewinds the spill file and decodes every appended value, in append
// order.
func (s *FileSpill[T]) All() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.Seek(0, 0); err != nil {
		return nil, err
	}

	dec := gob.NewDecoder(s.f)

	out := make([]T, 0, s.n)

	for {
		var v T

		if err := dec.Decode(&v); err != nil {
			break
		}

		out = append(out, v)
	}

	if _, err := s.f.Seek(0, 2); err != nil {
		return nil, err
	}

	return out, nil
}

// Close removes the backing temp file.
func (s *FileSpill[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.f.Name()
	_ = s.f.Close()

	return os.Remove(path)
}

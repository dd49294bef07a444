// Package model holds the plain data records the mutation pipeline passes
// between components: configuration, object/test/result types, and the
// typed error taxonomy described by the error handling design.
package model

import "fmt"

// ConfigError wraps a malformed input configuration. Fatal before a run
// starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// LoadError wraps an IR parse failure. Fatal for the affected module.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load module %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// BaselineCompileError wraps a Compiler rejection of unmodified IR. Fatal.
type BaselineCompileError struct {
	Module string
	Err    error
}

func (e *BaselineCompileError) Error() string {
	return fmt.Sprintf("baseline compile of %s failed: %v", e.Module, e.Err)
}

func (e *BaselineCompileError) Unwrap() error { return e.Err }

// MutantCompileError wraps a Compiler rejection of mutated IR. Recorded
// locally as an Invalid execution result; the pipeline continues.
type MutantCompileError struct {
	Module string
	Err    error
}

func (e *MutantCompileError) Error() string {
	return fmt.Sprintf("mutant compile of %s failed: %v", e.Module, e.Err)
}

func (e *MutantCompileError) Unwrap() error { return e.Err }

// RunnerError wraps a link/invoke/crash/timeout failure from the Test
// Runner. Recorded locally; the pipeline continues.
type RunnerError struct {
	Test string
	Err  error
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("runner failed for test %s: %v", e.Test, e.Err)
}

func (e *RunnerError) Unwrap() error { return e.Err }

// JunkDetectorError wraps an AST load or source lookup failure. The point
// is treated as not-junk and the pipeline proceeds.
type JunkDetectorError struct {
	Path string
	Err  error
}

func (e *JunkDetectorError) Error() string {
	return fmt.Sprintf("junk detector failed for %s: %v", e.Path, e.Err)
}

func (e *JunkDetectorError) Unwrap() error { return e.Err }

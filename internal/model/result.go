package model

import (
	"fmt"

	"crucible.dev/pkg/crucible/internal/ir"
)

// ExecutionStatus is the outcome of one Test Runner invocation.
type ExecutionStatus int

const (
	// Invalid denotes a runner-level error: link failure, crash, timeout,
	// or any outcome before a real pass/fail result could be determined.
	Invalid ExecutionStatus = iota
	Passed
	Failed
)

func (s ExecutionStatus) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the status as its lowercase name rather than an
// integer, matching the §6 result output shape.
func (s ExecutionStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML parses the lowercase name produced by MarshalYAML back
// into an ExecutionStatus.
func (s *ExecutionStatus) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	switch name {
	case "invalid":
		*s = Invalid
	case "passed":
		*s = Passed
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("model: unknown ExecutionStatus %q", name)
	}

	return nil
}

// ExecutionResult is the status plus timing of one Test Runner invocation.
type ExecutionResult struct {
	Status          ExecutionStatus `yaml:"status"`
	RunningTimeNanos int64          `yaml:"time_ns"`
}

// Location renders a §6 result-output location: {path, line, column} or
// null when the point carries no debug info.
type Location struct {
	Path   string `yaml:"path"`
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
}

// LocationFrom converts an ir.SourceLocation into the YAML-friendly shape,
// returning nil when the location is null.
func LocationFrom(loc *ir.SourceLocation) *Location {
	if loc.IsNull() {
		return nil
	}

	return &Location{Path: loc.Path, Line: loc.Line, Column: loc.Column}
}

// MutationOutcome is one entry in a Test Result's mutants list: the
// operator kind, its source location, and the execution result of running
// the test against that mutant.
type MutationOutcome struct {
	Operator ir.OperatorKind `yaml:"operator"`
	Location *Location       `yaml:"location"`
	Result   ExecutionResult `yaml:"result"`
}

// TestResult is a Test, the baseline Execution Result for that test, and
// an ordered collection of MutationOutcomes — one per surviving (non-junk)
// mutation point considered for that test.
type TestResult struct {
	Name     string             `yaml:"test"`
	Baseline ExecutionResult    `yaml:"baseline"`
	Mutants  []MutationOutcome  `yaml:"mutants"`
}

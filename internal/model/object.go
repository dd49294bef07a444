package model

import "crucible.dev/pkg/crucible/internal/ir"

// FunctionBody is the compiled form of one IR function: everything the
// interpreter needs to execute it without going back to the IR graph.
type FunctionBody struct {
	Entry  string
	Params []string
	Blocks map[string][]*ir.Instruction
}

// Object is the native-code compilation of one Module at one point in
// time. Cached entries are baselines (no mutation active); recompilation
// after a mutation yields a transient Object that is never cached.
type Object struct {
	ModuleHandle ir.ModuleHandle
	SourceHash   string
	Functions    map[string]*FunctionBody
}

// Symbol looks up a compiled function body by name.
func (o *Object) Symbol(name string) (*FunctionBody, bool) {
	body, ok := o.Functions[name]
	return body, ok
}

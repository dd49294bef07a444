// Package adapter contains the concrete implementations of every external
// collaborator the core mutation pipeline depends on: module loading,
// compilation, linking/execution, junk detection, configuration, caching
// and result/progress reporting. The domain package only ever sees the
// interface types declared here.
package adapter

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// ModuleLoader is the sole I/O boundary for IR. The core never opens files
// itself, and tests inject InMemoryModuleLoader to drive scenarios without
// touching the filesystem.
type ModuleLoader interface {
	LoadModuleAtPath(path string) (*ir.Module, error)
}

// InMemoryModuleLoader returns modules from a caller-supplied map. It
// exists so the pipeline can be exercised end to end without any real
// bitcode on disk, exactly as the "Pluggable Module Loader" design note
// requires.
type InMemoryModuleLoader struct {
	Modules map[string]*ir.Module
}

// NewInMemoryModuleLoader constructs a loader backed by the given map.
func NewInMemoryModuleLoader(modules map[string]*ir.Module) *InMemoryModuleLoader {
	return &InMemoryModuleLoader{Modules: modules}
}

func (l *InMemoryModuleLoader) LoadModuleAtPath(path string) (*ir.Module, error) {
	mod, ok := l.Modules[path]
	if !ok {
		return nil, &model.LoadError{Path: path, Err: fmt.Errorf("no module registered for path")}
	}

	return mod.Clone(), nil
}

// TextModuleLoader parses the project's small, line-oriented textual IR
// dialect from disk — the stand-in for "precompiled bitcode modules" this
// dependency pack has no LLVM binding to parse for real. See
// testdata/*.ir for examples of the grammar.
type TextModuleLoader struct{}

// NewTextModuleLoader constructs a TextModuleLoader.
func NewTextModuleLoader() *TextModuleLoader {
	return &TextModuleLoader{}
}

func (l *TextModuleLoader) LoadModuleAtPath(path string) (*ir.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	mod, err := parseModule(path, f)
	if err != nil {
		return nil, &model.LoadError{Path: path, Err: err}
	}

	return mod, nil
}

// parseModule implements a minimal recursive-descent scan of the textual
// IR grammar:
//
//	module <name>
//	source "<path>"
//	func <name>(<params...>) entry=<block> {
//	block <name>:
//	  <result> = add|sub|mul|quo|rem <lhs> <rhs> [@file:line:col]
//	  <result> = icmp <pred> <lhs> <rhs> [@file:line:col]
//	  <result> = const <int>
//	  <result> = call <callee>(<args...>)
//	  br <block>
//	  condbr <cond> <trueBlock> <falseBlock>
//	  ret <value>
//	}
func parseModule(path string, r *os.File) (*ir.Module, error) {
	scanner := bufio.NewScanner(r)

	mod := &ir.Module{}

	var fn *ir.Function
	var block *ir.BasicBlock
	instrID := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "module "):
			// module name is informational only.
		case strings.HasPrefix(line, "source "):
			mod.SourceFile = strings.Trim(strings.TrimPrefix(line, "source "), `"`)
		case strings.HasPrefix(line, "func "):
			fn = parseFuncHeader(line)
			mod.Functions = append(mod.Functions, fn)
			instrID = 0
		case strings.HasPrefix(line, "block "):
			name := strings.TrimSuffix(strings.TrimPrefix(line, "block "), ":")
			block = &ir.BasicBlock{Name: name}
			fn.Blocks = append(fn.Blocks, block)
		case line == "}":
			fn = nil
			block = nil
		default:
			if fn == nil || block == nil {
				return nil, fmt.Errorf("instruction %q outside of a function block", line)
			}

			instr, err := parseInstruction(line)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}

			instr.ID = instrID
			instrID++
			block.Instructions = append(block.Instructions, instr)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mod, nil
}

func parseFuncHeader(line string) *ir.Function {
	// func name(params) entry=blockname {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "func "), "{")
	body = strings.TrimSpace(body)

	nameEnd := strings.IndexByte(body, '(')
	name := body
	entry := ""
	var params []string

	if nameEnd >= 0 {
		name = body[:nameEnd]

		rest := body[nameEnd:]
		if idx := strings.Index(rest, "entry="); idx >= 0 {
			entry = strings.TrimSpace(rest[idx+len("entry="):])
		}

		if closeIdx := strings.IndexByte(rest, ')'); closeIdx >= 0 {
			paramsStr := strings.TrimSpace(rest[1:closeIdx])
			if paramsStr != "" {
				for _, p := range strings.Split(paramsStr, ",") {
					params = append(params, strings.TrimSpace(p))
				}
			}
		}
	}

	return &ir.Function{Name: strings.TrimSpace(name), Entry: entry, Params: params}
}

func parseInstruction(line string) (*ir.Instruction, error) {
	var locSuffix string
	if idx := strings.Index(line, "@"); idx >= 0 {
		locSuffix = line[idx+1:]
		line = strings.TrimSpace(line[:idx])
	}

	instr := &ir.Instruction{}

	if locSuffix != "" {
		loc, err := parseLocation(locSuffix)
		if err != nil {
			return nil, err
		}

		instr.Loc = loc
	}

	if result, rhs, ok := strings.Cut(line, " = "); ok {
		instr.Result = strings.TrimSpace(result)
		return parseValueInstruction(instr, strings.TrimSpace(rhs))
	}

	return parseVoidInstruction(instr, line)
}

func parseLocation(s string) (*ir.SourceLocation, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed source location %q", s)
	}

	line, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed source location %q: %w", s, err)
	}

	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("malformed source location %q: %w", s, err)
	}

	return &ir.SourceLocation{Path: parts[0], Line: line, Column: col}, nil
}

func parseValueInstruction(instr *ir.Instruction, rhs string) (*ir.Instruction, error) {
	fields := strings.Fields(rhs)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction body")
	}

	switch fields[0] {
	case "add":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpAdd, fields[1], fields[2]
	case "sub":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpSub, fields[1], fields[2]
	case "mul":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpMul, fields[1], fields[2]
	case "quo":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpQuo, fields[1], fields[2]
	case "rem":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpRem, fields[1], fields[2]
	case "icmp":
		pred, err := parsePredicate(fields[1])
		if err != nil {
			return nil, err
		}

		instr.Opcode, instr.Predicate, instr.LHS, instr.RHS = ir.OpICmp, pred, fields[2], fields[3]
	case "const":
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed const %q: %w", rhs, err)
		}

		instr.Opcode, instr.Const = ir.OpConst, v
	case "load":
		instr.Opcode, instr.LHS = ir.OpLoad, fields[1]
	case "call":
		return parseCall(instr, strings.Join(fields[1:], " "))
	default:
		return nil, fmt.Errorf("unknown value instruction %q", rhs)
	}

	return instr, nil
}

func parseCall(instr *ir.Instruction, rest string) (*ir.Instruction, error) {
	open := strings.IndexByte(rest, '(')
	close := strings.LastIndexByte(rest, ')')

	if open < 0 || close < open {
		return nil, fmt.Errorf("malformed call %q", rest)
	}

	instr.Opcode = ir.OpCall
	instr.Callee = strings.TrimSpace(rest[:open])

	argsStr := strings.TrimSpace(rest[open+1 : close])
	if argsStr != "" {
		for _, a := range strings.Split(argsStr, ",") {
			instr.Args = append(instr.Args, strings.TrimSpace(a))
		}
	}

	return instr, nil
}

func parseVoidInstruction(instr *ir.Instruction, line string) (*ir.Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction")
	}

	switch fields[0] {
	case "store":
		instr.Opcode, instr.LHS, instr.RHS = ir.OpStore, fields[1], fields[2]
	case "br":
		instr.Opcode, instr.Targets = ir.OpBr, []string{fields[1]}
	case "condbr":
		instr.Opcode, instr.Cond, instr.Targets = ir.OpCondBr, fields[1], []string{fields[2], fields[3]}
	case "ret":
		instr.Opcode = ir.OpRet
		if len(fields) > 1 {
			instr.LHS = fields[1]
		}
	case "call":
		return parseCall(instr, strings.Join(fields[1:], " "))
	default:
		return nil, fmt.Errorf("unknown instruction %q", line)
	}

	return instr, nil
}

func parsePredicate(s string) (ir.Predicate, error) {
	switch s {
	case "<":
		return ir.PredLT, nil
	case "<=":
		return ir.PredLE, nil
	case ">":
		return ir.PredGT, nil
	case ">=":
		return ir.PredGE, nil
	case "==":
		return ir.PredEQ, nil
	case "!=":
		return ir.PredNE, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q", s)
	}
}

package adapter

import (
	"context"
	"os"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// JunkDetector decides whether a mutation point is "junk": a syntactic
// position the operator can mutate but whose source context makes the
// resulting mutant behaviorally indistinguishable from the original, or
// otherwise not worth spending a test run on.
type JunkDetector interface {
	IsJunk(point *ir.MutationPoint) (bool, error)
}

// CXXJunkDetector parses the C++ translation unit a mutation point's debug
// location points into with tree-sitter and asks, for the operator kind at
// hand, whether the enclosing syntax makes the mutation pointless.
//
// This stands in for a libclang AST frontend: the dependency pack carries
// no cgo libclang binding, so the syntax tree here is produced by
// tree-sitter's C++ grammar instead. CXXCompilationDBDir and
// CXXCompilationFlags are accepted on Config for interface parity with a
// real Clang-based detector but are inert here — tree-sitter parses
// grammar, not preprocessed translation units, so no compilation flags are
// needed to produce a tree.
type CXXJunkDetector struct {
	parser *sitter.Parser

	mu    sync.Mutex
	trees map[string]*sitter.Tree
	srcs  map[string][]byte
}

// NewCXXJunkDetector constructs a detector backed by tree-sitter's C++
// grammar. Parsed trees are cached per source path, mirroring the
// original detector's two-phase-locked AST cache: a read finds a hit, or
// the caller parses and installs it for everyone after.
func NewCXXJunkDetector() *CXXJunkDetector {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())

	return &CXXJunkDetector{
		parser: parser,
		trees:  make(map[string]*sitter.Tree),
		srcs:   make(map[string][]byte),
	}
}

func (d *CXXJunkDetector) IsJunk(point *ir.MutationPoint) (bool, error) {
	if point.Loc == nil {
		// No source location to judge against: always junk.
		return true, nil
	}

	tree, src, err := d.parseCached(point.Loc.Path)
	if err != nil {
		return false, &model.JunkDetectorError{Path: point.Loc.Path, Err: err}
	}

	switch point.Operator {
	case ir.ConditionalsBoundary:
		return findOperatorNode(tree.RootNode(), point.Loc, src, isRelationalOperator) == nil, nil
	case ir.MathAdd:
		return findOperatorNode(tree.RootNode(), point.Loc, src, isAddOperator) == nil, nil
	case ir.MathSub:
		return findOperatorNode(tree.RootNode(), point.Loc, src, isSubOperator) == nil, nil
	default:
		return false, nil
	}
}

func (d *CXXJunkDetector) parseCached(path string) (*sitter.Tree, []byte, error) {
	d.mu.Lock()
	if tree, ok := d.trees[path]; ok {
		src := d.srcs[path]
		d.mu.Unlock()
		return tree, src, nil
	}
	d.mu.Unlock()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	tree, err := d.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, nil, err
	}

	d.mu.Lock()
	d.trees[path] = tree
	d.srcs[path] = src
	d.mu.Unlock()

	return tree, src, nil
}

// operatorPredicate reports whether n is the operator-appropriate construct
// a mutation operator searches for: a relational binary_expression for
// ConditionalsBoundary, a +/+=/++ node for MathAdd, a -/-=/-- node for
// MathSub.
type operatorPredicate func(n *sitter.Node, src []byte) bool

// findOperatorNode searches the tree for the smallest node overlapping loc
// for which pred holds, resolving ties to the first encountered. Returns
// nil if no matching node exists at that location.
func findOperatorNode(root *sitter.Node, loc *ir.SourceLocation, src []byte, pred operatorPredicate) *sitter.Node {
	target := sitter.Point{Row: uint32(loc.Line - 1), Column: uint32(loc.Column - 1)}

	var best *sitter.Node

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || !containsPoint(n, target) {
			return
		}

		if pred(n, src) && (best == nil || n.EndByte()-n.StartByte() < best.EndByte()-best.StartByte()) {
			best = n
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(root)

	return best
}

func containsPoint(n *sitter.Node, p sitter.Point) bool {
	start, end := n.StartPoint(), n.EndPoint()

	if p.Row < start.Row || p.Row > end.Row {
		return false
	}
	if p.Row == start.Row && p.Column < start.Column {
		return false
	}
	if p.Row == end.Row && p.Column > end.Column {
		return false
	}

	return true
}

func isRelationalOperator(n *sitter.Node, src []byte) bool {
	if n.Type() != "binary_expression" {
		return false
	}

	op := n.Child(1)
	if op == nil {
		return false
	}

	switch op.Content(src) {
	case "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

func isAddOperator(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "binary_expression", "assignment_expression":
		op := n.Child(1)
		if op == nil {
			return false
		}

		switch op.Content(src) {
		case "+", "+=":
			return true
		default:
			return false
		}
	case "update_expression":
		return strings.Contains(n.Content(src), "++")
	default:
		return false
	}
}

func isSubOperator(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "binary_expression", "assignment_expression":
		op := n.Child(1)
		if op == nil {
			return false
		}

		switch op.Content(src) {
		case "-", "-=":
			return true
		default:
			return false
		}
	case "update_expression":
		return strings.Contains(n.Content(src), "--")
	default:
		return false
	}
}

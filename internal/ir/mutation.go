package ir

import "fmt"

// OperatorKind identifies a Mutation Operator. The Junk Detector dispatches
// on this value to pick a source-level visitor.
type OperatorKind string

const (
	ConditionalsBoundary OperatorKind = "ConditionalsBoundary"
	MathAdd              OperatorKind = "MathAdd"
	MathSub              OperatorKind = "MathSub"
)

// snapshot captures exactly the state a MutationPoint needs to restore an
// instruction to its pre-apply form. Favour storing the opcode/predicate
// word over cloning the whole instruction, per the design notes.
type snapshot struct {
	opcode    Opcode
	predicate Predicate
}

// MutationPoint is a fully specified, reversible pending edit to a single
// instruction. Apply and Revert compose to the identity on the IR.
type MutationPoint struct {
	Operator     OperatorKind
	ModuleHandle ModuleHandle
	FunctionName string
	Instr        *Instruction
	Loc          *SourceLocation

	original snapshot
	applied  bool
}

// NewMutationPoint constructs a point targeting instr, owned by the given
// module/function, produced by operator op.
func NewMutationPoint(op OperatorKind, handle ModuleHandle, functionName string, instr *Instruction) *MutationPoint {
	return &MutationPoint{
		Operator:     op,
		ModuleHandle: handle,
		FunctionName: functionName,
		Instr:        instr,
		Loc:          instr.Loc,
	}
}

// Applied reports whether the point currently has its mutation active.
func (p *MutationPoint) Applied() bool {
	return p.applied
}

// Apply performs the operator-specific edit on the target instruction,
// recording the minimum state needed to revert. It is an error to apply an
// already-applied point.
func (p *MutationPoint) Apply() error {
	if p.applied {
		return fmt.Errorf("mutation point on %s already applied", p.Instr.Result)
	}

	p.original = snapshot{opcode: p.Instr.Opcode, predicate: p.Instr.Predicate}

	switch p.Operator {
	case ConditionalsBoundary:
		p.Instr.Predicate = boundaryFlip(p.Instr.Predicate)
	case MathAdd:
		p.Instr.Opcode = OpSub
	case MathSub:
		p.Instr.Opcode = OpAdd
	default:
		return fmt.Errorf("unknown operator kind %q", p.Operator)
	}

	p.applied = true

	return nil
}

// Revert restores the instruction to its pre-Apply state. It is a no-op
// error to revert a point that was never applied.
func (p *MutationPoint) Revert() error {
	if !p.applied {
		return fmt.Errorf("mutation point on %s was not applied", p.Instr.Result)
	}

	p.Instr.Opcode = p.original.opcode
	p.Instr.Predicate = p.original.predicate
	p.applied = false

	return nil
}

func boundaryFlip(pred Predicate) Predicate {
	switch pred {
	case PredLT:
		return PredLE
	case PredLE:
		return PredLT
	case PredGT:
		return PredGE
	case PredGE:
		return PredGT
	default:
		return pred
	}
}

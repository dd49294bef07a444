package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"crucible.dev/pkg/crucible/internal/ir"
	"crucible.dev/pkg/crucible/internal/model"
)

// Compiler produces a freshly owned native Object representing exactly the
// IR of the given Module at the moment of the call. It never mutates the
// Module, and it never shares state between successive calls — two Objects
// compiled from the same unmutated Module are identical, SourceHash
// included.
type Compiler interface {
	Compile(mod *ir.Module) (*model.Object, error)
}

// NativeCompiler "compiles" a Module by flattening each Function's blocks
// into a FunctionBody the Interpreter can walk directly. There is no real
// code generation: the IR already is the executable form, so compilation
// here copies every block's instructions into the Object and stamps it
// with a content hash (SourceHash) of the compiled Module.
type NativeCompiler struct{}

// NewNativeCompiler constructs a NativeCompiler.
func NewNativeCompiler() *NativeCompiler {
	return &NativeCompiler{}
}

func (c *NativeCompiler) Compile(mod *ir.Module) (*model.Object, error) {
	obj := &model.Object{
		ModuleHandle: mod.Handle,
		Functions:    make(map[string]*model.FunctionBody, len(mod.Functions)),
	}

	for _, fn := range mod.Functions {
		body := &model.FunctionBody{
			Entry:  fn.Entry,
			Params: append([]string(nil), fn.Params...),
			Blocks: make(map[string][]*ir.Instruction, len(fn.Blocks)),
		}

		for _, b := range fn.Blocks {
			instrs := make([]*ir.Instruction, len(b.Instructions))
			for i, instr := range b.Instructions {
				instrs[i] = instr.Clone()
			}

			body.Blocks[b.Name] = instrs
		}

		obj.Functions[fn.Name] = body
	}

	hash, err := hashObject(mod)
	if err != nil {
		return nil, fmt.Errorf("compile module %d: %w", mod.Handle, err)
	}

	obj.SourceHash = hash

	return obj, nil
}

// hashObject content-addresses an Object by msgpack-encoding the Module it
// is compiled from and taking a SHA-256 digest, the same encode-then-hash
// idiom Store.CompileBaselines uses for its cache keys. The Module is
// encoded rather than the Object because the Module holds only slices,
// while the Object's maps would encode in random iteration order.
func hashObject(mod *ir.Module) (string, error) {
	buf, err := msgpack.Marshal(mod)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(buf)

	return hex.EncodeToString(sum[:]), nil
}

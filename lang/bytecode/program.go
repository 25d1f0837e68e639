package bytecode

import (
	"fmt"

	"github.com/c0lang/c0/lang/types"
	"github.com/dolthub/swiss"
)

// Instruction is the opcode + up-to-two-operand envelope used both in
// emission and interpretation (spec.md §3). Operand y is only meaningful
// for LOADA.
type Instruction struct {
	Op Opcode
	X  int32
	Y  int32
}

// ConstKind identifies the payload type of a Constant entry.
type ConstKind uint8

const (
	ConstString ConstKind = iota // S: used for function names
	ConstInt                     // I
	ConstDouble                  // D
)

// Constant is one entry of the constants pool: a kind, its payload (exactly
// one of Str/Int/Dbl is meaningful) and its assigned index.
type Constant struct {
	Kind  ConstKind
	Str   string
	Int   int32
	Dbl   float64
	Index int32
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstString:
		return fmt.Sprintf("%d S %q", c.Index, c.Str)
	case ConstInt:
		return fmt.Sprintf("%d I %d", c.Index, c.Int)
	default:
		return fmt.Sprintf("%d D %v", c.Index, c.Dbl)
	}
}

// Function is one entry of the function table.
type Function struct {
	NameConstIndex int32
	Name           string
	FuncIndex      int32
	ReturnType     types.T
	Params         []types.T // each I/C is 1 slot, D is 2 slots
	ParamSlotCount int32
	// Level is the function's own scope level, the parameter frame being
	// level 1 (spec.md §3). It is always 1 in this implementation but is
	// kept as an explicit field, carried through to the binary format, to
	// mirror original_source/type/funciton.h's _current_level.
	Level        int32
	Instructions []Instruction
}

// Program is the analyser's output: the constants pool, the global
// initializer sequence ("start"), and the function table (spec.md §3
// "Compilation output").
//
// Constants and Functions are append-only during analysis; the dedup maps
// use a swiss.Map (via the teacher's fork, github.com/mna/swiss) for the
// same reason the teacher substitutes one for its builtin Map value: a
// flat open-addressed hash map outperforms Go's builtin map for this
// write-once/read-many lookup pattern.
type Program struct {
	Constants []Constant
	Start     []Instruction
	Functions []*Function

	// GlobalSlotCount is the number of 32-bit slots the global region
	// occupies once Start finishes executing; set by the analyser from
	// symtab.Scopes.GlobalSlotCount after compilation completes.
	GlobalSlotCount int32

	internedConsts *swiss.Map[any, int32]
	funcsByName    *swiss.Map[string, int32]
}

// NewProgram creates an empty Program ready to receive constants and
// functions from the analyser.
func NewProgram() *Program {
	return &Program{
		internedConsts: swiss.NewMap[any, int32](16),
		funcsByName:    swiss.NewMap[string, int32](8),
	}
}

// InternString returns the index of the string constant s, adding it to the
// pool if this is the first occurrence (function names and print-statement
// string arguments share this pool per spec.md §3).
func (p *Program) InternString(s string) int32 {
	return p.intern(stringKey(s), func() Constant {
		return Constant{Kind: ConstString, Str: s}
	})
}

// InternInt returns the index of the int32 constant v, interning it.
func (p *Program) InternInt(v int32) int32 {
	return p.intern(intKey(v), func() Constant {
		return Constant{Kind: ConstInt, Int: v}
	})
}

// InternDouble returns the index of the float64 constant v, interning it.
func (p *Program) InternDouble(v float64) int32 {
	return p.intern(dblKey(v), func() Constant {
		return Constant{Kind: ConstDouble, Dbl: v}
	})
}

// keys distinguish constant kinds so that e.g. the int 0 and the string "0"
// never collide in the dedup map.
type (
	stringKey string
	intKey    int32
	dblKey    float64
)

func (p *Program) intern(key any, make_ func() Constant) int32 {
	if idx, ok := p.internedConsts.Get(key); ok {
		return idx
	}
	idx := int32(len(p.Constants))
	c := make_()
	c.Index = idx
	p.Constants = append(p.Constants, c)
	p.internedConsts.Put(key, idx)
	return idx
}

// AddFunction appends fn to the function table, recording its name for
// lookup, sets fn.FuncIndex and fn.NameConstIndex, and returns the
// assigned index.
func (p *Program) AddFunction(fn *Function) int32 {
	idx := int32(len(p.Functions))
	fn.FuncIndex = idx
	fn.NameConstIndex = p.InternString(fn.Name)
	p.Functions = append(p.Functions, fn)
	p.funcsByName.Put(fn.Name, idx)
	return idx
}

// IndexFunctionNames rebuilds the name→index lookup map from the current
// contents of p.Functions. binfmt.Decode needs this: it appends decoded
// functions directly (their FuncIndex must match the file's order exactly,
// unlike AddFunction's append-and-assign), which bypasses the name
// registration AddFunction normally does.
func (p *Program) IndexFunctionNames() {
	for i, fn := range p.Functions {
		p.funcsByName.Put(fn.Name, int32(i))
	}
}

// LookupFunction resolves a function by name, used for call-site
// resolution during analysis and for locating "main" before execution.
func (p *Program) LookupFunction(name string) (*Function, bool) {
	idx, ok := p.funcsByName.Get(name)
	if !ok {
		return nil, false
	}
	return p.Functions[idx], true
}

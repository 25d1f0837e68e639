// Package bytecode defines the instruction set, constants pool and function
// table that tie the analyser to the binary encoder and the virtual
// machine (spec.md §3, components 3 and 4). The concrete opcode set is
// grounded on original_source/type/instruction.h's Operation enum;
// per-opcode doc comments follow the "one-line purpose + stack effect"
// convention of dr8co-kong/code/code.go.
package bytecode

import "fmt"

// Opcode is a single bytecode instruction mnemonic.
type Opcode uint8

//nolint:revive
const (
	// NOP does nothing.
	//
	// Stack: [] -> []
	NOP Opcode = iota

	// BIPUSH pushes its sign-extended i8 operand as an int32.
	//
	// Stack: [] -> [v]
	BIPUSH

	// IPUSH pushes its i32 operand.
	//
	// Stack: [] -> [v]
	IPUSH

	// POP discards the top slot.
	//
	// Stack: [x] -> []
	POP

	// POP2 discards the top two slots (a double).
	//
	// Stack: [lo, hi] -> []
	POP2

	// LOADC pushes the constant at the operand index: 1 slot for I, 2 for D.
	//
	// Stack: [] -> [v] or [lo, hi]
	LOADC

	// LOADA pushes the address of a variable: operand x is 1 for global, 0
	// for the current frame; operand y is the slot offset.
	//
	// Stack: [] -> [addr]
	LOADA

	// ILOAD dereferences the address on top of the stack, loading 1 slot.
	//
	// Stack: [addr] -> [v]
	ILOAD

	// DLOAD dereferences the address on top of the stack, loading 2 slots.
	//
	// Stack: [addr] -> [lo, hi]
	DLOAD

	// ISTORE pops a value and an address beneath it, storing 1 slot.
	//
	// Stack: [addr, v] -> []
	ISTORE

	// DSTORE pops a 2-slot value and an address beneath it.
	//
	// Stack: [addr, lo, hi] -> []
	DSTORE

	// CSTORE is ISTORE restricted to char-typed values (same encoding).
	//
	// Stack: [addr, v] -> []
	CSTORE

	// IADD pops two ints, pushes their sum.
	IADD
	// ISUB pops two ints, pushes the difference.
	ISUB
	// IMUL pops two ints, pushes the product.
	IMUL
	// IDIV pops two ints, pushes the quotient (DivisionByZero if the
	// divisor is 0).
	IDIV
	// INEG negates the top int in place.
	INEG
	// ICMP pops two ints a, b and pushes -1, 0 or +1 for a<b, a==b, a>b.
	ICMP

	// DADD pops two doubles, pushes their sum.
	DADD
	// DSUB pops two doubles, pushes the difference.
	DSUB
	// DMUL pops two doubles, pushes the product.
	DMUL
	// DDIV pops two doubles, pushes the quotient.
	DDIV
	// DNEG negates the top double in place.
	DNEG
	// DCMP pops two doubles a, b and pushes -1, 0 or +1 for a<b, a==b, a>b.
	DCMP

	// I2D widens the top int to a double (1 slot -> 2 slots).
	I2D
	// D2I narrows the top double to an int (2 slots -> 1 slot), truncating.
	D2I
	// I2C truncates the top int to a char's int32 range (no-op on values
	// already in range; kept distinct from I2D/D2I for symmetry with the
	// cast grammar of spec.md §4.2).
	I2C

	// JMP branches unconditionally to the absolute instruction index in
	// its operand.
	JMP
	// JE branches if the popped int is 0.
	JE
	// JNE branches if the popped int is nonzero.
	JNE
	// JL branches if the popped int is negative.
	JL
	// JLE branches if the popped int is <= 0.
	JLE
	// JG branches if the popped int is positive.
	JG
	// JGE branches if the popped int is >= 0.
	JGE

	// CALL invokes the function whose index is the operand. Arguments
	// must already be on the stack in left-to-right order.
	CALL

	// RET returns from a void function.
	RET
	// IRET returns from an int/char function; the top 1 slot is the
	// return value.
	IRET
	// DRET returns from a double function; the top 2 slots are the
	// return value.
	DRET

	// IPRINT prints the top int slot in decimal.
	IPRINT
	// DPRINT prints the top double in the platform's default fixed
	// notation (spec.md §8 scenario 4: six fractional digits).
	DPRINT
	// CPRINT prints the top int slot as a single character.
	CPRINT
	// SPRINT prints the constant-pool string whose index is the operand.
	SPRINT
	// PRINTL writes a trailing newline.
	PRINTL

	// ISCAN reads one whitespace-delimited int token from stdin.
	ISCAN
	// CSCAN reads one whitespace-delimited token from stdin and takes its
	// first byte (spec.md §9 Open Question 1, resolved in SPEC_FULL.md).
	CSCAN
	// DSCAN reads one whitespace-delimited double token from stdin.
	DSCAN

	maxOpcode
)

// operandWidths gives, for each opcode, the byte width of each of its
// operands in encoding order (empty for opcodes with no operand). LOADA is
// the only two-operand instruction (spec.md §3: "y is used only by loada").
var operandWidths = map[Opcode][]int{
	BIPUSH: {1},
	IPUSH:  {4},
	LOADC:  {2},
	LOADA:  {2, 4},
	JMP:    {2},
	JE:     {2},
	JNE:    {2},
	JL:     {2},
	JLE:    {2},
	JG:     {2},
	JGE:    {2},
	CALL:   {2},
	SPRINT: {2},
}

// IsJump reports whether op is one of the seven branch opcodes.
func IsJump(op Opcode) bool {
	switch op {
	case JMP, JE, JNE, JL, JLE, JG, JGE:
		return true
	default:
		return false
	}
}

var opcodeNames = [...]string{
	NOP: "nop", BIPUSH: "bipush", IPUSH: "ipush", POP: "pop", POP2: "pop2",
	LOADC: "loadc", LOADA: "loada", ILOAD: "iload", DLOAD: "dload",
	ISTORE: "istore", DSTORE: "dstore", CSTORE: "cstore",
	IADD: "iadd", ISUB: "isub", IMUL: "imul", IDIV: "idiv", INEG: "ineg", ICMP: "icmp",
	DADD: "dadd", DSUB: "dsub", DMUL: "dmul", DDIV: "ddiv", DNEG: "dneg", DCMP: "dcmp",
	I2D: "i2d", D2I: "d2i", I2C: "i2c",
	JMP: "jmp", JE: "je", JNE: "jne", JL: "jl", JLE: "jle", JG: "jg", JGE: "jge",
	CALL: "call", RET: "ret", IRET: "iret", DRET: "dret",
	IPRINT: "iprint", DPRINT: "dprint", CPRINT: "cprint", SPRINT: "sprint", PRINTL: "printl",
	ISCAN: "iscan", CSCAN: "cscan", DSCAN: "dscan",
}

var mnemonicToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// LookupMnemonic resolves a textual mnemonic (as used by the "-s" assembly
// listing) back to an Opcode, for tooling that round-trips the text format.
func LookupMnemonic(s string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[s]
	return op, ok
}

package binfmt

import (
	"fmt"
	"strings"

	"github.com/c0lang/c0/lang/bytecode"
)

// Disassemble renders p as the assembly-style text listing of spec.md
// §6.2: a ".constants:" section, a ".start:" section, a ".functions:"
// header section, then one ".F<idx>:" section per function body.
func Disassemble(p *bytecode.Program) string {
	var sb strings.Builder

	sb.WriteString(".constants:\n")
	for _, c := range p.Constants {
		fmt.Fprintf(&sb, "%s\n", c)
	}

	sb.WriteString(".start:\n")
	writeInstructions(&sb, p.Start)

	sb.WriteString(".functions:\n")
	for _, fn := range p.Functions {
		fmt.Fprintf(&sb, "%d %d %d %d\n", fn.FuncIndex, fn.NameConstIndex, fn.ParamSlotCount, fn.Level)
	}

	for _, fn := range p.Functions {
		fmt.Fprintf(&sb, ".F%d:\n", fn.FuncIndex)
		writeInstructions(&sb, fn.Instructions)
	}

	return sb.String()
}

func writeInstructions(sb *strings.Builder, insns []bytecode.Instruction) {
	for n, ins := range insns {
		fmt.Fprintf(sb, "%d\t%s", n, FormatInstruction(ins))
		sb.WriteByte('\n')
	}
}

// FormatInstruction renders one instruction in the text-listing mnemonic
// form of spec.md §6.2 ("<mnemonic> [operands]"), exported so
// internal/debugtui can reuse it for its step display instead of
// duplicating the per-opcode operand-count logic.
func FormatInstruction(ins bytecode.Instruction) string {
	widths := operandWidths(ins.Op)
	switch len(widths) {
	case 0:
		return ins.Op.String()
	case 1:
		return fmt.Sprintf("%s %d", ins.Op, ins.X)
	default:
		return fmt.Sprintf("%s %d, %d", ins.Op, ins.X, ins.Y)
	}
}

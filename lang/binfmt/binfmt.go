// Package binfmt implements the binary encoder/decoder and the
// assembly-style text listing for compiled C0 programs (spec.md §6.2,
// §6.3; component 6). Both directions live in one file, mirroring the
// dual text/binary responsibility of the teacher's lang/compiler/asm.go,
// built on encoding/binary exactly as the teacher is for its own (shaped
// differently) binary program format.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/c0lang/c0/lang/bytecode"
)

// Magic and Version identify the binary container (spec.md §6.3).
const (
	Magic   uint32 = 0x43303A29
	Version uint32 = 1
)

// Encode serializes p to the big-endian binary format of spec.md §6.3.
func Encode(p *bytecode.Program) []byte {
	var buf bytes.Buffer

	writeU32(&buf, Magic)
	writeU32(&buf, Version)

	writeU16(&buf, len(p.Constants))
	for _, c := range p.Constants {
		encodeConstant(&buf, c)
	}

	writeU16(&buf, len(p.Start))
	for _, ins := range p.Start {
		encodeInstruction(&buf, ins)
	}

	writeU16(&buf, len(p.Functions))
	for _, fn := range p.Functions {
		writeU16(&buf, int(fn.NameConstIndex))
		writeU16(&buf, int(fn.ParamSlotCount))
		writeU16(&buf, int(fn.Level))
		writeU16(&buf, len(fn.Instructions))
		for _, ins := range fn.Instructions {
			encodeInstruction(&buf, ins)
		}
	}

	return buf.Bytes()
}

func encodeConstant(buf *bytes.Buffer, c bytecode.Constant) {
	switch c.Kind {
	case bytecode.ConstString:
		buf.WriteByte(0)
		writeU16(buf, len(c.Str))
		buf.WriteString(c.Str)
	case bytecode.ConstInt:
		buf.WriteByte(1)
		writeU32(buf, uint32(c.Int))
	case bytecode.ConstDouble:
		buf.WriteByte(2)
		writeU64(buf, math.Float64bits(c.Dbl))
	}
}

func encodeInstruction(buf *bytes.Buffer, ins bytecode.Instruction) {
	buf.WriteByte(byte(ins.Op))
	widths := operandWidths(ins.Op)
	if len(widths) > 0 {
		writeOperand(buf, widths[0], ins.X)
	}
	if len(widths) > 1 {
		writeOperand(buf, widths[1], ins.Y)
	}
}

func writeOperand(buf *bytes.Buffer, width int, v int32) {
	switch width {
	case 1:
		buf.WriteByte(byte(v))
	case 2:
		writeU16(buf, int(uint16(v)))
	case 4:
		writeU32(buf, uint32(v))
	}
}

// Decode parses the binary format back into a Program. It returns an error
// on a bad magic/version or truncated input.
func Decode(data []byte) (*bytecode.Program, error) {
	r := bytes.NewReader(data)

	magic, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("binfmt: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("binfmt: bad magic %#x", magic)
	}
	version, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("binfmt: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("binfmt: unsupported version %d", version)
	}

	p := bytecode.NewProgram()

	nconst, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("binfmt: %w", err)
	}
	for i := 0; i < nconst; i++ {
		c, err := decodeConstant(r)
		if err != nil {
			return nil, fmt.Errorf("binfmt: constant %d: %w", i, err)
		}
		c.Index = int32(len(p.Constants))
		p.Constants = append(p.Constants, c)
	}

	nstart, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("binfmt: %w", err)
	}
	for i := 0; i < nstart; i++ {
		ins, err := decodeInstruction(r)
		if err != nil {
			return nil, fmt.Errorf("binfmt: start instruction %d: %w", i, err)
		}
		p.Start = append(p.Start, ins)
	}

	nfn, err := readU16(r)
	if err != nil {
		return nil, fmt.Errorf("binfmt: %w", err)
	}
	for i := 0; i < nfn; i++ {
		fn, err := decodeFunction(r, p, int32(i))
		if err != nil {
			return nil, fmt.Errorf("binfmt: function %d: %w", i, err)
		}
		p.Functions = append(p.Functions, fn)
	}
	// Rebuild the name lookup, which AddFunction would normally populate;
	// Decode bypasses AddFunction because function indices must match the
	// file exactly, not assignment order.
	for _, fn := range p.Functions {
		if int(fn.NameConstIndex) < len(p.Constants) {
			fn.Name = p.Constants[fn.NameConstIndex].Str
		}
	}
	p.IndexFunctionNames()
	return p, nil
}

func decodeConstant(r *bytes.Reader) (bytecode.Constant, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return bytecode.Constant{}, err
	}
	switch kind {
	case 0:
		n, err := readU16(r)
		if err != nil {
			return bytecode.Constant{}, err
		}
		buf := make([]byte, n)
		if _, err := readFull(r, buf); err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.Constant{Kind: bytecode.ConstString, Str: string(buf)}, nil
	case 1:
		v, err := readU32(r)
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.Constant{Kind: bytecode.ConstInt, Int: int32(v)}, nil
	case 2:
		v, err := readU64(r)
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.Constant{Kind: bytecode.ConstDouble, Dbl: math.Float64frombits(v)}, nil
	default:
		return bytecode.Constant{}, fmt.Errorf("unknown constant kind %d", kind)
	}
}

func decodeFunction(r *bytes.Reader, p *bytecode.Program, idx int32) (*bytecode.Function, error) {
	nameIdx, err := readU16(r)
	if err != nil {
		return nil, err
	}
	paramSlots, err := readU16(r)
	if err != nil {
		return nil, err
	}
	level, err := readU16(r)
	if err != nil {
		return nil, err
	}
	ninsn, err := readU16(r)
	if err != nil {
		return nil, err
	}
	fn := &bytecode.Function{
		NameConstIndex: int32(nameIdx),
		ParamSlotCount: int32(paramSlots),
		Level:          int32(level),
		FuncIndex:      idx,
	}
	for i := 0; i < ninsn; i++ {
		ins, err := decodeInstruction(r)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		fn.Instructions = append(fn.Instructions, ins)
	}
	return fn, nil
}

func decodeInstruction(r *bytes.Reader) (bytecode.Instruction, error) {
	opByte, err := r.ReadByte()
	if err != nil {
		return bytecode.Instruction{}, err
	}
	op := bytecode.Opcode(opByte)
	widths := operandWidths(op)
	var ins bytecode.Instruction
	ins.Op = op
	if len(widths) > 0 {
		v, err := readOperand(r, widths[0])
		if err != nil {
			return bytecode.Instruction{}, err
		}
		ins.X = v
	}
	if len(widths) > 1 {
		v, err := readOperand(r, widths[1])
		if err != nil {
			return bytecode.Instruction{}, err
		}
		ins.Y = v
	}
	return ins, nil
}

func readOperand(r *bytes.Reader, width int) (int32, error) {
	switch width {
	case 1:
		b, err := r.ReadByte()
		return int32(int8(b)), err
	case 2:
		v, err := readU16(r)
		return int32(uint16(v)), err
	case 4:
		v, err := readU32(r)
		return int32(v), err
	}
	return 0, fmt.Errorf("unsupported operand width %d", width)
}

func writeU16(buf *bytes.Buffer, v int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readU16(r *bytes.Reader) (int, error) {
	var b [2]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(b[:])), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n := 0
	for n < len(b) {
		m, err := r.Read(b[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// operandWidths mirrors the per-opcode operand widths used by the analyser
// when emitting instructions; kept local to binfmt (rather than exported
// from bytecode) since only the encoder/decoder needs widths in bytes —
// everywhere else operands are plain int32 fields on Instruction.
func operandWidths(op bytecode.Opcode) []int {
	switch op {
	case bytecode.BIPUSH:
		return []int{1}
	case bytecode.IPUSH:
		return []int{4}
	case bytecode.LOADC:
		return []int{2}
	case bytecode.LOADA:
		return []int{2, 4}
	case bytecode.JMP, bytecode.JE, bytecode.JNE, bytecode.JL, bytecode.JLE, bytecode.JG, bytecode.JGE:
		return []int{2}
	case bytecode.CALL:
		return []int{2}
	case bytecode.SPRINT:
		return []int{2}
	default:
		return nil
	}
}

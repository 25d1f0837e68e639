package binfmt

import (
	"testing"

	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/types"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *bytecode.Program {
	p := bytecode.NewProgram()
	p.InternInt(7)
	p.InternDouble(1.5)

	fn := &bytecode.Function{
		Name:           "main",
		ReturnType:     types.I,
		Level:          1,
		ParamSlotCount: 0,
		Instructions: []bytecode.Instruction{
			{Op: bytecode.BIPUSH, X: 1},
			{Op: bytecode.LOADA, X: 0, Y: 3},
			{Op: bytecode.JMP, X: 5},
			{Op: bytecode.CALL, X: 0},
			{Op: bytecode.IRET},
		},
	}
	p.AddFunction(fn)
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := sampleProgram()
	b1 := Encode(p)

	decoded, err := Decode(b1)
	require.NoError(t, err)

	b2 := Encode(decoded)
	require.Equal(t, b1, b2, "encode(decode(bin)) must equal bin byte for byte")
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	b := Encode(sampleProgram())
	b[0] ^= 0xff
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	b := Encode(sampleProgram())
	b[7] = 9 // low byte of the big-endian version field
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDisassembleSections(t *testing.T) {
	out := Disassemble(sampleProgram())
	require.Contains(t, out, ".constants:")
	require.Contains(t, out, ".start:")
	require.Contains(t, out, ".functions:")
	require.Contains(t, out, ".F0:")
	require.Contains(t, out, "bipush 1")
	require.Contains(t, out, "loada 0, 3")
}

func TestDecodeRebuildsFunctionLookup(t *testing.T) {
	decoded, err := Decode(Encode(sampleProgram()))
	require.NoError(t, err)

	fn, ok := decoded.LookupFunction("main")
	require.True(t, ok)
	require.Equal(t, int32(0), fn.FuncIndex)
}

func TestDecodeTruncated(t *testing.T) {
	b := Encode(sampleProgram())
	_, err := Decode(b[:len(b)-1])
	require.Error(t, err)
}

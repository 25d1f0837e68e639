package bytecode

import (
	"testing"

	"github.com/c0lang/c0/lang/types"
	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	for op := NOP; op < maxOpcode; op++ {
		require.NotEmpty(t, op.String())
		require.NotContains(t, op.String(), "illegal")
	}
}

func TestLookupMnemonic(t *testing.T) {
	op, ok := LookupMnemonic("iadd")
	require.True(t, ok)
	require.Equal(t, IADD, op)

	_, ok = LookupMnemonic("nonsense")
	require.False(t, ok)
}

func TestIsJump(t *testing.T) {
	for _, op := range []Opcode{JMP, JE, JNE, JL, JLE, JG, JGE} {
		require.True(t, IsJump(op))
	}
	require.False(t, IsJump(IADD))
}

func TestInternDedup(t *testing.T) {
	p := NewProgram()
	a := p.InternString("main")
	b := p.InternString("main")
	require.Equal(t, a, b)
	require.Len(t, p.Constants, 1)

	c := p.InternInt(7)
	d := p.InternInt(7)
	require.Equal(t, c, d)

	e := p.InternDouble(1.5)
	require.NotEqual(t, c, e)
	require.Len(t, p.Constants, 3)
}

func TestAddFunctionAndLookup(t *testing.T) {
	p := NewProgram()
	fn := &Function{Name: "main", ReturnType: types.I}
	idx := p.AddFunction(fn)
	require.Equal(t, int32(0), idx)
	require.Equal(t, idx, fn.FuncIndex)

	got, ok := p.LookupFunction("main")
	require.True(t, ok)
	require.Same(t, fn, got)

	_, ok = p.LookupFunction("missing")
	require.False(t, ok)
}

package symtab

import (
	"testing"

	"github.com/c0lang/c0/lang/types"
	"github.com/stretchr/testify/require"
)

func TestTableAddAndDeclared(t *testing.T) {
	tab := New()
	v := tab.Add("x", types.I, false, true)
	require.Equal(t, int32(0), v.Index)

	got, ok := tab.Declared("x")
	require.True(t, ok)
	require.True(t, got.Uninit)

	tab.Assign("x")
	got, _ = tab.Declared("x")
	require.False(t, got.Uninit)
}

func TestTableDoubleSlots(t *testing.T) {
	tab := New()
	tab.Add("a", types.I, false, false)
	d := tab.Add("d", types.D, false, false)
	require.Equal(t, int32(1), d.Index)
	require.Equal(t, int32(3), tab.NextSlot())
}

func TestTableShadowing(t *testing.T) {
	tab := New()
	tab.Add("x", types.I, false, false)
	tab.PushLevel()
	require.True(t, tab.CanRedefine("x")) // different level: shadowing allowed
	tab.Add("x", types.D, false, false)

	v, ok := tab.Declared("x")
	require.True(t, ok)
	require.Equal(t, types.D, v.Type) // innermost wins

	tab.PopLevel()
	v, ok = tab.Declared("x")
	require.True(t, ok)
	require.Equal(t, types.I, v.Type)
}

func TestTableCanRedefineSameLevel(t *testing.T) {
	tab := New()
	tab.Add("x", types.I, false, false)
	require.False(t, tab.CanRedefine("x"))
}

func TestTablePopLevelPanicsAtOutermost(t *testing.T) {
	tab := New()
	require.Panics(t, func() { tab.PopLevel() })
}

func TestScopesLocalVsGlobal(t *testing.T) {
	s := NewScopes()
	s.Add("g", types.I, false, false)

	s.EnterFunction()
	s.Add("l", types.I, false, false)

	_, scope, ok := s.Declared("l")
	require.True(t, ok)
	require.Equal(t, Local, scope)

	_, scope, ok = s.Declared("g")
	require.True(t, ok)
	require.Equal(t, Global, scope)

	s.LeaveFunction()
	require.False(t, s.InFunction())
	_, _, ok = s.Declared("l")
	require.False(t, ok, "local should not be visible after leaving the function")
}

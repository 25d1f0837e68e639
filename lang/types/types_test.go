package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	require.Equal(t, 1, I.Slots())
	require.Equal(t, 1, C.Slots())
	require.Equal(t, 2, D.Slots())
	require.Equal(t, 0, V.Slots())
	require.Equal(t, 0, N.Slots())
}

func TestWiden(t *testing.T) {
	require.Equal(t, I, Widen(I, I))
	require.Equal(t, I, Widen(I, C))
	require.Equal(t, D, Widen(I, D))
	require.Equal(t, D, Widen(D, C))
	require.Equal(t, D, Widen(D, D))
}

func TestIsNumeric(t *testing.T) {
	require.True(t, I.IsNumeric())
	require.True(t, C.IsNumeric())
	require.True(t, D.IsNumeric())
	require.False(t, V.IsNumeric())
	require.False(t, N.IsNumeric())
}

func TestString(t *testing.T) {
	require.Equal(t, "int", I.String())
	require.Equal(t, "double", D.String())
}

package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d has no string form", k)
	}
}

func TestKindGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'while'", WHILE.GoString())
	require.Equal(t, "end of file", EOF.GoString())
}

func TestKeywords(t *testing.T) {
	for name, k := range Keywords {
		require.Equal(t, name, k.String())
	}
	require.Len(t, Keywords, int(maxKind-CONST))
}

func TestIsRelop(t *testing.T) {
	for _, k := range []Kind{LT, LE, GT, GE, EQL, NEQ} {
		require.True(t, k.IsRelop())
	}
	for _, k := range []Kind{PLUS, ASSIGN, IDENT} {
		require.False(t, k.IsRelop())
	}
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "-", Position{}.String())
	require.Equal(t, "3:7", Position{Line: 3, Col: 7}.String())
}

package lexer

import (
	"testing"

	"github.com/c0lang/c0/lang/token"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := ScanAll([]byte(src))
	require.NoError(t, err)
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanBasics(t *testing.T) {
	got := kinds(t, "int main(){ print(1+2*3); return 0; }")
	require.Equal(t, []token.Kind{
		token.INT, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.PRINT, token.LPAREN, token.INTEGER, token.PLUS, token.INTEGER,
		token.STAR, token.INTEGER, token.RPAREN, token.SEMI,
		token.RETURN, token.INTEGER, token.SEMI, token.RBRACE, token.EOF,
	}, got)
}

func TestScanRelops(t *testing.T) {
	got := kinds(t, "< <= > >= == !=")
	require.Equal(t, []token.Kind{
		token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ, token.EOF,
	}, got)
}

func TestScanComments(t *testing.T) {
	got := kinds(t, "int x; // trailing\n/* block */ int y;")
	require.Equal(t, []token.Kind{
		token.INT, token.IDENT, token.SEMI, token.INT, token.IDENT, token.SEMI, token.EOF,
	}, got)
}

func TestScanCharAndFloat(t *testing.T) {
	toks, err := ScanAll([]byte("'a' 1.5 2e3"))
	require.NoError(t, err)
	require.Equal(t, token.CHARLIT, toks[0].Kind)
	require.Equal(t, int32('a'), toks[0].Value.Int)
	require.Equal(t, token.FLOAT, toks[1].Kind)
	require.InDelta(t, 1.5, toks[1].Value.Flt, 1e-9)
	require.Equal(t, token.FLOAT, toks[2].Kind)
	require.InDelta(t, 2000.0, toks[2].Value.Flt, 1e-9)
}

func TestScanIntegerOverflow(t *testing.T) {
	_, err := ScanAll([]byte("9999999999"))
	require.Error(t, err)
}

func TestScanUnterminatedComment(t *testing.T) {
	_, err := ScanAll([]byte("/* never closes"))
	require.Error(t, err)
}

func TestScanInvalidChar(t *testing.T) {
	_, err := ScanAll([]byte("@"))
	require.Error(t, err)
}

func TestScanReservedKeywords(t *testing.T) {
	got := kinds(t, "switch case default do for break continue")
	require.Equal(t, []token.Kind{
		token.SWITCH, token.CASE, token.DEFAULT, token.DO, token.FOR,
		token.BREAK, token.CONTINUE, token.EOF,
	}, got)
}

package maincmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/mainer"

	"github.com/c0lang/c0/lang/lexer"
	"github.com/c0lang/c0/lang/token"
)

// tokens implements the "-t" mode: run the lexer to completion and emit a
// text token listing, one token per line, grounded on the teacher's
// internal/maincmd/tokenize.go (which prints "<pos>: <kind> <literal>" per
// token from scanner.ScanFiles) but over lang/lexer's token.Token values.
func (c *Cmd) tokens(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := readSource(stdio, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	toks, err := lexer.ScanAll(src)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, tok := range toks {
		fmt.Fprintf(&sb, "%s: %s", tok.Start, tok.Kind)
		if lit := literalOf(tok); lit != "" {
			fmt.Fprintf(&sb, " %s", lit)
		}
		sb.WriteByte('\n')
	}
	return writeText(stdio, c.Output, sb.String())
}

// literalOf renders the literal payload of a Token that carries one
// (identifiers, literals), or "" for tokens that don't.
func literalOf(tok token.Token) string {
	switch tok.Kind {
	case token.IDENT, token.STRING:
		return tok.Value.Str
	case token.INTEGER, token.CHARLIT:
		return strconv.FormatInt(int64(tok.Value.Int), 10)
	case token.FLOAT:
		return strconv.FormatFloat(tok.Value.Flt, 'g', -1, 64)
	default:
		return ""
	}
}

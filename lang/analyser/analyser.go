// Package analyser implements the single-pass semantic analyser and code
// generator for C0 (spec.md §2, §4.2, §5; component 5). It walks the token
// vector produced by lang/lexer exactly once, recursive-descent style,
// resolving names against lang/symtab and emitting lang/bytecode
// instructions as each construct is recognized — there is no intermediate
// AST or control-flow graph, deliberately unlike the teacher's
// lang/parser+lang/resolver+lang/compiler pipeline (see DESIGN.md).
package analyser

import (
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/lexer"
	"github.com/c0lang/c0/lang/symtab"
	"github.com/c0lang/c0/lang/token"
	"github.com/c0lang/c0/lang/types"
)

// Analyser holds the single-pass compiler's working state: the token
// vector with a cursor, the program under construction, the active scope
// set, and a pointer to whichever instruction slice is currently receiving
// emitted code (the global start sequence, or the current function body).
type Analyser struct {
	toks []token.Token
	pos  int

	prog   *bytecode.Program
	scopes *symtab.Scopes

	cur  *bytecode.Function  // nil while emitting into prog.Start
	emit *[]bytecode.Instruction
}

// Analyse tokenizes and compiles src in one pass, returning the resulting
// Program or the first diagnostic encountered (lexical, syntactic or
// semantic; spec.md §5, §7).
func Analyse(src []byte) (*bytecode.Program, error) {
	toks, err := lexer.ScanAll(src)
	if err != nil {
		return nil, err
	}
	a := &Analyser{
		toks:   toks,
		prog:   bytecode.NewProgram(),
		scopes: symtab.NewScopes(),
	}
	a.emit = &a.prog.Start

	if err := a.program(); err != nil {
		return nil, err
	}
	if _, ok := a.prog.LookupFunction("main"); !ok {
		return nil, a.errf(a.at(0).Start, NeedMain, "program has no main function")
	}
	a.prog.GlobalSlotCount = a.scopes.GlobalSlotCount()
	return a.prog, nil
}

// --- token cursor -----------------------------------------------------

// at returns the token i positions ahead of the cursor without consuming
// it, clamped to the final (EOF) token. Two-token lookahead (i in {0,1})
// is all the grammar ever needs (spec.md §5).
func (a *Analyser) at(i int) token.Token {
	if a.pos+i < len(a.toks) {
		return a.toks[a.pos+i]
	}
	return a.toks[len(a.toks)-1]
}

// advance consumes and returns the current token.
func (a *Analyser) advance() token.Token {
	t := a.at(0)
	if a.pos < len(a.toks)-1 {
		a.pos++
	}
	return t
}

// expect consumes the current token if it has kind k, else returns code as
// a diagnostic at the current position.
func (a *Analyser) expect(k token.Kind, code Code) (token.Token, error) {
	t := a.at(0)
	if t.Kind != k {
		return t, a.errf(t.Start, code, "expected %s, found %s", k.GoString(), t.Kind.GoString())
	}
	return a.advance(), nil
}

// --- emission helpers ---------------------------------------------------

// emitOne appends ins to the active instruction stream and returns its
// index, used as a back-patch address for branch targets (spec.md §9:
// "record the emission index at the point of emission").
func (a *Analyser) emitOne(ins bytecode.Instruction) int {
	*a.emit = append(*a.emit, ins)
	return len(*a.emit) - 1
}

func (a *Analyser) emitCode(code []bytecode.Instruction) {
	*a.emit = append(*a.emit, code...)
}

// patch sets the branch target of the jump instruction at addr to target
// (callers pass here() to target the current end of the active stream).
func (a *Analyser) patch(addr int, target int32) {
	(*a.emit)[addr].X = target
}

func (a *Analyser) here() int32 { return int32(len(*a.emit)) }

// --- grammar entry points ----------------------------------------------

func isTypeStart(k token.Kind) bool {
	switch k {
	case token.INT, token.CHAR, token.DOUBLE, token.VOID:
		return true
	default:
		return false
	}
}

func (a *Analyser) parseTypeKeyword() (types.T, error) {
	switch a.at(0).Kind {
	case token.INT:
		a.advance()
		return types.I, nil
	case token.CHAR:
		a.advance()
		return types.C, nil
	case token.DOUBLE:
		a.advance()
		return types.D, nil
	case token.VOID:
		a.advance()
		return types.V, nil
	}
	return types.N, a.errf(a.at(0).Start, MalformedDeclaration, "expected a type, found %s", a.at(0).Kind.GoString())
}

// program parses the whole translation unit: a sequence of top-level
// variable declarations and function definitions (spec.md §4.2 "program").
func (a *Analyser) program() error {
	for a.at(0).Kind != token.EOF {
		if err := a.topLevel(); err != nil {
			return err
		}
	}
	return nil
}

// topLevel disambiguates a top-level declaration from a function
// definition by consuming the leading [const] type ident and then
// checking whether a '(' follows — the "ident '(' switches to a function
// definition" rule of spec.md §5.
func (a *Analyser) topLevel() error {
	isConst := false
	if a.at(0).Kind == token.CONST {
		isConst = true
		a.advance()
	}
	typ, err := a.parseTypeKeyword()
	if err != nil {
		return err
	}
	nameTok, err := a.expect(token.IDENT, MalformedDeclaration)
	if err != nil {
		return err
	}
	if !isConst && a.at(0).Kind == token.LPAREN {
		return a.functionDef(typ, nameTok)
	}
	if typ == types.V {
		return a.errf(nameTok.Start, MalformedDeclaration, "variable %q cannot have type void", nameTok.Value.Str)
	}
	if len(a.prog.Functions) > 0 {
		return a.errf(nameTok.Start, MalformedDeclaration, "global variable %q declared after a function definition", nameTok.Value.Str)
	}
	return a.varDeclList(typ, isConst, nameTok)
}

package analyser

import (
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/token"
	"github.com/c0lang/c0/lang/types"
)

// functionBody parses a function's own compound statement. It does not
// push a new symbol-table level: the parameter frame already occupies
// level 1 (spec.md §3 "the outermost body, whose parameter frame is the
// function's level 1").
func (a *Analyser) functionBody() error {
	if _, err := a.expect(token.LBRACE, MissingBrace); err != nil {
		return err
	}
	if err := a.blockBody(); err != nil {
		return err
	}
	_, err := a.expect(token.RBRACE, MissingBrace)
	return err
}

// compoundStmt parses a nested '{' ... '}' block, pushing and popping a
// symbol-table level around it (spec.md §4.1, §8 invariant 5).
func (a *Analyser) compoundStmt() error {
	if _, err := a.expect(token.LBRACE, MissingBrace); err != nil {
		return err
	}
	a.scopes.PushLevel()
	err := a.blockBody()
	a.scopes.PopLevel()
	if err != nil {
		return err
	}
	_, err = a.expect(token.RBRACE, MissingBrace)
	return err
}

// blockBody parses the leading run of local declarations followed by a
// statement sequence, per compound-stmt's grammar.
func (a *Analyser) blockBody() error {
	for a.at(0).Kind == token.CONST || isTypeStart(a.at(0).Kind) {
		if err := a.localVarDecl(); err != nil {
			return err
		}
	}
	for a.at(0).Kind != token.RBRACE {
		if a.at(0).Kind == token.EOF {
			return a.errf(a.at(0).Start, MissingBrace, "unexpected end of file, expected %s", token.RBRACE.GoString())
		}
		if err := a.stmt(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyser) stmt() error {
	switch a.at(0).Kind {
	case token.LBRACE:
		return a.compoundStmt()
	case token.IF:
		return a.ifStmt()
	case token.WHILE:
		return a.whileStmt()
	case token.RETURN:
		return a.returnStmt()
	case token.PRINT:
		return a.printStmt()
	case token.SCAN:
		return a.scanStmt()
	case token.SEMI:
		a.advance()
		return nil
	case token.IDENT:
		if a.at(1).Kind == token.ASSIGN {
			return a.assignStmt()
		}
		if a.at(1).Kind == token.LPAREN {
			return a.callStmt()
		}
		return a.errf(a.at(0).Start, UnexpectedToken, "expected assignment or call after %q", a.at(0).Value.Str)
	case token.SWITCH, token.CASE, token.DEFAULT, token.DO, token.FOR, token.BREAK, token.CONTINUE:
		t := a.advance()
		return a.errf(t.Start, ReservedWordUnsupported, "%q is a reserved keyword not supported by this implementation", t.Kind)
	default:
		return a.errf(a.at(0).Start, UnexpectedToken, "unexpected token %s", a.at(0).Kind.GoString())
	}
}

// cond parses a condition, emits its comparison and a conditional branch
// whose sense is the *negation* of the written relop (so the patched
// target is "skip the true branch"), and returns the branch instruction's
// index for later patching (spec.md §4.2 condition table).
func (a *Analyser) cond() (int, error) {
	left, err := a.parseExpr()
	if err != nil {
		return 0, err
	}
	if a.at(0).Kind.IsRelop() {
		relTok := a.advance()
		right, err := a.parseExpr()
		if err != nil {
			return 0, err
		}
		res, err := a.compare(left, right, relTok.Start)
		if err != nil {
			return 0, err
		}
		a.emitCode(res.Code)
		return a.emitOne(bytecode.Instruction{Op: negatedJump(relTok.Kind)}), nil
	}

	// A bare expression is true iff nonzero: compare against a same-typed
	// zero and branch on equality (spec.md §4.2 condition table, "(none)"
	// row).
	zero := exprResult{Typ: left.Typ}
	if left.Typ == types.D {
		idx := a.prog.InternDouble(0)
		zero.Code = []bytecode.Instruction{{Op: bytecode.LOADC, X: idx}}
	} else {
		zero.Code = []bytecode.Instruction{{Op: bytecode.BIPUSH, X: 0}}
	}
	res, err := a.compare(left, zero, left.Pos)
	if err != nil {
		return 0, err
	}
	a.emitCode(res.Code)
	return a.emitOne(bytecode.Instruction{Op: bytecode.JE}), nil
}

// negatedJump maps a written relop to the conditional jump that fires when
// the relop is *false*, per spec.md §4.2's back-patching table.
func negatedJump(k token.Kind) bytecode.Opcode {
	switch k {
	case token.LT:
		return bytecode.JGE
	case token.LE:
		return bytecode.JG
	case token.GT:
		return bytecode.JLE
	case token.GE:
		return bytecode.JL
	case token.NEQ:
		return bytecode.JE
	case token.EQL:
		return bytecode.JNE
	default:
		return bytecode.JE
	}
}

func (a *Analyser) ifStmt() error {
	a.advance() // if
	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return err
	}
	branchAddr, err := a.cond()
	if err != nil {
		return err
	}
	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		return err
	}
	if err := a.stmt(); err != nil {
		return err
	}
	if a.at(0).Kind == token.ELSE {
		elseJump := a.emitOne(bytecode.Instruction{Op: bytecode.JMP})
		a.patch(branchAddr, a.here())
		a.advance() // else
		if err := a.stmt(); err != nil {
			return err
		}
		a.patch(elseJump, a.here())
		return nil
	}
	a.patch(branchAddr, a.here())
	return nil
}

func (a *Analyser) whileStmt() error {
	a.advance() // while
	loopStart := a.here()
	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return err
	}
	branchAddr, err := a.cond()
	if err != nil {
		return err
	}
	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		return err
	}
	if err := a.stmt(); err != nil {
		return err
	}
	a.emitOne(bytecode.Instruction{Op: bytecode.JMP, X: loopStart})
	a.patch(branchAddr, a.here())
	return nil
}

func (a *Analyser) returnStmt() error {
	retTok := a.advance() // return
	if a.cur == nil {
		return a.errf(retTok.Start, UnexpectedToken, "return outside of a function")
	}
	if a.cur.ReturnType == types.V {
		if a.at(0).Kind != token.SEMI {
			return a.errf(a.at(0).Start, Void, "function %q returns void and cannot return a value", a.cur.Name)
		}
		a.emitOne(bytecode.Instruction{Op: bytecode.RET})
	} else {
		res, err := a.parseExpr()
		if err != nil {
			return err
		}
		res, err = a.coerce(res, a.cur.ReturnType, retTok.Start)
		if err != nil {
			return err
		}
		a.emitCode(res.Code)
		op := bytecode.IRET
		if a.cur.ReturnType == types.D {
			op = bytecode.DRET
		}
		a.emitOne(bytecode.Instruction{Op: op})
	}
	_, err := a.expect(token.SEMI, MissingSemicolon)
	return err
}

func printOpFor(t types.T) bytecode.Opcode {
	switch t {
	case types.D:
		return bytecode.DPRINT
	case types.C:
		return bytecode.CPRINT
	default:
		return bytecode.IPRINT
	}
}

// printStmt parses print '(' [ arg {',' arg} ] ')' ';' where each arg is
// either an expression or a bare string literal (spec.md §4.2 "Scan/Print";
// strings are only ever valid here, never inside a general expression).
func (a *Analyser) printStmt() error {
	a.advance() // print
	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return err
	}
	if a.at(0).Kind != token.RPAREN {
		first := true
		for {
			if !first {
				// Between successive items a literal space separates them
				// (spec.md §4.2 "Scan/Print").
				a.emitOne(bytecode.Instruction{Op: bytecode.BIPUSH, X: 32})
				a.emitOne(bytecode.Instruction{Op: bytecode.CPRINT})
			}
			first = false
			if a.at(0).Kind == token.STRING {
				st := a.advance()
				idx := a.prog.InternString(st.Value.Str)
				a.emitOne(bytecode.Instruction{Op: bytecode.SPRINT, X: idx})
			} else {
				res, err := a.parseExpr()
				if err != nil {
					return err
				}
				if res.Typ == types.V {
					return a.errf(res.Pos, Void, "cannot print a void value")
				}
				a.emitCode(res.Code)
				a.emitOne(bytecode.Instruction{Op: printOpFor(res.Typ)})
			}
			if a.at(0).Kind == token.COMMA {
				a.advance()
				continue
			}
			break
		}
	}
	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		return err
	}
	a.emitOne(bytecode.Instruction{Op: bytecode.PRINTL})
	_, err := a.expect(token.SEMI, MissingSemicolon)
	return err
}

// scanStmt parses scan '(' ident ')' ';', emitting load-address, the
// type-matched scan opcode and a store, then marking the variable
// initialized (spec.md §4.2 "Scan/Print").
func (a *Analyser) scanStmt() error {
	a.advance() // scan
	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return err
	}
	nt, err := a.expect(token.IDENT, MalformedDeclaration)
	if err != nil {
		return err
	}
	name := nt.Value.Str
	v, scope, ok := a.scopes.Declared(name)
	if !ok {
		return a.errf(nt.Start, NotDeclared, "%q is not declared", name)
	}
	if v.IsConst {
		return a.errf(nt.Start, AssignToConstant, "cannot scan into constant %q", name)
	}
	a.emitOne(bytecode.Instruction{Op: bytecode.LOADA, X: int32(scope), Y: v.Index})
	a.emitOne(bytecode.Instruction{Op: scanOpFor(v.Type)})
	a.emitOne(bytecode.Instruction{Op: storeOpFor(v.Type)})
	a.scopes.Assign(name)
	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		return err
	}
	_, err = a.expect(token.SEMI, MissingSemicolon)
	return err
}

func scanOpFor(t types.T) bytecode.Opcode {
	switch t {
	case types.D:
		return bytecode.DSCAN
	case types.C:
		return bytecode.CSCAN
	default:
		return bytecode.ISCAN
	}
}

func storeOpFor(t types.T) bytecode.Opcode {
	switch t {
	case types.D:
		return bytecode.DSTORE
	case types.C:
		return bytecode.CSTORE
	default:
		return bytecode.ISTORE
	}
}

// assignStmt parses ident '=' expr ';' as a standalone statement.
func (a *Analyser) assignStmt() error {
	nt := a.advance() // ident
	name := nt.Value.Str
	if _, err := a.expect(token.ASSIGN, MalformedDeclaration); err != nil {
		return err
	}
	v, scope, ok := a.scopes.Declared(name)
	if !ok {
		return a.errf(nt.Start, NotDeclared, "%q is not declared", name)
	}
	if v.IsConst {
		return a.errf(nt.Start, AssignToConstant, "cannot assign to constant %q", name)
	}
	res, err := a.parseExpr()
	if err != nil {
		return err
	}
	res, err = a.coerce(res, v.Type, nt.Start)
	if err != nil {
		return err
	}
	a.emitOne(bytecode.Instruction{Op: bytecode.LOADA, X: int32(scope), Y: v.Index})
	a.emitCode(res.Code)
	a.emitOne(bytecode.Instruction{Op: storeOpFor(v.Type)})
	a.scopes.Assign(name)
	_, err = a.expect(token.SEMI, MissingSemicolon)
	return err
}

// callStmt parses a call used as a statement, discarding any return value
// to keep the stack balanced (spec.md §8 invariant: stack depth returns to
// its pre-statement level after every statement).
func (a *Analyser) callStmt() error {
	nt := a.advance() // ident
	res, err := a.parseCall(nt)
	if err != nil {
		return err
	}
	a.emitCode(res.Code)
	if res.Typ == types.D {
		a.emitOne(bytecode.Instruction{Op: bytecode.POP2})
	} else if res.Typ != types.V {
		a.emitOne(bytecode.Instruction{Op: bytecode.POP})
	}
	_, err = a.expect(token.SEMI, MissingSemicolon)
	return err
}

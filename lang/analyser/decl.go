package analyser

import (
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/token"
	"github.com/c0lang/c0/lang/types"
)

// varDeclList parses the remainder of a declaration whose first declarator
// name has already been consumed: [= expr] {, ident [= expr]} ;
// (spec.md §4.2 "var-decl" / "init-list").
func (a *Analyser) varDeclList(typ types.T, isConst bool, firstName token.Token) error {
	name := firstName
	for {
		if err := a.declareOne(typ, isConst, name); err != nil {
			return err
		}
		if a.at(0).Kind != token.COMMA {
			break
		}
		a.advance()
		nt, err := a.expect(token.IDENT, MalformedDeclaration)
		if err != nil {
			return err
		}
		name = nt
	}
	_, err := a.expect(token.SEMI, MissingSemicolon)
	return err
}

// localVarDecl parses one local declaration inside a compound statement's
// leading declaration block: [const] type init-list ';'.
func (a *Analyser) localVarDecl() error {
	isConst := false
	if a.at(0).Kind == token.CONST {
		isConst = true
		a.advance()
	}
	typ, err := a.parseTypeKeyword()
	if err != nil {
		return err
	}
	if typ == types.V {
		return a.errf(a.at(0).Start, MalformedDeclaration, "variable cannot have type void")
	}
	nameTok, err := a.expect(token.IDENT, MalformedDeclaration)
	if err != nil {
		return err
	}
	return a.varDeclList(typ, isConst, nameTok)
}

// declareOne handles a single declarator. Without an initializer, the
// declared slot(s) are reserved by pushing a zero value directly — the
// push itself *is* the allocation, since slots are just stack positions in
// declaration order. With an initializer, the (coerced) expression value
// is computed and left sitting in the declared slot the same way; no
// load-address/store round trip is needed because nothing referencing the
// new name can appear on its own right-hand side (spec.md §4.2).
func (a *Analyser) declareOne(typ types.T, isConst bool, nameTok token.Token) error {
	name := nameTok.Value.Str
	if !a.scopes.CanRedefine(name) {
		return a.errf(nameTok.Start, DuplicateDeclaration, "%q already declared at this scope", name)
	}

	if a.at(0).Kind == token.ASSIGN {
		a.advance()
		rhs, err := a.parseExpr()
		if err != nil {
			return err
		}
		rhs, err = a.coerce(rhs, typ, nameTok.Start)
		if err != nil {
			return err
		}
		a.emitCode(rhs.Code)
		a.scopes.Add(name, typ, isConst, false)
		return nil
	}

	a.emitOne(bytecode.Instruction{Op: bytecode.BIPUSH, X: 0})
	if typ == types.D {
		a.emitOne(bytecode.Instruction{Op: bytecode.I2D})
	}
	a.scopes.Add(name, typ, isConst, true)
	return nil
}

// functionDef parses a function definition whose return type and name have
// already been consumed: '(' params ')' '{' ... '}'. Recursive calls
// resolve because the function is registered in the program's function
// table before its body is analysed.
func (a *Analyser) functionDef(returnType types.T, nameTok token.Token) error {
	name := nameTok.Value.Str
	if _, exists := a.prog.LookupFunction(name); exists {
		return a.errf(nameTok.Start, DuplicateDeclaration, "function %q already defined", name)
	}

	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return err
	}

	fn := &bytecode.Function{Name: name, ReturnType: returnType, Level: 1}

	a.scopes.EnterFunction()
	var slots int32
	if a.at(0).Kind != token.RPAREN {
		for {
			pConst := false
			if a.at(0).Kind == token.CONST {
				pConst = true
				a.advance()
			}
			pt, err := a.parseTypeKeyword()
			if err != nil {
				a.scopes.LeaveFunction()
				return err
			}
			if pt == types.V {
				a.scopes.LeaveFunction()
				return a.errf(a.at(0).Start, FunctionParams, "parameter cannot have type void")
			}
			pnt, err := a.expect(token.IDENT, MalformedDeclaration)
			if err != nil {
				a.scopes.LeaveFunction()
				return err
			}
			a.scopes.Add(pnt.Value.Str, pt, pConst, false)
			fn.Params = append(fn.Params, pt)
			slots += int32(pt.Slots())
			if a.at(0).Kind == token.COMMA {
				a.advance()
				continue
			}
			break
		}
	}
	fn.ParamSlotCount = slots

	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		a.scopes.LeaveFunction()
		return err
	}

	a.prog.AddFunction(fn)

	prevCur, prevEmit := a.cur, a.emit
	a.cur = fn
	a.emit = &fn.Instructions

	err := a.functionBody()

	a.cur, a.emit = prevCur, prevEmit
	a.scopes.LeaveFunction()
	if err != nil {
		return err
	}

	// Falling off the end of a body is always well-defined: a bare ret
	// terminates the frame regardless of the declared return type
	// (spec.md §8 invariant 2).
	fn.Instructions = append(fn.Instructions, bytecode.Instruction{Op: bytecode.RET})
	return nil
}

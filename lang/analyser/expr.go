package analyser

import (
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/token"
	"github.com/c0lang/c0/lang/types"
)

// exprResult is a self-contained code fragment for one expression: the
// static type its value has once evaluated, and the instructions that
// compute it. Building expressions this way (instead of emitting straight
// into the function's instruction stream) lets binary-operator promotion
// be spliced in immediately after the narrower operand's own code,
// without needing a stack-swap instruction the opcode set doesn't provide
// (spec.md §4.2 "the narrower side is promoted via i2d immediately after
// being pushed").
type exprResult struct {
	Typ  types.T
	Code []bytecode.Instruction
	Pos  token.Position
}

// parseExpr parses expr := mul-expr { ('+'|'-') mul-expr }.
func (a *Analyser) parseExpr() (exprResult, error) {
	left, err := a.parseMul()
	if err != nil {
		return exprResult{}, err
	}
	for a.at(0).Kind == token.PLUS || a.at(0).Kind == token.MINUS {
		opTok := a.advance()
		right, err := a.parseMul()
		if err != nil {
			return exprResult{}, err
		}
		left, err = a.combine(left, right, opTok.Kind, opTok.Start)
		if err != nil {
			return exprResult{}, err
		}
	}
	return left, nil
}

// parseMul parses mul-expr := cast-expr { ('*'|'/') cast-expr }.
func (a *Analyser) parseMul() (exprResult, error) {
	left, err := a.parseCast()
	if err != nil {
		return exprResult{}, err
	}
	for a.at(0).Kind == token.STAR || a.at(0).Kind == token.SLASH {
		opTok := a.advance()
		right, err := a.parseCast()
		if err != nil {
			return exprResult{}, err
		}
		left, err = a.combine(left, right, opTok.Kind, opTok.Start)
		if err != nil {
			return exprResult{}, err
		}
	}
	return left, nil
}

// parseCast parses cast-expr := ['(' type ')'] unary-expr.
func (a *Analyser) parseCast() (exprResult, error) {
	if a.at(0).Kind == token.LPAREN && isTypeStart(a.at(1).Kind) {
		pos := a.at(0).Start
		a.advance() // (
		typ, err := a.parseTypeKeyword()
		if err != nil {
			return exprResult{}, err
		}
		if typ == types.V {
			return exprResult{}, a.errf(pos, Void, "cannot cast to void")
		}
		if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
			return exprResult{}, err
		}
		inner, err := a.parseUnary()
		if err != nil {
			return exprResult{}, err
		}
		code := append(append([]bytecode.Instruction{}, inner.Code...), castConvert(inner.Typ, typ)...)
		return exprResult{Typ: typ, Code: code, Pos: pos}, nil
	}
	return a.parseUnary()
}

// parseUnary parses unary-expr := ['+'|'-'] primary.
func (a *Analyser) parseUnary() (exprResult, error) {
	switch a.at(0).Kind {
	case token.MINUS:
		pos := a.advance().Start
		inner, err := a.parsePrimary()
		if err != nil {
			return exprResult{}, err
		}
		if !inner.Typ.IsNumeric() {
			return exprResult{}, a.errf(pos, Void, "unary - requires a numeric operand")
		}
		negOp := bytecode.INEG
		if inner.Typ == types.D {
			negOp = bytecode.DNEG
		}
		code := append(append([]bytecode.Instruction{}, inner.Code...), bytecode.Instruction{Op: negOp})
		return exprResult{Typ: inner.Typ, Code: code, Pos: pos}, nil
	case token.PLUS:
		a.advance()
		return a.parsePrimary()
	default:
		return a.parsePrimary()
	}
}

// parsePrimary parses primary := '(' expr ')' | literal | ident | call.
func (a *Analyser) parsePrimary() (exprResult, error) {
	t := a.at(0)
	switch t.Kind {
	case token.LPAREN:
		a.advance()
		res, err := a.parseExpr()
		if err != nil {
			return exprResult{}, err
		}
		if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
			return exprResult{}, err
		}
		return res, nil

	case token.INTEGER:
		a.advance()
		return exprResult{Typ: types.I, Code: []bytecode.Instruction{{Op: bytecode.IPUSH, X: t.Value.Int}}, Pos: t.Start}, nil

	case token.CHARLIT:
		a.advance()
		return exprResult{Typ: types.C, Code: []bytecode.Instruction{{Op: bytecode.BIPUSH, X: t.Value.Int}}, Pos: t.Start}, nil

	case token.FLOAT:
		a.advance()
		idx := a.prog.InternDouble(t.Value.Flt)
		return exprResult{Typ: types.D, Code: []bytecode.Instruction{{Op: bytecode.LOADC, X: idx}}, Pos: t.Start}, nil

	case token.IDENT:
		a.advance()
		if a.at(0).Kind == token.LPAREN {
			return a.parseCall(t)
		}
		v, scope, ok := a.scopes.Declared(t.Value.Str)
		if !ok {
			return exprResult{}, a.errf(t.Start, NotDeclared, "%q is not declared", t.Value.Str)
		}
		if v.Uninit {
			return exprResult{}, a.errf(t.Start, NotInitialized, "%q is used before being initialized", t.Value.Str)
		}
		loadOp := bytecode.ILOAD
		if v.Type == types.D {
			loadOp = bytecode.DLOAD
		}
		code := []bytecode.Instruction{
			{Op: bytecode.LOADA, X: int32(scope), Y: v.Index},
			{Op: loadOp},
		}
		return exprResult{Typ: v.Type, Code: code, Pos: t.Start}, nil

	default:
		return exprResult{}, a.errf(t.Start, IncompleteExpression, "expected an expression, found %s", t.Kind.GoString())
	}
}

// parseCall parses the '(' args ')' remainder of a call whose function
// name token has already been consumed.
func (a *Analyser) parseCall(nameTok token.Token) (exprResult, error) {
	name := nameTok.Value.Str
	fn, ok := a.prog.LookupFunction(name)
	if !ok {
		return exprResult{}, a.errf(nameTok.Start, NotDeclared, "function %q is not declared", name)
	}
	if _, err := a.expect(token.LPAREN, MissingParen); err != nil {
		return exprResult{}, err
	}

	var code []bytecode.Instruction
	n := 0
	if a.at(0).Kind != token.RPAREN {
		for {
			arg, err := a.parseExpr()
			if err != nil {
				return exprResult{}, err
			}
			if n >= len(fn.Params) {
				return exprResult{}, a.errf(nameTok.Start, FunctionParams, "too many arguments to %q", name)
			}
			arg, err = a.coerce(arg, fn.Params[n], nameTok.Start)
			if err != nil {
				return exprResult{}, err
			}
			code = append(code, arg.Code...)
			n++
			if a.at(0).Kind == token.COMMA {
				a.advance()
				continue
			}
			break
		}
	}
	if n != len(fn.Params) {
		return exprResult{}, a.errf(nameTok.Start, FunctionParams, "%q expects %d argument(s), got %d", name, len(fn.Params), n)
	}
	if _, err := a.expect(token.RPAREN, MissingParen); err != nil {
		return exprResult{}, err
	}
	code = append(code, bytecode.Instruction{Op: bytecode.CALL, X: fn.FuncIndex})
	return exprResult{Typ: fn.ReturnType, Code: code, Pos: nameTok.Start}, nil
}

// promote appends an i2d conversion to code when an int or char operand
// meets a double target (the only direction combine/compare ever need,
// since Widen never narrows). A char operand under an int target needs no
// conversion: both are a single int32 slot.
func promote(code []bytecode.Instruction, from, target types.T) []bytecode.Instruction {
	if from == target || target != types.D {
		return code
	}
	return append(append([]bytecode.Instruction{}, code...), bytecode.Instruction{Op: bytecode.I2D})
}

func arithOpFor(k token.Kind, target types.T) bytecode.Opcode {
	isD := target == types.D
	switch k {
	case token.PLUS:
		if isD {
			return bytecode.DADD
		}
		return bytecode.IADD
	case token.MINUS:
		if isD {
			return bytecode.DSUB
		}
		return bytecode.ISUB
	case token.STAR:
		if isD {
			return bytecode.DMUL
		}
		return bytecode.IMUL
	default: // token.SLASH
		if isD {
			return bytecode.DDIV
		}
		return bytecode.IDIV
	}
}

// combine builds the code for a binary arithmetic operator, widening
// whichever operand is narrower (spec.md §4.2 type rules).
func (a *Analyser) combine(left, right exprResult, opKind token.Kind, pos token.Position) (exprResult, error) {
	if left.Typ == types.V || right.Typ == types.V {
		return exprResult{}, a.errf(pos, Void, "void value used in an expression")
	}
	target := types.Widen(left.Typ, right.Typ)
	lcode := promote(left.Code, left.Typ, target)
	rcode := promote(right.Code, right.Typ, target)
	code := append(append([]bytecode.Instruction{}, lcode...), rcode...)
	code = append(code, bytecode.Instruction{Op: arithOpFor(opKind, target)})
	return exprResult{Typ: target, Code: code, Pos: pos}, nil
}

// compare builds the code for a relational comparison, pushing -1/0/+1
// (spec.md §4.3 icmp/dcmp).
func (a *Analyser) compare(left, right exprResult, pos token.Position) (exprResult, error) {
	if left.Typ == types.V || right.Typ == types.V {
		return exprResult{}, a.errf(pos, Void, "void value used in a condition")
	}
	target := types.Widen(left.Typ, right.Typ)
	lcode := promote(left.Code, left.Typ, target)
	rcode := promote(right.Code, right.Typ, target)
	cmpOp := bytecode.ICMP
	if target == types.D {
		cmpOp = bytecode.DCMP
	}
	code := append(append([]bytecode.Instruction{}, lcode...), rcode...)
	code = append(code, bytecode.Instruction{Op: cmpOp})
	return exprResult{Typ: types.I, Code: code, Pos: pos}, nil
}

// castConvert returns the conversion opcode(s), if any, an explicit
// (type) cast applies on top of inner's own code. Unlike coerce, an
// explicit cast to char truncates via i2c even when the source is int
// (spec.md §4.2 "(T) cast converts the top of stack to T").
func castConvert(from, to types.T) []bytecode.Instruction {
	if from == to {
		return nil
	}
	if to == types.D {
		return []bytecode.Instruction{{Op: bytecode.I2D}}
	}
	if from == types.D {
		return []bytecode.Instruction{{Op: bytecode.D2I}}
	}
	if to == types.C {
		return []bytecode.Instruction{{Op: bytecode.I2C}}
	}
	return nil
}

// coerce converts res to target using only the widening/narrowing
// conversions spec.md §4.2 assigns to assignment, return and argument
// passing (i2d / d2i) — int and char are assignment-compatible without a
// conversion opcode, since both occupy one slot as a plain int32.
func (a *Analyser) coerce(res exprResult, target types.T, pos token.Position) (exprResult, error) {
	if res.Typ == types.V {
		return exprResult{}, a.errf(pos, Void, "void value cannot be used here")
	}
	if res.Typ == target {
		return res, nil
	}
	if target == types.D {
		code := append(append([]bytecode.Instruction{}, res.Code...), bytecode.Instruction{Op: bytecode.I2D})
		return exprResult{Typ: types.D, Code: code, Pos: res.Pos}, nil
	}
	if res.Typ == types.D {
		code := append(append([]bytecode.Instruction{}, res.Code...), bytecode.Instruction{Op: bytecode.D2I})
		return exprResult{Typ: target, Code: code, Pos: res.Pos}, nil
	}
	// int <-> char: same representation, no conversion opcode needed.
	return exprResult{Typ: target, Code: res.Code, Pos: res.Pos}, nil
}

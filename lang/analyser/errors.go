package analyser

import (
	"fmt"

	"github.com/c0lang/c0/lang/token"
)

// Code identifies a semantic or syntactic error category (spec.md §7).
type Code string

//nolint:revive
const (
	// Lexical errors surface as *lexer.Error and are not re-wrapped here.

	// Syntactic.
	MissingSemicolon     Code = "MissingSemicolon"
	MissingParen         Code = "MissingParen"
	MissingBrace         Code = "MissingBrace"
	MalformedDeclaration Code = "MalformedDeclaration"
	IncompleteExpression Code = "IncompleteExpression"
	ConditionExpected    Code = "ConditionExpected"
	UnexpectedToken      Code = "UnexpectedToken"
	ReservedWordUnsupported Code = "ReservedWordUnsupported"

	// Semantic.
	NotDeclared          Code = "NotDeclared"
	DuplicateDeclaration Code = "DuplicateDeclaration"
	AssignToConstant     Code = "AssignToConstant"
	NotInitialized       Code = "NotInitialized"
	FunctionParams       Code = "FunctionParams"
	Void                 Code = "Void"
	NeedMain             Code = "NeedMain"
)

// Error is a single compile-time diagnostic: a category code, the source
// position it was detected at, and a human-readable message. The first
// Error returned by the analyser aborts the pass (spec.md §5, §7).
type Error struct {
	Code Code
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Msg) }

func (a *Analyser) errf(pos token.Position, code Code, format string, args ...any) error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

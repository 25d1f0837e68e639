package vm

import "fmt"

// Code identifies a runtime fault category (spec.md §7's runtime errors,
// as distinct from analyser.Code's compile-time categories).
type Code string

//nolint:revive
const (
	DivisionByZero   Code = "DivisionByZero"
	CallStackFull    Code = "CallStackFull"
	StackExhausted   Code = "StackExhausted"
	StepLimitReached Code = "StepLimitReached"
	UndefinedFunc    Code = "UndefinedFunc"
	ScanFailed       Code = "ScanFailed"
	InternalFault    Code = "InternalFault"
)

// Error is a single runtime fault raised by the VM while executing a
// program: the category, the faulting instruction's address, and a
// message.
type Error struct {
	Code Code
	PC   int32
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("pc=%d: %s: %s", e.PC, e.Code, e.Msg) }

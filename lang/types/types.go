// Package types defines the small static type system of C0: int, char,
// double, void and the "none"/untyped placeholder (returned alongside an
// error when no type keyword could be parsed).
package types

import "fmt"

// T is a static type tag. Every expression, variable, parameter and return
// value carries exactly one T.
type T uint8

//nolint:revive
const (
	N T = iota // none/untyped: placeholder before inference, never a final type
	V          // void: only legal as a function's return type
	I          // int32
	C          // char, stored as int32 on the stack and in locals
	D          // double, occupies two consecutive 32-bit slots
)

var names = [...]string{
	N: "none",
	V: "void",
	I: "int",
	C: "char",
	D: "double",
}

func (t T) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("T(%d)", uint8(t))
}

// Slots reports how many 32-bit value-stack slots a value of type t
// occupies: one for I/C, two for D (spec.md §3). V and N occupy none.
func (t T) Slots() int {
	if t == D {
		return 2
	}
	if t == I || t == C {
		return 1
	}
	return 0
}

// IsNumeric reports whether t is one of the arithmetic types (I, C or D).
// C behaves as I for every arithmetic purpose; it only differs at
// load/store/print/scan opcode selection.
func (t T) IsNumeric() bool { return t == I || t == C || t == D }

// Widen returns the type produced by a binary arithmetic operator applied to
// operands of type a and b (spec.md §4.2: "produce D if either operand is
// D, else I").
func Widen(a, b T) T {
	if a == D || b == D {
		return D
	}
	return I
}

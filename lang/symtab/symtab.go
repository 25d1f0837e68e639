// Package symtab implements the lexically scoped symbol table described in
// spec.md §3/§4.1, grounded directly on original_source/type/varstable.h's
// Var/VarList/VarsTable shape.
package symtab

import "github.com/c0lang/c0/lang/types"

// Scope identifies where a resolved name lives: a local slot on the current
// function's frame, or a global slot shared across all frames.
type Scope int

const (
	Local  Scope = 0
	Global Scope = 1
)

// Var describes one declared variable: its static type, its slot index
// (a stack offset for locals, a global-array index for globals — for a
// double the index points at the low half), whether it is const, and
// whether it has been assigned yet.
type Var struct {
	Type    types.T
	Index   int32
	IsConst bool
	Uninit  bool
}

// VarList is the set of bindings visible at one lexical level (spec.md
// §3's "one lexical level"). A compound statement pushes one VarList and
// pops it on exit.
type VarList struct {
	level int32
	vars  map[string]*Var
	order []string // names in declaration order
}

func newVarList(level int32) *VarList {
	return &VarList{level: level, vars: make(map[string]*Var)}
}

func (l *VarList) declared(name string) (*Var, bool) {
	v, ok := l.vars[name]
	return v, ok
}

func (l *VarList) add(name string, v Var) {
	stored := v
	l.vars[name] = &stored
	l.order = append(l.order, name)
}

// Table is a stack of VarLists for one function body (or, for the single
// global VarList, a one-level table with no push/pop ever performed).
// Matches original_source's VarsTable: "levels are pushed/popped in
// matched pairs with compound statements" (spec.md §3 invariant).
type Table struct {
	levels   []*VarList
	nextSlot int32 // next free slot index, monotonically increasing within this table
}

// New creates a Table with a single level (level 1, per spec.md §3: "the
// outermost body, whose parameter frame is the function's level 1").
func New() *Table {
	t := &Table{}
	t.levels = append(t.levels, newVarList(1))
	return t
}

// PushLevel opens a new nested scope, e.g. on entry to a compound statement
// nested inside the function body.
func (t *Table) PushLevel() {
	level := int32(len(t.levels)) + 1
	t.levels = append(t.levels, newVarList(level))
}

// PopLevel closes the innermost scope. Panics if called with only the
// outermost (parameter) level remaining, which would indicate a compiler
// bug (unbalanced push/pop, spec.md §8 invariant 5).
func (t *Table) PopLevel() {
	if len(t.levels) <= 1 {
		panic("symtab: PopLevel called with no nested level to pop")
	}
	t.levels = t.levels[:len(t.levels)-1]
}

// Depth reports the number of currently open levels (1 when only the
// parameter/outermost level remains).
func (t *Table) Depth() int { return len(t.levels) }

// Declared reports whether name resolves to a binding anywhere in this
// table, searching from innermost to outermost.
func (t *Table) Declared(name string) (*Var, bool) {
	for i := len(t.levels) - 1; i >= 0; i-- {
		if v, ok := t.levels[i].declared(name); ok {
			return v, true
		}
	}
	return nil, false
}

// CanRedefine reports whether name may be declared again: false iff a
// binding already exists at the current innermost level (spec.md §4.1:
// "redeclaration within the same level is DuplicateDeclaration").
func (t *Table) CanRedefine(name string) bool {
	_, ok := t.levels[len(t.levels)-1].declared(name)
	return !ok
}

// Add allocates the next slot(s) for a new variable at the innermost level
// and returns the allocated Var. The caller is responsible for calling
// CanRedefine first; Add does not check for duplicates.
func (t *Table) Add(name string, typ types.T, isConst, uninit bool) Var {
	v := Var{Type: typ, Index: t.nextSlot, IsConst: isConst, Uninit: uninit}
	t.nextSlot += int32(typ.Slots())
	t.levels[len(t.levels)-1].add(name, v)
	return v
}

// Assign marks name as initialized. No-op if name is unknown (callers
// always check Declared first).
func (t *Table) Assign(name string) {
	if v, ok := t.Declared(name); ok {
		v.Uninit = false
	}
}

// NextSlot reports the next free slot index this table would allocate,
// i.e. the current frame size in slots.
func (t *Table) NextSlot() int32 { return t.nextSlot }

// Scopes is the single capability the analyser talks to, dispatching
// between the global VarList and the current function's Table by a
// boolean "inside a function body" flag, per spec.md §9's "Symbol-table
// shape" design note.
type Scopes struct {
	global     *Table
	fn         *Table // nil when not currently analysing a function body
	insideFunc bool
}

// NewScopes creates a Scopes with an empty global table and no active
// function.
func NewScopes() *Scopes {
	return &Scopes{global: New()}
}

// EnterFunction starts a fresh per-function Table, used for the duration of
// one function body (spec.md §3: "A local VarsTable lives for the body of
// one function").
func (s *Scopes) EnterFunction() {
	s.fn = New()
	s.insideFunc = true
}

// LeaveFunction discards the current function's Table.
func (s *Scopes) LeaveFunction() {
	s.fn = nil
	s.insideFunc = false
}

// InFunction reports whether a function body is currently being analysed.
func (s *Scopes) InFunction() bool { return s.insideFunc }

// active returns the table that new declarations/pushes/pops apply to.
func (s *Scopes) active() *Table {
	if s.insideFunc {
		return s.fn
	}
	return s.global
}

func (s *Scopes) PushLevel() { s.active().PushLevel() }
func (s *Scopes) PopLevel()  { s.active().PopLevel() }

// Declared searches the active function table (innermost to outermost)
// and, failing that, the global table, matching spec.md §4.1's
// declared(name) -> (found, scopeKind) with scopeKind=0 local, 1 global.
func (s *Scopes) Declared(name string) (*Var, Scope, bool) {
	if s.insideFunc {
		if v, ok := s.fn.Declared(name); ok {
			return v, Local, true
		}
	}
	if v, ok := s.global.Declared(name); ok {
		return v, Global, true
	}
	return nil, 0, false
}

// CanRedefine reports whether name may be declared again at the current
// innermost level of the active table.
func (s *Scopes) CanRedefine(name string) bool { return s.active().CanRedefine(name) }

// Add declares name in the active table's innermost level.
func (s *Scopes) Add(name string, typ types.T, isConst, uninit bool) Var {
	return s.active().Add(name, typ, isConst, uninit)
}

// Assign marks name as initialized, searching function scope then global
// scope exactly like Declared.
func (s *Scopes) Assign(name string) {
	if s.insideFunc {
		if _, ok := s.fn.Declared(name); ok {
			s.fn.Assign(name)
			return
		}
	}
	s.global.Assign(name)
}

// FrameSize reports the number of slots the current function's locals (plus
// parameters) occupy; only meaningful while InFunction.
func (s *Scopes) FrameSize() int32 { return s.fn.NextSlot() }

// GlobalSlotCount reports the number of slots occupied by global variables,
// i.e. the size of the VM's global region (spec.md §3).
func (s *Scopes) GlobalSlotCount() int32 { return s.global.NextSlot() }

// Package vm implements the stack-based virtual machine that executes a
// compiled C0 program (spec.md §4.3, §4.4; component 7). Its fetch-decode
// loop, step counter and frame shape are grounded on the teacher's
// lang/machine/machine.go and lang/machine/thread.go, reduced to the much
// smaller value model this language needs: no closures, cells or
// iterators, just 32-bit slots (doubles spanning two) on one flat stack
// that also holds the global region at its base.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/c0lang/c0/lang/bytecode"
)

// frame is one activation record: the function being executed, its
// program counter, and the index into the shared value stack where its
// slots begin. Grounded on dr8co-kong/vm/frame.go's flat
// Frame{cl, ip, basePointer} shape (no closures to carry, unlike the
// teacher's own machine.Frame).
type frame struct {
	fn   *bytecode.Function
	pc   int32
	base int
}

// VM executes one compiled Program. It is not safe for concurrent use;
// create one VM per run.
type VM struct {
	prog   *bytecode.Program
	limits Limits

	stdout io.Writer
	stdin  io.Reader
	scan   *bufio.Scanner

	stack []int32
	sp    int

	steps     int
	callDepth int

	trace func(TraceStep)
}

// TraceStep is a snapshot taken just before one instruction executes,
// handed to the callback installed with SetTrace. It exists for
// internal/debugtui's step debugger; ordinary compilation/execution never
// installs a trace callback.
type TraceStep struct {
	Step     int
	PC       int32
	FuncName string
	Depth    int
	Instr    bytecode.Instruction
	Stack    []int32 // snapshot of stack[:sp], owned by the caller
}

// SetTrace installs fn to be called with a TraceStep before every
// instruction the VM executes. Pass nil to disable tracing.
func (vm *VM) SetTrace(fn func(TraceStep)) { vm.trace = fn }

// New creates a VM over prog with the given resource Limits. Stdout
// defaults to os.Stdout and Stdin to os.Stdin; override with SetStdio
// before Run for testing.
func New(prog *bytecode.Program, limits Limits) *VM {
	return &VM{
		prog:   prog,
		limits: limits,
		stdout: os.Stdout,
		stdin:  os.Stdin,
		stack:  make([]int32, stackCap(limits)),
	}
}

func stackCap(l Limits) int {
	if l.MaxStackSlots <= 0 {
		return 1 << 16
	}
	return l.MaxStackSlots
}

// SetStdio overrides the VM's standard I/O streams, mirroring the
// teacher's Thread.Stdout/Stdin fields.
func (vm *VM) SetStdio(stdin io.Reader, stdout io.Writer) {
	vm.stdin = stdin
	vm.stdout = stdout
	vm.scan = nil
}

// Run executes the program's global initializer sequence followed by a
// call to main, returning main's exit value (0 if main is declared void)
// or the first runtime fault.
func (vm *VM) Run() (int32, error) {
	if err := vm.runSequence(vm.prog.Start, nil); err != nil {
		return 0, err
	}

	mainFn, ok := vm.prog.LookupFunction("main")
	if !ok {
		return 0, &Error{Code: UndefinedFunc, Msg: "no main function"}
	}
	base := vm.sp
	if err := vm.call(mainFn); err != nil {
		return 0, err
	}
	if vm.sp > base {
		return vm.stack[base], nil
	}
	return 0, nil
}

// call pushes a new frame for fn (whose arguments, if any, are already on
// top of the stack) and runs it to completion. On return, fn's own return
// value (if any) sits exactly where its arguments used to be — IRET/DRET
// reset the stack pointer to the frame's base and then push the result,
// so the caller sees its argument slots transparently replaced by the
// result, precisely as an ordinary pushed value would be.
func (vm *VM) call(fn *bytecode.Function) error {
	base := vm.sp - int(fn.ParamSlotCount)
	if base < 0 {
		base = 0
	}
	fr := &frame{fn: fn, base: base}
	return vm.runSequence(fn.Instructions, fr)
}

// runSequence runs one instruction stream (either the global start
// sequence, with fr == nil, or a function body) until it falls off the
// end (start sequence) or executes a return opcode (function body). A
// value-stack slot exhaustion surfaces as a Go out-of-range panic from
// push/pushDouble; it is recovered here and reported as a proper Error
// rather than crashing the host process, matching the teacher's own
// "application panics must not escape the interpreter" discipline
// (lang/machine/machine.go's deferred iterstack cleanup comment).
func (vm *VM) runSequence(code []bytecode.Instruction, fr *frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Code: StackExhausted, Msg: fmt.Sprintf("value stack exhausted: %v", r)}
		}
	}()

	pc := int32(0)
	for int(pc) < len(code) {
		vm.steps++
		if vm.limits.MaxSteps > 0 && vm.steps > vm.limits.MaxSteps {
			return &Error{Code: StepLimitReached, PC: pc, Msg: "instruction step limit exceeded"}
		}

		ins := code[pc]
		next := pc + 1

		if vm.trace != nil {
			name := "<start>"
			if fr != nil {
				name = fr.fn.Name
			}
			snap := make([]int32, vm.sp)
			copy(snap, vm.stack[:vm.sp])
			vm.trace(TraceStep{
				Step:     vm.steps,
				PC:       pc,
				FuncName: name,
				Depth:    vm.callDepth,
				Instr:    ins,
				Stack:    snap,
			})
		}

		switch ins.Op {
		case bytecode.NOP:

		case bytecode.BIPUSH, bytecode.IPUSH:
			vm.push(ins.X)

		case bytecode.POP:
			vm.sp--
		case bytecode.POP2:
			vm.sp -= 2

		case bytecode.LOADC:
			c := vm.prog.Constants[ins.X]
			if c.Kind == bytecode.ConstDouble {
				vm.pushDouble(c.Dbl)
			} else {
				vm.push(c.Int)
			}

		case bytecode.LOADA:
			addr := int32(ins.Y)
			if ins.X == 1 { // symtab.Global
				vm.push(addr)
			} else if fr != nil {
				vm.push(int32(fr.base) + addr)
			} else {
				vm.push(addr)
			}

		case bytecode.ILOAD:
			addr := vm.pop()
			vm.push(vm.stack[addr])
		case bytecode.DLOAD:
			addr := vm.pop()
			vm.pushDouble(vm.readDouble(int(addr)))

		case bytecode.ISTORE, bytecode.CSTORE:
			v := vm.pop()
			addr := vm.pop()
			vm.stack[addr] = v
		case bytecode.DSTORE:
			v := vm.popDouble()
			addr := vm.pop()
			vm.writeDouble(int(addr), v)

		case bytecode.IADD, bytecode.ISUB, bytecode.IMUL, bytecode.IDIV, bytecode.ICMP:
			b, a := vm.pop(), vm.pop()
			v, err := intArith(ins.Op, a, b, pc)
			if err != nil {
				return err
			}
			vm.push(v)
		case bytecode.INEG:
			vm.push(-vm.pop())

		case bytecode.DADD, bytecode.DSUB, bytecode.DMUL, bytecode.DDIV:
			b, a := vm.popDouble(), vm.popDouble()
			v, err := dblArith(ins.Op, a, b, pc)
			if err != nil {
				return err
			}
			vm.pushDouble(v)
		case bytecode.DNEG:
			vm.pushDouble(-vm.popDouble())
		case bytecode.DCMP:
			b, a := vm.popDouble(), vm.popDouble()
			vm.push(sign64(a - b))

		case bytecode.I2D:
			vm.pushDouble(float64(vm.pop()))
		case bytecode.D2I:
			vm.push(int32(vm.popDouble()))
		case bytecode.I2C:
			vm.push(vm.pop() & 0xff)

		case bytecode.JMP:
			next = ins.X
		case bytecode.JE:
			if vm.pop() == 0 {
				next = ins.X
			}
		case bytecode.JNE:
			if vm.pop() != 0 {
				next = ins.X
			}
		case bytecode.JL:
			if vm.pop() < 0 {
				next = ins.X
			}
		case bytecode.JLE:
			if vm.pop() <= 0 {
				next = ins.X
			}
		case bytecode.JG:
			if vm.pop() > 0 {
				next = ins.X
			}
		case bytecode.JGE:
			if vm.pop() >= 0 {
				next = ins.X
			}

		case bytecode.CALL:
			if vm.limits.MaxCallDepth > 0 && vm.callDepth >= vm.limits.MaxCallDepth {
				return &Error{Code: CallStackFull, PC: pc, Msg: "call stack depth limit exceeded"}
			}
			callee := vm.prog.Functions[ins.X]
			vm.callDepth++
			err := vm.call(callee)
			vm.callDepth--
			if err != nil {
				return err
			}

		case bytecode.RET:
			if fr != nil {
				vm.sp = fr.base
			}
			return nil
		case bytecode.IRET:
			v := vm.pop()
			if fr != nil {
				vm.sp = fr.base
			}
			vm.push(v)
			return nil
		case bytecode.DRET:
			v := vm.popDouble()
			if fr != nil {
				vm.sp = fr.base
			}
			vm.pushDouble(v)
			return nil

		case bytecode.IPRINT:
			fmt.Fprintf(vm.stdout, "%d", vm.pop())
		case bytecode.DPRINT:
			fmt.Fprintf(vm.stdout, "%.6f", vm.popDouble())
		case bytecode.CPRINT:
			vm.stdout.Write([]byte{byte(vm.pop())})
		case bytecode.SPRINT:
			vm.stdout.Write([]byte(vm.prog.Constants[ins.X].Str))
		case bytecode.PRINTL:
			vm.stdout.Write([]byte{'\n'})

		case bytecode.ISCAN:
			tok, err := vm.scanToken()
			if err != nil {
				return &Error{Code: ScanFailed, PC: pc, Msg: err.Error()}
			}
			n, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return &Error{Code: ScanFailed, PC: pc, Msg: fmt.Sprintf("not an integer: %q", tok)}
			}
			vm.push(int32(n))
		case bytecode.CSCAN:
			tok, err := vm.scanToken()
			if err != nil {
				return &Error{Code: ScanFailed, PC: pc, Msg: err.Error()}
			}
			vm.push(int32(tok[0]))
		case bytecode.DSCAN:
			tok, err := vm.scanToken()
			if err != nil {
				return &Error{Code: ScanFailed, PC: pc, Msg: err.Error()}
			}
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return &Error{Code: ScanFailed, PC: pc, Msg: fmt.Sprintf("not a number: %q", tok)}
			}
			vm.pushDouble(f)

		default:
			return &Error{Code: InternalFault, PC: pc, Msg: fmt.Sprintf("illegal opcode %s", ins.Op)}
		}

		pc = next
	}
	return nil
}

func (vm *VM) push(v int32) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() int32 {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) pushDouble(f float64) {
	bits := math.Float64bits(f)
	vm.stack[vm.sp] = int32(bits >> 32)
	vm.stack[vm.sp+1] = int32(bits)
	vm.sp += 2
}

func (vm *VM) popDouble() float64 {
	vm.sp -= 2
	return vm.readDouble(vm.sp)
}

func (vm *VM) readDouble(addr int) float64 {
	bits := uint64(uint32(vm.stack[addr]))<<32 | uint64(uint32(vm.stack[addr+1]))
	return math.Float64frombits(bits)
}

func (vm *VM) writeDouble(addr int, f float64) {
	bits := math.Float64bits(f)
	vm.stack[addr] = int32(bits >> 32)
	vm.stack[addr+1] = int32(bits)
}

func (vm *VM) scanToken() (string, error) {
	if vm.scan == nil {
		vm.scan = bufio.NewScanner(vm.stdin)
		vm.scan.Split(bufio.ScanWords)
	}
	if !vm.scan.Scan() {
		if err := vm.scan.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return vm.scan.Text(), nil
}

func intArith(op bytecode.Opcode, a, b int32, pc int32) (int32, error) {
	switch op {
	case bytecode.IADD:
		return a + b, nil
	case bytecode.ISUB:
		return a - b, nil
	case bytecode.IMUL:
		return a * b, nil
	case bytecode.IDIV:
		if b == 0 {
			return 0, &Error{Code: DivisionByZero, PC: pc, Msg: "integer division by zero"}
		}
		return a / b, nil
	default: // ICMP
		return int32(sign64(float64(a) - float64(b))), nil
	}
}

func dblArith(op bytecode.Opcode, a, b float64, pc int32) (float64, error) {
	switch op {
	case bytecode.DADD:
		return a + b, nil
	case bytecode.DSUB:
		return a - b, nil
	case bytecode.DMUL:
		return a * b, nil
	default: // DDIV
		if b == 0 {
			return 0, &Error{Code: DivisionByZero, PC: pc, Msg: "floating-point division by zero"}
		}
		return a / b, nil
	}
}

func sign64(d float64) int32 {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

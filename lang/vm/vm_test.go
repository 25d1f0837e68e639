package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/c0lang/c0/lang/analyser"
	"github.com/c0lang/c0/lang/bytecode"
	"github.com/c0lang/c0/lang/vm"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *vm.VM {
	t.Helper()
	prog, err := analyser.Analyse([]byte(src))
	require.NoError(t, err)
	limits, err := vm.DefaultLimits()
	require.NoError(t, err)
	return vm.New(prog, limits)
}

func runWithIO(t *testing.T, src, stdin string) (string, int32, error) {
	t.Helper()
	m := compile(t, src)
	var out bytes.Buffer
	m.SetStdio(strings.NewReader(stdin), &out)
	code, err := m.Run()
	return out.String(), code, err
}

func TestRunArithmetic(t *testing.T) {
	out, code, err := runWithIO(t, `
		int main() {
			print(1 + 2 * 3);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, int32(0), code)
	require.Equal(t, "7\n", out)
}

func TestRunMixedArithmeticPromotion(t *testing.T) {
	out, _, err := runWithIO(t, `
		int main() {
			double d;
			d = 1 + 1.5;
			print(d);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "2.500000\n", out)
}

func TestRunIfElse(t *testing.T) {
	out, _, err := runWithIO(t, `
		int main() {
			int x;
			x = 5;
			if (x > 3) {
				print(1);
			} else {
				print(0);
			}
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
}

func TestRunWhileLoop(t *testing.T) {
	out, _, err := runWithIO(t, `
		int main() {
			int i;
			int sum;
			i = 1;
			sum = 0;
			while (i <= 5) {
				sum = sum + i;
				i = i + 1;
			}
			print(sum);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "15\n", out)
}

func TestRunRecursiveFactorial(t *testing.T) {
	out, _, err := runWithIO(t, `
		int fact(int n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		int main() {
			print(fact(6));
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "720\n", out)
}

func TestRunScanAndPrint(t *testing.T) {
	out, _, err := runWithIO(t, `
		int main() {
			int x;
			int y;
			scan(x);
			scan(y);
			print(x + y);
			return 0;
		}
	`, "3 4\n")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestRunDivisionByZeroIsRuntimeFault(t *testing.T) {
	_, _, err := runWithIO(t, `
		int main() {
			int x;
			x = 1 / 0;
			return x;
		}
	`, "")
	require.Error(t, err)
	verr, ok := err.(*vm.Error)
	require.True(t, ok)
	require.Equal(t, vm.DivisionByZero, verr.Code)
}

func TestRunVoidFunctionCall(t *testing.T) {
	out, _, err := runWithIO(t, `
		void greet(int n) {
			print("hi", n);
		}
		int main() {
			greet(3);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "hi 3\n", out)
}

func TestRunGlobalsInitialized(t *testing.T) {
	out, _, err := runWithIO(t, `
		int counter = 41;
		int main() {
			counter = counter + 1;
			print(counter);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestRunStepLimitReached(t *testing.T) {
	prog := mustAnalyse(t, `
		int main() {
			int i;
			i = 0;
			while (i < 1000000) {
				i = i + 1;
			}
			return i;
		}
	`)
	limits, err := vm.DefaultLimits()
	require.NoError(t, err)
	limits.MaxSteps = 10
	m := vm.New(prog, limits)
	var out bytes.Buffer
	m.SetStdio(strings.NewReader(""), &out)
	_, err = m.Run()
	require.Error(t, err)
	verr, ok := err.(*vm.Error)
	require.True(t, ok)
	require.Equal(t, vm.StepLimitReached, verr.Code)
}

func mustAnalyse(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	prog, err := analyser.Analyse([]byte(src))
	require.NoError(t, err)
	return prog
}

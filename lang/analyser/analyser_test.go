package analyser

import (
	"testing"

	"github.com/c0lang/c0/lang/bytecode"
	"github.com/stretchr/testify/require"
)

func mustAnalyse(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	p, err := Analyse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestAnalyseMinimalMain(t *testing.T) {
	p := mustAnalyse(t, `int main() { return 0; }`)
	fn, ok := p.LookupFunction("main")
	require.True(t, ok)
	require.Equal(t, bytecode.IRET, fn.Instructions[len(fn.Instructions)-2].Op)
	require.Equal(t, bytecode.RET, fn.Instructions[len(fn.Instructions)-1].Op)
}

func TestAnalyseRequiresMain(t *testing.T) {
	_, err := Analyse([]byte(`int notmain() { return 0; }`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NeedMain, aerr.Code)
}

func TestAnalyseArithmeticAndCoercion(t *testing.T) {
	p := mustAnalyse(t, `
		int main() {
			double d;
			int i;
			i = 3;
			d = i + 1.5;
			print(d);
			return 0;
		}
	`)
	fn, _ := p.LookupFunction("main")
	var sawI2D bool
	for _, ins := range fn.Instructions {
		if ins.Op == bytecode.I2D {
			sawI2D = true
		}
	}
	require.True(t, sawI2D, "mixing int and double must emit an i2d promotion")
}

func TestAnalyseIfElseBranchesPatched(t *testing.T) {
	p := mustAnalyse(t, `
		int main() {
			int x;
			x = 1;
			if (x < 2) {
				print(1);
			} else {
				print(0);
			}
			return 0;
		}
	`)
	fn, _ := p.LookupFunction("main")
	for i, ins := range fn.Instructions {
		if bytecode.IsJump(ins.Op) {
			require.NotZerof(t, ins.X, "instruction %d: branch placeholder was never patched", i)
			require.GreaterOrEqualf(t, int(ins.X), 0, "instruction %d: jump target must be non-negative", i)
			require.LessOrEqualf(t, int(ins.X), len(fn.Instructions), "instruction %d: jump target must land within the function", i)
		}
	}
}

func TestAnalyseWhileLoopBacklinks(t *testing.T) {
	p := mustAnalyse(t, `
		int main() {
			int i;
			i = 0;
			while (i < 10) {
				i = i + 1;
			}
			return i;
		}
	`)
	fn, _ := p.LookupFunction("main")
	var sawBackJump bool
	for i, ins := range fn.Instructions {
		if ins.Op == bytecode.JMP && int(ins.X) < i {
			sawBackJump = true
		}
	}
	require.True(t, sawBackJump, "while loop must end with a backward jmp to its condition")
}

func TestAnalyseScanAndPrint(t *testing.T) {
	p := mustAnalyse(t, `
		int main() {
			int x;
			scan(x);
			print("x = ", x);
			return 0;
		}
	`)
	fn, _ := p.LookupFunction("main")
	var sawScan, sawSprint, sawIprint bool
	for _, ins := range fn.Instructions {
		switch ins.Op {
		case bytecode.ISCAN:
			sawScan = true
		case bytecode.SPRINT:
			sawSprint = true
		case bytecode.IPRINT:
			sawIprint = true
		}
	}
	require.True(t, sawScan)
	require.True(t, sawSprint)
	require.True(t, sawIprint)
}

func TestAnalyseRecursiveCall(t *testing.T) {
	p := mustAnalyse(t, `
		int fact(int n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		int main() {
			print(fact(5));
			return 0;
		}
	`)
	fn, ok := p.LookupFunction("fact")
	require.True(t, ok)
	var sawCall bool
	for _, ins := range fn.Instructions {
		if ins.Op == bytecode.CALL && ins.X == fn.FuncIndex {
			sawCall = true
		}
	}
	require.True(t, sawCall, "fact must call itself")
}

func TestAnalyseUndeclaredIdentIsError(t *testing.T) {
	_, err := Analyse([]byte(`int main() { return y; }`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NotDeclared, aerr.Code)
}

func TestAnalyseUseBeforeInitIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		int main() {
			int x;
			print(x);
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NotInitialized, aerr.Code)
}

func TestAnalyseAssignToConstantIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		int main() {
			const int x = 1;
			x = 2;
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, AssignToConstant, aerr.Code)
}

func TestAnalyseDuplicateDeclarationIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		int main() {
			int x;
			int x;
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, DuplicateDeclaration, aerr.Code)
}

func TestAnalyseShadowingAcrossLevelsIsAllowed(t *testing.T) {
	mustAnalyse(t, `
		int main() {
			int x;
			x = 1;
			{
				int x;
				x = 2;
				print(x);
			}
			print(x);
			return 0;
		}
	`)
}

func TestAnalyseFunctionParamCountMismatchIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		int add(int a, int b) { return a + b; }
		int main() {
			print(add(1));
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, FunctionParams, aerr.Code)
}

func TestAnalyseVoidUsedInExpressionIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		void f() { }
		int main() {
			print(f() + 1);
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, Void, aerr.Code)
}

func TestAnalyseVoidCallAsStatementIsFine(t *testing.T) {
	mustAnalyse(t, `
		void greet() { print("hi"); }
		int main() {
			greet();
			return 0;
		}
	`)
}

func TestAnalyseReservedKeywordIsError(t *testing.T) {
	_, err := Analyse([]byte(`
		int main() {
			int i;
			for (i = 0; i < 1; i = i + 1) { }
			return 0;
		}
	`))
	require.Error(t, err)
	aerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ReservedWordUnsupported, aerr.Code)
}

func TestAnalyseCastExpression(t *testing.T) {
	p := mustAnalyse(t, `
		int main() {
			double d;
			d = 3.9;
			print((int) d);
			return 0;
		}
	`)
	fn, _ := p.LookupFunction("main")
	var sawD2I bool
	for _, ins := range fn.Instructions {
		if ins.Op == bytecode.D2I {
			sawD2I = true
		}
	}
	require.True(t, sawD2I)
}

func TestAnalyseGlobalsInStartSequence(t *testing.T) {
	p := mustAnalyse(t, `
		int counter = 0;
		int main() {
			counter = counter + 1;
			return counter;
		}
	`)
	require.NotEmpty(t, p.Start, "global initializer must land in the start sequence")
}

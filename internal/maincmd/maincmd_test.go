package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/c0lang/c0/internal/maincmd"
)

// run executes the cc0 CLI against a source string, writing it to a
// temporary file first (the CLI only reads "-" for stdin, everything else
// is a path), and returns stdout/stderr and the exit code.
func run(t *testing.T, src, stdin string, flags ...string) (stdout, stderr string, code mainer.ExitCode) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "in.c0")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errOut,
	}

	args := append([]string{"cc0"}, flags...)
	args = append(args, path)

	c := maincmd.Cmd{}
	code = c.Main(args, stdio)
	return out.String(), errOut.String(), code
}

// The six end-to-end scenarios of spec.md §8.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		stdin  string
		want   string
		errWant bool
	}{
		{
			name: "arithmetic",
			src:  `int main(){ print(1+2*3); return 0; }`,
			want: "7\n",
		},
		{
			name:  "scan and square",
			src:   `int main(){ int a; scan(a); print(a*a); return 0; }`,
			stdin: "6",
			want:  "36\n",
		},
		{
			name: "while sum",
			src: `int main(){ int i=0; int s=0; while(i<=10){ s=s+i; i=i+1; } print(s); return 0; }`,
			want: "55\n",
		},
		{
			name: "double call",
			src:  `double f(double x){ return x*0.5; } int main(){ print(f(3)); return 0; }`,
			want: "1.500000\n",
		},
		{
			name:    "assign to const",
			src:     `int main(){ const int a=2; a=3; return 0; }`,
			errWant: true,
		},
		{
			name:    "use before init",
			src:     `int main(){ int x; print(x); return 0; }`,
			errWant: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, errOut, code := run(t, tc.src, tc.stdin, "-r", "-o", filepath.Join(t.TempDir(), "out"))
			if tc.errWant {
				require.NotEqual(t, mainer.Success, code)
				require.NotEmpty(t, errOut)
				return
			}
			require.Equal(t, mainer.Success, code, "stderr: %s", errOut)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestTokensMode(t *testing.T) {
	out, _, code := run(t, `int main(){ return 0; }`, "", "-t", "-o", "-")
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out, "int")
	require.Contains(t, out, "identifier")
}

func TestAssemblyMode(t *testing.T) {
	out, _, code := run(t, `int main(){ return 0; }`, "", "-s", "-o", "-")
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out, ".constants:")
	require.Contains(t, out, ".functions:")
}

func TestCompileModeWritesBinaryMagic(t *testing.T) {
	out, _, code := run(t, `int main(){ return 0; }`, "", "-c", "-o", "-")
	require.Equal(t, mainer.Success, code)
	require.GreaterOrEqual(t, len(out), 4)
	require.Equal(t, []byte{0x43, 0x30, 0x3a, 0x29}, []byte(out[:4]))
}

func TestRejectsMultipleModes(t *testing.T) {
	_, _, code := run(t, `int main(){ return 0; }`, "", "-t", "-s")
	require.NotEqual(t, mainer.Success, code)
}

func TestRejectsNoMode(t *testing.T) {
	_, _, code := run(t, `int main(){ return 0; }`, "")
	require.NotEqual(t, mainer.Success, code)
}

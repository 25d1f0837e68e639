// Package maincmd implements the cc0 command-line front end: flag parsing
// and dispatch to the four pipeline stages of spec.md §6.1 (token listing,
// assembly listing, binary compilation, compile-then-execute) and to the
// interactive step debugger ("-i"). It follows
// the teacher's internal/maincmd/maincmd.go shape (a flag-tagged Cmd struct
// driven by mainer.Parser, a Validate method, a Main method returning a
// mainer.ExitCode) adapted to C0's single-command, flag-selected interface
// rather than nenuphar's named subcommands.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "cc0"

var (
	shortUsage = fmt.Sprintf(`
usage: %s <input> [-t | -s | -c | -r] [-o <output>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s <input> [-t | -s | -c | -r] [-o <output>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the C0 language.

Exactly one of the following mode flags selects what %[1]s does with
<input> (use "-" for <input> to read source from stdin):
       -t --tokens               Emit a token listing (text).
       -s --assembly             Emit an assembly-style bytecode listing
                                 (text).
       -c --compile              Compile to a binary bytecode file.
       -r --run                  Compile to a binary bytecode file, then
                                 execute it.
       -i --trace                Compile and run under the interactive
                                 step debugger.

Valid flag options are:
       -o --output <path>        Destination path (default "out"); "-"
                                 denotes stdout.
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information on the C0 language:
       https://github.com/c0lang/c0
`, binName)
)

// Cmd holds the parsed command line. Fields tagged "flag" are populated by
// mainer.Parser, matching the teacher's struct-tag-driven flag parsing.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Tokens   bool   `flag:"t,tokens"`
	Assembly bool   `flag:"s,assembly"`
	Compile  bool   `flag:"c,compile"`
	Run      bool   `flag:"r,run"`
	Trace    bool   `flag:"i,trace"`
	Output   string `flag:"o,output"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

// Validate enforces spec.md §6.1: exactly one input path, at most one of
// -t/-s/-c (and -r, which behaves as compile-then-execute and so
// conflicts with the same set), and fills in the default output path.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	modes := 0
	for _, set := range []bool{c.Tokens, c.Assembly, c.Compile} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("at most one of -t, -s, -c may be specified")
	}
	if (c.Run || c.Trace) && modes > 0 {
		return errors.New("-r/-i cannot be combined with -t, -s or -c")
	}
	if c.Run && c.Trace {
		return errors.New("-r and -i cannot be combined")
	}
	if modes == 0 && !c.Run && !c.Trace {
		return errors.New("one of -t, -s, -c, -r or -i must be specified")
	}

	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input file must be provided, got %d", len(c.args))
	}

	if c.Output == "" {
		c.Output = "out"
	}
	return nil
}

// Main parses args, validates them, and dispatches to the selected
// pipeline stage, returning an ExitCode per spec.md §6.1 (0 on success, 2
// on usage or compile/runtime failure).
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	input := c.args[0]

	var err error
	switch {
	case c.Tokens:
		err = c.tokens(ctx, stdio, input)
	case c.Assembly:
		err = c.assembly(ctx, stdio, input)
	case c.Compile:
		err = c.compile(ctx, stdio, input)
	case c.Run:
		err = c.run(ctx, stdio, input)
	case c.Trace:
		err = c.trace(ctx, stdio, input)
	}
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		// Compile and runtime failures share the usage-error exit status (2).
		return mainer.InvalidArgs
	}
	return mainer.Success
}

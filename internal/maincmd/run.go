package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/c0lang/c0/lang/analyser"
	"github.com/c0lang/c0/lang/binfmt"
	"github.com/c0lang/c0/lang/vm"
)

// run implements the "-r" mode: compile to binary exactly as "-c" does
// (spec.md §6.1, "-r implies -c"), then decode the just-written artifact
// back and execute it. Round-tripping through the binary format rather
// than interpreting the in-memory *bytecode.Program directly exercises
// spec.md §8 invariant 6 (encode(decode(bin)) == bin) on every "-r" run,
// the same way invoking "-c" then a separate loader would.
func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio, path string) error {
	src, err := readSource(stdio, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	prog, err := analyser.Analyse(src)
	if err != nil {
		return err
	}

	bin := binfmt.Encode(prog)
	if err := writeOutput(stdio, c.Output, bin); err != nil {
		return err
	}

	loaded, err := binfmt.Decode(bin)
	if err != nil {
		return err
	}

	limits, err := vm.DefaultLimits()
	if err != nil {
		return err
	}

	machine := vm.New(loaded, limits)
	machine.SetStdio(stdio.Stdin, stdio.Stdout)

	_, err = machine.Run()
	return err
}

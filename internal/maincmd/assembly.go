package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/c0lang/c0/lang/analyser"
	"github.com/c0lang/c0/lang/binfmt"
)

// assembly implements the "-s" mode: analyse the source and emit the
// assembly-style text listing of spec.md §6.2.
func (c *Cmd) assembly(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := readSource(stdio, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	prog, err := analyser.Analyse(src)
	if err != nil {
		return err
	}

	return writeText(stdio, c.Output, binfmt.Disassemble(prog))
}

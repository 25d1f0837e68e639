package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/c0lang/c0/lang/analyser"
	"github.com/c0lang/c0/lang/binfmt"
)

// compile implements the "-c" mode: analyse the source and write the
// resulting program as the big-endian binary of spec.md §6.3.
func (c *Cmd) compile(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := readSource(stdio, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	prog, err := analyser.Analyse(src)
	if err != nil {
		return err
	}

	return writeOutput(stdio, c.Output, binfmt.Encode(prog))
}

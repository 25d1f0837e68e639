package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/c0lang/c0/internal/debugtui"
	"github.com/c0lang/c0/lang/analyser"
	"github.com/c0lang/c0/lang/vm"
)

// trace implements the "-i" mode: compile src and open the interactive
// step debugger (internal/debugtui) over a recorded execution trace.
func (c *Cmd) trace(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := readSource(stdio, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	prog, err := analyser.Analyse(src)
	if err != nil {
		return err
	}

	limits, err := vm.DefaultLimits()
	if err != nil {
		return err
	}

	return debugtui.Run(prog, limits)
}

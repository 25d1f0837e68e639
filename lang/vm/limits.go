package vm

import "github.com/caarlos0/env/v6"

// Limits bounds the resources a single VM run may consume: how many
// instructions it may execute, how deep its call stack may grow, and how
// many 32-bit slots its value stack may hold. A MaxSteps or MaxCallDepth
// value <= 0 means unlimited, matching the teacher's
// Thread.MaxSteps/MaxCallStackDepth convention (lang/machine/thread.go); a
// MaxStackSlots value <= 0 gives a fixed 65536-slot value stack, which is
// not grown. The struct tags let an operator
// override any of them from the environment, e.g. when running untrusted
// programs as part of a batch grading pipeline.
type Limits struct {
	MaxSteps      int `env:"C0_MAX_STEPS" envDefault:"10000000"`
	MaxCallDepth  int `env:"C0_MAX_CALL_DEPTH" envDefault:"1024"`
	MaxStackSlots int `env:"C0_MAX_STACK_SLOTS" envDefault:"1048576"`
}

// DefaultLimits returns the Limits the struct tags describe, applying any
// C0_MAX_* environment overrides. The defaults alone always parse; an
// error is returned when one of the C0_MAX_* variables holds a value that
// is not an integer.
func DefaultLimits() (Limits, error) {
	var l Limits
	if err := env.Parse(&l); err != nil {
		return Limits{}, err
	}
	return l, nil
}

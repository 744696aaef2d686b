package kernels

import (
	"errors"
	"fmt"

	"github.com/san-kum/wavestep/internal/grid"
)

var (
	// ErrAliased indicates a written array shares storage with an input
	// read at neighbouring points or by another component's update.
	ErrAliased = errors.New("kernels: written array aliases an input")

	// ErrNonFinite indicates NaN or Inf in an array after a kernel call.
	ErrNonFinite = errors.New("kernels: non-finite value")
)

// KernelError ties a precondition failure to the kernel that rejected it.
type KernelError struct {
	Kernel Kind
	Err    error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kernel, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// NonFiniteError locates the first NaN or Inf found by the finite check.
type NonFiniteError struct {
	Kernel    Kind
	Component string
	I, J, K   int
	Value     float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s: %v in %s at (%d,%d,%d): %g", e.Kernel, ErrNonFinite, e.Component, e.I, e.J, e.K, e.Value)
}

func (e *NonFiniteError) Unwrap() error {
	return ErrNonFinite
}

func aliasErr(a, b grid.Named) error {
	return fmt.Errorf("%w: %s and %s share storage", ErrAliased, a.Name, b.Name)
}

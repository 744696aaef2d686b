package grid

import "errors"

var (
	// ErrShapeMismatch indicates arrays passed together disagree in shape.
	ErrShapeMismatch = errors.New("grid: shape mismatch")

	// ErrLaunchDomain indicates a launch domain reaching past the array bounds.
	ErrLaunchDomain = errors.New("grid: launch domain exceeds array bounds")

	// ErrNilField indicates a missing array.
	ErrNilField = errors.New("grid: nil field")
)

package grid

import "fmt"

type Shape struct {
	NX, NY, NZ int
}

func (s Shape) Len() int { return s.NX * s.NY * s.NZ }

// Strides returns the flat-index step along x, y and z.
func (s Shape) Strides() (sx, sy, sz int) {
	return 1, s.NX, s.NX * s.NY
}

func (s Shape) Index(i, j, k int) int {
	return i + s.NX*(j+s.NY*k)
}

func (s Shape) Valid() bool {
	return s.NX > 0 && s.NY > 0 && s.NZ > 0
}

// Interior is the launch domain for offset-style kernels: shape-2 on every axis.
func (s Shape) Interior() Offset {
	return Offset{NX: max(s.NX-2, 0), NY: max(s.NY-2, 0), NZ: max(s.NZ-2, 0)}
}

// Full is the launch domain for guarded kernels.
func (s Shape) Full() Guarded {
	return Guarded(s)
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.NX, s.NY, s.NZ)
}

// Offset is a launch domain the kernel shifts by +1 on every axis. Point
// (i, j, k) of the domain addresses array element (i+1, j+1, k+1).
type Offset struct {
	NX, NY, NZ int
}

// Fits reports whether the shifted domain stays inside an array of shape s.
func (o Offset) Fits(s Shape) error {
	if o.NX < 0 || o.NY < 0 || o.NZ < 0 {
		return fmt.Errorf("%w: offset domain %dx%dx%d is negative", ErrLaunchDomain, o.NX, o.NY, o.NZ)
	}
	if o.NX+2 > s.NX || o.NY+2 > s.NY || o.NZ+2 > s.NZ {
		return fmt.Errorf("%w: offset domain %dx%dx%d needs arrays of at least %dx%dx%d, have %s",
			ErrLaunchDomain, o.NX, o.NY, o.NZ, o.NX+2, o.NY+2, o.NZ+2, s)
	}
	return nil
}

// Guarded is a launch domain covering the array itself. The kernel applies
// an explicit bounds check and only updates 1 <= idx <= n-2 on each axis.
type Guarded struct {
	NX, NY, NZ int
}

func (g Guarded) Fits(s Shape) error {
	if g.NX < 0 || g.NY < 0 || g.NZ < 0 {
		return fmt.Errorf("%w: guarded domain %dx%dx%d is negative", ErrLaunchDomain, g.NX, g.NY, g.NZ)
	}
	if g.NX > s.NX || g.NY > s.NY || g.NZ > s.NZ {
		return fmt.Errorf("%w: guarded domain %dx%dx%d larger than arrays %s", ErrLaunchDomain, g.NX, g.NY, g.NZ, s)
	}
	return nil
}

// Inside is the interior guard for an array of shape s.
func Inside(i, n int) bool {
	return i > 0 && i < n-1
}

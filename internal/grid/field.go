package grid

import (
	"fmt"
	"math"
	"unsafe"
)

// Scalar is one real value per grid point.
type Scalar struct {
	Shape Shape
	Data  []float64
}

func NewScalar(s Shape) *Scalar {
	return &Scalar{Shape: s, Data: make([]float64, s.Len())}
}

func FilledScalar(s Shape, v float64) *Scalar {
	f := NewScalar(s)
	f.Fill(v)
	return f
}

func (f *Scalar) At(i, j, k int) float64     { return f.Data[f.Shape.Index(i, j, k)] }
func (f *Scalar) Set(i, j, k int, v float64) { f.Data[f.Shape.Index(i, j, k)] = v }

func (f *Scalar) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

func (f *Scalar) Clone() *Scalar {
	c := &Scalar{Shape: f.Shape, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

// FirstNonFinite returns the flat index of the first NaN or Inf, or -1.
func (f *Scalar) FirstNonFinite() int {
	for i, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// Vector is a field with x, y and z components on the same grid.
type Vector struct {
	X, Y, Z *Scalar
}

func NewVector(s Shape) Vector {
	return Vector{X: NewScalar(s), Y: NewScalar(s), Z: NewScalar(s)}
}

func FilledVector(s Shape, x, y, z float64) Vector {
	return Vector{X: FilledScalar(s, x), Y: FilledScalar(s, y), Z: FilledScalar(s, z)}
}

func (v Vector) Components() [3]*Scalar {
	return [3]*Scalar{v.X, v.Y, v.Z}
}

func (v Vector) Clone() Vector {
	return Vector{X: v.X.Clone(), Y: v.Y.Clone(), Z: v.Z.Clone()}
}

// Named pairs an array with the name used in error messages.
type Named struct {
	Name  string
	Field *Scalar
}

// CheckShapes verifies that every array is present, has shape s and holds
// exactly s.Len() values.
func CheckShapes(s Shape, fields ...Named) error {
	for _, f := range fields {
		if f.Field == nil {
			return fmt.Errorf("%w: %s", ErrNilField, f.Name)
		}
		if f.Field.Shape != s {
			return fmt.Errorf("%w: %s is %s, want %s", ErrShapeMismatch, f.Name, f.Field.Shape, s)
		}
		if len(f.Field.Data) != s.Len() {
			return fmt.Errorf("%w: %s holds %d values, want %d", ErrShapeMismatch, f.Name, len(f.Field.Data), s.Len())
		}
	}
	return nil
}

// Shares reports whether the data of a and b overlap in memory, including
// views at different offsets into one backing array.
func Shares(a, b *Scalar) bool {
	if a == nil || b == nil || len(a.Data) == 0 || len(b.Data) == 0 {
		return false
	}
	a0, a1 := span(a.Data)
	b0, b1 := span(b.Data)
	return a0 < b1 && b0 < a1
}

func span(d []float64) (lo, hi uintptr) {
	lo = uintptr(unsafe.Pointer(unsafe.SliceData(d)))
	return lo, lo + uintptr(len(d))*unsafe.Sizeof(d[0])
}

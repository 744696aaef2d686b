package kernels_test

import (
	"errors"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/kernels"
)

const tol = 1e-12

var _ = Describe("Displacement", func() {
	var (
		eng   *kernels.Engine
		shape grid.Shape
		rng   *rand.Rand
	)

	BeforeEach(func() {
		eng = kernels.New(kernels.Options{Workers: 3})
		shape = grid.Shape{NX: 6, NY: 5, NZ: 7}
		rng = rand.New(rand.NewPCG(1, 2))
	})

	It("adds dt*v to every interior point", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := u.Clone()

		Expect(eng.Displacement(u, v, 0.25, shape.Interior())).To(Succeed())

		Expect(u.Y.At(2, 3, 4)).To(BeNumerically("~", before.Y.At(2, 3, 4)+0.25*v.Y.At(2, 3, 4), tol))
		Expect(u.Z.At(1, 1, 1)).To(BeNumerically("~", before.Z.At(1, 1, 1)+0.25*v.Z.At(1, 1, 1), tol))
	})

	It("is linear in v", func() {
		u0 := randomVector(rng, shape)
		v1 := randomVector(rng, shape)
		v2 := randomVector(rng, shape)
		sum := grid.NewVector(shape)
		for c, comp := range sum.Components() {
			floats.AddTo(comp.Data, v1.Components()[c].Data, v2.Components()[c].Data)
		}

		once := u0.Clone()
		twice := u0.Clone()
		dt := 0.1
		Expect(eng.Displacement(once, sum, dt, shape.Interior())).To(Succeed())
		Expect(eng.Displacement(twice, v1, dt, shape.Interior())).To(Succeed())
		Expect(eng.Displacement(twice, v2, dt, shape.Interior())).To(Succeed())

		for c := range once.Components() {
			Expect(floats.EqualApprox(once.Components()[c].Data, twice.Components()[c].Data, tol)).To(BeTrue())
		}
	})

	It("leaves all six faces bit-identical", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := u.Clone()

		Expect(eng.Displacement(u, v, 1.5, shape.Interior())).To(Succeed())

		for c := range u.Components() {
			Expect(borderIdentical(u.Components()[c], before.Components()[c])).To(BeTrue())
		}
	})

	It("touches only the sub-box of a smaller offset domain", func() {
		u := grid.NewVector(shape)
		v := grid.FilledVector(shape, 1, 1, 1)

		Expect(eng.Displacement(u, v, 1, grid.Offset{NX: 1, NY: 1, NZ: 1})).To(Succeed())

		Expect(floats.Sum(u.X.Data)).To(Equal(1.0))
		Expect(u.X.At(1, 1, 1)).To(Equal(1.0))
	})

	It("allows u and v to share storage", func() {
		u := grid.FilledVector(shape, 2, 2, 2)
		Expect(eng.Displacement(u, u, 0.5, shape.Interior())).To(Succeed())
		Expect(u.X.At(1, 1, 1)).To(Equal(3.0))
	})
})

var _ = Describe("Laplacian", func() {
	var (
		eng   *kernels.Engine
		shape grid.Shape
		rng   *rand.Rand
	)

	BeforeEach(func() {
		eng = kernels.New(kernels.Options{Workers: 2})
		shape = grid.Shape{NX: 7, NY: 6, NZ: 5}
		rng = rand.New(rand.NewPCG(3, 4))
	})

	It("matches the 7-point update on the interior and skips the border", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		alpha := randomScalar(rng, shape)
		want := v.Clone()
		h := kernels.Spacing2FromSteps(0.5, 1, 2)

		refLaplacian(want, u, alpha, 0.01, h.X, h.Y, h.Z)
		Expect(eng.Laplacian(v, u, alpha, 0.01, h, shape.Full())).To(Succeed())

		for c := range v.Components() {
			Expect(floats.EqualApprox(v.Components()[c].Data, want.Components()[c].Data, tol)).To(BeTrue())
			Expect(borderIdentical(v.Components()[c], want.Components()[c])).To(BeTrue())
		}
	})

	It("leaves v unchanged when alpha is zero", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := v.Clone()

		Expect(eng.Laplacian(v, u, grid.NewScalar(shape), 0.3, kernels.Spacing2{X: 1, Y: 1, Z: 1}, shape.Full())).To(Succeed())
		Expect(vectorsIdentical(v, before)).To(BeTrue())
	})

	It("evaluates to exactly zero for an affine displacement", func() {
		u := grid.NewVector(shape)
		for k := 0; k < shape.NZ; k++ {
			for j := 0; j < shape.NY; j++ {
				for i := 0; i < shape.NX; i++ {
					u.X.Set(i, j, k, float64(2*i+3*j-k+4))
					u.Y.Set(i, j, k, float64(-i+5*k))
					u.Z.Set(i, j, k, float64(7*j))
				}
			}
		}
		v := grid.NewVector(shape)
		alpha := grid.FilledScalar(shape, 1)

		Expect(eng.Laplacian(v, u, alpha, 1, kernels.Spacing2{X: 1, Y: 1, Z: 1}, shape.Full())).To(Succeed())

		for _, comp := range v.Components() {
			for _, x := range comp.Data {
				Expect(x).To(Equal(0.0))
			}
		}
	})

	It("spreads a unit impulse to its six face neighbours", func() {
		s := grid.Shape{NX: 5, NY: 5, NZ: 5}
		u := grid.NewVector(s)
		u.X.Set(2, 2, 2, 1)
		v := grid.NewVector(s)
		alpha := grid.FilledScalar(s, 1)

		Expect(eng.Laplacian(v, u, alpha, 0.1, kernels.Spacing2{X: 1, Y: 1, Z: 1}, s.Full())).To(Succeed())

		neighbours := [][3]int{{1, 2, 2}, {3, 2, 2}, {2, 1, 2}, {2, 3, 2}, {2, 2, 1}, {2, 2, 3}}
		for _, n := range neighbours {
			Expect(v.X.At(n[0], n[1], n[2])).To(BeNumerically("~", 0.1, tol))
		}
		Expect(v.X.At(2, 2, 2)).To(BeNumerically("~", -0.6, tol))
		Expect(v.X.At(1, 1, 2)).To(Equal(0.0))
		Expect(floats.Sum(v.X.Data)).To(BeNumerically("~", 0, tol))
		Expect(floats.Max(v.Y.Data)).To(Equal(0.0))
		Expect(floats.Min(v.Z.Data)).To(Equal(0.0))
	})

	It("updates nothing on a grid without interior", func() {
		s := grid.Shape{NX: 2, NY: 5, NZ: 5}
		u := randomVector(rng, s)
		v := randomVector(rng, s)
		before := v.Clone()

		Expect(eng.Laplacian(v, u, grid.FilledScalar(s, 1), 1, kernels.Spacing2{X: 1, Y: 1, Z: 1}, s.Full())).To(Succeed())
		Expect(vectorsIdentical(v, before)).To(BeTrue())
	})

	It("gives the same answer for any worker count", func() {
		u := randomVector(rng, shape)
		alpha := randomScalar(rng, shape)
		h := kernels.Spacing2{X: 1, Y: 2, Z: 3}
		serial := grid.NewVector(shape)
		wide := grid.NewVector(shape)

		Expect(kernels.New(kernels.Options{Workers: 1}).Laplacian(serial, u, alpha, 0.2, h, shape.Full())).To(Succeed())
		Expect(kernels.New(kernels.Options{Workers: 8}).Laplacian(wide, u, alpha, 0.2, h, shape.Full())).To(Succeed())
		Expect(vectorsIdentical(serial, wide)).To(BeTrue())
	})
})

var _ = Describe("Local", func() {
	var (
		eng   *kernels.Engine
		shape grid.Shape
		rng   *rand.Rand
	)

	BeforeEach(func() {
		eng = kernels.New(kernels.Options{})
		shape = grid.Shape{NX: 4, NY: 6, NZ: 5}
		rng = rand.New(rand.NewPCG(5, 6))
	})

	It("applies decay and coupling per component", func() {
		u := grid.FilledVector(shape, 1, 2, 3)
		v := grid.FilledVector(shape, 10, 20, 30)
		beta := grid.FilledScalar(shape, 4)
		gamma := grid.FilledScalar(shape, -2)

		Expect(eng.Local(v, u, beta, gamma, 0.1, shape.Interior())).To(Succeed())

		// (1 - 0.2)*v + 0.4*u
		Expect(v.X.At(1, 2, 3)).To(BeNumerically("~", 8.4, tol))
		Expect(v.Y.At(1, 2, 3)).To(BeNumerically("~", 16.8, tol))
		Expect(v.Z.At(2, 4, 1)).To(BeNumerically("~", 25.2, tol))
		Expect(v.X.At(0, 2, 3)).To(Equal(10.0))
	})

	It("leaves v unchanged when beta and gamma are zero", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := v.Clone()
		zero := grid.NewScalar(shape)

		Expect(eng.Local(v, u, zero, zero, 0.7, shape.Interior())).To(Succeed())
		Expect(vectorsIdentical(v, before)).To(BeTrue())
	})

	It("leaves all six faces bit-identical", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := v.Clone()

		Expect(eng.Local(v, u, randomScalar(rng, shape), randomScalar(rng, shape), 0.5, shape.Interior())).To(Succeed())

		for c := range v.Components() {
			Expect(borderIdentical(v.Components()[c], before.Components()[c])).To(BeTrue())
		}
		Expect(v.X.At(1, 1, 1)).NotTo(Equal(before.X.At(1, 1, 1)))
	})
})

var _ = Describe("Gradient", func() {
	var (
		eng   *kernels.Engine
		shape grid.Shape
		rng   *rand.Rand
	)

	BeforeEach(func() {
		eng = kernels.New(kernels.Options{Workers: 4})
		shape = grid.Shape{NX: 6, NY: 7, NZ: 6}
		rng = rand.New(rand.NewPCG(7, 8))
	})

	It("matches the centred difference of eta . u on the interior", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		eta := randomVector(rng, shape)
		alpha := randomScalar(rng, shape)
		want := v.Clone()
		h := kernels.HalfSpacingFromSteps(1, 0.5, 0.25)

		refGradient(want, u, alpha, eta, 0.05, h.X, h.Y, h.Z)
		Expect(eng.Gradient(v, u, alpha, eta, 0.05, h, shape.Full())).To(Succeed())

		for c := range v.Components() {
			Expect(floats.EqualApprox(v.Components()[c].Data, want.Components()[c].Data, tol)).To(BeTrue())
			Expect(borderIdentical(v.Components()[c], want.Components()[c])).To(BeTrue())
		}
	})

	It("couples every displacement component into each velocity axis", func() {
		u := grid.NewVector(shape)
		for k := 0; k < shape.NZ; k++ {
			for j := 0; j < shape.NY; j++ {
				for i := 0; i < shape.NX; i++ {
					u.X.Set(i, j, k, float64(i))
					u.Y.Set(i, j, k, float64(k))
				}
			}
		}
		eta := grid.FilledVector(shape, 1, 2, 0)
		v := grid.NewVector(shape)
		h := kernels.HalfSpacingFromSteps(1, 1, 1)

		Expect(eng.Gradient(v, u, grid.FilledScalar(shape, 1), eta, 1, h, shape.Full())).To(Succeed())

		// w = i + 2k: d/dx gives 1, d/dy gives 0, d/dz gives 2.
		Expect(v.X.At(2, 3, 2)).To(BeNumerically("~", 1, tol))
		Expect(v.Y.At(2, 3, 2)).To(BeNumerically("~", 0, tol))
		Expect(v.Z.At(2, 3, 2)).To(BeNumerically("~", 2, tol))
		Expect(v.Z.At(2, 3, 0)).To(Equal(0.0))
	})

	It("leaves v unchanged when alpha is zero", func() {
		u := randomVector(rng, shape)
		v := randomVector(rng, shape)
		before := v.Clone()

		Expect(eng.Gradient(v, u, grid.NewScalar(shape), randomVector(rng, shape), 0.4, kernels.HalfSpacing{X: 1, Y: 1, Z: 1}, shape.Full())).To(Succeed())
		Expect(vectorsIdentical(v, before)).To(BeTrue())
	})
})

var _ = Describe("Preconditions", func() {
	var (
		eng   *kernels.Engine
		shape grid.Shape
	)

	BeforeEach(func() {
		eng = kernels.New(kernels.Options{})
		shape = grid.Shape{NX: 5, NY: 5, NZ: 5}
	})

	It("rejects mismatched shapes before writing", func() {
		u := grid.FilledVector(shape, 1, 1, 1)
		v := grid.FilledVector(shape, 1, 1, 1)
		v.Z = grid.FilledScalar(grid.Shape{NX: 5, NY: 5, NZ: 6}, 1)
		before := u.Clone()

		err := eng.Displacement(u, v, 1, shape.Interior())
		Expect(err).To(MatchError(grid.ErrShapeMismatch))
		Expect(vectorsIdentical(u, before)).To(BeTrue())

		var kerr *kernels.KernelError
		Expect(err).To(BeAssignableToTypeOf(kerr))
		Expect(err.Error()).To(HavePrefix("displacement:"))
	})

	It("rejects a mismatched coefficient field", func() {
		u := grid.NewVector(shape)
		v := grid.NewVector(shape)
		alpha := grid.NewScalar(grid.Shape{NX: 4, NY: 5, NZ: 5})

		err := eng.Laplacian(v, u, alpha, 1, kernels.Spacing2{X: 1, Y: 1, Z: 1}, shape.Full())
		Expect(err).To(MatchError(grid.ErrShapeMismatch))
		Expect(err.Error()).To(ContainSubstring("alpha"))
	})

	It("rejects launch domains past the arrays", func() {
		u := grid.NewVector(shape)
		v := grid.NewVector(shape)
		zero := grid.NewScalar(shape)

		Expect(eng.Local(v, u, zero, zero, 1, grid.Offset{NX: 5, NY: 3, NZ: 3})).To(MatchError(grid.ErrLaunchDomain))
		Expect(eng.Gradient(v, u, zero, u.Clone(), 1, kernels.HalfSpacing{}, grid.Guarded{NX: 5, NY: 5, NZ: 6})).To(MatchError(grid.ErrLaunchDomain))
	})

	It("rejects nil arrays", func() {
		u := grid.NewVector(shape)
		v := grid.NewVector(shape)
		v.Y = nil

		Expect(eng.Laplacian(v, u, grid.NewScalar(shape), 1, kernels.Spacing2{}, shape.Full())).To(MatchError(grid.ErrNilField))
		Expect(eng.Displacement(grid.Vector{}, v, 1, shape.Interior())).To(MatchError(grid.ErrNilField))
	})

	It("rejects stencil reads aliasing the written field", func() {
		u := grid.NewVector(shape)
		alpha := grid.NewScalar(shape)

		Expect(eng.Laplacian(u, u, alpha, 1, kernels.Spacing2{}, shape.Full())).To(MatchError(kernels.ErrAliased))

		eta := grid.NewVector(shape)
		v := grid.Vector{X: eta.X, Y: grid.NewScalar(shape), Z: grid.NewScalar(shape)}
		Expect(eng.Gradient(v, u, alpha, eta, 1, kernels.HalfSpacing{}, shape.Full())).To(MatchError(kernels.ErrAliased))
	})

	It("rejects pointwise reads aliasing another component's output", func() {
		u := grid.NewVector(shape)
		v := grid.NewVector(shape)
		crossed := grid.Vector{X: u.X, Y: v.Y, Z: v.Z}
		beforeU := u.Clone()

		err := eng.Displacement(crossed, grid.Vector{X: v.X, Y: u.X, Z: v.Z}, 1, shape.Interior())
		Expect(err).To(MatchError(kernels.ErrAliased))
		Expect(err.Error()).To(ContainSubstring("ux and vy"))
		Expect(vectorsIdentical(u, beforeU)).To(BeTrue())

		zero := grid.NewScalar(shape)
		Expect(eng.Local(v, grid.Vector{X: u.X, Y: v.X, Z: u.Z}, zero, zero, 1, shape.Interior())).To(MatchError(kernels.ErrAliased))
	})

	It("rejects a view offset into a stencil input", func() {
		u := grid.NewVector(shape)
		backing := make([]float64, shape.Len()+1)
		u.X.Data = backing[:shape.Len()]
		view := &grid.Scalar{Shape: shape, Data: backing[1:]}
		v := grid.Vector{X: view, Y: grid.NewScalar(shape), Z: grid.NewScalar(shape)}

		Expect(eng.Laplacian(v, u, grid.NewScalar(shape), 1, kernels.Spacing2{}, shape.Full())).To(MatchError(kernels.ErrAliased))
	})

	It("allows in-place pointwise updates of the same component", func() {
		u := grid.FilledVector(shape, 1, 2, 3)
		Expect(eng.Displacement(u, u, 1, shape.Interior())).To(Succeed())
		Expect(u.X.At(2, 2, 2)).To(Equal(2.0))
		Expect(u.Z.At(2, 2, 2)).To(Equal(6.0))
		Expect(u.Z.At(0, 2, 2)).To(Equal(3.0))

		v := grid.FilledVector(shape, 1, 1, 1)
		beta := grid.FilledScalar(shape, 1)
		Expect(eng.Local(v, v, beta, grid.NewScalar(shape), 1, shape.Interior())).To(Succeed())
		Expect(v.Y.At(2, 2, 2)).To(Equal(2.0))
	})

	It("surfaces non-finite values when checking is on", func() {
		checked := kernels.New(kernels.Options{CheckFinite: true})
		u := grid.NewVector(shape)
		v := grid.NewVector(shape)
		v.Y.Set(3, 2, 1, math.Inf(1))

		err := checked.Displacement(u, v, 1, shape.Interior())
		Expect(err).To(MatchError(kernels.ErrNonFinite))

		var nf *kernels.NonFiniteError
		Expect(errors.As(err, &nf)).To(BeTrue())
		Expect(nf.Component).To(Equal("uy"))
		Expect([]int{nf.I, nf.J, nf.K}).To(Equal([]int{3, 2, 1}))

		Expect(eng.Displacement(grid.NewVector(shape), v, 1, shape.Interior())).To(Succeed())
	})
})

var _ = Describe("Kind", func() {
	It("round-trips through its name", func() {
		for _, k := range kernels.Kinds() {
			parsed, err := kernels.ParseKind(k.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(k))
		}
		_, err := kernels.ParseKind("curl")
		Expect(err).To(HaveOccurred())
	})
})

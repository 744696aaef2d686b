// Package kernels implements the four per-point update rules of one
// leapfrog wave step on a 3D grid:
//
//   - [Engine.Displacement]: u += dt*v
//   - [Engine.Laplacian]: v += dt*alpha*lap(u)
//   - [Engine.Local]: v = (1 + dt*gamma)*v + dt*beta*u
//   - [Engine.Gradient]: v_a += dt*alpha*d_a(eta . u)
//
// Displacement and Local take a [grid.Offset] launch domain (shape-2, the
// kernel adds one to each index). Laplacian and Gradient take a
// [grid.Guarded] domain (full shape, the kernel skips the border itself).
//
// Each call validates its arguments before touching any array, sweeps the
// domain across workers split by z planes, and returns once every plane is
// done. Nothing is retained between calls. Reads and writes within one call
// never overlap across points, so stencil kernels refuse written arrays that
// share storage with arrays read at neighbour offsets.
//
// # Call order
//
// The kernels carry no notion of sequence. Which of them run, and in which
// order, belongs to the caller:
//
//	eng := kernels.New(kernels.Options{})
//	_ = eng.Laplacian(v, u, alpha, dt, h2, shape.Full())
//	_ = eng.Displacement(u, v, dt, shape.Interior())
package kernels

// Package grid provides the field storage and launch domains shared by the
// stencil kernels.
//
// Every array lives in a flat slice with x varying fastest:
//
//	idx = i + nx*(j + ny*k)
//
// Two launch domain types describe how a kernel walks the grid:
//
//   - [Offset]: the caller launches over shape-2 and the kernel adds one to
//     every index, so the one-cell border is never visited.
//   - [Guarded]: the caller launches over the full shape and the kernel
//     skips any index without a neighbour on both sides.
//
// Fields are owned by the caller. Kernels only borrow them for one call.
package grid

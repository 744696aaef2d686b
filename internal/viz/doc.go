// Package viz renders planar slices of grid fields for the terminal.
//
//   - [Plane] and [MagnitudePlane] extract a z-plane from a field
//   - [Heatmap] shades a plane with an ASCII ramp, downsampled to a width
//   - [Canvas] is a Braille canvas; [Threshold] plots the cells of a plane
//     whose magnitude exceeds a level, two by four cells per character
//
// Planes are row-major with j (y) as the row and i (x) as the column, row 0
// first.
package viz

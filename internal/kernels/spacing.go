package kernels

// Spacing2 holds the inverse squared grid spacings 1/dx^2, 1/dy^2, 1/dz^2.
type Spacing2 struct {
	X, Y, Z float64
}

// HalfSpacing holds the inverse double spacings 1/(2dx), 1/(2dy), 1/(2dz).
type HalfSpacing struct {
	X, Y, Z float64
}

func Spacing2FromSteps(dx, dy, dz float64) Spacing2 {
	return Spacing2{1 / (dx * dx), 1 / (dy * dy), 1 / (dz * dz)}
}

func HalfSpacingFromSteps(dx, dy, dz float64) HalfSpacing {
	return HalfSpacing{1 / (2 * dx), 1 / (2 * dy), 1 / (2 * dz)}
}

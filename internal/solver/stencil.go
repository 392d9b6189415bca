package solver

// Stencil returns the next value of a cell under the explicit five-point
// Laplacian update.
//
// The float64 conversions stop the compiler from fusing the multiply-adds,
// so every schedule that calls Stencil with the same inputs gets the same
// bits on every architecture.
func Stencil(center, left, right, top, bottom, alpha, dt, dx float64) float64 {
	r := alpha * dt / (dx * dx)
	lap := left + right + top + bottom - float64(4.0*center)
	return center + float64(r*lap)
}

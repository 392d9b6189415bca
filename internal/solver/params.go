package solver

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParameter = errors.New("solver: invalid parameter")

const (
	// StabilityCoefficient scales dx²/α into dt. The explicit five-point
	// scheme is stable while α·dt/dx² stays at or below StabilityLimit.
	StabilityCoefficient = 0.24
	StabilityLimit       = 0.25

	// InitialTemperature is the point source placed at (N/2, N/2).
	InitialTemperature = 100.0
)

// Params are the physical inputs of one run.
type Params struct {
	Size  int
	Steps int
	Alpha float64
	Dx    float64
}

func (p Params) Validate() error {
	if p.Size < 1 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidParameter, p.Size)
	}
	if p.Steps < 0 {
		return fmt.Errorf("%w: timesteps must not be negative, got %d", ErrInvalidParameter, p.Steps)
	}
	if !positiveFinite(p.Alpha) {
		return fmt.Errorf("%w: alpha must be positive, got %g", ErrInvalidParameter, p.Alpha)
	}
	if !positiveFinite(p.Dx) {
		return fmt.Errorf("%w: dx must be positive, got %g", ErrInvalidParameter, p.Dx)
	}
	if r := p.StabilityRatio(); !(r <= StabilityLimit) {
		return fmt.Errorf("%w: stability ratio %g exceeds %g", ErrInvalidParameter, r, StabilityLimit)
	}
	return nil
}

// Dt is the time step derived from dx and alpha.
func (p Params) Dt() float64 {
	return StabilityCoefficient * p.Dx * p.Dx / p.Alpha
}

func (p Params) StabilityRatio() float64 {
	return p.Alpha * p.Dt() / (p.Dx * p.Dx)
}

// Center is the index of the initial point source on both axes.
func (p Params) Center() int {
	return p.Size / 2
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

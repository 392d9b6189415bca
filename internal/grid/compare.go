package grid

import (
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
)

// MaxAbsDiff returns the largest absolute cell difference between a and b,
// which must have the same size. Layouts may differ.
func MaxAbsDiff(a, b Grid) (float64, error) {
	n := a.Size()
	if b.Size() != n {
		return 0, fmt.Errorf("grid: size mismatch %d != %d", n, b.Size())
	}
	return parallel.RangeReduceFloat64(
		0, n, 0,
		func(low, high int) (result float64) {
			for i := low; i < high; i++ {
				ra, rb := a.Row(i), b.Row(i)
				for j := range ra {
					result = math.Max(result, math.Abs(ra[j]-rb[j]))
				}
			}
			return
		},
		math.Max,
	), nil
}

// Equal reports whether a and b hold bit-for-bit identical values.
func Equal(a, b Grid) bool {
	n := a.Size()
	if b.Size() != n {
		return false
	}
	for i := 0; i < n; i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := range ra {
			if math.Float64bits(ra[j]) != math.Float64bits(rb[j]) {
				return false
			}
		}
	}
	return true
}

package grid

import "gonum.org/v1/gonum/mat"

// DenseGrid is the contiguous layout, backed by a row-major mat.Dense whose
// stride equals its width.
type DenseGrid struct {
	n int
	m *mat.Dense
}

func newDenseGrid(n int) *DenseGrid {
	return &DenseGrid{n: n, m: mat.NewDense(n, n, nil)}
}

func (g *DenseGrid) Size() int               { return g.n }
func (g *DenseGrid) Layout() Layout          { return Contiguous }
func (g *DenseGrid) At(i, j int) float64     { return g.m.At(i, j) }
func (g *DenseGrid) Set(i, j int, v float64) { g.m.Set(i, j, v) }
func (g *DenseGrid) Row(i int) []float64     { return g.m.RawRowView(i) }

// Data returns the flat backing buffer.
func (g *DenseGrid) Data() []float64 { return g.m.RawMatrix().Data }

func (g *DenseGrid) Release() {
	g.m = nil
}

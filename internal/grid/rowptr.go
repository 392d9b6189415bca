package grid

// RowGrid is the row-pointer layout: every row is its own allocation.
type RowGrid struct {
	n    int
	rows [][]float64
}

func newRowGrid(n int) *RowGrid {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}
	return &RowGrid{n: n, rows: rows}
}

func (g *RowGrid) Size() int               { return g.n }
func (g *RowGrid) Layout() Layout          { return RowPointer }
func (g *RowGrid) At(i, j int) float64     { return g.rows[i][j] }
func (g *RowGrid) Set(i, j int, v float64) { g.rows[i][j] = v }
func (g *RowGrid) Row(i int) []float64     { return g.rows[i] }

func (g *RowGrid) Release() {
	for i := range g.rows {
		g.rows[i] = nil
	}
	g.rows = nil
}

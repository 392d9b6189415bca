package grid

// ApplyNeumann sets every edge cell equal to its nearest interior neighbour.
//
// The column pass (left, right) runs before the row pass (top, bottom), so
// each corner ends up holding the diagonal interior value. Grids smaller than
// 2×2 have no neighbour to copy and are left as they are.
func ApplyNeumann(g Grid) {
	n := g.Size()
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		row := g.Row(i)
		row[0] = row[1]
		row[n-1] = row[n-2]
	}
	copy(g.Row(0), g.Row(1))
	copy(g.Row(n-1), g.Row(n-2))
}

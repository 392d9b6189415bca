package solver

import "github.com/0x5844/heat2D/internal/grid"

// span is a half-open block of interior cells.
type span struct {
	r0, r1 int
	c0, c1 int
}

// blocked visits the interior in row-band × column-band order. With k > 1
// every block is advanced k steps on its own tile before the next block is
// touched.
func (s *Solver) blocked(cur, next grid.Grid, k int) {
	n := cur.Size()
	b := s.opts.Blocking
	for r0 := 1; r0 < n-1; r0 += b.RowBlock {
		r1 := min(r0+b.RowBlock, n-1)
		for c0 := 1; c0 < n-1; c0 += b.ColBlock {
			c1 := min(c0+b.ColBlock, n-1)
			if k == 1 {
				s.sweep(cur, next, r0, r1, c0, c1)
				continue
			}
			s.advanceTile(cur, next, span{r0, r1, c0, c1}, k)
		}
	}
}

// advanceTile computes core k steps ahead of cur and writes it into next.
//
// The tile covers core plus a halo of k cells on each side, clipped to the
// grid. Sub-step t only trusts cells at least t cells away from a clipped
// tile side; sides lying on the grid edge stay valid because the Neumann rule
// is reapplied to them after every sub-step, in the same column-then-row
// order as grid.ApplyNeumann. After k sub-steps the core is exact.
func (s *Solver) advanceTile(cur, next grid.Grid, core span, k int) {
	n := cur.Size()
	top, bottom := max(0, core.r0-k), min(n, core.r1+k)
	left, right := max(0, core.c0-k), min(n, core.c1+k)
	cols := right - left
	size := (bottom - top) * cols

	src, dst := s.pool.get(size), s.pool.get(size)
	defer func() {
		s.pool.put(src)
		s.pool.put(dst)
	}()

	row := func(buf []float64, i int) []float64 {
		off := (i - top) * cols
		return buf[off : off+cols]
	}

	for i := top; i < bottom; i++ {
		copy(row(src, i), cur.Row(i)[left:right])
	}

	alpha, dt, dx := s.alpha, s.dt, s.dx
	for t := 1; t <= k; t++ {
		vt, vb, vl, vr := top, bottom, left, right
		if top > 0 {
			vt += t
		}
		if bottom < n {
			vb -= t
		}
		if left > 0 {
			vl += t
		}
		if right < n {
			vr -= t
		}

		jl, jr := max(vl, 1)-left, min(vr, n-1)-left
		for i := max(vt, 1); i < min(vb, n-1); i++ {
			up, mid, down := row(src, i-1), row(src, i), row(src, i+1)
			out := row(dst, i)
			for x := jl; x < jr; x++ {
				out[x] = Stencil(mid[x], mid[x-1], mid[x+1], up[x], down[x], alpha, dt, dx)
			}
		}

		if vl == 0 || vr == n {
			for i := vt; i < vb; i++ {
				out := row(dst, i)
				if vl == 0 {
					out[0] = out[1]
				}
				if vr == n {
					out[n-1-left] = out[n-2-left]
				}
			}
		}
		if vt == 0 {
			copy(row(dst, 0)[vl-left:vr-left], row(dst, 1)[vl-left:vr-left])
		}
		if vb == n {
			copy(row(dst, n-1)[vl-left:vr-left], row(dst, n-2)[vl-left:vr-left])
		}

		if len(s.watches) > 0 {
			s.capture(core, t, func(i, j int) float64 { return row(dst, i)[j-left] })
		}

		src, dst = dst, src
	}

	for i := core.r0; i < core.r1; i++ {
		copy(next.Row(i)[core.c0:core.c1], row(src, i)[core.c0-left:core.c1-left])
	}
}

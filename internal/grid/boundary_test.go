package grid

import "testing"

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func TestApplyNeumannMirrorsInterior(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout.String(), func(t *testing.T) {
			const n = 6
			g, err := New(layout, n)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					g.Set(i, j, float64(100*i+j))
				}
			}
			ApplyNeumann(g)

			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					ci, cj := clamp(i, 1, n-2), clamp(j, 1, n-2)
					want := float64(100*ci + cj)
					if got := g.At(i, j); got != want {
						t.Errorf("cell (%d,%d) = %v, want %v", i, j, got, want)
					}
				}
			}
		})
	}
}

func TestApplyNeumannIdempotent(t *testing.T) {
	g, _ := New(RowPointer, 5)
	g.Set(2, 2, 3)
	g.Set(1, 3, 7)
	ApplyNeumann(g)
	first := Snapshot(g)
	ApplyNeumann(g)
	for i := range first {
		for j := range first[i] {
			if g.At(i, j) != first[i][j] {
				t.Fatalf("second pass changed (%d,%d)", i, j)
			}
		}
	}
}

func TestApplyNeumannDegenerate(t *testing.T) {
	one, _ := New(Contiguous, 1)
	one.Set(0, 0, 100)
	ApplyNeumann(one)
	if one.At(0, 0) != 100 {
		t.Fatalf("1x1 grid changed: %v", one.At(0, 0))
	}

	two, _ := New(RowPointer, 2)
	two.Set(1, 1, 100)
	ApplyNeumann(two)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if two.At(i, j) != 100 {
				t.Fatalf("2x2 cell (%d,%d) = %v, want 100", i, j, two.At(i, j))
			}
		}
	}
}

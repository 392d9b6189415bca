// Package grid stores square temperature fields in the memory layouts the
// solver compares, and applies the zero-flux boundary rule to them.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSize = errors.New("grid: invalid size")
	ErrAllocation  = errors.New("grid: allocation failed")
)

// MaxCells caps the number of cells a single grid may hold (32 GiB of float64).
const MaxCells = 1 << 32

// Layout selects how a grid's cells are laid out in memory.
type Layout int

const (
	// RowPointer keeps N independently allocated rows.
	RowPointer Layout = iota
	// Contiguous keeps one flat N*N buffer, row i at offset i*N.
	Contiguous
)

func (l Layout) String() string {
	switch l {
	case RowPointer:
		return "rowptr"
	case Contiguous:
		return "contiguous"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "rowptr", "row-pointer", "ptr":
		return RowPointer, nil
	case "contiguous", "contig", "flat":
		return Contiguous, nil
	}
	return 0, fmt.Errorf("grid: unknown layout %q", s)
}

// Grid is a square field of float64 values.
//
// Row returns the backing storage of row i, so writes through it are visible
// through At. Release drops the storage; the grid must not be used afterwards.
type Grid interface {
	Size() int
	At(i, j int) float64
	Set(i, j int, v float64)
	Row(i int) []float64
	Layout() Layout
	Release()
}

// New allocates a zero-initialized size×size grid in the given layout.
func New(layout Layout, size int) (g Grid, err error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > MaxCells/size {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrAllocation, size, size, MaxCells)
	}

	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fmt.Errorf("%w: %dx%d %s grid: %v", ErrAllocation, size, size, layout, r)
		}
	}()

	switch layout {
	case RowPointer:
		return newRowGrid(size), nil
	case Contiguous:
		return newDenseGrid(size), nil
	}
	return nil, fmt.Errorf("grid: unknown layout %v", layout)
}

// Snapshot copies the field into freshly allocated rows.
func Snapshot(g Grid) [][]float64 {
	n := g.Size()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		copy(out[i], g.Row(i))
	}
	return out
}

package solver

import (
	"fmt"
	"strings"
)

// Schedule selects the traversal order of the interior update.
type Schedule int

const (
	// Direct sweeps the whole interior once per step.
	Direct Schedule = iota
	// Blocked sweeps row-band × column-band blocks and advances up to
	// Blocking.TimeBlock steps per block before moving on. Tiles reapply the
	// boundary rule after every sub-step, so the global boundary pass (and
	// Timings.Boundary) runs once per TimeBlock steps, not once per step.
	Blocked
	// Parallel splits each step's interior into row bands run on goroutines.
	Parallel
)

func (s Schedule) String() string {
	switch s {
	case Direct:
		return "direct"
	case Blocked:
		return "blocked"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(s) {
	case "direct", "naive":
		return Direct, nil
	case "blocked", "tiled":
		return Blocked, nil
	case "parallel":
		return Parallel, nil
	}
	return 0, fmt.Errorf("%w: unknown schedule %q", ErrInvalidParameter, s)
}

// Blocking holds the extents used by the Blocked schedule.
type Blocking struct {
	RowBlock  int
	ColBlock  int
	TimeBlock int
}

// DefaultBlocking keeps the 32×64 spatial blocks of the cache-blocking stage
// with a four-step temporal block.
var DefaultBlocking = Blocking{
	RowBlock:  32,
	ColBlock:  64,
	TimeBlock: 4,
}

func (b Blocking) Validate() error {
	if b.RowBlock < 1 || b.ColBlock < 1 || b.TimeBlock < 1 {
		return fmt.Errorf("%w: block extents must be positive, got %dx%d over %d steps",
			ErrInvalidParameter, b.RowBlock, b.ColBlock, b.TimeBlock)
	}
	return nil
}

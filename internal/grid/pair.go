package grid

// Pair is a double buffer. Current holds the resolved field, Next is scratch
// about to be overwritten; Swap exchanges the two handles.
type Pair struct {
	Current Grid
	Next    Grid
}

// NewPair allocates two grids of the same layout and size. If the second
// allocation fails the first is released before returning.
func NewPair(layout Layout, size int) (*Pair, error) {
	cur, err := New(layout, size)
	if err != nil {
		return nil, err
	}
	next, err := New(layout, size)
	if err != nil {
		cur.Release()
		return nil, err
	}
	return &Pair{Current: cur, Next: next}, nil
}

func (p *Pair) Swap() {
	p.Current, p.Next = p.Next, p.Current
}

func (p *Pair) Release() {
	if p.Current != nil {
		p.Current.Release()
		p.Current = nil
	}
	if p.Next != nil {
		p.Next.Release()
		p.Next = nil
	}
}

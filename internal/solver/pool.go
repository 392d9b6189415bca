package solver

import (
	"sync"
	"sync/atomic"
)

// bufferPool recycles tile buffers between blocks and passes.
type bufferPool struct {
	pool sync.Pool

	gets   int64
	allocs int64
}

func newBufferPool() *bufferPool {
	return &bufferPool{}
}

// get returns a slice of length n. Its contents are unspecified.
func (p *bufferPool) get(n int) []float64 {
	atomic.AddInt64(&p.gets, 1)
	if v, ok := p.pool.Get().(*[]float64); ok && cap(*v) >= n {
		return (*v)[:n]
	}
	atomic.AddInt64(&p.allocs, 1)
	return make([]float64, n)
}

func (p *bufferPool) put(b []float64) {
	p.pool.Put(&b)
}

// PoolStats reports how many tile buffers were requested and how many of
// those had to be freshly allocated.
func (s *Solver) PoolStats() (gets, allocs int64) {
	return atomic.LoadInt64(&s.pool.gets), atomic.LoadInt64(&s.pool.allocs)
}

package block

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool hands out fixed-size Blocks bounded by a maximum outstanding count.
// Get blocks (respecting ctx) until a permit is available; the permit is
// returned automatically when the last holder of the Block calls Release.
type Pool struct {
	elemSize int64
	sem      *semaphore.Weighted
	mu       sync.Mutex
	free     [][]byte
}

// NewPool creates a pool of blocks of elemSize bytes, bounding the number of
// outstanding (not yet fully released) blocks to maxOutstanding.
func NewPool(elemSize int, maxOutstanding int64) *Pool {
	return &Pool{
		elemSize: int64(elemSize),
		sem:      semaphore.NewWeighted(maxOutstanding),
	}
}

// Get acquires a block, blocking until one is available or ctx is done.
func (p *Pool) Get(ctx context.Context) (*Block, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	p.mu.Lock()
	var buf []byte
	if n := len(p.free); n > 0 {
		buf = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if buf == nil {
		buf = make([]byte, p.elemSize)
	}

	b := &Block{buf: buf, pool: p}
	b.refs.Store(1)
	return b, nil
}

// put recycles a block's backing array and releases one semaphore unit.
// Called only by Block.Release once the last reference drops.
func (p *Pool) put(b *Block) {
	b.Length = 0
	p.mu.Lock()
	p.free = append(p.free, b.buf)
	p.mu.Unlock()
	p.sem.Release(1)
}

// ElemSize returns the fixed element size of blocks produced by this pool.
func (p *Pool) ElemSize() int {
	return int(p.elemSize)
}

// TryGet attempts a non-blocking acquire, returning (nil, false) if no
// permit is immediately available.
func (p *Pool) TryGet() (*Block, bool) {
	if !p.sem.TryAcquire(1) {
		return nil, false
	}
	p.mu.Lock()
	var buf []byte
	if n := len(p.free); n > 0 {
		buf = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()
	if buf == nil {
		buf = make([]byte, p.elemSize)
	}
	b := &Block{buf: buf, pool: p}
	b.refs.Store(1)
	return b, true
}

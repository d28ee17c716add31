// Package bufpool hands out copy buffers of one fixed size and takes them
// back for the next file.
//
//	buf := pool.Get()
//	defer pool.Put(buf)
//	io.CopyBuffer(dst, src, buf)
package bufpool

import "sync"

// DefaultSize is used when a Pool is created with a non-positive size.
const DefaultSize = 1 << 20

// Pool reuses byte slices of a single size. Safe for concurrent use.
type Pool struct {
	size int
	pool sync.Pool
}

// New creates a pool of size-byte buffers.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

// Size returns the length of every buffer returned by Get.
func (p *Pool) Size() int {
	return p.size
}

// Get returns a buffer of exactly Size bytes. Call Put when done.
func (p *Pool) Get() []byte {
	buf := *p.pool.Get().(*[]byte)
	return buf[:p.size]
}

// Put returns buf to the pool. Buffers that did not come from this pool
// (any other capacity) are dropped.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

// Package arena provides pooled byte-buffer rental with a fixed size
// ceiling. It is a pass-through rental over a process-wide pool, not a
// cache: there is no eviction policy, and the pool outlives any individual
// Arena instance.
package arena

import "sync"

// PoolCeiling is the largest buffer the shared pool will serve. Requests
// above the ceiling return nil and callers fall back to direct allocation.
const PoolCeiling = 100 << 20 // 100 MB

// shared is the process-wide rental pool. Get may return nil when the pool
// is empty; Rent allocates in that case.
var shared sync.Pool

// Arena rents reusable buffers from the shared pool. The zero value is
// usable; Close is a no-op because the underlying pool is not owned by any
// single instance.
type Arena struct{}

// New creates an Arena over the shared pool.
func New() *Arena { return &Arena{} }

// Close releases nothing: the shared pool is process-wide.
func (a *Arena) Close() error { return nil }

// Rent returns a buffer with capacity >= size, or nil when size <= 0 or
// size exceeds PoolCeiling. The caller owns the buffer until Release.
func (a *Arena) Rent(size int) *Buffer {
	if size <= 0 || size > PoolCeiling {
		return nil
	}

	var p *[]byte
	if v := shared.Get(); v != nil {
		p = v.(*[]byte)
	}
	if p == nil || cap(*p) < size {
		b := make([]byte, size)
		p = &b
	}
	return &Buffer{buf: p, n: size}
}

// Buffer is a rented byte buffer. Its lifetime is owned by whoever holds it;
// Release returns the backing storage to the shared pool and must be called
// exactly once, after the last read of Bytes.
type Buffer struct {
	buf *[]byte
	n   int
}

// Bytes returns the rented region, sized to the original Rent request.
func (b *Buffer) Bytes() []byte {
	return (*b.buf)[:b.n]
}

// Release returns the buffer to the shared pool. Safe on a nil receiver and
// idempotent; the buffer must not be read afterward.
func (b *Buffer) Release() {
	if b == nil || b.buf == nil {
		return
	}
	shared.Put(b.buf)
	b.buf = nil
}

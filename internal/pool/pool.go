// Package pool provides a pooled scratch byte buffer, adapted from mebo's
// blob-buffer pool for the much smaller allocations a single row-key
// encoding needs: the scratch space behind rowkey's Marshal2, Marshal3
// and Marshal4 helpers.
package pool

import "sync"

const (
	// DefaultSize is the initial capacity of a buffer drawn from the pool.
	// Most row-key fields fit comfortably within this; it covers a 64-bit
	// decimal significand's BCD form many times over.
	DefaultSize = 64
	// MaxRetainedSize bounds the capacity of a buffer returned to the pool.
	// A caller that encoded something unusually large gets to keep the
	// large buffer, but it is not retained for reuse.
	MaxRetainedSize = 4096
)

// Buffer is a growable byte slice wrapper, reused across calls via Pool.
type Buffer struct {
	B []byte
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte {
	return b.B
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.B)
}

// Reset empties the buffer while retaining its backing array.
func (b *Buffer) Reset() {
	b.B = b.B[:0]
}

// WriteByte appends a single byte, growing the backing array if needed.
func (b *Buffer) WriteByte(c byte) {
	b.B = append(b.B, c)
}

// Write appends data, growing the backing array if needed.
func (b *Buffer) Write(data []byte) {
	b.B = append(b.B, data...)
}

// Pool is a sync.Pool of Buffer values.
type Pool struct {
	pool sync.Pool
}

// New creates a Pool whose buffers start at the given capacity.
func New(defaultSize int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Buffer{B: make([]byte, 0, defaultSize)}
			},
		},
	}
}

// Get retrieves a reset Buffer from the pool.
func (p *Pool) Get() *Buffer {
	buf, _ := p.pool.Get().(*Buffer)
	return buf
}

// Put returns buf to the pool, discarding it instead if it grew past
// MaxRetainedSize to avoid pinning large allocations in the pool forever.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil {
		return
	}
	if cap(buf.B) > MaxRetainedSize {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

var defaultPool = New(DefaultSize)

// Get retrieves a scratch Buffer from the package-level default pool.
func Get() *Buffer { return defaultPool.Get() }

// Put returns a scratch Buffer to the package-level default pool.
func Put(buf *Buffer) { defaultPool.Put(buf) }

// Package cursor provides the mutable buffer view codecs read from and
// write to: a byte slice plus an offset and a remaining length. It is
// modeled on mebo's internal/pool.ByteBuffer (same small-helpers-over-a-
// slice shape), adapted from an append-only growable blob to a fixed
// backing array with an explicit remaining bound, since row keys are
// written into caller-owned, pre-sized storage rather than a pooled
// scratch buffer that grows on demand.
package cursor

import "fmt"

// Cursor is a mutable view over a byte slice: a base buffer, a current
// offset into it, and how many bytes remain available from that offset.
// A Cursor is not safe for concurrent use; callers own it exclusively for
// the duration of one encode or decode call.
type Cursor struct {
	buf       []byte
	offset    int
	remaining int
}

// New wraps buf starting at offset 0, with the whole slice available.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf, offset: 0, remaining: len(buf)}
}

// NewAt wraps buf starting at the given offset, with the rest of the slice
// available. Used to resume decoding a struct field that begins mid-buffer.
func NewAt(buf []byte, offset int) *Cursor {
	if offset < 0 || offset > len(buf) {
		panic("cursor: offset out of range")
	}

	return &Cursor{buf: buf, offset: offset, remaining: len(buf) - offset}
}

// Offset returns the cursor's current position in the backing buffer.
func (c *Cursor) Offset() int { return c.offset }

// Remaining returns how many bytes are available for read or write from
// the current offset.
func (c *Cursor) Remaining() int { return c.remaining }

// Advance moves the cursor forward by n bytes. It panics if n exceeds
// Remaining(); callers that cannot guarantee this should check Remaining()
// first (decoders do, to return ErrTruncated instead of panicking).
func (c *Cursor) Advance(n int) {
	if n < 0 || n > c.remaining {
		panic(fmt.Sprintf("cursor: advance(%d) exceeds remaining(%d)", n, c.remaining))
	}
	c.offset += n
	c.remaining -= n
}

// PeekByte returns the byte at the current offset without advancing, and
// false if no bytes remain.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.remaining == 0 {
		return 0, false
	}

	return c.buf[c.offset], true
}

// PeekAt returns the byte n positions past the current offset without
// advancing, and false if that position is out of range.
func (c *Cursor) PeekAt(n int) (byte, bool) {
	if n < 0 || n >= c.remaining {
		return 0, false
	}

	return c.buf[c.offset+n], true
}

// ReadByte reads and consumes one byte, and false if none remain.
func (c *Cursor) ReadByte() (byte, bool) {
	b, ok := c.PeekByte()
	if !ok {
		return 0, false
	}
	c.Advance(1)

	return b, true
}

// ReadBytes reads and consumes n bytes, returning a slice aliasing the
// backing buffer. Returns false if fewer than n bytes remain.
func (c *Cursor) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || n > c.remaining {
		return nil, false
	}
	b := c.buf[c.offset : c.offset+n]
	c.Advance(n)

	return b, true
}

// WriteByte writes one byte at the current offset and advances. It panics
// if no space remains; callers compute SerializedLength up front so this
// should never happen for well-formed codec implementations.
func (c *Cursor) WriteByte(b byte) {
	if c.remaining < 1 {
		panic("cursor: write past end of buffer")
	}
	c.buf[c.offset] = b
	c.Advance(1)
}

// WriteBytes copies data into the buffer at the current offset and
// advances past it. It panics if data does not fit in Remaining().
func (c *Cursor) WriteBytes(data []byte) {
	if len(data) > c.remaining {
		panic("cursor: write past end of buffer")
	}
	copy(c.buf[c.offset:], data)
	c.Advance(len(data))
}

// Bytes returns the slice of the backing buffer written or read so far,
// i.e. buf[:offset] of the original wrapped slice.
func (c *Cursor) Bytes() []byte {
	return c.buf[:c.offset]
}

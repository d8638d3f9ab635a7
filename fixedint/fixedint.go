// Package fixedint implements the fixed-width integer codec: 8, 16,
// 32, and 64-bit signed and unsigned integers, encoded big-endian with
// the sign bit flipped so unsigned lexicographic byte comparison
// matches numeric order. Fixed-width codecs never carry a NULL value;
// callers that need an optional integer use the varint package
// instead.
package fixedint

import (
	"encoding/binary"
	"fmt"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

// Width names the bit width of a fixed-width integer codec.
type Width int

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
	Width64 Width = 8
)

func (w Width) signBit() uint64 {
	switch w {
	case Width8:
		return 0x80
	case Width16:
		return 0x8000
	case Width32:
		return 0x80000000
	default:
		return 0x8000000000000000
	}
}

func (w Width) mask() uint64 {
	switch w {
	case Width8:
		return 0xFF
	case Width16:
		return 0xFFFF
	case Width32:
		return 0xFFFFFFFF
	default:
		return 0xFFFFFFFFFFFFFFFF
	}
}

// Signed is an order-preserving codec for fixed-width signed integers
// of a configured Width, operating over int64 values that must fit
// that width's range.
type Signed struct {
	width Width
	ord   order.Order
}

var _ codec.Codec[int64] = (*Signed)(nil)

// NewSigned builds a Signed codec of the given width and direction.
func NewSigned(w Width, o order.Order) *Signed {
	return &Signed{width: w, ord: o}
}

// Order returns the direction this codec encodes for.
func (s *Signed) Order() order.Order { return s.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (s *Signed) SetOrder(o order.Order) { s.ord = o }

// SerializedLength returns the codec's fixed width in bytes.
func (s *Signed) SerializedLength(int64) (int, error) {
	return int(s.width), nil
}

func (s *Signed) boundsCheck(v int64) error {
	bits := uint(s.width) * 8
	if bits >= 64 {
		return nil
	}
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	if v < lo || v > hi {
		return fmt.Errorf("fixedint: value %d does not fit a signed %d-bit field: %w", v, bits, codec.ErrOutOfRange)
	}

	return nil
}

// Serialize writes v's encoding to c.
func (s *Signed) Serialize(v int64, c *cursor.Cursor) error {
	if err := s.boundsCheck(v); err != nil {
		return err
	}

	u := (uint64(v) ^ s.width.signBit()) & s.width.mask()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, u)
	body := buf[8-int(s.width):]
	for _, b := range body {
		c.WriteByte(s.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (s *Signed) Skip(c *cursor.Cursor) error {
	n := int(s.width)
	if c.Remaining() < n {
		return fmt.Errorf("fixedint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(n)

	return nil
}

// Deserialize reads one encoded value from c.
func (s *Signed) Deserialize(c *cursor.Cursor) (int64, error) {
	n := int(s.width)
	if c.Remaining() < n {
		return 0, fmt.Errorf("fixedint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	raw, _ := c.ReadBytes(n)

	buf := make([]byte, 8)
	for i, b := range raw {
		buf[8-n+i] = s.ord.FlipByte(b)
	}
	u := binary.BigEndian.Uint64(buf)
	pattern := u ^ s.width.signBit()

	shift := uint(64 - 8*n)

	return int64(pattern<<shift) >> shift, nil
}

// Unsigned is an order-preserving codec for fixed-width unsigned
// integers of a configured Width, operating over uint64 values that
// must fit that width's range.
type Unsigned struct {
	width Width
	ord   order.Order
}

var _ codec.Codec[uint64] = (*Unsigned)(nil)

// NewUnsigned builds an Unsigned codec of the given width and
// direction.
func NewUnsigned(w Width, o order.Order) *Unsigned {
	return &Unsigned{width: w, ord: o}
}

// Order returns the direction this codec encodes for.
func (u *Unsigned) Order() order.Order { return u.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (u *Unsigned) SetOrder(o order.Order) { u.ord = o }

// SerializedLength returns the codec's fixed width in bytes.
func (u *Unsigned) SerializedLength(uint64) (int, error) {
	return int(u.width), nil
}

// Serialize writes v's encoding to c.
func (u *Unsigned) Serialize(v uint64, c *cursor.Cursor) error {
	if v&^u.width.mask() != 0 {
		return fmt.Errorf("fixedint: value %d does not fit an unsigned %d-bit field: %w", v, int(u.width)*8, codec.ErrOutOfRange)
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	body := buf[8-int(u.width):]
	for _, b := range body {
		c.WriteByte(u.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (u *Unsigned) Skip(c *cursor.Cursor) error {
	n := int(u.width)
	if c.Remaining() < n {
		return fmt.Errorf("fixedint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(n)

	return nil
}

// Deserialize reads one encoded value from c.
func (u *Unsigned) Deserialize(c *cursor.Cursor) (uint64, error) {
	n := int(u.width)
	if c.Remaining() < n {
		return 0, fmt.Errorf("fixedint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	raw, _ := c.ReadBytes(n)

	buf := make([]byte, 8)
	for i, b := range raw {
		buf[8-n+i] = u.ord.FlipByte(b)
	}

	return binary.BigEndian.Uint64(buf), nil
}

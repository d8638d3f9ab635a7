// Package ieee implements the order-preserving IEEE-754 floating-point
// codec for float32 and float64, using a sign-bit-XOR transform so
// unsigned lexicographic byte comparison matches IEEE total order, with
// canonical NaN sorting greatest and NULL represented by the all-zero
// word.
package ieee

import (
	"fmt"
	"math"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

// Float64 is a nullable float64 value.
type Float64 struct {
	Value float64
	Valid bool
}

// NullFloat64 is the absent Float64 value.
var NullFloat64 = Float64{}

// SomeFloat64 wraps v as a present Float64 value.
func SomeFloat64(v float64) Float64 { return Float64{Value: v, Valid: true} }

// Double is an order-preserving codec for float64 values.
type Double struct {
	ord order.Order
}

var _ codec.Codec[Float64] = (*Double)(nil)

// NewDouble builds a Double codec for the given direction.
func NewDouble(o order.Order) *Double { return &Double{ord: o} }

// Order returns the direction this codec encodes for.
func (d *Double) Order() order.Order { return d.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (d *Double) SetOrder(o order.Order) { d.ord = o }

// SerializedLength returns the fixed 8-byte width of the encoding.
func (d *Double) SerializedLength(Float64) (int, error) { return 8, nil }

func canonicalFloat64Bits(v float64) uint64 {
	if math.IsNaN(v) {
		return math.Float64bits(math.NaN())
	}

	return math.Float64bits(v)
}

func transformFloat64(bits uint64) uint64 {
	signbit := uint64(1) << 63
	mask := (uint64(int64(bits) >> 63)) | signbit

	return bits ^ mask
}

// Serialize writes v's encoding to c.
func (d *Double) Serialize(v Float64, c *cursor.Cursor) error {
	var word uint64
	if !v.Valid {
		word = 0
	} else {
		j := canonicalFloat64Bits(v.Value)
		word = transformFloat64(j) + 1
	}

	for i := 7; i >= 0; i-- {
		b := byte(word >> uint(8*i))
		c.WriteByte(d.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (d *Double) Skip(c *cursor.Cursor) error {
	if c.Remaining() < 8 {
		return fmt.Errorf("ieee: need 8 bytes, have %d: %w", c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(8)

	return nil
}

// Deserialize reads one encoded value from c.
func (d *Double) Deserialize(c *cursor.Cursor) (Float64, error) {
	if c.Remaining() < 8 {
		return Float64{}, fmt.Errorf("ieee: need 8 bytes, have %d: %w", c.Remaining(), codec.ErrTruncated)
	}
	raw, _ := c.ReadBytes(8)

	var word uint64
	for _, b := range raw {
		word = (word << 8) | uint64(d.ord.FlipByte(b))
	}

	if word == 0 {
		return Float64{}, nil
	}

	bits := untransformFloat64(word - 1)

	return Float64{Value: math.Float64frombits(bits), Valid: true}, nil
}

// untransformFloat64 inverts transformFloat64. The forward transform's
// mask depends only on the sign bit of the pre-transform value, which
// survives in the post-transform top bit, so the inverse re-derives the
// same mask from the transformed word.
func untransformFloat64(word uint64) uint64 {
	signbit := uint64(1) << 63
	var mask uint64
	if word&signbit == 0 {
		mask = ^uint64(0)
	} else {
		mask = signbit
	}

	return word ^ mask
}

// Float32 is a nullable float32 value.
type Float32 struct {
	Value float32
	Valid bool
}

// NullFloat32 is the absent Float32 value.
var NullFloat32 = Float32{}

// SomeFloat32 wraps v as a present Float32 value.
func SomeFloat32(v float32) Float32 { return Float32{Value: v, Valid: true} }

// Single is an order-preserving codec for float32 values.
type Single struct {
	ord order.Order
}

var _ codec.Codec[Float32] = (*Single)(nil)

// NewSingle builds a Single codec for the given direction.
func NewSingle(o order.Order) *Single { return &Single{ord: o} }

// Order returns the direction this codec encodes for.
func (s *Single) Order() order.Order { return s.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (s *Single) SetOrder(o order.Order) { s.ord = o }

// SerializedLength returns the fixed 4-byte width of the encoding.
func (s *Single) SerializedLength(Float32) (int, error) { return 4, nil }

func canonicalFloat32Bits(v float32) uint32 {
	if math.IsNaN(float64(v)) {
		return math.Float32bits(float32(math.NaN()))
	}

	return math.Float32bits(v)
}

func transformFloat32(bits uint32) uint32 {
	signbit := uint32(1) << 31
	mask := (uint32(int32(bits) >> 31)) | signbit

	return bits ^ mask
}

func untransformFloat32(word uint32) uint32 {
	signbit := uint32(1) << 31
	var mask uint32
	if word&signbit == 0 {
		mask = ^uint32(0)
	} else {
		mask = signbit
	}

	return word ^ mask
}

// Serialize writes v's encoding to c.
func (s *Single) Serialize(v Float32, c *cursor.Cursor) error {
	var word uint32
	if !v.Valid {
		word = 0
	} else {
		j := canonicalFloat32Bits(v.Value)
		word = transformFloat32(j) + 1
	}

	for i := 3; i >= 0; i-- {
		b := byte(word >> uint(8*i))
		c.WriteByte(s.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (s *Single) Skip(c *cursor.Cursor) error {
	if c.Remaining() < 4 {
		return fmt.Errorf("ieee: need 4 bytes, have %d: %w", c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(4)

	return nil
}

// Deserialize reads one encoded value from c.
func (s *Single) Deserialize(c *cursor.Cursor) (Float32, error) {
	if c.Remaining() < 4 {
		return Float32{}, fmt.Errorf("ieee: need 4 bytes, have %d: %w", c.Remaining(), codec.ErrTruncated)
	}
	raw, _ := c.ReadBytes(4)

	var word uint32
	for _, b := range raw {
		word = (word << 8) | uint32(s.ord.FlipByte(b))
	}

	if word == 0 {
		return Float32{}, nil
	}

	bits := untransformFloat32(word - 1)

	return Float32{Value: math.Float32frombits(bits), Valid: true}, nil
}

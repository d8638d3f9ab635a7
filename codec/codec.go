// Package codec defines the capability every order-preserving codec in this
// module implements, and the error taxonomy codecs return on failure.
//
// The shape is grounded in two corpus sources: mebo's ColumnarEncoder /
// ColumnarDecoder interfaces (encoding/columnar.go), which establish the
// Len/Size/Bytes-style accessor naming this module echoes via
// SerializedLength, and phiryll-lexy's Codec[T] interface
// (other_examples/e139b79c_phiryll-lexy__lexy.go.go), which establishes a
// single generic capability covering both directions of a value instead of
// separate encoder/decoder types. Unlike either source, every operation
// here returns an error instead of panicking, and serialize/deserialize
// take an explicit cursor.Cursor instead of an io.Writer/io.Reader or a
// growable buffer, per this module's cursor-based data model.
package codec

import (
	"errors"

	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

// Sentinel errors. Call sites wrap these with fmt.Errorf("...: %w", ErrX)
// so callers can match with errors.Is while still getting a specific
// message.
var (
	// ErrTruncated means the cursor ran out of bytes before the codec
	// finished reading a value.
	ErrTruncated = errors.New("codec: truncated input")
	// ErrCorrupt means the bytes were readable but violated a structural
	// invariant of the codec's wire format.
	ErrCorrupt = errors.New("codec: corrupt encoding")
	// ErrInvalidConfiguration means a codec was asked to encode with a
	// configuration it cannot support, such as too many reserved bits.
	ErrInvalidConfiguration = errors.New("codec: invalid configuration")
	// ErrArityMismatch means a struct composer received a different number
	// of values than it has fields.
	ErrArityMismatch = errors.New("codec: arity mismatch")
	// ErrOutOfRange means a value does not fit the codec's domain, such as
	// an int64 that overflows a fixed-width 8-bit codec.
	ErrOutOfRange = errors.New("codec: value out of range")
)

// Codec is the capability exposed by every concrete codec in this module:
// compute a value's encoded length, serialize it, skip it without
// materializing it, deserialize it, and report the direction it encodes
// for.
//
// T is the codec's logical value type. Codecs that support a NULL value
// represent it as part of T (a struct pairing the value with a Valid flag,
// such as varint.Int64 or decimal.Value) rather than through a side channel.
type Codec[T any] interface {
	// SerializedLength returns the number of bytes Serialize will write
	// for value.
	SerializedLength(value T) (int, error)

	// Serialize writes value's encoding to c, advancing c by exactly
	// SerializedLength(value) bytes on success. On failure c's position is
	// unspecified; the caller must discard the buffer rather than retry.
	Serialize(value T, c *cursor.Cursor) error

	// Skip advances c past one encoded value without materializing it,
	// by exactly as many bytes as Serialize would have written. On
	// failure c has advanced only past the last successfully parsed byte.
	Skip(c *cursor.Cursor) error

	// Deserialize reads one encoded value from c, advancing c past it. On
	// failure c has advanced only past the last successfully parsed byte.
	Deserialize(c *cursor.Cursor) (T, error)

	// Order returns the direction this codec instance encodes for.
	Order() order.Order

	// SetOrder reconfigures the codec to encode for the given direction.
	// Struct composers use this to push a single SetOrder(ω) call down
	// through every field when the composed key's direction changes,
	// rather than requiring callers to rebuild each field codec by hand.
	SetOrder(o order.Order)
}

// Terminating is implemented by codecs whose wire format uses a
// terminator byte (escbytes, utf8key) and therefore support the
// must-terminate / implicit-termination contract spec'd for the last
// field of a composed key.
type Terminating interface {
	// MustTerminate reports whether this codec instance will always write
	// its terminator, even as the last ascending field of a composite key.
	MustTerminate() bool

	// SetMustTerminate overrides the terminator behavior. Implementations
	// must return ErrInvalidConfiguration if asked to omit the terminator
	// while the instance's Order is Desc, since implicit termination is
	// only safe under ascending order (see spec's prefix-safety
	// invariant).
	SetMustTerminate(must bool) error
}

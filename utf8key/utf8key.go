// Package utf8key implements the UTF-8 text row-key codec: each input
// byte is shifted by +2 (reserving 0x00 for NULL and 0x01 for the
// terminator) and a terminator byte is appended, with the whole output
// then inverted under DESC. Unlike the null-terminated raw bytes
// codec, no escape scheme is needed, since the input is assumed to be
// valid UTF-8 text and therefore never contains the reserved byte
// values 0xFE or 0xFF that would collide with the shifted sentinels.
package utf8key

import (
	"fmt"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/internal/options"
	"github.com/ndimiduk/orderly/order"
)

const (
	nullSentinel = 0x00
	terminator   = 0x01
	shift        = 2
)

// String is a nullable UTF-8 text value.
type String struct {
	Value string
	Valid bool
}

// NullString is the absent String value.
var NullString = String{}

// SomeString wraps v as a present String value.
func SomeString(v string) String { return String{Value: v, Valid: true} }

// Codec is an order-preserving codec for UTF-8 text.
type Codec struct {
	ord      order.Order
	mustTerm bool
}

var (
	_ codec.Codec[String] = (*Codec)(nil)
	_ codec.Terminating   = (*Codec)(nil)
)

// New builds a Codec for the given direction. Text codecs default to
// always writing their terminator; callers that compose this as the
// last ascending field of a row key may call SetMustTerminate(false).
func New(o order.Order) *Codec {
	return &Codec{ord: o, mustTerm: true}
}

// WithMustTerminate builds an Option that overrides a Codec's
// terminator behavior at construction time. See escbytes.WithMustTerminate.
func WithMustTerminate(must bool) options.Option[*Codec] {
	return options.New(func(c *Codec) error {
		return c.SetMustTerminate(must)
	})
}

// NewWithOptions builds a Codec for the given direction and applies
// opts in order, stopping at the first rejected option.
func NewWithOptions(o order.Order, opts ...options.Option[*Codec]) (*Codec, error) {
	c := New(o)
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Order returns the direction this codec encodes for.
func (c *Codec) Order() order.Order { return c.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (c *Codec) SetOrder(o order.Order) { c.ord = o }

// MustTerminate reports whether this codec always writes its
// terminator byte.
func (c *Codec) MustTerminate() bool { return c.mustTerm }

// SetMustTerminate overrides the terminator behavior. Omitting the
// terminator is only safe for ascending codecs.
func (c *Codec) SetMustTerminate(must bool) error {
	if !must && c.ord == order.Desc {
		return fmt.Errorf("utf8key: implicit termination requires ASC order: %w", codec.ErrInvalidConfiguration)
	}
	c.mustTerm = must

	return nil
}

// SerializedLength returns the number of bytes Serialize will write
// for v.
func (c *Codec) SerializedLength(v String) (int, error) {
	if !v.Valid {
		if c.mustTerm {
			return 1, nil
		}

		return 0, nil
	}

	if c.mustTerm || len(v.Value) == 0 {
		return len(v.Value) + 1, nil
	}

	return len(v.Value), nil
}

// Serialize writes v's encoding to cur.
func (c *Codec) Serialize(v String, cur *cursor.Cursor) error {
	if !v.Valid {
		if c.mustTerm {
			cur.WriteByte(c.ord.FlipByte(nullSentinel))
		}

		return nil
	}

	for i := 0; i < len(v.Value); i++ {
		cur.WriteByte(c.ord.FlipByte(v.Value[i] + shift))
	}

	if c.mustTerm || len(v.Value) == 0 {
		cur.WriteByte(c.ord.FlipByte(terminator))
	}

	return nil
}

// Deserialize reads one encoded value from cur.
func (c *Codec) Deserialize(cur *cursor.Cursor) (String, error) {
	if c.mustTerm {
		b, ok := cur.PeekByte()
		if !ok {
			return String{}, fmt.Errorf("utf8key: no bytes available: %w", codec.ErrTruncated)
		}
		if c.ord.FlipByte(b) == nullSentinel {
			cur.Advance(1)

			return NullString, nil
		}
	} else if cur.Remaining() == 0 {
		return NullString, nil
	}

	var body []byte
	for {
		b, ok := cur.ReadByte()
		if !ok {
			if !c.mustTerm {
				break
			}

			return String{}, fmt.Errorf("utf8key: ran out of bytes before terminator: %w", codec.ErrTruncated)
		}
		raw := c.ord.FlipByte(b)
		if raw == terminator {
			break
		}
		body = append(body, raw-shift)

		if !c.mustTerm && cur.Remaining() == 0 {
			break
		}
	}

	return SomeString(string(body)), nil
}

// Skip advances cur past one encoded value without materializing it.
func (c *Codec) Skip(cur *cursor.Cursor) error {
	if c.mustTerm {
		b, ok := cur.PeekByte()
		if !ok {
			return fmt.Errorf("utf8key: no bytes available: %w", codec.ErrTruncated)
		}
		if c.ord.FlipByte(b) == nullSentinel {
			cur.Advance(1)

			return nil
		}
	} else if cur.Remaining() == 0 {
		return nil
	}

	for {
		b, ok := cur.ReadByte()
		if !ok {
			if !c.mustTerm {
				return nil
			}

			return fmt.Errorf("utf8key: ran out of bytes before terminator: %w", codec.ErrTruncated)
		}
		if c.ord.FlipByte(b) == terminator {
			return nil
		}
		if !c.mustTerm && cur.Remaining() == 0 {
			return nil
		}
	}
}

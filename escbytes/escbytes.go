// Package escbytes implements the null-terminated raw byte sequence
// codec: an arbitrary byte slice encoded so it sorts by plain
// byte-wise order even when compared as a prefix of a longer key. The
// wire format escapes the terminator value out of the body so it can
// never appear except as the final byte.
//
// This codec does not support NULL. Its wire format is fully dense —
// every byte value 0x00-0xFF already has a meaning as either the
// terminator or part of an escaped body — so there is no bit pattern
// left for a NULL sentinel that also sorts below the zero-length
// sequence's one-byte encoding. See DESIGN.md for the derivation.
// Callers that need an optional raw byte sequence should use the
// varint-backed NULL-bearing codecs instead, or wrap this codec with
// their own presence flag outside the key.
package escbytes

import (
	"fmt"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/internal/options"
	"github.com/ndimiduk/orderly/order"
)

const (
	ascTerminator  = 0x00
	ascContinuator = 0xFF
	ascBias        = 0x03

	descTerminator  = 0xFF
	descContinuator = 0x00
	descBias        = 0x01
)

// Codec is an order-preserving codec for raw byte sequences.
type Codec struct {
	ord         order.Order
	mustTerm    bool
	terminator  byte
	continuator byte
}

var (
	_ codec.Codec[[]byte] = (*Codec)(nil)
	_ codec.Terminating   = (*Codec)(nil)
)

// New builds a Codec for the given direction. Byte codecs default to
// always writing their terminator; callers that compose this as the
// last ascending field of a row key may call SetMustTerminate(false).
func New(o order.Order) *Codec {
	c := &Codec{ord: o, mustTerm: true}
	if o == order.Desc {
		c.terminator = descTerminator
		c.continuator = descContinuator
	} else {
		c.terminator = ascTerminator
		c.continuator = ascContinuator
	}

	return c
}

// WithMustTerminate builds an Option that overrides a Codec's
// terminator behavior at construction time, equivalent to calling
// SetMustTerminate after New but foldable into NewWithOptions.
func WithMustTerminate(must bool) options.Option[*Codec] {
	return options.New(func(c *Codec) error {
		return c.SetMustTerminate(must)
	})
}

// NewWithOptions builds a Codec for the given direction and applies
// opts in order, stopping at the first rejected option. Composers that
// know upfront a field will occupy the implicit-termination position
// can use this instead of a separate SetMustTerminate call.
func NewWithOptions(o order.Order, opts ...options.Option[*Codec]) (*Codec, error) {
	c := New(o)
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Order returns the direction this codec encodes for.
func (c *Codec) Order() order.Order { return c.ord }

// SetOrder reconfigures the codec to encode for the given direction,
// recomputing the direction-specific terminator/continuator bytes.
func (c *Codec) SetOrder(o order.Order) {
	c.ord = o
	if o == order.Desc {
		c.terminator = descTerminator
		c.continuator = descContinuator
	} else {
		c.terminator = ascTerminator
		c.continuator = ascContinuator
	}
}

// MustTerminate reports whether this codec always writes its
// terminator byte.
func (c *Codec) MustTerminate() bool { return c.mustTerm }

// SetMustTerminate overrides the terminator behavior. Omitting the
// terminator is only safe for ascending codecs, since end-of-buffer
// substitutes for the terminator only when "more bytes" sorts higher.
func (c *Codec) SetMustTerminate(must bool) error {
	if !must && c.ord == order.Desc {
		return fmt.Errorf("escbytes: implicit termination requires ASC order: %w", codec.ErrInvalidConfiguration)
	}
	c.mustTerm = must

	return nil
}

func (c *Codec) escapesToTwoBytes(b byte) bool {
	return b == 0xFE || b == 0xFF
}

// SerializedLength returns the number of bytes Serialize will write
// for v.
func (c *Codec) SerializedLength(v []byte) (int, error) {
	n := 0
	for _, b := range v {
		if c.escapesToTwoBytes(b) {
			n += 2
		} else {
			n++
		}
	}
	if c.mustTerm {
		n++
	}

	return n, nil
}

// Serialize writes v's encoding to cur.
func (c *Codec) Serialize(v []byte, cur *cursor.Cursor) error {
	for _, b := range v {
		c.writeEscaped(b, cur)
	}
	if c.mustTerm {
		cur.WriteByte(c.terminator)
	}

	return nil
}

func (c *Codec) writeEscaped(b byte, cur *cursor.Cursor) {
	if c.ord == order.Desc {
		if b == 0xFE || b == 0xFF {
			cur.WriteByte(descContinuator)
			cur.WriteByte(byte(int(^b) - ascBias))

			return
		}
		cur.WriteByte(^b - descBias)

		return
	}

	if b == 0xFE || b == 0xFF {
		cur.WriteByte(ascContinuator)
		cur.WriteByte(byte(int(b) + ascBias))

		return
	}
	cur.WriteByte(b + 1)
}

// Deserialize reads one encoded value from cur.
func (c *Codec) Deserialize(cur *cursor.Cursor) ([]byte, error) {
	var out []byte
	for {
		b, ok := cur.ReadByte()
		if !ok {
			if !c.mustTerm && c.ord == order.Asc {
				return out, nil
			}

			return nil, fmt.Errorf("escbytes: ran out of bytes before terminator: %w", codec.ErrTruncated)
		}
		if b == c.terminator {
			return out, nil
		}
		if b == c.continuator {
			next, ok := cur.ReadByte()
			if !ok {
				return nil, fmt.Errorf("escbytes: truncated escape sequence: %w", codec.ErrTruncated)
			}
			out = append(out, c.unescapeContinued(next))

			if !c.mustTerm && c.ord == order.Asc && cur.Remaining() == 0 {
				return out, nil
			}

			continue
		}
		out = append(out, c.unescapeDirect(b))

		if !c.mustTerm && c.ord == order.Asc && cur.Remaining() == 0 {
			return out, nil
		}
	}
}

func (c *Codec) unescapeDirect(b byte) byte {
	if c.ord == order.Desc {
		return ^(b + descBias)
	}

	return b - 1
}

func (c *Codec) unescapeContinued(b byte) byte {
	if c.ord == order.Desc {
		return ^byte(int(b) + ascBias)
	}

	return byte(int(b) - ascBias)
}

// Skip advances cur past one encoded value without materializing it.
func (c *Codec) Skip(cur *cursor.Cursor) error {
	for {
		b, ok := cur.ReadByte()
		if !ok {
			if !c.mustTerm && c.ord == order.Asc {
				return nil
			}

			return fmt.Errorf("escbytes: ran out of bytes before terminator: %w", codec.ErrTruncated)
		}
		if b == c.terminator {
			return nil
		}
		if b == c.continuator {
			if _, ok := cur.ReadByte(); !ok {
				return fmt.Errorf("escbytes: truncated escape sequence: %w", codec.ErrTruncated)
			}
			if !c.mustTerm && c.ord == order.Asc && cur.Remaining() == 0 {
				return nil
			}

			continue
		}
		if !c.mustTerm && c.ord == order.Asc && cur.Remaining() == 0 {
			return nil
		}
	}
}

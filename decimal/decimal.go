// Package decimal implements the arbitrary-precision signed decimal
// codec: a canonicalized (sign, adjusted exponent, BCD significand)
// triple encoded so unsigned lexicographic byte comparison matches
// numeric order across every sign, magnitude, and scale. The exponent
// is carried by the varint package's reserved-bit header, folding two
// sign/zero flag bits into its top two bits.
package decimal

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
	"github.com/ndimiduk/orderly/varint"
)

const reservedBits = 2

// Value is a nullable arbitrary-precision signed decimal, represented
// as an unscaled integer and a scale: the logical value is
// Unscaled * 10^(-Scale).
type Value struct {
	Unscaled *big.Int
	Scale    int32
	Valid    bool
}

// Null is the absent Value.
var Null = Value{}

// Zero is the canonical decimal zero.
var Zero = Value{Unscaled: big.NewInt(0), Valid: true}

// New wraps an unscaled integer and scale as a present Value.
func New(unscaled *big.Int, scale int32) Value {
	return Value{Unscaled: new(big.Int).Set(unscaled), Scale: scale, Valid: true}
}

// ParseString parses a plain decimal literal such as "-5", "0.50", or
// "123" into a Value. Scientific notation is not accepted.
func ParseString(s string) (Value, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && (!hasFrac || fracPart == "") {
		return Value{}, fmt.Errorf("decimal: empty literal")
	}

	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Value{}, fmt.Errorf("decimal: invalid digit %q in %q", r, s)
		}
	}

	u := new(big.Int)
	if _, ok := u.SetString(digits, 10); !ok {
		return Value{}, fmt.Errorf("decimal: cannot parse %q", s)
	}
	if neg {
		u.Neg(u)
	}

	return New(u, int32(len(fracPart))), nil
}

// canonical strips trailing base-10 zeros from the magnitude and
// reports the decimal's sign (-1, 0, +1), the stripped magnitude, and
// the resulting scale.
func canonical(v Value) (sign int, mag *big.Int, scale int32) {
	sign = v.Unscaled.Sign()
	mag = new(big.Int).Abs(v.Unscaled)
	scale = v.Scale

	if sign == 0 {
		return 0, mag, 0
	}

	ten := big.NewInt(10)
	rem := new(big.Int)
	q := new(big.Int)
	for {
		q.QuoRem(mag, ten, rem)
		if rem.Sign() != 0 {
			break
		}
		mag.Set(q)
		scale--
	}

	return sign, mag, scale
}

func packBCD(digits string) []byte {
	n := len(digits) + 1 // + terminator nibble
	out := make([]byte, (n+1)/2)

	nibble := func(i int) byte {
		if i == len(digits) {
			return 0
		}

		return digits[i] - '0' + 1
	}

	for i := 0; i < n; i += 2 {
		hi := nibble(i)
		var lo byte
		if i+1 < n {
			lo = nibble(i + 1)
		}
		out[i/2] = hi<<4 | lo
	}

	return out
}

func bcdLen(numDigits int) int {
	return (numDigits + 1 + 1) / 2
}

// Codec is an order-preserving codec for arbitrary-precision decimals.
type Codec struct {
	ord order.Order
}

var _ codec.Codec[Value] = (*Codec)(nil)

// NewCodec builds a Codec for the given direction.
func NewCodec(o order.Order) *Codec { return &Codec{ord: o} }

// Order returns the direction this codec encodes for.
func (c *Codec) Order() order.Order { return c.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (c *Codec) SetOrder(o order.Order) { c.ord = o }

// SerializedLength returns the number of bytes Serialize will write
// for v.
func (c *Codec) SerializedLength(v Value) (int, error) {
	if !v.Valid {
		return 1, nil
	}

	sign, mag, scale := canonical(v)
	if sign == 0 {
		return 1, nil
	}

	digits := mag.Text(10)
	p := len(digits)
	s := -int64(scale)
	e := s + int64(p) - 1

	_, trailing, err := varint.EncodeSignedReserved(e, reservedBits)
	if err != nil {
		return 0, err
	}

	return 1 + len(trailing) + bcdLen(p), nil
}

// Serialize writes v's encoding to cur.
func (c *Codec) Serialize(v Value, cur *cursor.Cursor) error {
	if !v.Valid {
		cur.WriteByte(c.ord.FlipByte(0x00))

		return nil
	}

	sign, mag, scale := canonical(v)
	if sign == 0 {
		flags := zeroFlags()
		cur.WriteByte(c.ord.FlipByte(flags << 6))

		return nil
	}

	digits := mag.Text(10)
	p := len(digits)
	s := -int64(scale)
	e := s + int64(p) - 1

	header, trailing, err := varint.EncodeSignedReserved(e, reservedBits)
	if err != nil {
		return err
	}

	var signMask byte
	if sign < 0 {
		signMask = 0xFF
	}

	flags := valueFlags(sign)
	finalHeader := flags<<6 | (header^signMask)&0x3F
	cur.WriteByte(c.ord.FlipByte(finalHeader))

	for _, b := range trailing {
		cur.WriteByte(c.ord.FlipByte(b ^ signMask))
	}

	for _, b := range packBCD(digits) {
		cur.WriteByte(c.ord.FlipByte(b ^ signMask))
	}

	return nil
}

// zeroFlags returns the 2-bit flag value (bit1=¬sign, bit0=isZero⊕¬sign)
// for the zero value, treating zero as non-negative.
func zeroFlags() byte {
	const notSign = 1 // zero counts as non-negative
	const isZero = 1

	return notSign<<1 | (isZero ^ notSign)
}

// valueFlags returns the 2-bit flag value for a non-zero value of the
// given sign (-1 or +1).
func valueFlags(sign int) byte {
	notSign := byte(0)
	if sign > 0 {
		notSign = 1
	}

	return notSign<<1 | (0 ^ notSign)
}

// Skip advances cur past one encoded value without materializing it.
func (c *Codec) Skip(cur *cursor.Cursor) error {
	_, isNullOrZero, _, signMask, trailingLen, err := c.peekHeader(cur)
	if err != nil {
		return err
	}
	if isNullOrZero {
		cur.Advance(1)

		return nil
	}

	cur.Advance(1 + trailingLen)

	for {
		b, ok := cur.ReadByte()
		if !ok {
			return fmt.Errorf("decimal: ran out of bytes before BCD terminator: %w", codec.ErrTruncated)
		}
		raw := c.ord.FlipByte(b) ^ signMask
		hi := raw >> 4
		lo := raw & 0x0F
		if hi == 0 {
			return nil
		}
		if lo == 0 {
			return nil
		}
	}
}

// peekHeader reads (without consuming) the header byte and classifies
// it as NULL, zero, or a non-zero value, returning enough information
// to skip or decode the rest of the encoding.
func (c *Codec) peekHeader(cur *cursor.Cursor) (rawHeader byte, isNullOrZero bool, sign int, signMask byte, trailingLen int, err error) {
	raw, ok := cur.PeekByte()
	if !ok {
		return 0, false, 0, 0, 0, fmt.Errorf("decimal: no header byte available: %w", codec.ErrTruncated)
	}
	unflipped := c.ord.FlipByte(raw)
	if unflipped == 0x00 {
		return unflipped, true, 0, 0, 0, nil
	}

	flags := unflipped >> 6
	notSign := (flags >> 1) & 1
	isZeroBit := flags & 1
	isZero := isZeroBit^notSign == 1

	if isZero {
		return unflipped, true, 0, 0, 0, nil
	}

	sign = 1
	if notSign == 0 {
		sign = -1
		signMask = 0xFF
	}

	h := (unflipped & 0x3F) ^ signMask
	n, lerr := varint.SignedReservedHeaderLength(h, reservedBits)
	if lerr != nil {
		return 0, false, 0, 0, 0, lerr
	}

	return unflipped, false, sign, signMask, n - 1, nil
}

// Deserialize reads one encoded value from cur.
func (c *Codec) Deserialize(cur *cursor.Cursor) (Value, error) {
	_, isNullOrZero, sign, signMask, trailingLen, err := c.peekHeader(cur)
	if err != nil {
		return Value{}, err
	}

	rawHeaderByte, _ := cur.ReadByte()
	unflipped := c.ord.FlipByte(rawHeaderByte)

	if isNullOrZero {
		if unflipped == 0x00 {
			return Value{}, nil
		}

		return Zero, nil
	}

	h := (unflipped & 0x3F) ^ signMask

	if cur.Remaining() < trailingLen {
		return Value{}, fmt.Errorf("decimal: need %d exponent trailing bytes, have %d: %w", trailingLen, cur.Remaining(), codec.ErrTruncated)
	}
	rawTrailing, _ := cur.ReadBytes(trailingLen)
	trailing := make([]byte, trailingLen)
	for i, b := range rawTrailing {
		trailing[i] = c.ord.FlipByte(b) ^ signMask
	}

	e, err := varint.DecodeSignedReserved(h, trailing, reservedBits)
	if err != nil {
		return Value{}, err
	}

	var digits []byte
	for {
		b, ok := cur.ReadByte()
		if !ok {
			return Value{}, fmt.Errorf("decimal: ran out of bytes before BCD terminator: %w", codec.ErrTruncated)
		}
		raw := c.ord.FlipByte(b) ^ signMask

		hi := raw >> 4
		if hi == 0 {
			break
		}
		if hi > 10 {
			return Value{}, fmt.Errorf("decimal: invalid BCD nibble %d: %w", hi, codec.ErrCorrupt)
		}
		digits = append(digits, '0'+hi-1)

		lo := raw & 0x0F
		if lo == 0 {
			break
		}
		if lo > 10 {
			return Value{}, fmt.Errorf("decimal: invalid BCD nibble %d: %w", lo, codec.ErrCorrupt)
		}
		digits = append(digits, '0'+lo-1)
	}

	p := int64(len(digits))
	s := e - p + 1
	scale := -s

	mag := new(big.Int)
	if _, ok := mag.SetString(string(digits), 10); !ok {
		return Value{}, fmt.Errorf("decimal: corrupt significand digits %q: %w", digits, codec.ErrCorrupt)
	}
	if sign < 0 {
		mag.Neg(mag)
	}

	return New(mag, int32(scale)), nil
}

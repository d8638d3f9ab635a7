// Package varint implements the self-describing, order-preserving
// variable-length integer codec: a header byte whose top bits name the
// value's sign and the total encoded length, followed by zero or more
// big-endian data bytes. Both a signed and an unsigned variant are
// provided; both reserve a header value for NULL so the codec can
// represent an absent value without a side channel.
//
// The header packs a small state machine of XOR-composed flag bits so
// that unsigned lexicographic comparison of header bytes alone sorts
// negative-long < negative-short < non-negative-short <
// non-negative-long, matching the sort order of the underlying
// integers. A region of up to 2 bits at the top of the signed header
// can be handed to an embedding codec through EncodeSignedReserved,
// DecodeSignedReserved and SignedReservedHeaderLength (decimal uses
// this to fold its sign/zero flags into the same byte as its
// exponent). The unsigned variant has no reserved-bit API: its header
// always uses all 8 bits.
package varint

import (
	"fmt"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

// SignedMaxReservedBits is the largest reserved-bit count a signed
// header can donate to an embedder. Above this, the N≥3 byte class
// would have no header data bits left to shrink.
const SignedMaxReservedBits = 2

// UnsignedMaxReservedBits is the unsigned equivalent of
// SignedMaxReservedBits; unsigned headers start with one extra data
// bit per class since no sign bit is required.
const UnsignedMaxReservedBits = 3

// signedTotalBits returns the total two's-complement bit width (including the
// sign bit) committed to representing a value that needs n encoded
// bytes, at reservedBits r.
func signedTotalBits(n, r int) int {
	switch {
	case n == 1:
		return 7 - r
	case n == 2:
		return 14 - r
	default:
		return 8*(n-1) + 3 - r
	}
}

// signedByteCount returns the minimal byte count, 1 through 9, able to
// hold v at the given reserved-bit budget.
func signedByteCount(v int64, r int) (int, error) {
	for n := 1; n <= 9; n++ {
		bits := signedTotalBits(n, r)
		if bits < 1 {
			continue
		}
		// bits-1 >= 63 means this class already spans the full int64
		// range; avoid computing a shift that overflows int64.
		if bits-1 >= 63 {
			return n, nil
		}
		lo := -(int64(1) << uint(bits-1))
		hi := int64(1)<<uint(bits-1) - 1
		if v >= lo && v <= hi {
			return n, nil
		}
	}

	return 0, fmt.Errorf("varint: value %d out of signed range at %d reserved bits: %w", v, r, codec.ErrOutOfRange)
}

// encodeSigned packs v into a header byte (top r bits zero, to be
// filled in by an embedder) and 0 or more big-endian trailing bytes.
func encodeSigned(v int64, r int) (header byte, trailing []byte, err error) {
	n, err := signedByteCount(v, r)
	if err != nil {
		return 0, nil, err
	}

	width := 8 - r
	posFlag := 0
	if v >= 0 {
		posFlag = 1
	}
	sign := 1 - posFlag

	totalBits := signedTotalBits(n, r)
	dataBits := totalBits - 1
	mask := uint64(1)<<uint(dataBits) - 1
	data := uint64(v) & mask

	switch {
	case n == 1:
		singleFlag := 1 ^ posFlag
		h := uint64(posFlag)<<(width-1) | uint64(singleFlag)<<(width-2) | data

		return byte(h), nil, nil

	case n == 2:
		singleFlag := posFlag
		doubleFlag := 1 ^ posFlag
		headerPortion := data >> 8
		trailingByte := byte(data & 0xFF)
		h := uint64(posFlag)<<(width-1) | uint64(singleFlag)<<(width-2) | uint64(doubleFlag)<<(width-3) | headerPortion

		return byte(h), []byte{trailingByte}, nil

	default:
		singleFlag := posFlag
		doubleFlag := posFlag
		trailingBits := 8 * (n - 1)
		headerPortion := data >> uint(trailingBits)
		trailingValue := data & (uint64(1)<<uint(trailingBits) - 1)

		length := n - 3
		lenXored := length
		if sign == 1 {
			lenXored = (^length) & 0x7
		}

		h := uint64(posFlag)<<(width-1) | uint64(singleFlag)<<(width-2) | uint64(doubleFlag)<<(width-3) | uint64(lenXored)<<(width-6) | headerPortion

		body := make([]byte, n-1)
		for i := range body {
			shift := uint(trailingBits - 8*(i+1))
			body[i] = byte(trailingValue >> shift)
		}

		return byte(h), body, nil
	}
}

// decodeSigned is the dual of encodeSigned: given the header byte (top
// r bits already masked to zero by the caller) and the n-1 trailing
// bytes, it recovers v.
func decodeSigned(header byte, trailing []byte, r int) (int64, error) {
	width := 8 - r
	h := uint64(header)
	posFlag := int((h >> uint(width-1)) & 1)
	singleFlag := int((h >> uint(width-2)) & 1)

	single := (1 ^ posFlag) == singleFlag
	if single {
		dataBits := (width - 2)
		data := h & (uint64(1)<<uint(dataBits) - 1)

		return signExtend(data, dataBits, posFlag), nil
	}

	doubleFlag := int((h >> uint(width-3)) & 1)
	double := (1 ^ posFlag) == doubleFlag
	if double {
		if len(trailing) != 1 {
			return 0, fmt.Errorf("varint: double-byte header needs 1 trailing byte, got %d: %w", len(trailing), codec.ErrCorrupt)
		}
		headerDataBits := width - 3
		headerPortion := h & (uint64(1)<<uint(headerDataBits) - 1)
		data := headerPortion<<8 | uint64(trailing[0])

		return signExtend(data, headerDataBits+8, posFlag), nil
	}

	sign := 1 - posFlag
	lenField := int((h >> uint(width-6)) & 0x7)
	length := lenField
	if sign == 1 {
		length = (^lenField) & 0x7
	}
	n := length + 3
	if len(trailing) != n-1 {
		return 0, fmt.Errorf("varint: %d-byte header needs %d trailing bytes, got %d: %w", n, n-1, len(trailing), codec.ErrCorrupt)
	}

	headerDataBits := width - 6
	if headerDataBits < 0 {
		return 0, fmt.Errorf("varint: reserved-bit count leaves no header data bits: %w", codec.ErrCorrupt)
	}
	headerPortion := h & (uint64(1)<<uint(headerDataBits) - 1)
	trailingBits := 8 * (n - 1)

	var trailingValue uint64
	for _, b := range trailing {
		trailingValue = trailingValue<<8 | uint64(b)
	}
	data := headerPortion<<uint(trailingBits) | trailingValue

	return signExtend(data, headerDataBits+trailingBits, posFlag), nil
}

// signExtend rebuilds the int64 whose low `bits` bits are data and
// whose sign is carried separately by posFlag (1 for non-negative), as
// the header's sign bit is not part of the stored data bits.
func signExtend(data uint64, bits, posFlag int) int64 {
	if posFlag == 1 || bits >= 64 {
		return int64(data)
	}

	return int64(data | ^(uint64(1)<<uint(bits) - 1))
}

// signedHeaderLength returns the total byte length n named by header,
// read at reservedBits r (without needing the trailing bytes). Used by
// Skip and by embedding codecs that need the length before reading the
// body.
func signedHeaderLength(header byte, r int) (n int, err error) {
	width := 8 - r
	h := uint64(header)
	posFlag := int((h >> uint(width-1)) & 1)
	singleFlag := int((h >> uint(width-2)) & 1)
	if (1 ^ posFlag) == singleFlag {
		return 1, nil
	}

	doubleFlag := int((h >> uint(width-3)) & 1)
	if (1 ^ posFlag) == doubleFlag {
		return 2, nil
	}

	sign := 1 - posFlag
	lenField := int((h >> uint(width-6)) & 0x7)
	length := lenField
	if sign == 1 {
		length = (^lenField) & 0x7
	}
	if length > 6 {
		return 0, fmt.Errorf("varint: length class %d exceeds maximum: %w", length, codec.ErrCorrupt)
	}

	return length + 3, nil
}

// EncodeSignedReserved packs v the same way Signed does, but leaves
// the top r bits of the header byte zero for an embedding codec (such
// as decimal) to fill in. r must not exceed SignedMaxReservedBits.
func EncodeSignedReserved(v int64, r int) (header byte, trailing []byte, err error) {
	if r < 0 || r > SignedMaxReservedBits {
		return 0, nil, fmt.Errorf("varint: reserved bits %d exceeds signed maximum %d: %w", r, SignedMaxReservedBits, codec.ErrInvalidConfiguration)
	}

	return encodeSigned(v, r)
}

// DecodeSignedReserved is the dual of EncodeSignedReserved. The caller
// must first mask off and remember the top r bits it embedded.
func DecodeSignedReserved(header byte, trailing []byte, r int) (int64, error) {
	if r < 0 || r > SignedMaxReservedBits {
		return 0, fmt.Errorf("varint: reserved bits %d exceeds signed maximum %d: %w", r, SignedMaxReservedBits, codec.ErrInvalidConfiguration)
	}

	return decodeSigned(header, trailing, r)
}

// SignedReservedHeaderLength reports the total encoded length (header
// plus trailing bytes) named by header, at reserved-bit budget r,
// without needing the trailing bytes. The caller masks off its own
// top r bits before calling this.
func SignedReservedHeaderLength(header byte, r int) (int, error) {
	if r < 0 || r > SignedMaxReservedBits {
		return 0, fmt.Errorf("varint: reserved bits %d exceeds signed maximum %d: %w", r, SignedMaxReservedBits, codec.ErrInvalidConfiguration)
	}

	return signedHeaderLength(header, r)
}

// Int64 is a nullable signed 64-bit integer, the logical value type of
// Signed.
type Int64 struct {
	Value int64
	Valid bool
}

// NullInt64 is the NULL value of Int64.
var NullInt64 = Int64{}

// SomeInt64 wraps v as a present (non-NULL) Int64.
func SomeInt64(v int64) Int64 {
	return Int64{Value: v, Valid: true}
}

// Signed is an order-preserving codec for nullable signed 64-bit
// integers.
type Signed struct {
	ord order.Order
}

var _ codec.Codec[Int64] = (*Signed)(nil)

// NewSigned builds a Signed codec for the given direction.
func NewSigned(o order.Order) *Signed {
	return &Signed{ord: o}
}

// Order returns the direction this codec encodes for.
func (s *Signed) Order() order.Order { return s.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (s *Signed) SetOrder(o order.Order) { s.ord = o }

// SerializedLength returns the number of bytes Serialize will write
// for v.
func (s *Signed) SerializedLength(v Int64) (int, error) {
	if !v.Valid {
		return 1, nil
	}
	n, err := signedByteCount(v.Value, 0)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// Serialize writes v's encoding to c.
func (s *Signed) Serialize(v Int64, c *cursor.Cursor) error {
	if !v.Valid {
		c.WriteByte(s.ord.FlipByte(0x00))

		return nil
	}

	header, trailing, err := encodeSigned(v.Value, 0)
	if err != nil {
		return err
	}

	c.WriteByte(s.ord.FlipByte(header))
	for _, b := range trailing {
		c.WriteByte(s.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (s *Signed) Skip(c *cursor.Cursor) error {
	n, _, err := s.peekLength(c)
	if err != nil {
		return err
	}
	if c.Remaining() < n {
		return fmt.Errorf("varint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(n)

	return nil
}

// Deserialize reads one encoded value from c.
func (s *Signed) Deserialize(c *cursor.Cursor) (Int64, error) {
	n, header, err := s.peekLength(c)
	if err != nil {
		return NullInt64, err
	}
	if header == 0x00 {
		c.Advance(1)

		return NullInt64, nil
	}
	if c.Remaining() < n {
		return NullInt64, fmt.Errorf("varint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}

	raw, _ := c.ReadBytes(n)
	unflipped := make([]byte, n)
	for i, b := range raw {
		unflipped[i] = s.ord.FlipByte(b)
	}

	v, err := decodeSigned(unflipped[0], unflipped[1:], 0)
	if err != nil {
		return NullInt64, err
	}

	return SomeInt64(v), nil
}

// peekLength reads (without consuming) the header byte and returns the
// total encoded length and the un-flipped header value. It treats the
// NULL header specially: length 1.
func (s *Signed) peekLength(c *cursor.Cursor) (n int, header byte, err error) {
	raw, ok := c.PeekByte()
	if !ok {
		return 0, 0, fmt.Errorf("varint: no header byte available: %w", codec.ErrTruncated)
	}
	header = s.ord.FlipByte(raw)
	if header == 0x00 {
		return 1, header, nil
	}

	n, err = signedHeaderLength(header, 0)
	if err != nil {
		return 0, 0, err
	}

	return n, header, nil
}

// Uint64 is a nullable unsigned 64-bit integer, the logical value type
// of Unsigned.
type Uint64 struct {
	Value uint64
	Valid bool
}

// NullUint64 is the NULL value of Uint64.
var NullUint64 = Uint64{}

// SomeUint64 wraps v as a present (non-NULL) Uint64.
func SomeUint64(v uint64) Uint64 {
	return Uint64{Value: v, Valid: true}
}

// unsignedByteCount returns the minimal byte count, 1 through 9, able
// to hold v.
func unsignedByteCount(v uint64) (int, error) {
	switch {
	case v <= 1<<7-1:
		return 1, nil
	case v <= 1<<14-1:
		return 2, nil
	}
	for n := 3; n <= 9; n++ {
		bits := 8*(n-1) + 3
		if bits >= 64 {
			return n, nil
		}
		if v <= uint64(1)<<uint(bits)-1 {
			return n, nil
		}
	}

	return 0, fmt.Errorf("varint: value %d out of unsigned range: %w", v, codec.ErrOutOfRange)
}

// encodeUnsigned packs v into a pre-bias header byte and trailing
// bytes; the caller (Serialize) applies the +1 header bias afterward.
func encodeUnsigned(v uint64) (header byte, trailing []byte) {
	n, _ := unsignedByteCount(v)
	switch {
	case n == 1:
		return byte(v & 0x7F), nil

	case n == 2:
		data := v & (1<<14 - 1)

		return byte(0x80 | (data >> 8)), []byte{byte(data & 0xFF)}

	default:
		trailingBits := 8 * (n - 1)
		headerDataBits := 3
		data := v & (uint64(1)<<uint(trailingBits+headerDataBits) - 1)
		length := n - 3
		headerPortion := data >> uint(trailingBits)
		trailingValue := data & (uint64(1)<<uint(trailingBits) - 1)

		h := 0xC0 | byte(length)<<3 | byte(headerPortion)
		body := make([]byte, n-1)
		for i := range body {
			shift := uint(trailingBits - 8*(i+1))
			body[i] = byte(trailingValue >> shift)
		}

		return h, body
	}
}

// decodeUnsigned is the dual of encodeUnsigned, operating on the
// already de-biased header byte.
func decodeUnsigned(header byte, trailing []byte) (uint64, error) {
	h := uint64(header)
	if h&0x80 == 0 {
		return h & 0x7F, nil
	}
	if h&0x40 == 0 {
		if len(trailing) != 1 {
			return 0, fmt.Errorf("varint: unsigned double-byte header needs 1 trailing byte, got %d: %w", len(trailing), codec.ErrCorrupt)
		}

		return (h&0x3F)<<8 | uint64(trailing[0]), nil
	}

	length := int((h >> 3) & 0x7)
	n := length + 3
	if len(trailing) != n-1 {
		return 0, fmt.Errorf("varint: unsigned %d-byte header needs %d trailing bytes, got %d: %w", n, n-1, len(trailing), codec.ErrCorrupt)
	}
	trailingBits := 8 * (n - 1)
	headerPortion := h & 0x7
	var trailingValue uint64
	for _, b := range trailing {
		trailingValue = trailingValue<<8 | uint64(b)
	}

	return headerPortion<<uint(trailingBits) | trailingValue, nil
}

// unsignedHeaderLength reports the total encoded length named by a
// de-biased header byte, without needing the trailing bytes.
func unsignedHeaderLength(header byte) int {
	if header&0x80 == 0 {
		return 1
	}
	if header&0x40 == 0 {
		return 2
	}

	return int((header>>3)&0x7) + 3
}

// Unsigned is an order-preserving codec for nullable unsigned 64-bit
// integers.
type Unsigned struct {
	ord order.Order
}

var _ codec.Codec[Uint64] = (*Unsigned)(nil)

// NewUnsigned builds an Unsigned codec for the given direction.
func NewUnsigned(o order.Order) *Unsigned {
	return &Unsigned{ord: o}
}

// Order returns the direction this codec encodes for.
func (u *Unsigned) Order() order.Order { return u.ord }

// SetOrder reconfigures the codec to encode for the given direction.
func (u *Unsigned) SetOrder(o order.Order) { u.ord = o }

// SerializedLength returns the number of bytes Serialize will write
// for v.
func (u *Unsigned) SerializedLength(v Uint64) (int, error) {
	if !v.Valid {
		return 1, nil
	}

	return unsignedByteCount(v.Value)
}

// Serialize writes v's encoding to c.
func (u *Unsigned) Serialize(v Uint64, c *cursor.Cursor) error {
	if !v.Valid {
		c.WriteByte(u.ord.FlipByte(0x00))

		return nil
	}

	header, trailing := encodeUnsigned(v.Value)
	if header == 0xFF {
		return fmt.Errorf("varint: unsigned header bias overflow encoding %d: %w", v.Value, codec.ErrOutOfRange)
	}
	header++

	c.WriteByte(u.ord.FlipByte(header))
	for _, b := range trailing {
		c.WriteByte(u.ord.FlipByte(b))
	}

	return nil
}

// Skip advances c past one encoded value without materializing it.
func (u *Unsigned) Skip(c *cursor.Cursor) error {
	n, _, err := u.peekLength(c)
	if err != nil {
		return err
	}
	if c.Remaining() < n {
		return fmt.Errorf("varint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}
	c.Advance(n)

	return nil
}

// Deserialize reads one encoded value from c.
func (u *Unsigned) Deserialize(c *cursor.Cursor) (Uint64, error) {
	n, header, err := u.peekLength(c)
	if err != nil {
		return NullUint64, err
	}
	if header == 0x00 {
		c.Advance(1)

		return NullUint64, nil
	}
	if c.Remaining() < n {
		return NullUint64, fmt.Errorf("varint: need %d bytes, have %d: %w", n, c.Remaining(), codec.ErrTruncated)
	}

	raw, _ := c.ReadBytes(n)
	unflipped := make([]byte, n)
	for i, b := range raw {
		unflipped[i] = u.ord.FlipByte(b)
	}
	debiased := unflipped[0] - 1

	v, err := decodeUnsigned(debiased, unflipped[1:])
	if err != nil {
		return NullUint64, err
	}

	return SomeUint64(v), nil
}

func (u *Unsigned) peekLength(c *cursor.Cursor) (n int, header byte, err error) {
	raw, ok := c.PeekByte()
	if !ok {
		return 0, 0, fmt.Errorf("varint: no header byte available: %w", codec.ErrTruncated)
	}
	header = u.ord.FlipByte(raw)
	if header == 0x00 {
		return 1, header, nil
	}

	return unsignedHeaderLength(header - 1), header, nil
}

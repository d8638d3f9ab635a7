package fixedint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

func TestSignedRoundTripAllWidths(t *testing.T) {
	widths := []Width{Width8, Width16, Width32, Width64}
	values := map[Width][]int64{
		Width8:  {-128, -1, 0, 1, 127},
		Width16: {-32768, -1, 0, 1, 32767},
		Width32: {-2147483648, -1, 0, 1, 2147483647},
		Width64: {-9223372036854775808, -1, 0, 1, 9223372036854775807},
	}

	for _, w := range widths {
		s := NewSigned(w, order.Asc)
		for _, v := range values[w] {
			c := cursor.New(make([]byte, int(w)))
			require.NoError(t, s.Serialize(v, c))

			n, err := s.SerializedLength(v)
			require.NoError(t, err)
			require.Equal(t, int(w), n)

			d := cursor.New(c.Bytes())
			got, err := s.Deserialize(d)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestSignedOrderPreservation(t *testing.T) {
	s := NewSigned(Width32, order.Asc)
	values := []int64{-2147483648, -1000, -1, 0, 1, 1000, 2147483647}

	var encoded [][]byte
	for _, v := range values {
		c := cursor.New(make([]byte, 4))
		require.NoError(t, s.Serialize(v, c))
		encoded = append(encoded, append([]byte(nil), c.Bytes()...))
	}

	for i := 1; i < len(encoded); i++ {
		require.True(t, lexLess(encoded[i-1], encoded[i]), "enc(%d) must sort below enc(%d)", values[i-1], values[i])
	}
}

func TestSignedOutOfRange(t *testing.T) {
	s := NewSigned(Width8, order.Asc)
	c := cursor.New(make([]byte, 1))
	err := s.Serialize(200, c)
	require.ErrorIs(t, err, codec.ErrOutOfRange)
}

func TestUnsignedRoundTrip(t *testing.T) {
	u := NewUnsigned(Width16, order.Asc)
	for _, v := range []uint64{0, 1, 65535} {
		c := cursor.New(make([]byte, 2))
		require.NoError(t, u.Serialize(v, c))

		d := cursor.New(c.Bytes())
		got, err := u.Deserialize(d)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUnsignedOrderPreservation(t *testing.T) {
	u := NewUnsigned(Width16, order.Asc)
	values := []uint64{0, 1, 1000, 65535}

	var encoded [][]byte
	for _, v := range values {
		c := cursor.New(make([]byte, 2))
		require.NoError(t, u.Serialize(v, c))
		encoded = append(encoded, append([]byte(nil), c.Bytes()...))
	}
	for i := 1; i < len(encoded); i++ {
		require.True(t, lexLess(encoded[i-1], encoded[i]))
	}
}

func TestUnsignedOutOfRange(t *testing.T) {
	u := NewUnsigned(Width8, order.Asc)
	c := cursor.New(make([]byte, 1))
	err := u.Serialize(300, c)
	require.ErrorIs(t, err, codec.ErrOutOfRange)
}

func TestDescInverts(t *testing.T) {
	asc := NewSigned(Width16, order.Asc)
	desc := NewSigned(Width16, order.Desc)

	for _, v := range []int64{-100, 0, 100} {
		a := cursor.New(make([]byte, 2))
		require.NoError(t, asc.Serialize(v, a))

		d := cursor.New(make([]byte, 2))
		require.NoError(t, desc.Serialize(v, d))

		for i := range a.Bytes() {
			require.Equal(t, a.Bytes()[i]^0xFF, d.Bytes()[i])
		}

		back := cursor.New(d.Bytes())
		got, err := desc.Deserialize(back)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestSkipAdvancesFixedWidth(t *testing.T) {
	s := NewSigned(Width32, order.Asc)
	c := cursor.New(make([]byte, 4))
	require.NoError(t, s.Serialize(42, c))

	skip := cursor.New(c.Bytes())
	require.NoError(t, s.Skip(skip))
	require.Equal(t, 4, skip.Offset())
}

func TestTruncated(t *testing.T) {
	s := NewSigned(Width32, order.Asc)
	c := cursor.New([]byte{1, 2})
	_, err := s.Deserialize(c)
	require.ErrorIs(t, err, codec.ErrTruncated)
}

func lexLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}

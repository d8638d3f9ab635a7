package ieee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

func TestDoubleConcreteVectors(t *testing.T) {
	d := NewDouble(order.Asc)

	tests := []struct {
		in   Float64
		want []byte
	}{
		{SomeFloat64(0), []byte{0x80, 0, 0, 0, 0, 0, 0, 1}},
		{SomeFloat64(math.Copysign(0, -1)), []byte{0x80, 0, 0, 0, 0, 0, 0, 0}},
		{SomeFloat64(math.Inf(1)), []byte{0xFF, 0xF0, 0, 0, 0, 0, 0, 1}},
		{NullFloat64, []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		c := cursor.New(make([]byte, 8))
		require.NoError(t, d.Serialize(tt.in, c))
		require.Equal(t, tt.want, c.Bytes())
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	d := NewDouble(order.Asc)
	values := []float64{0, math.Copysign(0, -1), 1, -1, 3.14159, -3.14159, math.Inf(1), math.Inf(-1), math.MaxFloat64, -math.MaxFloat64}

	for _, v := range values {
		c := cursor.New(make([]byte, 8))
		require.NoError(t, d.Serialize(SomeFloat64(v), c))

		got, err := d.Deserialize(cursor.New(c.Bytes()))
		require.NoError(t, err)
		require.True(t, got.Valid)
		require.Equal(t, v, got.Value)
	}
}

func TestDoubleNaNCanonicalization(t *testing.T) {
	d := NewDouble(order.Asc)

	nan1 := math.Float64frombits(0x7FF8000000000001)
	nan2 := math.Float64frombits(0xFFF8000000000001)

	c1 := cursor.New(make([]byte, 8))
	require.NoError(t, d.Serialize(SomeFloat64(nan1), c1))

	c2 := cursor.New(make([]byte, 8))
	require.NoError(t, d.Serialize(SomeFloat64(nan2), c2))

	require.Equal(t, c1.Bytes(), c2.Bytes(), "distinct NaN payloads must serialize identically")
}

func TestDoubleNull(t *testing.T) {
	d := NewDouble(order.Asc)
	c := cursor.New(make([]byte, 8))
	require.NoError(t, d.Serialize(NullFloat64, c))

	got, err := d.Deserialize(cursor.New(c.Bytes()))
	require.NoError(t, err)
	require.False(t, got.Valid)
}

func TestDoubleOrderPreservation(t *testing.T) {
	d := NewDouble(order.Asc)
	values := []float64{
		math.Inf(-1), -math.MaxFloat64, -1000, -1, math.Copysign(0, -1),
		0, 1, 1000, math.MaxFloat64, math.Inf(1),
	}

	var encoded [][]byte
	for _, v := range values {
		c := cursor.New(make([]byte, 8))
		require.NoError(t, d.Serialize(SomeFloat64(v), c))
		encoded = append(encoded, append([]byte(nil), c.Bytes()...))
	}

	nullBuf := cursor.New(make([]byte, 8))
	require.NoError(t, d.Serialize(NullFloat64, nullBuf))
	require.True(t, lexLess(nullBuf.Bytes(), encoded[0]), "NULL must sort below every non-null value")

	for i := 1; i < len(encoded); i++ {
		require.True(t, lexLess(encoded[i-1], encoded[i]), "enc(%v) must sort below enc(%v)", values[i-1], values[i])
	}

	nanBuf := cursor.New(make([]byte, 8))
	require.NoError(t, d.Serialize(SomeFloat64(math.NaN()), nanBuf))
	require.True(t, lexLess(encoded[len(encoded)-1], nanBuf.Bytes()), "NaN must sort greatest")
}

func TestDoubleDescInverts(t *testing.T) {
	asc := NewDouble(order.Asc)
	desc := NewDouble(order.Desc)

	for _, v := range []float64{-1, 0, 1, math.Inf(1)} {
		a := cursor.New(make([]byte, 8))
		require.NoError(t, asc.Serialize(SomeFloat64(v), a))

		dd := cursor.New(make([]byte, 8))
		require.NoError(t, desc.Serialize(SomeFloat64(v), dd))

		for i := range a.Bytes() {
			require.Equal(t, a.Bytes()[i]^0xFF, dd.Bytes()[i])
		}

		got, err := desc.Deserialize(cursor.New(dd.Bytes()))
		require.NoError(t, err)
		require.Equal(t, v, got.Value)
	}
}

func TestDoubleTruncated(t *testing.T) {
	d := NewDouble(order.Asc)
	c := cursor.New([]byte{1, 2, 3})
	_, err := d.Deserialize(c)
	require.ErrorIs(t, err, codec.ErrTruncated)
}

func TestSingleRoundTrip(t *testing.T) {
	s := NewSingle(order.Asc)
	values := []float32{0, float32(math.Copysign(0, -1)), 1, -1, 3.14159, float32(math.Inf(1)), float32(math.Inf(-1))}

	for _, v := range values {
		c := cursor.New(make([]byte, 4))
		require.NoError(t, s.Serialize(SomeFloat32(v), c))

		got, err := s.Deserialize(cursor.New(c.Bytes()))
		require.NoError(t, err)
		require.True(t, got.Valid)
		require.Equal(t, v, got.Value)
	}
}

func TestSingleOrderPreservation(t *testing.T) {
	s := NewSingle(order.Asc)
	values := []float32{float32(math.Inf(-1)), -1000, -1, 0, 1, 1000, float32(math.Inf(1))}

	var encoded [][]byte
	for _, v := range values {
		c := cursor.New(make([]byte, 4))
		require.NoError(t, s.Serialize(SomeFloat32(v), c))
		encoded = append(encoded, append([]byte(nil), c.Bytes()...))
	}
	for i := 1; i < len(encoded); i++ {
		require.True(t, lexLess(encoded[i-1], encoded[i]))
	}
}

func TestSingleNull(t *testing.T) {
	s := NewSingle(order.Asc)
	c := cursor.New(make([]byte, 4))
	require.NoError(t, s.Serialize(NullFloat32, c))
	require.Equal(t, []byte{0, 0, 0, 0}, c.Bytes())
}

func lexLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}

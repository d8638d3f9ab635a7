package utf8key

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

func roundTrip(t *testing.T, c *Codec, v String) String {
	t.Helper()

	n, err := c.SerializedLength(v)
	require.NoError(t, err)

	cur := cursor.New(make([]byte, n))
	require.NoError(t, c.Serialize(v, cur))
	require.Equal(t, n, cur.Offset())

	d := cursor.New(cur.Bytes())
	got, err := c.Deserialize(d)
	require.NoError(t, err)
	require.Equal(t, cur.Offset(), d.Offset())

	return got
}

func TestAscConcreteVectors(t *testing.T) {
	c := New(order.Asc)

	tests := []struct {
		in   String
		want []byte
	}{
		{SomeString("ab"), []byte{0x63, 0x64, 0x01}},
		{NullString, []byte{0x00}},
		{SomeString(""), []byte{0x01}},
	}

	for _, tt := range tests {
		n, err := c.SerializedLength(tt.in)
		require.NoError(t, err)
		cur := cursor.New(make([]byte, n))
		require.NoError(t, c.Serialize(tt.in, cur))
		require.Equal(t, tt.want, cur.Bytes())

		got := roundTrip(t, c, tt.in)
		require.Equal(t, tt.in, got)
	}
}

func TestRoundTripArbitrary(t *testing.T) {
	c := New(order.Asc)
	inputs := []string{"", "a", "ab", "hello, world", "z\x00z", "\x01\x01\x01"}

	for _, in := range inputs {
		got := roundTrip(t, c, SomeString(in))
		require.True(t, got.Valid)
		require.Equal(t, in, got.Value)
	}
}

func TestNull(t *testing.T) {
	c := New(order.Asc)
	got := roundTrip(t, c, NullString)
	require.False(t, got.Valid)
}

func TestOrderPreservation(t *testing.T) {
	c := New(order.Asc)
	values := []string{"", "a", "aa", "ab", "b", "z"}

	var encoded [][]byte
	for _, v := range values {
		n, err := c.SerializedLength(SomeString(v))
		require.NoError(t, err)
		cur := cursor.New(make([]byte, n))
		require.NoError(t, c.Serialize(SomeString(v), cur))
		encoded = append(encoded, cur.Bytes())
	}

	nullN, _ := c.SerializedLength(NullString)
	nullCur := cursor.New(make([]byte, nullN))
	require.NoError(t, c.Serialize(NullString, nullCur))
	require.True(t, lexLess(nullCur.Bytes(), encoded[0]), "NULL must sort below every non-null value")

	for i := 1; i < len(encoded); i++ {
		require.True(t, lexLess(encoded[i-1], encoded[i]), "enc(%q) must sort below enc(%q)", values[i-1], values[i])
	}
}

func TestDescInvertsAndRoundTrips(t *testing.T) {
	asc := New(order.Asc)
	desc := New(order.Desc)

	in := SomeString("hello")

	lenA, _ := asc.SerializedLength(in)
	a := cursor.New(make([]byte, lenA))
	require.NoError(t, asc.Serialize(in, a))

	lenD, _ := desc.SerializedLength(in)
	d := cursor.New(make([]byte, lenD))
	require.NoError(t, desc.Serialize(in, d))

	require.Equal(t, len(a.Bytes()), len(d.Bytes()))
	for i := range a.Bytes() {
		require.Equal(t, a.Bytes()[i]^0xFF, d.Bytes()[i])
	}

	back := cursor.New(d.Bytes())
	got, err := desc.Deserialize(back)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestImplicitTerminationOmitsTerminatorForNonEmpty(t *testing.T) {
	c := New(order.Asc)
	require.NoError(t, c.SetMustTerminate(false))

	in := SomeString("ab")
	n, err := c.SerializedLength(in)
	require.NoError(t, err)
	require.Equal(t, 2, n, "no terminator byte when must-terminate is disabled and value is non-empty")

	cur := cursor.New(make([]byte, n))
	require.NoError(t, c.Serialize(in, cur))

	d := cursor.New(cur.Bytes())
	got, err := c.Deserialize(d)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestImplicitTerminationKeepsTerminatorForEmpty(t *testing.T) {
	c := New(order.Asc)
	require.NoError(t, c.SetMustTerminate(false))

	n, err := c.SerializedLength(SomeString(""))
	require.NoError(t, err)
	require.Equal(t, 1, n, "empty string still writes its terminator, to distinguish from NULL")

	cur := cursor.New(make([]byte, n))
	require.NoError(t, c.Serialize(SomeString(""), cur))
	require.Equal(t, []byte{0x01}, cur.Bytes())

	got := roundTrip(t, c, SomeString(""))
	require.True(t, got.Valid)
	require.Equal(t, "", got.Value)
}

func TestImplicitTerminationNullIsZeroBytes(t *testing.T) {
	c := New(order.Asc)
	require.NoError(t, c.SetMustTerminate(false))

	n, err := c.SerializedLength(NullString)
	require.NoError(t, err)
	require.Equal(t, 0, n, "NULL is the absence of any bytes under implicit termination")

	got, err := c.Deserialize(cursor.New(nil))
	require.NoError(t, err)
	require.False(t, got.Valid)
}

func TestSetMustTerminateRejectsDesc(t *testing.T) {
	c := New(order.Desc)
	err := c.SetMustTerminate(false)
	require.ErrorIs(t, err, codec.ErrInvalidConfiguration)
}

func TestTruncatedInput(t *testing.T) {
	c := New(order.Asc)
	cur := cursor.New([]byte{0x63})
	_, err := c.Deserialize(cur)
	require.ErrorIs(t, err, codec.ErrTruncated)
}

func TestSkipMatchesSerializedLength(t *testing.T) {
	c := New(order.Asc)

	for _, v := range []String{SomeString(""), SomeString("ab"), NullString} {
		n, err := c.SerializedLength(v)
		require.NoError(t, err)
		cur := cursor.New(make([]byte, n))
		require.NoError(t, c.Serialize(v, cur))

		skip := cursor.New(cur.Bytes())
		require.NoError(t, c.Skip(skip))
		require.Equal(t, n, skip.Offset())
	}
}

func TestNewWithOptionsAppliesMustTerminate(t *testing.T) {
	c, err := NewWithOptions(order.Asc, WithMustTerminate(false))
	require.NoError(t, err)
	require.False(t, c.MustTerminate())
}

func TestNewWithOptionsRejectsDescImplicitTermination(t *testing.T) {
	_, err := NewWithOptions(order.Desc, WithMustTerminate(false))
	require.ErrorIs(t, err, codec.ErrInvalidConfiguration)
}

func lexLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}

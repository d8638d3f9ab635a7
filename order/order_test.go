package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	require.Equal(t, byte(0x00), Asc.Mask())
	require.Equal(t, byte(0xFF), Desc.Mask())
}

func TestInvert(t *testing.T) {
	require.Equal(t, Desc, Asc.Invert())
	require.Equal(t, Asc, Desc.Invert())
}

func TestString(t *testing.T) {
	require.Equal(t, "ASC", Asc.String())
	require.Equal(t, "DESC", Desc.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"asc", Asc, false},
		{"ASC", Asc, false},
		{"desc", Desc, false},
		{"DESC", Desc, false},
		{"sideways", Asc, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			require.Error(t, err)

			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestFlipByte(t *testing.T) {
	require.Equal(t, byte(0x42), Asc.FlipByte(0x42))
	require.Equal(t, byte(0xBD), Desc.FlipByte(0x42))
}

func TestFlipBytes(t *testing.T) {
	b := []byte{0x00, 0x01, 0xFF}
	got := Desc.FlipBytes(append([]byte(nil), b...))
	require.Equal(t, []byte{0xFF, 0xFE, 0x00}, got)

	same := Asc.FlipBytes(append([]byte(nil), b...))
	require.Equal(t, b, same)
}

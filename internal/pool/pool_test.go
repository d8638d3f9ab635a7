package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteAndReset(t *testing.T) {
	buf := &Buffer{}
	buf.WriteByte(0x01)
	buf.Write([]byte{0x02, 0x03})
	require.Equal(t, []byte{0x01, 0x02, 0x03}, buf.Bytes())
	require.Equal(t, 3, buf.Len())

	buf.Reset()
	require.Equal(t, 0, buf.Len())
	require.Equal(t, []byte{}, buf.Bytes())
}

func TestPool_GetPutRoundTrip(t *testing.T) {
	p := New(16)

	buf := p.Get()
	require.Equal(t, 0, buf.Len())
	buf.Write([]byte("hello"))
	p.Put(buf)

	buf2 := p.Get()
	require.Equal(t, 0, buf2.Len(), "buffer from pool must come back reset")
}

func TestPool_DiscardsOversizedBuffers(t *testing.T) {
	p := New(4)

	buf := p.Get()
	buf.Write(make([]byte, MaxRetainedSize+1))
	p.Put(buf)

	// The oversized buffer should not have been retained; a fresh Get still
	// succeeds and returns a small buffer rather than panicking.
	buf2 := p.Get()
	require.NotNil(t, buf2)
	require.LessOrEqual(t, cap(buf2.B), MaxRetainedSize)
}

func TestPackageLevelDefaultPool(t *testing.T) {
	buf := Get()
	buf.WriteByte(0xFF)
	Put(buf)
}

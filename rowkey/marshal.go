package rowkey

import (
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/internal/pool"
)

// scratch draws a pooled buffer sized to exactly n bytes, growing it
// with a fresh allocation if the pooled capacity falls short.
func scratch(n int) *pool.Buffer {
	buf := pool.Get()
	if cap(buf.B) < n {
		buf.B = make([]byte, n)
	} else {
		buf.B = buf.B[:n]
	}

	return buf
}

// Marshal2 serializes a two-field row key directly through its typed
// field codecs, without boxing values through the []any-based RowKey
// API. Fields still carry their own must-terminate configuration;
// callers composing a key whose last field supports implicit
// termination should configure that field (e.g. via
// Codec.SetMustTerminate) before calling Marshal2. The scratch buffer
// used to build the encoding is drawn from a package-level pool and
// returned before this function returns, so the result is always a
// fresh, independently-owned copy.
func Marshal2[A, B any](fa *Field[A], fb *Field[B], a A, b B) ([]byte, error) {
	na, err := fa.Codec.SerializedLength(a)
	if err != nil {
		return nil, err
	}
	nb, err := fb.Codec.SerializedLength(b)
	if err != nil {
		return nil, err
	}

	buf := scratch(na + nb)
	defer pool.Put(buf)

	cur := cursor.New(buf.B)
	if err := fa.Codec.Serialize(a, cur); err != nil {
		return nil, err
	}
	if err := fb.Codec.Serialize(b, cur); err != nil {
		return nil, err
	}

	out := make([]byte, len(cur.Bytes()))
	copy(out, cur.Bytes())

	return out, nil
}

// Unmarshal2 reads a two-field row key produced by Marshal2.
func Unmarshal2[A, B any](fa *Field[A], fb *Field[B], buf []byte) (A, B, error) {
	var zeroA A
	var zeroB B

	cur := cursor.New(buf)

	a, err := fa.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, err
	}
	b, err := fb.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, err
	}

	return a, b, nil
}

// Marshal3 serializes a three-field row key. See Marshal2.
func Marshal3[A, B, C any](fa *Field[A], fb *Field[B], fc *Field[C], a A, b B, c C) ([]byte, error) {
	na, err := fa.Codec.SerializedLength(a)
	if err != nil {
		return nil, err
	}
	nb, err := fb.Codec.SerializedLength(b)
	if err != nil {
		return nil, err
	}
	nc, err := fc.Codec.SerializedLength(c)
	if err != nil {
		return nil, err
	}

	buf := scratch(na + nb + nc)
	defer pool.Put(buf)

	cur := cursor.New(buf.B)
	if err := fa.Codec.Serialize(a, cur); err != nil {
		return nil, err
	}
	if err := fb.Codec.Serialize(b, cur); err != nil {
		return nil, err
	}
	if err := fc.Codec.Serialize(c, cur); err != nil {
		return nil, err
	}

	out := make([]byte, len(cur.Bytes()))
	copy(out, cur.Bytes())

	return out, nil
}

// Unmarshal3 reads a three-field row key produced by Marshal3.
func Unmarshal3[A, B, C any](fa *Field[A], fb *Field[B], fc *Field[C], buf []byte) (A, B, C, error) {
	var zeroA A
	var zeroB B
	var zeroC C

	cur := cursor.New(buf)

	a, err := fa.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, err
	}
	b, err := fb.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, err
	}
	c, err := fc.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, err
	}

	return a, b, c, nil
}

// Marshal4 serializes a four-field row key. See Marshal2.
func Marshal4[A, B, C, D any](fa *Field[A], fb *Field[B], fc *Field[C], fd *Field[D], a A, b B, c C, d D) ([]byte, error) {
	na, err := fa.Codec.SerializedLength(a)
	if err != nil {
		return nil, err
	}
	nb, err := fb.Codec.SerializedLength(b)
	if err != nil {
		return nil, err
	}
	nc, err := fc.Codec.SerializedLength(c)
	if err != nil {
		return nil, err
	}
	nd, err := fd.Codec.SerializedLength(d)
	if err != nil {
		return nil, err
	}

	buf := scratch(na + nb + nc + nd)
	defer pool.Put(buf)

	cur := cursor.New(buf.B)
	if err := fa.Codec.Serialize(a, cur); err != nil {
		return nil, err
	}
	if err := fb.Codec.Serialize(b, cur); err != nil {
		return nil, err
	}
	if err := fc.Codec.Serialize(c, cur); err != nil {
		return nil, err
	}
	if err := fd.Codec.Serialize(d, cur); err != nil {
		return nil, err
	}

	out := make([]byte, len(cur.Bytes()))
	copy(out, cur.Bytes())

	return out, nil
}

// Unmarshal4 reads a four-field row key produced by Marshal4.
func Unmarshal4[A, B, C, D any](fa *Field[A], fb *Field[B], fc *Field[C], fd *Field[D], buf []byte) (A, B, C, D, error) {
	var zeroA A
	var zeroB B
	var zeroC C
	var zeroD D

	cur := cursor.New(buf)

	a, err := fa.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, zeroD, err
	}
	b, err := fb.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, zeroD, err
	}
	c, err := fc.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, zeroD, err
	}
	d, err := fd.Codec.Deserialize(cur)
	if err != nil {
		return zeroA, zeroB, zeroC, zeroD, err
	}

	return a, b, c, d, nil
}

// Package rowkey composes an ordered list of field codecs into a single
// struct/row-key codec per spec.md 4.I: each field serializes or
// deserializes in declared order, the whole key's direction can be
// flipped in one call, and only the last ascending field may omit its
// terminator.
package rowkey

import (
	"fmt"

	"github.com/ndimiduk/orderly/codec"
	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/order"
)

// anyField is the type-erased capability a RowKey needs from one
// positional field, bridging the generic Field[T] wrapper to the
// []any-based tuple API a RowKey exposes.
type anyField interface {
	order() order.Order
	setOrder(order.Order)
	length(v any) (int, error)
	serialize(v any, c *cursor.Cursor) error
	skip(c *cursor.Cursor) error
	deserialize(c *cursor.Cursor) (any, error)
	terminating() (codec.Terminating, bool)
}

// Field wraps a single codec.Codec[T] as one positional field of a
// composed row key.
type Field[T any] struct {
	Codec codec.Codec[T]
}

// NewField wraps c as a row key field.
func NewField[T any](c codec.Codec[T]) *Field[T] {
	return &Field[T]{Codec: c}
}

func (f *Field[T]) order() order.Order         { return f.Codec.Order() }
func (f *Field[T]) setOrder(o order.Order)     { f.Codec.SetOrder(o) }
func (f *Field[T]) skip(c *cursor.Cursor) error { return f.Codec.Skip(c) }

func (f *Field[T]) length(v any) (int, error) {
	tv, ok := v.(T)
	if !ok {
		return 0, fmt.Errorf("rowkey: value %v is not assignable to field type %T: %w", v, tv, codec.ErrInvalidConfiguration)
	}

	return f.Codec.SerializedLength(tv)
}

func (f *Field[T]) serialize(v any, c *cursor.Cursor) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("rowkey: value %v is not assignable to field type %T: %w", v, tv, codec.ErrInvalidConfiguration)
	}

	return f.Codec.Serialize(tv, c)
}

func (f *Field[T]) deserialize(c *cursor.Cursor) (any, error) {
	return f.Codec.Deserialize(c)
}

func (f *Field[T]) terminating() (codec.Terminating, bool) {
	t, ok := any(f.Codec).(codec.Terminating)

	return t, ok
}

var _ anyField = (*Field[int])(nil)

// RowKey composes an ordered list of fields into one struct codec.
type RowKey struct {
	fields  []anyField
	current order.Order
}

// New builds a RowKey over fields in the given order, applying the
// last-field implicit-termination contract immediately: the last
// field may omit its terminator only if its own direction is ASC and
// its codec supports implicit termination.
func New(fields ...anyField) *RowKey {
	k := &RowKey{fields: fields, current: order.Asc}
	k.configureTermination()

	return k
}

// configureTermination enforces that every field but the last always
// terminates, and that the last field omits its terminator only when
// ascending.
func (k *RowKey) configureTermination() {
	for i, f := range k.fields {
		term, ok := f.terminating()
		if !ok {
			continue
		}

		mustTerm := true
		if i == len(k.fields)-1 && f.order() == order.Asc {
			mustTerm = false
		}

		// Only mustTerm=false with a DESC field can fail, and that
		// combination is excluded above.
		_ = term.SetMustTerminate(mustTerm)
	}
}

// Order returns the direction last passed to SetOrder (ASC at
// construction).
func (k *RowKey) Order() order.Order { return k.current }

// SetOrder flips every field's direction when ω differs from the
// key's current direction, pushing descending into each field so the
// composed key's sort order inverts without inserting wrapper bytes.
func (k *RowKey) SetOrder(o order.Order) {
	if o == k.current {
		return
	}

	for _, f := range k.fields {
		f.setOrder(f.order().Invert())
	}
	k.current = o
	k.configureTermination()
}

func (k *RowKey) checkArity(values []any) error {
	if len(values) != len(k.fields) {
		return fmt.Errorf("rowkey: expected %d values, got %d: %w", len(k.fields), len(values), codec.ErrArityMismatch)
	}

	return nil
}

// SerializedLength returns the sum of every field's encoded length.
func (k *RowKey) SerializedLength(values []any) (int, error) {
	if err := k.checkArity(values); err != nil {
		return 0, err
	}

	total := 0
	for i, f := range k.fields {
		n, err := f.length(values[i])
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

// Serialize writes each field's encoding to c in declared order.
func (k *RowKey) Serialize(values []any, c *cursor.Cursor) error {
	if err := k.checkArity(values); err != nil {
		return err
	}

	for i, f := range k.fields {
		if err := f.serialize(values[i], c); err != nil {
			return err
		}
	}

	return nil
}

// Skip advances c past one encoded tuple without materializing it.
func (k *RowKey) Skip(c *cursor.Cursor) error {
	for _, f := range k.fields {
		if err := f.skip(c); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize reads one encoded tuple from c, in field order.
func (k *RowKey) Deserialize(c *cursor.Cursor) ([]any, error) {
	out := make([]any, len(k.fields))
	for i, f := range k.fields {
		v, err := f.deserialize(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

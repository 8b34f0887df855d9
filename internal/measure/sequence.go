package measure

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/exp/constraints"
)

// Sequence is a read-only view over nested numeric content.
type Sequence interface {
	// Len reports the number of elements at this level.
	Len() int
	// First returns the element at index 0 when that element is itself a
	// sequence. It reports false for empty sequences and scalar leaves.
	First() (Sequence, bool)
}

// Sample is the set of numeric leaf types accepted by the typed adapters.
type Sample interface {
	constraints.Integer | constraints.Float
}

type flat[T Sample] []T

func (f flat[T]) Len() int { return len(f) }

func (f flat[T]) First() (Sequence, bool) { return nil, false }

// Flat wraps a mono buffer.
func Flat[T Sample](samples []T) Sequence {
	return flat[T](samples)
}

type matrix[T Sample] [][]T

func (m matrix[T]) Len() int { return len(m) }

func (m matrix[T]) First() (Sequence, bool) {
	if len(m) == 0 {
		return nil, false
	}
	return flat[T](m[0]), true
}

// Matrix wraps channel-first content such as the output of a multichannel
// decoder.
func Matrix[T Sample](channels [][]T) Sequence {
	return matrix[T](channels)
}

type nested struct {
	v reflect.Value
}

// Nested wraps arbitrarily nested slices or arrays, including []any trees
// mixing Sequence values and slices. Values that are not slices or arrays
// are treated as empty.
func Nested(v any) Sequence {
	if seq, ok := v.(Sequence); ok {
		return seq
	}
	rv, ok := sequenceValue(reflect.ValueOf(v))
	if !ok {
		return nested{}
	}
	return nested{v: rv}
}

func (n nested) Len() int {
	if !n.v.IsValid() {
		return 0
	}
	return n.v.Len()
}

func (n nested) First() (Sequence, bool) {
	if n.Len() == 0 {
		return nil, false
	}
	elem := n.v.Index(0)
	if elem.Kind() == reflect.Interface && !elem.IsNil() {
		if seq, ok := elem.Interface().(Sequence); ok {
			return seq, true
		}
	}
	rv, ok := sequenceValue(elem)
	if !ok {
		return nil, false
	}
	return nested{v: rv}, true
}

func sequenceValue(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	default:
		return reflect.Value{}, false
	}
}

// ErrShape reports a tensor whose shape does not match its backing data.
var ErrShape = errors.New("tensor shape mismatch")

// Tensor is a dense row-major array with an explicit shape, the batched
// counterpart of Matrix.
type Tensor struct {
	shape []int
	data  []float64
}

// NewTensor validates that the shape covers exactly len(data) elements.
func NewTensor(data []float64, shape ...int) (*Tensor, error) {
	total := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrShape, dim)
		}
		total *= dim
	}
	if len(shape) == 0 || total != len(data) {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShape, shape, total, len(data))
	}
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

// Shape returns a copy of the tensor dimensions.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Len reports the size of the outermost dimension.
func (t *Tensor) Len() int {
	if t == nil || len(t.shape) == 0 {
		return 0
	}
	return t.shape[0]
}

// First returns a view of the first slice along the outermost dimension.
func (t *Tensor) First() (Sequence, bool) {
	if t.Len() == 0 || len(t.shape) < 2 {
		return nil, false
	}
	inner := t.shape[1:]
	stride := 1
	for _, dim := range inner {
		stride *= dim
	}
	return &Tensor{shape: inner, data: t.data[:stride]}, true
}

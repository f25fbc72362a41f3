package cast

import (
	"net/url"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
)

// TransformFunc converts a single value, failing with a domain error when
// the input is unacceptable.
type TransformFunc func(value any) (any, error)

// Transformer is a stateless pair of conversion functions between the JSON
// shape and the property shape of a value. Either half may be nil; a
// missing half acts as a passthrough when the adapter needs it.
type Transformer struct {
	Forward TransformFunc // JSON value -> property value
	Reverse TransformFunc // property value -> JSON value

	// Nested-conversion halves receive the invoking adapter, so its
	// depth limit and logger carry through Object/Array recursion. The
	// plain halves are used when these are unset.
	forwardNested nestedTransformFunc
	reverseNested nestedTransformFunc
}

// nestedTransformFunc is a transform half that recurses through the
// invoking adapter.
type nestedTransformFunc func(a *Adapter, value any) (any, error)

// ForwardAndReversible wraps two user-supplied pure functions as a
// transformer.
func ForwardAndReversible(forward, reverse TransformFunc) *Transformer {
	return &Transformer{Forward: forward, Reverse: reverse}
}

// ForwardOnly returns a one-directional transformer; the reverse direction
// is a passthrough.
func ForwardOnly(forward TransformFunc) *Transformer {
	return &Transformer{Forward: forward}
}

// ReverseOnly returns a one-directional transformer; the forward direction
// is a passthrough.
func ReverseOnly(reverse TransformFunc) *Transformer {
	return &Transformer{Reverse: reverse}
}

// forwardValue applies the forward half on behalf of a, passing through
// when no half is set.
func (t *Transformer) forwardValue(a *Adapter, v any) (any, error) {
	switch {
	case t == nil:
		return v, nil
	case t.forwardNested != nil:
		return t.forwardNested(a, v)
	case t.Forward != nil:
		return t.Forward(v)
	default:
		return v, nil
	}
}

// reverseValue applies the reverse half on behalf of a, passing through
// when no half is set.
func (t *Transformer) reverseValue(a *Adapter, v any) (any, error) {
	switch {
	case t == nil:
		return v, nil
	case t.reverseNested != nil:
		return t.reverseNested(a, v)
	case t.Reverse != nil:
		return t.Reverse(v)
	default:
		return v, nil
	}
}

// ValueMapping returns a transformer that maps JSON primitives to property
// values by exact lookup, and back by the inverse lookup. An unmapped input
// fails with ErrInvalidJSONDictionary. A mapping value that is not
// comparable cannot enter the inverse table; the reverse direction treats
// it as unmapped.
func ValueMapping(mapping map[any]any) *Transformer {
	return valueMapping(mapping, nil, false, nil, false)
}

// ValueMappingWithDefaults is ValueMapping with per-direction fallbacks
// used instead of failing on unmapped input.
func ValueMappingWithDefaults(mapping map[any]any, forwardDefault, reverseDefault any) *Transformer {
	return valueMapping(mapping, forwardDefault, true, reverseDefault, true)
}

func valueMapping(mapping map[any]any, fwdDefault any, hasFwdDefault bool, revDefault any, hasRevDefault bool) *Transformer {
	inverse := make(map[any]any, len(mapping))
	for k, v := range mapping {
		if v != nil && !reflect.TypeOf(v).Comparable() {
			// Not invertible; reverse lookup treats it as unmapped.
			continue
		}

		inverse[v] = k
	}

	lookup := func(table map[any]any, fallback any, hasFallback bool) TransformFunc {
		return func(v any) (any, error) {
			if v != nil && !reflect.TypeOf(v).Comparable() {
				return nil, errors.Wrapf(ErrInvalidJSONDictionary, "unhashable value of type %T", v)
			}

			mapped, ok := table[v]
			if !ok {
				if hasFallback {
					return fallback, nil
				}

				return nil, errors.Wrapf(ErrInvalidJSONDictionary, "no mapping for value %v", v)
			}

			return mapped, nil
		}
	}

	return &Transformer{
		Forward: lookup(mapping, fwdDefault, hasFwdDefault),
		Reverse: lookup(inverse, revDefault, hasRevDefault),
	}
}

// Object returns a transformer that recursively converts a nested JSON
// object into a model of the given descriptor's type, and back. JSON null
// converts to nil in both directions.
func Object(desc *Descriptor) *Transformer {
	return ObjectRef(func() *Descriptor { return desc })
}

// ObjectRef is Object with the descriptor supplied lazily, allowing
// self-referential model graphs whose descriptors reference each other
// during construction.
func ObjectRef(ref func() *Descriptor) *Transformer {
	forward := func(a *Adapter, v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		// The adapter checked the whole input at its entry point, so the
		// nested conversion skips the depth re-check.
		return a.nestedModelFromObject(v, ref())
	}

	reverse := func(a *Adapter, v any) (any, error) {
		if isNilValue(v) {
			return nil, nil
		}

		return a.ObjectFromModel(v, ref())
	}

	return nestedTransformer(forward, reverse)
}

// nestedTransformer binds adapter-threading halves; direct calls to
// Forward/Reverse run against the default adapter.
func nestedTransformer(forward, reverse nestedTransformFunc) *Transformer {
	return &Transformer{
		Forward:       func(v any) (any, error) { return forward(defaultAdapter, v) },
		Reverse:       func(v any) (any, error) { return reverse(defaultAdapter, v) },
		forwardNested: forward,
		reverseNested: reverse,
	}
}

// Array returns a transformer that applies Object element-wise over a JSON
// array. Any element failure fails the whole array, both directions.
func Array(desc *Descriptor) *Transformer {
	return ArrayRef(func() *Descriptor { return desc })
}

// ArrayRef is Array with the descriptor supplied lazily.
func ArrayRef(ref func() *Descriptor) *Transformer {
	elem := ObjectRef(ref)

	forward := func(a *Adapter, v any) (any, error) {
		if v == nil {
			return nil, nil
		}

		arr, ok := v.([]any)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidJSONDictionary, "expected JSON array, got %T", v)
		}

		models := make([]any, len(arr))

		for i, item := range arr {
			m, err := elem.forwardValue(a, item)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}

			models[i] = m
		}

		return models, nil
	}

	reverse := func(a *Adapter, v any) (any, error) {
		if isNilValue(v) {
			return nil, nil
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, errors.Wrapf(ErrInvalidJSONDictionary, "expected slice of models, got %T", v)
		}

		arr := make([]any, rv.Len())

		for i := 0; i < rv.Len(); i++ {
			obj, err := elem.reverseValue(a, rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}

			arr[i] = obj
		}

		return arr, nil
	}

	return nestedTransformer(forward, reverse)
}

// URLValue returns a transformer between URL strings and *url.URL values.
func URLValue() *Transformer {
	return &Transformer{
		Forward: func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}

			s, ok := v.(string)
			if !ok {
				return nil, errors.Newf("expected URL string, got %T", v)
			}

			return url.Parse(s)
		},
		Reverse: func(v any) (any, error) {
			if isNilValue(v) {
				return nil, nil
			}

			u, ok := v.(*url.URL)
			if !ok {
				return nil, errors.Newf("expected *url.URL, got %T", v)
			}

			return u.String(), nil
		},
	}
}

// TimeValue returns a transformer between time strings in the given layout
// (e.g. time.RFC3339) and time.Time values.
func TimeValue(layout string) *Transformer {
	return &Transformer{
		Forward: func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}

			s, ok := v.(string)
			if !ok {
				return nil, errors.Newf("expected time string, got %T", v)
			}

			return time.Parse(layout, s)
		},
		Reverse: func(v any) (any, error) {
			ts, ok := v.(time.Time)
			if !ok {
				return nil, errors.Newf("expected time.Time, got %T", v)
			}

			return ts.Format(layout), nil
		},
	}
}

// isNilValue reports whether v is nil or a nil pointer/map/slice/interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

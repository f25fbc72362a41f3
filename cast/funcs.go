package cast

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotATransformFunc - the provided value is not a recognizable
	// transform function.
	ErrNotATransformFunc = errors.New("provided function is not a recognizable transform function")
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Func wraps a typed function as a TransformFunc, adapting the loosely
// typed value through reflection.
//
// Supported signatures:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, error)
//
// A nil input yields a nil output without calling fn when the source type
// is nilable, and fails otherwise. JSON numbers arrive as float64 and are
// converted to the source type when both are numeric.
func Func(fn any) (TransformFunc, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrNotATransformFunc
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.IsVariadic() {
		return nil, ErrNotATransformFunc
	}

	hasErr := false

	switch fnType.NumOut() {
	default:
		return nil, ErrNotATransformFunc

	case 1:
		if fnType.Out(0) == errType {
			return nil, ErrNotATransformFunc
		}

	case 2:
		if fnType.Out(1) != errType {
			return nil, ErrNotATransformFunc
		}

		hasErr = true
	}

	src := fnType.In(0)

	return func(v any) (any, error) {
		in, err := adaptArgument(v, src)
		if err != nil {
			return nil, err
		}

		if in == nil {
			return nil, nil
		}

		out := fnVal.Call([]reflect.Value{*in})

		if hasErr && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}

		return out[0].Interface(), nil
	}, nil
}

// MustFunc is Func for statically known signatures; panics on failure.
func MustFunc(fn any) TransformFunc {
	tf, err := Func(fn)
	if err != nil {
		panic(err)
	}

	return tf
}

// Typed builds a transformer from two typed functions, each with one of
// the signatures Func accepts. Either function may be nil for a
// one-directional transformer.
func Typed(forward, reverse any) (*Transformer, error) {
	t := &Transformer{}

	if forward != nil {
		tf, err := Func(forward)
		if err != nil {
			return nil, errors.Wrap(err, "forward")
		}

		t.Forward = tf
	}

	if reverse != nil {
		tf, err := Func(reverse)
		if err != nil {
			return nil, errors.Wrap(err, "reverse")
		}

		t.Reverse = tf
	}

	return t, nil
}

// MustTyped is Typed for statically known signatures; panics on failure.
func MustTyped(forward, reverse any) *Transformer {
	t, err := Typed(forward, reverse)
	if err != nil {
		panic(err)
	}

	return t
}

// adaptArgument prepares v for a call expecting type dst. A nil result with
// a nil error means the call should be skipped and nil returned (nil input
// to a nilable parameter).
func adaptArgument(v any, dst reflect.Type) (*reflect.Value, error) {
	if v == nil {
		switch dst.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
			return nil, nil
		default:
			return nil, errors.Newf("nil value for non-nilable parameter %s", dst)
		}
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(dst):
		return &rv, nil

	case isNumericKind(rv.Kind()) && isNumericKind(dst.Kind()):
		converted := rv.Convert(dst)
		return &converted, nil

	default:
		return nil, errors.Newf("cannot use value of type %T as %s", v, dst)
	}
}

// isNumericKind reports whether k is an integer or float kind.
func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

package cast

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"modelcast/keypath"
)

// DefaultMaxDepth bounds the nesting depth of input trees. Recursive
// conversions consume call stack proportional to the data depth, so
// degenerate input fails with ErrMaxDepthExceeded instead of overflowing.
const DefaultMaxDepth = 512

// Adapter converts between JSON-like trees and model instances. The zero
// configuration (NewAdapter with no options) is what the package-level
// functions use. Adapters are immutable and safe for concurrent use.
type Adapter struct {
	maxDepth int
	logger   *zap.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMaxDepth overrides the input nesting depth limit.
func WithMaxDepth(n int) AdapterOption {
	return func(a *Adapter) { a.maxDepth = n }
}

// WithLogger attaches a logger for debug-level conversion tracing. The
// default is a nop logger.
func WithLogger(l *zap.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter builds an adapter.
func NewAdapter(opts ...AdapterOption) *Adapter {
	a := &Adapter{
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

var defaultAdapter = NewAdapter()

// ModelFromObject converts with the default adapter.
func ModelFromObject(json any, desc *Descriptor) (any, error) {
	return defaultAdapter.ModelFromObject(json, desc)
}

// ObjectFromModel converts with the default adapter.
func ObjectFromModel(model any, desc *Descriptor) (map[string]any, error) {
	return defaultAdapter.ObjectFromModel(model, desc)
}

// ModelsFromArray converts with the default adapter.
func ModelsFromArray(json any, desc *Descriptor) ([]any, error) {
	return defaultAdapter.ModelsFromArray(json, desc)
}

// ArrayFromModels converts with the default adapter.
func ArrayFromModels(models []any, desc *Descriptor) ([]any, error) {
	return defaultAdapter.ArrayFromModels(models, desc)
}

// ModelFromObject builds a model instance of the descriptor's type from a
// JSON object. On success the returned value is a pointer to a fully
// populated struct; on failure no instance is returned. Class-cluster
// resolution, when declared, picks the concrete descriptor before
// construction.
func (a *Adapter) ModelFromObject(json any, desc *Descriptor) (any, error) {
	if desc == nil {
		return nil, errors.New("nil descriptor")
	}

	obj, ok := json.(map[string]any)
	if !ok || obj == nil {
		return nil, errors.Wrapf(ErrInvalidJSONDictionary, "expected JSON object, got %T", json)
	}

	if exceedsDepth(obj, a.maxDepth) {
		return nil, errors.Wrapf(ErrMaxDepthExceeded, "input nests deeper than %d levels", a.maxDepth)
	}

	return a.convertObject(obj, desc)
}

// nestedModelFromObject converts a nested object reached through an
// Object/Array transform. The entry point already depth-checked the whole
// input, so no re-check here.
func (a *Adapter) nestedModelFromObject(json any, desc *Descriptor) (any, error) {
	obj, ok := json.(map[string]any)
	if !ok || obj == nil {
		return nil, errors.Wrapf(ErrInvalidJSONDictionary, "expected JSON object, got %T", json)
	}

	return a.convertObject(obj, desc)
}

func (a *Adapter) convertObject(obj map[string]any, desc *Descriptor) (any, error) {
	resolved, err := a.resolveClass(obj, desc)
	if err != nil {
		return nil, err
	}

	instance := reflect.New(resolved.typ)

	if err := a.populate(instance.Elem(), resolved, obj); err != nil {
		return nil, err
	}

	return instance.Interface(), nil
}

// resolveClass runs the descriptor's class-cluster resolver, once per
// conversion. An abstract descriptor without a resolver cannot be
// constructed.
func (a *Adapter) resolveClass(obj map[string]any, desc *Descriptor) (*Descriptor, error) {
	if desc.resolver == nil {
		if desc.abstract {
			return nil, errors.Wrapf(ErrNoClassFound, "descriptor for %s is abstract and has no resolver", desc.typ)
		}

		return desc, nil
	}

	resolved, err := desc.resolver(obj)
	if err != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrapf(ErrNoClassFound, "resolving concrete class for %s", desc.typ), err)
	}

	if resolved == nil {
		return nil, errors.Wrapf(ErrNoClassFound, "no variant of %s matches the input", desc.typ)
	}

	if a.logger.Core().Enabled(zap.DebugLevel) {
		a.logger.Debug("resolved model class",
			zap.Stringer("base", desc.typ),
			zap.Stringer("resolved", resolved.typ))
	}

	return resolved, nil
}

// populate assigns every mapped property of instance from obj.
func (a *Adapter) populate(instance reflect.Value, desc *Descriptor, obj map[string]any) error {
	for _, prop := range desc.properties {
		value, outcome := a.resolveProperty(prop, obj)
		if outcome == keypath.Absent {
			// Absent is not an error; the property keeps its zero value.
			continue
		}

		transformed, err := prop.transformer.forwardValue(a, value)
		if err != nil {
			a.logTransformFailure(prop.name, DirectionForward, value, err)
			return newTransformerError(prop.name, DirectionForward, err)
		}

		if err := setField(instance.FieldByIndex(prop.field.Index), prop.name, transformed); err != nil {
			return err
		}
	}

	return nil
}

// resolveProperty reads the property's key path(s) from obj. A
// multi-keypath property assembles the present sub-paths into a map keyed
// by dotted path; it is Absent only when every sub-path is absent.
func (a *Adapter) resolveProperty(prop *property, obj map[string]any) (any, keypath.Resolution) {
	if !prop.multi() {
		return keypath.Get(obj, prop.paths[0])
	}

	composite := make(map[string]any, len(prop.paths))

	for _, p := range prop.paths {
		if v, outcome := keypath.Get(obj, p); outcome == keypath.Present {
			composite[p.String()] = v
		}
	}

	if len(composite) == 0 {
		return nil, keypath.Absent
	}

	return composite, keypath.Present
}

// ObjectFromModel serializes a model instance back into a JSON object.
// Properties are written in descriptor order; when two properties share a
// destination path the later one wins. Unmapped properties are omitted.
// On failure no object is returned.
func (a *Adapter) ObjectFromModel(model any, desc *Descriptor) (map[string]any, error) {
	if desc == nil {
		return nil, errors.New("nil descriptor")
	}

	rv := reflect.ValueOf(model)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(desc.typ) || rv.IsNil() {
		return nil, errors.Newf("model must be a non-nil *%s, got %T", desc.typ, model)
	}

	out := make(map[string]any)

	for _, prop := range desc.properties {
		value := rv.Elem().FieldByIndex(prop.field.Index).Interface()

		reversed, err := prop.transformer.reverseValue(a, value)
		if err != nil {
			a.logTransformFailure(prop.name, DirectionReverse, value, err)
			return nil, newTransformerError(prop.name, DirectionReverse, err)
		}

		if err := writeProperty(out, prop, reversed); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// writeProperty writes a (possibly reverse-transformed) value to the
// property's destination path(s).
func writeProperty(out map[string]any, prop *property, value any) error {
	if !prop.multi() {
		keypath.Set(out, prop.paths[0], jsonValue(value))
		return nil
	}

	if isNilValue(value) {
		for _, p := range prop.paths {
			keypath.Set(out, p, nil)
		}

		return nil
	}

	parts, ok := value.(map[string]any)
	if !ok {
		cause := errors.Newf("multi-keypath reverse must return map[string]any, got %T", value)
		return newTransformerError(prop.name, DirectionReverse, cause)
	}

	for _, p := range prop.paths {
		if v, exists := parts[p.String()]; exists {
			keypath.Set(out, p, jsonValue(v))
		}
	}

	return nil
}

// ModelsFromArray converts each element of a JSON array and fails fast:
// the first element failure aborts the batch with no partial result.
func (a *Adapter) ModelsFromArray(json any, desc *Descriptor) ([]any, error) {
	arr, ok := json.([]any)
	if !ok || arr == nil {
		return nil, errors.Wrapf(ErrInvalidJSONDictionary, "expected JSON array, got %T", json)
	}

	models := make([]any, len(arr))

	for i, item := range arr {
		m, err := a.ModelFromObject(item, desc)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}

		models[i] = m
	}

	return models, nil
}

// ArrayFromModels serializes each model and fails fast on the first
// element failure.
func (a *Adapter) ArrayFromModels(models []any, desc *Descriptor) ([]any, error) {
	if models == nil {
		return nil, nil
	}

	arr := make([]any, len(models))

	for i, m := range models {
		obj, err := a.ObjectFromModel(m, desc)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}

		arr[i] = obj
	}

	return arr, nil
}

func (a *Adapter) logTransformFailure(property string, direction Direction, value any, err error) {
	if !a.logger.Core().Enabled(zap.DebugLevel) {
		return
	}

	a.logger.Debug("transform failed",
		zap.String("property", property),
		zap.Stringer("direction", direction),
		zap.String("value", spew.Sdump(value)),
		zap.Error(err))
}

// setField assigns value to a struct field, converting the loose JSON
// representation where it can (float64 numbers to numeric fields, []any to
// typed slices). A nil value resets the field to its zero value, which is
// how explicit JSON null lands on non-nilable fields too.
func setField(field reflect.Value, name string, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrModelConstruction, "property %q: %v", name, r)
		}
	}()

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	rv := reflect.ValueOf(value)

	converted, ok := convertValue(rv, field.Type())
	if !ok {
		return errors.Wrapf(ErrModelConstruction, "property %q: cannot assign %T to %s", name, value, field.Type())
	}

	field.Set(converted)

	return nil
}

// convertValue adapts rv to type dst, allowing numeric widening and
// element-wise conversion of []any into typed slices.
func convertValue(rv reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	switch {
	case rv.Type().AssignableTo(dst):
		return rv, true

	case isNumericKind(rv.Kind()) && isNumericKind(dst.Kind()):
		return rv.Convert(dst), true

	case rv.Kind() == reflect.Slice && dst.Kind() == reflect.Slice:
		out := reflect.MakeSlice(dst, rv.Len(), rv.Len())

		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i)
			if item.Kind() == reflect.Interface {
				if item.IsNil() {
					continue
				}

				item = item.Elem()
			}

			converted, ok := convertValue(item, dst.Elem())
			if !ok {
				return reflect.Value{}, false
			}

			out.Index(i).Set(converted)
		}

		return out, true

	default:
		return reflect.Value{}, false
	}
}

// jsonValue normalizes a value for placement in the output tree: typed
// nils become untyped nil (JSON null), numbers become float64 and typed
// slices become []any, so the output has the same shape as parser-produced
// input.
func jsonValue(v any) any {
	if isNilValue(v) {
		return nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case isNumericKind(rv.Kind()):
		return rv.Convert(reflect.TypeOf(float64(0))).Float()

	case rv.Kind() == reflect.Slice:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = jsonValue(rv.Index(i).Interface())
		}

		return out

	default:
		return v
	}
}

// exceedsDepth reports whether v nests deeper than limit levels, walking
// iteratively so degenerate input cannot overflow the call stack here.
func exceedsDepth(v any, limit int) bool {
	type entry struct {
		value any
		depth int
	}

	stack := []entry{{value: v, depth: 1}}

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e.depth > limit {
			return true
		}

		switch node := e.value.(type) {
		case map[string]any:
			for _, child := range node {
				stack = append(stack, entry{value: child, depth: e.depth + 1})
			}

		case []any:
			for _, child := range node {
				stack = append(stack, entry{value: child, depth: e.depth + 1})
			}
		}
	}

	return false
}

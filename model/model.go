// Package model is the typed convenience layer over the cast engine.
//
// A model type implements JSONModel by returning its descriptor, and the
// generic helpers here derive construction, serialization, merging and
// validation from it:
//
//	u, err := model.From[User](json)
//	obj, err := model.ToObject(u)
//
// Validation runs automatically after construction: every per-property
// validate handler registered on the descriptor is invoked on the fully
// populated instance, and the first failure discards it.
package model

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"modelcast/cast"
)

// JSONModel is implemented by model types that expose their mapping
// descriptor. The descriptor must describe the implementing type itself.
type JSONModel interface {
	JSONDescriptor() *cast.Descriptor
}

// Ptr constrains PT to be both *T and a JSONModel.
type Ptr[T any] interface {
	*T
	JSONModel
}

// From builds a *T from a JSON object and validates it. For class-cluster
// base types whose resolver may pick a different concrete type, use
// cast.ModelFromObject directly; From requires the result to be a *T.
func From[T any, PT Ptr[T]](json any) (PT, error) {
	v, err := cast.ModelFromObject(json, descriptorOf[T, PT]())
	if err != nil {
		return nil, err
	}

	m, ok := v.(PT)
	if !ok {
		return nil, errors.Newf("class cluster resolved %T; convert via cast.ModelFromObject", v)
	}

	if err := Validate(m); err != nil {
		return nil, err
	}

	return m, nil
}

// FromArray builds a []*T from a JSON array, failing fast on the first bad
// element.
func FromArray[T any, PT Ptr[T]](json any) ([]PT, error) {
	vs, err := cast.ModelsFromArray(json, descriptorOf[T, PT]())
	if err != nil {
		return nil, err
	}

	models := make([]PT, len(vs))

	for i, v := range vs {
		m, ok := v.(PT)
		if !ok {
			return nil, errors.Newf("element %d: class cluster resolved %T; convert via cast.ModelsFromArray", i, v)
		}

		if err := Validate(m); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}

		models[i] = m
	}

	return models, nil
}

// ToObject serializes a model back into a JSON object.
func ToObject(m JSONModel) (map[string]any, error) {
	return cast.ObjectFromModel(m, m.JSONDescriptor())
}

// ToArray serializes a slice of models, failing fast on the first bad
// element.
func ToArray[T any, PT Ptr[T]](models []PT) ([]any, error) {
	if models == nil {
		return nil, nil
	}

	untyped := make([]any, len(models))
	for i, m := range models {
		untyped[i] = m
	}

	return cast.ArrayFromModels(untyped, descriptorOf[T, PT]())
}

// MergeValues copies every mapped property of src onto dst, in descriptor
// order. A merge handler registered for a property replaces the plain
// copy. Both models must be the same concrete type.
func MergeValues(dst, src JSONModel) error {
	dv := reflect.ValueOf(dst)
	sv := reflect.ValueOf(src)

	if dv.Type() != sv.Type() {
		return errors.Newf("cannot merge %T into %T", src, dst)
	}

	if dv.Kind() != reflect.Ptr || dv.IsNil() || sv.IsNil() {
		return errors.New("merge requires non-nil model pointers")
	}

	desc := dst.JSONDescriptor()

	for _, name := range desc.PropertyNames() {
		if fn, ok := desc.MergeHandler(name); ok {
			if err := fn(dst, src); err != nil {
				return errors.Wrapf(err, "merging property %q", name)
			}

			continue
		}

		dv.Elem().FieldByName(name).Set(sv.Elem().FieldByName(name))
	}

	return nil
}

// Validate runs the descriptor's per-property validate handlers against m.
// The first failure wins.
func Validate(m JSONModel) error {
	desc := m.JSONDescriptor()

	for _, name := range desc.PropertyNames() {
		fn, ok := desc.ValidateHandler(name)
		if !ok {
			continue
		}

		if err := fn(m); err != nil {
			return errors.Wrapf(err, "validating property %q", name)
		}
	}

	return nil
}

// descriptorOf fetches the descriptor from a zero instance of the model.
func descriptorOf[T any, PT Ptr[T]]() *cast.Descriptor {
	return PT(new(T)).JSONDescriptor()
}

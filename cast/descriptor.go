package cast

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"modelcast/keypath"
)

// ClassResolver inspects raw JSON and picks the concrete descriptor to
// instantiate, enabling one JSON shape family to deserialize into
// different model types. Returning nil or an error means no variant
// matches.
type ClassResolver func(json map[string]any) (*Descriptor, error)

// MergeFunc merges a single property from src into dst. Both are pointers
// to model structs of the descriptor's type.
type MergeFunc func(dst, src any) error

// ValidateFunc validates a single property on a constructed model.
type ValidateFunc func(model any) error

// property is the resolved mapping for one model property.
type property struct {
	name        string
	paths       []keypath.Path
	transformer *Transformer
	field       reflect.StructField
}

func (p *property) multi() bool {
	return len(p.paths) > 1
}

// Descriptor is the immutable per-type mapping metadata: which properties
// map to which key paths, with which transformers and hooks. Build one per
// model type with NewDescriptor and share it freely; it is never mutated
// after construction.
type Descriptor struct {
	typ        reflect.Type // struct type, not the pointer
	properties []*property  // registration order; also serialization order
	byName     map[string]*property
	resolver   ClassResolver
	abstract   bool
	merges     map[string]MergeFunc
	validators map[string]ValidateFunc
}

// Option configures a Descriptor during construction.
type Option func(*Descriptor) error

// NewDescriptor builds a descriptor for the model type of prototype, which
// must be a pointer to a struct (e.g. &User{}). Every mapped property must
// name an exported field of that struct; key paths must parse. Property
// registration order is preserved and defines the serialization conflict
// order: when two properties write the same destination path, the later
// registered one wins.
func NewDescriptor(prototype any, opts ...Option) (*Descriptor, error) {
	rt := reflect.TypeOf(prototype)
	if rt == nil || rt.Kind() != reflect.Ptr || rt.Elem().Kind() != reflect.Struct {
		return nil, errors.Newf("prototype must be a pointer to a struct, got %T", prototype)
	}

	d := &Descriptor{
		typ:        rt.Elem(),
		byName:     make(map[string]*property),
		merges:     make(map[string]MergeFunc),
		validators: make(map[string]ValidateFunc),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if err := d.check(); err != nil {
		return nil, err
	}

	return d, nil
}

// MustDescriptor is NewDescriptor for statically known mappings; panics on
// failure. Intended for package-level descriptor variables.
func MustDescriptor(prototype any, opts ...Option) *Descriptor {
	d, err := NewDescriptor(prototype, opts...)
	if err != nil {
		panic(err)
	}

	return d
}

// Map binds a property to a single key path.
func Map(name, path string) Option {
	return MapPaths(name, path)
}

// MapPaths binds a property to one or more key paths. With more than one
// path the property is multi-keypath: the resolved values are handed to its
// transformer as a map keyed by dotted path, and the transformer's reverse
// must return the same shape.
func MapPaths(name string, paths ...string) Option {
	return func(d *Descriptor) error {
		if _, exists := d.byName[name]; exists {
			return errors.Newf("property %q mapped twice", name)
		}

		if len(paths) == 0 {
			return errors.Newf("property %q mapped to no key paths", name)
		}

		parsed := make([]keypath.Path, 0, len(paths))

		for _, raw := range paths {
			p, err := keypath.Parse(raw)
			if err != nil {
				return errors.Wrapf(err, "property %q", name)
			}

			parsed = append(parsed, p)
		}

		prop := &property{name: name, paths: parsed}
		d.properties = append(d.properties, prop)
		d.byName[name] = prop

		return nil
	}
}

// Transform attaches a transformer to an already mapped property.
func Transform(name string, t *Transformer) Option {
	return func(d *Descriptor) error {
		prop, exists := d.byName[name]
		if !exists {
			return errors.Newf("transformer for unmapped property %q (Map it first)", name)
		}

		if prop.transformer != nil {
			return errors.Newf("property %q has two transformers", name)
		}

		prop.transformer = t

		return nil
	}
}

// MapWith binds a property to a single key path with a transformer in one
// step.
func MapWith(name, path string, t *Transformer) Option {
	return func(d *Descriptor) error {
		if err := Map(name, path)(d); err != nil {
			return err
		}

		return Transform(name, t)(d)
	}
}

// Merge registers an explicit merge handler for a mapped property,
// replacing the default copy performed by model merging.
func Merge(name string, fn MergeFunc) Option {
	return func(d *Descriptor) error {
		if _, exists := d.merges[name]; exists {
			return errors.Newf("property %q has two merge handlers", name)
		}

		d.merges[name] = fn

		return nil
	}
}

// Validate registers a validation handler for a mapped property, run by
// model validation after construction.
func Validate(name string, fn ValidateFunc) Option {
	return func(d *Descriptor) error {
		if _, exists := d.validators[name]; exists {
			return errors.Newf("property %q has two validate handlers", name)
		}

		d.validators[name] = fn

		return nil
	}
}

// ResolveClass registers a class-cluster resolver invoked with the raw JSON
// before construction.
func ResolveClass(fn ClassResolver) Option {
	return func(d *Descriptor) error {
		if d.resolver != nil {
			return errors.New("descriptor has two class resolvers")
		}

		d.resolver = fn

		return nil
	}
}

// Abstract marks a descriptor whose type must never be constructed
// directly; without a resolver, conversion fails with ErrNoClassFound.
func Abstract() Option {
	return func(d *Descriptor) error {
		d.abstract = true
		return nil
	}
}

// check validates the assembled descriptor against the model struct.
func (d *Descriptor) check() error {
	for _, prop := range d.properties {
		field, ok := d.typ.FieldByName(prop.name)
		if !ok {
			return errors.Newf("property %q is not a field of %s", prop.name, d.typ)
		}

		if field.PkgPath != "" {
			return errors.Newf("property %q of %s is unexported", prop.name, d.typ)
		}

		if prop.multi() && (prop.transformer == nil || prop.transformer.Forward == nil) {
			return errors.Newf("multi-keypath property %q needs a transformer to combine its values", prop.name)
		}

		prop.field = field
	}

	for name := range d.merges {
		if _, ok := d.byName[name]; !ok {
			return errors.Newf("merge handler for unmapped property %q", name)
		}
	}

	for name := range d.validators {
		if _, ok := d.byName[name]; !ok {
			return errors.Newf("validate handler for unmapped property %q", name)
		}
	}

	return nil
}

// Type returns the model struct type the descriptor maps.
func (d *Descriptor) Type() reflect.Type {
	return d.typ
}

// PropertyNames returns the mapped property names in registration order.
func (d *Descriptor) PropertyNames() []string {
	names := make([]string, len(d.properties))
	for i, prop := range d.properties {
		names[i] = prop.name
	}

	return names
}

// KeyPaths returns the key paths a property is bound to, or nil for an
// unmapped property.
func (d *Descriptor) KeyPaths(name string) []keypath.Path {
	prop, ok := d.byName[name]
	if !ok {
		return nil
	}

	return prop.paths
}

// MergeHandler returns the merge handler registered for a property, if any.
func (d *Descriptor) MergeHandler(name string) (MergeFunc, bool) {
	fn, ok := d.merges[name]
	return fn, ok
}

// ValidateHandler returns the validate handler registered for a property,
// if any.
func (d *Descriptor) ValidateHandler(name string) (ValidateFunc, bool) {
	fn, ok := d.validators[name]
	return fn, ok
}

// Package cast converts between JSON-like value trees and typed model
// structs, driven by per-type descriptors instead of hand-written parsing
// code.
//
// A Descriptor declares, once per model type, how each property maps to one
// or more key paths in the JSON tree and which value transformer (if any)
// converts between the JSON shape and the property shape. The Adapter then
// mechanically derives both directions:
//
//	desc := cast.MustDescriptor(&User{},
//		cast.Map("Name", "name"),
//		cast.Map("NestedName", "nested.name"),
//	)
//
//	m, err := cast.ModelFromObject(json, desc)   // JSON -> *User
//	obj, err := cast.ObjectFromModel(m, desc)    // *User -> JSON
//
// # Key paths
//
// Properties address nested JSON locations with dotted key paths
// ("nested.name"). A property may be sourced from several independent key
// paths at once; the resolved values are handed to its transformer as a
// single composite, and decomposed back into the same paths on
// serialization.
//
// # Transformers
//
// A Transformer is a stateless forward/reverse function pair. Built-ins
// cover value-mapping (enum) lookup, nested model objects, arrays of model
// objects, and arbitrary reversible closures. Nested object transformers
// recurse through the adapter, so self-referential model graphs work,
// bounded only by the depth of the actual data.
//
// # Class clusters
//
// A descriptor may declare a resolver that inspects the raw JSON and picks
// a concrete variant descriptor before construction, letting one JSON shape
// family deserialize into different model types.
//
// # Failure semantics
//
// All operations fail fast and atomically: either a fully populated value
// is returned or a kind-tagged error, never a partial result. The two
// deliberate lenient cases are an absent key path (the property stays at
// its zero value) and an unmapped property (skipped entirely). Bulk
// variants abort on the first element failure.
//
// Descriptors and transformers are immutable after construction and safe
// for concurrent use.
package cast
